package chat

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// broadcastChannel is the Redis channel room broadcasts travel over.
const broadcastChannel = "chat:broadcast"

// envelope is the wire form of a room broadcast between processes.
type envelope struct {
	Group     string `json:"group"`
	Message   string `json:"message"`
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
}

// RedisRegistry extends a local Hub across processes via Redis Pub/Sub.
// Join, Leave, and Unicast act on local membership only; Broadcast publishes
// to Redis, and the subscriber loop delivers every received broadcast
// (including this process's own) to the local hub. Delivery to local members
// therefore always takes the same path, preserving per-publisher ordering.
type RedisRegistry struct {
	local *Hub
	rdb   *redis.Client
	log   zerolog.Logger
}

// NewRedisRegistry wraps the hub and starts the subscriber loop, which runs
// until ctx is cancelled.
func NewRedisRegistry(ctx context.Context, rdb *redis.Client, local *Hub, logger zerolog.Logger) *RedisRegistry {
	r := &RedisRegistry{
		local: local,
		rdb:   rdb,
		log:   logger.With().Str("component", "redis_registry").Logger(),
	}
	go r.listen(ctx)
	return r
}

// Join adds the connection to the local group.
func (r *RedisRegistry) Join(group string, conn *Conn) {
	r.local.Join(group, conn)
}

// Leave removes the connection from the local group.
func (r *RedisRegistry) Leave(group string, conn *Conn) {
	r.local.Leave(group, conn)
}

// Broadcast publishes a room message for every process to fan out. Events
// other than ChatMessage never cross processes and go straight to the hub.
func (r *RedisRegistry) Broadcast(group string, event Event) {
	msg, ok := event.(ChatMessage)
	if !ok {
		r.local.Broadcast(group, event)
		return
	}

	payload, err := json.Marshal(envelope{
		Group:     group,
		Message:   msg.Message,
		Sender:    msg.Sender,
		Recipient: msg.Recipient,
	})
	if err != nil {
		r.log.Error().Err(err).Msg("marshal broadcast envelope")
		return
	}

	if err := r.rdb.Publish(context.Background(), broadcastChannel, payload).Err(); err != nil {
		r.log.Error().Err(err).Str("group", group).Msg("publish broadcast")
		// Degrade to local delivery so the room is not silently skipped.
		r.local.Broadcast(group, event)
	}
}

// Unicast delivers to a single local connection. Private notifications concern
// one connection on this process, so they never touch Redis.
func (r *RedisRegistry) Unicast(conn *Conn, event Event) {
	r.local.Unicast(conn, event)
}

func (r *RedisRegistry) listen(ctx context.Context) {
	pubsub := r.rdb.Subscribe(ctx, broadcastChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				r.log.Warn().Err(err).Msg("unmarshal broadcast envelope")
				continue
			}
			r.local.Broadcast(env.Group, ChatMessage{
				Message:   env.Message,
				Sender:    env.Sender,
				Recipient: env.Recipient,
			})
		}
	}
}
