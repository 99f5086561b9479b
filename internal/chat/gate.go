package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/Second-Book/textbook-marketplace-backend/internal/store"
)

var (
	// ErrRecipientNotFound is returned when the recipient identifier does not
	// resolve to an existing user. Distinct from a denial: it is reported, not
	// silently swallowed.
	ErrRecipientNotFound = errors.New("recipient not found")

	// ErrBlocked is the policy outcome when a block relation disables
	// messaging between sender and recipient.
	ErrBlocked = errors.New("messaging blocked")
)

// BlockPolicy selects which direction of a block relation disables messaging.
type BlockPolicy int

const (
	// BlockEitherDirection denies when either party has blocked the other.
	BlockEitherDirection BlockPolicy = iota

	// BlockInitiatorOnly denies only when the recipient has blocked the sender.
	BlockInitiatorOnly
)

// Gate decides whether a sender may message a recipient. Pure read; it never
// mutates the block relations it consults.
type Gate struct {
	users  store.UserStore
	blocks store.BlockStore
	policy BlockPolicy
}

// NewGate constructs a gate over the given stores.
func NewGate(users store.UserStore, blocks store.BlockStore, policy BlockPolicy) *Gate {
	return &Gate{
		users:  users,
		blocks: blocks,
		policy: policy,
	}
}

// Authorize resolves the recipient by username and applies the block policy.
// Returns the resolved recipient on success, ErrRecipientNotFound when the
// identifier resolves to nobody, and ErrBlocked when a qualifying block
// exists. Blocking is strictly pairwise: blocks against third parties never
// affect the (sender, recipient) pair.
func (g *Gate) Authorize(ctx context.Context, sender *store.User, recipientUsername string) (*store.User, error) {
	recipient, err := g.users.GetUserByUsername(ctx, recipientUsername)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, fmt.Errorf("resolve recipient: %w", err)
	}

	blocks, err := g.blocks.ListBlocksInvolving(ctx, sender.ID)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}

	for _, b := range blocks {
		if g.applies(b, sender.ID, recipient.ID) {
			return nil, ErrBlocked
		}
	}

	return recipient, nil
}

func (g *Gate) applies(b *store.Block, senderID, recipientID int64) bool {
	switch g.policy {
	case BlockInitiatorOnly:
		return b.InitiatorID == recipientID && b.BlockedUserID == senderID
	default:
		return (b.InitiatorID == senderID && b.BlockedUserID == recipientID) ||
			(b.InitiatorID == recipientID && b.BlockedUserID == senderID)
	}
}
