package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Second-Book/textbook-marketplace-backend/internal/auth"
	"github.com/Second-Book/textbook-marketplace-backend/internal/store"
	"github.com/Second-Book/textbook-marketplace-backend/internal/store/sqlite"
	"github.com/Second-Book/textbook-marketplace-backend/internal/utils"
)

var (
	dbPath string
	count  int
)

func main() {
	root := &cobra.Command{
		Use:          "seed",
		Short:        "Populate a marketplace database with development data",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&dbPath, "db", "marketplace.db", "path to the SQLite database")
	root.PersistentFlags().IntVar(&count, "count", 5, "number of rows to create")

	root.AddCommand(usersCmd(), textbooksCmd(), messagesCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func openStore() (store.Store, error) {
	return sqlite.New(dbPath)
}

func usersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "Create test users (password: password123)",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			hash, err := auth.HashPassword("password123")
			if err != nil {
				return err
			}

			ctx := context.Background()
			for i := 0; i < count; i++ {
				name := fmt.Sprintf("user_%s", utils.NewID()[:8])
				u, err := st.CreateUser(ctx, name, name+"@example.com", hash)
				if err != nil {
					return fmt.Errorf("create user %s: %w", name, err)
				}
				cmd.Printf("created user %s (id=%d)\n", u.Username, u.ID)
			}
			return nil
		},
	}
}

func textbooksCmd() *cobra.Command {
	var seller string
	c := &cobra.Command{
		Use:   "textbooks",
		Short: "Create test textbook listings for a seller",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := context.Background()
			owner, err := st.GetUserByUsername(ctx, seller)
			if err != nil {
				return fmt.Errorf("resolve seller %s: %w", seller, err)
			}

			for i := 0; i < count; i++ {
				tb, err := st.CreateTextbook(ctx, &store.Textbook{
					Title:       fmt.Sprintf("Algebra Basics %s", utils.NewID()[:6]),
					Author:      "J. Doe",
					SchoolClass: "9",
					Publisher:   "Osvita",
					Subject:     "Mathematics",
					PriceCents:  15000,
					Condition:   store.ConditionUsedGood,
					Description: "Seeded listing",
					SellerID:    owner.ID,
				})
				if err != nil {
					return fmt.Errorf("create textbook: %w", err)
				}
				cmd.Printf("created textbook %q (id=%d)\n", tb.Title, tb.ID)
			}
			return nil
		},
	}
	c.Flags().StringVar(&seller, "seller", "", "username owning the listings")
	c.MarkFlagRequired("seller")
	return c
}

func messagesCmd() *cobra.Command {
	var from, to, room string
	c := &cobra.Command{
		Use:   "messages",
		Short: "Create test chat messages between two users",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := context.Background()
			sender, err := st.GetUserByUsername(ctx, from)
			if err != nil {
				return fmt.Errorf("resolve sender %s: %w", from, err)
			}
			recipient, err := st.GetUserByUsername(ctx, to)
			if err != nil {
				return fmt.Errorf("resolve recipient %s: %w", to, err)
			}

			for i := 0; i < count; i++ {
				msg, err := st.CreateMessage(ctx, &store.Message{
					SenderID:    sender.ID,
					RecipientID: recipient.ID,
					Room:        room,
					Text:        fmt.Sprintf("seed message %d", i+1),
					SentAt:      time.Now().UTC(),
				})
				if err != nil {
					return fmt.Errorf("create message: %w", err)
				}
				cmd.Printf("created message %d in %s\n", msg.ID, room)
			}
			return nil
		},
	}
	c.Flags().StringVar(&from, "from", "", "sender username")
	c.Flags().StringVar(&to, "to", "", "recipient username")
	c.Flags().StringVar(&room, "room", "general", "room name")
	c.MarkFlagRequired("from")
	c.MarkFlagRequired("to")
	return c
}
