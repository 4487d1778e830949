package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agronet/identity-api/internal/config"
	"github.com/agronet/identity-api/internal/database"
)

// NewUserCmd creates the user lookup command
func NewUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user <email>",
		Short: "Look up an account by email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer func() {
				if err := db.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
				}
			}()

			users := database.NewUserRepository(db)
			user, err := users.GetByEmail(context.Background(), args[0])
			if errors.Is(err, database.ErrNotFound) {
				return fmt.Errorf("no account with email %s", args[0])
			}
			if err != nil {
				return fmt.Errorf("lookup failed: %w", err)
			}

			fmt.Printf("id:      %s\n", user.ID)
			fmt.Printf("name:    %s\n", user.Name)
			fmt.Printf("email:   %s\n", user.Email)
			fmt.Printf("origin:  %s\n", user.Origin)
			fmt.Printf("created: %s\n", user.CreatedAt)
			return nil
		},
	}

	return cmd
}
