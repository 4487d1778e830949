package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agronet/identity-api/internal/auth"
)

// NewPasswordCmd creates the password hashing command
func NewPasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password <plaintext>",
		Short: "Hash a password",
		Long:  "Hash a password the way the signup flow does, for seeding accounts by hand",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashPassword(args[0])
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}

			fmt.Println(hash)
			return nil
		},
	}

	return cmd
}
