package commands

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
)

// NewSecretCmd creates the signing-secret generation command
func NewSecretCmd() *cobra.Command {
	var length int

	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Generate a random signing secret",
		Long:  "Generate a cryptographically random secret suitable for JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			if length < 32 {
				return fmt.Errorf("secret must be at least 32 bytes, got %d", length)
			}

			buf := make([]byte, length)
			if _, err := rand.Read(buf); err != nil {
				return fmt.Errorf("failed to generate secret: %w", err)
			}

			fmt.Println(hex.EncodeToString(buf))
			return nil
		},
	}

	cmd.Flags().IntVar(&length, "length", 32, "Secret length in bytes")

	return cmd
}
