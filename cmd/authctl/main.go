package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agronet/identity-api/cmd/authctl/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "authctl",
		Short: "Operational tool for the identity API",
		Long:  "CLI tool for generating secrets, hashing passwords and working with session tokens",
	}

	rootCmd.AddCommand(commands.NewSecretCmd())
	rootCmd.AddCommand(commands.NewPasswordCmd())
	rootCmd.AddCommand(commands.NewTokenCmd())
	rootCmd.AddCommand(commands.NewUserCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
