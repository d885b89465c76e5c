package main

import (
	"fmt"
	"os"
	"time"

	"github.com/arnavshah/trip-roster-api/pkg/auth"
	"github.com/arnavshah/trip-roster-api/pkg/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "rosterctl",
	Short:         "Operator tooling for the trip roster API",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadDotEnv()
	},
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := auth.HashPassword(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

var tokenTTL time.Duration

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an admin bearer token using the configured JWT_SECRET",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Parse()
		if err != nil {
			return err
		}
		ttl := cfg.TokenTTL
		if tokenTTL > 0 {
			ttl = tokenTTL
		}
		authn, err := auth.NewAuthenticator(cfg.JWTSecret, cfg.AdminPassword, cfg.AdminPasswordHash, ttl)
		if err != nil {
			return err
		}
		token, err := authn.CreateToken(auth.AdminSubject)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (defaults to TOKEN_TTL)")

	rootCmd.AddCommand(hashPasswordCmd, tokenCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
