/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tieubaoca/manualbot/utils"
)

var issueTokenCmd = &cobra.Command{
	Use:   "issue-token",
	Short: "Print an admin bearer token for the management endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, _ := cmd.Flags().GetString("subject")
		ttl, _ := cmd.Flags().GetDuration("ttl")
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		token, err := utils.GenerateAdminToken(cfg.Auth.AdminSecret, subject, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(issueTokenCmd)
	issueTokenCmd.Flags().String("subject", "admin", "Token subject")
	issueTokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
}
