/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tieubaoca/manualbot/types"
)

var askCmd = &cobra.Command{
	Use:   "ask --manual <title> <question>",
	Short: "Ask one question about a manual",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manual, _ := cmd.Flags().GetString("manual")
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close(ctx)

		res, err := a.answer.Answer(ctx, manual, types.RoleUser, strings.Join(args, " "), nil)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Data.OutputText)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringP("manual", "m", "", "Manual title to search")
	askCmd.MarkFlagRequired("manual")
}
