/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var manualsCmd = &cobra.Command{
	Use:   "manuals",
	Short: "List stored manuals",
	RunE: func(cmd *cobra.Command, args []string) error {
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

		titles, err := a.manuals.ListManuals(ctx)
		if err != nil {
			return err
		}
		for _, t := range titles {
			fmt.Fprintln(cmd.OutOrStdout(), t)
		}
		return nil
	},
}

var deleteManualCmd = &cobra.Command{
	Use:   "delete <title>",
	Short: "Delete a manual and its upload records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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

		if err := a.manuals.DeleteManual(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Manual '%s' successfully deleted.\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(manualsCmd)
	manualsCmd.AddCommand(deleteManualCmd)
}
