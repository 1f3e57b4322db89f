package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore the window from mini mode",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHost(func(ctx context.Context, c hostClient) error {
			if err := c.Restore(ctx); err != nil {
				return fmt.Errorf("failed to restore window: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), styleSuccess.Render("Restore requested."))
			return nil
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Bring the window to the front",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHost(func(ctx context.Context, c hostClient) error {
			if err := c.Show(ctx); err != nil {
				return fmt.Errorf("failed to show window: %w", err)
			}
			return nil
		})
	},
}

var quitCmd = &cobra.Command{
	Use:   "quit",
	Short: "Quit KGA Tracker",
	Long: `Quit KGA Tracker. This is an explicit quit: the window closes without
dropping to mini mode.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHost(func(ctx context.Context, c hostClient) error {
			if err := c.Quit(ctx); err != nil {
				return fmt.Errorf("failed to quit: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), styleSuccess.Render("Quit requested."))
			return nil
		})
	},
}
