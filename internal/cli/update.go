package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kgatracker/kgatracker/internal/buildinfo"
	"github.com/kgatracker/kgatracker/internal/config"
	"github.com/kgatracker/kgatracker/internal/updater"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Inspect and control application updates",
}

var (
	checkFeed    string
	checkCurrent string
)

var updateCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Look for a newer release in the update feed",
	Long: `Read the update feed and report the newest release. The feed defaults to
the one in settings.yaml. Nothing is downloaded or installed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		location := checkFeed
		if location == "" {
			settings, err := config.LoadSettings()
			if err != nil {
				return fmt.Errorf("failed to load settings: %w", err)
			}
			location = settings.Updates.FeedURL
		}

		feed, err := updater.OpenFeed(location)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Checking %s...\n", styleValue.Render(location))
		rel, err := updater.Latest(ctx, feed, checkCurrent)
		if errors.Is(err, updater.ErrNoUpdate) {
			fmt.Fprintf(out, "%s (%s)\n", styleSuccess.Render("Already up to date"), checkCurrent)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to check for updates: %w", err)
		}

		fmt.Fprintf(out, "Update available: %s → %s\n", checkCurrent, styleUpdate.Render(rel.Version.String()))
		fmt.Fprintf(out, "  %s %s (%d bytes)\n", styleLabel.Render("Package"), rel.File, rel.Size)
		return nil
	},
}

var updateNowCmd = &cobra.Command{
	Use:   "now",
	Short: "Ask the running app to check for updates now",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHost(func(ctx context.Context, c hostClient) error {
			if err := c.CheckForUpdates(ctx); err != nil {
				return fmt.Errorf("failed to start update check: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), styleSuccess.Render("Update check started."))
			return nil
		})
	},
}

var updateSetURLCmd = &cobra.Command{
	Use:   "set-url <location>",
	Short: "Point the running app at another update feed",
	Long: `Point the running app at another update feed, a folder or an http(s) URL.
The change lasts until the app exits; a check already running keeps its feed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHost(func(ctx context.Context, c hostClient) error {
			if err := c.SetUpdateURL(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to set update feed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Update feed set to %s\n", styleValue.Render(args[0]))
			return nil
		})
	},
}

var updateReachableCmd = &cobra.Command{
	Use:   "reachable [location]",
	Short: "Check whether an update feed answers",
	Long: `Check whether an update feed serves a release index. Without a location
the running app's current feed is checked.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		location := ""
		if len(args) == 1 {
			location = args[0]
		}
		return withHost(func(ctx context.Context, c hostClient) error {
			ok, err := c.CheckUpdateServer(ctx, location)
			if err != nil {
				return fmt.Errorf("failed to check update server: %w", err)
			}
			if ok {
				fmt.Fprintln(cmd.OutOrStdout(), styleSuccess.Render("reachable"))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), styleError.Render("unreachable"))
			return errUnreachable
		})
	},
}

var errUnreachable = errors.New("update server unreachable")

func init() {
	updateCheckCmd.Flags().StringVar(&checkFeed, "feed", "", "feed location (default from settings)")
	updateCheckCmd.Flags().StringVar(&checkCurrent, "current", buildinfo.Version, "version to compare against")

	updateCmd.AddCommand(updateCheckCmd)
	updateCmd.AddCommand(updateNowCmd)
	updateCmd.AddCommand(updateReachableCmd)
	updateCmd.AddCommand(updateSetURLCmd)
}
