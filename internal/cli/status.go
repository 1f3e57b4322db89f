package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kgatracker/kgatracker/internal/control"
	"github.com/kgatracker/kgatracker/internal/tui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the window and update state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withHost(func(ctx context.Context, c hostClient) error {
			st, err := c.GetState(ctx)
			if err != nil {
				return fmt.Errorf("failed to get state: %w", err)
			}
			printStatus(cmd.OutOrStdout(), st)
			return nil
		})
	},
}

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live status monitor",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := connectHost()
		if err != nil {
			return err
		}
		defer c.Close()
		return tui.Run(c, watchInterval)
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", tui.DefaultInterval, "poll interval")
}

func printStatus(out io.Writer, st control.Status) {
	fmt.Fprintf(out, "  %s %s %s\n",
		styleBrand.Render("KGA Tracker"),
		styleVersion.Render(st.Version),
		styleHint.Render(fmt.Sprintf("(pid %d)", st.PID)),
	)

	row := func(label, value string) {
		fmt.Fprintf(out, "    %s %s\n", styleLabel.Render(fmt.Sprintf("%-12s", label)), value)
	}

	modeStyle := styleNormal
	if st.Mode == "mini" {
		modeStyle = styleMini
	}
	row("Mode", modeStyle.Render(st.Mode))
	var flags []string
	if st.ShuttingDown {
		flags = append(flags, "shutting down")
	}
	if st.Quitting {
		flags = append(flags, "quitting")
	}
	if st.Minimizing {
		flags = append(flags, "minimizing")
	}
	if len(flags) > 0 {
		row("Flags", styleWarning.Render(strings.Join(flags, ", ")))
	}
	if len(st.Pending) > 0 {
		row("Pending", styleValue.Render(strings.Join(st.Pending, ", ")))
	}

	row("Update", styleValue.Render(st.Update.State))
	row("Feed", styleValue.Render(st.Update.FeedURL))
	if st.Update.Latest != "" {
		row("Latest", styleUpdate.Render(st.Update.Latest))
	}
	if !st.Update.LastChecked.IsZero() {
		row("Last check", styleValue.Render(st.Update.LastChecked.Local().Format(time.DateTime)))
	}
	if st.Update.LastError != "" {
		row("Last error", styleError.Render(st.Update.LastError))
	}
}
