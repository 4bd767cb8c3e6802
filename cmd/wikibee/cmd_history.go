package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/patrickdeanbrown/wikibee/pkg/history"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect past extraction runs",
	}
	cmd.AddCommand(newHistoryListCmd(), newHistoryClearCmd())
	return cmd
}

func newHistoryListCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistoryForCmd(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Recent(limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tTITLE\tFORMAT\tDURATION\tOUTPUT")
			for _, run := range runs {
				out := run.MarkdownPath
				if run.AudioPath != "" {
					out = run.AudioPath
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					run.CreatedAt.Local().Format("2006-01-02 15:04"),
					run.Title, run.Format, formatDuration(run.DurationSeconds), out)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	return cmd
}

func newHistoryClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistoryForCmd(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
			return nil
		},
	}
}

func openHistoryForCmd(cmd *cobra.Command) (*history.Store, error) {
	cfg, err := loadConfigForCmd(cmd)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(cfg.History.Path); os.IsNotExist(err) {
		// Open would create an empty database just to report nothing.
		return nil, fmt.Errorf("no history database at %s", cfg.History.Path)
	}
	return history.Open(cfg.History.Path)
}

// formatDuration renders seconds as h:mm:ss, or a dash when unknown.
func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
