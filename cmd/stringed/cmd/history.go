package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sandrolain/gostringed/internal/history"
)

var (
	historyListLimit int
	historyTopLimit  int
	historyOlderThan time.Duration
	historyPurge     bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the evaluation history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent evaluations",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyTopCmd = &cobra.Command{
	Use:   "top",
	Short: "List the most evaluated programs",
	Args:  cobra.NoArgs,
	RunE:  runHistoryTop,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old evaluations",
	Args:  cobra.NoArgs,
	RunE:  runHistoryPrune,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyTopCmd, historyPruneCmd)

	historyListCmd.Flags().IntVarP(&historyListLimit, "limit", "n", 20, "number of entries")
	historyTopCmd.Flags().IntVarP(&historyTopLimit, "limit", "n", 10, "number of programs")
	historyPruneCmd.Flags().DurationVar(&historyOlderThan, "older-than", 0, "remove entries older than this (default: history.retention)")
	historyPruneCmd.Flags().BoolVar(&historyPurge, "purge", false, "also delete removed entries permanently")
}

// openHistory opens the configured store, ignoring history.enabled: the
// history commands are explicit requests.
func openHistory(cmd *cobra.Command) (*app, error) {
	a, err := newApp(cmd.ErrOrStderr(), false)
	if err != nil {
		return nil, err
	}
	store, err := history.Open(a.cfg.History.Path)
	if err != nil {
		return nil, err
	}
	a.history = store
	return a, nil
}

func runHistoryList(cmd *cobra.Command, _ []string) error {
	a, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	entries, err := a.history.Recent(cmd.Context(), historyListLimit)
	if err != nil {
		return err
	}

	ok := color.New(color.FgGreen).SprintFunc()
	fail := color.New(color.FgRed).SprintFunc()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tSTATUS\tPROGRAM\tINPUT\tOUTPUT")
	for _, e := range entries {
		status := ok("ok")
		if e.ErrorCode != "" {
			status = fail(e.ErrorCode)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			time.Unix(0, e.CreatedAt).Format(time.DateTime),
			status,
			clip(e.Program, 40),
			clip(e.Input, 24),
			clip(e.Output, 24))
	}
	return w.Flush()
}

func runHistoryTop(cmd *cobra.Command, _ []string) error {
	a, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	counts, err := a.history.Frequent(cmd.Context(), historyTopLimit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "COUNT\tFINGERPRINT\tPROGRAM")
	for _, c := range counts {
		fmt.Fprintf(w, "%d\t%s\t%s\n", c.Count, c.Fingerprint[:12], clip(c.Program, 60))
	}
	return w.Flush()
}

func runHistoryPrune(cmd *cobra.Command, _ []string) error {
	a, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	olderThan := historyOlderThan
	if olderThan <= 0 {
		olderThan = a.cfg.History.Retention.Duration
	}

	n, err := a.history.Prune(cmd.Context(), olderThan)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed %d entries older than %s\n", n, olderThan)

	if historyPurge {
		purged, err := a.history.Purge(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "purged %d entries\n", purged)
	}
	return nil
}

// clip shortens s to at most n runes for tabular output.
func clip(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", `\n`)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
