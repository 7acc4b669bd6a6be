package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"whisperwiz/internal/config"
	"whisperwiz/internal/history"
)

const historyTimeLayout = "2006-01-02 15:04:05"

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded batch runs",
	}
	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryPruneCommand(ctx))
	return historyCmd
}

func (c *commandContext) withHistory(fn func(*history.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	path := cfg.HistoryPath()
	if path == "" {
		return errors.New("run history is disabled (history.enabled = false)")
	}
	store, err := history.Open(path)
	if err != nil {
		return fmt.Errorf("open run history: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				runs, err := store.ListRuns(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				fmt.Fprintln(out, renderTable("", runColumns, runRows(runs)))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to show (0 for all)")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the files processed by a run (an ID prefix is enough)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				run, err := store.GetRun(cmd.Context(), args[0])
				if err != nil {
					if errors.Is(err, history.ErrNotFound) {
						return fmt.Errorf("no run matches %q", args[0])
					}
					return err
				}
				items, err := store.ListItems(cmd.Context(), run.ID)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range runDetailLines(run, colorize) {
					fmt.Fprintln(out, line)
				}
				if len(items) == 0 {
					fmt.Fprintln(out, "No files recorded")
					return nil
				}
				title := fmt.Sprintf("Run %s", shortRunID(run.ID))
				fmt.Fprintln(out, renderTable(title, itemColumns, itemRows(items)))
				return nil
			})
		},
	}
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete runs older than the given number of days",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days < 1 {
				return errors.New("--older-than must be at least 1 day")
			}
			return ctx.withHistory(func(store *history.Store) error {
				cutoff := time.Now().Add(-time.Duration(days) * 24 * time.Hour)
				removed, err := store.Prune(cmd.Context(), cutoff)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d run(s) started before %s\n", removed, cutoff.Local().Format(historyTimeLayout))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&days, "older-than", 30, "Age in days")
	return cmd
}

var (
	runColumns = []column{
		{title: "ID"}, {title: "Started"}, {title: "Status"},
		{title: "Files", right: true}, {title: "Failed", right: true},
		{title: "Model"}, {title: "Output"},
	}
	itemColumns = []column{
		{title: "#", right: true}, {title: "File"}, {title: "Status"},
		{title: "Segments", right: true}, {title: "Elapsed", right: true}, {title: "Detail"},
	}
)

func runRows(runs []history.Run) [][]string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortRunID(run.ID),
			run.StartedAt.Local().Format(historyTimeLayout),
			string(run.Status),
			fmt.Sprintf("%d/%d", run.Completed, run.Total),
			strconv.Itoa(run.Failed),
			run.Model,
			run.OutputDir,
		})
	}
	return rows
}

func itemRows(items []history.Item) [][]string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		detail := item.OutputPath
		if item.Status == history.ItemFailed {
			detail = item.ErrorKind
			if msg := firstLine(item.Error); msg != "" {
				detail += ": " + msg
			}
		}
		rows = append(rows, []string{
			strconv.Itoa(item.Seq),
			item.SourcePath,
			string(item.Status),
			strconv.Itoa(item.Segments),
			item.Elapsed.Round(time.Millisecond).String(),
			detail,
		})
	}
	return rows
}

func runDetailLines(run history.Run, colorize bool) []string {
	kind := statusOK
	switch run.Status {
	case history.RunFailed:
		kind = statusError
	case history.RunRunning:
		kind = statusInfo
	default:
		if run.Failed > 0 {
			kind = statusWarn
		}
	}
	lines := renderSectionHeader("Run "+run.ID, colorize)
	lines = append(lines,
		renderStatusLine("Status", kind, string(run.Status), colorize),
		renderStatusLine("Started", statusInfo, run.StartedAt.Local().Format(historyTimeLayout), colorize),
	)
	if run.FinishedAt != nil {
		lines = append(lines, renderStatusLine("Finished", statusInfo, run.FinishedAt.Local().Format(historyTimeLayout), colorize))
	}
	lines = append(lines,
		renderStatusLine("Input", statusInfo, run.InputDir, colorize),
		renderStatusLine("Output", statusInfo, run.OutputDir, colorize),
		renderStatusLine("Engine", statusInfo, fmt.Sprintf("%s (%s, %s)", run.Model, run.Backend, run.OutputMode), colorize),
		renderStatusLine("Files", statusInfo, fmt.Sprintf("%d of %d processed, %d failed", run.Completed, run.Total, run.Failed), colorize),
	)
	if run.Error != "" {
		lines = append(lines, renderStatusLine("Error", statusError, run.Error, colorize))
	}
	return lines
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// historyEnabled is used by doctor to report the ledger location.
func historyEnabled(cfg *config.Config) (string, bool) {
	path := cfg.HistoryPath()
	return path, path != ""
}
