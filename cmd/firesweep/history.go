package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/firesweep/internal/database"
	"github.com/spf13/cobra"
)

// errNoHistory is returned when a history command finds no stored sweeps.
var errNoHistory = errors.New("no sweeps in the history database (use 'firesweep run' to record one)")

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List sweeps stored in the history database",
		Long: `History lists the sweeps recorded by 'firesweep run', newest first.

Each line shows the sweep ID, when it started, the burn pattern, the grid
sizes, the number of curve points and the number of failed samples. Use the
IDs with 'firesweep compare'.

Examples:
  # List the 20 most recent sweeps
  firesweep history

  # List every stored sweep
  firesweep history --limit 0

  # Delete a sweep
  firesweep history --delete 7`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "l", 20,
		"Maximum number of sweeps to list (0 lists all)")
	cmd.Flags().Int64("delete", 0,
		"Delete the sweep with this ID")
	addDBDirFlag(cmd)

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	deleteID, err := cmd.Flags().GetInt64("delete")
	if err != nil {
		return err
	}
	dbDir, err := dbDirFlag(cmd)
	if err != nil {
		return err
	}

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if deleteID != 0 {
		if err := db.DeleteSweep(ctx, deleteID); err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted sweep %d\n", deleteID)
		return nil
	}

	summaries, err := db.ListSweeps(ctx, limit)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Fprintln(out, "No sweeps found in the history database.")
		fmt.Fprintln(out, "\nUse 'firesweep run' to record one.")
		return nil
	}

	printHistory(out, summaries)
	return nil
}

// printHistory writes the sweep history table.
func printHistory(out io.Writer, summaries []database.SweepSummary) {
	fmt.Fprintf(out, "Sweep history (%d sweeps):\n\n", len(summaries))
	fmt.Fprintf(out, "  %-6s  %-19s  %-11s  %-28s  %-7s  %s\n",
		"ID", "Date", "Pattern", "Sizes", "Points", "Failed")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 86))

	for _, s := range summaries {
		failed := strconv.Itoa(s.Failed)
		if s.Cancelled {
			failed += " (cancelled)"
		}
		fmt.Fprintf(out, "  %-6d  %-19s  %-11s  %-28s  %-7d  %s\n",
			s.ID,
			s.StartedAt.Local().Format("2006-01-02 15:04:05"),
			s.Experiment.BurnPattern(),
			truncate(formatSizes(s.Experiment.Sizes()), 28),
			s.CurvePoints,
			failed,
		)
	}

	fmt.Fprintln(out, "\nUse 'firesweep compare' to compare the latest two sweeps.")
	fmt.Fprintln(out, "Use 'firesweep compare <old-id> <new-id>' to compare specific sweeps.")
}

// formatSizes joins grid sizes with commas.
func formatSizes(sizes []int) string {
	parts := make([]string, len(sizes))
	for i, s := range sizes {
		parts[i] = strconv.Itoa(s)
	}
	return strings.Join(parts, ",")
}

// truncate shortens s to at most n bytes, marking the cut with "...".
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
