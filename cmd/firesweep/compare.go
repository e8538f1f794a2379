package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/firesweep/internal/database"
	"github.com/nao1215/firesweep/internal/model"
	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"
)

// NewCompareCmd creates the compare command.
// This command compares two sweeps stored in the history database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [old-id] [new-id]",
		Short: "Compare two sweeps from the history database",
		Long: `Compare shows how the burned-area curves changed between two stored sweeps.

For every grid size present in both sweeps it reports:
- The number of curve points in each sweep
- The mean absolute difference of the burned percentage over the densities
  both sweeps measured
- The shift of the 50% crossing, a simple percolation threshold estimate

Without arguments the latest two sweeps are compared. With one ID that sweep
is compared with the latest one.

Examples:
  # Compare the latest two sweeps
  firesweep compare

  # Compare sweep 3 with the latest sweep
  firesweep compare 3

  # Compare two specific sweeps in Markdown
  firesweep compare 3 8 --markdown`,
		Args: cobra.MaximumNArgs(2),
		RunE: runCompareCmd,
	}

	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")
	addDBDirFlag(cmd)

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	// Parse IDs before opening the database so bad input fails fast.
	ids := make([]int64, len(args))
	for i, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid sweep ID %q", arg)
		}
		ids[i] = id
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return errors.New("--json and --markdown cannot be used together")
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

	older, newer, err := loadComparedSweeps(cmd, db, ids)
	if err != nil {
		return err
	}

	result := compareSweeps(older, newer)
	out := cmd.OutOrStdout()

	switch {
	case jsonOutput:
		return outputComparisonJSON(out, result)
	case markdownOutput:
		return outputComparisonMarkdown(out, result)
	default:
		return outputComparisonText(out, result)
	}
}

// loadComparedSweeps resolves the command arguments to the older and newer
// sweep of the comparison.
func loadComparedSweeps(cmd *cobra.Command, db *database.SweepDB, ids []int64) (older, newer *model.Sweep, err error) {
	ctx := cmd.Context()

	switch len(ids) {
	case 2:
		if older, err = db.GetSweep(ctx, ids[0]); err != nil {
			return nil, nil, err
		}
		if newer, err = db.GetSweep(ctx, ids[1]); err != nil {
			return nil, nil, err
		}
		return older, newer, nil
	case 1:
		latest, err := db.LatestSweeps(ctx, 1)
		if err != nil {
			return nil, nil, err
		}
		if len(latest) == 0 {
			return nil, nil, errNoHistory
		}
		if older, err = db.GetSweep(ctx, ids[0]); err != nil {
			return nil, nil, err
		}
		if older.ID == latest[0].ID {
			return nil, nil, fmt.Errorf("sweep %d is the latest sweep; give a second ID to compare against", older.ID)
		}
		return older, latest[0], nil
	default:
		latest, err := db.LatestSweeps(ctx, 2)
		if err != nil {
			return nil, nil, err
		}
		switch len(latest) {
		case 0:
			return nil, nil, errNoHistory
		case 1:
			return nil, nil, errors.New("at least 2 sweeps are required for comparison (found 1)")
		}
		return latest[1], latest[0], nil
	}
}

// ComparisonResult holds the result of comparing two sweeps.
type ComparisonResult struct {
	// Old describes the older sweep.
	Old SweepMetadata `json:"old"`

	// New describes the newer sweep.
	New SweepMetadata `json:"new"`

	// Sizes compares the curves of every grid size present in both sweeps,
	// in the newer sweep's size order.
	Sizes []SizeComparison `json:"sizes"`

	// OnlyOld lists grid sizes measured only by the older sweep.
	OnlyOld []int `json:"only_old,omitempty"`

	// OnlyNew lists grid sizes measured only by the newer sweep.
	OnlyNew []int `json:"only_new,omitempty"`
}

// SweepMetadata contains metadata about a sweep for comparison display.
type SweepMetadata struct {
	ID          int64             `json:"id"`
	StartedAt   time.Time         `json:"started_at"`
	BurnPattern model.BurnPattern `json:"burn_pattern"`
	Repeats     int               `json:"repeats"`
	Attempted   int               `json:"attempted"`
	Failed      int               `json:"failed"`
	Cancelled   bool              `json:"cancelled,omitempty"`
}

// SizeComparison compares the curves of one grid size.
type SizeComparison struct {
	// Size is the grid size.
	Size int `json:"size"`

	// OldPoints and NewPoints are the curve point counts.
	OldPoints int `json:"old_points"`
	NewPoints int `json:"new_points"`

	// SharedDensities is the number of densities both curves measured.
	SharedDensities int `json:"shared_densities"`

	// MeanAbsDiff is the mean absolute difference of the burned percentage
	// over the shared densities. Nil when no density is shared.
	MeanAbsDiff *float64 `json:"mean_abs_diff,omitempty"`

	// OldCrossing and NewCrossing are the 50% crossings. Nil when a curve
	// never reaches 50%.
	OldCrossing *float64 `json:"old_crossing,omitempty"`
	NewCrossing *float64 `json:"new_crossing,omitempty"`
}

// CrossingShift returns NewCrossing - OldCrossing when both exist.
func (c SizeComparison) CrossingShift() (float64, bool) {
	if c.OldCrossing == nil || c.NewCrossing == nil {
		return 0, false
	}
	return *c.NewCrossing - *c.OldCrossing, true
}

// compareSweeps compares two sweeps and generates a comparison result.
func compareSweeps(older, newer *model.Sweep) *ComparisonResult {
	result := &ComparisonResult{
		Old: sweepMetadata(older),
		New: sweepMetadata(newer),
	}

	seen := make(map[int]bool)
	for _, nc := range newer.Curves {
		if seen[nc.Size] {
			continue
		}
		seen[nc.Size] = true

		oc, ok := older.Curve(nc.Size)
		if !ok {
			result.OnlyNew = append(result.OnlyNew, nc.Size)
			continue
		}
		result.Sizes = append(result.Sizes, compareCurves(oc, nc))
	}

	for _, oc := range older.Curves {
		if seen[oc.Size] || slices.Contains(result.OnlyOld, oc.Size) {
			continue
		}
		result.OnlyOld = append(result.OnlyOld, oc.Size)
	}

	return result
}

// sweepMetadata extracts the metadata shown for one side of a comparison.
func sweepMetadata(s *model.Sweep) SweepMetadata {
	return SweepMetadata{
		ID:          s.ID,
		StartedAt:   s.StartedAt,
		BurnPattern: s.Experiment.BurnPattern(),
		Repeats:     s.Experiment.Repeats(),
		Attempted:   s.Attempted,
		Failed:      s.Failed,
		Cancelled:   s.Cancelled,
	}
}

// compareCurves compares two curves of the same grid size.
func compareCurves(older, newer model.SizeCurve) SizeComparison {
	c := SizeComparison{
		Size:      newer.Size,
		OldPoints: older.Len(),
		NewPoints: newer.Len(),
	}

	var sum float64
	for _, p := range newer.Points {
		v, ok := older.ValueAt(p.Density)
		if !ok {
			continue
		}
		sum += math.Abs(p.Value - v)
		c.SharedDensities++
	}
	if c.SharedDensities > 0 {
		mean := sum / float64(c.SharedDensities)
		c.MeanAbsDiff = &mean
	}

	if x, ok := older.Crossing(model.ThresholdLevel); ok {
		c.OldCrossing = &x
	}
	if x, ok := newer.Crossing(model.ThresholdLevel); ok {
		c.NewCrossing = &x
	}

	return c
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(out io.Writer, result *ComparisonResult) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(out io.Writer, result *ComparisonResult) error {
	md := markdown.NewMarkdown(out)

	md.H1(fmt.Sprintf("Sweep Comparison: #%d → #%d", result.Old.ID, result.New.ID))
	md.PlainText("")

	md.H2("Sweeps")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Old", "New"},
		Rows: [][]string{
			{"Date", result.Old.StartedAt.Local().Format("2006-01-02 15:04"), result.New.StartedAt.Local().Format("2006-01-02 15:04")},
			{"Burn Pattern", result.Old.BurnPattern.DisplayName(), result.New.BurnPattern.DisplayName()},
			{"Repeats", strconv.Itoa(result.Old.Repeats), strconv.Itoa(result.New.Repeats)},
			{"Attempted", strconv.Itoa(result.Old.Attempted), strconv.Itoa(result.New.Attempted)},
			{"Failed", strconv.Itoa(result.Old.Failed), strconv.Itoa(result.New.Failed)},
		},
	})
	md.PlainText("")

	if result.Old.BurnPattern != result.New.BurnPattern {
		md.Warningf("The sweeps use different burn patterns (%s and %s); their thresholds are not expected to match.",
			result.Old.BurnPattern, result.New.BurnPattern)
		md.PlainText("")
	}

	md.H2("Curves")
	md.PlainText("")
	if len(result.Sizes) == 0 {
		md.PlainText("The sweeps have no grid size in common.")
		md.PlainText("")
	} else {
		rows := make([][]string, 0, len(result.Sizes))
		for _, c := range result.Sizes {
			rows = append(rows, []string{
				fmt.Sprintf("%d²", c.Size),
				strconv.Itoa(c.OldPoints),
				strconv.Itoa(c.NewPoints),
				formatOptional(c.MeanAbsDiff, "%.2f"),
				formatOptional(c.OldCrossing, "%.4f"),
				formatOptional(c.NewCrossing, "%.4f"),
				formatShift(c),
			})
		}
		md.Table(markdown.TableSet{
			Header: []string{"Size", "Old Points", "New Points", "Mean |Δ| (%)", "Old 50%", "New 50%", "Shift"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	if len(result.OnlyOld) > 0 {
		md.PlainText("**Only in old sweep:** " + formatSizes(result.OnlyOld))
		md.PlainText("")
	}
	if len(result.OnlyNew) > 0 {
		md.PlainText("**Only in new sweep:** " + formatSizes(result.OnlyNew))
		md.PlainText("")
	}

	return md.Build()
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(out io.Writer, result *ComparisonResult) error {
	fmt.Fprintf(out, "Sweep Comparison: #%d -> #%d\n", result.Old.ID, result.New.ID)
	fmt.Fprintln(out, strings.Repeat("=", 60))

	fmt.Fprintf(out, "\nOld sweep: %s  %s, %d repeats, %d/%d failed\n",
		result.Old.StartedAt.Local().Format("2006-01-02 15:04:05"),
		result.Old.BurnPattern, result.Old.Repeats, result.Old.Failed, result.Old.Attempted)
	fmt.Fprintf(out, "New sweep: %s  %s, %d repeats, %d/%d failed\n",
		result.New.StartedAt.Local().Format("2006-01-02 15:04:05"),
		result.New.BurnPattern, result.New.Repeats, result.New.Failed, result.New.Attempted)

	if result.Old.BurnPattern != result.New.BurnPattern {
		fmt.Fprintln(out, "\nWarning: the sweeps use different burn patterns.")
	}

	if len(result.Sizes) == 0 {
		fmt.Fprintln(out, "\nThe sweeps have no grid size in common.")
	} else {
		fmt.Fprintln(out, "\nCurves:")
		fmt.Fprintf(out, "  %-8s  %-6s  %-6s  %-10s  %-8s  %-8s  %s\n",
			"Size", "Old", "New", "Mean |Δ|", "Old 50%", "New 50%", "Shift")
		fmt.Fprintln(out, "  "+strings.Repeat("-", 70))
		for _, c := range result.Sizes {
			fmt.Fprintf(out, "  %-8s  %-6d  %-6d  %-10s  %-8s  %-8s  %s\n",
				fmt.Sprintf("%d²", c.Size),
				c.OldPoints, c.NewPoints,
				formatOptional(c.MeanAbsDiff, "%.2f"),
				formatOptional(c.OldCrossing, "%.4f"),
				formatOptional(c.NewCrossing, "%.4f"),
				formatShift(c),
			)
		}
	}

	if len(result.OnlyOld) > 0 {
		fmt.Fprintf(out, "\nOnly in old sweep: %s\n", formatSizes(result.OnlyOld))
	}
	if len(result.OnlyNew) > 0 {
		fmt.Fprintf(out, "Only in new sweep: %s\n", formatSizes(result.OnlyNew))
	}

	return nil
}

// formatOptional formats v with format, or "-" when v is nil.
func formatOptional(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

// formatShift formats the 50% crossing shift of c with its sign.
func formatShift(c SizeComparison) string {
	shift, ok := c.CrossingShift()
	if !ok {
		return "-"
	}
	return formatDelta(shift)
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta float64) string {
	switch {
	case delta > 0:
		return fmt.Sprintf("+%.4f", delta)
	case delta < 0:
		return fmt.Sprintf("%.4f", delta)
	default:
		return "0"
	}
}
