package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/nao1215/firesweep/internal/config"
	"github.com/nao1215/firesweep/internal/database"
	"github.com/nao1215/firesweep/internal/engine"
	"github.com/nao1215/firesweep/internal/log"
	"github.com/nao1215/firesweep/internal/model"
	"github.com/nao1215/firesweep/internal/pipeline"
	"github.com/nao1215/firesweep/internal/plot"
	"github.com/nao1215/firesweep/internal/report"
	"github.com/spf13/cobra"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Sweep the engine over grid sizes and tree densities",
		Long: `Run invokes the simulation engine once for every (grid size, tree density)
pair, in size-major, density-minor order, and assembles the results into one
burned-area curve per grid size.

A sample the engine fails on, or whose output is not a single number, is
reported on stderr and left out of its curve. The sweep always continues.
Interrupting a run (Ctrl-C) stops the engine and reports the samples that
completed.

Examples:
  # Run the sweep described by .firesweep
  firesweep run

  # Sweep the percolation window of the Moore neighborhood and save a chart
  firesweep run --preset moore-closeup -o closeup.png

  # Explicit sweep without a config file
  firesweep run -e ./project_forest_fire --sizes 20,40,80 --densities 0.3,0.4,0.5

  # Run four engine processes at once and open the chart in a browser
  firesweep run -w 4 --show

  # Write a Markdown report
  firesweep run --markdown --report sweep.md

Presets:
` + presetHelp(),
		Args: cobra.NoArgs,
		RunE: runRunCmd,
	}

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .firesweep in current or home directory)")

	// Experiment flags
	cmd.Flags().StringP("engine", "e", "",
		"Path of the simulation engine executable")
	cmd.Flags().IntSlice("sizes", config.DefaultSizes,
		"Grid sizes (cells per side), in sweep order")
	cmd.Flags().Float64Slice("densities", nil,
		"Tree densities, strictly increasing (default: 0 to 1 in steps of 0.05)")
	cmd.Flags().IntP("repeats", "n", config.DefaultRepeats,
		"Independent trials the engine averages per sample")
	cmd.Flags().StringP("burn-pattern", "b", string(config.DefaultBurnPattern),
		"Neighborhood rule passed to the engine (moore, vonneumann)")
	cmd.Flags().String("preset", "",
		"Density range and regime preset ("+strings.Join(config.PresetNames(), ", ")+")")

	// Execution flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Upper bound on one engine invocation (0 disables)")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of engine processes run at once")
	cmd.Flags().Float64("spawn-rate", 0,
		"Maximum engine launches per second (0 means unlimited)")

	// Chart flags
	cmd.Flags().StringP("output", "o", config.DefaultChartFile,
		"Write the chart to this file (.png, .svg or .html; empty disables)")
	cmd.Flags().String("regime", string(config.DefaultRegime),
		"Chart tick granularity (coarse, fine, auto)")
	cmd.Flags().String("title", config.DefaultChartTitle,
		"Chart title")
	cmd.Flags().Bool("show", false,
		"Open the chart in the default browser")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("report", "r", "",
		"Write the report to this file instead of stdout")
	cmd.Flags().Bool("log-json", false,
		"Write log records as JSON")

	// History flags
	cmd.Flags().Bool("no-save", false,
		"Do not save the sweep to the history database")
	addDBDirFlag(cmd)

	return cmd
}

// addDBDirFlag registers the history database directory flag.
func addDBDirFlag(cmd *cobra.Command) {
	cmd.Flags().String("db-dir", "",
		"Directory of the history database (default: "+config.XDGDataDir()+")")
}

// dbDirFlag returns the history database directory selected by --db-dir.
func dbDirFlag(cmd *cobra.Command) (string, error) {
	dir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return "", err
	}
	if dir == "" {
		return config.XDGDataDir(), nil
	}
	return dir, nil
}

// presetHelp lists the built-in presets for the command help.
func presetHelp() string {
	var sb strings.Builder
	for _, name := range config.PresetNames() {
		p, err := config.LookupPreset(name)
		if err != nil {
			continue
		}
		fmt.Fprintf(&sb, "  %-20s %s\n", p.Name, p.Description)
	}
	return sb.String()
}

// runRunCmd executes the run command.
func runRunCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if cfg.ChartFile != "" {
		if _, err := plot.FormatFromPath(cfg.ChartFile); err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
	}

	logJSON, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		return err
	}
	logger := setupLogger(cmd.ErrOrStderr(), cfg.Verbose, logJSON)
	slog.SetDefault(logger)

	for _, w := range cfg.RangeWarnings() {
		logger.Warn("engine may reject configured value", "detail", w)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, stopping sweep...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runSweep(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the structured logger for a run.
func setupLogger(w io.Writer, verbose, jsonFormat bool) *slog.Logger {
	if jsonFormat {
		return log.NewJSONLogger(w, verbose)
	}
	return log.NewLogger(w, verbose)
}

// buildConfig merges defaults, the configuration file, the preset and the
// command line flags, in increasing order of precedence. Flags only apply
// when they were set explicitly, so that their defaults never mask values
// from the file.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicitly named config file must exist; the implicit search may
	// find nothing.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		if err := cfg.ApplyFile(file); err != nil {
			return nil, fmt.Errorf("config file %s: %w", configPath, err)
		}
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	if name, err := flags.GetString("preset"); err != nil {
		return nil, err
	} else if name != "" {
		preset, err := config.LookupPreset(name)
		if err != nil {
			return nil, err
		}
		if err := cfg.ApplyPreset(preset); err != nil {
			return nil, err
		}
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	noSave, err := flags.GetBool("no-save")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noSave
	if cfg.DBDir, err = dbDirFlag(cmd); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyFlags copies every explicitly set flag into cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	var err error
	if flags.Changed("engine") {
		if cfg.EnginePath, err = flags.GetString("engine"); err != nil {
			return err
		}
	}
	if flags.Changed("sizes") {
		if cfg.Sizes, err = flags.GetIntSlice("sizes"); err != nil {
			return err
		}
	}
	if flags.Changed("densities") {
		if cfg.Densities, err = flags.GetFloat64Slice("densities"); err != nil {
			return err
		}
	}
	if flags.Changed("repeats") {
		if cfg.Repeats, err = flags.GetInt("repeats"); err != nil {
			return err
		}
	}
	if flags.Changed("burn-pattern") {
		s, err := flags.GetString("burn-pattern")
		if err != nil {
			return err
		}
		if cfg.BurnPattern, err = model.ParseBurnPattern(s); err != nil {
			return fmt.Errorf("%w: %w", config.ErrInvalidBurnPattern, err)
		}
	}
	if flags.Changed("regime") {
		s, err := flags.GetString("regime")
		if err != nil {
			return err
		}
		if cfg.Regime, err = model.ParseTickRegime(s); err != nil {
			return fmt.Errorf("%w: %w", config.ErrInvalidRegime, err)
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return err
		}
	}
	if flags.Changed("workers") {
		if cfg.Workers, err = flags.GetInt("workers"); err != nil {
			return err
		}
	}
	if flags.Changed("spawn-rate") {
		if cfg.SpawnRate, err = flags.GetFloat64("spawn-rate"); err != nil {
			return err
		}
	}
	if flags.Changed("output") {
		if cfg.ChartFile, err = flags.GetString("output"); err != nil {
			return err
		}
	}
	if flags.Changed("title") {
		if cfg.ChartTitle, err = flags.GetString("title"); err != nil {
			return err
		}
	}

	if cfg.Show, err = flags.GetBool("show"); err != nil {
		return err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return err
	}
	if cfg.ReportFile, err = flags.GetString("report"); err != nil {
		return err
	}
	return nil
}

// runSweep executes the sweep and produces the chart, report and history
// record. A cancelled sweep still produces all three from the samples that
// completed; the cancellation is returned afterwards.
func runSweep(ctx context.Context, out, errOut io.Writer, cfg *config.Config, logger *slog.Logger) error {
	exp := cfg.Experiment()

	var db *database.SweepDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "path", db.Path())
	}

	// Progress lines must not interleave with a machine-readable report
	// on stdout.
	progress := out
	if (cfg.JSONReport || cfg.MarkdownReport) && cfg.ReportFile == "" {
		progress = errOut
	}

	invoker := engine.NewCommand(exp,
		engine.WithTimeout(cfg.Timeout),
		engine.WithSpawnRate(cfg.SpawnRate),
		engine.WithLogger(logger),
	)
	sweeper := pipeline.New(invoker,
		pipeline.WithWorkers(cfg.Workers),
		pipeline.WithLogger(logger),
		pipeline.WithProgress(progress),
	)

	sweep, runErr := sweeper.Run(ctx, exp)
	fmt.Fprintf(progress, "Sweep finished in %s: %d of %d samples succeeded\n\n",
		sweep.Duration.Round(time.Millisecond), sweep.Succeeded(), exp.SampleCount())

	spec := plot.Configure(exp, sweep.Curves, plot.Options{
		Title:    cfg.ChartTitle,
		Subtitle: chartSubtitle(exp),
		Regime:   cfg.Regime,
		Width:    cfg.ChartWidth,
		Height:   cfg.ChartHeight,
	})
	if err := outputChart(progress, cfg, spec, logger); err != nil {
		logger.Error("chart failed", "error", err)
	}

	// Saving first lets the report show the history ID.
	if err := saveSweep(db, sweep, logger); err != nil {
		logger.Error("failed to save sweep", "error", err)
	}

	if err := outputReport(out, cfg, sweep); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return runErr
}

// chartSubtitle describes the engine settings the curves were measured with.
func chartSubtitle(exp model.ExperimentConfig) string {
	return fmt.Sprintf("%s neighborhood, %d repeats per sample",
		exp.BurnPattern().DisplayName(), exp.Repeats())
}

// outputChart writes the chart file and opens it when --show is set.
// An empty chart file with --show renders only the temporary page.
// A sweep without a single successful sample has nothing to draw and is
// skipped with a warning.
func outputChart(progress io.Writer, cfg *config.Config, spec model.RenderSpec, logger *slog.Logger) error {
	if cfg.ChartFile == "" && !cfg.Show {
		return nil
	}
	if len(spec.Series) == 0 {
		logger.Warn("no curve has any points, skipping chart")
		return nil
	}

	if cfg.ChartFile != "" {
		if err := plot.WriteFile(cfg.ChartFile, spec); err != nil {
			return err
		}
		fmt.Fprintf(progress, "Chart written to %s\n", cfg.ChartFile)
	}

	if !cfg.Show {
		return nil
	}

	page := cfg.ChartFile
	if format, _ := plot.FormatFromPath(page); format != plot.FormatHTML {
		page = filepath.Join(config.XDGCacheDir(),
			fmt.Sprintf("sweep-%s.html", time.Now().Format("20060102-150405")))
		if err := plot.WriteFile(page, spec); err != nil {
			return err
		}
	}
	abs, err := filepath.Abs(page)
	if err != nil {
		return fmt.Errorf("failed to resolve chart path: %w", err)
	}
	logger.Info("opening chart", "path", abs)
	return plot.OpenBrowser("file://" + filepath.ToSlash(abs))
}

// outputReport writes the sweep report in the requested format.
func outputReport(out io.Writer, cfg *config.Config, sweep *model.Sweep) (err error) {
	output := out
	if cfg.ReportFile != "" {
		if dir := filepath.Dir(cfg.ReportFile); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		output = f
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output, report.WithChartTitle(cfg.ChartTitle))
	default:
		writer = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err = writer.Write(sweep)
	return err
}

// saveSweep saves the sweep to the history database.
// If db is nil, this function is a no-op.
func saveSweep(db *database.SweepDB, sweep *model.Sweep, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	// The sweep context may already be cancelled; the record is still wanted.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	id, err := db.SaveSweep(ctx, sweep)
	if err != nil {
		return err
	}

	logger.Info("sweep saved to database", "id", id)
	return nil
}
