package main

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"text/template"

	"github.com/nao1215/firesweep/internal/config"
	"github.com/nao1215/firesweep/internal/model"
	"github.com/spf13/cobra"
)

//go:embed templates/firesweep.yaml.tmpl
var templateFS embed.FS

// configTemplate renders a commented configuration file from initValues.
var configTemplate = template.Must(template.New("firesweep.yaml.tmpl").
	Funcs(template.FuncMap{
		"quote":   strconv.Quote,
		"density": model.FormatDensity,
	}).
	ParseFS(templateFS, "templates/firesweep.yaml.tmpl"))

// defaultEnginePath is written when --engine is not given.
const defaultEnginePath = "../target/release/project_forest_fire"

// initValues are the settings substituted into the configuration template.
type initValues struct {
	Preset      string
	Engine      string
	From        float64
	To          float64
	Step        float64
	BurnPattern model.BurnPattern
	Regime      model.TickRegime
}

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter firesweep configuration file",
		Long: `Init writes a commented .firesweep configuration file.

The file lists every option with its default. --engine fills in the engine
path and --preset fills in the density range, chart regime and burn pattern
of a named sweep:
` + presetHelp() + `
Examples:
  # Write .firesweep in the current directory
  firesweep init

  # Start from the Moore close-up sweep with a local engine build
  firesweep init --preset moore-closeup -e ./forest_fire -o closeup.yaml

  # Replace an existing file
  firesweep init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Configuration file to write")
	cmd.Flags().BoolP("force", "f", false,
		"Replace the file if it already exists")
	cmd.Flags().StringP("engine", "e", defaultEnginePath,
		"Engine path written into the file")
	cmd.Flags().String("preset", "",
		"Start from a named sweep")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	outputPath, err := flags.GetString("output")
	if err != nil {
		return err
	}
	force, err := flags.GetBool("force")
	if err != nil {
		return err
	}
	engine, err := flags.GetString("engine")
	if err != nil {
		return err
	}
	preset, err := flags.GetString("preset")
	if err != nil {
		return err
	}

	values, err := newInitValues(engine, preset)
	if err != nil {
		return err
	}
	content, err := renderConfig(values)
	if err != nil {
		return err
	}
	if err := writeConfigFile(outputPath, content, force); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	if engine == defaultEnginePath {
		fmt.Fprintln(out, "\nSet 'engine' to your simulation build before running.")
	}
	if outputPath == config.DefaultConfigFile {
		fmt.Fprintln(out, "Start a sweep with: firesweep run")
	} else {
		fmt.Fprintf(out, "Start a sweep with: firesweep run --config %s\n", outputPath)
	}

	return nil
}

// newInitValues returns the template values for engine and an optional
// preset name.
func newInitValues(engine, preset string) (initValues, error) {
	v := initValues{
		Engine:      engine,
		From:        config.DefaultDensityRange.From,
		To:          config.DefaultDensityRange.To,
		Step:        config.DefaultDensityRange.Step,
		BurnPattern: config.DefaultBurnPattern,
		Regime:      config.DefaultRegime,
	}
	if preset == "" {
		return v, nil
	}

	p, err := config.LookupPreset(preset)
	if err != nil {
		return initValues{}, err
	}
	v.Preset = p.Name
	v.From, v.To, v.Step = p.Densities.From, p.Densities.To, p.Densities.Step
	v.Regime = p.Regime
	if p.BurnPattern != "" {
		v.BurnPattern = p.BurnPattern
	}
	return v, nil
}

// renderConfig executes the template and checks that the result is a
// configuration firesweep accepts.
func renderConfig(v initValues) ([]byte, error) {
	var buf bytes.Buffer
	if err := configTemplate.Execute(&buf, v); err != nil {
		return nil, fmt.Errorf("failed to render config template: %w", err)
	}

	file, err := config.ParseConfig(buf.Bytes(), "generated configuration")
	if err != nil {
		return nil, err
	}
	cfg := config.NewConfig()
	if err := cfg.ApplyFile(file); err != nil {
		return nil, fmt.Errorf("generated configuration is invalid: %w", err)
	}
	return buf.Bytes(), nil
}

// writeConfigFile writes content to path with owner-only permissions.
// Without force an existing file is left untouched.
func writeConfigFile(path string, content []byte, force bool) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flag = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(path, flag, 0o600) //nolint:gosec // output path is user input
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", path)
	}
	if err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close configuration file: %w", cerr)
		}
	}()

	if _, err := f.Write(content); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	return nil
}
