package config

import (
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"time"

	apperrors "github.com/agbru/capplan/internal/errors"
	"github.com/agbru/capplan/internal/logging"
	"github.com/agbru/capplan/internal/solver"
	"github.com/agbru/capplan/internal/ui"
)

// EnvPrefix prefixes every environment variable read by the application.
const EnvPrefix = "CAPPLAN_"

// Defaults for AppConfig.
const (
	DefaultModel     = "capital_planner_1hh"
	DefaultModelsDir = "models"
	DefaultTimeout   = 10 * time.Minute
	AllModels        = "all"
)

// Output formats accepted by -format.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// Model is a model identifier, or "all" to run every registered model.
	Model string
	// ModelsDir is the base directory holding one resource directory per model.
	ModelsDir string
	// Timeout bounds the whole run.
	Timeout time.Duration

	// GridSize, Tolerance and MaxIterations override model parameters when non-zero.
	GridSize      int
	Tolerance     float64
	MaxIterations int

	// OutputFile receives the output grid (empty for no file output).
	OutputFile string
	// Format is "csv" or "json"; empty infers it from OutputFile's extension.
	Format string
	// MetricsFile receives Prometheus metrics in text exposition format.
	MetricsFile string

	Quiet   bool
	Verbose bool
	NoColor bool
	List    bool
	// Theme names the terminal color theme.
	Theme string

	LogLevel  string
	LogFile   string
	LogFormat string
}

// ParamOverrides returns the solver parameter overrides carried by the flags.
func (c AppConfig) ParamOverrides() solver.Params {
	return solver.Params{
		GridSize:      c.GridSize,
		Tolerance:     c.Tolerance,
		MaxIterations: c.MaxIterations,
	}
}

// OutputFormat resolves the effective output format.
func (c AppConfig) OutputFormat() string {
	if c.Format != "" {
		return c.Format
	}
	if strings.EqualFold(filepath.Ext(c.OutputFile), ".json") {
		return FormatJSON
	}
	return FormatCSV
}

// Validate checks the configuration for inconsistent values.
func (c AppConfig) Validate() error {
	switch {
	case strings.TrimSpace(c.Model) == "":
		return apperrors.NewConfigError("--model must not be empty")
	case c.Timeout <= 0:
		return apperrors.NewConfigError("--timeout must be positive, got %s", c.Timeout)
	case c.GridSize < 0 || c.GridSize == 1:
		return apperrors.NewConfigError("--grid-size must be 0 (model default) or at least 2, got %d", c.GridSize)
	case c.Tolerance < 0:
		return apperrors.NewConfigError("--tolerance must not be negative, got %g", c.Tolerance)
	case c.MaxIterations < 0:
		return apperrors.NewConfigError("--max-iter must not be negative, got %d", c.MaxIterations)
	case c.Format != "" && c.Format != FormatCSV && c.Format != FormatJSON:
		return apperrors.NewConfigError("--format must be %q or %q, got %q", FormatCSV, FormatJSON, c.Format)
	case !slices.Contains(ui.ThemeNames, c.Theme):
		return apperrors.NewConfigError("--theme must be one of %s, got %q", strings.Join(ui.ThemeNames, ", "), c.Theme)
	case c.LogFormat != "" && !slices.Contains(logging.Formats, c.LogFormat):
		return apperrors.NewConfigError("--log-format must be one of %s, got %q", strings.Join(logging.Formats, ", "), c.LogFormat)
	case c.Quiet && c.Verbose:
		return apperrors.NewConfigError("--quiet and --verbose are mutually exclusive")
	}
	return nil
}

// ParseConfig parses args into an AppConfig. It returns flag.ErrHelp when
// help was requested, and a ConfigError for invalid values.
//
// Parameters:
//   - programName: The name shown in usage output.
//   - args: The command-line arguments, without the program name.
//   - errWriter: Destination for usage and parse errors.
//   - availableModels: Registered model identifiers, listed in the usage text.
func ParseConfig(programName string, args []string, errWriter io.Writer, availableModels []string) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errWriter)

	cfg := AppConfig{}
	fs.StringVar(&cfg.Model, "model", DefaultModel, "Model identifier, or 'all'.")
	fs.StringVar(&cfg.ModelsDir, "models-dir", DefaultModelsDir, "Base directory of per-model resources.")
	fs.DurationVar(&cfg.Timeout, "timeout", DefaultTimeout, "Maximum run time (e.g. 30s, 5m).")
	fs.IntVar(&cfg.GridSize, "grid-size", 0, "Number of capital grid points (0 keeps the model default).")
	fs.Float64Var(&cfg.Tolerance, "tolerance", 0, "Value iteration stopping tolerance (0 keeps the model default).")
	fs.IntVar(&cfg.MaxIterations, "max-iter", 0, "Maximum value iteration sweeps (0 keeps the model default).")
	fs.StringVar(&cfg.OutputFile, "output", "", "Write the output grid to this file.")
	fs.StringVar(&cfg.OutputFile, "o", "", "Shorthand for --output.")
	fs.StringVar(&cfg.Format, "format", "", "Output file format: csv or json (default from the file extension).")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the run.")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "Print only the output grid rows.")
	fs.BoolVar(&cfg.Quiet, "q", false, "Shorthand for --quiet.")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Print solver diagnostics.")
	fs.BoolVar(&cfg.Verbose, "v", false, "Shorthand for --verbose.")
	fs.BoolVar(&cfg.NoColor, "no-color", false, "Disable colored output.")
	fs.BoolVar(&cfg.List, "list", false, "List registered models and exit.")
	fs.StringVar(&cfg.Theme, "theme", "dark", "Color theme: dark, light, none.")
	fs.StringVar(&cfg.LogLevel, "log-level", "warn", "Log level: debug, info, warn, error, disabled.")
	fs.StringVar(&cfg.LogFile, "log-file", "", "Write logs to this file (rotated) instead of stderr.")
	fs.StringVar(&cfg.LogFormat, "log-format", "", "Log format: console, json, text (default console, json with --log-file).")

	fs.Usage = func() {
		fmt.Fprintf(errWriter, "Usage: %s [flags]\n\n", programName)
		fmt.Fprintf(errWriter, "Solves a capital-planning model and prints its [state, policy_1, policy_2] grid.\n\n")
		fmt.Fprintf(errWriter, "Models: %s, %s\n\nFlags:\n", strings.Join(availableModels, ", "), AllModels)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if fs.NArg() > 0 {
		return AppConfig{}, apperrors.NewConfigError("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	applyEnvOverrides(&cfg, fs)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(errWriter, "Error: %v\n", err)
		return AppConfig{}, err
	}
	return cfg, nil
}
