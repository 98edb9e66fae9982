package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/agbru/capplan/internal/config"
	"github.com/agbru/capplan/internal/model"
	"github.com/agbru/capplan/internal/ui"
)

// PrintExecutionConfig displays the selected models, the timeout, the
// resource directory and the runtime environment.
func PrintExecutionConfig(cfg config.AppConfig, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Solving %s%s%s with a timeout of %s%s%s.\n",
		ui.ColorPrimary(), cfg.Model, ui.ColorReset(), ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
	fmt.Fprintf(out, "Models directory: %s%s%s.\n", ui.ColorCyan(), cfg.ModelsDir, ui.ColorReset())
	fmt.Fprintf(out, "Environment: %s%d%s logical processors, Go %s%s%s.\n",
		ui.ColorCyan(), runtime.NumCPU(), ui.ColorReset(), ui.ColorCyan(), runtime.Version(), ui.ColorReset())
}

// PrintExecutionMode displays whether one model or several are solved.
func PrintExecutionMode(ids []model.ID, out io.Writer) {
	var modeDesc string
	switch len(ids) {
	case 0:
		modeDesc = "No model selected"
	case 1:
		modeDesc = fmt.Sprintf("Single model with routine %s%s%s",
			ui.ColorGreen(), model.RoutineName(ids[0]), ui.ColorReset())
	default:
		modeDesc = fmt.Sprintf("Concurrent run of %d models", len(ids))
	}
	fmt.Fprintf(out, "Execution mode: %s.\n", modeDesc)
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}
