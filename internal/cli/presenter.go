package cli

import (
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	apperrors "github.com/agbru/capplan/internal/errors"
	"github.com/agbru/capplan/internal/format"
	"github.com/agbru/capplan/internal/grid"
	"github.com/agbru/capplan/internal/orchestration"
	"github.com/agbru/capplan/internal/ui"
)

// CLIProgressReporter implements orchestration.ProgressReporter with a
// spinner and progress bar.
type CLIProgressReporter struct{}

var _ orchestration.ProgressReporter = CLIProgressReporter{}

// DisplayProgress displays a spinner and progress bar for ongoing solves.
func (CLIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan orchestration.ProgressUpdate, numModels int, out io.Writer) {
	DisplayProgress(wg, progressChan, numModels, out)
}

// CLIColorProvider implements apperrors.ColorProvider using the ui theme.
type CLIColorProvider struct{}

var _ apperrors.ColorProvider = CLIColorProvider{}

func (CLIColorProvider) Red() string    { return ui.ColorRed() }
func (CLIColorProvider) Yellow() string { return ui.ColorYellow() }
func (CLIColorProvider) Reset() string  { return ui.ColorReset() }

// CLIResultPresenter implements orchestration.ResultPresenter for terminal
// output. Quiet mode prints only bare grid rows; verbose mode prints every
// grid row instead of a preview.
type CLIResultPresenter struct {
	Quiet   bool
	Verbose bool
}

var _ orchestration.ResultPresenter = CLIResultPresenter{}

// PresentSummary displays one row per model with duration, iterations and
// status, in input order.
func (p CLIResultPresenter) PresentSummary(outcomes []orchestration.Outcome, out io.Writer) {
	if p.Quiet {
		return
	}
	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		iterations := "-"
		if o.Result != nil {
			iterations = strconv.Itoa(o.Result.Iterations)
		}
		status := "✅ Success"
		if o.Err != nil {
			status = "❌ Failure"
		}
		rows = append(rows, []string{string(o.ID), durationCell(o.Duration), iterations, status})
	}

	failed := func(row int) bool { return row >= 0 && row < len(outcomes) && outcomes[row].Err != nil }
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(ui.BorderStyle()).
		Headers("Model", "Duration", "Iterations", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return ui.HeaderStyle()
			case col == 3 && failed(row):
				return ui.FailureStyle()
			case col == 0 || col == 3:
				return ui.CellStyle(false).Align(lipgloss.Left)
			default:
				return ui.CellStyle(true)
			}
		})

	fmt.Fprintf(out, "\n--- Summary ---\n%s\n", t.Render())
}

// PresentGrid displays the output grid of a successful outcome.
func (p CLIResultPresenter) PresentGrid(o orchestration.Outcome, out io.Writer) {
	if o.Grid == nil {
		return
	}
	rows := grid.Rows(o.Grid)
	if p.Quiet {
		DisplayQuietGrid(out, rows)
		return
	}

	fmt.Fprintf(out, "\n--- Output grid: %s%s%s (%d×%d, routine %s) ---\n",
		ui.ColorPrimary(), o.ID, ui.ColorReset(), len(rows), grid.Width, o.Location.Routine)
	if o.Result != nil && !o.Result.Converged {
		fmt.Fprintf(out, "%sWarning: the routine stopped before converging.%s\n", ui.ColorYellow(), ui.ColorReset())
	}

	cells := previewRows(rows, p.Verbose)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(ui.BorderStyle()).
		Headers(grid.Columns...).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return ui.HeaderStyle()
			}
			return ui.CellStyle(col > 0)
		})
	fmt.Fprintln(out, t.Render())

	if !p.Verbose && len(rows) > PreviewRows {
		fmt.Fprintf(out, "%d rows omitted. Use -v to show the full grid or -o to save it.\n", len(rows)-PreviewRows)
	}
}

// HandleError prints a solve error and returns the matching exit code.
func (CLIResultPresenter) HandleError(err error, duration time.Duration, out io.Writer) int {
	return apperrors.HandleSolveError(err, duration, out, CLIColorProvider{})
}

// previewRows formats the rows to display: all of them when verbose,
// otherwise the first and last PreviewRows/2 with a separator row.
func previewRows(rows [][]float64, verbose bool) [][]string {
	formatRow := func(r []float64) []string {
		cells := make([]string, len(r))
		for i, v := range r {
			cells[i] = format.FormatValue(v)
		}
		return cells
	}
	if verbose || len(rows) <= PreviewRows {
		out := make([][]string, len(rows))
		for i, r := range rows {
			out[i] = formatRow(r)
		}
		return out
	}

	half := PreviewRows / 2
	out := make([][]string, 0, PreviewRows+1)
	for _, r := range rows[:half] {
		out = append(out, formatRow(r))
	}
	gap := make([]string, grid.Width)
	for i := range gap {
		gap[i] = "⋮"
	}
	out = append(out, gap)
	for _, r := range rows[len(rows)-half:] {
		out = append(out, formatRow(r))
	}
	return out
}

func durationCell(d time.Duration) string {
	if d == 0 {
		return "< 1µs"
	}
	return format.FormatExecutionDuration(d)
}
