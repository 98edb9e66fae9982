package cli

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/briandowns/spinner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agbru/capplan/internal/config"
	apperrors "github.com/agbru/capplan/internal/errors"
	"github.com/agbru/capplan/internal/grid"
	"github.com/agbru/capplan/internal/model"
	"github.com/agbru/capplan/internal/orchestration"
	"github.com/agbru/capplan/internal/solver"
	"github.com/agbru/capplan/internal/ui"
)

// MockSpinner records spinner calls.
type MockSpinner struct {
	mu      sync.Mutex
	started bool
	stopped bool
	suffix  string
}

func (m *MockSpinner) Start() {
	m.mu.Lock()
	m.started = true
	m.mu.Unlock()
}

func (m *MockSpinner) Stop() {
	m.mu.Lock()
	m.stopped = true
	m.mu.Unlock()
}

func (m *MockSpinner) UpdateSuffix(suffix string) {
	m.mu.Lock()
	m.suffix = suffix
	m.mu.Unlock()
}

func sampleOutcome(t *testing.T, n int) orchestration.Outcome {
	t.Helper()
	res := &solver.Result{
		StateGrid:  make([]float64, n),
		PolicyGrid: [][]float64{make([]float64, n), make([]float64, n)},
		Iterations: 12,
		Distance:   1e-7,
		Converged:  true,
	}
	for i := 0; i < n; i++ {
		res.StateGrid[i] = 10 + float64(i)/3
		res.PolicyGrid[0][i] = 0.1 + float64(i)/1000
		res.PolicyGrid[1][i] = 0.2 - float64(i)/1000
	}
	g, err := grid.Build(res.StateGrid, res.PolicyGrid)
	require.NoError(t, err)
	loc, err := model.Locate("models", "capital_planner_1hh")
	require.NoError(t, err)
	return orchestration.Outcome{
		ID:       "capital_planner_1hh",
		Location: loc,
		Params:   solver.DefaultParams(),
		Result:   res,
		Grid:     g,
		Duration: 15 * time.Millisecond,
	}
}

func withPlainTheme(t *testing.T) {
	t.Helper()
	saved := ui.GetCurrentTheme()
	ui.SetCurrentTheme(ui.NoColorTheme)
	t.Cleanup(func() { ui.SetCurrentTheme(saved) })
}

func TestDisplayProgress(t *testing.T) {
	mock := &MockSpinner{}
	saved := newSpinner
	newSpinner = func(...spinner.Option) Spinner { return mock }
	defer func() { newSpinner = saved }()

	ch := make(chan orchestration.ProgressUpdate, 4)
	ch <- orchestration.ProgressUpdate{ModelIndex: 0, Value: 0.5}
	ch <- orchestration.ProgressUpdate{ModelIndex: 1, Value: 1.0}
	close(ch)

	var wg sync.WaitGroup
	var buf bytes.Buffer
	wg.Add(1)
	DisplayProgress(&wg, ch, 2, &buf)
	wg.Wait()

	assert.True(t, mock.started)
	assert.True(t, mock.stopped)
	assert.Contains(t, mock.suffix, "Solving 2 models")
	assert.Contains(t, buf.String(), "75.0% done in")
}

func TestDisplayProgress_NoModelsDrains(t *testing.T) {
	t.Parallel()
	ch := make(chan orchestration.ProgressUpdate, 1)
	ch <- orchestration.ProgressUpdate{}
	close(ch)

	var wg sync.WaitGroup
	var buf bytes.Buffer
	wg.Add(1)
	DisplayProgress(&wg, ch, 0, &buf)
	wg.Wait()
	assert.Empty(t, buf.String())
}

func TestPresentSummary(t *testing.T) {
	withPlainTheme(t)
	ok := sampleOutcome(t, 3)
	failed := orchestration.Outcome{ID: "nope", Err: errors.New("boom")}

	var buf bytes.Buffer
	CLIResultPresenter{}.PresentSummary([]orchestration.Outcome{ok, failed}, &buf)
	out := buf.String()

	assert.Contains(t, out, "Summary")
	assert.Contains(t, out, "capital_planner_1hh")
	assert.Contains(t, out, "15ms")
	assert.Contains(t, out, "12")
	assert.Contains(t, out, "Success")
	assert.Contains(t, out, "Failure")
	assert.Less(t, strings.Index(out, "capital_planner_1hh"), strings.Index(out, "nope"), "input order")

	buf.Reset()
	CLIResultPresenter{Quiet: true}.PresentSummary([]orchestration.Outcome{ok}, &buf)
	assert.Empty(t, buf.String())
}

func TestPresentGrid(t *testing.T) {
	withPlainTheme(t)
	o := sampleOutcome(t, 25)

	var buf bytes.Buffer
	CLIResultPresenter{}.PresentGrid(o, &buf)
	out := buf.String()
	assert.Contains(t, out, "Output grid: capital_planner_1hh (25×3, routine iter_capital_planner_1hh)")
	for _, col := range grid.Columns {
		assert.Contains(t, out, col)
	}
	assert.Contains(t, out, "⋮")
	assert.Contains(t, out, "15 rows omitted")

	buf.Reset()
	CLIResultPresenter{Verbose: true}.PresentGrid(o, &buf)
	assert.NotContains(t, buf.String(), "rows omitted")
	assert.Contains(t, buf.String(), "18")

	buf.Reset()
	CLIResultPresenter{Quiet: true}.PresentGrid(o, &buf)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 25)
	assert.Equal(t, "10 0.1 0.2", lines[0])
}

func TestPresentGrid_NotConvergedWarning(t *testing.T) {
	withPlainTheme(t)
	o := sampleOutcome(t, 3)
	o.Result.Converged = false

	var buf bytes.Buffer
	CLIResultPresenter{}.PresentGrid(o, &buf)
	assert.Contains(t, buf.String(), "stopped before converging")
}

func TestHandleError(t *testing.T) {
	withPlainTheme(t)
	var buf bytes.Buffer
	err := apperrors.SolveError{Model: "x", Cause: &apperrors.UnknownModelError{Routine: "iter_x"}}

	code := CLIResultPresenter{}.HandleError(err, time.Second, &buf)

	assert.Equal(t, apperrors.ExitErrorUnknownModel, code)
	assert.Contains(t, buf.String(), "Status: Failure")
}

func TestWriteGridCSVRoundTrip(t *testing.T) {
	t.Parallel()
	o := sampleOutcome(t, 7)
	path := filepath.Join(t.TempDir(), "nested", "grid.csv")

	require.NoError(t, WriteGrid(path, config.FormatCSV, o))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 8)
	assert.Equal(t, grid.Columns, records[0])
	want := grid.Rows(o.Grid)
	for i, rec := range records[1:] {
		require.Len(t, rec, grid.Width)
		for j, cell := range rec {
			v, err := strconv.ParseFloat(cell, 64)
			require.NoError(t, err)
			assert.Equal(t, want[i][j], v, "row %d col %d", i, j)
		}
	}
}

func TestWriteGridJSONRoundTrip(t *testing.T) {
	t.Parallel()
	o := sampleOutcome(t, 5)
	path := filepath.Join(t.TempDir(), "grid.json")

	require.NoError(t, WriteGrid(path, config.FormatJSON, o))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc GridDocument
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "capital_planner_1hh", doc.Model)
	assert.Equal(t, "iter_capital_planner_1hh", doc.Routine)
	assert.Equal(t, grid.Columns, doc.Columns)
	assert.Equal(t, grid.Rows(o.Grid), doc.Rows)
	assert.Equal(t, 12, doc.Iterations)
	assert.True(t, doc.Converged)
	assert.Equal(t, solver.DefaultAlpha, doc.Params.Alpha)
}

func TestWriteGridErrors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	err := WriteGrid(filepath.Join(dir, "a.csv"), config.FormatCSV, orchestration.Outcome{ID: "x"})
	assert.ErrorIs(t, err, errNoGrid)

	err = WriteGrid(filepath.Join(dir, "a.xml"), "xml", sampleOutcome(t, 2))
	assert.ErrorContains(t, err, "unsupported output format")

	var buf bytes.Buffer
	assert.Error(t, WriteCSV(&buf, [][]float64{{1, 2}}))
}

func TestDisplayModels(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	DisplayModels(&buf, []ModelEntry{
		{ID: "capital_planner_1hh", Routine: "iter_capital_planner_1hh", Name: "Capital planner"},
	})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "MODEL"))
	assert.Contains(t, lines[1], "iter_capital_planner_1hh")
}

func TestPrintExecutionMode(t *testing.T) {
	withPlainTheme(t)
	tests := []struct {
		ids  []model.ID
		want string
	}{
		{nil, "No model selected"},
		{[]model.ID{"a"}, "Single model with routine iter_a"},
		{[]model.ID{"a", "b"}, "Concurrent run of 2 models"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		PrintExecutionMode(tt.ids, &buf)
		assert.Contains(t, buf.String(), tt.want)
		assert.Contains(t, buf.String(), "Starting Execution")
	}
}

func TestPrintExecutionConfig(t *testing.T) {
	withPlainTheme(t)
	var buf bytes.Buffer
	PrintExecutionConfig(config.AppConfig{Model: "all", ModelsDir: "models", Timeout: time.Minute}, &buf)
	assert.Contains(t, buf.String(), "Solving all with a timeout of 1m0s.")
	assert.Contains(t, buf.String(), "Models directory: models.")
}
