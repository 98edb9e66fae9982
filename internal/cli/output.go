// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* functions write formatted output to an [io.Writer].
//     Examples: [DisplayProgress], [DisplayQuietGrid], [DisplayModels].
//
//   - Write* functions serialize data, either to a writer or to a file.
//     Examples: [WriteGrid], [WriteCSV], [WriteJSON].

package cli

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/agbru/capplan/internal/config"
	"github.com/agbru/capplan/internal/grid"
	"github.com/agbru/capplan/internal/orchestration"
	"github.com/agbru/capplan/internal/solver"
)

// errNoGrid is returned when asked to write an outcome without a grid.
var errNoGrid = errors.New("outcome has no output grid")

// GridDocument is the JSON representation of a solved model.
type GridDocument struct {
	Model      string        `json:"model"`
	Routine    string        `json:"routine"`
	Columns    []string      `json:"columns"`
	Rows       [][]float64   `json:"rows"`
	Iterations int           `json:"iterations"`
	Distance   float64       `json:"distance"`
	Converged  bool          `json:"converged"`
	Params     solver.Params `json:"params"`
}

// WriteGrid writes the outcome's grid to path as CSV or JSON, creating the
// parent directory when needed.
func WriteGrid(path, outputFormat string, o orchestration.Outcome) (err error) {
	if o.Grid == nil {
		return errNoGrid
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()

	switch outputFormat {
	case config.FormatJSON:
		return WriteJSON(file, o)
	case config.FormatCSV, "":
		return WriteCSV(file, grid.Rows(o.Grid))
	default:
		return fmt.Errorf("unsupported output format %q", outputFormat)
	}
}

// WriteCSV writes rows under a header of grid.Columns. Values use the
// shortest representation that round-trips exactly.
func WriteCSV(w io.Writer, rows [][]float64) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(grid.Columns); err != nil {
		return err
	}
	record := make([]string, grid.Width)
	for _, row := range rows {
		if len(row) != grid.Width {
			return fmt.Errorf("row has %d values, want %d", len(row), grid.Width)
		}
		for i, v := range row {
			record[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the outcome as an indented GridDocument.
func WriteJSON(w io.Writer, o orchestration.Outcome) error {
	if o.Grid == nil {
		return errNoGrid
	}
	doc := GridDocument{
		Model:   string(o.ID),
		Routine: o.Location.Routine,
		Columns: grid.Columns,
		Rows:    grid.Rows(o.Grid),
		Params:  o.Params,
	}
	if o.Result != nil {
		doc.Iterations = o.Result.Iterations
		doc.Distance = o.Result.Distance
		doc.Converged = o.Result.Converged
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// DisplayQuietGrid prints rows as whitespace-separated values, one row per
// line, for scripting.
func DisplayQuietGrid(out io.Writer, rows [][]float64) {
	var b strings.Builder
	for _, row := range rows {
		b.Reset()
		for i, v := range row {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
		fmt.Fprintln(out, b.String())
	}
}

// ModelEntry describes a registered model for -list.
type ModelEntry struct {
	ID      string
	Routine string
	Name    string
}

// DisplayModels prints the registered models as an aligned list.
func DisplayModels(out io.Writer, entries []ModelEntry) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODEL\tROUTINE\tDESCRIPTION")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.ID, e.Routine, e.Name)
	}
	tw.Flush()
}
