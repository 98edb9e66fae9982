package metrics

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// value reads the current value of a single counter or gauge.
func value(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	if err := m.Write(&out); err != nil {
		t.Fatalf("Write: %v", err)
	}
	switch {
	case out.Counter != nil:
		return out.Counter.GetValue()
	case out.Gauge != nil:
		return out.Gauge.GetValue()
	}
	t.Fatal("metric is neither counter nor gauge")
	return 0
}

func TestObserveSolve(t *testing.T) {
	t.Parallel()
	m := New()

	m.ObserveSolve("capital_planner_1hh", 20*time.Millisecond, 42, 100, nil)
	m.ObserveSolve("capital_planner_1hh", 5*time.Millisecond, 0, 0, errors.New("boom"))

	if got := value(t, m.solves.WithLabelValues("capital_planner_1hh", StatusSuccess)); got != 1 {
		t.Errorf("success count = %v, want 1", got)
	}
	if got := value(t, m.solves.WithLabelValues("capital_planner_1hh", StatusFailure)); got != 1 {
		t.Errorf("failure count = %v, want 1", got)
	}
	if got := value(t, m.iterations.WithLabelValues("capital_planner_1hh")); got != 42 {
		t.Errorf("iterations = %v, want 42 (failures must not overwrite)", got)
	}
	if got := value(t, m.gridPoints.WithLabelValues("capital_planner_1hh")); got != 100 {
		t.Errorf("grid points = %v, want 100", got)
	}
}

func TestStartTracksActiveSolves(t *testing.T) {
	t.Parallel()
	m := New()

	done := m.Start()
	if got := value(t, m.active); got != 1 {
		t.Fatalf("active = %v, want 1", got)
	}
	done()
	if got := value(t, m.active); got != 0 {
		t.Errorf("active = %v, want 0", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	t.Parallel()
	var m *Metrics
	m.Start()()
	m.ObserveSolve("x", time.Second, 1, 1, nil)
}

func TestWritePrometheus(t *testing.T) {
	t.Parallel()
	m := New()
	m.ObserveSolve("capital_planner_1hh", time.Millisecond, 3, 10, nil)

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	body := buf.String()
	for _, want := range []string{"capplan_solves_total", "capplan_solve_duration_seconds", "go_goroutines"} {
		if !strings.Contains(body, want) {
			t.Errorf("output should contain %q", want)
		}
	}
}

func TestWriteTextfile(t *testing.T) {
	t.Parallel()
	m := New()
	m.ObserveSolve("capital_planner_1hh", time.Millisecond, 3, 10, nil)

	path := filepath.Join(t.TempDir(), "capplan.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `capplan_solves_total{model="capital_planner_1hh",status="success"} 1`) {
		t.Errorf("textfile missing solve counter:\n%s", data)
	}

	if err := m.WriteTextfile(""); err == nil {
		t.Error("empty path must fail")
	}
}
