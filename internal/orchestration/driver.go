package orchestration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gonum.org/v1/gonum/mat"

	"github.com/agbru/capplan/internal/config"
	apperrors "github.com/agbru/capplan/internal/errors"
	"github.com/agbru/capplan/internal/grid"
	"github.com/agbru/capplan/internal/logging"
	"github.com/agbru/capplan/internal/metrics"
	"github.com/agbru/capplan/internal/model"
	"github.com/agbru/capplan/internal/solver"
)

const tracerName = "github.com/agbru/capplan/internal/orchestration"

// errNoResult is returned when a routine reports success without a result.
var errNoResult = errors.New("routine returned no result")

// Outcome is the result of driving one model.
type Outcome struct {
	// ID is the requested model identifier.
	ID model.ID
	// Location is the resolved resource path and routine name.
	Location model.Location
	// Params are the effective parameters passed to the routine.
	Params solver.Params
	// Result is the routine's output. It may be set alongside Err when the
	// routine returned a partial result.
	Result *solver.Result
	// Grid is the N×3 output grid; nil whenever Err is set.
	Grid *mat.Dense
	// Duration is the wall-clock time of the whole run.
	Duration time.Duration
	// Err wraps any failure in an apperrors.SolveError naming the model.
	Err error
}

// Driver runs models resolved through an explicit registry. It holds no
// mutable state and is safe for concurrent use.
type Driver struct {
	// Registry maps routine names to solvers. Required.
	Registry *model.Registry
	// BaseDir is the directory holding one resource directory per model.
	BaseDir string
	// Logger receives debug and error events; nil disables logging.
	Logger logging.Logger
	// Metrics receives solve observations; nil disables metrics.
	Metrics *metrics.Metrics
	// ParamsLoader reads parameter files; nil uses config.LoadModelParams.
	ParamsLoader ParamsLoader
}

// Run drives a single model: locate, resolve, load parameters, apply
// overrides, solve, validate and reshape. A result that fails validation
// never reaches grid construction.
func (d *Driver) Run(ctx context.Context, id model.ID, overrides solver.Params, progress solver.ProgressCallback) Outcome {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "capplan.solve",
		trace.WithAttributes(attribute.String("capplan.model", string(id))))
	defer span.End()

	done := d.Metrics.Start()
	defer done()

	start := time.Now()
	out := d.run(ctx, id, overrides, progress)
	out.Duration = time.Since(start)

	iterations, points := 0, 0
	if out.Result != nil {
		iterations = out.Result.Iterations
		span.SetAttributes(attribute.Int("capplan.iterations", iterations))
	}
	if out.Grid != nil {
		points, _ = out.Grid.Dims()
	}
	d.Metrics.ObserveSolve(string(id), out.Duration, iterations, points, out.Err)

	log := d.logger()
	if out.Err != nil {
		span.RecordError(out.Err)
		span.SetStatus(codes.Error, out.Err.Error())
		if apperrors.IsContextError(out.Err) {
			log.Debug("model solve interrupted", logging.String("model", string(id)), logging.Err(out.Err))
		} else {
			log.Error("model solve failed", out.Err, logging.String("model", string(id)))
		}
		return out
	}
	span.SetStatus(codes.Ok, "")
	log.Info("model solved",
		logging.String("model", string(id)),
		logging.Int("iterations", iterations),
		logging.Int("points", points),
		logging.String("duration", out.Duration.String()))
	return out
}

func (d *Driver) run(ctx context.Context, id model.ID, overrides solver.Params, progress solver.ProgressCallback) Outcome {
	out := Outcome{ID: id}
	fail := func(err error) Outcome {
		out.Err = apperrors.SolveError{Model: string(id), Cause: err}
		return out
	}
	if d.Registry == nil {
		return fail(errors.New("no model registry configured"))
	}

	loc, err := model.Locate(d.BaseDir, id)
	if err != nil {
		return fail(err)
	}
	out.Location = loc

	s, err := d.Registry.Lookup(loc.Routine)
	if err != nil {
		return fail(err)
	}

	fileParams, found, err := d.loader()(loc.Path)
	if err != nil {
		return fail(err)
	}
	log := d.logger()
	if found {
		log.Debug("loaded model parameters", logging.String("model", string(id)), logging.String("path", loc.Path))
	} else {
		log.Debug("no parameter file, using routine defaults", logging.String("model", string(id)), logging.String("path", loc.Path))
	}

	out.Params = s.Defaults().Merge(fileParams).Merge(overrides)
	if progress == nil {
		progress = func(float64) {}
	}

	res, err := s.Solve(ctx, out.Params, progress)
	out.Result = res
	if err != nil {
		return fail(err)
	}
	if res == nil {
		return fail(errNoResult)
	}
	if err := res.Validate(); err != nil {
		return fail(fmt.Errorf("routine %s: %w", loc.Routine, err))
	}

	g, err := grid.Build(res.StateGrid, res.PolicyGrid)
	if err != nil {
		return fail(err)
	}
	out.Grid = g
	return out
}

func (d *Driver) loader() ParamsLoader {
	if d.ParamsLoader != nil {
		return d.ParamsLoader
	}
	return config.LoadModelParams
}

func (d *Driver) logger() logging.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return logging.Nop()
}
