package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.yaml.in/yaml/v3"

	apperrors "github.com/agbru/capplan/internal/errors"
	"github.com/agbru/capplan/internal/solver"
)

// ParamsFileName is the parameter file looked up in a model's resource directory.
const ParamsFileName = "params.yaml"

// paramsSchemaURL is absolute so the compiler never resolves it against the
// working directory.
const paramsSchemaURL = "capplan:///params.schema.json"

//go:embed params.schema.json
var paramsSchemaJSON string

var compileParamsSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString(paramsSchemaURL, paramsSchemaJSON)
})

// LoadModelParams reads <dir>/params.yaml and validates it against the
// parameter schema. A missing directory or file is not an error: the second
// result reports whether a file was found, and the returned overrides are
// zero. A file that exists but is malformed or violates the schema yields an
// apperrors.ConfigError wrapping the cause.
func LoadModelParams(dir string) (solver.Params, bool, error) {
	path := filepath.Join(dir, ParamsFileName)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return solver.Params{}, false, nil
	}
	if err != nil {
		return solver.Params{}, false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	params, err := ParseModelParams(data)
	if err != nil {
		return solver.Params{}, true, apperrors.ConfigError{Message: path, Cause: err}
	}
	return params, true, nil
}

// ParseModelParams decodes and validates a YAML parameter document.
func ParseModelParams(data []byte) (solver.Params, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return solver.Params{}, fmt.Errorf("invalid YAML: %w", err)
	}
	if raw == nil {
		return solver.Params{}, nil
	}

	schema, err := compileParamsSchema()
	if err != nil {
		return solver.Params{}, fmt.Errorf("failed to compile parameter schema: %w", err)
	}
	if err := schema.Validate(raw); err != nil {
		return solver.Params{}, fmt.Errorf("parameter validation failed: %w", err)
	}

	var params solver.Params
	if err := yaml.Unmarshal(data, &params); err != nil {
		return solver.Params{}, fmt.Errorf("failed to decode parameters: %w", err)
	}
	return params, nil
}
