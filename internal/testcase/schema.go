package testcase

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	cueyaml "cuelang.org/go/encoding/yaml"
)

//go:embed schema.cue
var schemaSource string

var (
	schemaOnce  sync.Once
	schemaValue cue.Value
	schemaErr   error
)

// suiteSchema compiles the embedded schema once per process.
func suiteSchema() (cue.Value, error) {
	schemaOnce.Do(func() {
		ctx := cuecontext.New()
		v := ctx.CompileString(schemaSource, cue.Filename("testcase/schema.cue"))
		if err := v.Err(); err != nil {
			schemaErr = formatCUEError(err)
			return
		}
		def := v.LookupPath(cue.ParsePath("#Suite"))
		if err := def.Err(); err != nil {
			schemaErr = formatCUEError(err)
			return
		}
		schemaValue = def
	})
	return schemaValue, schemaErr
}

// ValidateSchema checks a raw suite YAML document against the embedded
// CUE schema. It runs before decoding so shape errors surface with
// source positions instead of zero-valued structs.
func ValidateSchema(data []byte) error {
	schema, err := suiteSchema()
	if err != nil {
		return fmt.Errorf("suite schema is broken: %w", err)
	}
	if err := cueyaml.Validate(data, schema); err != nil {
		return formatCUEError(err)
	}
	return nil
}

// SchemaError represents a schema violation with source position.
type SchemaError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *SchemaError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := cueerrors.Positions(firstErr)
	if len(positions) > 0 {
		return &SchemaError{
			Field:   "schema",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
