package job

import (
	"fmt"

	"svgcam/internal/geom"
	"svgcam/internal/path"
)

// RawOperation is an operation as requested: path text not yet parsed.
type RawOperation struct {
	Kind       Kind
	PathText   string
	Properties Properties
	// Translate is added to every coordinate after parsing.
	Translate geom.Point
}

// ParsedOperation is a RawOperation after the parse step. Index is the
// position of the raw operation in the job.
type ParsedOperation struct {
	Index      int
	Kind       Kind
	Contour    path.Contour
	Properties Properties
}

// OperationError ties a failure to the operation it aborted.
type OperationError struct {
	Index int
	Kind  Kind
	Err   error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("operation %d (%s): %v", e.Index, e.Kind, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// ParseOperations parses every raw operation once. Operations that fail to
// parse are reported as *OperationError and left out of the result; the
// others keep their relative order.
func ParseOperations(raw []RawOperation) ([]ParsedOperation, []error) {
	var (
		parsed []ParsedOperation
		errs   []error
	)
	for i, r := range raw {
		c, err := path.Parse(r.PathText)
		if err != nil {
			errs = append(errs, &OperationError{Index: i, Kind: r.Kind, Err: err})
			continue
		}
		if r.Translate != (geom.Point{}) {
			c = c.Translate(r.Translate)
		}
		parsed = append(parsed, ParsedOperation{
			Index:      i,
			Kind:       r.Kind,
			Contour:    c,
			Properties: r.Properties.Normalize(),
		})
	}
	return parsed, errs
}
