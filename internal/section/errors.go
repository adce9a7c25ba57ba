package section

import (
	"errors"
	"fmt"
)

// Schema violation kinds. Match them with errors.Is.
var (
	ErrMissingHeading = errors.New("missing required heading")
	ErrInvalidJSON    = errors.New("reply is not valid json")
	ErrNotObject      = errors.New("reply is not a json object")
	ErrMissingField   = errors.New("reply is missing a required field")
	ErrFieldType      = errors.New("reply field has the wrong type")
	ErrNoTags         = errors.New("no usable tags")
)

// StructureError reports a note that does not match the expected template.
type StructureError struct {
	Missing string
	Reason  string
}

func (e *StructureError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("note structure: %s", e.Reason)
	}
	return fmt.Sprintf("note structure: %q not found", e.Missing)
}

// SchemaError reports a model reply that does not have the expected shape.
type SchemaError struct {
	Kind   error
	Detail string
}

func (e *SchemaError) Error() string {
	if e.Detail == "" {
		return "schema violation: " + e.Kind.Error()
	}
	return fmt.Sprintf("schema violation: %s: %s", e.Kind, e.Detail)
}

func (e *SchemaError) Unwrap() error {
	return e.Kind
}

// IsStructure reports whether err is, or wraps, a StructureError.
func IsStructure(err error) bool {
	var se *StructureError
	return errors.As(err, &se)
}

// IsSchema reports whether err is, or wraps, a SchemaError.
func IsSchema(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}
