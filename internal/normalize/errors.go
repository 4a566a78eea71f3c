package normalize

import (
	"errors"
	"fmt"
)

// ErrSchemaViolation is matched by every *SchemaViolation via errors.Is.
var ErrSchemaViolation = errors.New("schema violation")

// SchemaViolation reports a raw value that does not fit the schema: an
// unknown key, a value that cannot be converted to the declared type, a
// missing required key, or a null where none is accepted.
type SchemaViolation struct {
	// Path is the dotted location of the offending key, e.g.
	// "metadata.directories[1].path".
	Path   string
	Reason string
	Err    error
}

func (e *SchemaViolation) Error() string {
	msg := fmt.Sprintf("invalid configuration for path %q: %s", e.Path, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying conversion error, if any.
func (e *SchemaViolation) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrSchemaViolation) hold for every violation.
func (e *SchemaViolation) Is(target error) bool {
	return target == ErrSchemaViolation
}

func violation(path, reason string, err error) *SchemaViolation {
	if path == "" {
		path = "."
	}
	return &SchemaViolation{Path: path, Reason: reason, Err: err}
}
