package manifest

import "fmt"

// IdentityChangedError is returned when an update attempts to change the
// read-only package_identifier of an existing tree (§4.I).
type IdentityChangedError struct {
	Expected string
	Actual   string
}

func (e *IdentityChangedError) Error() string {
	return fmt.Sprintf("manifest: package identifier is read-only during update: expected %q, got %q", e.Expected, e.Actual)
}

// SchemaViolation is re-raised verbatim from an external manifest-schema
// validator (§7); the core never constructs one except to pass it through.
type SchemaViolation struct {
	Path   string
	Reason string
}

func (e *SchemaViolation) Error() string {
	return fmt.Sprintf("manifest: schema violation at %s: %s", e.Path, e.Reason)
}
