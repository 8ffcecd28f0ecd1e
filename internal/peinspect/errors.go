package peinspect

// NotPE is returned by Inspect when the file is not a valid portable
// executable (bad MZ or PE signature). Per REDESIGN FLAGS this is a
// result value, not a panicking/exception-style control transfer — the
// orchestrator (packageparser) selects on it explicitly to try the next
// inspector.
type NotPE struct {
	Reason string
}

func (e *NotPE) Error() string { return "peinspect: not a PE file: " + e.Reason }
