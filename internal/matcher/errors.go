package matcher

import "fmt"

// CountMismatch is returned when the caller's new[] and existing[] slices
// are not the same length — the matcher's invariant (spec.md §4.H) that
// the caller, not the matcher, is responsible for enforcing.
type CountMismatch struct {
	NewCount      int
	ExistingCount int
}

func (e *CountMismatch) Error() string {
	return fmt.Sprintf("matcher: new[] has %d installers, existing[] has %d", e.NewCount, e.ExistingCount)
}

// InstallerMatchError is returned when at least one new installer failed
// to pair with exactly one existing installer.
type InstallerMatchError struct {
	// Ambiguous holds the indices (into the caller's new[] slice) of new
	// installers with more than one surviving candidate.
	Ambiguous []int

	// Unmatched holds the indices of new installers with zero surviving
	// candidates.
	Unmatched []int

	// OverrideInEffect is true if any new installer carried an override
	// architecture or scope, to help an operator's error message
	// distinguish "your override is wrong" from "the manifest and the
	// installers disagree".
	OverrideInEffect bool
}

func (e *InstallerMatchError) Error() string {
	return fmt.Sprintf("matcher: %d ambiguous, %d unmatched installer(s)", len(e.Ambiguous), len(e.Unmatched))
}
