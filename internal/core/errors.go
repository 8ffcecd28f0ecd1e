package core

import (
	"fmt"
	"strings"
)

// ParsePackageError aggregates every URL that failed every inspector (or
// failed to download) during one Parse/Update call, so a caller sees every
// bad URL in a single pass instead of stopping at the first (spec.md §7).
type ParsePackageError struct {
	URLs []string
}

func (e *ParsePackageError) Error() string {
	return fmt.Sprintf("core: failed to parse %d url(s): %s", len(e.URLs), strings.Join(e.URLs, ", "))
}
