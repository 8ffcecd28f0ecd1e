// Package matcher pairs freshly parsed Installer records with the
// installers already declared in a manifest (spec.md §4.H), producing the
// match map internal/manifest.ApplyUpdates consumes. Matching is a
// three-tier narrowing — installer-type (falling back to compatibility
// class), then architecture, then scope — applied independently per new
// installer in input order, each match removing its existing candidate
// from the pool so later new installers cannot reuse it. A record whose
// nested files disagreed on architecture (§4.F) skips tier-2 narrowing
// entirely rather than matching on its empty Architecture field.
package matcher

import "github.com/pkgsmith/wecore/internal/manifest"

// NewInstaller is one freshly parsed record plus the architecture sources
// the Package Parser consulted for it (§4.B/§4.G), carried independently
// of the record's own already-resolved Architecture field so the matcher
// can apply its own override > URL > binary > record-field precedence.
type NewInstaller struct {
	Installer manifest.Installer

	OverrideArchitecture manifest.Architecture // "" if the caller gave none
	URLArchitecture      manifest.Architecture // "" if the URL heuristic was inconclusive
	BinaryArchitecture   manifest.Architecture // "" if the inspector reported none

	OverrideScope manifest.Scope // "" if the caller gave none
}

func (n NewInstaller) architectureKey() manifest.Architecture {
	switch {
	case n.OverrideArchitecture != "":
		return n.OverrideArchitecture
	case n.URLArchitecture != "":
		return n.URLArchitecture
	case n.BinaryArchitecture != "":
		return n.BinaryArchitecture
	default:
		return n.Installer.Architecture
	}
}

// Match pairs each element of news with at most one element of existing.
// defaultType is the manifest-level default installer type
// (InstallerManifest.InstallerType), used as the effective type of an existing record that does not
// set its own. Returns a map from index in news to index in existing.
func Match(news []NewInstaller, existing []manifest.Installer, defaultType manifest.InstallerType) (map[int]int, error) {
	if len(news) != len(existing) {
		return nil, &CountMismatch{NewCount: len(news), ExistingCount: len(existing)}
	}

	available := make(map[int]bool, len(existing))
	for i := range existing {
		available[i] = true
	}

	result := make(map[int]int, len(news))
	var ambiguous, unmatched []int
	var overrideInEffect bool

	for i, n := range news {
		if n.OverrideArchitecture != "" || n.OverrideScope != "" {
			overrideInEffect = true
		}

		candidates := narrowByType(n.Installer.InstallerType, existing, available, defaultType)
		if !n.Installer.MultipleNestedInstallerArchitectures {
			candidates = narrowByArchitecture(n.architectureKey(), existing, candidates)
		}
		if len(candidates) > 1 && n.OverrideScope != "" {
			candidates = narrowByScope(n.OverrideScope, existing, candidates)
		}

		switch len(candidates) {
		case 1:
			j := candidates[0]
			result[i] = j
			delete(available, j)
		case 0:
			unmatched = append(unmatched, i)
		default:
			ambiguous = append(ambiguous, i)
		}
	}

	if len(ambiguous) > 0 || len(unmatched) > 0 {
		return nil, &InstallerMatchError{
			Ambiguous:        ambiguous,
			Unmatched:        unmatched,
			OverrideInEffect: overrideInEffect,
		}
	}
	return result, nil
}

func effectiveType(inst manifest.Installer, defaultType manifest.InstallerType) manifest.InstallerType {
	if inst.InstallerType != "" {
		return inst.InstallerType
	}
	return defaultType
}

func narrowByType(newType manifest.InstallerType, existing []manifest.Installer, available map[int]bool, defaultType manifest.InstallerType) []int {
	var exact []int
	for idx := range available {
		if effectiveType(existing[idx], defaultType) == newType {
			exact = append(exact, idx)
		}
	}
	if len(exact) > 0 {
		return exact
	}

	class := manifest.CompatibilityClass(newType)
	if class == nil {
		return nil
	}
	var byClass []int
	for idx := range available {
		if class[effectiveType(existing[idx], defaultType)] {
			byClass = append(byClass, idx)
		}
	}
	return byClass
}

func narrowByArchitecture(key manifest.Architecture, existing []manifest.Installer, candidates []int) []int {
	var out []int
	for _, idx := range candidates {
		if existing[idx].Architecture == key {
			out = append(out, idx)
		}
	}
	return out
}

func narrowByScope(scope manifest.Scope, existing []manifest.Installer, candidates []int) []int {
	var out []int
	for _, idx := range candidates {
		if existing[idx].Scope == scope {
			out = append(out, idx)
		}
	}
	return out
}
