// Package core wires the engine's modules (A-J) into the four operations
// spec.md §6.2 exposes to a caller: update, parse, serialize, deserialize.
// It owns the download cache, the per-URL override parsing, and the
// ordering/matching glue between the Downloader, Package Parser, ZIP
// Inspector, Matcher and Manifest Merger; it never imports metadata
// directly (spec.md §6.4: enrichment is an injected, optional collaborator).
package core

import (
	"context"
	"sort"
	"strings"

	"github.com/pkgsmith/wecore/internal/downloader"
	"github.com/pkgsmith/wecore/internal/manifest"
	"github.com/pkgsmith/wecore/internal/matcher"
	"github.com/pkgsmith/wecore/internal/packageparser"
	"github.com/pkgsmith/wecore/internal/zipinspect"
)

// URLInput is one installer URL plus its per-URL overrides (§6.1): the
// pipe-delimited architecture/scope suffix, a display version, and — for a
// ZIP carrier — the caller's nomination of which archive members to treat
// as nested installers (§4.F; not itemized among the pipe-delimited
// suffixes, since a file list does not fit that grammar, but required
// wherever the parsed type turns out to be zip).
type URLInput struct {
	URL                  string
	OverrideArchitecture manifest.Architecture
	OverrideScope        manifest.Scope
	DisplayVersion       string
	NestedInstallerFiles []manifest.NestedInstallerFile
}

// Request configures a Parse or Update call.
type Request struct {
	URLs []URLInput

	// PackageIdentifier and PackageVersion describe the package on the
	// "new" path. Parse and Update never read PackageIdentifier (on the
	// update path the identity comes from the existing tree); Update
	// propagates a non-empty PackageVersion into every document of the
	// updated tree.
	PackageIdentifier string
	PackageVersion    string

	AllowUnsecure bool
	CacheDir      string
	MaxSize       int64
}

// ParseReport is the per-URL parse report of §6.2.
type ParseReport struct {
	URL                  string
	URLArchitecture      manifest.Architecture
	BinaryArchitecture   manifest.Architecture
	OverrideArchitecture manifest.Architecture
	OverrideScope        manifest.Scope
	NestedArchitectures  []manifest.Architecture
	MultipleNestedArches bool
}

// Parse implements the "new" entry point: it downloads every URL, runs it
// through the Package Parser (recursing into the ZIP Inspector when a URL
// is nominated as a ZIP carrier), and returns every Installer record each
// URL produces (more than one per URL only for an MSIX bundle's application
// children, §4.E) plus a parallel parse report per record, both sorted by
// input-URL index first and emission order within a URL second (§5
// ordering).
func Parse(ctx context.Context, req Request) ([]*manifest.Installer, []ParseReport, error) {
	type indexed struct {
		idx     int
		recs    []*manifest.Installer
		reports []ParseReport
	}

	results := make([]indexed, 0, len(req.URLs))
	var failedURLs []string

	for i, u := range req.URLs {
		recs, reports, err := parseOne(ctx, req, u)
		if err != nil {
			failedURLs = append(failedURLs, u.URL)
			continue
		}
		results = append(results, indexed{idx: i, recs: recs, reports: reports})
	}

	if len(failedURLs) > 0 {
		return nil, nil, &ParsePackageError{URLs: failedURLs}
	}

	sort.Slice(results, func(a, b int) bool { return results[a].idx < results[b].idx })

	var records []*manifest.Installer
	var reports []ParseReport
	for _, r := range results {
		records = append(records, r.recs...)
		reports = append(reports, r.reports...)
	}
	return records, reports, nil
}

func parseOne(ctx context.Context, req Request, u URLInput) ([]*manifest.Installer, []ParseReport, error) {
	path, err := downloader.Download(ctx, u.URL, downloader.Options{
		MaxSize:       req.MaxSize,
		AllowUnsecure: req.AllowUnsecure,
		CacheDir:      req.CacheDir,
	})
	if err != nil {
		return nil, nil, err
	}

	defaults := manifest.Installer{DisplayVersion: u.DisplayVersion}

	if len(u.NestedInstallerFiles) > 0 {
		outer, err := zipinspect.Inspect(zipinspect.Request{
			Path:                 path,
			URL:                  u.URL,
			OverrideArchitecture: u.OverrideArchitecture,
			Defaults:             defaults,
			NestedFiles:          u.NestedInstallerFiles,
			CacheDir:             req.CacheDir,
		})
		if err != nil {
			return nil, nil, err
		}
		outer.Scope = manifest.Scope(firstNonEmpty(string(u.OverrideScope), string(outer.Scope)))
		report := ParseReport{
			URL:                  u.URL,
			OverrideArchitecture: u.OverrideArchitecture,
			OverrideScope:        u.OverrideScope,
			MultipleNestedArches: outer.MultipleNestedInstallerArchitectures,
		}
		if !outer.MultipleNestedInstallerArchitectures {
			report.NestedArchitectures = []manifest.Architecture{outer.Architecture}
		}
		return []*manifest.Installer{outer}, []ParseReport{report}, nil
	}

	recs, parseReport, err := packageparser.Parse(packageparser.Request{
		Path:                 path,
		URL:                  u.URL,
		OverrideArchitecture: u.OverrideArchitecture,
		Defaults:             defaults,
	})
	if err != nil {
		return nil, nil, err
	}

	report := ParseReport{
		URL:                  u.URL,
		URLArchitecture:      parseReport.URLArchitecture,
		BinaryArchitecture:   parseReport.BinaryArchitecture,
		OverrideArchitecture: parseReport.OverrideArchitecture,
		OverrideScope:        u.OverrideScope,
	}

	reports := make([]ParseReport, len(recs))
	for i, rec := range recs {
		if u.OverrideScope != "" {
			rec.Scope = u.OverrideScope
		}
		reports[i] = report
		if len(recs) > 1 {
			// Bundle siblings: the parser's report holds only the last
			// child's architecture, so each record reports its own.
			reports[i].BinaryArchitecture = rec.Architecture
		}
	}

	return recs, reports, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Update implements the update entry point: parse takes the same per-URL
// path as Parse, then the Matcher pairs the fresh records against
// existing's installers before the Manifest Merger folds them in.
func Update(ctx context.Context, existing *manifest.Tree, req Request) (*manifest.Tree, []ParseReport, error) {
	fresh, reports, err := Parse(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	news := make([]matcher.NewInstaller, len(fresh))
	for i, rec := range fresh {
		news[i] = matcher.NewInstaller{
			Installer:            *rec,
			OverrideArchitecture: reports[i].OverrideArchitecture,
			URLArchitecture:      reports[i].URLArchitecture,
			BinaryArchitecture:   reports[i].BinaryArchitecture,
			OverrideScope:        reports[i].OverrideScope,
		}
	}

	matchMap, err := matcher.Match(news, existing.Installer.Installers, existing.Installer.InstallerType)
	if err != nil {
		return nil, nil, err
	}

	newInstallers := make([]manifest.Installer, len(fresh))
	for i, rec := range fresh {
		newInstallers[i] = *rec
	}

	result, err := manifest.ApplyUpdates(existing, manifest.UpdateRequest{
		NewInstallers:  newInstallers,
		MatchMap:       matchMap,
		PackageVersion: req.PackageVersion,
	})
	if err != nil {
		return nil, nil, err
	}

	manifest.HoistAll(&result.Tree.Installer)
	return result.Tree, reports, nil
}

// parseOverrideSuffix splits a `url|arch` or `url|arch|scope` or
// `url|display-version` input (§6.1) into its parts. A first suffix that
// is not a known architecture is treated as a display version, per the
// grammar's third form; a scope is only recognized after an architecture.
func parseOverrideSuffix(raw string) URLInput {
	parts := strings.Split(raw, "|")
	in := URLInput{URL: parts[0]}
	if len(parts) < 2 {
		return in
	}

	if arch, ok := asArchitecture(parts[1]); ok {
		in.OverrideArchitecture = arch
		if len(parts) >= 3 {
			if scope, ok := asScope(parts[2]); ok {
				in.OverrideScope = scope
			}
		}
		return in
	}

	in.DisplayVersion = parts[1]
	return in
}

func asArchitecture(s string) (manifest.Architecture, bool) {
	switch manifest.Architecture(s) {
	case manifest.ArchX86, manifest.ArchX64, manifest.ArchArm, manifest.ArchArm64, manifest.ArchNeutral:
		return manifest.Architecture(s), true
	default:
		return "", false
	}
}

func asScope(s string) (manifest.Scope, bool) {
	switch manifest.Scope(s) {
	case manifest.ScopeUser, manifest.ScopeMachine:
		return manifest.Scope(s), true
	default:
		return "", false
	}
}

// ParseURLInputs parses a raw `url[|override[|override2]]` string list into
// URLInputs (§6.1 entry point for a CLI/caller that hasn't already split
// its overrides out).
func ParseURLInputs(raw []string) []URLInput {
	out := make([]URLInput, len(raw))
	for i, r := range raw {
		out[i] = parseOverrideSuffix(r)
	}
	return out
}
