package metadata

import "github.com/pkgsmith/wecore/internal/manifest"

// Enrich fills still-empty fields of loc from md. It never overwrites a
// field that already holds a value (spec.md §8 property 6: running
// enrichment twice is a no-op the second time).
func Enrich(loc *manifest.DefaultLocaleManifest, md *RepoMetadata) {
	if loc.License == "" {
		loc.License = md.License
	}
	if loc.ShortDescription == "" {
		loc.ShortDescription = md.ShortDescription
	}
	if loc.PackageURL == "" {
		loc.PackageURL = md.PackageURL
	}
	if loc.PublisherURL == "" {
		loc.PublisherURL = md.PublisherURL
	}
	if loc.PublisherSupportURL == "" {
		loc.PublisherSupportURL = md.PublisherSupportURL
	}
	if loc.ReleaseNotesURL == "" {
		loc.ReleaseNotesURL = md.ReleaseNotesURL
	}
	if loc.ReleaseDate == "" {
		loc.ReleaseDate = md.ReleaseDate
	}
	if len(loc.Tags) == 0 {
		loc.Tags = md.Tags
	}
	if loc.DocumentationURL == "" {
		loc.DocumentationURL = md.DocumentationURL
	}
}
