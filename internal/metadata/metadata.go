// Package metadata provides the hosting-metadata enrichment collaborator
// (spec.md §6.4): a pluggable source the core consults, never imports
// directly, to fill still-empty manifest fields from a release host's own
// description of the tag an installer's URLs came from.
package metadata

import "context"

// RepoMetadata is what a Source reports about one release tag.
type RepoMetadata struct {
	License             string
	ShortDescription    string
	PackageURL          string
	PublisherURL        string
	PublisherSupportURL string // only set when the host reports issues enabled
	ReleaseNotesURL     string
	ReleaseDate         string
	Tags                []string // truncated to the first 16 by the Source
	DocumentationURL    string   // only set when the host reports its wiki enabled
}

// Source fetches hosting-release metadata for one (owner, repo, tag) triple.
type Source interface {
	FetchRepoMetadata(ctx context.Context, owner, repo, tag string) (*RepoMetadata, error)
}

const maxTags = 16

func truncateTags(tags []string) []string {
	if len(tags) > maxTags {
		return tags[:maxTags]
	}
	return tags
}
