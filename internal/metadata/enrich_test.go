package metadata

import (
	"testing"

	"github.com/pkgsmith/wecore/internal/manifest"
)

func TestEnrichFillsEmptyFieldsOnly(t *testing.T) {
	loc := &manifest.DefaultLocaleManifest{
		License: "already set",
	}
	md := &RepoMetadata{
		License:          "MIT",
		ShortDescription: "A tool",
		Tags:             []string{"cli"},
	}

	Enrich(loc, md)

	if loc.License != "already set" {
		t.Errorf("License overwritten: %q", loc.License)
	}
	if loc.ShortDescription != "A tool" {
		t.Errorf("ShortDescription = %q, want filled in", loc.ShortDescription)
	}
	if len(loc.Tags) != 1 || loc.Tags[0] != "cli" {
		t.Errorf("Tags = %v, want [cli]", loc.Tags)
	}
}

func TestEnrichIsIdempotentOnSecondPass(t *testing.T) {
	loc := &manifest.DefaultLocaleManifest{}
	md := &RepoMetadata{License: "MIT", ShortDescription: "A tool"}

	Enrich(loc, md)
	Enrich(loc, &RepoMetadata{License: "Apache-2.0", ShortDescription: "Different"})

	if loc.License != "MIT" {
		t.Errorf("License changed on second enrichment pass: %q", loc.License)
	}
	if loc.ShortDescription != "A tool" {
		t.Errorf("ShortDescription changed on second enrichment pass: %q", loc.ShortDescription)
	}
}

func TestTruncateTags(t *testing.T) {
	tags := make([]string, 20)
	for i := range tags {
		tags[i] = "tag"
	}
	got := truncateTags(tags)
	if len(got) != maxTags {
		t.Errorf("len(truncateTags(...)) = %d, want %d", len(got), maxTags)
	}
}
