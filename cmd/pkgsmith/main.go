// Command pkgsmith parses installer URLs into a winget-style package
// manifest tree, authoring a new one or updating an existing version.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkgsmith/wecore/internal/core"
	"github.com/pkgsmith/wecore/internal/manifest"
	"github.com/pkgsmith/wecore/internal/metadata"
	"github.com/pkgsmith/wecore/internal/serialize"
)

// options holds the parsed CLI flags.
type options struct {
	packageIdentifier string
	packageVersion    string
	outDir            string
	structural        bool
	allowUnsecure     bool
	enrich            bool
	existing          stringSliceFlag
}

// stringSliceFlag accumulates repeated -existing flags.
type stringSliceFlag []string

func (s *stringSliceFlag) String() string { return fmt.Sprint([]string(*s)) }
func (s *stringSliceFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func parseFlags() (*options, []string) {
	opts := &options{}
	flag.StringVar(&opts.packageIdentifier, "id", "", "package identifier (new manifest only)")
	flag.StringVar(&opts.packageVersion, "version", "", "package version")
	flag.StringVar(&opts.outDir, "out", "manifests", "root output directory")
	flag.BoolVar(&opts.structural, "json", false, "write the structural (JSON) format instead of flow-style YAML")
	flag.BoolVar(&opts.allowUnsecure, "allow-unsecure", false, "permit http:// installer URLs")
	flag.BoolVar(&opts.enrich, "enrich", true, "fill empty locale fields from hosting-release metadata")
	flag.Var(&opts.existing, "existing", "path to an existing manifest file (repeatable; update mode)")
	flag.Parse()
	return opts, flag.Args()
}

func main() {
	opts, urls := parseFlags()
	if len(urls) == 0 {
		fmt.Fprintln(os.Stderr, "pkgsmith: at least one installer URL is required")
		os.Exit(2)
	}

	if err := run(opts, urls); err != nil {
		fmt.Fprintf(os.Stderr, "pkgsmith: %v\n", err)
		os.Exit(1)
	}
}

func run(opts *options, urls []string) error {
	ctx := context.Background()
	cacheDir := filepath.Join(os.TempDir(), "pkgsmith-cache")

	req := core.Request{
		URLs:              core.ParseURLInputs(urls),
		PackageIdentifier: opts.packageIdentifier,
		PackageVersion:    opts.packageVersion,
		AllowUnsecure:     opts.allowUnsecure,
		CacheDir:          cacheDir,
	}

	var tree *manifest.Tree
	var reports []core.ParseReport
	var err error

	if len(opts.existing) > 0 {
		contents, rerr := readFiles([]string(opts.existing))
		if rerr != nil {
			return rerr
		}
		existing, derr := core.Deserialize(contents)
		if derr != nil {
			return fmt.Errorf("reading existing manifest: %w", derr)
		}
		tree, reports, err = core.Update(ctx, existing, req)
	} else {
		var records []*manifest.Installer
		records, reports, err = core.Parse(ctx, req)
		if err == nil {
			tree = synthesizeTree(opts, records)
		}
	}
	if err != nil {
		return err
	}

	if opts.enrich {
		if ref, ok := metadata.CommonReleaseRef(urls); ok {
			src := metadata.NewGitHubSource()
			if md, merr := src.FetchRepoMetadata(ctx, ref.Owner, ref.Repo, ref.Tag); merr == nil {
				metadata.Enrich(&tree.DefaultLocale, md)
			}
		}
	}

	format := serialize.FormatFlow
	if opts.structural {
		format = serialize.FormatStructural
	}
	files, err := core.Serialize(tree, format)
	if err != nil {
		return err
	}

	dir := filepath.Join(opts.outDir, core.Directory(tree))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f.Name), f.Data, 0o644); err != nil {
			return err
		}
	}

	for _, r := range reports {
		fmt.Printf("%s: architecture=%s\n", r.URL, r.BinaryArchitecture)
	}
	fmt.Printf("wrote %d file(s) to %s\n", len(files), dir)
	return nil
}

func synthesizeTree(opts *options, records []*manifest.Installer) *manifest.Tree {
	installers := make([]manifest.Installer, len(records))
	for i, r := range records {
		installers[i] = *r
	}

	common := manifest.Common{
		PackageIdentifier: opts.packageIdentifier,
		PackageVersion:    opts.packageVersion,
		ManifestVersion:   "1.9.0",
	}

	version := common
	version.ManifestType = "version"
	installerManifest := common
	installerManifest.ManifestType = "installer"
	defaultLocale := common
	defaultLocale.ManifestType = "defaultLocale"

	im := manifest.InstallerManifest{Common: installerManifest, Installers: installers}
	manifest.HoistAll(&im)

	return &manifest.Tree{
		Version:       manifest.VersionManifest{Common: version, DefaultLocale: "en-US"},
		Installer:     im,
		DefaultLocale: manifest.DefaultLocaleManifest{Common: defaultLocale, PackageLocale: "en-US"},
	}
}

func readFiles(paths []string) ([][]byte, error) {
	out := make([][]byte, len(paths))
	for i, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		out[i] = data
	}
	return out, nil
}
