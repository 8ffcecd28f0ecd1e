// Package zipinspect handles a ZIP archive the caller has designated as a
// nested-installer carrier (spec.md §4.F): it extracts the requested
// member files to a disk cache and runs each one through the Package
// Parser (internal/packageparser), then folds the results into a single
// outer Installer record whose own hash is the archive's hash, not any
// inner file's.
package zipinspect

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkgsmith/wecore/internal/manifest"
	"github.com/pkgsmith/wecore/internal/packageparser"
)

// Request describes the outer archive and which members to extract.
type Request struct {
	Path                 string
	URL                  string
	OverrideArchitecture manifest.Architecture
	Defaults             manifest.Installer
	NestedFiles          []manifest.NestedInstallerFile

	// CacheDir is where extracted member files are written, one
	// subdirectory per archive content hash so re-parsing the same
	// archive reuses prior extractions. Created if missing.
	CacheDir string
}

// Inspect extracts Request.NestedFiles from the archive at Request.Path
// and returns a single outer Installer record summarizing them.
func Inspect(req Request) (*manifest.Installer, error) {
	if len(req.NestedFiles) == 0 {
		return nil, fmt.Errorf("zipinspect: no nested_installer_files given for %s", req.Path)
	}

	archiveSHA, err := hashFile(req.Path)
	if err != nil {
		return nil, err
	}

	zr, err := zip.OpenReader(req.Path)
	if err != nil {
		return nil, &NotZip{Reason: err.Error()}
	}
	defer zr.Close()

	extractDir, err := cacheDirFor(req.CacheDir, archiveSHA)
	if err != nil {
		return nil, err
	}

	outer := &manifest.Installer{
		InstallerURL:    req.URL,
		InstallerSHA256: archiveSHA,
		InstallerType:   manifest.InstallerZip,
	}

	var nestedTypes = map[manifest.InstallerType]bool{}
	var architectures = map[manifest.Architecture]bool{}

	for _, nf := range req.NestedFiles {
		extractedPath, err := extractMember(zr, nf.RelativePath, extractDir)
		if err != nil {
			return nil, err
		}

		childReq := packageparser.Request{
			Path:                 extractedPath,
			URL:                  req.URL,
			OverrideArchitecture: req.OverrideArchitecture,
			Defaults:             req.Defaults,
			WithinZip:            true,
		}
		recs, _, err := packageparser.Parse(childReq)
		if err != nil {
			return nil, fmt.Errorf("zipinspect: nested file %s: %w", nf.RelativePath, err)
		}
		for _, rec := range recs {
			nestedTypes[rec.InstallerType] = true
			architectures[rec.Architecture] = true
		}

		outer.NestedInstallerFiles = append(outer.NestedInstallerFiles, nf)
	}

	if len(nestedTypes) == 1 {
		for t := range nestedTypes {
			outer.NestedInstallerType = t
		}
	}
	if len(architectures) > 1 {
		outer.MultipleNestedInstallerArchitectures = true
	} else {
		for a := range architectures {
			outer.Architecture = a
		}
	}

	return outer, nil
}

// extractMember writes one archive member's content to a deterministic
// path under dir, skipping the write if it is already there — repeated
// Inspect calls against the same archive reuse the extraction.
func extractMember(zr *zip.ReadCloser, relativePath, dir string) (string, error) {
	want := strings.ToLower(strings.ReplaceAll(relativePath, `\`, "/"))
	var member *zip.File
	for _, f := range zr.File {
		if strings.ToLower(f.Name) == want {
			member = f
			break
		}
	}
	if member == nil {
		return "", fmt.Errorf("zipinspect: nested_installer_files entry %q not found in archive", relativePath)
	}

	dest := filepath.Join(dir, filepath.Base(relativePath))
	if fi, err := os.Stat(dest); err == nil && fi.Size() == int64(member.UncompressedSize64) {
		return dest, nil
	}

	rc, err := member.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	out, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return "", err
	}
	return dest, nil
}

func cacheDirFor(base, archiveSHA string) (string, error) {
	dir := filepath.Join(base, archiveSHA)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(h.Sum(nil))), nil
}
