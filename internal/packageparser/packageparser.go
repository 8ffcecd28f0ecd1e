// Package packageparser is the introspection orchestrator of spec.md §4.G:
// for a single downloaded file it tries the PE, MSIX/APPX, and MSI
// inspectors in that fixed order and normalizes whichever one accepts the
// file into one or more manifest.Installer records. It never opens a ZIP
// itself — zipinspect sits above this package and calls Parse once per
// nested file it extracts.
package packageparser

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"strings"

	"github.com/pkgsmith/wecore/internal/archheuristic"
	"github.com/pkgsmith/wecore/internal/manifest"
	"github.com/pkgsmith/wecore/internal/msiinspect"
	"github.com/pkgsmith/wecore/internal/msixinspect"
	"github.com/pkgsmith/wecore/internal/peinspect"
)

// Request describes one file to introspect.
type Request struct {
	// Path is the local file to read.
	Path string

	// URL is the origin the file was downloaded from, used only for the
	// architecture-from-URL heuristic (§4.B) and recorded on the
	// resulting record's InstallerURL.
	URL string

	// OverrideArchitecture, if non-empty, wins over every other
	// architecture source except MSIX package identity.
	OverrideArchitecture manifest.Architecture

	// Defaults holds whatever the caller has already hoisted to the
	// installer-manifest level; Parse nulls out a hoistable field on the
	// emitted record when Defaults already carries a value for it (I5).
	Defaults manifest.Installer

	// WithinZip is true when Path is a file extracted from a ZIP
	// carrier rather than a directly downloaded installer. A plain
	// (unwrapped) EXE found this way is emitted as `portable` per
	// §4.F/§4.G rather than `exe`.
	WithinZip bool

	// SHA256, if non-empty, is used instead of hashing Path. No caller in
	// this module sets it; zipinspect extracts nested files to disk and
	// leaves the hashing to Parse.
	SHA256 string
}

// Report records which architecture sources were consulted and what they
// said, so a caller building a diagnostic parse report (§8) doesn't need
// to re-derive them.
type Report struct {
	URLArchitecture      manifest.Architecture
	BinaryArchitecture   manifest.Architecture
	OverrideArchitecture manifest.Architecture
}

// Parse reads Path, classifies it, and returns the resulting records (more
// than one only for an MSIX bundle's application children) plus a Report.
// Returns *NotRecognized when none of the three inspectors accept the file.
func Parse(req Request) ([]*manifest.Installer, *Report, error) {
	sha, err := sha256Hex(req)
	if err != nil {
		return nil, nil, err
	}

	report := &Report{OverrideArchitecture: req.OverrideArchitecture}
	if guessed, ok := archheuristic.Guess(req.URL); ok {
		report.URLArchitecture = guessed
	}

	if pe, err := peinspect.Inspect(req.Path); err == nil {
		report.BinaryArchitecture = pe.Architecture
		rec := fromPE(req, pe, sha)
		applyHoistDefaults(rec, req.Defaults)
		applyDisplayVersion(rec, req.Defaults)
		return []*manifest.Installer{rec}, report, nil
	} else if _, ok := err.(*peinspect.NotPE); !ok {
		return nil, nil, err
	}

	if results, err := msixinspect.Inspect(req.Path); err == nil {
		recs := make([]*manifest.Installer, 0, len(results))
		for _, res := range results {
			report.BinaryArchitecture = res.Architecture
			rec := fromMSIX(req, res, sha)
			applyHoistDefaults(rec, req.Defaults)
			applyDisplayVersion(rec, req.Defaults)
			recs = append(recs, rec)
		}
		return recs, report, nil
	} else if _, ok := err.(*msixinspect.NotMsix); !ok {
		return nil, nil, err
	}

	if msi, err := msiinspect.Inspect(req.Path); err == nil {
		report.BinaryArchitecture = msi.Architecture
		rec := fromMSI(req, msi, sha)
		applyHoistDefaults(rec, req.Defaults)
		applyDisplayVersion(rec, req.Defaults)
		return []*manifest.Installer{rec}, report, nil
	} else if _, ok := err.(*msiinspect.NotMsi); !ok {
		return nil, nil, err
	}

	return nil, nil, &NotRecognized{Path: req.Path}
}

func fromPE(req Request, pe *peinspect.Result, sha string) *manifest.Installer {
	installerType := manifest.InstallerExe
	switch pe.Family {
	case "inno":
		installerType = manifest.InstallerInno
	case "nullsoft":
		installerType = manifest.InstallerNullsoft
	case "wix":
		installerType = manifest.InstallerBurn
	}
	if req.WithinZip && installerType == manifest.InstallerExe {
		installerType = manifest.InstallerPortable
	}

	return &manifest.Installer{
		InstallerURL:    req.URL,
		InstallerSHA256: sha,
		InstallerType:   installerType,
		Architecture:    resolveArchitecture(req, pe.Architecture, false),
	}
}

func fromMSI(req Request, msi *msiinspect.Result, sha string) *manifest.Installer {
	installerType := manifest.InstallerMsi
	if msi.IsWixAuthored {
		installerType = manifest.InstallerWix
	}
	return &manifest.Installer{
		InstallerURL:    req.URL,
		InstallerSHA256: sha,
		InstallerType:   installerType,
		Architecture:    resolveArchitecture(req, msi.Architecture, false),
		InstallerLocale: msi.Locale,
		ProductCode:     msi.ProductCode,
	}
}

func fromMSIX(req Request, res *msixinspect.Result, sha string) *manifest.Installer {
	return &manifest.Installer{
		InstallerURL:      req.URL,
		InstallerSHA256:   sha,
		SignatureSHA256:   res.SignatureSHA256,
		InstallerType:     res.InstallerType,
		Architecture:      resolveArchitecture(req, res.Architecture, true),
		PackageFamilyName: res.PackageFamilyName,
		Platform:          res.Platform,
		MinimumOSVersion:  res.MinimumOSVersion,
	}
}

// resolveArchitecture applies the precedence of §4.G: caller override >
// URL heuristic > inspector-reported > neutral. MSIX records bypass the
// override and URL sources entirely, since a bundle may legitimately
// contribute several architectures from one URL.
func resolveArchitecture(req Request, inspectorArch manifest.Architecture, isMsix bool) manifest.Architecture {
	if isMsix {
		if inspectorArch == "" {
			return manifest.ArchNeutral
		}
		return inspectorArch
	}
	if req.OverrideArchitecture != "" {
		return req.OverrideArchitecture
	}
	if guessed, ok := archheuristic.Guess(req.URL); ok {
		return guessed
	}
	if inspectorArch != "" {
		return inspectorArch
	}
	return manifest.ArchNeutral
}

// applyHoistDefaults nulls out a hoistable field the inspector populated
// when the caller's Defaults already carries a value for it, so the
// per-record field does not duplicate what will live at the
// installer-manifest level (I5).
func applyHoistDefaults(rec *manifest.Installer, defaults manifest.Installer) {
	if defaults.MinimumOSVersion != "" {
		rec.MinimumOSVersion = ""
	}
	if defaults.PackageFamilyName != "" {
		rec.PackageFamilyName = ""
	}
	if len(defaults.Platform) > 0 {
		rec.Platform = nil
	}
	if defaults.InstallerLocale != "" {
		rec.InstallerLocale = ""
	}
}

// applyDisplayVersion copies the caller's per-URL display version (§6.1)
// onto the emitted record; it is never inspector-derived.
func applyDisplayVersion(rec *manifest.Installer, defaults manifest.Installer) {
	if defaults.DisplayVersion != "" {
		rec.DisplayVersion = defaults.DisplayVersion
	}
}

func sha256Hex(req Request) (string, error) {
	if req.SHA256 != "" {
		return req.SHA256, nil
	}
	f, err := os.Open(req.Path)
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
