package core

import (
	"fmt"

	"github.com/pkgsmith/wecore/internal/manifest"
	"github.com/pkgsmith/wecore/internal/serialize"
)

// File is one named document of a serialized tree, relative to its
// manifests/<a>/<publisher>/<name>/<version>/ directory (§6.2).
type File struct {
	Name string
	Data []byte
}

// Serialize renders every document of t to disk-ready Files, named and
// laid out per §4.J/§6.2. The directory itself is the caller's concern
// (core never touches the filesystem outside of the Downloader's cache).
func Serialize(t *manifest.Tree, format serialize.Format) ([]File, error) {
	id := t.PackageIdentifier()
	var files []File

	versionBytes, err := serialize.EncodeTo(&t.Version, format)
	if err != nil {
		return nil, err
	}
	files = append(files, File{Name: serialize.VersionFilename(id, format), Data: versionBytes})

	installerBytes, err := serialize.EncodeTo(&t.Installer, format)
	if err != nil {
		return nil, err
	}
	files = append(files, File{Name: serialize.InstallerFilename(id, format), Data: installerBytes})

	defaultLocaleBytes, err := serialize.EncodeTo(&t.DefaultLocale, format)
	if err != nil {
		return nil, err
	}
	files = append(files, File{
		Name: serialize.LocaleFilename(id, t.DefaultLocale.PackageLocale, format),
		Data: defaultLocaleBytes,
	})

	for i := range t.AdditionalLocales {
		loc := &t.AdditionalLocales[i]
		b, err := serialize.EncodeTo(loc, format)
		if err != nil {
			return nil, err
		}
		files = append(files, File{
			Name: serialize.LocaleFilename(id, loc.PackageLocale, format),
			Data: b,
		})
	}

	return files, nil
}

// Directory returns the manifests/ subpath t should be written into.
func Directory(t *manifest.Tree) string {
	return serialize.Directory(t.PackageIdentifier(), t.Version.PackageVersion)
}

// Deserialize reconstructs a Tree from a set of manifest-file contents,
// regardless of which format each was written in or what order they were
// given (§6.2 deserialize). It is an error for a required document type to
// be missing.
func Deserialize(contents [][]byte) (*manifest.Tree, error) {
	t := &manifest.Tree{}
	var haveVersion, haveInstaller, haveDefaultLocale bool
	for _, c := range contents {
		doc, err := serialize.Decode(c)
		if err != nil {
			return nil, err
		}
		switch d := doc.(type) {
		case *manifest.VersionManifest:
			t.Version = *d
			haveVersion = true
		case *manifest.InstallerManifest:
			t.Installer = *d
			haveInstaller = true
		case *manifest.DefaultLocaleManifest:
			t.DefaultLocale = *d
			haveDefaultLocale = true
		case *manifest.AdditionalLocaleManifest:
			t.AdditionalLocales = append(t.AdditionalLocales, *d)
		case *manifest.Singleton:
			return singletonToTree(d), nil
		}
	}
	if !haveVersion || !haveInstaller || !haveDefaultLocale {
		return nil, fmt.Errorf("core: manifest set is missing a version, installer or defaultLocale document")
	}
	return t, nil
}

// singletonToTree splits the union input form (§3.2) into the split tree
// the engine always works with internally.
func singletonToTree(s *manifest.Singleton) *manifest.Tree {
	common := s.Common
	common.ManifestType = "version"
	version := manifest.VersionManifest{Common: common, DefaultLocale: s.PackageLocale}

	installerCommon := s.Common
	installerCommon.ManifestType = "installer"
	installer := manifest.InstallerManifest{Common: installerCommon, Installers: s.Installers, ReleaseDate: s.ReleaseDate}
	manifest.HoistAll(&installer)

	localeCommon := s.Common
	localeCommon.ManifestType = "defaultLocale"
	defaultLocale := manifest.DefaultLocaleManifest{
		Common:              localeCommon,
		PackageLocale:       s.PackageLocale,
		Publisher:           s.Publisher,
		PackageName:         s.PackageName,
		License:             s.License,
		ShortDescription:    s.ShortDescription,
		PublisherURL:        s.PublisherURL,
		PublisherSupportURL: s.PublisherSupportURL,
		PackageURL:          s.PackageURL,
		LicenseURL:          s.LicenseURL,
		Description:         s.Description,
		Tags:                s.Tags,
		ReleaseNotes:        s.ReleaseNotes,
		ReleaseNotesURL:     s.ReleaseNotesURL,
		ReleaseDate:         releaseDateText(s.ReleaseDate),
	}

	return &manifest.Tree{Version: version, Installer: installer, DefaultLocale: defaultLocale}
}

// releaseDateText reads the date-string surface form back off an
// InstallerManifest/Singleton-level ReleaseDate for copying onto
// DefaultLocaleManifest, which only ever carries the text form.
func releaseDateText(d *manifest.ReleaseDate) string {
	if d == nil {
		return ""
	}
	return d.Text
}
