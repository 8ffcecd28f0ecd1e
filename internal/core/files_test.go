package core

import (
	"strings"
	"testing"

	"github.com/pkgsmith/wecore/internal/manifest"
	"github.com/pkgsmith/wecore/internal/serialize"
)

func sampleTree() *manifest.Tree {
	return &manifest.Tree{
		Version: manifest.VersionManifest{
			Common: manifest.Common{
				PackageIdentifier: "Publisher.Package",
				PackageVersion:    "1.0.0",
				ManifestType:      "version",
				ManifestVersion:   "1.9.0",
			},
			DefaultLocale: "en-US",
		},
		Installer: manifest.InstallerManifest{
			Common: manifest.Common{
				PackageIdentifier: "Publisher.Package",
				PackageVersion:    "1.0.0",
				ManifestType:      "installer",
				ManifestVersion:   "1.9.0",
			},
			Installers: []manifest.Installer{
				{InstallerURL: "https://example.com/a.exe", InstallerSHA256: strings.Repeat("A", 64), Architecture: manifest.ArchX64, InstallerType: manifest.InstallerExe},
			},
		},
		DefaultLocale: manifest.DefaultLocaleManifest{
			Common: manifest.Common{
				PackageIdentifier: "Publisher.Package",
				PackageVersion:    "1.0.0",
				ManifestType:      "defaultLocale",
				ManifestVersion:   "1.9.0",
			},
			PackageLocale:    "en-US",
			Publisher:        "Example Publisher",
			PackageName:      "Example Package",
			License:          "MIT",
			ShortDescription: "An example",
		},
	}
}

func TestSerializeProducesExpectedFilenames(t *testing.T) {
	tree := sampleTree()
	files, err := Serialize(tree, serialize.FormatFlow)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	var names []string
	for _, f := range files {
		names = append(names, f.Name)
	}
	want := []string{
		"Publisher.Package.yaml",
		"Publisher.Package.installer.yaml",
		"Publisher.Package.locale.en-US.yaml",
	}
	if len(names) != len(want) {
		t.Fatalf("got files %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestDirectory(t *testing.T) {
	tree := sampleTree()
	if got, want := Directory(tree), "manifests/p/Publisher/Package/1.0.0"; got != want {
		t.Errorf("Directory = %q, want %q", got, want)
	}
}

func TestSerializeThenDeserializeRoundTrip(t *testing.T) {
	tree := sampleTree()
	files, err := Serialize(tree, serialize.FormatStructural)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	var contents [][]byte
	for _, f := range files {
		contents = append(contents, f.Data)
	}

	got, err := Deserialize(contents)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if got.PackageIdentifier() != tree.PackageIdentifier() {
		t.Errorf("PackageIdentifier = %q, want %q", got.PackageIdentifier(), tree.PackageIdentifier())
	}
	if got.DefaultLocale.Publisher != "Example Publisher" {
		t.Errorf("Publisher = %q, want Example Publisher", got.DefaultLocale.Publisher)
	}
	if len(got.Installer.Installers) != 1 {
		t.Fatalf("got %d installers, want 1", len(got.Installer.Installers))
	}
}

func TestDeserializeSingletonSplitsIntoTree(t *testing.T) {
	singleton := &manifest.Singleton{
		Common: manifest.Common{
			PackageIdentifier: "Publisher.Package",
			PackageVersion:    "1.0.0",
			ManifestType:      "singleton",
			ManifestVersion:   "1.9.0",
		},
		PackageLocale:    "en-US",
		Publisher:        "Example Publisher",
		PackageName:      "Example Package",
		License:          "MIT",
		ShortDescription: "An example",
		Installers: []manifest.Installer{
			{InstallerURL: "https://example.com/a.exe", InstallerSHA256: strings.Repeat("A", 64), Architecture: manifest.ArchX64, InstallerType: manifest.InstallerExe},
		},
	}
	encoded, err := serialize.EncodeTo(singleton, serialize.FormatStructural)
	if err != nil {
		t.Fatalf("EncodeTo: %v", err)
	}

	tree, err := Deserialize([][]byte{encoded})
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if tree.Version.DefaultLocale != "en-US" {
		t.Errorf("Version.DefaultLocale = %q, want en-US", tree.Version.DefaultLocale)
	}
	if tree.DefaultLocale.Publisher != "Example Publisher" {
		t.Errorf("DefaultLocale.Publisher = %q, want Example Publisher", tree.DefaultLocale.Publisher)
	}
	if len(tree.Installer.Installers) != 1 {
		t.Fatalf("got %d installers, want 1", len(tree.Installer.Installers))
	}
}
