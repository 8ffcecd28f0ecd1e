package packageparser

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkgsmith/wecore/internal/manifest"
)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func minimalPE(machine uint16) []byte {
	buf := make([]byte, 70)
	binary.LittleEndian.PutUint16(buf[0:2], 0x5A4D)
	binary.LittleEndian.PutUint32(buf[60:64], 64)
	binary.LittleEndian.PutUint32(buf[64:68], 0x00004550)
	binary.LittleEndian.PutUint16(buf[68:70], machine)
	return buf
}

func TestParsePlainEXE(t *testing.T) {
	path := writeTemp(t, "setup.exe", minimalPE(0x8664))
	recs, report, err := Parse(Request{Path: path, URL: "https://example.com/setup-x64.exe"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	rec := recs[0]
	if rec.InstallerType != manifest.InstallerExe {
		t.Errorf("InstallerType = %q, want exe", rec.InstallerType)
	}
	if rec.Architecture != manifest.ArchX64 {
		t.Errorf("Architecture = %q, want x64 (from URL heuristic)", rec.Architecture)
	}
	if report.BinaryArchitecture != manifest.ArchX64 {
		t.Errorf("report.BinaryArchitecture = %q", report.BinaryArchitecture)
	}
}

func TestParseWithinZipForcesPortable(t *testing.T) {
	path := writeTemp(t, "tool.exe", minimalPE(0x014C))
	recs, _, err := Parse(Request{Path: path, URL: "tool.exe", WithinZip: true})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if recs[0].InstallerType != manifest.InstallerPortable {
		t.Errorf("InstallerType = %q, want portable", recs[0].InstallerType)
	}
}

func TestParseOverrideArchitectureWins(t *testing.T) {
	path := writeTemp(t, "setup.exe", minimalPE(0x8664)) // binary says x64
	recs, _, err := Parse(Request{
		Path:                 path,
		URL:                  "https://example.com/setup-x86.exe", // URL says x86
		OverrideArchitecture: manifest.ArchArm64,
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if recs[0].Architecture != manifest.ArchArm64 {
		t.Errorf("Architecture = %q, want arm64 override to win", recs[0].Architecture)
	}
}

func TestParseMSIXBypassesURLAndOverride(t *testing.T) {
	const appxManifest = `<?xml version="1.0" encoding="utf-8"?>
<Package xmlns="http://schemas.microsoft.com/appx/manifest/foundation/windows10">
  <Identity Name="Contoso.App" Publisher="CN=Contoso" Version="1.0.0.0" ProcessorArchitecture="arm64"/>
</Package>`
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("AppxManifest.xml")
	if err != nil {
		t.Fatal(err)
	}
	w.Write([]byte(appxManifest))
	zw.Close()

	path := writeTemp(t, "app.msix", buf.Bytes())
	recs, _, err := Parse(Request{
		Path:                 path,
		URL:                  "https://example.com/app-x64.msix",
		OverrideArchitecture: manifest.ArchX86,
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if recs[0].Architecture != manifest.ArchArm64 {
		t.Errorf("Architecture = %q, want arm64 from the package manifest, ignoring URL/override", recs[0].Architecture)
	}
}

func TestParseHoistDefaultsNullPackageFamilyName(t *testing.T) {
	const appxManifest = `<?xml version="1.0" encoding="utf-8"?>
<Package xmlns="http://schemas.microsoft.com/appx/manifest/foundation/windows10">
  <Identity Name="Contoso.App" Publisher="CN=Contoso" Version="1.0.0.0" ProcessorArchitecture="x64"/>
</Package>`
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("AppxManifest.xml")
	w.Write([]byte(appxManifest))
	zw.Close()

	path := writeTemp(t, "app.msix", buf.Bytes())
	recs, _, err := Parse(Request{
		Path:     path,
		URL:      "https://example.com/app.msix",
		Defaults: manifest.Installer{PackageFamilyName: "Contoso.App_alreadyhoisted"},
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if recs[0].PackageFamilyName != "" {
		t.Errorf("PackageFamilyName = %q, want nulled because it is already hoisted", recs[0].PackageFamilyName)
	}
}

func TestParseRejectsUnrecognizedFile(t *testing.T) {
	path := writeTemp(t, "readme.txt", []byte("just some text, not an installer"))
	_, _, err := Parse(Request{Path: path, URL: "https://example.com/readme.txt"})
	if _, ok := err.(*NotRecognized); !ok {
		t.Fatalf("expected *NotRecognized, got %T (%v)", err, err)
	}
}
