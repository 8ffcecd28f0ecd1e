package msixinspect

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkgsmith/wecore/internal/manifest"
)

const sampleAppxManifest = `<?xml version="1.0" encoding="utf-8"?>
<Package xmlns="http://schemas.microsoft.com/appx/manifest/foundation/windows10">
  <Identity Name="Contoso.ExampleApp" Publisher="CN=Contoso Software" Version="1.2.3.0" ProcessorArchitecture="x64"/>
  <Properties>
    <DisplayName>Example App</DisplayName>
    <PublisherDisplayName>Contoso Software</PublisherDisplayName>
    <Description>An example application.</Description>
  </Properties>
  <Dependencies>
    <TargetDeviceFamily Name="Windows.Desktop" MinVersion="10.0.17763.0"/>
    <TargetDeviceFamily Name="Windows.Universal" MinVersion="10.0.19041.0"/>
  </Dependencies>
</Package>`

func writeZip(t *testing.T, files map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "package.msix")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInspectSinglePackage(t *testing.T) {
	path := writeZip(t, map[string]string{
		"AppxManifest.xml":   sampleAppxManifest,
		"AppxSignature.p7x":  "fake signature bytes",
	})

	results, err := Inspect(path)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	res := results[0]
	if res.Architecture != manifest.ArchX64 {
		t.Errorf("Architecture = %q, want x64", res.Architecture)
	}
	if res.InstallerType != manifest.InstallerMsix {
		t.Errorf("InstallerType = %q, want msix", res.InstallerType)
	}
	if res.DisplayName != "Example App" {
		t.Errorf("DisplayName = %q", res.DisplayName)
	}
	if res.SignatureSHA256 == "" {
		t.Error("expected non-empty SignatureSHA256")
	}
	if len(res.Platform) != 2 || res.Platform[0] != manifest.PlatformDesktop || res.Platform[1] != manifest.PlatformUniversal {
		t.Errorf("Platform = %v", res.Platform)
	}
	if res.MinimumOSVersion != "10.0.19041.0" {
		t.Errorf("MinimumOSVersion = %q, want the largest MinVersion seen", res.MinimumOSVersion)
	}
	wantPFN := "Contoso.ExampleApp_" + packageFamilyNameSuffix("CN=Contoso Software")
	if res.PackageFamilyName != wantPFN {
		t.Errorf("PackageFamilyName = %q, want %q", res.PackageFamilyName, wantPFN)
	}
}

func TestInspectBundleEmitsOneRecordPerApplicationChild(t *testing.T) {
	x64Manifest := sampleAppxManifest
	arm64Manifest := `<?xml version="1.0" encoding="utf-8"?>
<Package xmlns="http://schemas.microsoft.com/appx/manifest/foundation/windows10">
  <Identity Name="Contoso.ExampleApp" Publisher="CN=Contoso Software" Version="1.2.3.0" ProcessorArchitecture="arm64"/>
  <Properties>
    <DisplayName>Example App</DisplayName>
    <PublisherDisplayName>Contoso Software</PublisherDisplayName>
  </Properties>
</Package>`

	childX64 := buildChildZip(t, x64Manifest)
	childArm64 := buildChildZip(t, arm64Manifest)

	bundleManifest := `<?xml version="1.0" encoding="utf-8"?>
<Bundle xmlns="http://schemas.microsoft.com/appx/2013/bundle">
  <Packages>
    <Package Type="application" Architecture="x64" FileName="ExampleApp_x64.msix"/>
    <Package Type="application" Architecture="arm64" FileName="ExampleApp_arm64.msix"/>
    <Package Type="resource" Architecture="neutral" FileName="AppxMetadata\Stub\resources.pri"/>
  </Packages>
</Bundle>`

	path := writeZip(t, map[string]string{
		"AppxMetadata/AppxBundleManifest.xml": bundleManifest,
		"AppxSignature.p7x":                   "fake bundle signature",
		"ExampleApp_x64.msix":                 string(childX64),
		"ExampleApp_arm64.msix":                string(childArm64),
	})

	results, err := Inspect(path)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	archs := map[manifest.Architecture]bool{}
	for _, r := range results {
		archs[r.Architecture] = true
		if r.SignatureSHA256 == "" {
			t.Error("expected bundle-level signature hash to be copied to each child record")
		}
	}
	if !archs[manifest.ArchX64] || !archs[manifest.ArchArm64] {
		t.Errorf("expected x64 and arm64 architectures, got %v", archs)
	}
}

func buildChildZip(t *testing.T, appxManifest string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("AppxManifest.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(appxManifest)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestInspectRejectsNonZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-package.msix")
	if err := os.WriteFile(path, []byte("not a zip archive"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Inspect(path)
	if _, ok := err.(*NotMsix); !ok {
		t.Fatalf("expected *NotMsix, got %T (%v)", err, err)
	}
}
