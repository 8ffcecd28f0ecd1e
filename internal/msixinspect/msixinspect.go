// Package msixinspect reads an MSIX/APPX package (spec.md §4.E), which is
// physically a ZIP archive, to recover package identity, target-device
// platforms, and a deterministically-derived package family name. A bundle
// contributes one Installer record per application child package; a plain
// package contributes exactly one. Grounded on the teacher corpus's own
// archive/zip + encoding/xml combination for reading a ZIP-shaped container
// (internal/apk/parser.go), generalized from Android's binary AXML format
// to MSIX's plain XML manifests.
package msixinspect

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"

	"github.com/pkgsmith/wecore/internal/manifest"
)

// Result is one Installer record's worth of data extracted from an
// MSIX/APPX package or one of a bundle's application children.
type Result struct {
	InstallerType        manifest.InstallerType // msix or appx
	Architecture         manifest.Architecture
	PackageFamilyName    string
	DisplayName          string
	PublisherDisplayName string
	Description          string
	Platform             []manifest.Platform
	MinimumOSVersion     string
	SignatureSHA256      string
}

const stubPrefix = `AppxMetadata\Stub`

// Inspect opens path as a ZIP archive and reads it as an MSIX/APPX
// package. Returns *NotMsix, never wrapped, when the archive cannot be
// opened or carries neither a bundle nor a single-package manifest.
func Inspect(path string) ([]*Result, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, &NotMsix{Reason: err.Error()}
	}
	defer zr.Close()

	files := map[string]*zip.File{}
	for _, f := range zr.File {
		files[strings.ToLower(f.Name)] = f
	}

	sigSHA256 := signatureSHA256(files)

	if bundleFile, ok := files[strings.ToLower("AppxMetadata/AppxBundleManifest.xml")]; ok {
		return inspectBundle(zr, bundleFile, sigSHA256)
	}

	manifestFile, ok := files[strings.ToLower("AppxManifest.xml")]
	if !ok {
		return nil, &NotMsix{Reason: "no AppxManifest.xml or AppxBundleManifest.xml found"}
	}
	res, err := inspectSinglePackage(manifestFile)
	if err != nil {
		return nil, err
	}
	res.SignatureSHA256 = sigSHA256
	return []*Result{res}, nil
}

func signatureSHA256(files map[string]*zip.File) string {
	f, ok := files[strings.ToLower("AppxSignature.p7x")]
	if !ok {
		return ""
	}
	rc, err := f.Open()
	if err != nil {
		return ""
	}
	defer rc.Close()

	h := sha256.New()
	if _, err := io.Copy(h, rc); err != nil {
		return ""
	}
	return strings.ToUpper(hex.EncodeToString(h.Sum(nil)))
}

func inspectBundle(zr *zip.ReadCloser, bundleFile *zip.File, sigSHA256 string) ([]*Result, error) {
	rc, err := bundleFile.Open()
	if err != nil {
		return nil, &NotMsix{Reason: "cannot read AppxBundleManifest.xml: " + err.Error()}
	}
	defer rc.Close()

	bundle, err := decodeBundleManifest(rc)
	if err != nil {
		return nil, &NotMsix{Reason: "malformed AppxBundleManifest.xml: " + err.Error()}
	}

	var results []*Result
	for _, pkg := range bundle.Packages.Package {
		if !strings.EqualFold(pkg.Type, "application") {
			continue
		}
		if strings.HasPrefix(pkg.RelativeFilePath, stubPrefix) {
			continue
		}

		childBytes, err := readZipMember(zr, pkg.RelativeFilePath)
		if err != nil {
			continue
		}
		childRes, err := inspectEmbeddedPackage(childBytes)
		if err != nil {
			continue
		}
		childRes.SignatureSHA256 = sigSHA256
		results = append(results, childRes)
	}

	if len(results) == 0 {
		return nil, &NotMsix{Reason: "bundle manifest declared no usable application packages"}
	}
	return results, nil
}

// readZipMember extracts a nested archive member's raw bytes by its
// in-bundle relative path; bundle manifests use backslashes, ZIP entries
// use forward slashes.
func readZipMember(zr *zip.ReadCloser, relativePath string) ([]byte, error) {
	want := strings.ToLower(strings.ReplaceAll(relativePath, `\`, "/"))
	for _, f := range zr.File {
		if strings.ToLower(f.Name) == want {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, &NotMsix{Reason: "bundle member not found: " + relativePath}
}

// inspectEmbeddedPackage re-opens a child package's raw bytes (held fully
// in memory, since bundle children are typically a few MB) as its own ZIP
// archive and extracts its AppxManifest.xml exactly like a top-level
// single-package inspection.
func inspectEmbeddedPackage(raw []byte) (*Result, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, &NotMsix{Reason: err.Error()}
	}
	for _, f := range zr.File {
		if strings.EqualFold(f.Name, "AppxManifest.xml") {
			rc, err := f.Open()
			if err != nil {
				return nil, &NotMsix{Reason: err.Error()}
			}
			return inspectSinglePackage(&zipFileAdapter{rc: rc})
		}
	}
	return nil, &NotMsix{Reason: "child package missing AppxManifest.xml"}
}

func inspectSinglePackage(src manifestSource) (*Result, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, &NotMsix{Reason: err.Error()}
	}
	defer rc.Close()

	m, err := decodeAppxManifest(rc)
	if err != nil {
		return nil, &NotMsix{Reason: "malformed AppxManifest.xml: " + err.Error()}
	}

	res := &Result{
		InstallerType:        installerTypeForSchema(m.XMLName.Space),
		Architecture:         archForProcessorArchitecture(m.Identity.ProcessorArchitecture),
		PackageFamilyName:    packageFamilyName(m.Identity.Name, m.Identity.Publisher),
		DisplayName:          m.Properties.DisplayName,
		PublisherDisplayName: m.Properties.PublisherDisplayName,
		Description:          m.Properties.Description,
	}
	res.Platform, res.MinimumOSVersion = deviceFamilies(m)
	return res, nil
}

// targetDeviceFamilyToPlatform maps the literal Name attribute of a
// TargetDeviceFamily element (always dotted, e.g. "Windows.Desktop") to
// the manifest model's Platform enum. Deliberate deviation: read literally,
// §4.E describes this as substituting "." with "_", but real winget
// manifests carry the dotted spelling verbatim, so this whitelist maps to
// it directly rather than deriving an "_"-joined form no consumer expects.
// Names outside this set are dropped silently rather than guessed at.
var targetDeviceFamilyToPlatform = map[string]manifest.Platform{
	"Windows.Desktop":     manifest.PlatformDesktop,
	"Windows.Universal":   manifest.PlatformUniversal,
	"Windows.Team":        manifest.PlatformTeam,
	"Windows.Holographic": manifest.PlatformHolographic,
	"Windows.IoT":         manifest.PlatformIoT,
}

func deviceFamilies(m *appxManifest) ([]manifest.Platform, string) {
	var platforms []manifest.Platform
	var maxVersion string
	for _, tdf := range m.Dependencies.TargetDeviceFamily {
		mapped, ok := targetDeviceFamilyToPlatform[tdf.Name]
		if !ok {
			continue
		}
		platforms = append(platforms, mapped)
		if versionGreater(tdf.MinVersion, maxVersion) {
			maxVersion = tdf.MinVersion
		}
	}
	return platforms, maxVersion
}

// versionGreater compares dotted MinVersion strings (e.g. "10.0.17763.0")
// numerically component-by-component. Each component compares by its
// leading digits; a component with no leading digit compares as 0.
func versionGreater(a, b string) bool {
	if b == "" {
		return a != ""
	}
	ap, bp := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(ap) || i < len(bp); i++ {
		var av, bv int
		if i < len(ap) {
			av = parseVersionComponent(ap[i])
		}
		if i < len(bp) {
			bv = parseVersionComponent(bp[i])
		}
		if av != bv {
			return av > bv
		}
	}
	return false
}

func parseVersionComponent(s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return n
		}
		n = n*10 + int(c-'0')
	}
	return n
}

var processorArchToArch = map[string]manifest.Architecture{
	"x86":     manifest.ArchX86,
	"x64":     manifest.ArchX64,
	"arm":     manifest.ArchArm,
	"arm64":   manifest.ArchArm64,
	"neutral": manifest.ArchNeutral,
}

func archForProcessorArchitecture(raw string) manifest.Architecture {
	if arch, ok := processorArchToArch[strings.ToLower(raw)]; ok {
		return arch
	}
	return manifest.ArchNeutral
}

// installerTypeForSchema distinguishes legacy APPX packages from MSIX by
// the manifest root element's XML namespace: the original 2010 Windows 8
// app-package schema is "appx", anything from the 2013 foundation schema
// onward (what MSIX is built on) is "msix".
func installerTypeForSchema(namespace string) manifest.InstallerType {
	if strings.Contains(namespace, "/2010/") {
		return manifest.InstallerAppx
	}
	return manifest.InstallerMsix
}
