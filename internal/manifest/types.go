// Package manifest defines the typed winget manifest tree — the version,
// installer, default-locale, additional-locale and singleton documents that
// describe one package version — and the merge policy used to fold freshly
// parsed installer metadata back into an existing tree.
package manifest

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Architecture is the CPU target of an installer's primary payload.
type Architecture string

const (
	ArchX86     Architecture = "x86"
	ArchX64     Architecture = "x64"
	ArchArm     Architecture = "arm"
	ArchArm64   Architecture = "arm64"
	ArchNeutral Architecture = "neutral"
)

// MarshalYAML renders enum scalars single-quoted in the flow-style output
// (spec.md §4.J: "the root enumeration uses a single-quoted style").
func (a Architecture) MarshalYAML() (interface{}, error) { return quotedScalar(string(a)) }

// InstallerType is the software-distribution format family of an artifact.
type InstallerType string

const (
	InstallerExe      InstallerType = "exe"
	InstallerMsi      InstallerType = "msi"
	InstallerMsix     InstallerType = "msix"
	InstallerAppx     InstallerType = "appx"
	InstallerWix      InstallerType = "wix"
	InstallerBurn     InstallerType = "burn"
	InstallerInno     InstallerType = "inno"
	InstallerNullsoft InstallerType = "nullsoft"
	InstallerPortable InstallerType = "portable"
	InstallerZip      InstallerType = "zip"
)

func (t InstallerType) MarshalYAML() (interface{}, error) { return quotedScalar(string(t)) }

// Scope is the installation scope of an installer.
type Scope string

const (
	ScopeUser    Scope = "user"
	ScopeMachine Scope = "machine"
)

func (s Scope) MarshalYAML() (interface{}, error) { return quotedScalar(string(s)) }

// Platform is a supported Windows device family, as declared in an MSIX
// package's TargetDeviceFamily list.
type Platform string

const (
	PlatformDesktop     Platform = "Windows.Desktop"
	PlatformUniversal   Platform = "Windows.Universal"
	PlatformTeam        Platform = "Windows.Team"
	PlatformHolographic Platform = "Windows.Holographic"
	PlatformIoT         Platform = "Windows.IoT"
)

func (p Platform) MarshalYAML() (interface{}, error) { return quotedScalar(string(p)) }

// quotedScalar is shared by every enum type's MarshalYAML: every value,
// the empty one included, marshals as a single-quoted string node. An
// empty field tagged "omitempty" is still dropped (yaml.v3 checks the zero
// value of the Go type before MarshalYAML runs), so an empty value is only
// emitted, as '', for required enum fields like Installer.Architecture
// that have no omitempty tag.
func quotedScalar(v string) (interface{}, error) {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v, Style: yaml.SingleQuotedStyle}, nil
}

// ExeCompatibilityClass, MsiCompatibilityClass and MsixCompatibilityClass
// group installer types the Matcher (§4.H) treats as interchangeable when an
// exact type match produces no candidates.
var (
	ExeCompatibilityClass = map[InstallerType]bool{
		InstallerExe: true, InstallerInno: true, InstallerNullsoft: true,
		InstallerBurn: true, InstallerPortable: true,
	}
	MsiCompatibilityClass = map[InstallerType]bool{
		InstallerMsi: true, InstallerWix: true,
	}
	MsixCompatibilityClass = map[InstallerType]bool{
		InstallerMsix: true, InstallerAppx: true,
	}
)

// CompatibilityClass returns the set containing t, or nil if t belongs to no
// defined compatibility class.
func CompatibilityClass(t InstallerType) map[InstallerType]bool {
	switch {
	case ExeCompatibilityClass[t]:
		return ExeCompatibilityClass
	case MsiCompatibilityClass[t]:
		return MsiCompatibilityClass
	case MsixCompatibilityClass[t]:
		return MsixCompatibilityClass
	default:
		return nil
	}
}

// NestedInstallerFile is one file nominated inside a ZIP carrier (§3.1).
type NestedInstallerFile struct {
	RelativePath         string `yaml:"RelativeFilePath" json:"RelativeFilePath"`
	PortableCommandAlias string `yaml:"PortableCommandAlias,omitempty" json:"PortableCommandAlias,omitempty"`
}

// Installer is the matching and merge unit described in spec.md §3.1.
//
// Fields use plain zero values throughout: the merge policy (§4.I) treats
// an empty value as not present, so "unset" and "explicitly empty" are not
// told apart.
type Installer struct {
	InstallerURL    string `yaml:"InstallerUrl" json:"InstallerUrl"`
	InstallerSHA256 string `yaml:"InstallerSha256" json:"InstallerSha256"`
	SignatureSHA256 string `yaml:"SignatureSha256,omitempty" json:"SignatureSha256,omitempty"`

	Architecture  Architecture  `yaml:"Architecture" json:"Architecture"`
	InstallerType InstallerType `yaml:"InstallerType,omitempty" json:"InstallerType,omitempty"`

	NestedInstallerType  InstallerType         `yaml:"NestedInstallerType,omitempty" json:"NestedInstallerType,omitempty"`
	NestedInstallerFiles []NestedInstallerFile `yaml:"NestedInstallerFiles,omitempty" json:"NestedInstallerFiles,omitempty"`

	Scope           Scope  `yaml:"Scope,omitempty" json:"Scope,omitempty"`
	InstallerLocale string `yaml:"InstallerLocale,omitempty" json:"InstallerLocale,omitempty"`

	ProductCode string `yaml:"ProductCode,omitempty" json:"ProductCode,omitempty"`

	PackageFamilyName string     `yaml:"PackageFamilyName,omitempty" json:"PackageFamilyName,omitempty"`
	Platform          []Platform `yaml:"Platform,omitempty" json:"Platform,omitempty"`
	MinimumOSVersion  string     `yaml:"MinimumOSVersion,omitempty" json:"MinimumOSVersion,omitempty"`

	UpgradeBehavior        string            `yaml:"UpgradeBehavior,omitempty" json:"UpgradeBehavior,omitempty"`
	InstallModes           []string          `yaml:"InstallModes,omitempty" json:"InstallModes,omitempty"`
	InstallerSwitches      map[string]string `yaml:"InstallerSwitches,omitempty" json:"InstallerSwitches,omitempty"`
	InstallerSuccessCodes  []int             `yaml:"InstallerSuccessCodes,omitempty" json:"InstallerSuccessCodes,omitempty"`
	Commands               []string          `yaml:"Commands,omitempty" json:"Commands,omitempty"`
	Protocols              []string          `yaml:"Protocols,omitempty" json:"Protocols,omitempty"`
	FileExtensions         []string          `yaml:"FileExtensions,omitempty" json:"FileExtensions,omitempty"`
	Capabilities           []string          `yaml:"Capabilities,omitempty" json:"Capabilities,omitempty"`
	RestrictedCapabilities []string          `yaml:"RestrictedCapabilities,omitempty" json:"RestrictedCapabilities,omitempty"`
	Dependencies           *Dependencies     `yaml:"Dependencies,omitempty" json:"Dependencies,omitempty"`

	// DisplayVersion is a per-installer display version distinct from the
	// package version (§6.1 per-URL override suffix).
	DisplayVersion string `yaml:"DisplayVersion,omitempty" json:"DisplayVersion,omitempty"`

	// MultipleNestedInstallerArchitectures flags a zip-carrier record whose
	// nested files disagree on architecture (§4.F); not a failure, but the
	// Matcher treats the record as architecture-indeterminate. Not part of
	// the wire format: the Matcher and Merger read it directly off the
	// in-memory record.
	MultipleNestedInstallerArchitectures bool `yaml:"-" json:"-"`
}

// Dependencies is a pass-through field, preserved verbatim across updates.
type Dependencies struct {
	WindowsFeatures      []string            `yaml:"WindowsFeatures,omitempty" json:"WindowsFeatures,omitempty"`
	WindowsLibraries     []string            `yaml:"WindowsLibraries,omitempty" json:"WindowsLibraries,omitempty"`
	PackageDependencies  []PackageDependency `yaml:"PackageDependencies,omitempty" json:"PackageDependencies,omitempty"`
	ExternalDependencies []string            `yaml:"ExternalDependencies,omitempty" json:"ExternalDependencies,omitempty"`
}

// PackageDependency references another winget package by identifier.
type PackageDependency struct {
	PackageIdentifier string `yaml:"PackageIdentifier" json:"PackageIdentifier"`
	MinimumVersion    string `yaml:"MinimumVersion,omitempty" json:"MinimumVersion,omitempty"`
}

// ReleaseDate carries the same release date in the two surface forms §4.I
// requires the serializer to pick between — a date string for flow-style
// YAML, a Unix timestamp for structural JSON — never emitting both.
type ReleaseDate struct {
	Text      string
	Timestamp int64
}

func (d *ReleaseDate) MarshalYAML() (interface{}, error) { return d.Text, nil }

func (d *ReleaseDate) UnmarshalYAML(value *yaml.Node) error {
	return value.Decode(&d.Text)
}

func (d *ReleaseDate) MarshalJSON() ([]byte, error) {
	if d.Timestamp != 0 {
		return json.Marshal(d.Timestamp)
	}
	return json.Marshal(d.Text)
}

func (d *ReleaseDate) UnmarshalJSON(data []byte) error {
	var ts int64
	if err := json.Unmarshal(data, &ts); err == nil {
		d.Timestamp = ts
		return nil
	}
	return json.Unmarshal(data, &d.Text)
}

// Common carries the four fields shared by every manifest variant (§3.2).
type Common struct {
	PackageIdentifier string `yaml:"PackageIdentifier" json:"PackageIdentifier"`
	PackageVersion    string `yaml:"PackageVersion" json:"PackageVersion"`
	ManifestType      string `yaml:"ManifestType" json:"ManifestType"`
	ManifestVersion   string `yaml:"ManifestVersion" json:"ManifestVersion"`
}

// VersionManifest points to the default locale and the rest of the set.
type VersionManifest struct {
	Common        `yaml:",inline"`
	DefaultLocale string `yaml:"DefaultLocale" json:"DefaultLocale"`
}

// InstallerManifest carries the ordered Installer records plus the
// locale-neutral defaults that may be hoisted up from them (§I5).
type InstallerManifest struct {
	Common `yaml:",inline"`

	// InstallerType is the manifest-level default installer type (§4.H):
	// an Installer record with no type of its own falls back to this one
	// during matching; the invariant checks read only the record's own
	// type. It is not a hoistable field (§I5's hoist set is
	// locale/platform/minimum-OS/package-family-name only), and nothing in
	// this module derives it from the records: it is carried as read from
	// an existing manifest.
	InstallerType InstallerType `yaml:"InstallerType,omitempty" json:"InstallerType,omitempty"`

	InstallerLocale   string     `yaml:"InstallerLocale,omitempty" json:"InstallerLocale,omitempty"`
	Platform          []Platform `yaml:"Platform,omitempty" json:"Platform,omitempty"`
	MinimumOSVersion  string     `yaml:"MinimumOSVersion,omitempty" json:"MinimumOSVersion,omitempty"`
	PackageFamilyName string     `yaml:"PackageFamilyName,omitempty" json:"PackageFamilyName,omitempty"`

	UpgradeBehavior string `yaml:"UpgradeBehavior,omitempty" json:"UpgradeBehavior,omitempty"`

	Installers []Installer `yaml:"Installers" json:"Installers"`

	ReleaseDate *ReleaseDate `yaml:"ReleaseDate,omitempty" json:"ReleaseDate,omitempty"`
}

// DefaultLocaleManifest carries the mandatory localized fields.
type DefaultLocaleManifest struct {
	Common `yaml:",inline"`

	PackageLocale    string `yaml:"PackageLocale" json:"PackageLocale"`
	Publisher        string `yaml:"Publisher" json:"Publisher"`
	PackageName      string `yaml:"PackageName" json:"PackageName"`
	License          string `yaml:"License" json:"License"`
	ShortDescription string `yaml:"ShortDescription" json:"ShortDescription"`

	PublisherURL        string   `yaml:"PublisherUrl,omitempty" json:"PublisherUrl,omitempty"`
	PublisherSupportURL string   `yaml:"PublisherSupportUrl,omitempty" json:"PublisherSupportUrl,omitempty"`
	PackageURL          string   `yaml:"PackageUrl,omitempty" json:"PackageUrl,omitempty"`
	LicenseURL          string   `yaml:"LicenseUrl,omitempty" json:"LicenseUrl,omitempty"`
	Description         string   `yaml:"Description,omitempty" json:"Description,omitempty"`
	Moniker             string   `yaml:"Moniker,omitempty" json:"Moniker,omitempty"`
	Tags                []string `yaml:"Tags,omitempty" json:"Tags,omitempty"`
	ReleaseNotes        string   `yaml:"ReleaseNotes,omitempty" json:"ReleaseNotes,omitempty"`
	ReleaseNotesURL     string   `yaml:"ReleaseNotesUrl,omitempty" json:"ReleaseNotesUrl,omitempty"`
	ReleaseDate         string   `yaml:"ReleaseDate,omitempty" json:"ReleaseDate,omitempty"`
	PrivacyURL          string   `yaml:"PrivacyUrl,omitempty" json:"PrivacyUrl,omitempty"`
	DocumentationURL    string   `yaml:"DocumentationUrl,omitempty" json:"DocumentationUrl,omitempty"`
}

// AdditionalLocaleManifest is a secondary localization of a package.
type AdditionalLocaleManifest struct {
	Common `yaml:",inline"`

	PackageLocale string `yaml:"PackageLocale" json:"PackageLocale"`

	Publisher           string   `yaml:"Publisher,omitempty" json:"Publisher,omitempty"`
	PackageName         string   `yaml:"PackageName,omitempty" json:"PackageName,omitempty"`
	License             string   `yaml:"License,omitempty" json:"License,omitempty"`
	ShortDescription    string   `yaml:"ShortDescription,omitempty" json:"ShortDescription,omitempty"`
	PublisherURL        string   `yaml:"PublisherUrl,omitempty" json:"PublisherUrl,omitempty"`
	PublisherSupportURL string   `yaml:"PublisherSupportUrl,omitempty" json:"PublisherSupportUrl,omitempty"`
	PackageURL          string   `yaml:"PackageUrl,omitempty" json:"PackageUrl,omitempty"`
	LicenseURL          string   `yaml:"LicenseUrl,omitempty" json:"LicenseUrl,omitempty"`
	Description         string   `yaml:"Description,omitempty" json:"Description,omitempty"`
	Tags                []string `yaml:"Tags,omitempty" json:"Tags,omitempty"`
	ReleaseNotes        string   `yaml:"ReleaseNotes,omitempty" json:"ReleaseNotes,omitempty"`
	ReleaseNotesURL     string   `yaml:"ReleaseNotesUrl,omitempty" json:"ReleaseNotesUrl,omitempty"`
}

// Singleton is the union form accepted only as an input format (§3.2); the
// engine always emits the split form on output.
type Singleton struct {
	Common `yaml:",inline"`

	PackageLocale    string `yaml:"PackageLocale" json:"PackageLocale"`
	Publisher        string `yaml:"Publisher" json:"Publisher"`
	PackageName      string `yaml:"PackageName" json:"PackageName"`
	License          string `yaml:"License" json:"License"`
	ShortDescription string `yaml:"ShortDescription" json:"ShortDescription"`

	PublisherURL        string   `yaml:"PublisherUrl,omitempty" json:"PublisherUrl,omitempty"`
	PublisherSupportURL string   `yaml:"PublisherSupportUrl,omitempty" json:"PublisherSupportUrl,omitempty"`
	PackageURL          string   `yaml:"PackageUrl,omitempty" json:"PackageUrl,omitempty"`
	LicenseURL          string   `yaml:"LicenseUrl,omitempty" json:"LicenseUrl,omitempty"`
	Description         string   `yaml:"Description,omitempty" json:"Description,omitempty"`
	Tags                []string `yaml:"Tags,omitempty" json:"Tags,omitempty"`
	ReleaseNotes        string       `yaml:"ReleaseNotes,omitempty" json:"ReleaseNotes,omitempty"`
	ReleaseNotesURL     string       `yaml:"ReleaseNotesUrl,omitempty" json:"ReleaseNotesUrl,omitempty"`
	ReleaseDate         *ReleaseDate `yaml:"ReleaseDate,omitempty" json:"ReleaseDate,omitempty"`

	Installers []Installer `yaml:"Installers" json:"Installers"`
}

// Tree is the in-memory, parsed/synthesized representation of a full
// manifest set for one package version (§3.2 lifecycle). It owns its
// Installer records; they never alias another Tree's records.
type Tree struct {
	Version           VersionManifest
	Installer         InstallerManifest
	DefaultLocale     DefaultLocaleManifest
	AdditionalLocales []AdditionalLocaleManifest
}

// PackageIdentifier returns the tree's canonical-case package identifier,
// as recorded on the version manifest (I1).
func (t *Tree) PackageIdentifier() string {
	return t.Version.PackageIdentifier
}
