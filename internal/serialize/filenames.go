package serialize

import (
	"fmt"
	"path"
	"strings"
)

// Ext is the file extension EncodeTo's format implies.
func (f Format) Ext() string {
	if f == FormatStructural {
		return ".json"
	}
	return ".yaml"
}

// InstallerFilename returns the installer manifest's file name (§4.J).
func InstallerFilename(packageID string, f Format) string {
	return fmt.Sprintf("%s.installer%s", packageID, f.Ext())
}

// VersionFilename returns the version manifest's file name.
func VersionFilename(packageID string, f Format) string {
	return fmt.Sprintf("%s%s", packageID, f.Ext())
}

// LocaleFilename returns a default- or additional-locale manifest's file
// name; both variants share the same pattern.
func LocaleFilename(packageID, locale string, f Format) string {
	return fmt.Sprintf("%s.locale.%s%s", packageID, locale, f.Ext())
}

// SingletonFilename returns the singleton input form's file name.
func SingletonFilename(packageID string, f Format) string {
	return fmt.Sprintf("%s%s", packageID, f.Ext())
}

// Directory returns the manifests/<first-letter-lower>/<publisher>/<name>/<version>/
// path for a package identifier, splitting on `.` into additional segments
// after the first token (§6.2).
func Directory(packageID, version string) string {
	tokens := strings.Split(packageID, ".")
	if len(tokens) == 0 || tokens[0] == "" {
		return ""
	}
	firstLetter := strings.ToLower(tokens[0][:1])

	segments := append([]string{"manifests", firstLetter}, tokens...)
	segments = append(segments, version)
	return path.Join(segments...)
}
