package manifest

import (
	"fmt"
	"regexp"
	"strings"
)

// packageIdentifierPattern implements invariant I6.
var packageIdentifierPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9.\-]{0,127}$`)

// ValidIdentifier reports whether id satisfies I6: it matches the
// identifier pattern and contains at least one dot.
func ValidIdentifier(id string) bool {
	return packageIdentifierPattern.MatchString(id) && strings.Contains(id, ".")
}

// CheckInvariants verifies I1, I3, I4 and I6 (plus the zip/nested-installer
// pairing) against a fully built Tree and returns the first violation found,
// or nil. I2 and I5 are not checked here.
func CheckInvariants(t *Tree) error {
	id := t.Version.PackageIdentifier
	if !ValidIdentifier(id) {
		return fmt.Errorf("manifest: package identifier %q violates I6", id)
	}

	allIDs := []string{t.Installer.PackageIdentifier, t.DefaultLocale.PackageIdentifier}
	for _, a := range t.AdditionalLocales {
		allIDs = append(allIDs, a.PackageIdentifier)
	}
	for _, other := range allIDs {
		if !strings.EqualFold(other, id) {
			return fmt.Errorf("manifest: package identifier mismatch across tree: %q vs %q (I1)", id, other)
		}
	}

	seen := map[string]bool{strings.ToLower(t.DefaultLocale.PackageLocale): true}
	for _, a := range t.AdditionalLocales {
		key := strings.ToLower(a.PackageLocale)
		if seen[key] {
			return fmt.Errorf("manifest: duplicate locale %q across additional/default locales (I3)", a.PackageLocale)
		}
		seen[key] = true
	}

	for i := range t.Installer.Installers {
		if err := checkInstallerInvariants(&t.Installer.Installers[i]); err != nil {
			return err
		}
	}

	return nil
}

// hexSHA256Pattern matches 64 uppercase hex characters, no separators.
var hexSHA256Pattern = regexp.MustCompile(`^[0-9A-F]{64}$`)

func checkInstallerInvariants(ins *Installer) error {
	if ins.InstallerSHA256 != "" && !hexSHA256Pattern.MatchString(ins.InstallerSHA256) {
		return fmt.Errorf("manifest: installer_sha256 %q is not uppercase hex (I4)", ins.InstallerSHA256)
	}

	hasSig := ins.SignatureSHA256 != ""
	isMsix := ins.InstallerType == InstallerMsix || ins.InstallerType == InstallerAppx
	if hasSig && !hexSHA256Pattern.MatchString(ins.SignatureSHA256) {
		return fmt.Errorf("manifest: signature_sha256 %q is not uppercase hex (I4)", ins.SignatureSHA256)
	}
	if hasSig != isMsix {
		return fmt.Errorf("manifest: signature_sha256 presence (%v) must match installer_type=%s being msix/appx (I4)", hasSig, ins.InstallerType)
	}

	if ins.InstallerType == InstallerZip {
		if len(ins.NestedInstallerFiles) == 0 {
			return fmt.Errorf("manifest: zip installer requires nested_installer_files")
		}
	} else if len(ins.NestedInstallerFiles) > 0 || ins.NestedInstallerType != "" {
		return fmt.Errorf("manifest: nested_installer_type/files only valid when installer_type=zip")
	}

	return nil
}
