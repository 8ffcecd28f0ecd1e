package manifest

import "sort"

// Hoistable fields (§I5, GLOSSARY "Hoistable field"): locale, platform,
// minimum OS version, package family name. A field hoists to the
// Installer-manifest-level default when every record that specifies it
// agrees on the same value; the per-record field is then cleared.

// HoistLocale hoists InstallerLocale to im.InstallerLocale if every set
// per-record value agrees, clearing the per-record field on success.
func HoistLocale(im *InstallerManifest) {
	v, ok := agreeingString(func(i *Installer) string { return i.InstallerLocale }, im.Installers)
	if !ok {
		return
	}
	im.InstallerLocale = v
	for i := range im.Installers {
		im.Installers[i].InstallerLocale = ""
	}
}

// HoistMinimumOSVersion hoists MinimumOSVersion the same way.
func HoistMinimumOSVersion(im *InstallerManifest) {
	v, ok := agreeingString(func(i *Installer) string { return i.MinimumOSVersion }, im.Installers)
	if !ok {
		return
	}
	im.MinimumOSVersion = v
	for i := range im.Installers {
		im.Installers[i].MinimumOSVersion = ""
	}
}

// HoistPackageFamilyName hoists PackageFamilyName the same way.
func HoistPackageFamilyName(im *InstallerManifest) {
	v, ok := agreeingString(func(i *Installer) string { return i.PackageFamilyName }, im.Installers)
	if !ok {
		return
	}
	im.PackageFamilyName = v
	for i := range im.Installers {
		im.Installers[i].PackageFamilyName = ""
	}
}

// HoistPlatform hoists Platform (a set) when every specified record agrees
// on the same set of platforms.
func HoistPlatform(im *InstallerManifest) {
	var agreed []Platform
	first := true
	for i := range im.Installers {
		p := im.Installers[i].Platform
		if len(p) == 0 {
			continue
		}
		if first {
			agreed = sortedPlatforms(p)
			first = false
			continue
		}
		if !equalPlatforms(agreed, sortedPlatforms(p)) {
			return
		}
	}
	if first {
		return // nobody specified it
	}
	im.Platform = agreed
	for i := range im.Installers {
		im.Installers[i].Platform = nil
	}
}

// HoistAll runs every hoist rule. Order does not matter: each rule only
// looks at its own field.
func HoistAll(im *InstallerManifest) {
	HoistLocale(im)
	HoistMinimumOSVersion(im)
	HoistPackageFamilyName(im)
	HoistPlatform(im)
}

func agreeingString(get func(*Installer) string, installers []Installer) (string, bool) {
	var v string
	first := true
	for i := range installers {
		s := get(&installers[i])
		if s == "" {
			continue
		}
		if first {
			v = s
			first = false
			continue
		}
		if s != v {
			return "", false
		}
	}
	if first {
		return "", false
	}
	return v, true
}

func sortedPlatforms(p []Platform) []Platform {
	out := make([]Platform, len(p))
	copy(out, p)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func equalPlatforms(a, b []Platform) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// EffectivePlatform returns the per-record platform if set, else the
// installer-manifest default.
func EffectivePlatform(im *InstallerManifest, ins *Installer) []Platform {
	if len(ins.Platform) > 0 {
		return ins.Platform
	}
	return im.Platform
}

// EffectiveLocale returns the per-record locale if set, else the default.
func EffectiveLocale(im *InstallerManifest, ins *Installer) string {
	if ins.InstallerLocale != "" {
		return ins.InstallerLocale
	}
	return im.InstallerLocale
}

// EffectiveMinimumOSVersion returns the per-record value if set, else the default.
func EffectiveMinimumOSVersion(im *InstallerManifest, ins *Installer) string {
	if ins.MinimumOSVersion != "" {
		return ins.MinimumOSVersion
	}
	return im.MinimumOSVersion
}

// EffectivePackageFamilyName returns the per-record value if set, else the default.
func EffectivePackageFamilyName(im *InstallerManifest, ins *Installer) string {
	if ins.PackageFamilyName != "" {
		return ins.PackageFamilyName
	}
	return im.PackageFamilyName
}
