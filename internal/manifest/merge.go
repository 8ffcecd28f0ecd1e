package manifest

// UpdateRequest carries everything ApplyUpdates needs beyond the existing
// tree and the freshly parsed installers.
type UpdateRequest struct {
	// NewInstallers are the freshly parsed records, in input-URL order.
	NewInstallers []Installer

	// MatchMap pairs NewInstallers[newIdx] with existing.Installer.Installers[existingIdx].
	// It must be total: every index of NewInstallers and of the existing
	// slice must appear exactly once (the Matcher guarantees this or fails).
	MatchMap map[int]int

	// PackageVersion is the version to propagate (§4.I, "package_version
	// propagates to version, installer, default-locale, and every
	// additional-locale").
	PackageVersion string

	// ReleaseDateText and ReleaseDateTimestamp carry the same release date
	// in the two surface forms §4.I requires the serializer to pick
	// between; ApplyUpdates stores both and leaves the choice to the
	// serializer ("never both" is a serialization-format constraint, not a
	// tree constraint).
	ReleaseDateText      string
	ReleaseDateTimestamp int64

	// ReplaceExistingVersion annotates the returned tree with the files of
	// the version being replaced, for the caller to delete. The merger
	// itself never touches the filesystem.
	ReplaceExistingVersion bool
	FilesToDelete          []string
}

// Result is the outcome of ApplyUpdates.
type Result struct {
	Tree *Tree

	// DeleteAnnotation lists the files of a replaced version, set only
	// when UpdateRequest.ReplaceExistingVersion was true.
	DeleteAnnotation []string
}

// ApplyUpdates merges freshly parsed installers into an existing manifest
// tree per the field-level policy of spec.md §4.I. It never mutates
// existing; it returns a new Tree value built from copies.
func ApplyUpdates(existing *Tree, req UpdateRequest) (*Result, error) {
	out := cloneTree(existing)

	for newIdx, existingIdx := range req.MatchMap {
		if newIdx < 0 || newIdx >= len(req.NewInstallers) {
			continue
		}
		if existingIdx < 0 || existingIdx >= len(out.Installer.Installers) {
			continue
		}
		mergeInstaller(&out.Installer.Installers[existingIdx], &req.NewInstallers[newIdx])
	}

	if req.PackageVersion != "" {
		out.Version.PackageVersion = req.PackageVersion
		out.Installer.PackageVersion = req.PackageVersion
		out.DefaultLocale.PackageVersion = req.PackageVersion
		for i := range out.AdditionalLocales {
			out.AdditionalLocales[i].PackageVersion = req.PackageVersion
		}
	}

	if req.ReleaseDateText != "" || req.ReleaseDateTimestamp != 0 {
		out.Installer.ReleaseDate = &ReleaseDate{
			Text:      req.ReleaseDateText,
			Timestamp: req.ReleaseDateTimestamp,
		}
	}

	res := &Result{Tree: out}
	if req.ReplaceExistingVersion {
		res.DeleteAnnotation = append([]string{}, req.FilesToDelete...)
	}
	return res, nil
}

// mergeInstaller applies the per-pair field policy: always-replace,
// replace-if-present, and preserve-unconditionally (everything else).
func mergeInstaller(existing *Installer, fresh *Installer) {
	// Always replace.
	existing.InstallerURL = fresh.InstallerURL
	existing.InstallerSHA256 = fresh.InstallerSHA256
	existing.SignatureSHA256 = fresh.SignatureSHA256
	existing.Architecture = fresh.Architecture

	// Replace-if-new-is-present, preserve otherwise.
	if fresh.ProductCode != "" {
		existing.ProductCode = fresh.ProductCode
	}
	if fresh.MinimumOSVersion != "" {
		existing.MinimumOSVersion = fresh.MinimumOSVersion
	}
	if fresh.PackageFamilyName != "" {
		existing.PackageFamilyName = fresh.PackageFamilyName
	}
	if len(fresh.NestedInstallerFiles) > 0 {
		existing.NestedInstallerFiles = fresh.NestedInstallerFiles
		existing.NestedInstallerType = fresh.NestedInstallerType
	}
	if len(fresh.Platform) > 0 {
		existing.Platform = fresh.Platform
	}

	// Everything else (locale, scope, switches, success codes, modes,
	// upgrade behavior, commands, protocols, file extensions,
	// capabilities, dependencies) is preserved unconditionally: do not
	// touch it here.
}

// SetIdentifier sets the package identifier on a freshly synthesized tree
// (the "new" path, §3.2 lifecycle) or rejects a change on an update path.
func SetIdentifier(t *Tree, id string, isUpdate bool) error {
	if isUpdate && t.Version.PackageIdentifier != "" && t.Version.PackageIdentifier != id {
		return &IdentityChangedError{Expected: t.Version.PackageIdentifier, Actual: id}
	}
	t.Version.PackageIdentifier = id
	t.Installer.PackageIdentifier = id
	t.DefaultLocale.PackageIdentifier = id
	for i := range t.AdditionalLocales {
		t.AdditionalLocales[i].PackageIdentifier = id
	}
	return nil
}

func cloneTree(t *Tree) *Tree {
	out := &Tree{
		Version:       t.Version,
		Installer:     t.Installer,
		DefaultLocale: t.DefaultLocale,
	}
	out.Installer.Installers = make([]Installer, len(t.Installer.Installers))
	copy(out.Installer.Installers, t.Installer.Installers)
	for i := range out.Installer.Installers {
		out.Installer.Installers[i].NestedInstallerFiles = append([]NestedInstallerFile{}, t.Installer.Installers[i].NestedInstallerFiles...)
		out.Installer.Installers[i].Platform = append([]Platform{}, t.Installer.Installers[i].Platform...)
	}
	out.AdditionalLocales = make([]AdditionalLocaleManifest, len(t.AdditionalLocales))
	copy(out.AdditionalLocales, t.AdditionalLocales)
	return out
}
