package msixinspect

// NotMsix is returned by Inspect when the file is not a readable ZIP
// archive, carries neither a bundle manifest
// (AppxMetadata/AppxBundleManifest.xml) nor a single-package manifest
// (AppxManifest.xml), or has a manifest that cannot be read or decoded.
// Like peinspect.NotPE and
// msiinspect.NotMsi, this is a result value the orchestrator selects on.
type NotMsix struct {
	Reason string
}

func (e *NotMsix) Error() string { return "msixinspect: not an MSIX/APPX package: " + e.Reason }
