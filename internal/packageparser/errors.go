package packageparser

// NotRecognized is returned by Parse when none of the PE, MSIX/APPX, or
// MSI inspectors accepted the file.
type NotRecognized struct {
	Path string
}

func (e *NotRecognized) Error() string {
	return "packageparser: " + e.Path + " did not match any known installer format"
}
