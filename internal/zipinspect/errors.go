package zipinspect

// NotZip is returned by Inspect when the file is not a readable ZIP
// archive at all.
type NotZip struct {
	Reason string
}

func (e *NotZip) Error() string { return "zipinspect: not a ZIP archive: " + e.Reason }
