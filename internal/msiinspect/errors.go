package msiinspect

// NotMsi is returned by Inspect when the file is not a valid OLE compound
// file, or is one but carries none of the storages an MSI database needs.
// Like peinspect.NotPE, this is a result value the orchestrator selects on
// explicitly rather than an exception-style control transfer.
type NotMsi struct {
	Reason string
}

func (e *NotMsi) Error() string { return "msiinspect: not an MSI database: " + e.Reason }
