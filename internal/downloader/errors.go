package downloader

import "fmt"

// NetworkError is returned when a download fails with a non-success HTTP
// status after redirects are exhausted (spec.md §4.A, §7).
type NetworkError struct {
	Status int
	URL    string
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("downloader: %s: non-success status %d", e.URL, e.Status)
}

// UnsupportedScheme is returned when a URL uses a scheme other than https,
// unless the caller has set Options.AllowUnsecure.
type UnsupportedScheme struct {
	Scheme string
	URL    string
}

func (e *UnsupportedScheme) Error() string {
	return fmt.Sprintf("downloader: %s: unsupported scheme %q", e.URL, e.Scheme)
}

// DownloadTooLarge is returned when the response declares a content length
// greater than the caller's MaxSize, before any body bytes are transferred.
type DownloadTooLarge struct {
	MaxSize int64
	URL     string
}

func (e *DownloadTooLarge) Error() string {
	return fmt.Sprintf("downloader: %s: content length exceeds max size %d", e.URL, e.MaxSize)
}

// tooManyRedirects describes an exceeded redirect cap. Download does not
// return it: when the cap is exceeded the redirect loop returns a
// NetworkError carrying the last redirect status directly.
type tooManyRedirects struct {
	URL string
}

func (e *tooManyRedirects) Error() string {
	return fmt.Sprintf("downloader: %s: exceeded redirect cap", e.URL)
}
