package msixinspect

import (
	"encoding/xml"
	"io"
)

func decodeAppxManifest(r io.Reader) (*appxManifest, error) {
	var m appxManifest
	if err := xml.NewDecoder(r).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

func decodeBundleManifest(r io.Reader) (*appxBundleManifest, error) {
	var b appxBundleManifest
	if err := xml.NewDecoder(r).Decode(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

// manifestSource abstracts over a not-yet-opened *zip.File and an
// already-open stream, so inspectSinglePackage can be shared between the
// top-level single-package path (which opens AppxManifest.xml lazily) and
// the bundle-child path (which has already opened it to locate it inside
// an in-memory child archive).
type manifestSource interface {
	Open() (io.ReadCloser, error)
}

// zipFileAdapter adapts an already-open io.ReadCloser to manifestSource;
// Open returns the same stream since it cannot be reopened.
type zipFileAdapter struct {
	rc io.ReadCloser
}

func (z *zipFileAdapter) Open() (io.ReadCloser, error) { return z.rc, nil }
