// Package downloader fetches installer binaries into a content cache,
// enforcing a redirect cap and a size cap before transferring bodies
// (spec.md §4.A). It is the engine's only network-I/O component and its
// only cooperative suspension point (§5) — everything downstream is
// blocking file I/O.
package downloader

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxRedirectHops is the hard cap on redirect hops (§4.A): a third redirect
// response is treated as failure.
const maxRedirectHops = 2

// Options configures a single Download call.
type Options struct {
	// MaxSize, if non-zero, rejects downloads whose declared (or observed)
	// content length exceeds it.
	MaxSize int64

	// AllowUnsecure permits http (and ftp) URLs; by default only https is
	// accepted.
	AllowUnsecure bool

	// CacheDir is the directory downloaded files are saved into. Created
	// if missing.
	CacheDir string

	// Transport overrides the HTTP transport used for the request,
	// letting tests inject a stub (REDESIGN FLAGS: no module-wide static
	// HTTP client).
	Transport http.RoundTripper
}

func (o Options) transport() http.RoundTripper {
	if o.Transport != nil {
		return o.Transport
	}
	return &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
}

// Download fetches url into opts.CacheDir and returns the local path of
// the saved file. It honors ctx cancellation at every read and removes any
// partially written file before returning an error.
func Download(ctx context.Context, rawURL string, opts Options) (string, error) {
	if err := checkScheme(rawURL, opts.AllowUnsecure); err != nil {
		return "", err
	}

	client := &http.Client{
		Transport: opts.transport(),
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	currentURL := rawURL
	var resp *http.Response
	for hops := 0; ; {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, currentURL, nil)
		if err != nil {
			return "", err
		}
		resp, err = client.Do(req)
		if err != nil {
			return "", err
		}
		if !isRedirect(resp.StatusCode) {
			break
		}
		loc := resp.Header.Get("Location")
		resp.Body.Close()
		if hops >= maxRedirectHops {
			return "", &NetworkError{Status: resp.StatusCode, URL: rawURL}
		}
		next, err := resolveLocation(currentURL, loc)
		if err != nil {
			return "", err
		}
		currentURL = next
		hops++
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &NetworkError{Status: resp.StatusCode, URL: rawURL}
	}

	if opts.MaxSize > 0 && resp.ContentLength > opts.MaxSize {
		return "", &DownloadTooLarge{MaxSize: opts.MaxSize, URL: rawURL}
	}

	if err := os.MkdirAll(opts.CacheDir, 0o755); err != nil {
		return "", fmt.Errorf("downloader: creating cache dir: %w", err)
	}

	name := chooseFilename(resp, rawURL, currentURL)
	dest := uniquePath(opts.CacheDir, name)

	if err := stream(ctx, resp.Body, dest, opts.MaxSize); err != nil {
		os.Remove(dest)
		return "", err
	}

	return dest, nil
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	default:
		return false
	}
}

func resolveLocation(base, loc string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	locURL, err := url.Parse(loc)
	if err != nil {
		return "", err
	}
	return baseURL.ResolveReference(locURL).String(), nil
}

func checkScheme(rawURL string, allowUnsecure bool) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme == "https" {
		return nil
	}
	if allowUnsecure && (scheme == "http" || scheme == "ftp") {
		return nil
	}
	return &UnsupportedScheme{Scheme: scheme, URL: rawURL}
}

// stream copies src to dest, honoring ctx cancellation at every read and
// enforcing opts.MaxSize against the bytes actually observed (in case the
// server lied about Content-Length).
func stream(ctx context.Context, src io.Reader, dest string, maxSize int64) error {
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	buf := make([]byte, 64*1024)
	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, rerr := src.Read(buf)
		if n > 0 {
			total += int64(n)
			if maxSize > 0 && total > maxSize {
				return &DownloadTooLarge{MaxSize: maxSize}
			}
			if _, werr := out.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return rerr
		}
	}
}

// chooseFilename implements the four-step priority of §4.A.
func chooseFilename(resp *http.Response, originalURL, finalURL string) string {
	if name := contentDispositionFilename(resp.Header.Get("Content-Disposition")); name != "" {
		return name
	}
	if name := pathTail(originalURL); name != "" {
		return name
	}
	if name := pathTail(finalURL); name != "" {
		return name
	}
	return uuid.NewString()
}

func contentDispositionFilename(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	name := params["filename"]
	return strings.Trim(name, `"'`)
}

func pathTail(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	tail := path.Base(u.Path)
	if tail == "" || tail == "." || tail == "/" {
		return ""
	}
	return tail
}

// uniquePath implements the cache-dir collision policy: "<stem> (N).<ext>"
// where N counts existing files sharing <stem>. Content hashes are never
// consulted for deduplication.
func uniquePath(dir, name string) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	candidate := filepath.Join(dir, name)
	if _, err := os.Stat(candidate); os.IsNotExist(err) {
		return candidate
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return candidate
	}
	count := 0
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), stem) {
			count++
		}
	}
	return filepath.Join(dir, stem+" ("+strconv.Itoa(count)+")"+ext)
}
