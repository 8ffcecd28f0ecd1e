package metadata

import "strings"

// ReleaseRef identifies one hosted release tag an installer URL was
// published under.
type ReleaseRef struct {
	Host  string
	Owner string
	Repo  string
	Tag   string
}

// knownHosts lists the hosting-service path shapes the core recognizes,
// all following the same `<host>/<owner>/<repo>/releases/download/<tag>/`
// convention GitHub Releases popularized.
var knownHosts = map[string]bool{
	"github.com": true,
}

// ParseReleaseURL extracts a ReleaseRef from an installer URL matching a
// known hosting-service releases-download layout, or reports ok=false for
// any URL that doesn't (spec.md §6.4).
func ParseReleaseURL(rawURL string) (ref ReleaseRef, ok bool) {
	rest, ok := cutScheme(rawURL)
	if !ok {
		return ReleaseRef{}, false
	}

	slash := strings.IndexByte(rest, '/')
	if slash < 0 {
		return ReleaseRef{}, false
	}
	host := rest[:slash]
	if !knownHosts[host] {
		return ReleaseRef{}, false
	}

	parts := strings.Split(strings.Trim(rest[slash+1:], "/"), "/")
	// owner / repo / "releases" / "download" / tag / asset...
	if len(parts) < 6 || parts[2] != "releases" || parts[3] != "download" {
		return ReleaseRef{}, false
	}
	return ReleaseRef{Host: host, Owner: parts[0], Repo: parts[1], Tag: parts[4]}, true
}

func cutScheme(rawURL string) (string, bool) {
	for _, scheme := range []string{"https://", "http://"} {
		if strings.HasPrefix(rawURL, scheme) {
			return strings.TrimPrefix(rawURL, scheme), true
		}
	}
	return "", false
}

// CommonReleaseRef returns the shared ReleaseRef if every URL belongs to a
// known hosting service and all resolve to the same (owner, repo, tag)
// triple, as spec.md §6.4 requires before enrichment may run at all.
func CommonReleaseRef(urls []string) (ReleaseRef, bool) {
	if len(urls) == 0 {
		return ReleaseRef{}, false
	}
	first, ok := ParseReleaseURL(urls[0])
	if !ok {
		return ReleaseRef{}, false
	}
	for _, u := range urls[1:] {
		ref, ok := ParseReleaseURL(u)
		if !ok || ref != first {
			return ReleaseRef{}, false
		}
	}
	return first, true
}
