package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// GitHubSource fetches repository metadata from the GitHub REST API, with
// an on-disk ETag cache so repeated enrichment passes over the same
// (owner, repo) cost one conditional request instead of a full fetch.
type GitHubSource struct {
	Token    string
	Client   *http.Client
	CacheDir string
}

// NewGitHubSource builds a GitHubSource reading GITHUB_TOKEN and caching
// under the user's standard cache directory, mirroring the teacher's
// GitHub release source.
func NewGitHubSource() *GitHubSource {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	return &GitHubSource{
		Token:    os.Getenv("GITHUB_TOKEN"),
		Client:   &http.Client{Timeout: 30 * time.Second},
		CacheDir: filepath.Join(cacheDir, "pkgsmith", "github"),
	}
}

type githubRepoResponse struct {
	Description     string `json:"description"`
	HomepageURL     string `json:"homepage"`
	HTMLURL         string `json:"html_url"`
	License         *struct{ SPDXID string `json:"spdx_id"` } `json:"license"`
	HasIssues       bool     `json:"has_issues"`
	HasWiki         bool     `json:"has_wiki"`
	Owner           struct{ HTMLURL string `json:"html_url"` } `json:"owner"`
	Topics          []string `json:"topics"`
}

type githubReleaseResponse struct {
	Body        string `json:"body"`
	HTMLURL     string `json:"html_url"`
	PublishedAt string `json:"published_at"`
}

type repoCache struct {
	ETag string              `json:"etag"`
	Repo *githubRepoResponse `json:"repo"`
}

func (s *GitHubSource) cacheFilePath(owner, repo string) string {
	return filepath.Join(s.CacheDir, fmt.Sprintf("%s_%s.json", owner, repo))
}

func (s *GitHubSource) loadCache(owner, repo string) *repoCache {
	data, err := os.ReadFile(s.cacheFilePath(owner, repo))
	if err != nil {
		return nil
	}
	var c repoCache
	if err := json.Unmarshal(data, &c); err != nil {
		return nil
	}
	return &c
}

func (s *GitHubSource) saveCache(owner, repo, etag string, r *githubRepoResponse) {
	if err := os.MkdirAll(s.CacheDir, 0o755); err != nil {
		return
	}
	data, err := json.Marshal(&repoCache{ETag: etag, Repo: r})
	if err != nil {
		return
	}
	_ = os.WriteFile(s.cacheFilePath(owner, repo), data, 0o644)
}

// FetchRepoMetadata implements Source.
func (s *GitHubSource) FetchRepoMetadata(ctx context.Context, owner, repo, tag string) (*RepoMetadata, error) {
	repoResp, err := s.fetchRepo(ctx, owner, repo)
	if err != nil {
		return nil, err
	}
	releaseResp, err := s.fetchRelease(ctx, owner, repo, tag)
	if err != nil {
		return nil, err
	}

	md := &RepoMetadata{
		ShortDescription: repoResp.Description,
		PackageURL:       repoResp.HTMLURL,
		PublisherURL:     repoResp.Owner.HTMLURL,
		Tags:             truncateTags(repoResp.Topics),
		ReleaseNotesURL:  releaseResp.HTMLURL,
		ReleaseDate:      releaseResp.PublishedAt,
	}
	if repoResp.License != nil {
		md.License = repoResp.License.SPDXID
	}
	if repoResp.HasIssues {
		md.PublisherSupportURL = fmt.Sprintf("https://github.com/%s/%s/issues", owner, repo)
	}
	if repoResp.HasWiki {
		md.DocumentationURL = fmt.Sprintf("https://github.com/%s/%s/wiki", owner, repo)
	}
	return md, nil
}

func (s *GitHubSource) fetchRepo(ctx context.Context, owner, repo string) (*githubRepoResponse, error) {
	url := fmt.Sprintf("https://api.github.com/repos/%s/%s", owner, repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	s.applyHeaders(req)

	cache := s.loadCache(owner, repo)
	if cache != nil && cache.ETag != "" {
		req.Header.Set("If-None-Match", cache.ETag)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("metadata: fetch repo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified && cache != nil {
		return cache.Repo, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metadata: github repo API returned status %d for %s/%s", resp.StatusCode, owner, repo)
	}

	var out githubRepoResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("metadata: decode repo response: %w", err)
	}
	s.saveCache(owner, repo, resp.Header.Get("ETag"), &out)
	return &out, nil
}

func (s *GitHubSource) fetchRelease(ctx context.Context, owner, repo, tag string) (*githubReleaseResponse, error) {
	url := fmt.Sprintf("https://api.github.com/repos/%s/%s/releases/tags/%s", owner, repo, tag)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	s.applyHeaders(req)

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("metadata: fetch release: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metadata: github release API returned status %d for %s/%s@%s", resp.StatusCode, owner, repo, tag)
	}

	var out githubReleaseResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("metadata: decode release response: %w", err)
	}
	return &out, nil
}

func (s *GitHubSource) applyHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}
}
