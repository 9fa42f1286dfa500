package versionsource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/flanksource/vx/internal/manifest"
)

// golangRelease mirrors the subset of go.dev/dl's JSON response vx needs;
// the endpoint also lists per-platform file entries, which aren't relevant
// here since the URL/checksum is built later from url_template, not from
// this response.
type golangRelease struct {
	Version string `json:"version"` // e.g. "go1.22.3"
	Stable  bool   `json:"stable"`
}

// GolangDLSource discovers versions from go.dev/dl's JSON endpoint, the
// canonical source for official Go toolchain releases (no GitHub releases
// exist for the Go distribution itself, unlike most other providers).
type GolangDLSource struct {
	client *http.Client
}

// NewGolangDLSource builds a GolangDLSource using http.DefaultClient.
func NewGolangDLSource() *GolangDLSource {
	return &GolangDLSource{client: http.DefaultClient}
}

func (s *GolangDLSource) Name() string { return "golang_dl" }

func (s *GolangDLSource) Discover(ctx context.Context, spec manifest.VersionSource, limit int) ([]string, error) {
	url := spec.URL
	if url == "" {
		url = "https://go.dev/dl/?mode=json&include=all"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building go.dev/dl request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: HTTP %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading go.dev/dl response: %w", err)
	}

	var releases []golangRelease
	if err := json.Unmarshal(body, &releases); err != nil {
		return nil, fmt.Errorf("parsing go.dev/dl response: %w", err)
	}

	versions := make([]string, 0, len(releases))
	for _, r := range releases {
		if !r.Stable {
			continue
		}
		versions = append(versions, r.Version)
	}
	return versions, nil
}
