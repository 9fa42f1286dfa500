package versionsource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/flanksource/vx/internal/manifest"
)

// URLSource discovers versions by fetching a JSON endpoint and extracting a
// flat array of version strings, grounded on the predecessor's
// pkg/manager/url.URLManager.DiscoverVersions — trimmed to a JSON array of
// strings or of objects with a "version" or "tag_name" field, or an object
// whose "versions" field is such an array. The predecessor's versions_expr
// CEL extraction has no counterpart: version_expr is not applied anywhere.
type URLSource struct {
	client *http.Client
}

// NewURLSource builds a URLSource using http.DefaultClient.
func NewURLSource() *URLSource {
	return &URLSource{client: http.DefaultClient}
}

func (s *URLSource) Name() string { return "url" }

func (s *URLSource) Discover(ctx context.Context, spec manifest.VersionSource, limit int) ([]string, error) {
	if spec.URL == "" {
		return nil, fmt.Errorf("url version_source requires url")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, spec.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", spec.URL, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", spec.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: HTTP %d", spec.URL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", spec.URL, err)
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parsing JSON from %s: %w", spec.URL, err)
	}

	return extractVersionStrings(raw), nil
}

func extractVersionStrings(raw any) []string {
	switch v := raw.(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			switch entry := item.(type) {
			case string:
				out = append(out, entry)
			case map[string]any:
				if s, ok := entry["version"].(string); ok {
					out = append(out, s)
				} else if s, ok := entry["tag_name"].(string); ok {
					out = append(out, s)
				}
			}
		}
		return out
	case map[string]any:
		if versions, ok := v["versions"].([]any); ok {
			return extractVersionStrings(versions)
		}
	}
	return nil
}
