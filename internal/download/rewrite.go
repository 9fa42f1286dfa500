package download

import (
	"net/url"
	"strings"
)

// RewriteConfig maps an upstream host to a CDN mirror host, optionally
// restricted to a path prefix. No equivalent exists in the predecessor; grounded
// on its utils.ShortenURL/URL-manipulation idiom of treating URLs as plain
// strings rather than parsing a full net/url.URL for simple substitutions.
type RewriteConfig struct {
	FromHost   string
	ToHost     string
	PathPrefix string
}

// Rewrite rewrites rawURL's host to cfg.ToHost when it matches cfg.FromHost
// (and, if set, cfg.PathPrefix), leaving rawURL unchanged otherwise. Pure
// function: no I/O, safe to call speculatively.
func Rewrite(rawURL string, cfg RewriteConfig) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host != cfg.FromHost {
		return rawURL
	}
	if cfg.PathPrefix != "" && !strings.HasPrefix(u.Path, cfg.PathPrefix) {
		return rawURL
	}
	u.Host = cfg.ToHost
	return u.String()
}

// ChainRewrites composes multiple RewriteConfigs, applying the first one
// whose FromHost matches.
func ChainRewrites(rawURL string, configs []RewriteConfig) string {
	for _, cfg := range configs {
		rewritten := Rewrite(rawURL, cfg)
		if rewritten != rawURL {
			return rewritten
		}
	}
	return rawURL
}
