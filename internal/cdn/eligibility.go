package cdn

import (
	"net/url"
	"strings"
)

// ShouldRewrite reports whether rawURL qualifies for CDN substitution under
// cfg. Any reference it rejects is served from the origin unchanged; an
// unparseable URL is simply ineligible, never an error.
func ShouldRewrite(rawURL string, cfg *Config) bool {
	if !cfg.Active() {
		return false
	}
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return false
	}
	if strings.HasPrefix(rawURL, "data:") ||
		strings.HasPrefix(rawURL, "javascript:") ||
		strings.HasPrefix(rawURL, "mailto:") ||
		strings.HasPrefix(rawURL, "#") {
		return false
	}
	if cfg.IsAdminURL(rawURL) {
		return false
	}

	path, ok := assetPath(rawURL, cfg)
	if !ok {
		return false
	}
	if IsExcludedPath(path, cfg.ExcludedPaths) {
		return false
	}

	ext, ok := fileExtension(path)
	if !ok {
		return false
	}
	_, ok = cfg.FileTypes[ext]
	return ok
}

// assetPath extracts the origin-relative path of rawURL. Absolute and
// scheme-relative references must name the serving site itself; anything
// cross-origin is rejected.
func assetPath(rawURL string, cfg *Config) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if u.Host != "" {
		if !cfg.isSameOriginHost(u.Hostname()) {
			return "", false
		}
	} else if u.Scheme != "" {
		// Absolute URL with a scheme but no host (e.g. "https:///x").
		return "", false
	}
	if u.Path == "" {
		return "", false
	}
	return u.Path, true
}

// fileExtension returns the lower-cased extension of the last path segment,
// without the dot. A trailing dot or a dotless segment yields no extension.
func fileExtension(path string) (string, bool) {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		path = path[i+1:]
	}
	i := strings.LastIndexByte(path, '.')
	if i < 0 || i == len(path)-1 {
		return "", false
	}
	return strings.ToLower(path[i+1:]), true
}
