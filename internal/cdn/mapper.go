package cdn

import "strings"

// CDNURL maps an eligible origin reference to its CDN form. It must only be
// called after ShouldRewrite accepted rawURL. The mapping is purely
// structural: no character of rawURL is re-encoded, and any query string
// travels along untouched.
func CDNURL(rawURL string, cfg *Config) string {
	remote := stripOrigin(rawURL)
	if cfg.RemotePathResolver != nil {
		remote = cfg.RemotePathResolver(remote)
	}
	return strings.TrimRight(cfg.CDNBaseURL, "/") + "/" + strings.TrimLeft(remote, "/")
}

// stripOrigin removes the scheme://host (or //host) prefix from an absolute
// reference, textually, so existing percent-encodings and query strings
// survive byte-for-byte. Relative references pass through unchanged.
func stripOrigin(rawURL string) string {
	rest := rawURL
	switch {
	case hasScheme(rest):
		rest = rest[strings.Index(rest, "://")+3:]
	case strings.HasPrefix(rest, "//"):
		rest = rest[2:]
	default:
		return rawURL
	}
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		return rest[i:]
	}
	return "/"
}

// hasScheme reports whether rawURL itself starts with a scheme. A "://"
// appearing after a path, query, or fragment delimiter belongs to an
// embedded URL (e.g. a redirect target in the query), not to this one.
func hasScheme(rawURL string) bool {
	i := strings.Index(rawURL, "://")
	return i > 0 && !strings.ContainsAny(rawURL[:i], "/?#")
}
