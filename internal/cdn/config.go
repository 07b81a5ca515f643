package cdn

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// DefaultFileTypes is the extension list used when no explicit list is
// configured.
const DefaultFileTypes = "js,css,png,jpg,jpeg,gif,svg,woff,woff2,ttf,eot"

// DefaultExcludedPaths keeps the administrative area and the login page on
// the origin server regardless of extension.
var DefaultExcludedPaths = []string{"/wp-admin*", "/wp-login.php"}

// DefaultAdminMarkers are path segments whose presence in a URL
// disqualifies it from rewriting.
var DefaultAdminMarkers = []string{"wp-admin", "wp-login.php"}

// Config is the immutable per-render-pass view of the rewriting
// configuration. Build one, share it read-only across every component that
// processes the same request; never mutate it afterwards.
type Config struct {
	Enabled    bool
	CDNBaseURL string // absolute URL; empty means the feature is inactive
	SiteOrigin string // canonical origin of the serving site

	// OriginHosts are the host aliases accepted as "same origin"
	// (bare host, www. prefix, IDN-decoded form). When empty, only the
	// host of SiteOrigin is accepted.
	OriginHosts []string

	FileTypes     map[string]struct{} // lower-cased extensions, no dot
	ExcludedPaths []PathRule
	AdminMarkers  []string

	Debug bool

	// RemotePathResolver maps an origin-relative path to the path joined
	// onto CDNBaseURL. Nil means the path is used as-is. The hook exists
	// because the origin's content-directory layout is a host concern.
	RemotePathResolver func(path string) string
}

// Active reports whether rewriting is switched on and has a CDN base to
// rewrite to. Every public entry point checks this first.
func (c *Config) Active() bool {
	return c != nil && c.Enabled && c.CDNBaseURL != ""
}

// isSameOriginHost reports whether host names the serving site.
func (c *Config) isSameOriginHost(host string) bool {
	if host == "" {
		return false
	}
	host = strings.ToLower(host)
	for _, h := range c.OriginHosts {
		if host == h {
			return true
		}
	}
	if len(c.OriginHosts) == 0 && c.SiteOrigin != "" {
		if u, err := url.Parse(c.SiteOrigin); err == nil {
			return host == strings.ToLower(u.Hostname())
		}
	}
	return false
}

// IsAdminURL reports whether rawURL contains one of the configured
// administrative markers as a complete path segment. A marker only matches
// between slashes or at a path boundary: /wp-admin/a.js is administrative,
// /wp-admin-tools/a.js is not.
func (c *Config) IsAdminURL(rawURL string) bool {
	markers := c.AdminMarkers
	if markers == nil {
		markers = DefaultAdminMarkers
	}
	for _, m := range markers {
		if m != "" && hasPathSegment(rawURL, m) {
			return true
		}
	}
	return false
}

// hasPathSegment reports whether segment occurs in rawURL delimited by a
// leading slash and a slash, query, fragment, or end of string.
func hasPathSegment(rawURL, segment string) bool {
	needle := "/" + segment
	for off := 0; ; {
		i := strings.Index(rawURL[off:], needle)
		if i < 0 {
			return false
		}
		end := off + i + len(needle)
		if end == len(rawURL) || rawURL[end] == '/' || rawURL[end] == '?' || rawURL[end] == '#' {
			return true
		}
		off += i + 1
	}
}

// Origin holds the canonical form and accepted aliases of the site origin.
type Origin struct {
	Canonical string   // scheme://host, no trailing slash
	Hosts     []string // bare host, www. variant, IDN-decoded forms
}

// NormalizeOrigin parses the user-supplied site URL or domain and derives
// the canonical origin plus every host alias the eligibility check should
// treat as first-party.
func NormalizeOrigin(input string) (*Origin, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty site URL")
	}
	if !strings.Contains(input, "://") {
		input = "https://" + input
	}

	u, err := url.Parse(input)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return nil, fmt.Errorf("missing host")
	}

	bare := strings.TrimPrefix(host, "www.")

	seen := map[string]struct{}{}
	var hosts []string
	add := func(h string) {
		if h == "" {
			return
		}
		if _, ok := seen[h]; ok {
			return
		}
		seen[h] = struct{}{}
		hosts = append(hosts, h)
	}
	add(host)
	add(bare)
	add("www." + bare)
	if decoded, err := idna.ToUnicode(bare); err == nil {
		add(decoded)
		add("www." + decoded)
	}

	return &Origin{
		Canonical: u.Scheme + "://" + host,
		Hosts:     hosts,
	}, nil
}

// ParseFileTypes converts the comma-separated extension list into the set
// form consumed by the eligibility check. Entries are lower-cased and
// stripped of leading dots; empty entries are dropped.
func ParseFileTypes(list string) map[string]struct{} {
	types := make(map[string]struct{})
	for _, t := range strings.Split(list, ",") {
		t = strings.ToLower(strings.TrimSpace(t))
		t = strings.TrimPrefix(t, ".")
		if t != "" {
			types[t] = struct{}{}
		}
	}
	return types
}
