package cdn

import "testing"

func TestCDNURL(t *testing.T) {
	cfg := testConfig()
	cases := []struct {
		in   string
		want string
	}{
		// Absolute origin URL: origin stripped, path joined to CDN base
		{
			"https://site.example/wp-content/themes/x/style.css",
			"https://cdn.example/user/repo@main/wp-content/themes/x/style.css",
		},
		// Relative path joined directly
		{
			"/wp-content/app.js",
			"https://cdn.example/user/repo@main/wp-content/app.js",
		},
		// Query string travels along untouched
		{
			"https://site.example/wp-content/app.js?ver=1.2",
			"https://cdn.example/user/repo@main/wp-content/app.js?ver=1.2",
		},
		// Scheme-relative reference
		{
			"//site.example/fonts/a.woff2",
			"https://cdn.example/user/repo@main/fonts/a.woff2",
		},
		// Percent-encodings are preserved, never re-encoded
		{
			"/wp-content/sp%20ace.png",
			"https://cdn.example/user/repo@main/wp-content/sp%20ace.png",
		},
		// An absolute URL inside the query is payload, not this URL's origin
		{
			"/wp-content/app.js?next=https://site.example/page",
			"https://cdn.example/user/repo@main/wp-content/app.js?next=https://site.example/page",
		},
	}

	for _, tc := range cases {
		if got := CDNURL(tc.in, cfg); got != tc.want {
			t.Errorf("CDNURL(%q)\n  got  %q\n  want %q", tc.in, got, tc.want)
		}
	}
}

// A single separating slash regardless of how base and path are written.
func TestCDNURLJoining(t *testing.T) {
	cases := []struct {
		base string
		path string
		want string
	}{
		{"https://cdn.example/", "/a.js", "https://cdn.example/a.js"},
		{"https://cdn.example", "/a.js", "https://cdn.example/a.js"},
		{"https://cdn.example/", "a.js", "https://cdn.example/a.js"},
		{"https://cdn.example", "a.js", "https://cdn.example/a.js"},
	}

	for _, tc := range cases {
		cfg := testConfig()
		cfg.CDNBaseURL = tc.base
		if got := CDNURL(tc.path, cfg); got != tc.want {
			t.Errorf("CDNURL(%q) with base %q = %q, want %q", tc.path, tc.base, got, tc.want)
		}
	}
}

func TestCDNURLRemotePathResolver(t *testing.T) {
	cfg := testConfig()
	cfg.RemotePathResolver = func(path string) string {
		// Host layout hook: assets live under a stripped prefix remotely.
		return "assets" + path
	}

	got := CDNURL("/wp-content/app.js", cfg)
	want := "https://cdn.example/user/repo@main/assets/wp-content/app.js"
	if got != want {
		t.Errorf("resolver hook\n  got  %q\n  want %q", got, want)
	}
}

func TestStripOrigin(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://site.example/a/b.css", "/a/b.css"},
		{"http://site.example/a/b.css?x=1", "/a/b.css?x=1"},
		{"//site.example/a.js", "/a.js"},
		{"https://site.example", "/"},
		{"/already/relative.js", "/already/relative.js"},
		{"relative.js", "relative.js"},
		// "://" in the query or fragment never marks this URL absolute
		{"/a/b.js?next=https://site.example/page", "/a/b.js?next=https://site.example/page"},
		{"/a/b.js#https://x", "/a/b.js#https://x"},
		{"/redirect?to=//other.example/c", "/redirect?to=//other.example/c"},
	}

	for _, tc := range cases {
		if got := stripOrigin(tc.in); got != tc.want {
			t.Errorf("stripOrigin(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
