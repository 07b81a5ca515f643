package cdn

import (
	"testing"
	"time"
)

// Spec example: origin asset URL mapped onto the jsDelivr-style base.
func TestRewriteExampleTransform(t *testing.T) {
	rw := NewRewriter(testConfig())

	got := rw.Rewrite("https://site.example/wp-content/themes/x/style.css")
	want := "https://cdn.example/user/repo@main/wp-content/themes/x/style.css"
	if got != want {
		t.Errorf("Rewrite\n  got  %q\n  want %q", got, want)
	}

	// Cache-busting query string is preserved
	got = rw.Rewrite("https://site.example/wp-content/themes/x/style.css?ver=1.2")
	if got != want+"?ver=1.2" {
		t.Errorf("query dropped: got %q", got)
	}
}

// A relative asset reference whose query carries a full URL keeps its own
// path; the embedded URL is payload and travels along untouched.
func TestRewriteEmbeddedURLInQuery(t *testing.T) {
	rw := NewRewriter(testConfig())

	got := rw.Rewrite("/wp-content/app.js?next=https://site.example/page")
	want := "https://cdn.example/user/repo@main/wp-content/app.js?next=https://site.example/page"
	if got != want {
		t.Errorf("Rewrite\n  got  %q\n  want %q", got, want)
	}
}

// Two calls with the same cache instance return the identical string.
func TestRewriteCacheConsistency(t *testing.T) {
	rw := NewRewriter(testConfig())

	first := rw.Rewrite("/wp-content/app.js")
	second := rw.Rewrite("/wp-content/app.js")
	if first != second {
		t.Errorf("cache inconsistency: %q vs %q", first, second)
	}

	// Ineligible URLs are cached as identity and stay stable too
	miss1 := rw.Rewrite("/wp-content/readme")
	miss2 := rw.Rewrite("/wp-content/readme")
	if miss1 != "/wp-content/readme" || miss1 != miss2 {
		t.Errorf("identity caching broken: %q vs %q", miss1, miss2)
	}
}

func TestRewriteIdentityWhenDisabled(t *testing.T) {
	inputs := []string{
		"/wp-content/app.js",
		"https://site.example/style.css",
		"data:image/png;base64,AAAA",
		"",
	}

	disabled := testConfig()
	disabled.Enabled = false
	rw := NewRewriter(disabled)
	for _, in := range inputs {
		if got := rw.Rewrite(in); got != in {
			t.Errorf("disabled: Rewrite(%q) = %q, want identity", in, got)
		}
	}

	noBase := testConfig()
	noBase.CDNBaseURL = ""
	rw = NewRewriter(noBase)
	for _, in := range inputs {
		if got := rw.Rewrite(in); got != in {
			t.Errorf("no CDN base: Rewrite(%q) = %q, want identity", in, got)
		}
	}
}

func TestRewriteExtensionGating(t *testing.T) {
	rw := NewRewriter(testConfig())
	for _, in := range []string{"/wp-content/archive.zip", "/wp-content/data.json", "/page.html"} {
		if got := rw.Rewrite(in); got != in {
			t.Errorf("Rewrite(%q) = %q, want identity for unaccepted extension", in, got)
		}
	}
}

func TestRewriteExclusionPrecedence(t *testing.T) {
	cfg := testConfig()
	cfg.ExcludedPaths = ParsePathRules([]string{"/wp-admin/*"})
	rw := NewRewriter(cfg)

	if got := rw.Rewrite("/wp-admin/x.js"); got != "/wp-admin/x.js" {
		t.Errorf("excluded path rewritten to %q", got)
	}
}

func TestRewriteCrossOriginSafety(t *testing.T) {
	rw := NewRewriter(testConfig())
	in := "https://other-domain.example/a.css"
	if got := rw.Rewrite(in); got != in {
		t.Errorf("cross-origin URL rewritten to %q", got)
	}
}

func TestRewriteDataURI(t *testing.T) {
	rw := NewRewriter(testConfig())
	in := "data:image/png;base64,AAAA"
	if got := rw.Rewrite(in); got != in {
		t.Errorf("data URI rewritten to %q", got)
	}
}

// While the admin predicate reports true the rewriter is a pure identity
// function and must not populate the cache.
func TestRewriteAdminContext(t *testing.T) {
	admin := true
	rw := NewRewriter(testConfig(), WithAdminContext(func() bool { return admin }))

	in := "/wp-content/app.js"
	if got := rw.Rewrite(in); got != in {
		t.Errorf("admin context: Rewrite(%q) = %q, want identity", in, got)
	}

	// Leaving the admin context must produce a fresh (non-poisoned) decision
	admin = false
	got := rw.Rewrite(in)
	want := "https://cdn.example/user/repo@main/wp-content/app.js"
	if got != want {
		t.Errorf("post-admin rewrite got %q, want %q", got, want)
	}
}

func TestRewriterReset(t *testing.T) {
	rw := NewRewriter(testConfig())
	rw.Rewrite("/wp-content/app.js")
	rw.Reset()

	if len(rw.cache.(mapCache)) != 0 {
		t.Error("Reset should leave an empty cache")
	}

	// Reset on a shared cache purges rather than replaces
	shared := NewSharedCache(16, time.Minute)
	rw = NewRewriter(testConfig(), WithCache(shared))
	rw.Rewrite("/wp-content/app.js")
	rw.Reset()
	if _, ok := shared.Get(cacheKey("/wp-content/app.js")); ok {
		t.Error("Reset should purge the shared cache")
	}
}
