package cdn

import "testing"

func TestRewriteImageSource(t *testing.T) {
	rw := NewRewriter(testConfig())

	src := ImageSource{URL: "/wp-content/uploads/photo.jpg", Width: 800, Height: 600}
	got := rw.RewriteImageSource(src)
	if got.URL != cdnBase+"/wp-content/uploads/photo.jpg" {
		t.Errorf("URL not rewritten: %q", got.URL)
	}
	if got.Width != 800 || got.Height != 600 {
		t.Errorf("dimensions changed: %+v", got)
	}

	// Record without a URL passes through unchanged
	empty := ImageSource{Width: 10, Height: 10}
	if got := rw.RewriteImageSource(empty); got != empty {
		t.Errorf("empty-URL record changed: %+v", got)
	}
}

func TestRewriteSrcset(t *testing.T) {
	rw := NewRewriter(testConfig())

	in := []SrcsetCandidate{
		{URL: "/wp-content/uploads/photo-480.jpg", Descriptor: "480w"},
		{Descriptor: "2x"}, // no URL: left untouched
		{URL: "https://other.example/photo.jpg", Descriptor: "800w"},
	}
	got := rw.RewriteSrcset(in)

	if got[0].URL != cdnBase+"/wp-content/uploads/photo-480.jpg" || got[0].Descriptor != "480w" {
		t.Errorf("candidate 0 wrong: %+v", got[0])
	}
	if got[1].URL != "" || got[1].Descriptor != "2x" {
		t.Errorf("URL-less candidate changed: %+v", got[1])
	}
	if got[2].URL != "https://other.example/photo.jpg" {
		t.Errorf("cross-origin candidate rewritten: %+v", got[2])
	}

	// The input slice itself is not mutated
	if in[0].URL != "/wp-content/uploads/photo-480.jpg" {
		t.Errorf("input mutated: %+v", in[0])
	}

	if got := rw.RewriteSrcset(nil); got != nil {
		t.Errorf("nil input should stay nil, got %v", got)
	}
}

func TestStructuredRewritersDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	rw := NewRewriter(cfg)

	src := ImageSource{URL: "/wp-content/a.png"}
	if got := rw.RewriteImageSource(src); got != src {
		t.Errorf("disabled: image source changed: %+v", got)
	}

	list := []SrcsetCandidate{{URL: "/wp-content/a.png", Descriptor: "1x"}}
	got := rw.RewriteSrcset(list)
	if got[0] != list[0] {
		t.Errorf("disabled: srcset changed: %+v", got[0])
	}
}
