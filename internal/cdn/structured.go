package cdn

// ImageSource is the host's resolved image record: the asset URL plus its
// intrinsic dimensions.
type ImageSource struct {
	URL    string
	Width  int
	Height int
}

// SrcsetCandidate is one entry of a responsive-image candidate list.
// Descriptor carries the width or density suffix (e.g. "480w", "2x").
type SrcsetCandidate struct {
	URL        string
	Descriptor string
}

// RewriteImageSource returns src with its URL field mapped to CDN form.
// A record without a URL is returned unchanged.
func (r *Rewriter) RewriteImageSource(src ImageSource) ImageSource {
	if src.URL == "" {
		return src
	}
	src.URL = r.Rewrite(src.URL)
	return src
}

// RewriteSrcset rewrites the URL of every candidate that has one, in place
// of the returned copy; candidates without a URL are left untouched.
func (r *Rewriter) RewriteSrcset(candidates []SrcsetCandidate) []SrcsetCandidate {
	if len(candidates) == 0 {
		return candidates
	}
	out := make([]SrcsetCandidate, len(candidates))
	copy(out, candidates)
	for i := range out {
		if out[i].URL != "" {
			out[i].URL = r.Rewrite(out[i].URL)
		}
	}
	return out
}
