package cdn

import (
	"github.com/mirrorpress/cdnpress/internal/log"
)

// Rewriter is the single-URL rewriting primitive every higher-level entry
// point delegates to. One Rewriter serves one render pass; if an instance
// is reused across requests, call Reset at the start of each.
type Rewriter struct {
	cfg     *Config
	cache   Cache
	inAdmin func() bool
}

// RewriterOption configures a Rewriter at construction.
type RewriterOption func(*Rewriter)

// WithCache replaces the default request-scoped cache, e.g. with a
// SharedCache when concurrent workers process documents against the same
// configuration.
func WithCache(c Cache) RewriterOption {
	return func(r *Rewriter) { r.cache = c }
}

// WithAdminContext installs the host's "am I in an administrative request
// context" predicate. While it reports true, every entry point is a pure
// identity function and nothing is cached.
func WithAdminContext(pred func() bool) RewriterOption {
	return func(r *Rewriter) { r.inAdmin = pred }
}

// NewRewriter builds a Rewriter over the given configuration snapshot with
// an empty cache.
func NewRewriter(cfg *Config, opts ...RewriterOption) *Rewriter {
	r := &Rewriter{cfg: cfg, cache: newMapCache()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Config returns the snapshot the rewriter was built over.
func (r *Rewriter) Config() *Config { return r.cfg }

// Rewrite maps one URL to its CDN form, or returns it unchanged when it is
// not eligible. Calling it twice with the same input returns the identical
// string both times.
//
// The admin-context short-circuit deliberately bypasses the cache: an
// admin-phase identity decision must not poison lookups made by later
// front-end calls on a reused instance.
func (r *Rewriter) Rewrite(rawURL string) string {
	if r.inAdmin != nil && r.inAdmin() {
		return rawURL
	}
	if !r.cfg.Active() || rawURL == "" || r.cfg.IsAdminURL(rawURL) {
		return rawURL
	}

	key := cacheKey(rawURL)
	if v, ok := r.cache.Get(key); ok {
		return v
	}

	if !ShouldRewrite(rawURL, r.cfg) {
		r.cache.Add(key, rawURL)
		return rawURL
	}

	mapped := CDNURL(rawURL, r.cfg)
	r.cache.Add(key, mapped)
	if r.cfg.Debug {
		log.Debugf("rewrite %s -> %s", rawURL, mapped)
	}
	return mapped
}

// Reset clears the rewrite cache so a reused instance cannot leak
// decisions from a previous request.
func (r *Rewriter) Reset() {
	if p, ok := r.cache.(interface{ Purge() }); ok {
		p.Purge()
		return
	}
	r.cache = newMapCache()
}
