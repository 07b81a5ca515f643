// Package cdnhttp integrates the rewriting core into an HTTP response
// pipeline: it buffers text responses, runs the content scanner over them,
// and injects the client-side reinforcement script into document heads.
package cdnhttp

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/mirrorpress/cdnpress/internal/cdn"
)

// ConfigSource yields the configuration snapshot for the current request.
// A settings.Store satisfies it; tests can use a fixed snapshot.
type ConfigSource interface {
	Snapshot() *cdn.Config
}

// StaticConfig adapts a single snapshot to the ConfigSource interface.
type StaticConfig struct{ Config *cdn.Config }

func (s StaticConfig) Snapshot() *cdn.Config { return s.Config }

var reHeadOpen = regexp.MustCompile(`(?i)<head[^>]*>`)

// Middleware rewrites text/html and text/css responses of the wrapped
// handler. Each request gets its own rewriter (and cache) over the snapshot
// current at request time. Administrative requests and non-text responses
// pass through untouched; so does everything when rewriting is disabled.
func Middleware(src ConfigSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cfg := src.Snapshot()
			if !cfg.Active() || isAdminRequest(r, cfg) {
				next.ServeHTTP(w, r)
				return
			}
			bw := &bufferingWriter{ResponseWriter: w, cfg: cfg}
			next.ServeHTTP(bw, r)
			bw.flush()
		})
	}
}

// isAdminRequest is the "am I in an administrative request context"
// predicate: true for any request under a configured admin marker.
func isAdminRequest(r *http.Request, cfg *cdn.Config) bool {
	return cfg.IsAdminURL(r.URL.Path)
}

// bufferingWriter holds the response body back until the handler returns so
// the scanner can work on the complete document. A handler that flushes a
// response the scanner will never touch is switched to streaming instead.
type bufferingWriter struct {
	http.ResponseWriter
	cfg         *cdn.Config
	buf         strings.Builder
	statusCode  int
	wroteHeader bool
	streaming   bool
}

func (w *bufferingWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.statusCode = code
}

func (w *bufferingWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if w.streaming {
		return w.ResponseWriter.Write(b)
	}
	return w.buf.Write(b)
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (w *bufferingWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Flush hands non-rewritable responses over to the client as they are
// produced. Rewritable content types stay buffered: the scanner needs the
// complete document, so a mid-handler Flush on text/html is a no-op.
func (w *bufferingWriter) Flush() {
	if !w.streaming {
		ct := strings.ToLower(w.ResponseWriter.Header().Get("Content-Type"))
		if strings.Contains(ct, "text/html") || strings.Contains(ct, "text/css") {
			return
		}
		w.streaming = true
		if w.statusCode == 0 {
			w.statusCode = http.StatusOK
		}
		w.ResponseWriter.WriteHeader(w.statusCode)
		_, _ = w.ResponseWriter.Write([]byte(w.buf.String()))
		w.buf.Reset()
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *bufferingWriter) flush() {
	if w.streaming {
		return
	}
	body := w.buf.String()
	ct := w.ResponseWriter.Header().Get("Content-Type")

	switch {
	case strings.Contains(strings.ToLower(ct), "text/html"):
		rw := cdn.NewRewriter(w.cfg)
		body = rw.RewriteContent(body)
		body = injectLoader(body, w.cfg)
	case strings.Contains(strings.ToLower(ct), "text/css"):
		rw := cdn.NewRewriter(w.cfg)
		body = rw.RewriteCSS(body)
	}

	// Body size may have changed.
	w.ResponseWriter.Header().Del("Content-Length")

	if w.statusCode == 0 {
		w.statusCode = http.StatusOK
	}
	w.ResponseWriter.WriteHeader(w.statusCode)
	_, _ = w.ResponseWriter.Write([]byte(body))
}

// injectLoader places the reinforcement script right after the opening
// <head> tag, so it runs before any later asset insertion. Documents
// without a head (fragments) are left alone.
func injectLoader(body string, cfg *cdn.Config) string {
	script := cdn.LoaderScript(cfg)
	if script == "" {
		return body
	}
	loc := reHeadOpen.FindStringIndex(body)
	if loc == nil {
		return body
	}
	return body[:loc[1]] + script + body[loc[1]:]
}
