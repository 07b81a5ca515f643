package cdn

import (
	"bytes"
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"

	"github.com/mirrorpress/cdnpress/internal/log"
)

// ProcessOptions controls one batch run over an exported site.
type ProcessOptions struct {
	Root        string  // export root (used when Storage is nil)
	Threads     int     // concurrent workers (min 1)
	StopOnError bool    // abort on first file error instead of counting it
	Quiet       bool    // suppress the progress bar
	Storage     Storage // if nil, NewLocalStorage(Root) is used
}

const (
	sharedCacheSize = 4096
	sharedCacheTTL  = time.Hour
)

// ProcessAll rewrites every HTML and CSS file of an exported site in place
// so its asset references point at the CDN. Files are processed
// concurrently; workers share the immutable cfg and one thread-safe rewrite
// cache, so a URL appearing on many pages is evaluated once.
func ProcessAll(cfg *Config, opts *ProcessOptions) error {
	if !cfg.Active() {
		return fmt.Errorf("rewriting is disabled or no CDN base URL is set")
	}

	store := opts.Storage
	if store == nil {
		store = NewLocalStorage(opts.Root)
	}

	var files []string
	err := store.Walk(func(path string) error {
		if IsHTMLFile(path, "", nil) || IsCSSFile(path, "") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan %s: %w", opts.Root, err)
	}
	if len(files) == 0 {
		return nil
	}

	threads := opts.Threads
	if threads < 1 {
		threads = 1
	}
	pool, err := ants.NewPool(threads)
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	rw := NewRewriter(cfg, WithCache(NewSharedCache(sharedCacheSize, sharedCacheTTL)))

	var prog *Progress
	if !opts.Quiet {
		prog = NewRewriteProgress(len(files))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	var failed atomic.Int32

	for _, file := range files {
		f := file
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			errCh := make(chan error, 1)
			if err := pool.Submit(func() {
				errCh <- processOne(f, rw, store, prog)
			}); err != nil {
				return fmt.Errorf("submit task: %w", err)
			}
			if err := <-errCh; err != nil {
				if opts.StopOnError {
					return err
				}
				failed.Add(1)
				log.Warnf("rewrite %s: %v", f, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	prog.Finish()
	if n := failed.Load(); n > 0 {
		return fmt.Errorf("%d file(s) failed to rewrite", n)
	}
	return nil
}

// processOne rewrites a single stored file, writing it back only when its
// content actually changed.
func processOne(path string, rw *Rewriter, store Storage, prog *Progress) error {
	defer prog.Inc()

	data, err := store.Get(path)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	content := string(data)
	var rewritten string
	switch {
	case IsHTMLFile(path, "", firstBytesOf(data)):
		rewritten = rw.RewriteContent(content)
	case IsCSSFile(path, ""):
		rewritten = rw.RewriteCSS(content)
	default:
		return nil
	}

	if rewritten == content {
		return nil
	}
	if err := store.PutBytes(path, []byte(rewritten)); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// firstBytesOf returns the sniffing window used for HTML magic detection.
func firstBytesOf(data []byte) []byte {
	const window = 512
	if len(data) > window {
		data = data[:window]
	}
	return bytes.TrimSpace(data)
}
