package main

import (
	"flag"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"

	"github.com/mirrorpress/cdnpress/internal/cdn"
	"github.com/mirrorpress/cdnpress/internal/cdnhttp"
	"github.com/mirrorpress/cdnpress/internal/log"
	"github.com/mirrorpress/cdnpress/internal/settings"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: cdnpress [options]

Batch mode (default): rewrite an exported site in place.
  -dir string             Export root directory to rewrite
  -cdn string             CDN base URL (e.g. https://cdn.example/user/repo@main/)
  -site string            Site origin URL (e.g. https://site.example)
  -types string           Comma-separated extension list (default: %s)
  -exclude value          Excluded path rule, repeatable (trailing * = prefix)
  -threads int            Concurrent workers (default: 4)
  -stop-on-error          Stop immediately on first file error
  -quiet                  Suppress the progress bar

Serve mode: rewrite responses of an upstream server on the fly.
  -serve                  Run as a rewriting reverse proxy
  -listen string          Listen address (default: :8080)
  -upstream string        Upstream origin URL to proxy

Common:
  -config string          Settings file (YAML); flags override its values
  -log-level string       trace|debug|info|warn|error (default: info)
  -debug                  Shorthand for -log-level debug plus rewrite logging
  -version                Print version and exit
  -h / -help              Show this help and exit
`, cdn.DefaultFileTypes)
}

// ruleList collects repeatable -exclude flags.
type ruleList []string

func (r *ruleList) String() string { return fmt.Sprint([]string(*r)) }

func (r *ruleList) Set(v string) error {
	*r = append(*r, v)
	return nil
}

func main() {
	fs := flag.NewFlagSet("cdnpress", flag.ContinueOnError)
	fs.Usage = usage

	var (
		configFlag  string
		dirFlag     string
		cdnFlag     string
		siteFlag    string
		typesFlag   string
		excludes    ruleList
		threadsFlag int
		stopOnError bool
		quiet       bool
		serveFlag   bool
		listenFlag  string
		upstream    string
		logLevel    string
		debug       bool
	)

	fs.StringVar(&configFlag, "config", "", "Settings file (YAML)")
	fs.StringVar(&dirFlag, "dir", "", "Export root directory to rewrite")
	fs.StringVar(&cdnFlag, "cdn", "", "CDN base URL")
	fs.StringVar(&siteFlag, "site", "", "Site origin URL")
	fs.StringVar(&typesFlag, "types", "", "Comma-separated extension list")
	fs.Var(&excludes, "exclude", "Excluded path rule (repeatable)")
	fs.IntVar(&threadsFlag, "threads", 4, "Concurrent workers")
	fs.BoolVar(&stopOnError, "stop-on-error", false, "Stop on first file error")
	fs.BoolVar(&quiet, "quiet", false, "Suppress the progress bar")
	fs.BoolVar(&serveFlag, "serve", false, "Run as a rewriting reverse proxy")
	fs.StringVar(&listenFlag, "listen", ":8080", "Listen address")
	fs.StringVar(&upstream, "upstream", "", "Upstream origin URL to proxy")
	fs.StringVar(&logLevel, "log-level", "info", "Log level")
	fs.BoolVar(&debug, "debug", false, "Enable rewrite debug logging")

	// Handle -version / -h / -help before the flag parser so we control the
	// exit code.
	for _, a := range os.Args[1:] {
		if a == "-version" || a == "--version" {
			fmt.Printf("cdnpress %s (commit %s, built %s)\n", version, commit, date)
			os.Exit(0)
		}
		if a == "-h" || a == "-help" || a == "--help" {
			usage()
			os.Exit(0)
		}
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	if debug {
		logLevel = "debug"
	}
	log.SetLogConf(logLevel)

	var store *settings.Store
	if configFlag != "" {
		var err error
		store, err = settings.Load(configFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}

	cfg, err := buildConfig(store, cdnFlag, siteFlag, typesFlag, excludes, debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if serveFlag {
		if err := serve(store, cfg, listenFlag, upstream); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if dirFlag == "" {
		fmt.Fprintln(os.Stderr, "error: -dir is required in batch mode")
		usage()
		os.Exit(1)
	}
	if threadsFlag <= 0 {
		fmt.Fprintln(os.Stderr, "error: -threads must be greater than 0")
		os.Exit(1)
	}

	// Running the batch command is the enablement.
	cfg.Enabled = true
	if cfg.CDNBaseURL == "" {
		fmt.Fprintln(os.Stderr, "error: no CDN base URL (-cdn or settings file)")
		os.Exit(1)
	}

	opts := &cdn.ProcessOptions{
		Root:        dirFlag,
		Threads:     threadsFlag,
		StopOnError: stopOnError,
		Quiet:       quiet,
	}
	if err := cdn.ProcessAll(cfg, opts); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// buildConfig merges the settings file (if any) with command-line
// overrides into one snapshot.
func buildConfig(store *settings.Store, cdnBase, site, types string, excludes []string, debug bool) (*cdn.Config, error) {
	var cfg *cdn.Config
	if store != nil {
		cfg = store.Snapshot()
	} else {
		cfg = &cdn.Config{FileTypes: cdn.ParseFileTypes(cdn.DefaultFileTypes)}
	}

	// Copy before applying overrides: snapshots are immutable.
	merged := *cfg
	if cdnBase != "" {
		merged.CDNBaseURL = cdnBase
	}
	if site != "" {
		origin, err := cdn.NormalizeOrigin(site)
		if err != nil {
			return nil, fmt.Errorf("-site: %w", err)
		}
		merged.SiteOrigin = origin.Canonical
		merged.OriginHosts = origin.Hosts
	}
	if types != "" {
		merged.FileTypes = cdn.ParseFileTypes(types)
	}
	if len(excludes) > 0 {
		merged.ExcludedPaths = cdn.ParsePathRules(excludes)
	}
	if len(merged.ExcludedPaths) == 0 {
		merged.ExcludedPaths = cdn.ParsePathRules(cdn.DefaultExcludedPaths)
	}
	if debug {
		merged.Debug = true
	}
	return &merged, nil
}

// serve runs a reverse proxy to upstream with the rewriting middleware in
// front. When a settings file is loaded its live snapshots drive the
// middleware, so edits take effect without a restart.
func serve(store *settings.Store, cfg *cdn.Config, listen, upstream string) error {
	if upstream == "" {
		return fmt.Errorf("-upstream is required with -serve")
	}
	target, err := url.Parse(upstream)
	if err != nil {
		return fmt.Errorf("parse -upstream: %w", err)
	}

	var src cdnhttp.ConfigSource
	if store != nil {
		store.Watch(nil)
		src = store
	} else {
		cfg.Enabled = true
		src = cdnhttp.StaticConfig{Config: cfg}
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	handler := cdnhttp.Middleware(src)(proxy)

	log.Infof("cdnpress listening on %s, upstream %s", listen, upstream)
	return http.ListenAndServe(listen, handler)
}
