// Package settings persists the plugin-style configuration and turns it
// into the immutable snapshots the rewriting core consumes. The core never
// touches viper or the file; it only ever sees a *cdn.Config.
package settings

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	sanitize "github.com/mrz1836/go-sanitize"
	"github.com/spf13/viper"

	"github.com/mirrorpress/cdnpress/internal/cdn"
	"github.com/mirrorpress/cdnpress/internal/log"
)

// Values mirrors the persisted configuration file.
type Values struct {
	Enabled       bool     `mapstructure:"enabled"`
	Debug         bool     `mapstructure:"debug"`
	SiteURL       string   `mapstructure:"site_url"`
	CDNBaseURL    string   `mapstructure:"cdn_base_url"`
	GitHubUser    string   `mapstructure:"github_user"`
	GitHubRepo    string   `mapstructure:"github_repo"`
	Branch        string   `mapstructure:"branch"`
	FileTypes     string   `mapstructure:"file_types"`
	ExcludedPaths []string `mapstructure:"excluded_paths"`
	AdminMarkers  []string `mapstructure:"admin_markers"`
}

// Store owns the viper instance and the current snapshot.
type Store struct {
	v *viper.Viper

	mu   sync.RWMutex
	snap *cdn.Config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("enabled", false)
	v.SetDefault("debug", false)
	v.SetDefault("site_url", "")
	v.SetDefault("cdn_base_url", "")
	v.SetDefault("github_user", "")
	v.SetDefault("github_repo", "")
	v.SetDefault("branch", "main")
	v.SetDefault("file_types", cdn.DefaultFileTypes)
	v.SetDefault("excluded_paths", cdn.DefaultExcludedPaths)
	v.SetDefault("admin_markers", cdn.DefaultAdminMarkers)
}

// Load reads the configuration file at path. A missing file is not an
// error: the store starts from defaults (rewriting disabled).
func Load(path string) (*Store, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			log.Infof("config file %s not found, starting with defaults", path)
		} else {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	s := &Store{v: v}
	if err := s.rebuild(); err != nil {
		return nil, err
	}
	return s, nil
}

// rebuild unmarshals the current viper state into a fresh snapshot.
func (s *Store) rebuild() error {
	var vals Values
	if err := s.v.Unmarshal(&vals); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	snap, err := vals.Snapshot()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	return nil
}

// Snapshot returns the current immutable configuration. Callers must not
// mutate the result; a reload replaces the pointer, never the contents.
func (s *Store) Snapshot() *cdn.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Watch re-snapshots on every config file change. An invalid edit keeps
// the previous snapshot in place.
func (s *Store) Watch(onChange func(*cdn.Config)) {
	s.v.OnConfigChange(func(e fsnotify.Event) {
		if err := s.rebuild(); err != nil {
			log.Errorf("config reload %s: %v", e.Name, err)
			return
		}
		log.Infof("config reloaded from %s", e.Name)
		if onChange != nil {
			onChange(s.Snapshot())
		}
	})
	s.v.WatchConfig()
}

// Snapshot converts raw persisted values into a cdn.Config. The CDN base is
// cleaned of stray characters; when it is not set explicitly but a GitHub
// mirror is configured, the jsDelivr base for that repository is composed.
func (vals Values) Snapshot() (*cdn.Config, error) {
	cfg := &cdn.Config{
		Enabled:       vals.Enabled,
		Debug:         vals.Debug,
		FileTypes:     cdn.ParseFileTypes(vals.FileTypes),
		ExcludedPaths: cdn.ParsePathRules(vals.ExcludedPaths),
		AdminMarkers:  vals.AdminMarkers,
	}

	base := sanitize.URL(strings.TrimSpace(vals.CDNBaseURL))
	if base == "" && vals.GitHubUser != "" && vals.GitHubRepo != "" {
		branch := vals.Branch
		if branch == "" {
			branch = "main"
		}
		base = fmt.Sprintf("https://cdn.jsdelivr.net/gh/%s/%s@%s/",
			vals.GitHubUser, vals.GitHubRepo, branch)
	}
	cfg.CDNBaseURL = base

	if vals.SiteURL != "" {
		origin, err := cdn.NormalizeOrigin(vals.SiteURL)
		if err != nil {
			return nil, fmt.Errorf("site_url: %w", err)
		}
		cfg.SiteOrigin = origin.Canonical
		cfg.OriginHosts = origin.Hosts
	}
	return cfg, nil
}
