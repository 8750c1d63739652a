// Package config loads moviehub configuration from YAML, .env files and
// the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Githaiga22/movie-hub/internal/catalog"
	"github.com/Githaiga22/movie-hub/internal/store"
)

const (
	appName    = "moviehub"
	envPrefix  = "MOVIEHUB"
	configName = "config"
	configType = "yaml"
)

// ErrNotConfigured indicates no TMDB credentials are set
var ErrNotConfigured = errors.New("no TMDB API key or access token configured; run `moviehub setup`")

// Config holds all application configuration
type Config struct {
	TMDB    TMDBConfig    `mapstructure:"tmdb"`
	OMDB    OMDBConfig    `mapstructure:"omdb"`
	Storage StorageConfig `mapstructure:"storage"`
	UI      UIConfig      `mapstructure:"ui"`
	Browser BrowserConfig `mapstructure:"browser"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// TMDBConfig holds metadata service configuration
type TMDBConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	AccessToken  string        `mapstructure:"access_token"` // preferred over api_key when set
	BaseURL      string        `mapstructure:"base_url"`
	ImageBaseURL string        `mapstructure:"image_base_url"`
	Language     string        `mapstructure:"language"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// OMDBConfig holds the optional ratings lookup configuration
type OMDBConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// StorageConfig selects the watchlist/cache backend
type StorageConfig struct {
	Backend string `mapstructure:"backend"` // bolt, sqlite or memory
	Dir     string `mapstructure:"dir"`
}

// UIConfig holds UI configuration
type UIConfig struct {
	DefaultCategory   string `mapstructure:"default_category"` // trending or a curated category
	PrefetchThreshold int    `mapstructure:"prefetch_threshold"`
}

// BrowserConfig selects how movie pages are opened. An empty command uses
// the system default handler.
type BrowserConfig struct {
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		TMDB: TMDBConfig{
			BaseURL:      "https://api.themoviedb.org/3",
			ImageBaseURL: "https://image.tmdb.org/t/p",
			Language:     "en-US",
			Timeout:      15 * time.Second,
		},
		OMDB: OMDBConfig{
			BaseURL: "https://www.omdbapi.com",
		},
		Storage: StorageConfig{
			Backend: store.BackendBolt,
			Dir:     defaultDataPath(),
		},
		UI: UIConfig{
			DefaultCategory:   catalog.KeyTrending,
			PrefetchThreshold: 5,
		},
		Logging: LoggingConfig{
			File:  filepath.Join(defaultDataPath(), appName+".log"),
			Level: "INFO",
		},
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", appName)
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", appName)
	}
}

// Loader reads and writes one configuration directory
type Loader struct {
	v   *viper.Viper
	dir string

	mu      sync.Mutex
	watched bool
}

// NewLoader creates a loader for dir. An empty dir selects the OS default.
func NewLoader(dir string) *Loader {
	if dir == "" {
		dir = defaultConfigPath()
	}
	return &Loader{v: viper.New(), dir: dir}
}

// Path returns the configuration file path
func (l *Loader) Path() string { return filepath.Join(l.dir, configName+"."+configType) }

// Load loads configuration from .env files, the config file and environment.
// A missing config file is not an error.
func (l *Loader) Load() (*Config, error) {
	// .env never overrides variables already set in the environment
	for _, f := range []string{".env", filepath.Join(l.dir, ".env")} {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error reading %s: %w", f, err)
		}
	}

	v := l.v
	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(l.dir)
	v.AddConfigPath(".")

	setDefaults(v, DefaultConfig())

	// Environment variable overrides (MOVIEHUB_TMDB_API_KEY, ...)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Conventional unprefixed names used by other TMDB tooling
	_ = v.BindEnv("tmdb.api_key", envPrefix+"_TMDB_API_KEY", "TMDB_API_KEY")
	_ = v.BindEnv("tmdb.access_token", envPrefix+"_TMDB_ACCESS_TOKEN", "TMDB_ACCESS_TOKEN")
	_ = v.BindEnv("omdb.api_key", envPrefix+"_OMDB_API_KEY", "OMDB_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	return l.unmarshal()
}

func (l *Loader) unmarshal() (*Config, error) {
	cfg := DefaultConfig()
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	cfg.Logging.File = expandHome(cfg.Logging.File)
	cfg.Storage.Dir = expandHome(cfg.Storage.Dir)
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("tmdb.api_key", d.TMDB.APIKey)
	v.SetDefault("tmdb.access_token", d.TMDB.AccessToken)
	v.SetDefault("tmdb.base_url", d.TMDB.BaseURL)
	v.SetDefault("tmdb.image_base_url", d.TMDB.ImageBaseURL)
	v.SetDefault("tmdb.language", d.TMDB.Language)
	v.SetDefault("tmdb.timeout", d.TMDB.Timeout)
	v.SetDefault("omdb.api_key", d.OMDB.APIKey)
	v.SetDefault("omdb.base_url", d.OMDB.BaseURL)
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.dir", d.Storage.Dir)
	v.SetDefault("ui.default_category", d.UI.DefaultCategory)
	v.SetDefault("ui.prefetch_threshold", d.UI.PrefetchThreshold)
	v.SetDefault("browser.command", d.Browser.Command)
	v.SetDefault("browser.args", d.Browser.Args)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.level", d.Logging.Level)
}

// Save writes cfg to the config file. The file holds API keys and is
// created with owner-only permissions.
func (l *Loader) Save(cfg *Config) error {
	if err := os.MkdirAll(l.dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	l.v.Set("tmdb.api_key", cfg.TMDB.APIKey)
	l.v.Set("tmdb.access_token", cfg.TMDB.AccessToken)
	l.v.Set("tmdb.base_url", cfg.TMDB.BaseURL)
	l.v.Set("tmdb.image_base_url", cfg.TMDB.ImageBaseURL)
	l.v.Set("tmdb.language", cfg.TMDB.Language)
	l.v.Set("tmdb.timeout", cfg.TMDB.Timeout.String())
	l.v.Set("omdb.api_key", cfg.OMDB.APIKey)
	l.v.Set("omdb.base_url", cfg.OMDB.BaseURL)
	l.v.Set("storage.backend", cfg.Storage.Backend)
	l.v.Set("storage.dir", cfg.Storage.Dir)
	l.v.Set("ui.default_category", cfg.UI.DefaultCategory)
	l.v.Set("ui.prefetch_threshold", cfg.UI.PrefetchThreshold)
	l.v.Set("browser.command", cfg.Browser.Command)
	l.v.Set("browser.args", cfg.Browser.Args)
	l.v.Set("logging.file", cfg.Logging.File)
	l.v.Set("logging.level", cfg.Logging.Level)

	path := l.Path()
	if err := l.v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to restrict config file permissions: %w", err)
	}
	return nil
}

// Watch calls fn with the reloaded configuration whenever the config file
// changes. It reports false when no config file was loaded to watch.
func (l *Loader) Watch(fn func(*Config, error)) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.watched || l.v.ConfigFileUsed() == "" {
		return false
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		l.onChange(e, fn)
	})
	l.v.WatchConfig()
	l.watched = true
	return true
}

func (l *Loader) onChange(e fsnotify.Event, fn func(*Config, error)) {
	if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
		return
	}
	cfg, err := l.unmarshal()
	if err == nil {
		err = cfg.Validate()
	}
	fn(cfg, err)
}

// IsConfigured returns true if TMDB credentials are set
func (c *Config) IsConfigured() bool {
	return c.TMDB.APIKey != "" || c.TMDB.AccessToken != ""
}

// Validate checks the configuration for values the app cannot run with
func (c *Config) Validate() error {
	var errs []error
	if !c.IsConfigured() {
		errs = append(errs, ErrNotConfigured)
	}
	switch c.Storage.Backend {
	case store.BackendBolt, store.BackendSQLite, store.BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("storage.backend: unknown backend %q", c.Storage.Backend))
	}
	if c.UI.DefaultCategory != catalog.KeyTrending && !catalog.ValidCategory(c.UI.DefaultCategory) {
		errs = append(errs, fmt.Errorf("ui.default_category: %q is not trending or one of %v", c.UI.DefaultCategory, catalog.Categories))
	}
	if c.UI.PrefetchThreshold < 0 {
		errs = append(errs, errors.New("ui.prefetch_threshold: must not be negative"))
	}
	if c.TMDB.Timeout <= 0 {
		errs = append(errs, errors.New("tmdb.timeout: must be positive"))
	}
	return errors.Join(errs...)
}

// StartKey returns the list key the browser opens on
func (c *Config) StartKey() string {
	if catalog.ValidCategory(c.UI.DefaultCategory) {
		return catalog.CategoryKey(c.UI.DefaultCategory)
	}
	return catalog.TrendingKey()
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
