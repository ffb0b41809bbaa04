package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	urlkit "github.com/goliatone/go-urlkit"
)

var ErrTemplateDirRequired = errors.New("content blocks config: hydration root template directory is required")
var ErrDefaultGroupKeyRequired = errors.New("content blocks config: hydration default group key is required")
var ErrShowcaseRepetitionsInvalid = errors.New("content blocks config: showcase list repetitions must be positive")
var ErrShowcaseCombinationsInvalid = errors.New("content blocks config: showcase max combinations must be positive")
var ErrVideoTimeoutInvalid = errors.New("content blocks config: video metadata timeout must be positive")
var ErrVimeoEndpointRequired = errors.New("content blocks config: vimeo endpoint is required when vimeo metadata is enabled")
var ErrStorageProviderUnknown = errors.New("content blocks config: storage provider is invalid")
var ErrStorageDriverUnknown = errors.New("content blocks config: storage driver is invalid")
var ErrStorageDSNRequired = errors.New("content blocks config: storage dsn is required for the bun provider")
var ErrCacheTTLInvalid = errors.New("content blocks config: cache ttl must be positive when cache is enabled")
var ErrLinksRouteConfigRequired = errors.New("content blocks config: link route config is required when routes are mapped")
var ErrLoggingProviderRequired = errors.New("content blocks config: logging provider is required")
var ErrLoggingProviderUnknown = errors.New("content blocks config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("content blocks config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("content blocks config: logging format is invalid")
var ErrCatalogDirRequired = errors.New("content blocks config: catalog directory is required when catalog sync is enabled")
var ErrCommandsTimeoutInvalid = errors.New("content blocks config: command timeout cannot be negative")

// Config aggregates the runtime options of the content blocks module.
type Config struct {
	Hydration HydrationConfig
	Showcase  ShowcaseConfig
	Video     VideoConfig
	Storage   StorageConfig
	Cache     CacheConfig
	Links     LinksConfig
	Catalog   CatalogConfig
	Commands  CommandsConfig
	Logging   LoggingConfig
}

// HydrationConfig controls render tree construction.
type HydrationConfig struct {
	// RootTemplateDir prefixes every template path emitted on leaf render nodes.
	RootTemplateDir   string
	// TemplateExtension is appended to the default "components/<keyname>" template path.
	TemplateExtension string
	DefaultGroupKey   string
}

// ShowcaseConfig controls the guideline generator.
type ShowcaseConfig struct {
	Enabled         bool
	RootTemplateDir string
	ListRepetitions int
	MaxCombinations int
	Seed            int64
}

// VideoConfig controls movie field enrichment.
type VideoConfig struct {
	EnableVimeoMetadata bool
	VimeoEndpoint       string
	Timeout             time.Duration
}

type StorageConfig struct {
	Provider string
	Driver   string
	DSN      string
	// AutoMigrate applies the embedded schema migrations when the bun
	// provider opens its database.
	AutoMigrate bool
}

type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// LinksConfig maps entity classes onto go-urlkit routes for internal links.
type LinksConfig struct {
	RouteConfig  *urlkit.Config
	DefaultGroup string
	Routes       map[string]string
	IDParam      string
}

type CatalogConfig struct {
	SyncOnStart bool
	Dir         string
}

type CommandsConfig struct {
	Enabled bool
	Timeout time.Duration
}

type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() Config {
	return Config{
		Hydration: HydrationConfig{
			RootTemplateDir:   "front",
			TemplateExtension: ".html.twig",
			DefaultGroupKey:   "default-0",
		},
		Showcase: ShowcaseConfig{
			Enabled:         true,
			RootTemplateDir: "front",
			ListRepetitions: 5,
			MaxCombinations: 64,
			Seed:            1,
		},
		Video: VideoConfig{
			EnableVimeoMetadata: false,
			VimeoEndpoint:       "https://vimeo.com/api/v2/video/%s.json",
			Timeout:             3 * time.Second,
		},
		Storage: StorageConfig{
			Provider: "memory",
			Driver:   "sqlite",
		},
		Cache: CacheConfig{
			Enabled:    false,
			DefaultTTL: time.Minute,
		},
		Links: LinksConfig{
			Routes:  map[string]string{},
			IDParam: "id",
		},
		Commands: CommandsConfig{
			Enabled: true,
			Timeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Provider: "noop",
			Level:    "info",
			Format:   "json",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Hydration.RootTemplateDir) == "" {
		return ErrTemplateDirRequired
	}
	if strings.TrimSpace(cfg.Hydration.DefaultGroupKey) == "" {
		return ErrDefaultGroupKeyRequired
	}
	if cfg.Showcase.Enabled {
		if cfg.Showcase.ListRepetitions <= 0 {
			return fmt.Errorf("%w: %d", ErrShowcaseRepetitionsInvalid, cfg.Showcase.ListRepetitions)
		}
		if cfg.Showcase.MaxCombinations <= 0 {
			return fmt.Errorf("%w: %d", ErrShowcaseCombinationsInvalid, cfg.Showcase.MaxCombinations)
		}
	}
	if cfg.Video.EnableVimeoMetadata {
		if strings.TrimSpace(cfg.Video.VimeoEndpoint) == "" {
			return ErrVimeoEndpointRequired
		}
		if cfg.Video.Timeout <= 0 {
			return ErrVideoTimeoutInvalid
		}
	}

	provider := normalize(cfg.Storage.Provider)
	if !isSupportedStorageProvider(provider) {
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, provider)
	}
	if provider == "bun" {
		if driver := normalize(cfg.Storage.Driver); !isSupportedDriver(driver) {
			return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, driver)
		}
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
	}
	if cfg.Cache.Enabled && cfg.Cache.DefaultTTL <= 0 {
		return ErrCacheTTLInvalid
	}
	if len(cfg.Links.Routes) > 0 && cfg.Links.RouteConfig == nil {
		return ErrLinksRouteConfigRequired
	}
	if cfg.Catalog.SyncOnStart && strings.TrimSpace(cfg.Catalog.Dir) == "" {
		return ErrCatalogDirRequired
	}
	if cfg.Commands.Timeout < 0 {
		return ErrCommandsTimeoutInvalid
	}

	logProvider := normalize(cfg.Logging.Provider)
	if logProvider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedLoggingProvider(logProvider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, logProvider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if logProvider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedStorageProvider(provider string) bool {
	switch provider {
	case "memory", "bun":
		return true
	default:
		return false
	}
}

func isSupportedDriver(driver string) bool {
	switch driver {
	case "sqlite", "sqlite3", "postgres", "pg":
		return true
	default:
		return false
	}
}

func isSupportedLoggingProvider(provider string) bool {
	switch provider {
	case "noop", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
