package contentblocks

import "github.com/goliatone/go-content-blocks/internal/runtimeconfig"

var (
	ErrTemplateDirRequired         = runtimeconfig.ErrTemplateDirRequired
	ErrDefaultGroupKeyRequired     = runtimeconfig.ErrDefaultGroupKeyRequired
	ErrShowcaseRepetitionsInvalid  = runtimeconfig.ErrShowcaseRepetitionsInvalid
	ErrShowcaseCombinationsInvalid = runtimeconfig.ErrShowcaseCombinationsInvalid
	ErrVideoTimeoutInvalid         = runtimeconfig.ErrVideoTimeoutInvalid
	ErrVimeoEndpointRequired       = runtimeconfig.ErrVimeoEndpointRequired
	ErrStorageProviderUnknown      = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDriverUnknown        = runtimeconfig.ErrStorageDriverUnknown
	ErrStorageDSNRequired          = runtimeconfig.ErrStorageDSNRequired
	ErrCacheTTLInvalid             = runtimeconfig.ErrCacheTTLInvalid
	ErrLinksRouteConfigRequired    = runtimeconfig.ErrLinksRouteConfigRequired
	ErrLoggingProviderRequired     = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown      = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid         = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid        = runtimeconfig.ErrLoggingFormatInvalid
	ErrCatalogDirRequired          = runtimeconfig.ErrCatalogDirRequired
	ErrCommandsTimeoutInvalid      = runtimeconfig.ErrCommandsTimeoutInvalid
)

type (
	Config          = runtimeconfig.Config
	HydrationConfig = runtimeconfig.HydrationConfig
	ShowcaseConfig  = runtimeconfig.ShowcaseConfig
	VideoConfig     = runtimeconfig.VideoConfig
	StorageConfig   = runtimeconfig.StorageConfig
	CacheConfig     = runtimeconfig.CacheConfig
	LinksConfig     = runtimeconfig.LinksConfig
	CatalogConfig   = runtimeconfig.CatalogConfig
	CommandsConfig  = runtimeconfig.CommandsConfig
	LoggingConfig   = runtimeconfig.LoggingConfig
)

// DefaultConfig returns the baseline runtime configuration.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
