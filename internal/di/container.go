package di

import (
	"context"
	"io/fs"
	"strings"
	"time"

	"github.com/goliatone/go-content-blocks/internal/adapters/noop"
	"github.com/goliatone/go-content-blocks/internal/adapters/routes"
	"github.com/goliatone/go-content-blocks/internal/blocks"
	"github.com/goliatone/go-content-blocks/internal/catalog"
	"github.com/goliatone/go-content-blocks/internal/commands"
	blockscmd "github.com/goliatone/go-content-blocks/internal/commands/blocks"
	"github.com/goliatone/go-content-blocks/internal/hydration"
	"github.com/goliatone/go-content-blocks/internal/logging"
	"github.com/goliatone/go-content-blocks/internal/logging/gologger"
	"github.com/goliatone/go-content-blocks/internal/media"
	"github.com/goliatone/go-content-blocks/internal/runtimeconfig"
	"github.com/goliatone/go-content-blocks/internal/showcase"
	"github.com/goliatone/go-content-blocks/pkg/interfaces"
	repocache "github.com/goliatone/go-repository-cache/cache"
	urlkit "github.com/goliatone/go-urlkit"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Container wires module dependencies from a runtime configuration.
type Container struct {
	Config runtimeconfig.Config

	loggerProvider interfaces.LoggerProvider

	bunDB         *bun.DB
	ownsDB        bool
	migrations    fs.FS
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	registry      *blocks.Registry
	blockTypeRepo blocks.BlockTypeRepository
	libraryRepo   blocks.LibraryRepository
	instanceRepo  blocks.InstanceRepository

	entities     interfaces.EntityLookup
	urlParams    interfaces.URLParameterResolver
	files        interfaces.FileResolver
	videoFetcher interfaces.VideoMetadataFetcher
	routeManager *urlkit.RouteManager
	hooks        []hydration.InstanceHook

	blockSvc      blocks.Service
	videos        *media.Resolver
	engine        *hydration.Engine
	generator     *showcase.Generator
	catalogLoader *catalog.Loader

	syncRegistry  *blockscmd.SyncBlockRegistryHandler
	syncCatalog   *blockscmd.SyncCatalogHandler
	duplicateHost *commands.Handler[blockscmd.DuplicateHostCommand]
	deleteHost    *commands.Handler[blockscmd.DeleteHostCommand]
	checkLibrary  *commands.Handler[blockscmd.CheckLibraryCommand]
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithLoggerProvider overrides the provider built from the logging config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		if provider != nil {
			c.loggerProvider = provider
		}
	}
}

// WithLogger routes every module logger to logger.
func WithLogger(logger interfaces.Logger) Option {
	if logger == nil {
		return func(*Container) {}
	}
	return WithLoggerProvider(interfaces.LoggerProviderFunc(func(string) interfaces.Logger {
		return logger
	}))
}

// WithCache overrides the default cache service.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithBunDB injects an open database; it takes precedence over the storage config.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithMigrations sets the migration files applied when Storage.AutoMigrate is on.
func WithMigrations(fsys fs.FS) Option {
	return func(c *Container) {
		c.migrations = fsys
	}
}

// WithBlockService overrides the default block service binding.
func WithBlockService(svc blocks.Service) Option {
	return func(c *Container) {
		c.blockSvc = svc
	}
}

// WithRegistry overrides the registry the block service syncs from.
func WithRegistry(registry *blocks.Registry) Option {
	return func(c *Container) {
		if registry != nil {
			c.registry = registry
		}
	}
}

// WithEntityLookup wires the host application's entity lookup.
func WithEntityLookup(lookup interfaces.EntityLookup) Option {
	return func(c *Container) {
		if lookup != nil {
			c.entities = lookup
		}
	}
}

// WithURLParameterResolver overrides the route based internal link resolver.
func WithURLParameterResolver(resolver interfaces.URLParameterResolver) Option {
	return func(c *Container) {
		if resolver != nil {
			c.urlParams = resolver
		}
	}
}

// WithFileResolver wires the resolver for image and file handles.
func WithFileResolver(resolver interfaces.FileResolver) Option {
	return func(c *Container) {
		if resolver != nil {
			c.files = resolver
		}
	}
}

// WithVideoMetadataFetcher overrides the configured video metadata source.
func WithVideoMetadataFetcher(fetcher interfaces.VideoMetadataFetcher) Option {
	return func(c *Container) {
		if fetcher != nil {
			c.videoFetcher = fetcher
		}
	}
}

// WithInstanceHook appends an instance-init hook to the hydration engine.
func WithInstanceHook(hook hydration.InstanceHook) Option {
	return func(c *Container) {
		if hook != nil {
			c.hooks = append(c.hooks, hook)
		}
	}
}

// NewContainer creates a container with the provided configuration.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cacheTTL := cfg.Cache.DefaultTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	c := &Container{
		Config:        cfg,
		cacheTTL:      cacheTTL,
		registry:      blocks.NewRegistry(),
		blockTypeRepo: blocks.NewMemoryBlockTypeRepository(),
		libraryRepo:   blocks.NewMemoryLibraryRepository(),
		instanceRepo:  blocks.NewMemoryInstanceRepository(),
		entities:      noop.Entities(),
		files:         noop.Files(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if err := c.configureLoggerProvider(); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	if err := c.configureStorage(); err != nil {
		return nil, err
	}
	c.configureRepositories()
	c.configureLinks()
	c.configureVideos()

	if c.blockSvc == nil {
		c.blockSvc = blocks.NewService(
			c.blockTypeRepo,
			c.libraryRepo,
			c.instanceRepo,
			blocks.WithRegistry(c.registry),
			blocks.WithLogger(logging.BlocksLogger(c.loggerProvider)),
		)
	}

	engineOpts := []hydration.Option{
		hydration.WithEntityLookup(c.entities),
		hydration.WithURLParameterResolver(c.urlParams),
		hydration.WithVideoResolver(c.videos),
		hydration.WithLogger(logging.HydrationLogger(c.loggerProvider)),
	}
	for _, hook := range c.hooks {
		engineOpts = append(engineOpts, hydration.WithInstanceHook(hook))
	}
	c.engine = hydration.NewEngine(hydration.Config{
		RootTemplateDir:   cfg.Hydration.RootTemplateDir,
		TemplateExtension: cfg.Hydration.TemplateExtension,
		DefaultGroupKey:   cfg.Hydration.DefaultGroupKey,
	}, engineOpts...)

	if cfg.Showcase.Enabled {
		c.generator = showcase.NewGenerator(c.engine, showcase.Config{
			RootTemplateDir: cfg.Showcase.RootTemplateDir,
			ListRepetitions: cfg.Showcase.ListRepetitions,
			MaxCombinations: cfg.Showcase.MaxCombinations,
			Seed:            cfg.Showcase.Seed,
			DefaultGroupKey: cfg.Hydration.DefaultGroupKey,
		}, showcase.WithLogger(logging.ShowcaseLogger(c.loggerProvider)))
	}

	c.catalogLoader = catalog.NewLoader(catalog.WithLogger(logging.CatalogLogger(c.loggerProvider)))
	c.configureCommands()

	if cfg.Catalog.SyncOnStart {
		if err := c.syncCatalog.Execute(context.Background(), blockscmd.SyncCatalogCommand{Dir: cfg.Catalog.Dir}); err != nil {
			c.Close()
			return nil, err
		}
	}

	return c, nil
}

func (c *Container) configureLoggerProvider() error {
	if c.loggerProvider != nil {
		return nil
	}
	switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.FromRuntime(c.Config.Logging))
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	}
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories() {
	if c.bunDB == nil {
		return
	}
	c.blockTypeRepo = blocks.NewBunBlockTypeRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	c.libraryRepo = blocks.NewBunLibraryRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	c.instanceRepo = blocks.NewBunInstanceRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
}

func (c *Container) configureLinks() {
	if c.urlParams != nil {
		return
	}

	links := c.Config.Links
	if links.RouteConfig == nil {
		c.urlParams = noop.URLParameters()
		return
	}

	c.routeManager = urlkit.NewRouteManager(links.RouteConfig)
	c.urlParams = routes.NewResolver(routes.Options{
		Manager:      c.routeManager,
		DefaultGroup: strings.TrimSpace(links.DefaultGroup),
		Routes:       links.Routes,
		IDParam:      links.IDParam,
	})
}

func (c *Container) configureVideos() {
	video := c.Config.Video
	if c.videoFetcher == nil && video.EnableVimeoMetadata {
		c.videoFetcher = media.NewVimeoFetcher(video.VimeoEndpoint, nil, video.Timeout)
	}
	opts := []media.ResolverOption{
		media.WithTimeout(video.Timeout),
		media.WithLogger(logging.MediaLogger(c.loggerProvider)),
	}
	if c.videoFetcher != nil {
		opts = append(opts, media.WithMetadataFetcher(c.videoFetcher))
	}
	c.videos = media.NewResolver(opts...)
}

func (c *Container) configureCommands() {
	logger := commands.CommandLogger(c.loggerProvider, "blocks")
	gates := blockscmd.FeatureGates{
		BlocksEnabled: func() bool { return c.Config.Commands.Enabled },
	}
	timeout := c.Config.Commands.Timeout

	c.syncRegistry = blockscmd.NewSyncBlockRegistryHandler(c.blockSvc, logger, gates,
		blockscmd.SyncBlockRegistryWithTimeout(timeout))
	c.syncCatalog = blockscmd.NewSyncCatalogHandler(c.blockSvc, c.registry, logger, gates,
		blockscmd.SyncCatalogWithTimeout(timeout),
		blockscmd.SyncCatalogWithLoader(c.catalogLoader))
	c.duplicateHost = blockscmd.NewDuplicateHostHandler(c.blockSvc, logger, gates,
		commands.WithTimeout[blockscmd.DuplicateHostCommand](timeout))
	c.deleteHost = blockscmd.NewDeleteHostHandler(c.blockSvc, logger, gates,
		commands.WithTimeout[blockscmd.DeleteHostCommand](timeout))
	c.checkLibrary = blockscmd.NewCheckLibraryHandler(c.blockSvc, logger, gates,
		commands.WithTimeout[blockscmd.CheckLibraryCommand](timeout))
}

// Close releases the database opened from the storage config.
func (c *Container) Close() error {
	if c == nil || c.bunDB == nil || !c.ownsDB {
		return nil
	}
	c.ownsDB = false
	return c.bunDB.Close()
}

func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

func (c *Container) BunDB() *bun.DB {
	return c.bunDB
}

func (c *Container) Registry() *blocks.Registry {
	return c.registry
}

func (c *Container) BlockService() blocks.Service {
	return c.blockSvc
}

func (c *Container) HydrationEngine() *hydration.Engine {
	return c.engine
}

// ShowcaseGenerator returns nil when the showcase is disabled.
func (c *Container) ShowcaseGenerator() *showcase.Generator {
	return c.generator
}

func (c *Container) CatalogLoader() *catalog.Loader {
	return c.catalogLoader
}

func (c *Container) FileResolver() interfaces.FileResolver {
	return c.files
}

func (c *Container) SyncRegistryHandler() *blockscmd.SyncBlockRegistryHandler {
	return c.syncRegistry
}

func (c *Container) SyncCatalogHandler() *blockscmd.SyncCatalogHandler {
	return c.syncCatalog
}

// DuplicateHost runs the duplicate host command.
func (c *Container) DuplicateHost(ctx context.Context, source, target blocks.Host) error {
	return c.duplicateHost.Execute(ctx, blockscmd.DuplicateHostCommand{Source: source, Target: target})
}

// DeleteHost runs the delete host command.
func (c *Container) DeleteHost(ctx context.Context, host blocks.Host) error {
	return c.deleteHost.Execute(ctx, blockscmd.DeleteHostCommand{Host: host})
}

// CheckLibrary runs the library cycle check command.
func (c *Container) CheckLibrary(ctx context.Context, libraryID uuid.UUID) error {
	return c.checkLibrary.Execute(ctx, blockscmd.CheckLibraryCommand{LibraryID: libraryID})
}
