package blockscmd

import (
	"context"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-content-blocks/internal/blocks"
	"github.com/goliatone/go-content-blocks/internal/catalog"
	"github.com/goliatone/go-content-blocks/internal/commands"
	"github.com/goliatone/go-content-blocks/internal/logging"
	"github.com/goliatone/go-content-blocks/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

const (
	syncBlockRegistryMessageType = "contentblocks.blocks.registry.sync"
	syncCatalogMessageType       = "contentblocks.blocks.catalog.sync"
)

var (
	ErrBlocksModuleDisabled = errors.New("blocks command: module disabled")
	ErrRegistryRequired     = errors.New("blocks command: registry required")
)

// FeatureGates exposes the toggle required by block command handlers.
type FeatureGates struct {
	BlocksEnabled func() bool
}

func (g FeatureGates) blocksEnabled() bool {
	if g.BlocksEnabled == nil {
		return true
	}
	return g.BlocksEnabled()
}

// SyncBlockRegistryCommand re-applies registered block definitions to the persistence layer.
type SyncBlockRegistryCommand struct{}

// Type implements command.Message.
func (SyncBlockRegistryCommand) Type() string { return syncBlockRegistryMessageType }

// Validate satisfies command.Message.
func (SyncBlockRegistryCommand) Validate() error {
	return validation.ValidateStruct(&SyncBlockRegistryCommand{})
}

// SyncBlockRegistryHandler wraps block registry synchronisation.
type SyncBlockRegistryHandler struct {
	service blocks.Service
	logger  interfaces.Logger
	gates   FeatureGates
	timeout time.Duration
}

// SyncBlockRegistryOption customises the block sync handler.
type SyncBlockRegistryOption func(*SyncBlockRegistryHandler)

// SyncBlockRegistryWithTimeout overrides the default execution timeout.
func SyncBlockRegistryWithTimeout(timeout time.Duration) SyncBlockRegistryOption {
	return func(h *SyncBlockRegistryHandler) {
		h.timeout = timeout
	}
}

// NewSyncBlockRegistryHandler constructs a handler wired to the provided block service.
func NewSyncBlockRegistryHandler(service blocks.Service, logger interfaces.Logger, gates FeatureGates, opts ...SyncBlockRegistryOption) *SyncBlockRegistryHandler {
	handler := &SyncBlockRegistryHandler{
		service: service,
		logger:  commands.EnsureLogger(logger),
		gates:   gates,
		timeout: commands.DefaultCommandTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(handler)
		}
	}
	return handler
}

// Execute satisfies command.Commander[SyncBlockRegistryCommand].
func (h *SyncBlockRegistryHandler) Execute(ctx context.Context, msg SyncBlockRegistryCommand) error {
	if err := commands.WrapValidationError(command.ValidateMessage(msg)); err != nil {
		return err
	}
	ctx = commands.EnsureContext(ctx)
	ctx, cancel := commands.WithCommandTimeout(ctx, h.timeout)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return commands.WrapContextError(err)
	}
	if !h.gates.blocksEnabled() {
		return commands.WrapExecuteError(ErrBlocksModuleDisabled)
	}
	if err := h.service.SyncRegistry(ctx); err != nil {
		return commands.WrapExecuteError(err)
	}

	logging.WithFields(h.logger, map[string]any{
		"operation": "blocks.registry.sync",
	}).Info("blocks.command.registry.sync.completed")
	return nil
}

// SyncCatalogCommand loads a catalog directory into the registry and
// synchronises the result with storage.
type SyncCatalogCommand struct {
	Dir string `json:"dir"`
}

// Type implements command.Message.
func (SyncCatalogCommand) Type() string { return syncCatalogMessageType }

// Validate satisfies command.Message.
func (m SyncCatalogCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Dir, validation.Required, validation.By(notBlank)),
	)
}

// CatalogSyncResult reports the keynames registered by a catalog sync.
type CatalogSyncResult struct {
	Keynames []string
}

// SyncCatalogHandler loads catalog definitions and applies them.
type SyncCatalogHandler struct {
	service  blocks.Service
	registry *blocks.Registry
	loader   *catalog.Loader
	logger   interfaces.Logger
	gates    FeatureGates
	timeout  time.Duration
	onResult func(CatalogSyncResult)
}

// SyncCatalogOption customises the catalog sync handler.
type SyncCatalogOption func(*SyncCatalogHandler)

// SyncCatalogWithTimeout overrides the default execution timeout.
func SyncCatalogWithTimeout(timeout time.Duration) SyncCatalogOption {
	return func(h *SyncCatalogHandler) {
		h.timeout = timeout
	}
}

// SyncCatalogWithLoader overrides the catalog loader.
func SyncCatalogWithLoader(loader *catalog.Loader) SyncCatalogOption {
	return func(h *SyncCatalogHandler) {
		if loader != nil {
			h.loader = loader
		}
	}
}

// SyncCatalogWithResult registers a callback receiving the synced keynames.
func SyncCatalogWithResult(fn func(CatalogSyncResult)) SyncCatalogOption {
	return func(h *SyncCatalogHandler) {
		h.onResult = fn
	}
}

// NewSyncCatalogHandler wires the handler to the registry the block service
// synchronises from.
func NewSyncCatalogHandler(service blocks.Service, registry *blocks.Registry, logger interfaces.Logger, gates FeatureGates, opts ...SyncCatalogOption) *SyncCatalogHandler {
	logger = commands.EnsureLogger(logger)
	handler := &SyncCatalogHandler{
		service:  service,
		registry: registry,
		loader:   catalog.NewLoader(catalog.WithLogger(logger)),
		logger:   logger,
		gates:    gates,
		timeout:  commands.DefaultCommandTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(handler)
		}
	}
	return handler
}

// Execute satisfies command.Commander[SyncCatalogCommand].
func (h *SyncCatalogHandler) Execute(ctx context.Context, msg SyncCatalogCommand) error {
	if err := commands.WrapValidationError(command.ValidateMessage(msg)); err != nil {
		return err
	}
	ctx = commands.EnsureContext(ctx)
	ctx, cancel := commands.WithCommandTimeout(ctx, h.timeout)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return commands.WrapContextError(err)
	}
	if !h.gates.blocksEnabled() {
		return commands.WrapExecuteError(ErrBlocksModuleDisabled)
	}
	if h.registry == nil {
		return commands.WrapExecuteError(ErrRegistryRequired)
	}

	loaded, err := h.loader.LoadDir(ctx, strings.TrimSpace(msg.Dir))
	if err != nil {
		return commands.WrapValidationError(err)
	}
	result := CatalogSyncResult{Keynames: make([]string, 0, len(loaded.BlockTypes))}
	for _, input := range loaded.BlockTypes {
		h.registry.Register(input)
		result.Keynames = append(result.Keynames, blocks.NormalizeKeyname(input.Keyname))
	}
	if err := h.service.SyncRegistry(ctx); err != nil {
		return commands.WrapExecuteError(err)
	}
	if h.onResult != nil {
		h.onResult(result)
	}

	logging.WithFields(h.logger, map[string]any{
		"operation":   "blocks.catalog.sync",
		"dir":         msg.Dir,
		"block_types": len(result.Keynames),
	}).Info("blocks.command.catalog.sync.completed")
	return nil
}

func notBlank(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
}
