package contentblocks

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-content-blocks/internal/blocks"
	blockscmd "github.com/goliatone/go-content-blocks/internal/commands/blocks"
	"github.com/goliatone/go-content-blocks/internal/di"
	"github.com/goliatone/go-content-blocks/internal/hydration"
	"github.com/goliatone/go-content-blocks/internal/showcase"
	"github.com/goliatone/go-content-blocks/pkg/interfaces"
	"github.com/google/uuid"
)

// BlockService exports the blocks service contract.
type BlockService = blocks.Service

// Host identifies the record block instances are attached to.
type Host = blocks.Host

// RenderTree is the hydrated output of a host.
type RenderTree = hydration.Tree

// InstanceEvent is handed to instance-init hooks.
type InstanceEvent = hydration.InstanceEvent

// InstanceHook observes instances before they are hydrated.
type InstanceHook = hydration.InstanceHook

// ShowcaseOption customises a Showcase call.
type ShowcaseOption = showcase.GenerateOption

var ErrShowcaseDisabled = errors.New("contentblocks: showcase disabled")

// ShowcaseContainer restricts a showcase to one container grouping key.
func ShowcaseContainer(key string) ShowcaseOption {
	return showcase.WithContainer(key)
}

// Module is the entry point of the content blocks runtime.
type Module struct {
	container *di.Container
}

// New builds a module from cfg. The embedded migrations are applied when
// Storage.AutoMigrate is enabled.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	options := append([]di.Option{di.WithMigrations(MigrationsFS())}, opts...)
	container, err := di.NewContainer(cfg, options...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Close releases the database opened from the storage config.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}

// Blocks returns the configured block service.
func (m *Module) Blocks() BlockService {
	return m.container.BlockService()
}

// Render loads the content of host and hydrates it. Slots restricts the
// result to the named slots.
func (m *Module) Render(ctx context.Context, host Host, slots ...string) (*RenderTree, error) {
	instances, err := m.container.BlockService().LoadHost(ctx, host)
	if err != nil {
		return nil, err
	}
	return m.container.HydrationEngine().Hydrate(ctx, host, instances, hydration.WithSlots(slots...)), nil
}

// Showcase renders every stored block type in each of its combinations.
func (m *Module) Showcase(ctx context.Context, opts ...ShowcaseOption) (*RenderTree, error) {
	generator := m.container.ShowcaseGenerator()
	if generator == nil {
		return nil, ErrShowcaseDisabled
	}
	types, err := m.container.BlockService().ListBlockTypes(ctx)
	if err != nil {
		return nil, err
	}
	return generator.Generate(ctx, types, opts...)
}

// SyncCatalog loads the block types of a catalog directory and stores them.
func (m *Module) SyncCatalog(ctx context.Context, dir string) error {
	return m.container.SyncCatalogHandler().Execute(ctx, blockscmd.SyncCatalogCommand{Dir: dir})
}

// DuplicateHost copies the content of source onto target.
func (m *Module) DuplicateHost(ctx context.Context, source, target Host) error {
	return m.container.DuplicateHost(ctx, source, target)
}

// DeleteHost removes the content of host.
func (m *Module) DeleteHost(ctx context.Context, host Host) error {
	return m.container.DeleteHost(ctx, host)
}

// CheckLibrary reports a library content cycle as a validation error.
func (m *Module) CheckLibrary(ctx context.Context, libraryID uuid.UUID) error {
	return m.container.CheckLibrary(ctx, libraryID)
}

// ResolveFile resolves the image or file handle carried by a hydrated raw
// value node. It returns nil when the value carries no handle.
func (m *Module) ResolveFile(ctx context.Context, value *blocks.FieldValue) (*interfaces.ResolvedFile, error) {
	if value == nil {
		return nil, nil
	}
	handle := ""
	switch {
	case value.Image != nil && strings.TrimSpace(*value.Image) != "":
		handle = *value.Image
	case value.File != nil:
		handle = *value.File
	}
	if strings.TrimSpace(handle) == "" {
		return nil, nil
	}
	return m.container.FileResolver().ResolveFile(ctx, handle)
}
