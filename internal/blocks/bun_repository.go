package blocks

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunBlockTypeRepository implements BlockTypeRepository with optional caching.
type BunBlockTypeRepository struct {
	repo repository.Repository[*BlockType]
}

// NewBunBlockTypeRepository creates a block type repository without caching.
func NewBunBlockTypeRepository(db *bun.DB) *BunBlockTypeRepository {
	return NewBunBlockTypeRepositoryWithCache(db, nil, nil)
}

// NewBunBlockTypeRepositoryWithCache creates a block type repository with caching services.
func NewBunBlockTypeRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunBlockTypeRepository {
	base := NewBlockTypeRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
	}
	return &BunBlockTypeRepository{repo: base}
}

func (r *BunBlockTypeRepository) Create(ctx context.Context, blockType *BlockType) (*BlockType, error) {
	record, err := r.repo.Create(ctx, blockType)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *BunBlockTypeRepository) GetByID(ctx context.Context, id uuid.UUID) (*BlockType, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "block_type", id.String())
	}
	return record, nil
}

func (r *BunBlockTypeRepository) GetByKeyname(ctx context.Context, keyname string) (*BlockType, error) {
	record, err := r.repo.GetByIdentifier(ctx, keyname)
	if err != nil {
		return nil, mapRepositoryError(err, "block_type", keyname)
	}
	return record, nil
}

func (r *BunBlockTypeRepository) List(ctx context.Context) ([]*BlockType, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.keyname ASC")
	}))
	return records, err
}

func (r *BunBlockTypeRepository) Update(ctx context.Context, blockType *BlockType) (*BlockType, error) {
	updated, err := r.repo.Update(ctx, blockType,
		repository.UpdateByID(blockType.ID.String()),
		repository.UpdateColumns(
			"name",
			"keyname",
			"category",
			"description",
			"enabled",
			"is_container",
			"guideline_visible",
			"template_path",
			"fields",
			"themes",
			"options",
			"layouts",
			"restrictions",
			"updated_at",
		),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "block_type", blockType.ID.String())
	}
	return updated, nil
}

func (r *BunBlockTypeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.repo.Delete(ctx, &BlockType{ID: id})
}

// BunLibraryRepository implements LibraryRepository with optional caching.
type BunLibraryRepository struct {
	repo repository.Repository[*Library]
}

// NewBunLibraryRepository creates a library repository without caching.
func NewBunLibraryRepository(db *bun.DB) *BunLibraryRepository {
	return NewBunLibraryRepositoryWithCache(db, nil, nil)
}

// NewBunLibraryRepositoryWithCache creates a library repository with caching services.
func NewBunLibraryRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunLibraryRepository {
	base := NewLibraryRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
	}
	return &BunLibraryRepository{repo: base}
}

func (r *BunLibraryRepository) Create(ctx context.Context, library *Library) (*Library, error) {
	record, err := r.repo.Create(ctx, library)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *BunLibraryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Library, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "block_library", id.String())
	}
	return record, nil
}

func (r *BunLibraryRepository) GetByKeyname(ctx context.Context, keyname string) (*Library, error) {
	record, err := r.repo.GetByIdentifier(ctx, keyname)
	if err != nil {
		return nil, mapRepositoryError(err, "block_library", keyname)
	}
	return record, nil
}

func (r *BunLibraryRepository) List(ctx context.Context) ([]*Library, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.keyname ASC")
	}))
	return records, err
}

func (r *BunLibraryRepository) Update(ctx context.Context, library *Library) (*Library, error) {
	updated, err := r.repo.Update(ctx, library,
		repository.UpdateByID(library.ID.String()),
		repository.UpdateColumns(
			"name",
			"keyname",
			"accessible_in_content",
			"is_enabled",
			"is_navigation_menu",
			"template_path",
			"css_class",
			"restrictions",
			"updated_at",
		),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "block_library", library.ID.String())
	}
	return updated, nil
}

func (r *BunLibraryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.repo.Delete(ctx, &Library{ID: id})
}

// BunInstanceRepository implements InstanceRepository with optional caching.
type BunInstanceRepository struct {
	db   *bun.DB
	repo repository.Repository[*Instance]
}

// NewBunInstanceRepository creates a block instance repository without caching.
func NewBunInstanceRepository(db *bun.DB) *BunInstanceRepository {
	return NewBunInstanceRepositoryWithCache(db, nil, nil)
}

// NewBunInstanceRepositoryWithCache creates a block instance repository with caching services.
func NewBunInstanceRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunInstanceRepository {
	base := NewInstanceRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
	}
	return &BunInstanceRepository{db: db, repo: base}
}

func (r *BunInstanceRepository) Create(ctx context.Context, instance *Instance) (*Instance, error) {
	record, err := r.repo.Create(ctx, instance)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *BunInstanceRepository) GetByID(ctx context.Context, id uuid.UUID) (*Instance, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "block_instance", id.String())
	}
	return record, nil
}

func (r *BunInstanceRepository) ListByHost(ctx context.Context, host Host) ([]*Instance, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.host_class = ?", host.Class).
				Where("?TableAlias.host_id = ?", host.ID)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.position ASC, ?TableAlias.created_at ASC")
		}),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "block_instance", host.String())
	}
	return records, nil
}

func (r *BunInstanceRepository) ListByLibrary(ctx context.Context, libraryID uuid.UUID) ([]*Instance, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.library_id = ?", libraryID)
	}))
	if err != nil {
		return nil, mapRepositoryError(err, "block_instance", libraryID.String())
	}
	return records, nil
}

func (r *BunInstanceRepository) Update(ctx context.Context, instance *Instance) (*Instance, error) {
	updated, err := r.repo.Update(ctx, instance,
		repository.UpdateByID(instance.ID.String()),
		repository.UpdateColumns(
			"slot",
			"position",
			"theme_id",
			"option_id",
			"layout_id",
			"field_values",
			"updated_at",
		),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "block_instance", instance.ID.String())
	}
	return updated, nil
}

func (r *BunInstanceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.repo.Delete(ctx, &Instance{ID: id})
}

func (r *BunInstanceRepository) DeleteByHost(ctx context.Context, host Host) error {
	records, err := r.ListByHost(ctx, host)
	if err != nil {
		return err
	}
	for _, record := range records {
		if err := r.repo.Delete(ctx, &Instance{ID: record.ID}); err != nil {
			return fmt.Errorf("delete block instance %s: %w", record.ID, err)
		}
	}
	return nil
}

func (r *BunInstanceRepository) ReplaceByHost(ctx context.Context, host Host, instances []*Instance) ([]*Instance, error) {
	if r.db == nil {
		return nil, fmt.Errorf("block instance repository: database not configured")
	}

	stored := make([]*Instance, 0, len(instances))
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := r.repo.DeleteWhereTx(ctx, tx, func(q *bun.DeleteQuery) *bun.DeleteQuery {
			return q.Where("host_class = ?", host.Class).Where("host_id = ?", host.ID)
		}); err != nil {
			return fmt.Errorf("delete block instances: %w", err)
		}
		for _, instance := range instances {
			cloned := instance.Clone()
			cloned.HostClass = host.Class
			cloned.HostID = host.ID
			cloned.BlockType = nil
			cloned.Library = nil
			created, err := r.repo.CreateTx(ctx, tx, cloned)
			if err != nil {
				return fmt.Errorf("create block instance %s: %w", cloned.ID, err)
			}
			stored = append(stored, created)
		}
		return nil
	})
	if err != nil {
		return nil, mapRepositoryError(err, "block_instance", host.String())
	}
	return stored, nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}

	if errors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: strings.TrimSpace(key)}
	}

	return fmt.Errorf("%s repository error: %w", resource, err)
}
