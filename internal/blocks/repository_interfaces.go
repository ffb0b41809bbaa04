package blocks

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// BlockTypeRepository exposes persistence operations for block types.
type BlockTypeRepository interface {
	Create(ctx context.Context, blockType *BlockType) (*BlockType, error)
	GetByID(ctx context.Context, id uuid.UUID) (*BlockType, error)
	GetByKeyname(ctx context.Context, keyname string) (*BlockType, error)
	List(ctx context.Context) ([]*BlockType, error)
	Update(ctx context.Context, blockType *BlockType) (*BlockType, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// LibraryRepository exposes persistence operations for libraries.
type LibraryRepository interface {
	Create(ctx context.Context, library *Library) (*Library, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Library, error)
	GetByKeyname(ctx context.Context, keyname string) (*Library, error)
	List(ctx context.Context) ([]*Library, error)
	Update(ctx context.Context, library *Library) (*Library, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// InstanceRepository exposes persistence operations for block instances.
type InstanceRepository interface {
	Create(ctx context.Context, instance *Instance) (*Instance, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Instance, error)
	ListByHost(ctx context.Context, host Host) ([]*Instance, error)
	ListByLibrary(ctx context.Context, libraryID uuid.UUID) ([]*Instance, error)
	Update(ctx context.Context, instance *Instance) (*Instance, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByHost(ctx context.Context, host Host) error
	// ReplaceByHost swaps the content of host in one step. On failure the
	// previous content is left in place.
	ReplaceByHost(ctx context.Context, host Host, instances []*Instance) ([]*Instance, error)
}

// NotFoundError is returned when a block resource cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}
