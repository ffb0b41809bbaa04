package blocks

import (
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewBlockTypeRepository creates a repository for BlockType entities.
func NewBlockTypeRepository(db *bun.DB) repository.Repository[*BlockType] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*BlockType]{
		NewRecord:          func() *BlockType { return &BlockType{} },
		GetID:              func(b *BlockType) uuid.UUID { return b.ID },
		SetID:              func(b *BlockType, id uuid.UUID) { b.ID = id },
		GetIdentifier:      func() string { return "keyname" },
		GetIdentifierValue: func(b *BlockType) string { return b.Keyname },
	})
}

// NewLibraryRepository creates a repository for Library entities.
func NewLibraryRepository(db *bun.DB) repository.Repository[*Library] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Library]{
		NewRecord:          func() *Library { return &Library{} },
		GetID:              func(l *Library) uuid.UUID { return l.ID },
		SetID:              func(l *Library, id uuid.UUID) { l.ID = id },
		GetIdentifier:      func() string { return "keyname" },
		GetIdentifierValue: func(l *Library) string { return l.Keyname },
	})
}

// NewInstanceRepository creates a repository for Instance entities.
func NewInstanceRepository(db *bun.DB) repository.Repository[*Instance] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Instance]{
		NewRecord:          func() *Instance { return &Instance{} },
		GetID:              func(inst *Instance) uuid.UUID { return inst.ID },
		SetID:              func(inst *Instance, id uuid.UUID) { inst.ID = id },
		GetIdentifier:      func() string { return "id" },
		GetIdentifierValue: func(inst *Instance) string { return inst.ID.String() },
	})
}
