package blocks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// NewMemoryBlockTypeRepository constructs an "in memory" block type repository.
func NewMemoryBlockTypeRepository() BlockTypeRepository {
	return &memoryBlockTypeRepository{
		byID:      make(map[uuid.UUID]*BlockType),
		byKeyname: make(map[string]uuid.UUID),
	}
}

type memoryBlockTypeRepository struct {
	mu        sync.RWMutex
	byID      map[uuid.UUID]*BlockType
	byKeyname map[string]uuid.UUID
}

func (m *memoryBlockTypeRepository) Create(_ context.Context, blockType *BlockType) (*BlockType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := blockType.Clone()
	m.byID[cloned.ID] = cloned
	if cloned.Keyname != "" {
		m.byKeyname[cloned.Keyname] = cloned.ID
	}
	return cloned.Clone(), nil
}

func (m *memoryBlockTypeRepository) GetByID(_ context.Context, id uuid.UUID) (*BlockType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "block_type", Key: id.String()}
	}
	return record.Clone(), nil
}

func (m *memoryBlockTypeRepository) GetByKeyname(_ context.Context, keyname string) (*BlockType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byKeyname[strings.TrimSpace(keyname)]
	if !ok {
		return nil, &NotFoundError{Resource: "block_type", Key: keyname}
	}
	return m.byID[id].Clone(), nil
}

func (m *memoryBlockTypeRepository) List(_ context.Context) ([]*BlockType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*BlockType, 0, len(m.byID))
	for _, record := range m.byID {
		out = append(out, record.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Keyname < out[j].Keyname })
	return out, nil
}

func (m *memoryBlockTypeRepository) Update(_ context.Context, blockType *BlockType) (*BlockType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[blockType.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "block_type", Key: blockType.ID.String()}
	}
	if existing.Keyname != blockType.Keyname {
		delete(m.byKeyname, existing.Keyname)
	}
	cloned := blockType.Clone()
	m.byID[cloned.ID] = cloned
	if cloned.Keyname != "" {
		m.byKeyname[cloned.Keyname] = cloned.ID
	}
	return cloned.Clone(), nil
}

func (m *memoryBlockTypeRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[id]
	if !ok {
		return &NotFoundError{Resource: "block_type", Key: id.String()}
	}
	delete(m.byKeyname, existing.Keyname)
	delete(m.byID, id)
	return nil
}

// NewMemoryLibraryRepository constructs an "in memory" library repository.
func NewMemoryLibraryRepository() LibraryRepository {
	return &memoryLibraryRepository{
		byID:      make(map[uuid.UUID]*Library),
		byKeyname: make(map[string]uuid.UUID),
	}
}

type memoryLibraryRepository struct {
	mu        sync.RWMutex
	byID      map[uuid.UUID]*Library
	byKeyname map[string]uuid.UUID
}

func (m *memoryLibraryRepository) Create(_ context.Context, library *Library) (*Library, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := library.Clone()
	m.byID[cloned.ID] = cloned
	if cloned.Keyname != "" {
		m.byKeyname[cloned.Keyname] = cloned.ID
	}
	return cloned.Clone(), nil
}

func (m *memoryLibraryRepository) GetByID(_ context.Context, id uuid.UUID) (*Library, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "block_library", Key: id.String()}
	}
	return record.Clone(), nil
}

func (m *memoryLibraryRepository) GetByKeyname(_ context.Context, keyname string) (*Library, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byKeyname[strings.TrimSpace(keyname)]
	if !ok {
		return nil, &NotFoundError{Resource: "block_library", Key: keyname}
	}
	return m.byID[id].Clone(), nil
}

func (m *memoryLibraryRepository) List(_ context.Context) ([]*Library, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Library, 0, len(m.byID))
	for _, record := range m.byID {
		out = append(out, record.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Keyname < out[j].Keyname })
	return out, nil
}

func (m *memoryLibraryRepository) Update(_ context.Context, library *Library) (*Library, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[library.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "block_library", Key: library.ID.String()}
	}
	if existing.Keyname != library.Keyname {
		delete(m.byKeyname, existing.Keyname)
	}
	cloned := library.Clone()
	m.byID[cloned.ID] = cloned
	if cloned.Keyname != "" {
		m.byKeyname[cloned.Keyname] = cloned.ID
	}
	return cloned.Clone(), nil
}

func (m *memoryLibraryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[id]
	if !ok {
		return &NotFoundError{Resource: "block_library", Key: id.String()}
	}
	delete(m.byKeyname, existing.Keyname)
	delete(m.byID, id)
	return nil
}

// NewMemoryInstanceRepository constructs an "in memory" block instance repository.
func NewMemoryInstanceRepository() InstanceRepository {
	return &memoryInstanceRepository{
		byID:   make(map[uuid.UUID]*Instance),
		byHost: make(map[Host][]uuid.UUID),
	}
}

type memoryInstanceRepository struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*Instance
	byHost map[Host][]uuid.UUID
}

func (m *memoryInstanceRepository) Create(_ context.Context, instance *Instance) (*Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := stripResolved(instance)
	m.byID[cloned.ID] = cloned
	host := cloned.Host()
	m.byHost[host] = append(m.byHost[host], cloned.ID)
	return cloned.Clone(), nil
}

func (m *memoryInstanceRepository) GetByID(_ context.Context, id uuid.UUID) (*Instance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "block_instance", Key: id.String()}
	}
	return record.Clone(), nil
}

func (m *memoryInstanceRepository) ListByHost(_ context.Context, host Host) ([]*Instance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.byHost[host]
	out := make([]*Instance, 0, len(ids))
	for _, id := range ids {
		if record, ok := m.byID[id]; ok {
			out = append(out, record.Clone())
		}
	}
	// Slots keep placement order; only positions reorder.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (m *memoryInstanceRepository) ListByLibrary(_ context.Context, libraryID uuid.UUID) ([]*Instance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Instance, 0)
	for _, record := range m.byID {
		if record.LibraryID != nil && *record.LibraryID == libraryID {
			out = append(out, record.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (m *memoryInstanceRepository) Update(_ context.Context, instance *Instance) (*Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[instance.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "block_instance", Key: instance.ID.String()}
	}
	cloned := stripResolved(instance)
	cloned.HostClass = existing.HostClass
	cloned.HostID = existing.HostID
	m.byID[cloned.ID] = cloned
	return cloned.Clone(), nil
}

func (m *memoryInstanceRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byID[id]
	if !ok {
		return &NotFoundError{Resource: "block_instance", Key: id.String()}
	}
	host := existing.Host()
	m.byHost[host] = removeID(m.byHost[host], id)
	if len(m.byHost[host]) == 0 {
		delete(m.byHost, host)
	}
	delete(m.byID, id)
	return nil
}

func (m *memoryInstanceRepository) DeleteByHost(_ context.Context, host Host) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range m.byHost[host] {
		delete(m.byID, id)
	}
	delete(m.byHost, host)
	return nil
}

func (m *memoryInstanceRepository) ReplaceByHost(_ context.Context, host Host, instances []*Instance) ([]*Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	owned := make(map[uuid.UUID]struct{}, len(m.byHost[host]))
	for _, id := range m.byHost[host] {
		owned[id] = struct{}{}
	}
	seen := make(map[uuid.UUID]struct{}, len(instances))
	for _, instance := range instances {
		if _, dup := seen[instance.ID]; dup {
			return nil, fmt.Errorf("block instance %s: duplicate id", instance.ID)
		}
		seen[instance.ID] = struct{}{}
		if _, exists := m.byID[instance.ID]; exists {
			if _, mine := owned[instance.ID]; !mine {
				return nil, fmt.Errorf("block instance %s: id already in use", instance.ID)
			}
		}
	}

	for id := range owned {
		delete(m.byID, id)
	}
	delete(m.byHost, host)

	stored := make([]*Instance, 0, len(instances))
	for _, instance := range instances {
		cloned := stripResolved(instance)
		cloned.HostClass = host.Class
		cloned.HostID = host.ID
		m.byID[cloned.ID] = cloned
		m.byHost[host] = append(m.byHost[host], cloned.ID)
		stored = append(stored, cloned.Clone())
	}
	return stored, nil
}

func stripResolved(instance *Instance) *Instance {
	cloned := instance.Clone()
	cloned.BlockType = nil
	cloned.Library = nil
	return cloned
}

func removeID(ids []uuid.UUID, target uuid.UUID) []uuid.UUID {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}
