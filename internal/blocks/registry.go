package blocks

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-slug"
)

// Registry stores block type definitions loaded from a catalog, keyed by
// normalised keyname. The last registration of a keyname wins.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]RegisterBlockTypeInput
}

// NewRegistry constructs an empty block type registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]RegisterBlockTypeInput)}
}

// Register records a definition. Entries without a usable keyname are ignored.
func (r *Registry) Register(input RegisterBlockTypeInput) {
	if r == nil {
		return
	}
	key := registryKey(input)
	if key == "" {
		return
	}
	input.Keyname = key

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.entries == nil {
		r.entries = make(map[string]RegisterBlockTypeInput)
	}
	r.entries[key] = input
}

// Get returns the definition registered under keyname.
func (r *Registry) Get(keyname string) (RegisterBlockTypeInput, bool) {
	if r == nil {
		return RegisterBlockTypeInput{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[NormalizeKeyname(keyname)]
	return entry, ok
}

// Len reports the number of registered definitions.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// List returns the registered definitions ordered by keyname.
func (r *Registry) List() []RegisterBlockTypeInput {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]RegisterBlockTypeInput, 0, len(r.entries))
	for _, entry := range r.entries {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Keyname < out[j].Keyname })
	return out
}

// NormalizeKeyname slugifies a keyname, keeping the trimmed input when it
// cannot be normalised.
func NormalizeKeyname(value string) string {
	candidate := strings.TrimSpace(value)
	if candidate == "" {
		return ""
	}
	normalized, err := slug.Normalize(candidate)
	if err != nil || normalized == "" {
		return candidate
	}
	return normalized
}

func registryKey(input RegisterBlockTypeInput) string {
	candidate := strings.TrimSpace(input.Keyname)
	if candidate == "" {
		candidate = strings.TrimSpace(input.Name)
	}
	return NormalizeKeyname(candidate)
}
