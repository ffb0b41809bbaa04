package blocks

import (
	"time"

	"github.com/goliatone/go-content-blocks/fields"
	"github.com/google/uuid"
)

// IDGenerator produces fresh identities.
type IDGenerator func() uuid.UUID

// Duplicable lists the node kinds handled by Duplicate.
type Duplicable interface {
	*Instance | *FieldValue | *FieldValueGroup | *BlockType
}

// Duplication carries the id generator and the old->new id table shared by
// every node duplicated through it. Field, theme, option and layout ids
// remapped by a block type duplication are rewritten on instances and values
// duplicated afterwards through the same context.
type Duplication struct {
	newID IDGenerator
	remap map[uuid.UUID]uuid.UUID
}

// NewDuplication returns a duplication context. A nil generator uses uuid.New.
func NewDuplication(newID IDGenerator) *Duplication {
	if newID == nil {
		newID = uuid.New
	}
	return &Duplication{
		newID: newID,
		remap: make(map[uuid.UUID]uuid.UUID),
	}
}

// Remapped returns the identity assigned to old during this duplication.
func (d *Duplication) Remapped(old uuid.UUID) (uuid.UUID, bool) {
	id, ok := d.remap[old]
	return id, ok
}

// Duplicate deep-copies node with fresh identities. The result never shares
// child nodes with the source.
func Duplicate[T Duplicable](d *Duplication, node T) T {
	switch n := any(node).(type) {
	case *Instance:
		return any(d.instance(n)).(T)
	case *FieldValue:
		return any(d.value(n)).(T)
	case *FieldValueGroup:
		return any(d.group(n)).(T)
	case *BlockType:
		return any(d.blockType(n)).(T)
	}
	return node
}

// DuplicateAll duplicates every node of nodes in order.
func DuplicateAll[T Duplicable](d *Duplication, nodes []T) []T {
	if nodes == nil {
		return nil
	}
	out := make([]T, len(nodes))
	for i, node := range nodes {
		out[i] = Duplicate(d, node)
	}
	return out
}

func (d *Duplication) fresh(old uuid.UUID) uuid.UUID {
	id := d.newID()
	if old != uuid.Nil {
		d.remap[old] = id
	}
	return id
}

func (d *Duplication) rewrite(id uuid.UUID) uuid.UUID {
	if mapped, ok := d.remap[id]; ok {
		return mapped
	}
	return id
}

func (d *Duplication) rewritePtr(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	mapped := d.rewrite(*id)
	return &mapped
}

func (d *Duplication) instance(src *Instance) *Instance {
	if src == nil {
		return nil
	}
	dup := src.Clone()
	dup.ID = d.fresh(src.ID)
	dup.BlockTypeID = d.rewritePtr(src.BlockTypeID)
	dup.ThemeID = d.rewritePtr(src.ThemeID)
	dup.OptionID = d.rewritePtr(src.OptionID)
	dup.LayoutID = d.rewritePtr(src.LayoutID)
	dup.Values = d.values(src.Values)
	dup.CreatedAt = time.Time{}
	dup.UpdatedAt = time.Time{}
	return dup
}

func (d *Duplication) values(src []*FieldValue) []*FieldValue {
	if src == nil {
		return nil
	}
	out := make([]*FieldValue, 0, len(src))
	for _, value := range src {
		if value == nil {
			continue
		}
		out = append(out, d.value(value))
	}
	return out
}

func (d *Duplication) value(src *FieldValue) *FieldValue {
	if src == nil {
		return nil
	}
	dup := src.Clone()
	dup.ID = d.fresh(src.ID)
	dup.FieldID = d.rewrite(src.FieldID)
	if src.Groups != nil {
		dup.Groups = make([]*FieldValueGroup, 0, len(src.Groups))
		for _, group := range src.Groups {
			if group == nil {
				continue
			}
			dup.Groups = append(dup.Groups, d.group(group))
		}
	}
	return dup
}

func (d *Duplication) group(src *FieldValueGroup) *FieldValueGroup {
	if src == nil {
		return nil
	}
	return &FieldValueGroup{
		ID:       d.fresh(src.ID),
		Position: src.Position,
		Values:   d.values(src.Values),
	}
}

// blockType clones the field forest as a batch: every node first receives a
// fresh id, then parent references are rewritten through the remap table so
// no parent id of the source leaks into the copy.
func (d *Duplication) blockType(src *BlockType) *BlockType {
	if src == nil {
		return nil
	}
	dup := src.Clone()
	dup.ID = d.fresh(src.ID)
	dup.CreatedAt = time.Time{}
	dup.UpdatedAt = time.Time{}

	if src.Fields != nil {
		dup.Fields = make([]*fields.Node, 0, len(src.Fields))
		for _, node := range src.Fields {
			if node == nil {
				continue
			}
			clone := node.Clone()
			clone.ID = d.fresh(node.ID)
			dup.Fields = append(dup.Fields, clone)
		}
		for _, node := range dup.Fields {
			if node.ParentID == nil {
				continue
			}
			if mapped, ok := d.remap[*node.ParentID]; ok {
				node.ParentID = &mapped
				continue
			}
			node.ParentID = nil
		}
	}

	dup.Themes = d.variants(src.Themes)
	dup.Options = d.variants(src.Options)
	dup.Layouts = d.variants(src.Layouts)
	return dup
}

func (d *Duplication) variants(src []Variant) []Variant {
	if src == nil {
		return nil
	}
	out := make([]Variant, len(src))
	for i, variant := range src {
		out[i] = variant
		out[i].ID = d.fresh(variant.ID)
	}
	return out
}
