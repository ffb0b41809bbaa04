package blocks

import (
	"github.com/goliatone/go-content-blocks/fields"
	"github.com/goliatone/go-content-blocks/internal/identity"
	"github.com/google/uuid"
)

// Mirror is the result of aligning stored values with a schema level.
type Mirror struct {
	// Values holds one value per schema node in schema order.
	Values []*FieldValue
	// Synthesized lists the schema nodes that had no stored value.
	Synthesized []*fields.Node
	// Stale lists stored values whose field is not part of the level.
	Stale []*FieldValue
}

// MirrorValues aligns values with the schema nodes of one tree level. Missing
// values are synthesized empty with ids derived from ownerID, so repeated
// calls over the same input agree. Inputs are never mutated.
func MirrorValues(level []*fields.Node, ownerID uuid.UUID, values []*FieldValue) Mirror {
	byField := make(map[uuid.UUID]*FieldValue, len(values))
	var stale []*FieldValue
	for _, value := range values {
		if value == nil {
			continue
		}
		if _, seen := byField[value.FieldID]; seen {
			stale = append(stale, value)
			continue
		}
		byField[value.FieldID] = value
	}

	mirror := Mirror{Values: make([]*FieldValue, 0, len(level))}
	known := make(map[uuid.UUID]struct{}, len(level))
	for _, node := range level {
		known[node.ID] = struct{}{}
		if value, ok := byField[node.ID]; ok {
			mirror.Values = append(mirror.Values, value)
			continue
		}
		mirror.Values = append(mirror.Values, SynthesizeValue(ownerID, node))
		mirror.Synthesized = append(mirror.Synthesized, node)
	}
	for _, value := range values {
		if value == nil {
			continue
		}
		if _, ok := known[value.FieldID]; !ok {
			stale = append(stale, value)
		}
	}
	mirror.Stale = stale
	return mirror
}

// MirrorGroup returns a copy of group whose values mirror the children of the
// owning list or group node.
func MirrorGroup(tree *fields.Tree, owner *fields.Node, group *FieldValueGroup) (*FieldValueGroup, Mirror) {
	children := tree.Children(owner.ID)
	if group == nil {
		return nil, Mirror{}
	}
	mirror := MirrorValues(children, group.ID, group.Values)
	return &FieldValueGroup{
		ID:       group.ID,
		Position: group.Position,
		Values:   mirror.Values,
	}, mirror
}

// SynthesizeValue builds the empty value of node owned by ownerID.
func SynthesizeValue(ownerID uuid.UUID, node *fields.Node) *FieldValue {
	return &FieldValue{
		ID:       identity.SyntheticValueUUID(ownerID, node.ID),
		FieldID:  node.ID,
		Position: node.Position,
		LinkType: LinkNone,
	}
}

// SynthesizeGroup builds the empty repetition used when a group value has
// none stored.
func SynthesizeGroup(value *FieldValue) *FieldValueGroup {
	return &FieldValueGroup{ID: identity.SyntheticGroupUUID(value.ID)}
}
