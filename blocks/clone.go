package blocks

import (
	"maps"
	"slices"

	"github.com/goliatone/go-content-blocks/fields"
	"github.com/google/uuid"
)

// Clone returns a deep copy that keeps every identity.
func (b *BlockType) Clone() *BlockType {
	if b == nil {
		return nil
	}
	cloned := *b
	cloned.Description = cloneString(b.Description)
	cloned.TemplatePath = cloneString(b.TemplatePath)
	if b.Fields != nil {
		cloned.Fields = make([]*fields.Node, len(b.Fields))
		for i, node := range b.Fields {
			cloned.Fields[i] = node.Clone()
		}
	}
	cloned.Themes = slices.Clone(b.Themes)
	cloned.Options = slices.Clone(b.Options)
	cloned.Layouts = slices.Clone(b.Layouts)
	cloned.Restrictions = slices.Clone(b.Restrictions)
	return &cloned
}

// Clone returns a deep copy that keeps every identity.
func (l *Library) Clone() *Library {
	if l == nil {
		return nil
	}
	cloned := *l
	cloned.TemplatePath = cloneString(l.TemplatePath)
	cloned.Restrictions = slices.Clone(l.Restrictions)
	return &cloned
}

// Clone returns a deep copy that keeps every identity. Resolved BlockType and
// Library references are shared.
func (i *Instance) Clone() *Instance {
	if i == nil {
		return nil
	}
	cloned := *i
	cloned.BlockTypeID = cloneUUID(i.BlockTypeID)
	cloned.LibraryID = cloneUUID(i.LibraryID)
	cloned.ThemeID = cloneUUID(i.ThemeID)
	cloned.OptionID = cloneUUID(i.OptionID)
	cloned.LayoutID = cloneUUID(i.LayoutID)
	cloned.Values = cloneValues(i.Values)
	return &cloned
}

// Clone returns a deep copy that keeps every identity.
func (v *FieldValue) Clone() *FieldValue {
	if v == nil {
		return nil
	}
	cloned := *v
	cloned.Content = cloneString(v.Content)
	cloned.Image = cloneString(v.Image)
	cloned.File = cloneString(v.File)
	if v.Date != nil {
		date := *v.Date
		cloned.Date = &date
	}
	cloned.Options = v.Options.Clone()
	if v.Groups != nil {
		cloned.Groups = make([]*FieldValueGroup, len(v.Groups))
		for i, group := range v.Groups {
			cloned.Groups[i] = group.Clone()
		}
	}
	return &cloned
}

// Clone returns a deep copy that keeps every identity.
func (g *FieldValueGroup) Clone() *FieldValueGroup {
	if g == nil {
		return nil
	}
	cloned := *g
	cloned.Values = cloneValues(g.Values)
	return &cloned
}

// Clone copies the options. Extras are copied recursively through nested
// maps and slices.
func (o ValueOptions) Clone() ValueOptions {
	cloned := o
	if o.Extra != nil {
		cloned.Extra = cloneExtra(o.Extra)
	}
	return cloned
}

func cloneExtra(extra map[string]any) map[string]any {
	out := make(map[string]any, len(extra))
	for key, value := range extra {
		out[key] = cloneAny(value)
	}
	return out
}

func cloneAny(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		if typed == nil {
			return typed
		}
		return cloneExtra(typed)
	case []any:
		if typed == nil {
			return typed
		}
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneAny(item)
		}
		return out
	case []string:
		return slices.Clone(typed)
	case map[string]string:
		return maps.Clone(typed)
	default:
		return value
	}
}

func cloneValues(values []*FieldValue) []*FieldValue {
	if values == nil {
		return nil
	}
	out := make([]*FieldValue, len(values))
	for i, value := range values {
		out[i] = value.Clone()
	}
	return out
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}

func cloneUUID(value *uuid.UUID) *uuid.UUID {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
