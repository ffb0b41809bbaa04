package hydration

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-content-blocks/fields"
	"github.com/goliatone/go-content-blocks/internal/blocks"
	"github.com/goliatone/go-content-blocks/internal/logging"
	"github.com/google/uuid"
)

var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

// ResolveValues resolves one schema level into a map keyed by field keyname,
// in schema order. Missing values are synthesized empty; values whose field
// is not part of the level are dropped and logged.
func (e *Engine) ResolveValues(ctx context.Context, tree *fields.Tree, level []*fields.Node, ownerID uuid.UUID, values []*blocks.FieldValue) Values {
	mirror := blocks.MirrorValues(level, ownerID, values)
	for _, stale := range mirror.Stale {
		logging.WithFields(logging.FromContext(ctx, e.logger), map[string]any{
			"owner_id": ownerID.String(),
			"value_id": stale.ID.String(),
			"field_id": stale.FieldID.String(),
		}).Warn("hydration.value.schema_inconsistency")
	}

	out := make(Values, 0, len(level))
	for i, node := range level {
		out = append(out, Entry{Key: node.Keyname, Value: e.resolveField(ctx, tree, node, mirror.Values[i])})
	}
	return out
}

func (e *Engine) resolveField(ctx context.Context, tree *fields.Tree, node *fields.Node, value *blocks.FieldValue) any {
	resolved := Values{
		{Key: "id", Value: value.ID},
		{Key: "type", Value: string(node.Type)},
		{Key: "classCss", Value: classCSS(node, value)},
	}

	switch params := node.Params().(type) {
	case fields.ImageParams, fields.FileParams:
		return value
	case fields.TitleParams:
		resolved.Set("value", value.Content)
		tag := strings.TrimSpace(value.Options.Tag)
		if tag == "" {
			tag = params.DefaultTag()
		}
		resolved.Set("tag", optional(tag))
	case fields.TextParams:
		resolved.Set("value", coerceText(params.EffectiveSubtype(), value))
	case fields.TextareaParams:
		resolved.Set("value", value.Content)
		resolved.Set("isWysiwyg", params.IsWysiwyg)
	case fields.ChoiceParams:
		resolved.Set("value", optional(value.Options.Choice))
	case fields.MovieParams:
		resolved.Set("value", value.Content)
		resolved.Set("isIframe", params.IsIframe)
		if content := stringValue(value.Content); content != "" {
			resolved.Set("video", e.videos.Resolve(ctx, content))
		}
	case fields.ButtonParams:
		resolved.Set("value", value.Content)
		if picto := strings.TrimSpace(value.LinkPicto); picto != "" {
			resolved.Set("linkPicto", picto)
		}
	case fields.SwitchParams:
		enabled, _ := strconv.ParseBool(strings.TrimSpace(stringValue(value.Content)))
		resolved.Set("value", enabled)
	case fields.ObjectParams:
		resolved.Set("value", value.Content)
		objectID, object := e.resolveObject(ctx, params, value)
		resolved.Set("objectId", objectID)
		resolved.Set("object", object)
	case fields.ListParams:
		resolved.Set("value", value.Content)
		resolved.Set("children", e.resolveList(ctx, tree, node, value))
	case fields.GroupParams:
		resolved.Set("value", value.Content)
		resolved.Set("children", e.resolveGroup(ctx, tree, node, value))
	case fields.SeparatorParams, fields.ContainerParams:
		resolved.Set("value", value.Content)
	default:
		logging.WithFields(logging.FromContext(ctx, e.logger), map[string]any{
			"field_id": node.ID.String(),
			"type":     string(node.Type),
		}).Warn("hydration.field.unknown_type")
		return resolved
	}

	if value.HasLink() {
		resolved.Set("link", e.ResolveLink(ctx, value))
	}
	return resolved
}

func (e *Engine) resolveList(ctx context.Context, tree *fields.Tree, node *fields.Node, value *blocks.FieldValue) []Values {
	groups := orderedGroups(value.Groups)
	out := make([]Values, 0, len(groups))
	for _, group := range groups {
		out = append(out, e.ResolveValues(ctx, tree, tree.Children(node.ID), group.ID, group.Values))
	}
	return out
}

// resolveGroup flattens a group field to its first repetition.
func (e *Engine) resolveGroup(ctx context.Context, tree *fields.Tree, node *fields.Node, value *blocks.FieldValue) Values {
	groups := orderedGroups(value.Groups)
	group := blocks.SynthesizeGroup(value)
	if len(groups) > 0 {
		group = groups[0]
	}
	return e.ResolveValues(ctx, tree, tree.Children(node.ID), group.ID, group.Values)
}

func (e *Engine) resolveObject(ctx context.Context, params fields.ObjectParams, value *blocks.FieldValue) (*string, any) {
	raw := strings.TrimSpace(value.Options.ObjectID)
	if raw == "" {
		return nil, nil
	}
	entityClass := params.EntityClass
	objectID := raw
	if entityClass == fields.EntityClassAll {
		class, id, ok := strings.Cut(raw, "::")
		if !ok {
			return &raw, nil
		}
		entityClass, objectID = class, id
	}
	key := entityClass + "::" + objectID
	if e.entities == nil {
		return &key, nil
	}
	object, err := e.entities.Resolve(ctx, entityClass, objectID)
	if err != nil {
		logging.WithFields(logging.FromContext(ctx, e.logger), map[string]any{
			"entity_class": entityClass,
			"object_id":    objectID,
			"error":        err.Error(),
		}).Warn("hydration.object.unresolved")
		return &key, nil
	}
	return &key, object
}

func orderedGroups(groups []*blocks.FieldValueGroup) []*blocks.FieldValueGroup {
	out := make([]*blocks.FieldValueGroup, 0, len(groups))
	for _, group := range groups {
		if group != nil {
			out = append(out, group)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// coerceText converts content per text subtype, keeping the raw string when
// it does not parse.
func coerceText(subtype fields.TextSubtype, value *blocks.FieldValue) any {
	if subtype == fields.SubtypeDate && value.Date != nil {
		return value.Date.UTC().Format(time.RFC3339)
	}
	if value.Content == nil {
		return nil
	}
	content := strings.TrimSpace(*value.Content)
	switch subtype {
	case fields.SubtypeInteger:
		if n, err := strconv.ParseInt(content, 10, 64); err == nil {
			return n
		}
	case fields.SubtypeNumber:
		if f, err := strconv.ParseFloat(content, 64); err == nil {
			return f
		}
	case fields.SubtypeDate:
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, content); err == nil {
				return parsed.UTC().Format(time.RFC3339)
			}
		}
	}
	return *value.Content
}

func classCSS(node *fields.Node, value *blocks.FieldValue) *string {
	if classes := strings.TrimSpace(value.Options.ClassCSS); classes != "" {
		return &classes
	}
	return optional(node.CSSClass)
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func stringValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
