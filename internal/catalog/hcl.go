package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-content-blocks/fields"
	"github.com/goliatone/go-content-blocks/internal/blocks"
	"github.com/goliatone/go-content-blocks/internal/identity"
	"github.com/google/uuid"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

var (
	ErrInvalidField       = errors.New("catalog: invalid field")
	ErrInvalidRestriction = errors.New("catalog: invalid restriction")
	ErrDuplicateKeyname   = errors.New("catalog: duplicate block type keyname")
)

// hclFile is the top-level structure of a catalog file.
type hclFile struct {
	BlockTypes []*hclBlockType `hcl:"block_type,block"`
}

type hclBlockType struct {
	Keyname      string            `hcl:"keyname,label"`
	Name         string            `hcl:"name"`
	Category     *string           `hcl:"category,optional"`
	Description  *string           `hcl:"description,optional"`
	Enabled      *bool             `hcl:"enabled,optional"`
	Container    *bool             `hcl:"container,optional"`
	Guideline    *bool             `hcl:"guideline,optional"`
	Template     *string           `hcl:"template,optional"`
	Themes       []*hclVariant     `hcl:"theme,block"`
	Options      []*hclVariant     `hcl:"option,block"`
	Layouts      []*hclVariant     `hcl:"layout,block"`
	Fields       []*hclField       `hcl:"field,block"`
	Restrictions []*hclRestriction `hcl:"restriction,block"`
}

type hclVariant struct {
	Keyname string  `hcl:"keyname,label"`
	Title   *string `hcl:"title,optional"`
}

type hclField struct {
	Keyname   string      `hcl:"keyname,label"`
	Type      string      `hcl:"type"`
	Label     *string     `hcl:"label,optional"`
	CSSClass  *string     `hcl:"css_class,optional"`
	Link      *bool       `hcl:"link,optional"`
	Direction *string     `hcl:"direction,optional"`
	Params    cty.Value   `hcl:"params,optional"`
	Fields    []*hclField `hcl:"field,block"`
}

type hclRestriction struct {
	Value     string `hcl:"value"`
	Slot      string `hcl:"slot,optional"`
	Condition string `hcl:"condition"`
}

// LoadFile parses one catalog file into block type definitions. Identifiers
// derive from keynames so reloading a file yields the same ids.
func LoadFile(parser *hclparse.Parser, path string) ([]blocks.RegisterBlockTypeInput, error) {
	if parser == nil {
		parser = hclparse.NewParser()
	}
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, diags)
	}
	return decode(file, path)
}

// LoadSource parses catalog source held in memory. filename is only used in
// diagnostics.
func LoadSource(src []byte, filename string) ([]blocks.RegisterBlockTypeInput, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("catalog: parse %s: %w", filename, diags)
	}
	return decode(file, filename)
}

func decode(file *hcl.File, path string) ([]blocks.RegisterBlockTypeInput, error) {
	var parsed hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return nil, fmt.Errorf("catalog: decode %s: %w", path, diags)
	}

	out := make([]blocks.RegisterBlockTypeInput, 0, len(parsed.BlockTypes))
	for _, raw := range parsed.BlockTypes {
		input, err := raw.definition()
		if err != nil {
			return nil, fmt.Errorf("catalog: %s: block type %q: %w", path, raw.Keyname, err)
		}
		out = append(out, input)
	}
	return out, nil
}

func (b *hclBlockType) definition() (blocks.RegisterBlockTypeInput, error) {
	keyname := blocks.NormalizeKeyname(b.Keyname)
	input := blocks.RegisterBlockTypeInput{
		ID:               identity.BlockTypeUUID(keyname),
		Name:             strings.TrimSpace(b.Name),
		Keyname:          keyname,
		Category:         deref(b.Category),
		Description:      b.Description,
		Enabled:          boolOr(b.Enabled, true),
		IsContainer:      boolOr(b.Container, false),
		GuidelineVisible: boolOr(b.Guideline, true),
		TemplatePath:     b.Template,
		Themes:           variants(keyname, "theme", b.Themes),
		Options:          variants(keyname, "option", b.Options),
		Layouts:          variants(keyname, "layout", b.Layouts),
	}

	nodes, err := flattenFields(keyname, "", nil, b.Fields)
	if err != nil {
		return blocks.RegisterBlockTypeInput{}, err
	}
	input.Fields = nodes

	for i, raw := range b.Restrictions {
		condition := blocks.RestrictionCondition(strings.ToLower(strings.TrimSpace(raw.Condition)))
		if condition != blocks.RestrictionInclude && condition != blocks.RestrictionExclude {
			return blocks.RegisterBlockTypeInput{}, fmt.Errorf("%w: condition %q", ErrInvalidRestriction, raw.Condition)
		}
		slot := strings.TrimSpace(raw.Slot)
		if slot == "" {
			slot = "all"
		}
		input.Restrictions = append(input.Restrictions, blocks.RestrictionRule{
			Value:         strings.TrimSpace(raw.Value),
			ContainerName: slot,
			Condition:     condition,
			Position:      i,
		})
	}
	return input, nil
}

// flattenFields turns nested field blocks into the flat parent-linked list
// the schema tree is built from. Positions follow file order.
func flattenFields(blockKeyname, prefix string, parent *uuid.UUID, raw []*hclField) ([]*fields.Node, error) {
	var out []*fields.Node
	for position, field := range raw {
		keyname := blocks.NormalizeKeyname(field.Keyname)
		path := keyname
		if prefix != "" {
			path = prefix + "/" + keyname
		}
		tag, err := fields.ParseTypeTag(field.Type)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrInvalidField, path, err)
		}
		bag, err := paramsBag(field.Params)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrInvalidField, path, err)
		}
		params, err := fields.DecodeParameters(tag, bag)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrInvalidField, path, err)
		}

		direction := fields.Direction(strings.ToLower(deref(field.Direction)))
		if direction != "" && direction != fields.DirectionRow && direction != fields.DirectionColumn {
			return nil, fmt.Errorf("%w %q: direction %q", ErrInvalidField, path, direction)
		}

		id := identity.FieldUUID(blockKeyname, path)
		node := &fields.Node{
			ID:             id,
			Position:       position,
			Type:           tag,
			Keyname:        keyname,
			Label:          firstNonBlank(deref(field.Label), field.Keyname),
			CSSClass:       deref(field.CSSClass),
			CanHasLink:     boolOr(field.Link, false),
			BlockDirection: direction,
			Parameters:     params,
		}
		if parent != nil {
			parentID := *parent
			node.ParentID = &parentID
		}
		out = append(out, node)

		children, err := flattenFields(blockKeyname, path, &id, field.Fields)
		if err != nil {
			return nil, err
		}
		out = append(out, children...)
	}
	return out, nil
}

// paramsBag converts an HCL object into the open bag DecodeParameters reads.
func paramsBag(value cty.Value) (map[string]any, error) {
	if value.IsNull() {
		return nil, nil
	}
	if !value.Type().IsObjectType() && !value.Type().IsMapType() {
		return nil, fmt.Errorf("params must be an object, got %s", value.Type().FriendlyName())
	}
	raw, err := ctyjson.Marshal(value, value.Type())
	if err != nil {
		return nil, err
	}
	var bag map[string]any
	if err := json.Unmarshal(raw, &bag); err != nil {
		return nil, err
	}
	return bag, nil
}

func variants(blockKeyname, kind string, raw []*hclVariant) []blocks.Variant {
	if len(raw) == 0 {
		return nil
	}
	out := make([]blocks.Variant, 0, len(raw))
	for i, variant := range raw {
		keyname := blocks.NormalizeKeyname(variant.Keyname)
		out = append(out, blocks.Variant{
			ID:       identity.VariantUUID(blockKeyname, kind, keyname),
			Keyname:  keyname,
			Title:    firstNonBlank(deref(variant.Title), variant.Keyname),
			Position: i,
		})
	}
	return out
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

func boolOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}

func firstNonBlank(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
