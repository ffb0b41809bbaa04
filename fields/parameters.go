package fields

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/goliatone/go-content-blocks/internal/validation"
)

// Parameters is the tag-specific configuration of a field node. The set of
// implementations is closed; each one reports the tag it belongs to.
type Parameters interface {
	TypeTag() TypeTag
	sealed()
}

// TextSubtype selects how text content is coerced during hydration.
type TextSubtype string

const (
	SubtypeString  TextSubtype = "string"
	SubtypeInteger TextSubtype = "integer"
	SubtypeNumber  TextSubtype = "number"
	SubtypeDate    TextSubtype = "date"
)

// Choice is one selectable entry of a choice field.
type Choice struct {
	Value string
	Label string
}

type TitleParams struct{ Tags []string }
type TextParams struct{ Subtype TextSubtype }
type TextareaParams struct{ IsWysiwyg bool }
type ImageParams struct{ Required bool }
type FileParams struct{ Required bool }
type MovieParams struct{ IsIframe bool }
type ChoiceParams struct{ Choices []Choice }
type ButtonParams struct{}
type ListParams struct{ Min, Max int }
type GroupParams struct{}
type SwitchParams struct{}
type ObjectParams struct{ EntityClass string }
type SeparatorParams struct{}
type ContainerParams struct{}

// EntityClassAll marks object fields whose stored value carries its own class.
const EntityClassAll = "all"

func (TitleParams) TypeTag() TypeTag     { return TypeTitle }
func (TextParams) TypeTag() TypeTag      { return TypeText }
func (TextareaParams) TypeTag() TypeTag  { return TypeTextarea }
func (ImageParams) TypeTag() TypeTag     { return TypeImage }
func (FileParams) TypeTag() TypeTag      { return TypeFile }
func (MovieParams) TypeTag() TypeTag     { return TypeMovie }
func (ChoiceParams) TypeTag() TypeTag    { return TypeChoice }
func (ButtonParams) TypeTag() TypeTag    { return TypeButton }
func (ListParams) TypeTag() TypeTag      { return TypeList }
func (GroupParams) TypeTag() TypeTag     { return TypeGroup }
func (SwitchParams) TypeTag() TypeTag    { return TypeSwitch }
func (ObjectParams) TypeTag() TypeTag    { return TypeObject }
func (SeparatorParams) TypeTag() TypeTag { return TypeSeparator }
func (ContainerParams) TypeTag() TypeTag { return TypeContainer }

func (TitleParams) sealed()     {}
func (TextParams) sealed()      {}
func (TextareaParams) sealed()  {}
func (ImageParams) sealed()     {}
func (FileParams) sealed()      {}
func (MovieParams) sealed()     {}
func (ChoiceParams) sealed()    {}
func (ButtonParams) sealed()    {}
func (ListParams) sealed()      {}
func (GroupParams) sealed()     {}
func (SwitchParams) sealed()    {}
func (ObjectParams) sealed()    {}
func (SeparatorParams) sealed() {}
func (ContainerParams) sealed() {}

// DefaultTag returns the first configured heading tag.
func (p TitleParams) DefaultTag() string {
	if len(p.Tags) == 0 {
		return ""
	}
	return p.Tags[0]
}

// EffectiveSubtype defaults unset subtypes to string.
func (p TextParams) EffectiveSubtype() TextSubtype {
	if p.Subtype == "" {
		return SubtypeString
	}
	return p.Subtype
}

// ZeroParameters returns the empty parameters of tag.
func ZeroParameters(tag TypeTag) Parameters {
	switch tag {
	case TypeTitle:
		return TitleParams{}
	case TypeText:
		return TextParams{}
	case TypeTextarea:
		return TextareaParams{}
	case TypeImage:
		return ImageParams{}
	case TypeFile:
		return FileParams{}
	case TypeMovie:
		return MovieParams{}
	case TypeChoice:
		return ChoiceParams{}
	case TypeButton:
		return ButtonParams{}
	case TypeList:
		return ListParams{}
	case TypeGroup:
		return GroupParams{}
	case TypeSwitch:
		return SwitchParams{}
	case TypeObject:
		return ObjectParams{}
	case TypeSeparator:
		return SeparatorParams{}
	case TypeContainer:
		return ContainerParams{}
	default:
		return nil
	}
}

// DecodeParameters validates a raw parameter bag and converts it into the
// typed parameters of tag.
func DecodeParameters(tag TypeTag, raw map[string]any) (Parameters, error) {
	if err := validation.ValidateParameters(string(tag), raw); err != nil {
		return nil, fmt.Errorf("fields: %w", err)
	}
	switch tag {
	case TypeTitle:
		return TitleParams{Tags: stringSlice(raw["tags"])}, nil
	case TypeText:
		subtype, _ := raw["subtype"].(string)
		return TextParams{Subtype: TextSubtype(subtype)}, nil
	case TypeTextarea:
		return TextareaParams{IsWysiwyg: boolValue(raw["isWysiwyg"])}, nil
	case TypeImage:
		return ImageParams{Required: boolValue(raw["isRequired"])}, nil
	case TypeFile:
		return FileParams{Required: boolValue(raw["isRequired"])}, nil
	case TypeMovie:
		return MovieParams{IsIframe: boolValue(raw["isIframe"])}, nil
	case TypeChoice:
		return ChoiceParams{Choices: decodeChoices(raw["choices"])}, nil
	case TypeList:
		minValue, _ := intValue(raw["min"])
		maxValue, _ := intValue(raw["max"])
		return ListParams{Min: minValue, Max: maxValue}, nil
	case TypeObject:
		class, _ := raw["entityClass"].(string)
		return ObjectParams{EntityClass: strings.TrimSpace(class)}, nil
	default:
		if params := ZeroParameters(tag); params != nil {
			return params, nil
		}
		return nil, fmt.Errorf("%w: %q", ErrUnknownTypeTag, tag)
	}
}

// EncodeParameters renders typed parameters back into an open bag.
func EncodeParameters(params Parameters) map[string]any {
	switch p := params.(type) {
	case TitleParams:
		if len(p.Tags) == 0 {
			return nil
		}
		tags := make([]any, len(p.Tags))
		for i, tag := range p.Tags {
			tags[i] = tag
		}
		return map[string]any{"tags": tags}
	case TextParams:
		if p.Subtype == "" {
			return nil
		}
		return map[string]any{"subtype": string(p.Subtype)}
	case TextareaParams:
		return flag("isWysiwyg", p.IsWysiwyg)
	case ImageParams:
		return flag("isRequired", p.Required)
	case FileParams:
		return flag("isRequired", p.Required)
	case MovieParams:
		return flag("isIframe", p.IsIframe)
	case ChoiceParams:
		if len(p.Choices) == 0 {
			return nil
		}
		choices := make([]any, len(p.Choices))
		for i, choice := range p.Choices {
			choices[i] = map[string]any{"value": choice.Value, "label": choice.Label}
		}
		return map[string]any{"choices": choices}
	case ListParams:
		out := map[string]any{}
		if p.Min > 0 {
			out["min"] = p.Min
		}
		if p.Max > 0 {
			out["max"] = p.Max
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case ObjectParams:
		return map[string]any{"entityClass": p.EntityClass}
	default:
		return nil
	}
}

// CloneParameters deep copies params.
func CloneParameters(params Parameters) Parameters {
	switch p := params.(type) {
	case TitleParams:
		return TitleParams{Tags: slices.Clone(p.Tags)}
	case ChoiceParams:
		return ChoiceParams{Choices: slices.Clone(p.Choices)}
	default:
		return params
	}
}

func flag(key string, value bool) map[string]any {
	if !value {
		return nil
	}
	return map[string]any{key: true}
}

func stringSlice(raw any) []string {
	switch values := raw.(type) {
	case []string:
		return slices.Clone(values)
	case []any:
		out := make([]string, 0, len(values))
		for _, value := range values {
			if str, ok := value.(string); ok && strings.TrimSpace(str) != "" {
				out = append(out, strings.TrimSpace(str))
			}
		}
		return out
	default:
		return nil
	}
}

func decodeChoices(raw any) []Choice {
	switch values := raw.(type) {
	case []any:
		out := make([]Choice, 0, len(values))
		for _, entry := range values {
			item, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			value, _ := item["value"].(string)
			label, _ := item["label"].(string)
			out = append(out, Choice{Value: value, Label: label})
		}
		return out
	case []map[string]any:
		out := make([]Choice, 0, len(values))
		for _, item := range values {
			value, _ := item["value"].(string)
			label, _ := item["label"].(string)
			out = append(out, Choice{Value: value, Label: label})
		}
		return out
	case map[string]any:
		// Maps carry no order; fall back to key order.
		keys := make([]string, 0, len(values))
		for key := range values {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		out := make([]Choice, 0, len(keys))
		for _, key := range keys {
			label, _ := values[key].(string)
			out = append(out, Choice{Value: key, Label: label})
		}
		return out
	default:
		return nil
	}
}

func boolValue(raw any) bool {
	value, _ := raw.(bool)
	return value
}

func intValue(raw any) (int, bool) {
	switch value := raw.(type) {
	case int:
		return value, true
	case int32:
		return int(value), true
	case int64:
		return int(value), true
	case float64:
		if value != math.Trunc(value) {
			return 0, false
		}
		return int(value), true
	default:
		return 0, false
	}
}
