package blocks

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/goliatone/go-content-blocks/fields"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// LibraryHostClass is the host class under which library content is stored.
const LibraryHostClass = "Library"

// Host identifies the record a set of block instances is attached to.
type Host struct {
	Class string `json:"class"`
	ID    string `json:"id"`
}

// LibraryHost returns the host owning the content of a library.
func LibraryHost(id uuid.UUID) Host {
	return Host{Class: LibraryHostClass, ID: id.String()}
}

func (h Host) String() string {
	return h.Class + ":" + h.ID
}

// IsLibrary reports whether the host is a library.
func (h Host) IsLibrary() bool {
	return h.Class == LibraryHostClass
}

// Variant is a named style entry of a block type (theme, option or layout).
type Variant struct {
	ID       uuid.UUID `json:"id"`
	Keyname  string    `json:"keyname"`
	Title    string    `json:"title"`
	Position int       `json:"position"`
}

// RestrictionCondition selects whether a rule allows or denies placement.
type RestrictionCondition string

const (
	RestrictionInclude RestrictionCondition = "include"
	RestrictionExclude RestrictionCondition = "exclude"
)

// RestrictionRule limits where a block type or library can be placed. Value
// has the form "<hostClass>:<hostId|all>", ContainerName is a slot or "all".
type RestrictionRule struct {
	Value         string               `json:"value"`
	ContainerName string               `json:"containerName"`
	Condition     RestrictionCondition `json:"condition"`
	Position      int                  `json:"position"`
}

// BlockType is a reusable block definition with its field schema.
type BlockType struct {
	bun.BaseModel `bun:"table:block_types,alias:bty"`

	ID               uuid.UUID         `bun:",pk,type:uuid" json:"id"`
	Name             string            `bun:"name,notnull" json:"name"`
	Keyname          string            `bun:"keyname,notnull" json:"keyname"`
	Category         string            `bun:"category" json:"category,omitempty"`
	Description      *string           `bun:"description" json:"description,omitempty"`
	Enabled          bool              `bun:"enabled,notnull" json:"enabled"`
	IsContainer      bool              `bun:"is_container,notnull" json:"is_container"`
	GuidelineVisible bool              `bun:"guideline_visible,notnull" json:"guideline_visible"`
	TemplatePath     *string           `bun:"template_path" json:"template_path,omitempty"`
	Fields           []*fields.Node    `bun:"fields,type:jsonb" json:"fields"`
	Themes           []Variant         `bun:"themes,type:jsonb" json:"themes,omitempty"`
	Options          []Variant         `bun:"options,type:jsonb" json:"options,omitempty"`
	Layouts          []Variant         `bun:"layouts,type:jsonb" json:"layouts,omitempty"`
	Restrictions     []RestrictionRule `bun:"restrictions,type:jsonb" json:"restrictions,omitempty"`
	CreatedAt        time.Time         `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt        time.Time         `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Tree builds the field schema arena of the block type.
func (b *BlockType) Tree() (*fields.Tree, error) {
	if b == nil {
		return fields.NewTree(nil)
	}
	return fields.NewTree(b.Fields)
}

// TemplatePathOrDefault returns the configured template path or
// "components/<keyname><ext>".
func (b *BlockType) TemplatePathOrDefault(ext string) string {
	if b.TemplatePath != nil && strings.TrimSpace(*b.TemplatePath) != "" {
		return strings.ReplaceAll(strings.TrimSpace(*b.TemplatePath), "\\", "/")
	}
	return "components/" + b.Keyname + ext
}

// Theme returns the theme selected by id, if any.
func (b *BlockType) Theme(id *uuid.UUID) *Variant { return findVariant(b.Themes, id) }

// Option returns the option selected by id, if any.
func (b *BlockType) Option(id *uuid.UUID) *Variant { return findVariant(b.Options, id) }

// Layout returns the layout selected by id, if any.
func (b *BlockType) Layout(id *uuid.UUID) *Variant { return findVariant(b.Layouts, id) }

// HasDefaultTheme reports whether a theme is keyed "default".
func (b *BlockType) HasDefaultTheme() bool {
	for _, theme := range b.Themes {
		if theme.Keyname == "default" {
			return true
		}
	}
	return false
}

func findVariant(variants []Variant, id *uuid.UUID) *Variant {
	if id == nil {
		return nil
	}
	for i := range variants {
		if variants[i].ID == *id {
			return &variants[i]
		}
	}
	return nil
}

// Library is an independently stored block composition that can be included
// wherever a block type can.
type Library struct {
	bun.BaseModel `bun:"table:block_libraries,alias:bl"`

	ID                  uuid.UUID         `bun:",pk,type:uuid" json:"id"`
	Name                string            `bun:"name,notnull" json:"name"`
	Keyname             string            `bun:"keyname,notnull" json:"keyname"`
	AccessibleInContent bool              `bun:"accessible_in_content,notnull" json:"accessible_in_content"`
	IsEnabled           bool              `bun:"is_enabled,notnull" json:"is_enabled"`
	IsNavigationMenu    bool              `bun:"is_navigation_menu,notnull" json:"is_navigation_menu"`
	TemplatePath        *string           `bun:"template_path" json:"template_path,omitempty"`
	CSSClass            string            `bun:"css_class" json:"css_class,omitempty"`
	Restrictions        []RestrictionRule `bun:"restrictions,type:jsonb" json:"restrictions,omitempty"`
	CreatedAt           time.Time         `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt           time.Time         `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Offered reports whether a library reference renders in content.
func (l *Library) Offered() bool {
	return l != nil && l.AccessibleInContent && l.IsEnabled
}

// Instance places a block type or a library on a host slot.
type Instance struct {
	bun.BaseModel `bun:"table:block_instances,alias:bi"`

	ID          uuid.UUID     `bun:",pk,type:uuid" json:"id"`
	HostClass   string        `bun:"host_class,notnull" json:"host_class"`
	HostID      string        `bun:"host_id,notnull" json:"host_id"`
	Slot        string        `bun:"slot,notnull" json:"slot"`
	Position    int           `bun:"position,notnull,default:0" json:"position"`
	BlockTypeID *uuid.UUID    `bun:"block_type_id,type:uuid" json:"block_type_id,omitempty"`
	LibraryID   *uuid.UUID    `bun:"library_id,type:uuid" json:"library_id,omitempty"`
	ThemeID     *uuid.UUID    `bun:"theme_id,type:uuid" json:"theme_id,omitempty"`
	OptionID    *uuid.UUID    `bun:"option_id,type:uuid" json:"option_id,omitempty"`
	LayoutID    *uuid.UUID    `bun:"layout_id,type:uuid" json:"layout_id,omitempty"`
	Values      []*FieldValue `bun:"field_values,type:jsonb" json:"values"`
	CreatedAt   time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	BlockType *BlockType `bun:"-" json:"block_type,omitempty"`
	Library   *Library   `bun:"-" json:"library,omitempty"`
}

// Host returns the record the instance is attached to.
func (i *Instance) Host() Host {
	return Host{Class: i.HostClass, ID: i.HostID}
}

// ReferencesLibrary reports whether the instance includes a library.
func (i *Instance) ReferencesLibrary() bool {
	return i != nil && i.LibraryID != nil
}

// LinkType selects how a value's link is resolved.
type LinkType string

const (
	LinkNone     LinkType = "none"
	LinkInternal LinkType = "internal"
	LinkExternal LinkType = "external"
	LinkFile     LinkType = "file"
	LinkPhone    LinkType = "phone"
	LinkEmail    LinkType = "email"
)

// ParseLinkType normalises raw link types, accepting the legacy "interne" and
// "externe" spellings.
func ParseLinkType(raw string) LinkType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "internal", "interne":
		return LinkInternal
	case "external", "externe":
		return LinkExternal
	case "file":
		return LinkFile
	case "phone", "tel":
		return LinkPhone
	case "email", "mail":
		return LinkEmail
	default:
		return LinkNone
	}
}

// UnmarshalJSON accepts every spelling ParseLinkType understands. Unknown
// types decode to LinkNone.
func (t *LinkType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if strings.TrimSpace(raw) == "" {
		*t = ""
		return nil
	}
	*t = ParseLinkType(raw)
	return nil
}

// ValueOptions carries per-value presentation overrides.
type ValueOptions struct {
	ClassCSS string         `json:"classCss,omitempty"`
	Tag      string         `json:"tag,omitempty"`
	Anchor   string         `json:"anchor,omitempty"`
	Target   string         `json:"target,omitempty"`
	Choice   string         `json:"choice,omitempty"`
	ObjectID string         `json:"objectId,omitempty"`
	Extra    map[string]any `json:"extra,omitempty"`
}

// FieldValue is the stored data of one field schema node.
type FieldValue struct {
	ID            uuid.UUID          `json:"id"`
	FieldID       uuid.UUID          `json:"fieldId"`
	Position      int                `json:"position"`
	Content       *string            `json:"content"`
	Date          *time.Time         `json:"date"`
	Image         *string            `json:"image"`
	File          *string            `json:"file"`
	LinkType      LinkType           `json:"linkType,omitempty"`
	LinkURL       string             `json:"linkUrl,omitempty"`
	LinkEmail     string             `json:"linkEmail,omitempty"`
	LinkPhone     string             `json:"linkPhone,omitempty"`
	LinkEntityKey string             `json:"linkEntityKey,omitempty"`
	LinkPicto     string             `json:"linkPicto,omitempty"`
	Options       ValueOptions       `json:"options"`
	Groups        []*FieldValueGroup `json:"groups,omitempty"`
}

// HasLink reports whether the value carries a resolvable link.
func (v *FieldValue) HasLink() bool {
	return v != nil && ParseLinkType(string(v.LinkType)) != LinkNone
}

// FieldValueGroup is one repetition of a list or group value.
type FieldValueGroup struct {
	ID       uuid.UUID     `json:"id"`
	Position int           `json:"position"`
	Values   []*FieldValue `json:"values"`
}
