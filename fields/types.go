package fields

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// TypeTag identifies the kind of a field schema node.
type TypeTag string

const (
	TypeTitle     TypeTag = "title"
	TypeText      TypeTag = "text"
	TypeTextarea  TypeTag = "textarea"
	TypeImage     TypeTag = "image"
	TypeFile      TypeTag = "file"
	TypeMovie     TypeTag = "movie"
	TypeChoice    TypeTag = "choice"
	TypeButton    TypeTag = "button"
	TypeList      TypeTag = "list"
	TypeGroup     TypeTag = "group"
	TypeSwitch    TypeTag = "switch"
	TypeObject    TypeTag = "object"
	TypeSeparator TypeTag = "separator"
	TypeContainer TypeTag = "container"
)

// TypeTags lists every supported tag in declaration order.
var TypeTags = []TypeTag{
	TypeTitle, TypeText, TypeTextarea, TypeImage, TypeFile, TypeMovie, TypeChoice,
	TypeButton, TypeList, TypeGroup, TypeSwitch, TypeObject, TypeSeparator, TypeContainer,
}

var ErrUnknownTypeTag = errors.New("fields: unknown type tag")

// ParseTypeTag normalises raw into a known TypeTag.
func ParseTypeTag(raw string) (TypeTag, error) {
	candidate := TypeTag(strings.ToLower(strings.TrimSpace(raw)))
	for _, tag := range TypeTags {
		if tag == candidate {
			return tag, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTypeTag, raw)
}

// Repeats reports whether values of this tag carry value groups.
func (t TypeTag) Repeats() bool {
	return t == TypeList || t == TypeGroup
}

// Direction is the layout axis of a group field.
type Direction string

const (
	DirectionRow    Direction = "row"
	DirectionColumn Direction = "column"
)

// Node is one field definition inside a block type schema.
type Node struct {
	ID             uuid.UUID
	ParentID       *uuid.UUID
	Position       int
	Type           TypeTag
	Keyname        string
	Label          string
	CSSClass       string
	CanHasLink     bool
	BlockDirection Direction
	Parameters     Parameters
}

// Params returns the node parameters, falling back to the zero parameters of its tag.
func (n *Node) Params() Parameters {
	if n == nil {
		return nil
	}
	if n.Parameters != nil && n.Parameters.TypeTag() == n.Type {
		return n.Parameters
	}
	return ZeroParameters(n.Type)
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	cloned := *n
	if n.ParentID != nil {
		parent := *n.ParentID
		cloned.ParentID = &parent
	}
	cloned.Parameters = CloneParameters(n.Parameters)
	return &cloned
}

type nodeJSON struct {
	ID             uuid.UUID      `json:"id"`
	ParentID       *uuid.UUID     `json:"parentId,omitempty"`
	Position       int            `json:"position"`
	Type           TypeTag        `json:"type"`
	Keyname        string         `json:"keyname"`
	Label          string         `json:"label,omitempty"`
	CSSClass       string         `json:"cssClass,omitempty"`
	CanHasLink     bool           `json:"canHasLink,omitempty"`
	BlockDirection Direction      `json:"blockDirection,omitempty"`
	Parameters     map[string]any `json:"parameters,omitempty"`
}

// MarshalJSON encodes parameters back into their open bag form.
func (n Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(nodeJSON{
		ID:             n.ID,
		ParentID:       n.ParentID,
		Position:       n.Position,
		Type:           n.Type,
		Keyname:        n.Keyname,
		Label:          n.Label,
		CSSClass:       n.CSSClass,
		CanHasLink:     n.CanHasLink,
		BlockDirection: n.BlockDirection,
		Parameters:     EncodeParameters(n.Parameters),
	})
}

// UnmarshalJSON decodes and validates the parameter bag for the node tag.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw nodeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	tag, err := ParseTypeTag(string(raw.Type))
	if err != nil {
		return err
	}
	params, err := DecodeParameters(tag, raw.Parameters)
	if err != nil {
		return err
	}
	*n = Node{
		ID:             raw.ID,
		ParentID:       raw.ParentID,
		Position:       raw.Position,
		Type:           tag,
		Keyname:        raw.Keyname,
		Label:          raw.Label,
		CSSClass:       raw.CSSClass,
		CanHasLink:     raw.CanHasLink,
		BlockDirection: raw.BlockDirection,
		Parameters:     params,
	}
	return nil
}
