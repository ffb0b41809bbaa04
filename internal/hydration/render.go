package hydration

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
)

// Entry is one key of an ordered object.
type Entry struct {
	Key   string
	Value any
}

// Values is an object whose keys keep insertion order when encoded.
type Values []Entry

// Get returns the value stored under key.
func (v Values) Get(key string) (any, bool) {
	for _, entry := range v {
		if entry.Key == key {
			return entry.Value, true
		}
	}
	return nil, false
}

// Keys lists the keys in order.
func (v Values) Keys() []string {
	keys := make([]string, len(v))
	for i, entry := range v {
		keys[i] = entry.Key
	}
	return keys
}

// Set replaces the value under key or appends it.
func (v *Values) Set(key string, value any) {
	for i := range *v {
		if (*v)[i].Key == key {
			(*v)[i].Value = value
			return
		}
	}
	*v = append(*v, Entry{Key: key, Value: value})
}

func (v Values) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range v {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(entry.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

const (
	NodeTypeDefault = "default"
	NodeTypeLibrary = "library"
)

// Node is a hydrated leaf block or a library reference.
type Node struct {
	ID           uuid.UUID
	Keyname      string
	Type         string
	Theme        *string
	Option       *string
	Layout       *string
	TemplatePath string
	Values       Values
	Vars         map[string]any
}

// IsLibrary reports whether the node references a library.
func (n *Node) IsLibrary() bool {
	return n.Type == NodeTypeLibrary
}

func (n *Node) MarshalJSON() ([]byte, error) {
	if n.IsLibrary() {
		return Values{
			{"id", n.ID},
			{"type", NodeTypeLibrary},
			{"keyname", n.Keyname},
		}.MarshalJSON()
	}
	return Values{
		{"id", n.ID},
		{"keyname", n.Keyname},
		{"type", NodeTypeDefault},
		{"theme", n.Theme},
		{"option", n.Option},
		{"layout", n.Layout},
		{"templatePath", n.TemplatePath},
		{"values", n.Values},
		{"vars", vars(n.Vars)},
	}.MarshalJSON()
}

// Child is a node keyed by "<position>-<id>".
type Child struct {
	Key  string
	Node *Node
}

// Group collects the nodes following a container instance, or the nodes of
// a slot before any container when it is the default group.
type Group struct {
	Key      string
	ID       uuid.UUID
	Theme    *string
	Option   *string
	Keyname  string
	Default  bool
	Children []Child
	Vars     map[string]any

	byKeyname map[string][]*Node
}

func newDefaultGroup(key string) *Group {
	return &Group{Key: key, Keyname: "default", Default: true, byKeyname: map[string][]*Node{}}
}

func (g *Group) add(key string, node *Node) {
	g.Children = append(g.Children, Child{Key: key, Node: node})
	if g.byKeyname == nil {
		g.byKeyname = map[string][]*Node{}
	}
	g.byKeyname[node.Keyname] = append(g.byKeyname[node.Keyname], node)
}

// Lookup returns the children of the given block type or library keyname
// in order.
func (g *Group) Lookup(keyname string) []*Node {
	return append([]*Node(nil), g.byKeyname[keyname]...)
}

// Child returns the child stored under key.
func (g *Group) Child(key string) (*Node, bool) {
	for _, child := range g.Children {
		if child.Key == key {
			return child.Node, true
		}
	}
	return nil, false
}

func (g *Group) children() Values {
	out := make(Values, 0, len(g.Children))
	for _, child := range g.Children {
		out = append(out, Entry{Key: child.Key, Value: child.Node})
	}
	return out
}

func (g *Group) MarshalJSON() ([]byte, error) {
	if g.Default {
		return Values{
			{"keyname", g.Keyname},
			{"children", g.children()},
		}.MarshalJSON()
	}
	return Values{
		{"id", g.ID},
		{"theme", g.Theme},
		{"option", g.Option},
		{"type", NodeTypeDefault},
		{"keyname", g.Keyname},
		{"children", g.children()},
		{"vars", vars(g.Vars)},
	}.MarshalJSON()
}

// Slot is the ordered list of groups of one placement slot.
type Slot struct {
	Name   string
	Groups []*Group
}

// Group returns the group stored under key.
func (s *Slot) Group(key string) (*Group, bool) {
	for _, group := range s.Groups {
		if group.Key == key {
			return group, true
		}
	}
	return nil, false
}

func (s *Slot) MarshalJSON() ([]byte, error) {
	out := make(Values, 0, len(s.Groups))
	for _, group := range s.Groups {
		out = append(out, Entry{Key: group.Key, Value: group})
	}
	return out.MarshalJSON()
}

// Tree is the render tree: slots in first-seen order.
type Tree struct {
	Slots []*Slot
}

// Slot returns the slot named name.
func (t *Tree) Slot(name string) (*Slot, bool) {
	if t == nil {
		return nil, false
	}
	for _, slot := range t.Slots {
		if slot.Name == name {
			return slot, true
		}
	}
	return nil, false
}

func (t *Tree) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("{}"), nil
	}
	out := make(Values, 0, len(t.Slots))
	for _, slot := range t.Slots {
		out = append(out, Entry{Key: slot.Name, Value: slot})
	}
	return out.MarshalJSON()
}

func vars(in map[string]any) map[string]any {
	if in == nil {
		return map[string]any{}
	}
	return in
}
