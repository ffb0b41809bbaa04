package showcase

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-content-blocks/blocks"
	"github.com/goliatone/go-content-blocks/fields"
)

// LinkAxis is the shared axis key of title links.
const LinkAxis = "link"

const noLink = "noLink"

// Axis is one dimension of a block type's combination space.
type Axis struct {
	Key    string
	Values []string
}

// Point fixes one axis to a value.
type Point struct {
	Axis  string
	Value string
}

// Combination is one point of the combination space, in axis order.
type Combination []Point

// Get returns the value chosen for axis.
func (c Combination) Get(axis string) (string, bool) {
	for _, point := range c {
		if point.Axis == axis {
			return point.Value, true
		}
	}
	return "", false
}

// String renders the combination as "axis@value" pairs joined by "|".
func (c Combination) String() string {
	parts := make([]string, len(c))
	for i, point := range c {
		parts[i] = point.Axis + "@" + point.Value
	}
	return strings.Join(parts, "|")
}

// Axes lists the combination axes of a field tree: heading tags of title
// fields (plus the link axis when the title can carry a link), link types of
// buttons, and both states of switches.
func Axes(tree *fields.Tree) []Axis {
	var axes []Axis
	seen := map[string]struct{}{}
	add := func(key string, values ...string) {
		if _, ok := seen[key]; ok || len(values) == 0 {
			return
		}
		seen[key] = struct{}{}
		axes = append(axes, Axis{Key: key, Values: values})
	}

	tree.Walk(func(node *fields.Node, _ int) bool {
		switch params := node.Params().(type) {
		case fields.TitleParams:
			add(node.Keyname, params.Tags...)
			if node.CanHasLink {
				add(LinkAxis, noLink, string(blocks.LinkInternal), string(blocks.LinkExternal), string(blocks.LinkFile))
			}
		case fields.ButtonParams:
			add(node.Keyname, string(blocks.LinkInternal), string(blocks.LinkExternal), string(blocks.LinkFile))
		case fields.SwitchParams:
			add(node.Keyname, strconv.FormatBool(true), strconv.FormatBool(false))
		}
		return true
	})
	return axes
}

// Combinations expands the cartesian product of axes, last axis varying
// fastest, stopping after limit points. Without axes there is exactly one
// empty combination. A non-positive limit means no cap.
func Combinations(axes []Axis, limit int) []Combination {
	out := []Combination{{}}
	for _, axis := range axes {
		next := make([]Combination, 0, len(out)*len(axis.Values))
		for _, prefix := range out {
			for _, value := range axis.Values {
				combination := make(Combination, len(prefix), len(prefix)+1)
				copy(combination, prefix)
				next = append(next, append(combination, Point{Axis: axis.Key, Value: value}))
			}
		}
		out = next
		// Every prefix expands to at least one point, so the first limit
		// prefixes cover the first limit points.
		if limit > 0 && len(out) > limit {
			out = out[:limit]
		}
	}
	return out
}
