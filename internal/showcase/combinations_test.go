package showcase_test

import (
	"testing"

	"github.com/goliatone/go-content-blocks/fields"
	"github.com/goliatone/go-content-blocks/internal/showcase"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func mustTree(t *testing.T, nodes ...*fields.Node) *fields.Tree {
	t.Helper()
	tree, err := fields.NewTree(nodes)
	if err != nil {
		t.Fatalf("build tree: %v", err)
	}
	return tree
}

func TestAxesCollectsTitlesButtonsAndSwitches(t *testing.T) {
	list := &fields.Node{ID: uuid.New(), Type: fields.TypeList, Keyname: "items", Position: 3}
	tree := mustTree(t,
		&fields.Node{ID: uuid.New(), Type: fields.TypeTitle, Keyname: "heading", CanHasLink: true, Parameters: fields.TitleParams{Tags: []string{"h1", "h2"}}},
		&fields.Node{ID: uuid.New(), Type: fields.TypeTitle, Keyname: "untagged", Position: 1},
		&fields.Node{ID: uuid.New(), Type: fields.TypeText, Keyname: "body", Position: 2},
		list,
		&fields.Node{ID: uuid.New(), ParentID: &list.ID, Type: fields.TypeButton, Keyname: "cta"},
		&fields.Node{ID: uuid.New(), ParentID: &list.ID, Type: fields.TypeSwitch, Keyname: "featured", Position: 1},
	)

	want := []showcase.Axis{
		{Key: "heading", Values: []string{"h1", "h2"}},
		{Key: showcase.LinkAxis, Values: []string{"noLink", "internal", "external", "file"}},
		{Key: "cta", Values: []string{"internal", "external", "file"}},
		{Key: "featured", Values: []string{"true", "false"}},
	}
	if diff := cmp.Diff(want, showcase.Axes(tree)); diff != "" {
		t.Fatalf("unexpected axes (-want +got):\n%s", diff)
	}
}

func TestCombinationsCartesianProduct(t *testing.T) {
	axes := []showcase.Axis{
		{Key: "heading", Values: []string{"h1", "h2"}},
		{Key: "featured", Values: []string{"true", "false"}},
	}
	var got []string
	for _, combination := range showcase.Combinations(axes, 0) {
		got = append(got, combination.String())
	}
	want := []string{
		"heading@h1|featured@true",
		"heading@h1|featured@false",
		"heading@h2|featured@true",
		"heading@h2|featured@false",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected combinations (-want +got):\n%s", diff)
	}
}

func TestCombinationsWithoutAxesYieldsOne(t *testing.T) {
	combinations := showcase.Combinations(nil, 10)
	if len(combinations) != 1 || len(combinations[0]) != 0 {
		t.Fatalf("expected a single empty combination, got %+v", combinations)
	}
}

func TestCombinationsCapped(t *testing.T) {
	axes := []showcase.Axis{
		{Key: "a", Values: []string{"1", "2", "3"}},
		{Key: "b", Values: []string{"1", "2", "3"}},
		{Key: "c", Values: []string{"1", "2"}},
	}
	full := showcase.Combinations(axes, 0)
	if len(full) != 18 {
		t.Fatalf("expected 18 combinations, got %d", len(full))
	}
	capped := showcase.Combinations(axes, 5)
	if diff := cmp.Diff(full[:5], capped); diff != "" {
		t.Fatalf("expected capped set to be the prefix of the full product (-want +got):\n%s", diff)
	}
	if value, ok := capped[4].Get("b"); !ok || value != "3" {
		t.Fatalf("expected fifth combination to pick b@3, got %s", capped[4])
	}
}
