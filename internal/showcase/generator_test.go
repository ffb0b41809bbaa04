package showcase_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/goliatone/go-content-blocks/fields"
	"github.com/goliatone/go-content-blocks/internal/blocks"
	"github.com/goliatone/go-content-blocks/internal/hydration"
	"github.com/goliatone/go-content-blocks/internal/showcase"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func heroType() *blocks.BlockType {
	items := uuid.New()
	return &blocks.BlockType{
		ID:               uuid.New(),
		Name:             "Hero",
		Keyname:          "hero",
		Enabled:          true,
		GuidelineVisible: true,
		Layouts:          []blocks.Variant{{ID: uuid.New(), Keyname: "wide"}, {ID: uuid.New(), Keyname: "narrow", Position: 1}},
		Fields: []*fields.Node{
			{ID: uuid.New(), Type: fields.TypeTitle, Keyname: "heading", Parameters: fields.TitleParams{Tags: []string{"h1", "h2"}}},
			{ID: uuid.New(), Type: fields.TypeSwitch, Keyname: "featured", Position: 1},
			{ID: items, Type: fields.TypeList, Keyname: "items", Position: 2},
			{ID: uuid.New(), ParentID: &items, Type: fields.TypeText, Keyname: "label"},
		},
	}
}

func sectionType() *blocks.BlockType {
	return &blocks.BlockType{
		ID:          uuid.New(),
		Name:        "Section",
		Keyname:     "section",
		Enabled:     true,
		IsContainer: true,
		Themes:      []blocks.Variant{{ID: uuid.New(), Keyname: "dark"}},
	}
}

func groupKeys(tree *hydration.Tree) []string {
	var keys []string
	for _, slot := range tree.Slots {
		for _, group := range slot.Groups {
			keys = append(keys, group.Key)
		}
	}
	return keys
}

func TestGenerateOneSamplePerCombination(t *testing.T) {
	generator := showcase.NewGenerator(nil, showcase.Config{ListRepetitions: 2, MaxCombinations: 10})
	hero := heroType()
	hidden := heroType()
	hidden.Keyname = "hidden"
	hidden.GuidelineVisible = false

	tree, err := generator.Generate(context.Background(), []*blocks.BlockType{hero, hidden})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	slot, ok := tree.Slot(showcase.SlotName)
	if !ok {
		t.Fatalf("expected %s slot", showcase.SlotName)
	}
	group, _ := slot.Group("default-0")
	nodes := group.Lookup("hero")
	if len(nodes) != 4 {
		t.Fatalf("expected 4 hero samples (2 tags x 2 switch states), got %d", len(nodes))
	}
	if len(group.Lookup("hidden")) != 0 {
		t.Fatalf("expected guideline hidden block type to be skipped")
	}

	first := nodes[0]
	if first.Layout == nil || *first.Layout != "wide" {
		t.Fatalf("expected first layout, got %v", first.Layout)
	}
	heading, _ := first.Values.Get("heading")
	tag, _ := heading.(hydration.Values).Get("tag")
	if got := tag.(*string); *got != "h1" {
		t.Fatalf("expected first combination to use h1, got %s", *got)
	}
	featured, _ := first.Values.Get("featured")
	if value, _ := featured.(hydration.Values).Get("value"); value != true {
		t.Fatalf("expected first combination to be featured, got %v", value)
	}
	items, _ := first.Values.Get("items")
	children, _ := items.(hydration.Values).Get("children")
	if got := len(children.([]hydration.Values)); got != 2 {
		t.Fatalf("expected 2 list repetitions, got %d", got)
	}
}

func TestGenerateContainerGroupings(t *testing.T) {
	generator := showcase.NewGenerator(nil, showcase.DefaultConfig())
	section := sectionType()
	tree, err := generator.Generate(context.Background(), []*blocks.BlockType{section, heroType()})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	want := []string{
		"default-0",
		"dark-" + section.ID.String(),
		"section-" + section.ID.String(),
	}
	if diff := cmp.Diff(want, groupKeys(tree)); diff != "" {
		t.Fatalf("unexpected groupings (-want +got):\n%s", diff)
	}
	slot, _ := tree.Slot(showcase.SlotName)
	for _, group := range slot.Groups {
		if got := len(group.Lookup("hero")); got != 4 {
			t.Fatalf("expected 4 hero samples in %s, got %d", group.Key, got)
		}
	}
	dark, _ := slot.Group(want[1])
	if dark.ID != section.ID || dark.Theme == nil || *dark.Theme != "dark" {
		t.Fatalf("unexpected dark grouping %+v", dark)
	}

	defaulted := sectionType()
	defaulted.Themes = append(defaulted.Themes, blocks.Variant{ID: uuid.New(), Keyname: "default", Position: 1})
	tree, err = generator.Generate(context.Background(), []*blocks.BlockType{defaulted})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	want = []string{"default-0", "dark-" + defaulted.ID.String(), "default-" + defaulted.ID.String()}
	if diff := cmp.Diff(want, groupKeys(tree)); diff != "" {
		t.Fatalf("unexpected groupings with default theme (-want +got):\n%s", diff)
	}
}

func TestGenerateWithContainer(t *testing.T) {
	generator := showcase.NewGenerator(nil, showcase.DefaultConfig())
	section := sectionType()
	key := "dark-" + section.ID.String()

	tree, err := generator.Generate(context.Background(), []*blocks.BlockType{section, heroType()}, showcase.WithContainer(key))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if diff := cmp.Diff([]string{key}, groupKeys(tree)); diff != "" {
		t.Fatalf("unexpected groupings (-want +got):\n%s", diff)
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	generator := showcase.NewGenerator(nil, showcase.DefaultConfig())
	types := []*blocks.BlockType{sectionType(), heroType()}

	first, err := generator.Generate(context.Background(), types)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, err := generator.Generate(context.Background(), types)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Fatalf("expected identical showcases for the same seed")
	}
}

func TestGenerateMarksShowcaseHydration(t *testing.T) {
	var flagged bool
	engine := hydration.NewEngine(hydration.DefaultConfig(), hydration.WithInstanceHook(func(_ context.Context, event *hydration.InstanceEvent) error {
		flagged = event.IsShowcase
		return nil
	}))
	generator := showcase.NewGenerator(engine, showcase.Config{RootTemplateDir: "guideline"})

	tree, err := generator.Generate(context.Background(), []*blocks.BlockType{heroType()})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !flagged {
		t.Fatalf("expected hooks to see showcase hydration")
	}
	slot, _ := tree.Slot(showcase.SlotName)
	group, _ := slot.Group("default-0")
	if path := group.Lookup("hero")[0].TemplatePath; path != "guideline/components/hero.html.twig" {
		t.Fatalf("unexpected template path %q", path)
	}
}

func TestGenerateHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := showcase.NewGenerator(nil, showcase.DefaultConfig()).Generate(ctx, []*blocks.BlockType{heroType()})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
