package catalog_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-content-blocks/fields"
	"github.com/goliatone/go-content-blocks/internal/blocks"
	"github.com/goliatone/go-content-blocks/internal/catalog"
	"github.com/goliatone/go-content-blocks/internal/identity"
	"github.com/goliatone/go-content-blocks/internal/validation"
	"github.com/google/go-cmp/cmp"
)

func TestLoadFileDecodesBlockType(t *testing.T) {
	inputs, err := catalog.LoadFile(nil, filepath.Join("testdata", "catalog", "hero.hcl"))
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if len(inputs) != 1 {
		t.Fatalf("expected one block type, got %d", len(inputs))
	}
	hero := inputs[0]
	if hero.ID != identity.BlockTypeUUID("hero") || hero.Keyname != "hero" || hero.Name != "Hero Banner" {
		t.Fatalf("unexpected block type identity %+v", hero)
	}
	if !hero.Enabled || hero.IsContainer || !hero.GuidelineVisible {
		t.Fatalf("expected defaults enabled, leaf, guideline visible: %+v", hero)
	}
	if hero.TemplatePath == nil || *hero.TemplatePath != "components/hero.html.twig" {
		t.Fatalf("unexpected template path %v", hero.TemplatePath)
	}

	var layouts []string
	for _, layout := range hero.Layouts {
		layouts = append(layouts, layout.Keyname)
	}
	if diff := cmp.Diff([]string{"wide", "narrow"}, layouts); diff != "" {
		t.Fatalf("unexpected layouts (-want +got):\n%s", diff)
	}
	if hero.Themes[0].Title != "Dark" || hero.Themes[0].ID != identity.VariantUUID("hero", "theme", "dark") {
		t.Fatalf("unexpected theme %+v", hero.Themes[0])
	}

	tree, err := fields.NewTree(hero.Fields)
	if err != nil {
		t.Fatalf("build tree: %v", err)
	}
	heading, ok := tree.Node(identity.FieldUUID("hero", "heading"))
	if !ok {
		t.Fatalf("expected heading field")
	}
	if diff := cmp.Diff(fields.TitleParams{Tags: []string{"h1", "h2"}}, heading.Params()); diff != "" {
		t.Fatalf("unexpected heading params (-want +got):\n%s", diff)
	}
	if !heading.CanHasLink || heading.CSSClass != "hero__title" {
		t.Fatalf("unexpected heading %+v", heading)
	}

	items := identity.FieldUUID("hero", "items")
	var children []string
	for _, child := range tree.Children(items) {
		children = append(children, child.Keyname)
	}
	if diff := cmp.Diff([]string{"label", "featured"}, children); diff != "" {
		t.Fatalf("unexpected list children (-want +got):\n%s", diff)
	}
	list, _ := tree.Node(items)
	if diff := cmp.Diff(fields.ListParams{Max: 4}, list.Params()); diff != "" {
		t.Fatalf("unexpected list params (-want +got):\n%s", diff)
	}
	if list.BlockDirection != fields.DirectionColumn {
		t.Fatalf("expected column direction, got %q", list.BlockDirection)
	}

	want := []blocks.RestrictionRule{{Value: "Page:all", ContainerName: "all", Condition: blocks.RestrictionInclude}}
	if diff := cmp.Diff(want, hero.Restrictions); diff != "" {
		t.Fatalf("unexpected restrictions (-want +got):\n%s", diff)
	}
}

func TestLoadFileIsDeterministic(t *testing.T) {
	path := filepath.Join("testdata", "catalog", "hero.hcl")
	first, err := catalog.LoadFile(nil, path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	second, err := catalog.LoadFile(nil, path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("expected identical definitions (-first +second):\n%s", diff)
	}
}

func TestLoadFileRejectsInvalidFields(t *testing.T) {
	if _, err := catalog.LoadFile(nil, filepath.Join("testdata", "invalid_type.hcl")); !errors.Is(err, fields.ErrUnknownTypeTag) {
		t.Fatalf("expected ErrUnknownTypeTag, got %v", err)
	}
	if _, err := catalog.LoadFile(nil, filepath.Join("testdata", "invalid_params.hcl")); !errors.Is(err, catalog.ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField, got %v", err)
	}

	src := []byte(`
block_type "broken" {
  name = "Broken"
  field "heading" {
    type   = "title"
    params = { tags = "h1" }
  }
}
`)
	if _, err := catalog.LoadSource(src, "inline.hcl"); !errors.Is(err, validation.ErrParametersValidation) {
		t.Fatalf("expected ErrParametersValidation, got %v", err)
	}

	restriction := []byte(`
block_type "broken" {
  name = "Broken"
  restriction {
    value     = "Page:all"
    condition = "maybe"
  }
}
`)
	if _, err := catalog.LoadSource(restriction, "inline.hcl"); !errors.Is(err, catalog.ErrInvalidRestriction) {
		t.Fatalf("expected ErrInvalidRestriction, got %v", err)
	}
}

func TestLoadDirMergesNotes(t *testing.T) {
	loaded, err := catalog.NewLoader().LoadDir(context.Background(), filepath.Join("testdata", "catalog"))
	if err != nil {
		t.Fatalf("load dir: %v", err)
	}

	var keynames []string
	for _, input := range loaded.BlockTypes {
		keynames = append(keynames, input.Keyname)
	}
	if diff := cmp.Diff([]string{"hero", "section"}, keynames); diff != "" {
		t.Fatalf("unexpected block types (-want +got):\n%s", diff)
	}

	hero := loaded.BlockTypes[0]
	if hero.Description == nil || *hero.Description != "Large heading block opening a page." {
		t.Fatalf("expected note summary as description, got %v", hero.Description)
	}
	if hero.Category != "marketing" {
		t.Fatalf("expected note category, got %q", hero.Category)
	}
	if _, ok := loaded.Notes["stale"]; ok {
		t.Fatalf("expected orphaned note to be dropped")
	}

	section := loaded.BlockTypes[1]
	if !section.IsContainer || section.GuidelineVisible {
		t.Fatalf("unexpected section flags %+v", section)
	}

	registry := loaded.Registry()
	if registry.Len() != 2 {
		t.Fatalf("expected registry with 2 entries, got %d", registry.Len())
	}
	if _, ok := registry.Get("section"); !ok {
		t.Fatalf("expected section in registry")
	}
}

func TestLoadDirRejectsDuplicateKeynames(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.hcl", "b.hcl"} {
		writeFile(t, filepath.Join(dir, name), `block_type "hero" { name = "Hero" }`)
	}
	if _, err := catalog.NewLoader().LoadDir(context.Background(), dir); !errors.Is(err, catalog.ErrDuplicateKeyname) {
		t.Fatalf("expected ErrDuplicateKeyname, got %v", err)
	}
}

func TestLoadDirEmpty(t *testing.T) {
	loaded, err := catalog.NewLoader().LoadDir(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("load dir: %v", err)
	}
	if len(loaded.BlockTypes) != 0 {
		t.Fatalf("expected no block types, got %d", len(loaded.BlockTypes))
	}
}

func TestParseNote(t *testing.T) {
	note, err := catalog.ParseNote([]byte("---\ntitle: Card\nkeyname: card\nhidden: true\ntags: [a, b]\n---\n\n# Card\n"))
	if err != nil {
		t.Fatalf("parse note: %v", err)
	}
	want := catalog.Note{Keyname: "card", Title: "Card", Tags: []string{"a", "b"}, Hidden: true, Body: []byte("# Card")}
	if diff := cmp.Diff(want, note); diff != "" {
		t.Fatalf("unexpected note (-want +got):\n%s", diff)
	}
}
