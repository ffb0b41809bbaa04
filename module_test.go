package contentblocks_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	contentblocks "github.com/goliatone/go-content-blocks"
	"github.com/goliatone/go-content-blocks/internal/blocks"
	"github.com/goliatone/go-content-blocks/internal/di"
	"github.com/goliatone/go-content-blocks/internal/hydration"
	"github.com/goliatone/go-content-blocks/pkg/interfaces"
	"github.com/google/go-cmp/cmp"
)

const heroCatalog = `block_type "hero" {
  name = "Hero"

  field "heading" {
    type = "title"
  }
}
`

func newModule(t *testing.T, cfg contentblocks.Config, opts ...di.Option) *contentblocks.Module {
	t.Helper()
	module, err := contentblocks.New(cfg, opts...)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	t.Cleanup(func() { _ = module.Close() })
	return module
}

func syncHero(t *testing.T, module *contentblocks.Module) *blocks.BlockType {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "hero.hcl"), []byte(heroCatalog), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	ctx := context.Background()
	if err := module.SyncCatalog(ctx, dir); err != nil {
		t.Fatalf("sync catalog: %v", err)
	}
	types, err := module.Blocks().ListBlockTypes(ctx)
	if err != nil {
		t.Fatalf("list block types: %v", err)
	}
	if len(types) != 1 || types[0].Keyname != "hero" {
		t.Fatalf("expected hero block type, got %+v", types)
	}
	return types[0]
}

func TestModuleRenderRestrictsSlots(t *testing.T) {
	ctx := context.Background()
	module := newModule(t, contentblocks.DefaultConfig())
	hero := syncHero(t, module)

	page := contentblocks.Host{Class: "Page", ID: "1"}
	for _, slot := range []string{"main", "aside"} {
		heading := "In " + slot
		if _, err := module.Blocks().AttachInstance(ctx, blocks.AttachInstanceInput{
			Host:        page,
			Slot:        slot,
			BlockTypeID: &hero.ID,
			Values: []*blocks.FieldValue{
				{FieldID: hero.Fields[0].ID, Content: &heading},
			},
		}); err != nil {
			t.Fatalf("attach %s: %v", slot, err)
		}
	}

	full, err := module.Render(ctx, page)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	var names []string
	for _, slot := range full.Slots {
		names = append(names, slot.Name)
	}
	if diff := cmp.Diff([]string{"main", "aside"}, names); diff != "" {
		t.Fatalf("unexpected slots (-want +got):\n%s", diff)
	}

	aside, err := module.Render(ctx, page, "aside")
	if err != nil {
		t.Fatalf("render aside: %v", err)
	}
	if len(aside.Slots) != 1 || aside.Slots[0].Name != "aside" {
		t.Fatalf("expected only the aside slot, got %+v", aside.Slots)
	}
	nodes := aside.Slots[0].Groups[0].Lookup("hero")
	if len(nodes) != 1 {
		t.Fatalf("expected one hero node, got %d", len(nodes))
	}
	raw, _ := nodes[0].Values.Get("heading")
	heading, ok := raw.(hydration.Values)
	if !ok {
		t.Fatalf("expected hydrated heading values, got %T", raw)
	}
	if got, _ := heading.Get("value"); got == nil || *got.(*string) != "In aside" {
		t.Fatalf("expected aside heading, got %v", got)
	}
}

func TestModuleShowcaseRendersCatalog(t *testing.T) {
	module := newModule(t, contentblocks.DefaultConfig())
	syncHero(t, module)

	tree, err := module.Showcase(context.Background())
	if err != nil {
		t.Fatalf("showcase: %v", err)
	}
	if len(tree.Slots) != 1 || len(tree.Slots[0].Groups) == 0 {
		t.Fatalf("expected a single showcase slot, got %+v", tree)
	}
	if nodes := tree.Slots[0].Groups[0].Lookup("hero"); len(nodes) == 0 {
		t.Fatal("expected hero samples in the default grouping")
	}
}

func TestModuleShowcaseDisabled(t *testing.T) {
	cfg := contentblocks.DefaultConfig()
	cfg.Showcase.Enabled = false
	module := newModule(t, cfg)

	if _, err := module.Showcase(context.Background()); !errors.Is(err, contentblocks.ErrShowcaseDisabled) {
		t.Fatalf("expected ErrShowcaseDisabled, got %v", err)
	}
}

type cdnFiles struct{}

func (cdnFiles) ResolveFile(_ context.Context, handle string) (*interfaces.ResolvedFile, error) {
	return &interfaces.ResolvedFile{URL: "https://cdn.example.com/" + handle}, nil
}

func TestModuleResolveFile(t *testing.T) {
	ctx := context.Background()
	module := newModule(t, contentblocks.DefaultConfig(), di.WithFileResolver(cdnFiles{}))

	image := "hero.png"
	resolved, err := module.ResolveFile(ctx, &blocks.FieldValue{Image: &image})
	if err != nil {
		t.Fatalf("resolve image: %v", err)
	}
	if resolved == nil || resolved.URL != "https://cdn.example.com/hero.png" {
		t.Fatalf("unexpected resolved file %+v", resolved)
	}

	blank := " "
	file := "brochure.pdf"
	resolved, err = module.ResolveFile(ctx, &blocks.FieldValue{Image: &blank, File: &file})
	if err != nil {
		t.Fatalf("resolve file: %v", err)
	}
	if resolved == nil || resolved.URL != "https://cdn.example.com/brochure.pdf" {
		t.Fatalf("expected file handle fallback, got %+v", resolved)
	}

	if resolved, err = module.ResolveFile(ctx, &blocks.FieldValue{}); err != nil || resolved != nil {
		t.Fatalf("expected nil for a value without handle, got %+v (%v)", resolved, err)
	}
}

func TestModuleDuplicateAndDeleteHost(t *testing.T) {
	ctx := context.Background()
	module := newModule(t, contentblocks.DefaultConfig())
	hero := syncHero(t, module)

	source := contentblocks.Host{Class: "Page", ID: "10"}
	target := contentblocks.Host{Class: "Page", ID: "11"}
	if _, err := module.Blocks().AttachInstance(ctx, blocks.AttachInstanceInput{
		Host:        source,
		Slot:        "main",
		BlockTypeID: &hero.ID,
	}); err != nil {
		t.Fatalf("attach: %v", err)
	}

	if err := module.DuplicateHost(ctx, source, target); err != nil {
		t.Fatalf("duplicate host: %v", err)
	}
	if err := module.DeleteHost(ctx, source); err != nil {
		t.Fatalf("delete host: %v", err)
	}

	tree, err := module.Render(ctx, target)
	if err != nil {
		t.Fatalf("render target: %v", err)
	}
	if len(tree.Slots) != 1 {
		t.Fatalf("expected duplicated content on target, got %+v", tree.Slots)
	}
	if tree, _ = module.Render(ctx, source); len(tree.Slots) != 0 {
		t.Fatalf("expected source to be empty, got %+v", tree.Slots)
	}
}
