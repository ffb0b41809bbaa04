package hydration

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-content-blocks/internal/blocks"
	"github.com/goliatone/go-content-blocks/internal/logging"
	"github.com/goliatone/go-content-blocks/internal/media"
	"github.com/goliatone/go-content-blocks/pkg/interfaces"
)

// Config controls render tree construction.
type Config struct {
	RootTemplateDir   string
	TemplateExtension string
	DefaultGroupKey   string
}

// DefaultConfig mirrors the runtime defaults.
func DefaultConfig() Config {
	return Config{
		RootTemplateDir:   "front",
		TemplateExtension: ".html.twig",
		DefaultGroupKey:   "default-0",
	}
}

// InstanceEvent is handed to instance-init hooks before a block instance is
// hydrated. Hooks may disable the instance or add render variables.
type InstanceEvent struct {
	Host       blocks.Host
	Instance   *blocks.Instance
	BlockType  *blocks.BlockType
	IsShowcase bool
	Disabled   bool
	Vars       map[string]any
}

// InstanceHook observes instances before hydration. A returned error skips
// the instance.
type InstanceHook func(ctx context.Context, event *InstanceEvent) error

// Engine turns stored block instances into render trees.
type Engine struct {
	cfg      Config
	entities interfaces.EntityLookup
	params   interfaces.URLParameterResolver
	videos   *media.Resolver
	hooks    []InstanceHook
	logger   interfaces.Logger
}

// Option customises an Engine.
type Option func(*Engine)

// WithEntityLookup wires the collaborator resolving object fields.
func WithEntityLookup(lookup interfaces.EntityLookup) Option {
	return func(e *Engine) {
		e.entities = lookup
	}
}

// WithURLParameterResolver wires the collaborator resolving internal links.
func WithURLParameterResolver(resolver interfaces.URLParameterResolver) Option {
	return func(e *Engine) {
		e.params = resolver
	}
}

// WithVideoResolver replaces the movie URL resolver.
func WithVideoResolver(resolver *media.Resolver) Option {
	return func(e *Engine) {
		if resolver != nil {
			e.videos = resolver
		}
	}
}

// WithInstanceHook appends an instance-init hook.
func WithInstanceHook(hook InstanceHook) Option {
	return func(e *Engine) {
		if hook != nil {
			e.hooks = append(e.hooks, hook)
		}
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine builds an engine. Blank config values fall back to DefaultConfig.
func NewEngine(cfg Config, opts ...Option) *Engine {
	defaults := DefaultConfig()
	if strings.TrimSpace(cfg.DefaultGroupKey) == "" {
		cfg.DefaultGroupKey = defaults.DefaultGroupKey
	}
	if cfg.TemplateExtension == "" {
		cfg.TemplateExtension = defaults.TemplateExtension
	}
	e := &Engine{
		cfg:    cfg,
		videos: media.NewResolver(),
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// HydrateOption customises one Hydrate call.
type HydrateOption func(*hydrateOptions)

type hydrateOptions struct {
	slots           map[string]struct{}
	showcase        bool
	rootTemplateDir *string
}

// WithSlots restricts hydration to the named slots.
func WithSlots(slots ...string) HydrateOption {
	return func(o *hydrateOptions) {
		for _, slot := range slots {
			if slot = strings.TrimSpace(slot); slot != "" {
				if o.slots == nil {
					o.slots = map[string]struct{}{}
				}
				o.slots[slot] = struct{}{}
			}
		}
	}
}

// AsShowcase flags hook events as showcase hydration.
func AsShowcase() HydrateOption {
	return func(o *hydrateOptions) {
		o.showcase = true
	}
}

// WithRootTemplateDir overrides the template directory for one call.
func WithRootTemplateDir(dir string) HydrateOption {
	return func(o *hydrateOptions) {
		o.rootTemplateDir = &dir
	}
}

// Hydrate builds the render tree of host from its instances. Instances must
// carry their resolved BlockType or Library. Hydration never fails as a
// whole: an instance that cannot be rendered is skipped and logged.
func (e *Engine) Hydrate(ctx context.Context, host blocks.Host, instances []*blocks.Instance, opts ...HydrateOption) *Tree {
	options := hydrateOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	logger := logging.WithFields(logging.FromContext(ctx, e.logger), map[string]any{
		"host": host.String(),
	})

	tree := &Tree{}
	for _, bucket := range bySlot(instances) {
		if options.slots != nil {
			if _, ok := options.slots[bucket.name]; !ok {
				continue
			}
		}
		tree.Slots = append(tree.Slots, e.hydrateSlot(ctx, logger, host, bucket, options))
	}
	return tree
}

type slotBucket struct {
	name      string
	instances []*blocks.Instance
}

func bySlot(instances []*blocks.Instance) []slotBucket {
	var buckets []slotBucket
	index := map[string]int{}
	for _, instance := range instances {
		if instance == nil {
			continue
		}
		i, ok := index[instance.Slot]
		if !ok {
			i = len(buckets)
			index[instance.Slot] = i
			buckets = append(buckets, slotBucket{name: instance.Slot})
		}
		buckets[i].instances = append(buckets[i].instances, instance)
	}
	for i := range buckets {
		sort.SliceStable(buckets[i].instances, func(a, b int) bool {
			return buckets[i].instances[a].Position < buckets[i].instances[b].Position
		})
	}
	return buckets
}

func (e *Engine) hydrateSlot(ctx context.Context, logger interfaces.Logger, host blocks.Host, bucket slotBucket, options hydrateOptions) *Slot {
	slot := &Slot{Name: bucket.name}
	active := newDefaultGroup(e.cfg.DefaultGroupKey)
	slot.Groups = append(slot.Groups, active)

	for _, instance := range bucket.instances {
		skip := func(reason string, args ...any) {
			logging.WithFields(logger, map[string]any{
				"slot":        bucket.name,
				"instance_id": instance.ID.String(),
				"reason":      reason,
			}).Warn("hydration.instance.skipped", args...)
		}
		key := fmt.Sprintf("%d-%s", instance.Position, instance.ID)

		if instance.ReferencesLibrary() {
			library := instance.Library
			if library == nil {
				skip("library_unresolved")
				continue
			}
			if library.Offered() {
				active.add(key, &Node{ID: instance.ID, Type: NodeTypeLibrary, Keyname: library.Keyname})
			}
			continue
		}

		blockType := instance.BlockType
		if blockType == nil {
			skip("block_type_unresolved")
			continue
		}

		event := &InstanceEvent{
			Host:       host,
			Instance:   instance,
			BlockType:  blockType,
			IsShowcase: options.showcase,
			Vars:       map[string]any{},
		}
		if err := e.runHooks(ctx, event); err != nil {
			skip("hook_failed", "error", err)
			continue
		}
		if event.Disabled || !blockType.Enabled {
			continue
		}

		if blockType.IsContainer {
			theme := variantKeyname(blockType.Theme(instance.ThemeID))
			prefix := blockType.Keyname
			if theme != nil {
				prefix = *theme
			}
			groupKey := prefix + "-" + instance.ID.String()
			if existing, ok := slot.Group(groupKey); ok {
				active = existing
				continue
			}
			active = &Group{
				Key:       groupKey,
				ID:        instance.ID,
				Theme:     theme,
				Option:    variantKeyname(blockType.Option(instance.OptionID)),
				Keyname:   blockType.Keyname,
				Vars:      event.Vars,
				byKeyname: map[string][]*Node{},
			}
			slot.Groups = append(slot.Groups, active)
			continue
		}

		node, err := e.renderInstance(ctx, instance, event.Vars, options)
		if err != nil {
			skip("schema_invalid", "error", err)
			continue
		}
		active.add(key, node)
	}
	return slot
}

func (e *Engine) runHooks(ctx context.Context, event *InstanceEvent) error {
	for _, hook := range e.hooks {
		if err := hook(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// RenderInstance hydrates one leaf block instance.
func (e *Engine) RenderInstance(ctx context.Context, instance *blocks.Instance, vars map[string]any, opts ...HydrateOption) (*Node, error) {
	options := hydrateOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	return e.renderInstance(ctx, instance, vars, options)
}

func (e *Engine) renderInstance(ctx context.Context, instance *blocks.Instance, vars map[string]any, options hydrateOptions) (*Node, error) {
	blockType := instance.BlockType
	if blockType == nil {
		return nil, fmt.Errorf("hydration: instance %s has no block type", instance.ID)
	}
	tree, err := blockType.Tree()
	if err != nil {
		return nil, err
	}

	root := e.cfg.RootTemplateDir
	if options.rootTemplateDir != nil {
		root = *options.rootTemplateDir
	}
	return &Node{
		ID:           instance.ID,
		Keyname:      blockType.Keyname,
		Type:         NodeTypeDefault,
		Theme:        variantKeyname(blockType.Theme(instance.ThemeID)),
		Option:       variantKeyname(blockType.Option(instance.OptionID)),
		Layout:       variantKeyname(blockType.Layout(instance.LayoutID)),
		TemplatePath: templatePath(root, blockType.TemplatePathOrDefault(e.cfg.TemplateExtension)),
		Values:       e.ResolveValues(ctx, tree, tree.Roots(), instance.ID, instance.Values),
		Vars:         vars,
	}, nil
}

func templatePath(root, path string) string {
	root = strings.TrimRight(strings.ReplaceAll(strings.TrimSpace(root), "\\", "/"), "/")
	path = strings.TrimLeft(path, "/")
	if root == "" {
		return path
	}
	return root + "/" + path
}

func variantKeyname(variant *blocks.Variant) *string {
	if variant == nil {
		return nil
	}
	keyname := variant.Keyname
	return &keyname
}
