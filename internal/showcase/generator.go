package showcase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-content-blocks/fields"
	"github.com/goliatone/go-content-blocks/internal/blocks"
	"github.com/goliatone/go-content-blocks/internal/hydration"
	"github.com/goliatone/go-content-blocks/internal/identity"
	"github.com/goliatone/go-content-blocks/internal/logging"
	"github.com/goliatone/go-content-blocks/pkg/interfaces"
)

// SlotName is the slot generated showcases are rendered under.
const SlotName = "master"

// Host is the pseudo host showcase instances are attached to.
var Host = blocks.Host{Class: "Showcase", ID: "guideline"}

const (
	placeholderInternalURL = "/"
	placeholderExternalURL = "https://example.com"
	placeholderFileURL     = "https://example.com/placeholder.pdf"
)

var placeholderDate = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Config controls showcase generation.
type Config struct {
	RootTemplateDir string
	ListRepetitions int
	MaxCombinations int
	Seed            int64
	DefaultGroupKey string
}

// DefaultConfig mirrors the runtime defaults.
func DefaultConfig() Config {
	return Config{
		RootTemplateDir: "front",
		ListRepetitions: 5,
		MaxCombinations: 64,
		Seed:            1,
		DefaultGroupKey: "default-0",
	}
}

// Generator renders every showcase-visible block type in each of its
// combinations, once per container grouping.
type Generator struct {
	engine *hydration.Engine
	cfg    Config
	logger interfaces.Logger
}

// GeneratorOption customises a Generator.
type GeneratorOption func(*Generator)

// WithLogger sets the generator logger.
func WithLogger(logger interfaces.Logger) GeneratorOption {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGenerator builds a generator hydrating through engine.
func NewGenerator(engine *hydration.Engine, cfg Config, opts ...GeneratorOption) *Generator {
	defaults := DefaultConfig()
	if cfg.ListRepetitions <= 0 {
		cfg.ListRepetitions = defaults.ListRepetitions
	}
	if strings.TrimSpace(cfg.DefaultGroupKey) == "" {
		cfg.DefaultGroupKey = defaults.DefaultGroupKey
	}
	if engine == nil {
		engine = hydration.NewEngine(hydration.Config{DefaultGroupKey: cfg.DefaultGroupKey})
	}
	g := &Generator{engine: engine, cfg: cfg, logger: logging.NoOp()}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// GenerateOption customises one Generate call.
type GenerateOption func(*generateOptions)

type generateOptions struct {
	container string
}

// WithContainer restricts the result to one grouping key. "all" or an empty
// key keeps every grouping.
func WithContainer(key string) GenerateOption {
	return func(o *generateOptions) {
		o.container = strings.TrimSpace(key)
	}
}

// Generate builds the showcase render tree of types. The result has a single
// slot whose groups are the default grouping followed by one grouping per
// container theme.
func (g *Generator) Generate(ctx context.Context, types []*blocks.BlockType, opts ...GenerateOption) (*hydration.Tree, error) {
	options := generateOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	var containers, leaves []*blocks.BlockType
	for _, blockType := range types {
		if blockType == nil || !blockType.Enabled {
			continue
		}
		if blockType.IsContainer {
			containers = append(containers, blockType)
			continue
		}
		if blockType.GuidelineVisible {
			leaves = append(leaves, blockType)
		}
	}

	lorem := NewLorem(g.cfg.Seed)
	seq := &sequence{}
	groupKey := g.cfg.DefaultGroupKey

	instances, err := g.samples(ctx, lorem, seq, groupKey, leaves)
	if err != nil {
		return nil, err
	}
	for _, container := range containers {
		for _, header := range containerHeaders(container) {
			instances = append(instances, header.instance(seq.next()))
			samples, err := g.samples(ctx, lorem, seq, header.key, leaves)
			if err != nil {
				return nil, err
			}
			instances = append(instances, samples...)
		}
	}

	tree := g.engine.Hydrate(ctx, Host, instances,
		hydration.AsShowcase(),
		hydration.WithRootTemplateDir(g.cfg.RootTemplateDir),
	)
	if options.container != "" && options.container != "all" {
		filterGroups(tree, options.container)
	}
	return tree, nil
}

func filterGroups(tree *hydration.Tree, key string) {
	for _, slot := range tree.Slots {
		kept := slot.Groups[:0]
		for _, group := range slot.Groups {
			if group.Key == key {
				kept = append(kept, group)
			}
		}
		slot.Groups = kept
	}
}

type sequence struct{ position int }

func (s *sequence) next() int {
	position := s.position
	s.position++
	return position
}

type containerHeader struct {
	key       string
	blockType *blocks.BlockType
	theme     *blocks.Variant
}

// containerHeaders lists one grouping per theme of container, plus an
// unthemed grouping when no theme is keyed "default".
func containerHeaders(container *blocks.BlockType) []containerHeader {
	var headers []containerHeader
	for i := range container.Themes {
		theme := &container.Themes[i]
		headers = append(headers, containerHeader{
			key:       theme.Keyname + "-" + container.ID.String(),
			blockType: container,
			theme:     theme,
		})
	}
	if !container.HasDefaultTheme() {
		headers = append(headers, containerHeader{
			key:       container.Keyname + "-" + container.ID.String(),
			blockType: container,
		})
	}
	return headers
}

// instance places the container itself; grouping ids are the block type id.
func (h containerHeader) instance(position int) *blocks.Instance {
	id := h.blockType.ID
	instance := &blocks.Instance{
		ID:          id,
		HostClass:   Host.Class,
		HostID:      Host.ID,
		Slot:        SlotName,
		Position:    position,
		BlockTypeID: &id,
		BlockType:   h.blockType,
	}
	if h.theme != nil {
		themeID := h.theme.ID
		instance.ThemeID = &themeID
	}
	return instance
}

func (g *Generator) samples(ctx context.Context, lorem *Lorem, seq *sequence, groupKey string, leaves []*blocks.BlockType) ([]*blocks.Instance, error) {
	var out []*blocks.Instance
	for _, blockType := range leaves {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tree, err := blockType.Tree()
		if err != nil {
			logging.WithFields(logging.FromContext(ctx, g.logger), map[string]any{
				"block_type": blockType.Keyname,
				"error":      err.Error(),
			}).Warn("showcase.block_type.skipped")
			continue
		}
		for _, combination := range Combinations(Axes(tree), g.cfg.MaxCombinations) {
			key := groupKey + "/" + blockType.Keyname + "/" + combination.String()
			values, err := g.values(lorem, tree, tree.Roots(), key, combination)
			if err != nil {
				return nil, err
			}
			out = append(out, g.sample(blockType, key, seq.next(), values))
		}
	}
	return out, nil
}

func (g *Generator) sample(blockType *blocks.BlockType, key string, position int, values []*blocks.FieldValue) *blocks.Instance {
	blockTypeID := blockType.ID
	instance := &blocks.Instance{
		ID:          identity.ShowcaseUUID(key),
		HostClass:   Host.Class,
		HostID:      Host.ID,
		Slot:        SlotName,
		Position:    position,
		BlockTypeID: &blockTypeID,
		BlockType:   blockType,
		Values:      values,
	}
	if len(blockType.Layouts) > 0 {
		layoutID := blockType.Layouts[0].ID
		instance.LayoutID = &layoutID
	}
	return instance
}

func (g *Generator) values(lorem *Lorem, tree *fields.Tree, level []*fields.Node, key string, combination Combination) ([]*blocks.FieldValue, error) {
	out := make([]*blocks.FieldValue, 0, len(level))
	for _, node := range level {
		valueKey := key + "/" + node.Keyname
		value := &blocks.FieldValue{
			ID:       identity.ShowcaseUUID(valueKey),
			FieldID:  node.ID,
			Position: node.Position,
			LinkType: blocks.LinkNone,
		}

		switch params := node.Params().(type) {
		case fields.TitleParams:
			value.Content = text(lorem.Words(4))
			value.Options.Tag, _ = combination.Get(node.Keyname)
			if link, ok := combination.Get(LinkAxis); ok && node.CanHasLink && link != noLink {
				applyLink(value, blocks.ParseLinkType(link))
			}
		case fields.TextParams:
			value.Content = text(placeholderText(lorem, params.EffectiveSubtype()))
			if params.EffectiveSubtype() == fields.SubtypeDate {
				date := placeholderDate
				value.Date = &date
			}
		case fields.TextareaParams:
			if !params.IsWysiwyg {
				value.Content = text(lorem.Sentence())
				break
			}
			html, err := lorem.Wysiwyg()
			if err != nil {
				return nil, err
			}
			value.Content = text(html)
		case fields.ChoiceParams:
			if len(params.Choices) > 0 {
				value.Options.Choice = params.Choices[0].Value
			}
		case fields.ButtonParams:
			value.Content = text(lorem.Words(2))
			if link, ok := combination.Get(node.Keyname); ok {
				applyLink(value, blocks.ParseLinkType(link))
			}
		case fields.SwitchParams:
			state, ok := combination.Get(node.Keyname)
			if !ok {
				state = strconv.FormatBool(true)
			}
			value.Content = text(state)
		case fields.ListParams:
			for i := range g.cfg.ListRepetitions {
				group, err := g.group(lorem, tree, node, fmt.Sprintf("%s/%d", valueKey, i), i, combination)
				if err != nil {
					return nil, err
				}
				value.Groups = append(value.Groups, group)
			}
		case fields.GroupParams:
			group, err := g.group(lorem, tree, node, valueKey+"/0", 0, combination)
			if err != nil {
				return nil, err
			}
			value.Groups = []*blocks.FieldValueGroup{group}
		case fields.ImageParams, fields.FileParams, fields.MovieParams, fields.ObjectParams:
			// Left empty; they need host data to render.
		default:
			value.Content = text(lorem.Words(5))
		}
		out = append(out, value)
	}
	return out, nil
}

func (g *Generator) group(lorem *Lorem, tree *fields.Tree, node *fields.Node, key string, position int, combination Combination) (*blocks.FieldValueGroup, error) {
	values, err := g.values(lorem, tree, tree.Children(node.ID), key, combination)
	if err != nil {
		return nil, err
	}
	return &blocks.FieldValueGroup{
		ID:       identity.ShowcaseUUID(key),
		Position: position,
		Values:   values,
	}, nil
}

func applyLink(value *blocks.FieldValue, linkType blocks.LinkType) {
	value.LinkType = linkType
	switch linkType {
	case blocks.LinkInternal:
		value.LinkURL = placeholderInternalURL
	case blocks.LinkExternal:
		value.LinkURL = placeholderExternalURL
	case blocks.LinkFile:
		value.LinkURL = placeholderFileURL
	}
}

func placeholderText(lorem *Lorem, subtype fields.TextSubtype) string {
	switch subtype {
	case fields.SubtypeInteger:
		return strconv.Itoa(lorem.between(1, 999))
	case fields.SubtypeNumber:
		return strconv.FormatFloat(float64(lorem.between(100, 99999))/100, 'f', 2, 64)
	case fields.SubtypeDate:
		return placeholderDate.Format(time.DateOnly)
	default:
		return lorem.Words(5)
	}
}

func text(value string) *string {
	return &value
}
