package catalog

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-content-blocks/internal/blocks"
	"github.com/goliatone/go-content-blocks/internal/logging"
	"github.com/goliatone/go-content-blocks/pkg/interfaces"
	"github.com/hashicorp/hcl/v2/hclparse"
)

const (
	catalogExtension = ".hcl"
	noteExtension    = ".md"
)

// Catalog is the set of block type definitions loaded from a directory.
type Catalog struct {
	BlockTypes []blocks.RegisterBlockTypeInput
	Notes      map[string]Note
}

// Registry registers every definition of the catalog into a new registry.
func (c *Catalog) Registry() *blocks.Registry {
	registry := blocks.NewRegistry()
	if c == nil {
		return registry
	}
	for _, input := range c.BlockTypes {
		registry.Register(input)
	}
	return registry
}

// Loader reads catalog directories.
type Loader struct {
	logger interfaces.Logger
}

// LoaderOption customises a Loader.
type LoaderOption func(*Loader)

func WithLogger(logger interfaces.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{logger: logging.NoOp()}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// LoadDir walks dir for catalog files in lexical order. Notes are matched to
// block types by keyname; a note summary fills a missing description and a
// hidden note removes the block type from showcases.
func (l *Loader) LoadDir(ctx context.Context, dir string) (*Catalog, error) {
	logger := logging.WithFields(logging.FromContext(ctx, l.logger), map[string]any{"dir": dir})

	var catalogFiles, noteFiles []string
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case catalogExtension:
			catalogFiles = append(catalogFiles, path)
		case noteExtension:
			noteFiles = append(noteFiles, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: walk %s: %w", dir, err)
	}
	sort.Strings(catalogFiles)
	sort.Strings(noteFiles)

	catalog := &Catalog{Notes: map[string]Note{}}
	if len(catalogFiles) == 0 {
		logger.Warn("catalog.dir.empty")
		return catalog, nil
	}

	parser := hclparse.NewParser()
	seen := map[string]string{}
	for _, path := range catalogFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		inputs, err := LoadFile(parser, path)
		if err != nil {
			return nil, err
		}
		for _, input := range inputs {
			if previous, ok := seen[input.Keyname]; ok {
				return nil, fmt.Errorf("%w: %q in %s and %s", ErrDuplicateKeyname, input.Keyname, previous, path)
			}
			seen[input.Keyname] = path
			catalog.BlockTypes = append(catalog.BlockTypes, input)
		}
	}

	for _, path := range noteFiles {
		source, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("catalog: read note %s: %w", path, err)
		}
		note, err := ParseNote(source)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if note.Keyname == "" {
			note.Keyname = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		note.Keyname = blocks.NormalizeKeyname(note.Keyname)
		if _, ok := seen[note.Keyname]; !ok {
			logging.WithFields(logger, map[string]any{"note": path, "keyname": note.Keyname}).Warn("catalog.note.orphaned")
			continue
		}
		catalog.Notes[note.Keyname] = note
	}

	for i := range catalog.BlockTypes {
		input := &catalog.BlockTypes[i]
		note, ok := catalog.Notes[input.Keyname]
		if !ok {
			continue
		}
		if input.Description == nil && note.Summary != "" {
			summary := note.Summary
			input.Description = &summary
		}
		if input.Category == "" {
			input.Category = note.Category
		}
		if note.Hidden {
			input.GuidelineVisible = false
		}
	}

	logger.Info("catalog.dir.loaded", "block_types", len(catalog.BlockTypes), "notes", len(catalog.Notes))
	return catalog, nil
}
