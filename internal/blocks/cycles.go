package blocks

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

var ErrLibraryCycle = errors.New("blocks: library inclusion cycle detected")

// CycleError reports the instance of a library's content through which the
// library ends up including itself.
type CycleError struct {
	LibraryID uuid.UUID
	Instance  *Instance
	// Path lists the libraries traversed from the root to the closing reference.
	Path []uuid.UUID
}

func (e *CycleError) Error() string {
	parts := make([]string, 0, len(e.Path)+1)
	parts = append(parts, e.LibraryID.String())
	for _, id := range e.Path {
		parts = append(parts, id.String())
	}
	instanceID := ""
	if e.Instance != nil {
		instanceID = e.Instance.ID.String()
	}
	return fmt.Sprintf("%s: instance %s closes %s", ErrLibraryCycle.Error(), instanceID, strings.Join(parts, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrLibraryCycle }

// LibraryContentLoader loads the stored content of a library.
type LibraryContentLoader interface {
	LoadLibraryContent(ctx context.Context, libraryID uuid.UUID) ([]*Instance, error)
}

// LibraryContentLoaderFunc adapts a function into a LibraryContentLoader.
type LibraryContentLoaderFunc func(ctx context.Context, libraryID uuid.UUID) ([]*Instance, error)

func (f LibraryContentLoaderFunc) LoadLibraryContent(ctx context.Context, libraryID uuid.UUID) ([]*Instance, error) {
	return f(ctx, libraryID)
}

// DetectCycle walks content (the current content of library rootID) and
// returns the top-level instance whose inclusion chain leads back to rootID.
// It returns nil when the content is acyclic. Library content is loaded at
// most once per call.
func DetectCycle(ctx context.Context, rootID uuid.UUID, content []*Instance, loader LibraryContentLoader) (*Instance, error) {
	err := CheckLibraryContent(ctx, rootID, content, loader)
	var cycleErr *CycleError
	if errors.As(err, &cycleErr) {
		return cycleErr.Instance, nil
	}
	return nil, err
}

// CheckLibraryContent is DetectCycle reporting the cycle as a *CycleError.
func CheckLibraryContent(ctx context.Context, rootID uuid.UUID, content []*Instance, loader LibraryContentLoader) error {
	walk := &cycleWalk{
		root:    rootID,
		loader:  loader,
		visited: make(map[uuid.UUID]struct{}),
	}
	origin, path, err := walk.visit(ctx, content, nil, nil)
	if err != nil {
		return err
	}
	if origin == nil {
		return nil
	}
	return &CycleError{LibraryID: rootID, Instance: origin, Path: path}
}

type cycleWalk struct {
	root    uuid.UUID
	loader  LibraryContentLoader
	visited map[uuid.UUID]struct{}
}

func (w *cycleWalk) visit(ctx context.Context, instances []*Instance, origin *Instance, path []uuid.UUID) (*Instance, []uuid.UUID, error) {
	for _, inst := range instances {
		if !inst.ReferencesLibrary() {
			continue
		}
		current := origin
		if current == nil {
			current = inst
		}
		libraryID := *inst.LibraryID
		next := append(slices.Clone(path), libraryID)
		if libraryID == w.root {
			return current, next, nil
		}
		if _, seen := w.visited[libraryID]; seen {
			continue
		}
		w.visited[libraryID] = struct{}{}

		if w.loader == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		nested, err := w.loader.LoadLibraryContent(ctx, libraryID)
		if err != nil {
			var notFound *NotFoundError
			if errors.As(err, &notFound) {
				continue
			}
			return nil, nil, fmt.Errorf("blocks: load library %s content: %w", libraryID, err)
		}
		found, foundPath, err := w.visit(ctx, nested, current, next)
		if err != nil || found != nil {
			return found, foundPath, err
		}
	}
	return nil, nil, nil
}
