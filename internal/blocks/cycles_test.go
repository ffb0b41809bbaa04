package blocks_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-content-blocks/internal/blocks"
	"github.com/google/uuid"
)

type libraryGraph struct {
	content map[uuid.UUID][]*blocks.Instance
	loads   map[uuid.UUID]int
}

func newLibraryGraph() *libraryGraph {
	return &libraryGraph{
		content: make(map[uuid.UUID][]*blocks.Instance),
		loads:   make(map[uuid.UUID]int),
	}
}

func (g *libraryGraph) include(from uuid.UUID, to ...uuid.UUID) {
	for i, target := range to {
		target := target
		g.content[from] = append(g.content[from], &blocks.Instance{
			ID:        uuid.New(),
			HostClass: blocks.LibraryHostClass,
			HostID:    from.String(),
			Slot:      "main",
			Position:  i,
			LibraryID: &target,
		})
	}
}

func (g *libraryGraph) LoadLibraryContent(_ context.Context, id uuid.UUID) ([]*blocks.Instance, error) {
	g.loads[id]++
	content, ok := g.content[id]
	if !ok {
		return nil, &blocks.NotFoundError{Resource: "block_library", Key: id.String()}
	}
	return content, nil
}

func TestDetectCycleFindsTransitiveInclusion(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	graph := newLibraryGraph()
	graph.include(a, b)
	graph.include(b, a)

	offending, err := blocks.DetectCycle(context.Background(), a, graph.content[a], graph)
	if err != nil {
		t.Fatalf("detect cycle: %v", err)
	}
	if offending == nil {
		t.Fatalf("expected an offending instance")
	}
	if offending.ID != graph.content[a][0].ID {
		t.Fatalf("expected the instance in A's content to be reported, got %s", offending.ID)
	}
}

func TestDetectCycleDirectSelfInclusion(t *testing.T) {
	a := uuid.New()
	graph := newLibraryGraph()
	graph.include(a, a)

	offending, err := blocks.DetectCycle(context.Background(), a, graph.content[a], graph)
	if err != nil {
		t.Fatalf("detect cycle: %v", err)
	}
	if offending == nil || offending.ID != graph.content[a][0].ID {
		t.Fatalf("expected the self reference to be reported, got %+v", offending)
	}
}

func TestDetectCycleDiamondIsAcyclic(t *testing.T) {
	a, b, c, d := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	graph := newLibraryGraph()
	graph.include(a, b, c)
	graph.include(b, d)
	graph.include(c, d)
	graph.content[d] = nil

	offending, err := blocks.DetectCycle(context.Background(), a, graph.content[a], graph)
	if err != nil {
		t.Fatalf("detect cycle: %v", err)
	}
	if offending != nil {
		t.Fatalf("expected no cycle, got %s", offending.ID)
	}
	if graph.loads[d] != 1 {
		t.Fatalf("expected D to be loaded once, got %d", graph.loads[d])
	}
}

func TestDetectCycleIgnoresCyclesNotThroughRoot(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	graph := newLibraryGraph()
	graph.include(a, b)
	graph.include(b, c)
	graph.include(c, b)

	offending, err := blocks.DetectCycle(context.Background(), a, graph.content[a], graph)
	if err != nil {
		t.Fatalf("detect cycle: %v", err)
	}
	if offending != nil {
		t.Fatalf("expected a cycle not involving the root to be ignored")
	}
}

func TestCheckLibraryContentReturnsCycleError(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	graph := newLibraryGraph()
	graph.include(a, b)
	graph.include(b, c)
	graph.include(c, a)

	err := blocks.CheckLibraryContent(context.Background(), a, graph.content[a], graph)
	if !errors.Is(err, blocks.ErrLibraryCycle) {
		t.Fatalf("expected ErrLibraryCycle, got %v", err)
	}
	var cycleErr *blocks.CycleError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected *CycleError, got %T", err)
	}
	if len(cycleErr.Path) != 3 || cycleErr.Path[0] != b || cycleErr.Path[2] != a {
		t.Fatalf("unexpected cycle path %v", cycleErr.Path)
	}
}

func TestDetectCyclePropagatesLoaderFailures(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	graph := newLibraryGraph()
	graph.include(a, b)

	boom := errors.New("boom")
	loader := blocks.LibraryContentLoaderFunc(func(context.Context, uuid.UUID) ([]*blocks.Instance, error) {
		return nil, boom
	})
	if _, err := blocks.DetectCycle(context.Background(), a, graph.content[a], loader); !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}
}
