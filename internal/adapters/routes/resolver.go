package routes

import (
	"context"
	"fmt"
	"strings"
	"sync"

	urlkit "github.com/goliatone/go-urlkit"
)

// Options configures the go-urlkit backed URL parameter resolver.
type Options struct {
	Manager      *urlkit.RouteManager
	DefaultGroup string
	// Routes maps entity classes to route names.
	Routes  map[string]string
	IDParam string
}

// Resolver builds the URL of internal link targets from named routes.
type Resolver struct {
	manager      *urlkit.RouteManager
	defaultGroup string
	routes       map[string]string
	idParam      string

	groupCache map[string]*urlkit.Group
	mu         sync.RWMutex
}

// NewResolver constructs a resolver backed by go-urlkit.
func NewResolver(opts Options) *Resolver {
	if strings.TrimSpace(opts.IDParam) == "" {
		opts.IDParam = "id"
	}
	routes := make(map[string]string, len(opts.Routes))
	for class, route := range opts.Routes {
		routes[normalizeClass(class)] = strings.TrimSpace(route)
	}
	return &Resolver{
		manager:      opts.Manager,
		defaultGroup: strings.TrimSpace(opts.DefaultGroup),
		routes:       routes,
		idParam:      strings.TrimSpace(opts.IDParam),
		groupCache:   make(map[string]*urlkit.Group),
	}
}

// ResolveURLParameter returns the URL of the entity or nil when its class
// has no route.
func (r *Resolver) ResolveURLParameter(_ context.Context, entityClass, id string) (any, error) {
	if r == nil || r.manager == nil || r.defaultGroup == "" {
		return nil, nil
	}
	route, ok := r.routes[normalizeClass(entityClass)]
	if !ok || route == "" {
		return nil, nil
	}

	group, err := r.groupForPath(r.defaultGroup)
	if err != nil {
		return nil, err
	}
	builder, err := safeBuilder(group, route)
	if err != nil {
		return nil, err
	}
	builder.WithParam(r.idParam, strings.TrimSpace(id))
	url, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("routes: build %s for %s:%s: %w", route, entityClass, id, err)
	}
	return url, nil
}

func (r *Resolver) groupForPath(path string) (*urlkit.Group, error) {
	r.mu.RLock()
	group, ok := r.groupCache[path]
	r.mu.RUnlock()
	if ok {
		return group, nil
	}

	parts := strings.Split(path, ".")
	current, err := lookupGroup(r.manager, parts[0])
	if err != nil {
		return nil, err
	}
	for _, part := range parts[1:] {
		current, err = lookupChildGroup(current, part)
		if err != nil {
			return nil, err
		}
	}

	r.mu.Lock()
	r.groupCache[path] = current
	r.mu.Unlock()
	return current, nil
}

func safeBuilder(group *urlkit.Group, route string) (builder *urlkit.Builder, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("routes: route %q not found", route)
		}
	}()
	return group.Builder(route), nil
}

func lookupGroup(manager *urlkit.RouteManager, name string) (group *urlkit.Group, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("routes: route group %q not found", name)
		}
	}()
	return manager.Group(name), nil
}

func lookupChildGroup(parent *urlkit.Group, name string) (group *urlkit.Group, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("routes: child group %q not found", name)
		}
	}()
	return parent.Group(name), nil
}

func normalizeClass(class string) string {
	return strings.ToLower(strings.TrimSpace(class))
}
