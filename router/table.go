package router

import (
	"maps"
	"slices"
	"strings"
)

// Route is one registered (method, template) entry.
type Route struct {
	Method   string
	Template string
	Handler  Handler

	segments []string
	// template has at least one :name segment
	named bool
}

type routeKey struct {
	method   string
	template string
}

// table is an immutable snapshot of the registered routes. Registration builds
// a new table and publishes it, so readers never see a partial update.
type table struct {
	// registration order, which is also the matching order
	routes []*Route
	index  map[routeKey]int
}

func emptyTable() *table {
	return &table{index: map[routeKey]int{}}
}

// with returns a copy of t holding route. An existing entry with the same key
// is replaced in place and keeps its position.
func (t *table) with(route *Route) *table {
	next := &table{
		routes: slices.Clone(t.routes),
		index:  make(map[routeKey]int, len(t.index)+1),
	}
	maps.Copy(next.index, t.index)

	key := routeKey{route.Method, route.Template}
	if i, ok := next.index[key]; ok {
		next.routes[i] = route
		return next
	}
	next.index[key] = len(next.routes)
	next.routes = append(next.routes, route)
	return next
}

func (t *table) lookup(method, template string) (*Route, bool) {
	i, ok := t.index[routeKey{method, template}]
	if !ok {
		return nil, false
	}
	return t.routes[i], true
}

func newRoute(method, template string, handler Handler) *Route {
	segments := splitPath(template)
	named := slices.ContainsFunc(segments, func(s string) bool {
		return strings.HasPrefix(s, ":")
	})
	return &Route{
		Method:   method,
		Template: template,
		Handler:  handler,
		segments: segments,
		named:    named,
	}
}
