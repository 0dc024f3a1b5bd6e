package router

import (
	"sync"
	"sync/atomic"
)

// Router is the route table shared by every connection. Lookups read an
// immutable snapshot without locking; registrations are serialized and
// publish a new snapshot, so registering while serving is safe.
type Router struct {
	mu     sync.Mutex // serializes writers
	routes atomic.Pointer[table]
}

// Creates a new router.
func NewRouter() *Router {
	r := &Router{}
	r.routes.Store(emptyTable())
	return r
}

// Register adds handler under the exact (method, template) key. Registering
// the same key again replaces the handler; the route keeps the position of its
// first registration for matching priority.
//
// Templates are "/" separated; a segment starting with ":" captures the rest
// of the request path from that position, eg. "/echo/:value" binds
// value=hello/world for "/echo/hello/world".
func (r *Router) Register(method, template string, handler Handler) {
	if handler == nil {
		panic("router: nil handler for " + method + " " + template)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes.Store(r.routes.Load().with(newRoute(method, template, handler)))
}

// Get registers a new GET route.
func (r *Router) Get(template string, handler Handler) {
	r.Register("GET", template, handler)
}

// Post registers a new POST route.
func (r *Router) Post(template string, handler Handler) {
	r.Register("POST", template, handler)
}

// Put registers a new PUT route.
func (r *Router) Put(template string, handler Handler) {
	r.Register("PUT", template, handler)
}

// Delete registers a new DELETE route.
func (r *Router) Delete(template string, handler Handler) {
	r.Register("DELETE", template, handler)
}

// Lookup is the exact-key path: it returns the route registered under
// (method, path) verbatim, as long as that template has no named segments.
func (r *Router) Lookup(method, path string) (*Route, bool) {
	route, ok := r.routes.Load().lookup(method, path)
	if !ok || route.named {
		return nil, false
	}
	return route, true
}

// Match runs the template matcher over the routes registered for method.
// The first route in registration order that accepts path wins; there is no
// specificity ranking.
func (r *Router) Match(method, path string) (*Match, bool) {
	return r.routes.Load().match(method, path)
}

// Resolve tries the exact-key lookup first and falls back to Match.
func (r *Router) Resolve(method, path string) (*Match, bool) {
	t := r.routes.Load()
	if route, ok := t.lookup(method, path); ok && !route.named {
		return &Match{Route: route, Params: map[string]string{}}, true
	}
	return t.match(method, path)
}

// Routes returns the registered routes in matching order.
func (r *Router) Routes() []Route {
	t := r.routes.Load()
	routes := make([]Route, 0, len(t.routes))
	for _, route := range t.routes {
		routes = append(routes, *route)
	}
	return routes
}
