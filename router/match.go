// used by the router to match request paths against templates

package router

import "strings"

// Match is a resolved route together with the parameters captured from the
// request path.
type Match struct {
	Route  *Route
	Params map[string]string
}

// splitPath returns the non-empty segments of path, so "/a/b/" and "a//b"
// both give [a b].
func splitPath(path string) []string {
	segments := []string{}
	for segment := range strings.SplitSeq(path, "/") {
		if segment == "" {
			continue
		}
		segments = append(segments, segment)
	}
	return segments
}

// matchSegments walks template and request segments side by side.
//
// A :name segment captures the rest of the request path from its position,
// joined by "/", and the walk carries on after it. Templates are therefore
// meant to have a single named segment in last position; a second named
// segment still binds but its first sibling has already swallowed its value.
// A template without captures must consume the whole request path.
func matchSegments(template, segments []string) (map[string]string, bool) {
	params := map[string]string{}
	captured := false

	for i, ts := range template {
		if i >= len(segments) {
			// request path ran out before the template did
			return nil, false
		}

		if name, ok := strings.CutPrefix(ts, ":"); ok {
			params[name] = strings.Join(segments[i:], "/")
			captured = true
			continue
		}

		if ts != segments[i] {
			return nil, false
		}
	}

	if !captured && len(segments) != len(template) {
		return nil, false
	}
	return params, true
}

// match tries every route registered for method, in registration order, and
// returns the first one whose template accepts path.
func (t *table) match(method, path string) (*Match, bool) {
	segments := splitPath(path)
	for _, route := range t.routes {
		if route.Method != method {
			continue
		}
		if params, ok := matchSegments(route.segments, segments); ok {
			return &Match{Route: route, Params: params}, true
		}
	}
	return nil, false
}
