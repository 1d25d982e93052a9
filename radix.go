// Copyright 2026 The Moro Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package router

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// defaultWildcardName is the capture name used for a bare "*" segment.
const defaultWildcardName = "wildcard"

// segmentKind classifies one parsed pattern segment.
type segmentKind uint8

const (
	segStatic segmentKind = iota
	segParam
	segWildcard
)

// segment is one parsed component of a route pattern.
type segment struct {
	literal string // segment text for static segments
	kind    segmentKind
}

// edge represents a per-segment static child (linear scan avoids map hashing
// in the hot path).
type edge struct {
	label string
	node  *node
}

// node is one level of the route tree.
//
// A node has at most one param child and at most one wildcard child. The
// param child is anonymous: parameter names are carried only on the terminal
// RouteDescriptor and zipped against captured values once a terminal is
// reached. Two routes like /users/:email/profile and /users/:id/settings
// share the param branch structurally but each resolves its own names, so
// sibling registrations can never contaminate each other's parameters.
//
// Thread safety: nodes are immutable once published. Registration builds a
// modified copy of the descent path and swaps the root pointer (see
// pathMatcher); readers traverse the previous snapshot lock-free.
type node struct {
	edges    []edge                      // static children, matched first
	param    *node                       // anonymous single-segment child
	wildcard *node                       // trailing catch-all child
	routes   map[string]*RouteDescriptor // method → terminal descriptor
}

// findChild returns the static child for the given segment, or nil.
func (n *node) findChild(segment string) *node {
	for i := range n.edges {
		if n.edges[i].label == segment {
			return n.edges[i].node
		}
	}
	return nil
}

// edgeIndex returns the index of the static child for the given label, or -1.
func (n *node) edgeIndex(label string) int {
	for i := range n.edges {
		if n.edges[i].label == label {
			return i
		}
	}
	return -1
}

// clone returns a shallow copy of the node. Child pointers are shared; the
// caller clones further down the descent path as needed.
func (n *node) clone() *node {
	c := &node{
		param:    n.param,
		wildcard: n.wildcard,
		routes:   n.routes,
	}
	if len(n.edges) > 0 {
		c.edges = slices.Clone(n.edges)
	}
	return c
}

// parsePattern splits a route pattern into segments and collects parameter
// names in positional order (the wildcard name, if any, is last).
//
// Grammar: segments separated by "/"; ":name" is a named parameter capturing
// one segment; "*" or "*name" as the last segment is a wildcard capturing the
// remainder. Violations are registration-time errors, never request-time.
func parsePattern(pattern string) ([]segment, []string, error) {
	if pattern == "" {
		pattern = "/"
	}
	if pattern[0] != '/' {
		return nil, nil, fmt.Errorf("%w: %q must start with '/'", ErrInvalidRoutePattern, pattern)
	}

	trimmed := strings.Trim(pattern, "/")
	if trimmed == "" {
		return nil, nil, nil // root route
	}

	raw := strings.Split(trimmed, "/")
	segments := make([]segment, 0, len(raw))
	var names []string

	for i, s := range raw {
		switch {
		case s == "":
			return nil, nil, fmt.Errorf("%w: %q contains an empty segment", ErrInvalidRoutePattern, pattern)

		case s[0] == ':':
			name := s[1:]
			if name == "" {
				return nil, nil, fmt.Errorf("%w: %q has a parameter with no name", ErrInvalidRoutePattern, pattern)
			}
			segments = append(segments, segment{kind: segParam})
			names = append(names, name)

		case s[0] == '*':
			if i != len(raw)-1 {
				return nil, nil, fmt.Errorf("%w: %q has a wildcard before the last segment", ErrInvalidRoutePattern, pattern)
			}
			name := s[1:]
			if name == "" {
				name = defaultWildcardName
			}
			segments = append(segments, segment{kind: segWildcard})
			names = append(names, name)

		default:
			segments = append(segments, segment{literal: s, kind: segStatic})
		}
	}

	return segments, names, nil
}

// insertRoute returns a new tree root with the descriptor attached at the
// pattern's terminal node. The receiver tree is never modified: every node on
// the descent path is cloned, so concurrent readers of the old root observe a
// fully consistent snapshot.
//
// Registering the same (method, exact pattern) twice fails with
// ErrDuplicateRoute; a pattern whose shape collides with an existing
// registration under a different parameter spelling fails with
// ErrAmbiguousRoute. In both cases nothing is published until the caller
// swaps the root, so the live tree is observably unchanged.
func (n *node) insertRoute(method string, segments []segment, d *RouteDescriptor) (*node, error) {
	newRoot := n.clone()
	current := newRoot

	for _, seg := range segments {
		switch seg.kind {
		case segStatic:
			if i := current.edgeIndex(seg.literal); i >= 0 {
				child := current.edges[i].node.clone()
				current.edges[i].node = child
				current = child
			} else {
				child := &node{}
				current.edges = append(current.edges, edge{label: seg.literal, node: child})
				current = child
			}

		case segParam:
			if current.param != nil {
				child := current.param.clone()
				current.param = child
				current = child
			} else {
				child := &node{}
				current.param = child
				current = child
			}

		case segWildcard:
			if current.wildcard != nil {
				child := current.wildcard.clone()
				current.wildcard = child
				current = child
			} else {
				child := &node{}
				current.wildcard = child
				current = child
			}
		}
	}

	if existing := current.routes[method]; existing != nil {
		if existing.pattern == d.pattern {
			return nil, fmt.Errorf("%w: %s %s", ErrDuplicateRoute, method, d.pattern)
		}
		// Same shape, different parameter spelling: a request could match
		// either registration, so the second is rejected as ambiguous.
		return nil, fmt.Errorf("%w: %s %s conflicts with %s", ErrAmbiguousRoute, method, d.pattern, existing.pattern)
	}

	routes := maps.Clone(current.routes)
	if routes == nil {
		routes = make(map[string]*RouteDescriptor, 1)
	}
	routes[method] = d
	current.routes = routes

	return newRoot, nil
}

// search walks the tree for the given normalized path, capturing param and
// wildcard segment values positionally into the context. It returns the
// terminal node, or nil when no route shape matches.
//
// Precedence at each level is static child first, then param, then wildcard,
// so the most specific registration wins (/users/me beats /users/:id).
// A static match commits: a dead end below it is never retried against the
// sibling branches. A param descent that dead-ends does fall back to the
// wildcard sibling, since the param consumes exactly one segment while the
// wildcard catches any remainder; values captured on the abandoned param
// branch are rolled back before the wildcard captures.
func (n *node) search(path string, c *Context) *node {
	if path == "/" || path == "" {
		if len(n.routes) > 0 {
			return n
		}
		return nil
	}

	start := 0
	if path[0] == '/' {
		start = 1
	}
	return n.match(path, start, c)
}

// match resolves the path suffix beginning at offset start against the
// subtree rooted at n.
func (n *node) match(path string, start int, c *Context) *node {
	end := start
	for end < len(path) && path[end] != '/' {
		end++
	}
	seg := path[start:end]
	last := end >= len(path)

	if next := n.findChild(seg); next != nil {
		if last {
			if len(next.routes) > 0 {
				return next
			}
			return nil
		}
		return next.match(path, end+1, c)
	}

	if n.param != nil {
		mark := c.paramCount
		c.captureValue(seg)
		if last {
			if len(n.param.routes) > 0 {
				return n.param
			}
		} else if terminal := n.param.match(path, end+1, c); terminal != nil {
			return terminal
		}
		c.truncateValues(mark)
	}

	// Wildcard consumes the entire remainder as one value.
	if n.wildcard != nil && len(n.wildcard.routes) > 0 {
		c.captureValue(path[start:])
		return n.wildcard
	}

	return nil
}

// normalizePath prepares a request path for traversal: an empty path is
// treated as "/" and a trailing slash is stripped (except for the root).
func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return "/"
		}
	}
	return path
}
