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
	"slices"
	"sync"
	"sync/atomic"
)

// pathMatcher maps (method, path) to a RouteDescriptor plus captured
// parameter values.
//
// Thread safety: the tree behind root is immutable. Registration is
// serialized by mu (single writer), builds a modified copy of the descent
// path, and atomically swaps the root pointer. Lookups load the current root
// once and traverse it lock-free, so dynamic registration after serving has
// started never exposes a half-updated tree.
type pathMatcher struct {
	root atomic.Pointer[node]
	mu   sync.Mutex
}

// newPathMatcher returns a matcher with an empty tree.
func newPathMatcher() *pathMatcher {
	m := &pathMatcher{}
	m.root.Store(&node{})
	return m
}

// insert registers a descriptor under (method, pattern).
//
// Pattern violations surface as ErrInvalidRoutePattern and duplicate
// registrations as ErrDuplicateRoute; both are registration-time failures.
// On any error the live tree is unchanged: the new root is only published
// after the copy-on-write insert fully succeeds.
func (m *pathMatcher) insert(method, pattern string, d *RouteDescriptor) error {
	segments, names, err := parsePattern(pattern)
	if err != nil {
		return err
	}
	d.paramNames = names

	m.mu.Lock()
	defer m.mu.Unlock()

	newRoot, err := m.root.Load().insertRoute(method, segments, d)
	if err != nil {
		return err
	}
	m.root.Store(newRoot)

	return nil
}

// lookup resolves a request to a descriptor, capturing path parameters into
// the context and zipping them against the descriptor's positional names.
//
// Returns (descriptor, nil) on a match. When the path shape matches but the
// method has no registration, returns (nil, allowed) with the sorted methods
// that do, so the dispatcher can answer 405 with an Allow header. Returns
// (nil, nil) when nothing matches; lookups never fail in any other way.
func (m *pathMatcher) lookup(method, path string, c *Context) (*RouteDescriptor, []string) {
	terminal := m.root.Load().search(normalizePath(path), c)
	if terminal == nil {
		return nil, nil
	}

	if d := terminal.routes[method]; d != nil {
		c.bindParamNames(d.paramNames)
		return d, nil
	}

	allowed := make([]string, 0, len(terminal.routes))
	for registered := range terminal.routes {
		allowed = append(allowed, registered)
	}
	slices.Sort(allowed)

	return nil, allowed
}

// exists reports whether a route is registered for (method, path).
// Used to verify registration state; not part of the request hot path.
func (m *pathMatcher) exists(method, path string) bool {
	c := getContext()
	defer releaseContext(c)

	d, _ := m.lookup(method, path, c)
	return d != nil
}
