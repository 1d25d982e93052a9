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
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Router resolves incoming requests to registered routes and runs their
// precomputed execution plans.
//
// Routes are typically registered during application bootstrap, but dynamic
// registration while serving is safe: the matcher publishes immutable tree
// snapshots, so concurrent lookups never observe a half-updated tree.
//
// Example:
//
//	r := router.MustNew()
//	r.GET("/users/:id", func(c *router.Context) (any, error) {
//	    return map[string]string{"id": c.Param("id")}, nil
//	})
//	http.ListenAndServe(":8080", r)
type Router struct {
	matcher *pathMatcher

	global   []HandlerFunc // router-wide BEFORE hooks
	globalMu sync.RWMutex

	observability ObservabilityRecorder
	errorHandler  ErrorHandler

	noRouteHandler HandlerFunc
	noRouteMu      sync.RWMutex

	// Shared step state.
	limits *limiterRegistry
	cache  *responseCache

	// Configuration.
	checkCancellation bool
	maxBodyBytes      int64
	enableH2C         bool
	serverTimeouts    *serverTimeouts
}

// defaultMaxBodyBytes caps request bodies read by the parsing phase (1 MiB).
const defaultMaxBodyBytes = 1 << 20

// serverTimeouts holds HTTP server timeout configuration.
type serverTimeouts struct {
	readHeader time.Duration
	read       time.Duration
	write      time.Duration
	idle       time.Duration
}

// defaultServerTimeouts returns the default timeout configuration.
func defaultServerTimeouts() *serverTimeouts {
	return &serverTimeouts{
		readHeader: 5 * time.Second,
		read:       15 * time.Second,
		write:      30 * time.Second,
		idle:       60 * time.Second,
	}
}

// New creates a router with optional configuration. Configuration is
// validated immediately so misconfiguration fails at startup, not at
// request time.
//
// For a version that panics instead of returning an error, use MustNew.
func New(opts ...Option) (*Router, error) {
	r := &Router{
		matcher:           newPathMatcher(),
		limits:            &limiterRegistry{},
		cache:             &responseCache{},
		checkCancellation: true,
		maxBodyBytes:      defaultMaxBodyBytes,
	}

	for _, opt := range opts {
		opt(r)
	}

	if err := r.validate(); err != nil {
		return nil, fmt.Errorf("router configuration validation failed: %w", err)
	}

	return r, nil
}

// MustNew creates a router and panics on invalid configuration. Convenience
// for startup paths where configuration errors should fail immediately.
func MustNew(opts ...Option) *Router {
	r, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("router.MustNew: %v", err))
	}
	return r
}

// validate checks the router configuration for common errors.
func (r *Router) validate() error {
	if r.maxBodyBytes <= 0 {
		return ErrBodyLimitInvalid
	}
	if t := r.serverTimeouts; t != nil {
		for _, d := range []time.Duration{t.readHeader, t.read, t.write, t.idle} {
			if d <= 0 {
				return ErrServerTimeoutInvalid
			}
		}
	}
	return nil
}

// Register starts a route builder for (method, path). The route only becomes
// live when the builder's Handler call completes.
func (r *Router) Register(method, path string) *RouteBuilder {
	return &RouteBuilder{
		router: r,
		method: strings.ToUpper(method),
		path:   path,
	}
}

// GET registers a GET route with no extra behaviors. Registration errors are
// fatal to startup.
func (r *Router) GET(path string, h Handler) *RouteDescriptor {
	return r.Register(http.MethodGet, path).MustHandler(h)
}

// POST registers a POST route with no extra behaviors.
func (r *Router) POST(path string, h Handler) *RouteDescriptor {
	return r.Register(http.MethodPost, path).MustHandler(h)
}

// PUT registers a PUT route with no extra behaviors.
func (r *Router) PUT(path string, h Handler) *RouteDescriptor {
	return r.Register(http.MethodPut, path).MustHandler(h)
}

// PATCH registers a PATCH route with no extra behaviors.
func (r *Router) PATCH(path string, h Handler) *RouteDescriptor {
	return r.Register(http.MethodPatch, path).MustHandler(h)
}

// DELETE registers a DELETE route with no extra behaviors.
func (r *Router) DELETE(path string, h Handler) *RouteDescriptor {
	return r.Register(http.MethodDelete, path).MustHandler(h)
}

// Use adds router-wide hooks that join every subsequently registered route's
// BEFORE phase, ahead of the route's own Before hooks. Routes registered
// earlier are unaffected: their plans are already frozen.
func (r *Router) Use(fns ...HandlerFunc) {
	r.globalMu.Lock()
	r.global = append(r.global, fns...)
	r.globalMu.Unlock()
}

// NoRoute sets a custom handler for requests that match no registered route.
// Setting nil restores the default structured 404.
func (r *Router) NoRoute(fn HandlerFunc) {
	r.noRouteMu.Lock()
	r.noRouteHandler = fn
	r.noRouteMu.Unlock()
}

// RouteExists reports whether a route is registered for (method, path).
func (r *Router) RouteExists(method, path string) bool {
	return r.matcher.exists(method, path)
}

// ServeHTTP implements http.Handler.
//
// For each request: start the observability lifecycle, resolve the path
// against the matcher snapshot, and either run the matched route's plan or
// answer 404/405. Contexts are pooled and returned after the response.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	var obsState any

	if r.observability != nil {
		var enriched context.Context
		enriched, obsState = r.observability.OnRequestStart(ctx, req)
		if enriched != ctx {
			ctx = enriched
			req = req.WithContext(ctx)
		}
		if obsState != nil {
			w = r.observability.WrapResponseWriter(w, obsState)
		}
	}

	rw := wrapResponseWriter(w)
	c := getContext()
	c.Request = req
	c.Response = rw
	c.router = r

	pattern := "_not_found"
	d, allowed := r.matcher.lookup(req.Method, req.URL.Path, c)
	switch {
	case d != nil:
		pattern = d.pattern
		if r.observability != nil {
			c.logger = r.observability.BuildRequestLogger(ctx, req, pattern)
		}
		r.dispatch(c, d)

	case len(allowed) > 0:
		pattern = "_method_not_allowed"
		r.handleMethodNotAllowed(c, allowed)

	default:
		r.handleNotFound(c)
	}

	releaseContext(c)

	if obsState != nil {
		r.observability.OnRequestEnd(ctx, obsState, rw, pattern)
	}
}

// handleMethodNotAllowed answers 405 with an Allow header listing the
// methods registered for the path.
func (r *Router) handleMethodNotAllowed(c *Context, allowed []string) {
	c.Header("Allow", strings.Join(allowed, ", "))
	if err := c.JSON(http.StatusMethodNotAllowed, statusBody{Error: "Method Not Allowed"}); err != nil {
		c.Error(err)
	}
}

// handleNotFound answers unmatched requests: the custom NoRoute handler when
// installed, otherwise the minimal structured 404 body. No phases run.
func (r *Router) handleNotFound(c *Context) {
	r.noRouteMu.RLock()
	handler := r.noRouteHandler
	r.noRouteMu.RUnlock()

	if handler != nil {
		handler(c)
		return
	}
	if err := c.JSON(http.StatusNotFound, statusBody{Error: "Not Found"}); err != nil {
		c.Error(err)
	}
}
