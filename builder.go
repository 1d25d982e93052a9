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
	"net/http"
	"slices"

	"github.com/Moro-JS/moro-sub000/phase"
)

// supportedMethods are the HTTP methods routes may register under.
var supportedMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

// RouteBuilder is a fluent accumulator for one route's cross-cutting
// behaviors, terminated by Handler.
//
// The order With*/Before/After calls are made carries no semantic meaning:
// the behaviors are scheduled into canonical phases when Handler freezes the
// route, so two routes built with identical behavior sets attached in
// different call orders produce identical execution plans. Declaration order
// only breaks ties between behaviors of the same kind.
//
// Example:
//
//	_, err := r.Register(http.MethodPost, "/orders").
//	    WithAuth(router.AuthConfig{Authenticate: lookupSession}).
//	    WithValidation(router.ValidationConfig{Validate: checkOrderBody}).
//	    WithRateLimit(router.RateLimitConfig{Requests: 10, Window: time.Minute}).
//	    Handler(createOrder)
type RouteBuilder struct {
	router    *Router
	method    string
	path      string
	behaviors []phase.Behavior
	done      bool
	err       error
}

// attach appends one behavior entry, preserving declaration order for
// same-phase tiebreaks.
func (b *RouteBuilder) attach(kind phase.Kind, config any) *RouteBuilder {
	b.behaviors = append(b.behaviors, phase.Behavior{Kind: kind, Config: config})
	return b
}

// WithSecurity attaches a hook to the SECURITY phase, the first stage of the
// pipeline. Security hooks may write a rejection and Abort.
func (b *RouteBuilder) WithSecurity(fn HandlerFunc) *RouteBuilder {
	return b.attach(phase.KindSecurity, fn)
}

// WithParsing overrides the implicit parsing behavior for this route.
func (b *RouteBuilder) WithParsing(cfg ParsingConfig) *RouteBuilder {
	return b.attach(phase.KindParsing, cfg)
}

// WithRateLimit attaches a token-bucket rate limit to the RATE_LIMITING
// phase, keyed per {route, client}.
func (b *RouteBuilder) WithRateLimit(cfg RateLimitConfig) *RouteBuilder {
	return b.attach(phase.KindRateLimit, cfg)
}

// Before attaches hooks to the BEFORE phase, after rate limiting and ahead
// of authentication.
func (b *RouteBuilder) Before(fns ...HandlerFunc) *RouteBuilder {
	for _, fn := range fns {
		b.attach(phase.KindBefore, fn)
	}
	return b
}

// WithAuth attaches an authentication scheme to the AUTHENTICATION phase.
func (b *RouteBuilder) WithAuth(cfg AuthConfig) *RouteBuilder {
	return b.attach(phase.KindAuth, cfg)
}

// WithValidation attaches request validation to the VALIDATION phase.
func (b *RouteBuilder) WithValidation(cfg ValidationConfig) *RouteBuilder {
	return b.attach(phase.KindValidation, cfg)
}

// WithTransform attaches a request transform to the TRANSFORM phase.
func (b *RouteBuilder) WithTransform(fn TransformFunc) *RouteBuilder {
	return b.attach(phase.KindTransform, fn)
}

// WithCache attaches response caching to the CACHING phase.
func (b *RouteBuilder) WithCache(cfg CacheConfig) *RouteBuilder {
	return b.attach(phase.KindCache, cfg)
}

// After attaches hooks to the AFTER phase, the last stage before the
// handler itself.
func (b *RouteBuilder) After(fns ...HandlerFunc) *RouteBuilder {
	for _, fn := range fns {
		b.attach(phase.KindAfter, fn)
	}
	return b
}

// Handler freezes the route: the behavior set is scheduled into its
// execution plan, the descriptor is registered with the matcher, and the
// route becomes immutable.
//
// Calling Handler twice on the same builder, calling it before a method and
// path were specified, registering a duplicate (method, pattern), or using a
// malformed pattern are all registration-time errors; nothing is partially
// registered on failure.
func (b *RouteBuilder) Handler(h Handler) (*RouteDescriptor, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.done {
		b.err = fmt.Errorf("%w: %s %s", ErrHandlerAlreadySet, b.method, b.path)
		return nil, b.err
	}
	if b.method == "" || b.path == "" {
		b.err = ErrRouteIncomplete
		return nil, b.err
	}
	if h == nil {
		b.err = fmt.Errorf("%w: %s %s", ErrNilHandler, b.method, b.path)
		return nil, b.err
	}
	if !slices.Contains(supportedMethods, b.method) {
		b.err = fmt.Errorf("%w: %q", ErrInvalidMethod, b.method)
		return nil, b.err
	}

	d := &RouteDescriptor{
		method:    b.method,
		pattern:   b.path,
		behaviors: b.router.assembleBehaviors(b.behaviors),
	}

	plan, err := buildPlan(b.router, d, h)
	if err != nil {
		b.err = err
		return nil, err
	}
	d.plan = plan

	if err := b.router.matcher.insert(b.method, b.path, d); err != nil {
		b.err = err
		return nil, err
	}

	b.done = true
	return d, nil
}

// MustHandler is Handler for startup paths: registration errors are fatal to
// the application and panic immediately.
func (b *RouteBuilder) MustHandler(h Handler) *RouteDescriptor {
	d, err := b.Handler(h)
	if err != nil {
		panic(fmt.Sprintf("router: route registration failed: %v", err))
	}
	return d
}

// assembleBehaviors combines the router-wide hooks and implicit parsing with
// a route's own behaviors. Global hooks come first so they win declaration-
// order tiebreaks within the BEFORE phase.
func (r *Router) assembleBehaviors(routeBehaviors []phase.Behavior) []phase.Behavior {
	r.globalMu.RLock()
	global := r.global
	r.globalMu.RUnlock()

	combined := make([]phase.Behavior, 0, len(global)+len(routeBehaviors)+1)
	for _, fn := range global {
		combined = append(combined, phase.Behavior{Kind: phase.KindBefore, Config: fn})
	}
	combined = append(combined, routeBehaviors...)

	if !slices.ContainsFunc(combined, func(b phase.Behavior) bool { return b.Kind == phase.KindParsing }) {
		combined = append(combined, phase.Behavior{Kind: phase.KindParsing, Config: defaultParsing})
	}

	return combined
}
