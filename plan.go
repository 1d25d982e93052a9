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
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/Moro-JS/moro-sub000/phase"
)

// planStep is one executable step of a route's precomputed plan.
//
// shortCircuits marks steps that are allowed to end the request early with a
// complete response (security, rate limit, auth, validation, cache);
// recoverable marks steps whose failure leaves the request running (an
// optional authentication that fails just leaves the principal unset).
type planStep struct {
	phase         phase.Phase
	kind          phase.Kind
	run           HandlerFunc
	shortCircuits bool
	recoverable   bool
}

// ParsingConfig controls the parsing phase: query-string capture plus JSON
// body decoding for requests that carry a JSON content type.
type ParsingConfig struct {
	// MaxBodyBytes caps the request body read during parsing.
	// Zero means the router default.
	MaxBodyBytes int64

	// DisableBody skips body decoding; the query string is still captured.
	DisableBody bool
}

// AuthConfig plugs an authentication scheme into the AUTHENTICATION phase.
// The concrete mechanism (JWT, sessions, API keys) is the caller's business;
// the pipeline only defines where it runs and how failure is handled.
type AuthConfig struct {
	// Authenticate resolves the request to a principal. Returning a nil
	// principal or an error counts as an authentication failure.
	Authenticate func(*Context) (any, error)

	// Optional makes failure recoverable: the principal stays unset and the
	// plan continues instead of short-circuiting with 401.
	Optional bool
}

// ValidationConfig plugs request validation into the VALIDATION phase.
// A returned error rejects the request with 400 and the error's message.
type ValidationConfig struct {
	Validate func(*Context) error
}

// TransformFunc mutates the accumulated request data in the TRANSFORM phase.
// A returned error is fatal and reaches the error boundary.
type TransformFunc func(*Context) error

// defaultParsing is the implicit parsing behavior attached to any route that
// did not configure one explicitly.
var defaultParsing = ParsingConfig{}

// buildPlan assembles the ordered execution plan for a route: the behaviors
// are scheduled into canonical phases and each is bound to its executable
// step, with the terminal handler appended as the final step.
func buildPlan(r *Router, d *RouteDescriptor, h Handler) ([]planStep, error) {
	scheduled := phase.Schedule(d.behaviors)

	plan := make([]planStep, 0, len(scheduled)+1)
	for _, b := range scheduled {
		step, err := bindStep(r, d, b)
		if err != nil {
			return nil, err
		}
		plan = append(plan, step)
	}

	plan = append(plan, planStep{
		phase: phase.Handler,
		kind:  phase.KindHandler,
		run:   handlerStep(h),
	})

	return plan, nil
}

// bindStep turns one scheduled behavior into an executable plan step.
func bindStep(r *Router, d *RouteDescriptor, b phase.Behavior) (planStep, error) {
	step := planStep{phase: phase.Of(b.Kind), kind: b.Kind}

	switch b.Kind {
	case phase.KindSecurity:
		fn, ok := b.Config.(HandlerFunc)
		if !ok {
			return step, fmt.Errorf("security behavior on %s %s: config must be a HandlerFunc, got %T", d.method, d.pattern, b.Config)
		}
		step.run = fn
		step.shortCircuits = true

	case phase.KindParsing:
		cfg, ok := b.Config.(ParsingConfig)
		if !ok {
			return step, fmt.Errorf("parsing behavior on %s %s: config must be a ParsingConfig, got %T", d.method, d.pattern, b.Config)
		}
		step.run = parsingStep(r, cfg)
		step.shortCircuits = true // malformed bodies reject with 400

	case phase.KindRateLimit:
		cfg, ok := b.Config.(RateLimitConfig)
		if !ok {
			return step, fmt.Errorf("rate-limit behavior on %s %s: config must be a RateLimitConfig, got %T", d.method, d.pattern, b.Config)
		}
		if cfg.Requests <= 0 || cfg.Window <= 0 {
			return step, fmt.Errorf("%w: %s %s", ErrRateLimitInvalid, d.method, d.pattern)
		}
		step.run = rateLimitStep(r, d, cfg)
		step.shortCircuits = true

	case phase.KindBefore, phase.KindAfter:
		fn, ok := b.Config.(HandlerFunc)
		if !ok {
			return step, fmt.Errorf("%s hook on %s %s: config must be a HandlerFunc, got %T", b.Kind, d.method, d.pattern, b.Config)
		}
		step.run = fn

	case phase.KindAuth:
		cfg, ok := b.Config.(AuthConfig)
		if !ok {
			return step, fmt.Errorf("auth behavior on %s %s: config must be an AuthConfig, got %T", d.method, d.pattern, b.Config)
		}
		step.run = authStep(cfg)
		step.shortCircuits = !cfg.Optional
		step.recoverable = cfg.Optional

	case phase.KindValidation:
		cfg, ok := b.Config.(ValidationConfig)
		if !ok {
			return step, fmt.Errorf("validation behavior on %s %s: config must be a ValidationConfig, got %T", d.method, d.pattern, b.Config)
		}
		step.run = validationStep(cfg)
		step.shortCircuits = true

	case phase.KindTransform:
		fn, ok := b.Config.(TransformFunc)
		if !ok {
			return step, fmt.Errorf("transform behavior on %s %s: config must be a TransformFunc, got %T", d.method, d.pattern, b.Config)
		}
		step.run = transformStep(fn)

	case phase.KindCache:
		cfg, ok := b.Config.(CacheConfig)
		if !ok {
			return step, fmt.Errorf("cache behavior on %s %s: config must be a CacheConfig, got %T", d.method, d.pattern, b.Config)
		}
		step.run = cacheStep(r, cfg)
		step.shortCircuits = true

	default:
		return step, fmt.Errorf("%s %s: unknown behavior kind %q", d.method, d.pattern, b.Kind)
	}

	return step, nil
}

// parsingStep captures the query string and decodes JSON request bodies.
func parsingStep(r *Router, cfg ParsingConfig) HandlerFunc {
	limit := cfg.MaxBodyBytes
	if limit <= 0 {
		limit = r.maxBodyBytes
	}

	return func(c *Context) {
		c.Query = c.Request.URL.Query()

		if cfg.DisableBody || c.Request.Body == nil || c.Request.ContentLength == 0 {
			return
		}
		if !isJSONContentType(c.Request.Header.Get("Content-Type")) {
			return
		}

		body := http.MaxBytesReader(nil, c.Request.Body, limit)
		defer body.Close()

		raw, err := io.ReadAll(body)
		if err != nil {
			c.AbortWithJSON(http.StatusRequestEntityTooLarge, statusBody{Error: "Request Body Too Large"})
			return
		}
		if len(raw) == 0 {
			return
		}

		var parsed any
		if err := json.Unmarshal(raw, &parsed); err != nil {
			c.AbortWithJSON(http.StatusBadRequest, statusBody{Error: "Invalid JSON Body"})
			return
		}
		c.Body = parsed
	}
}

// isJSONContentType reports whether a Content-Type header denotes JSON,
// including +json structured suffixes.
func isJSONContentType(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// authStep binds an AuthConfig into the AUTHENTICATION phase.
func authStep(cfg AuthConfig) HandlerFunc {
	return func(c *Context) {
		if cfg.Authenticate == nil {
			return
		}

		principal, err := cfg.Authenticate(c)
		if err != nil || principal == nil {
			if err != nil {
				c.Error(err)
			}
			if cfg.Optional {
				return // recoverable: principal stays unset
			}
			c.AbortWithJSON(http.StatusUnauthorized, statusBody{Error: "Unauthorized"})
			return
		}

		c.SetPrincipal(principal)
	}
}

// validationStep binds a ValidationConfig into the VALIDATION phase.
func validationStep(cfg ValidationConfig) HandlerFunc {
	return func(c *Context) {
		if cfg.Validate == nil {
			return
		}
		if err := cfg.Validate(c); err != nil {
			c.AbortWithJSON(http.StatusBadRequest, statusBody{Error: err.Error()})
		}
	}
}

// transformStep binds a TransformFunc into the TRANSFORM phase. Transform
// errors are unexpected failures, not rejections, so they go to the error
// boundary rather than short-circuiting with a 4xx.
func transformStep(fn TransformFunc) HandlerFunc {
	return func(c *Context) {
		if err := fn(c); err != nil {
			c.fail(err)
		}
	}
}

// handlerStep wraps the terminal handler: invoke, then serialize the return
// value unless the handler already wrote the response directly.
func handlerStep(h Handler) HandlerFunc {
	return func(c *Context) {
		result, err := h(c)
		if err != nil {
			c.fail(err)
			return
		}
		if c.state != stateRunning {
			return
		}
		if result == nil {
			if !c.Written() {
				c.Status(http.StatusOK)
			}
			return
		}
		if c.Written() {
			return
		}

		switch v := result.(type) {
		case string:
			if err := c.String(http.StatusOK, "%s", v); err != nil {
				c.Error(err)
			}
		case []byte:
			if err := c.Data(http.StatusOK, "application/octet-stream", v); err != nil {
				c.Error(err)
			}
		default:
			if err := c.JSON(http.StatusOK, v); err != nil {
				c.Error(err)
			}
		}
	}
}
