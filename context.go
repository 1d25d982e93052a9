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
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"
)

// HandlerFunc is the signature of phase hooks (security, before/after,
// transform steps and global middleware). A hook receives the per-request
// Context; it may mutate it, write a response and Abort to short-circuit the
// remaining pipeline, or panic to reach the error boundary.
type HandlerFunc func(*Context)

// Handler is the terminal route handler. Its return value is serialized as
// the response body when the handler did not already write the response
// directly: strings as text/plain, []byte as raw bytes, anything else as
// JSON. A non-nil error is routed to the dispatcher's error boundary.
type Handler func(*Context) (any, error)

// ErrorHandler customizes the dispatcher's error boundary. When installed it
// is responsible for writing the response for failed requests; otherwise a
// generic 500 is sent.
type ErrorHandler func(*Context, error)

// execState tracks a request's progress through its execution plan.
type execState int32

const (
	statePending execState = iota
	stateRunning
	stateShortCircuited
	stateFailed
	stateCancelled
	stateCompleted
)

// statusBody is the minimal structured body used for machine-written
// responses (404, 405, 429, 500 and short-circuit rejections).
type statusBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// maxInlineParams is the number of parameters stored in the fixed arrays
// before overflowing to heap storage. Routes rarely exceed it.
const maxInlineParams = 8

// Context carries the per-request state through the execution plan: the
// request/response handles, extracted path parameters, parsed query and body,
// the authenticated principal, and the plan's progress.
//
// ⚠️ Context is NOT thread-safe and is pooled. It is bound to a single
// request; do not retain references past the handler's return and do not
// share it across goroutines; copy the data you need first.
type Context struct {
	Request  *http.Request
	Response http.ResponseWriter

	router     *Router
	descriptor *RouteDescriptor
	state      execState
	failure    error

	// Parameter storage. Values are captured positionally during tree
	// traversal; names are zipped in from the matched descriptor once the
	// terminal node is known.
	paramCount     int
	paramKeys      [maxInlineParams]string
	paramValues    [maxInlineParams]string
	overflowValues []string          // captured values beyond the arrays
	Params         map[string]string // overflow name→value pairs, nil when unused

	// Accumulated request data, populated by the parsing phase.
	Query url.Values
	Body  any

	principal any
	logger    *slog.Logger
	errors    []error

	// Response-cache capture installed by the caching phase on a miss.
	pendingCache *pendingCache
}

// captureValue records one param or wildcard segment value in positional
// order during tree traversal.
func (c *Context) captureValue(v string) {
	if c.paramCount < maxInlineParams {
		c.paramValues[c.paramCount] = v
	} else {
		c.overflowValues = append(c.overflowValues, v)
	}
	c.paramCount++
}

// truncateValues discards the values captured after mark, undoing an
// abandoned param-branch descent so a fallback branch captures cleanly.
func (c *Context) truncateValues(mark int) {
	for i := mark; i < c.paramCount && i < maxInlineParams; i++ {
		c.paramValues[i] = ""
	}
	if keep := mark - maxInlineParams; keep > 0 {
		c.overflowValues = c.overflowValues[:keep]
	} else if len(c.overflowValues) > 0 {
		c.overflowValues = c.overflowValues[:0]
	}
	c.paramCount = mark
}

// bindParamNames zips the matched descriptor's positional names against the
// values captured during traversal. Called exactly once per match.
func (c *Context) bindParamNames(names []string) {
	n := min(c.paramCount, len(names))
	for i := 0; i < n; i++ {
		if i < maxInlineParams {
			c.paramKeys[i] = names[i]
			continue
		}
		if c.Params == nil {
			c.Params = make(map[string]string, len(names)-maxInlineParams)
		}
		c.Params[names[i]] = c.overflowValues[i-maxInlineParams]
	}
}

// Param returns the value of the named path parameter, or "" when the
// matched route declares no such parameter.
//
// Example:
//
//	r.GET("/users/:id", func(c *router.Context) (any, error) {
//	    return map[string]string{"id": c.Param("id")}, nil
//	})
func (c *Context) Param(key string) string {
	n := min(c.paramCount, maxInlineParams)
	for i := 0; i < n; i++ {
		if c.paramKeys[i] == key {
			return c.paramValues[i]
		}
	}
	return c.Params[key]
}

// ParamCount returns the number of path parameters captured for this request.
func (c *Context) ParamCount() int { return c.paramCount }

// Route returns the matched route's descriptor, or nil before routing.
func (c *Context) Route() *RouteDescriptor { return c.descriptor }

// Pattern returns the matched route's declared pattern, or "" when no route
// matched.
func (c *Context) Pattern() string {
	if c.descriptor == nil {
		return ""
	}
	return c.descriptor.pattern
}

// SetPrincipal records the authenticated principal for the request.
// The authentication phase calls this on success; handlers and later phases
// read it back via Principal.
func (c *Context) SetPrincipal(p any) { c.principal = p }

// Principal returns the authenticated principal, or nil when authentication
// did not run or an optional authentication failed.
func (c *Context) Principal() any { return c.principal }

// Abort short-circuits the execution plan: no later phase steps run and the
// handler is never invoked. The caller must have written the response first;
// the dispatcher trusts the short-circuiting step to have produced it.
func (c *Context) Abort() {
	if c.state == stateRunning {
		c.state = stateShortCircuited
	}
}

// IsAborted reports whether the plan was short-circuited.
func (c *Context) IsAborted() bool { return c.state == stateShortCircuited }

// AbortWithJSON writes a JSON response and short-circuits the plan.
// This is the usual exit for rejection paths (auth, validation, rate limit):
// an expected outcome modeled as a controlled early exit, not an error.
func (c *Context) AbortWithJSON(code int, obj any) {
	if err := c.JSON(code, obj); err != nil {
		c.Error(err)
	}
	c.Abort()
}

// AbortWithStatus writes a status-only response and short-circuits the plan.
func (c *Context) AbortWithStatus(code int) {
	c.Status(code)
	c.Abort()
}

// fail moves the request to the failed state. The dispatcher's error
// boundary turns it into a 500 unless a custom ErrorHandler is installed.
func (c *Context) fail(err error) {
	if c.state == stateRunning {
		c.state = stateFailed
		c.failure = err
	}
}

// Error collects a non-fatal error encountered during request processing.
// Collected errors are available via Errors and logged at request end.
func (c *Context) Error(err error) {
	if err != nil {
		c.errors = append(c.errors, err)
	}
}

// Errors returns the errors collected during this request.
func (c *Context) Errors() []error { return c.errors }

// Logger returns the request-scoped logger. It never returns nil: when no
// observability recorder is configured the shared no-op logger is returned.
func (c *Context) Logger() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return noopLogger
}

// Written reports whether response headers have been sent. The dispatcher
// uses this to guard against double writes on every exit path.
func (c *Context) Written() bool {
	if info, ok := c.Response.(ResponseInfo); ok {
		return info.Written()
	}
	return false
}

// Status writes the response status code, once.
func (c *Context) Status(code int) {
	if c.Response == nil || c.Written() {
		return
	}
	c.Response.WriteHeader(code)
}

// Header sets a response header. No-op after headers are sent.
func (c *Context) Header(key, value string) {
	if c.Response == nil || c.Written() {
		return
	}
	c.Response.Header().Set(key, value)
}

// JSON sends a JSON response with the given status code.
//
// The body is encoded to a buffer first so an encoding failure never leaves
// a half-written response.
func (c *Context) JSON(code int, obj any) error {
	if c.Response == nil {
		return ErrContextResponseNil
	}

	var buf strings.Builder
	buf.Grow(256)
	if err := json.NewEncoder(&buf).Encode(obj); err != nil {
		return fmt.Errorf("JSON encoding failed for type %T: %w", obj, err)
	}

	c.Response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.Status(code)
	_, err := io.WriteString(c.Response, buf.String())

	return err
}

// YAML sends a YAML response with the given status code.
func (c *Context) YAML(code int, obj any) error {
	if c.Response == nil {
		return ErrContextResponseNil
	}

	out, err := yaml.Marshal(obj)
	if err != nil {
		return fmt.Errorf("YAML encoding failed for type %T: %w", obj, err)
	}

	c.Response.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	c.Status(code)
	_, err = c.Response.Write(out)

	return err
}

// String sends a plain-text response with the given status code.
func (c *Context) String(code int, format string, values ...any) error {
	if c.Response == nil {
		return ErrContextResponseNil
	}

	c.Response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.Status(code)

	var err error
	if len(values) > 0 {
		_, err = fmt.Fprintf(c.Response, format, values...)
	} else {
		_, err = io.WriteString(c.Response, format)
	}

	return err
}

// Data sends raw bytes with the given status code and content type.
func (c *Context) Data(code int, contentType string, data []byte) error {
	if c.Response == nil {
		return ErrContextResponseNil
	}

	if contentType != "" {
		c.Response.Header().Set("Content-Type", contentType)
	}
	c.Status(code)
	_, err := c.Response.Write(data)

	return err
}

// ClientIP returns the client address for rate-limit keying and logs.
// X-Real-IP and the first X-Forwarded-For hop are honored before falling
// back to the connection's remote address.
func (c *Context) ClientIP() string {
	if ip := strings.TrimSpace(c.Request.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if fwd := c.Request.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		if ip := strings.TrimSpace(fwd); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return host
}

// TraceID returns the trace ID of the active span, or "" when tracing is not
// active for this request.
func (c *Context) TraceID() string {
	sc := trace.SpanFromContext(c.Request.Context()).SpanContext()
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

// SetSpanAttribute adds an attribute to the active span. No-op when tracing
// is not active.
func (c *Context) SetSpanAttribute(key string, value any) {
	span := trace.SpanFromContext(c.Request.Context())
	if !span.IsRecording() {
		return
	}
	switch v := value.(type) {
	case string:
		span.SetAttributes(attribute.String(key, v))
	case bool:
		span.SetAttributes(attribute.Bool(key, v))
	case int:
		span.SetAttributes(attribute.Int(key, v))
	case int64:
		span.SetAttributes(attribute.Int64(key, v))
	case float64:
		span.SetAttributes(attribute.Float64(key, v))
	default:
		span.SetAttributes(attribute.String(key, fmt.Sprint(v)))
	}
}

// reset clears all per-request state so the context can return to the pool.
func (c *Context) reset() {
	c.Request = nil
	c.Response = nil
	c.router = nil
	c.descriptor = nil
	c.state = statePending
	c.failure = nil

	for i := 0; i < min(c.paramCount, maxInlineParams); i++ {
		c.paramKeys[i] = ""
		c.paramValues[i] = ""
	}
	c.paramCount = 0
	c.overflowValues = nil
	c.Params = nil

	c.Query = nil
	c.Body = nil
	c.principal = nil
	c.logger = nil
	c.errors = nil
	c.pendingCache = nil
}
