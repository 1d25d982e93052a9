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

import "errors"

var (
	// ErrDuplicateRoute indicates that a (method, pattern) pair was registered twice.
	ErrDuplicateRoute = errors.New("duplicate route")

	// ErrAmbiguousRoute indicates that a pattern has the same shape as an
	// existing registration but spells its parameters differently, so a
	// request could match either. Both cannot be registered.
	ErrAmbiguousRoute = errors.New("ambiguous route")

	// ErrInvalidRoutePattern indicates that a route pattern is malformed
	// (mid-pattern wildcard, second wildcard, empty parameter name).
	ErrInvalidRoutePattern = errors.New("invalid route pattern")

	// ErrInvalidMethod indicates that a route was registered with an unsupported HTTP method.
	ErrInvalidMethod = errors.New("invalid HTTP method")

	// ErrRouteNotFound indicates that no route matched a request path.
	// It never escapes the dispatcher; lookups are recovered into 404 responses.
	ErrRouteNotFound = errors.New("route not found")

	// ErrHandlerAlreadySet indicates that Handler was called twice on the same builder.
	ErrHandlerAlreadySet = errors.New("route handler already set")

	// ErrNilHandler indicates that Handler was called with a nil function.
	ErrNilHandler = errors.New("route handler must not be nil")

	// ErrRouteIncomplete indicates that Handler was called before a method and path were specified.
	ErrRouteIncomplete = errors.New("route method and path must be set before handler")

	// ErrHandlerPanic wraps a panic recovered from a phase step or handler.
	ErrHandlerPanic = errors.New("handler panic")

	// ErrContextResponseNil indicates that the context response writer is nil.
	ErrContextResponseNil = errors.New("context response is nil")

	// ErrResponseWriterNotHijacker indicates that the underlying ResponseWriter
	// does not implement the http.Hijacker interface.
	ErrResponseWriterNotHijacker = errors.New("responseWriter does not implement http.Hijacker")

	// ErrServerTimeoutInvalid indicates that a server timeout value must be positive.
	ErrServerTimeoutInvalid = errors.New("server timeout must be positive")

	// ErrBodyLimitInvalid indicates that the request body limit must be positive.
	ErrBodyLimitInvalid = errors.New("request body limit must be positive")

	// ErrRateLimitInvalid indicates that a rate limit configuration is not usable.
	ErrRateLimitInvalid = errors.New("rate limit requests and window must be positive")
)
