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
	"io"
	"log/slog"
	"net/http"
)

// noopLogger is the shared no-op logger used when no observability is
// configured.
var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// NoopLogger returns the shared no-op logger. ObservabilityRecorder
// implementations can return it from BuildRequestLogger when logging is
// disabled.
func NoopLogger() *slog.Logger {
	return noopLogger
}

// ObservabilityRecorder provides the request lifecycle hooks for metrics,
// tracing and access logging.
//
// Lifecycle:
//  1. OnRequestStart(ctx, req) → (enrichedCtx, state). The enriched context
//     is always attached to the request; a nil state excludes the request
//     from wrapping and OnRequestEnd (e.g. /metrics scrapes).
//  2. WrapResponseWriter(w, state) wraps the writer when state != nil.
//  3. BuildRequestLogger(ctx, req, routePattern) supplies the
//     request-scoped logger once routing has resolved the pattern.
//  4. OnRequestEnd(ctx, state, w, routePattern) records the outcome; the
//     writer typically implements ResponseInfo for status and size.
//
// Thread safety: all methods must be safe for concurrent use.
type ObservabilityRecorder interface {
	OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any)
	WrapResponseWriter(w http.ResponseWriter, state any) http.ResponseWriter
	BuildRequestLogger(ctx context.Context, req *http.Request, routePattern string) *slog.Logger
	OnRequestEnd(ctx context.Context, state any, w http.ResponseWriter, routePattern string)
}
