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

import "time"

// Option defines functional options for router configuration.
type Option func(*Router)

// WithObservability installs an observability recorder for the request
// lifecycle (metrics, tracing, access logging, request-scoped loggers).
// Pass nil to disable.
func WithObservability(recorder ObservabilityRecorder) Option {
	return func(r *Router) {
		r.observability = recorder
	}
}

// WithErrorHandler installs a custom error boundary. When set, the handler
// is responsible for writing the response for failed requests; without it a
// generic 500 is sent.
func WithErrorHandler(fn ErrorHandler) Option {
	return func(r *Router) {
		r.errorHandler = fn
	}
}

// WithCancellationCheck enables or disables client-disconnect checks between
// plan steps. Enabled by default; disable only if handlers manage
// cancellation themselves.
func WithCancellationCheck(enabled bool) Option {
	return func(r *Router) {
		r.checkCancellation = enabled
	}
}

// WithMaxBodyBytes sets the default request body cap applied by the parsing
// phase. Routes can override it via WithParsing. Must be positive.
func WithMaxBodyBytes(limit int64) Option {
	return func(r *Router) {
		r.maxBodyBytes = limit
	}
}

// WithH2C enables HTTP/2 cleartext support on Serve.
//
// ⚠️ Only use in development or behind a trusted load balancer; do not
// enable on public-facing servers without TLS.
func WithH2C(enable bool) Option {
	return func(r *Router) {
		r.enableH2C = enable
	}
}

// WithServerTimeouts configures the timeouts used by Serve and ServeTLS.
// All four values must be positive.
//
// Defaults (if not set): ReadHeaderTimeout 5s, ReadTimeout 15s,
// WriteTimeout 30s, IdleTimeout 60s.
func WithServerTimeouts(readHeader, read, write, idle time.Duration) Option {
	return func(r *Router) {
		r.serverTimeouts = &serverTimeouts{
			readHeader: readHeader,
			read:       read,
			write:      write,
			idle:       idle,
		}
	}
}
