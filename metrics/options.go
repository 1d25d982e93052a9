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

package metrics

import (
	"log/slog"
	"time"
)

// Option defines functional options for recorder configuration.
type Option func(*Recorder)

// WithServiceName sets the service name used as the meter name and logger
// attribute. Defaults to "service".
func WithServiceName(name string) Option {
	return func(r *Recorder) {
		if name != "" {
			r.serviceName = name
		}
	}
}

// WithProvider selects the export backend. Defaults to Prometheus.
func WithProvider(p Provider) Option {
	return func(r *Recorder) {
		r.provider = p
	}
}

// WithLogger sets the base logger request-scoped loggers derive from.
// Defaults to the router's no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithOTLPEndpoint sets the collector endpoint for the OTLP provider, e.g.
// "http://localhost:4318". An "http://" scheme selects an insecure exporter;
// when empty, the exporter falls back to its environment configuration.
func WithOTLPEndpoint(endpoint string) Option {
	return func(r *Recorder) {
		r.otlpEndpoint = endpoint
	}
}

// WithExportInterval sets the push period for the OTLP and stdout readers.
// Defaults to 30 seconds.
func WithExportInterval(interval time.Duration) Option {
	return func(r *Recorder) {
		if interval > 0 {
			r.exportInterval = interval
		}
	}
}

// WithExcludePaths excludes exact request paths from recording, typically
// the scrape and health endpoints.
func WithExcludePaths(paths ...string) Option {
	return func(r *Recorder) {
		for _, p := range paths {
			r.excludePaths[p] = struct{}{}
		}
	}
}
