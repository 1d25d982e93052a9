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

// Package metrics implements the router's ObservabilityRecorder on
// OpenTelemetry metrics with Prometheus, OTLP and stdout export backends.
//
//	rec, err := metrics.New(
//	    metrics.WithServiceName("orders"),
//	    metrics.WithLogger(slog.Default()),
//	    metrics.WithExcludePaths("/metrics", "/health"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	r := router.MustNew(router.WithObservability(rec))
package metrics
