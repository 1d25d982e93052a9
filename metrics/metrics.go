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
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/Moro-JS/moro-sub000"
)

// Provider selects the metrics export backend.
type Provider string

const (
	// PrometheusProvider exposes metrics on a Prometheus scrape handler (default).
	PrometheusProvider Provider = "prometheus"
	// OTLPProvider pushes metrics to an OTLP/HTTP collector endpoint.
	OTLPProvider Provider = "otlp"
	// StdoutProvider periodically dumps metrics to stdout (development/testing).
	StdoutProvider Provider = "stdout"
)

// defaultExportInterval is the push period for the OTLP and stdout readers.
const defaultExportInterval = 30 * time.Second

// DefaultDurationBuckets are histogram boundaries for request duration in
// seconds, covering sub-millisecond to 10 second responses.
var DefaultDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Recorder implements router.ObservabilityRecorder on OpenTelemetry metrics.
//
// It records a request counter, a duration histogram and a response-size
// histogram per (method, route pattern, status), builds request-scoped slog
// loggers, and exposes a Prometheus scrape handler when that provider is
// selected. Route patterns, not raw paths, are used as attributes to keep
// cardinality bounded.
type Recorder struct {
	serviceName    string
	provider       Provider
	otlpEndpoint   string
	exportInterval time.Duration
	meterSDK       *sdkmetric.MeterProvider
	meter          metric.Meter
	logger         *slog.Logger
	excludePaths   map[string]struct{}

	requestsTotal   metric.Int64Counter
	requestDuration metric.Float64Histogram
	responseSize    metric.Int64Histogram

	promHandler http.Handler
}

// requestState is the opaque per-request token passed through the
// ObservabilityRecorder lifecycle.
type requestState struct {
	start  time.Time
	method string
}

// New creates a recorder with the given options and initializes the selected
// provider. Initialization can fail (exporter construction), so unlike the
// router itself this constructor returns an error.
func New(opts ...Option) (*Recorder, error) {
	r := &Recorder{
		serviceName:    "service",
		provider:       PrometheusProvider,
		exportInterval: defaultExportInterval,
		logger:         router.NoopLogger(),
		excludePaths:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.initProvider(); err != nil {
		return nil, err
	}
	if err := r.initInstruments(); err != nil {
		return nil, err
	}

	return r, nil
}

// initProvider builds the meter provider for the configured backend.
func (r *Recorder) initProvider() error {
	switch r.provider {
	case PrometheusProvider:
		registry := promclient.NewRegistry()
		exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
		if err != nil {
			return fmt.Errorf("prometheus exporter: %w", err)
		}
		r.meterSDK = sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
		r.promHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	case OTLPProvider:
		var opts []otlpmetrichttp.Option
		if endpoint, insecure := splitOTLPEndpoint(r.otlpEndpoint); endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
			if insecure {
				opts = append(opts, otlpmetrichttp.WithInsecure())
			}
		}
		exporter, err := otlpmetrichttp.New(context.Background(), opts...)
		if err != nil {
			return fmt.Errorf("otlp exporter: %w", err)
		}
		r.meterSDK = sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
				sdkmetric.WithInterval(r.exportInterval))),
		)

	case StdoutProvider:
		exporter, err := stdoutmetric.New()
		if err != nil {
			return fmt.Errorf("stdout exporter: %w", err)
		}
		r.meterSDK = sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter,
				sdkmetric.WithInterval(r.exportInterval))),
		)

	default:
		return fmt.Errorf("unknown metrics provider %q", r.provider)
	}

	r.meter = r.meterSDK.Meter(r.serviceName)
	return nil
}

// splitOTLPEndpoint strips an optional scheme and path from a configured
// collector endpoint, returning the host:port plus whether plain HTTP was
// requested. An empty endpoint defers to the exporter's environment defaults.
func splitOTLPEndpoint(raw string) (endpoint string, insecure bool) {
	if raw == "" {
		return "", false
	}
	endpoint = raw
	if rest, ok := strings.CutPrefix(endpoint, "http://"); ok {
		endpoint = rest
		insecure = true
	} else if rest, ok := strings.CutPrefix(endpoint, "https://"); ok {
		endpoint = rest
	}
	if i := strings.IndexByte(endpoint, '/'); i >= 0 {
		endpoint = endpoint[:i]
	}
	return endpoint, insecure
}

// initInstruments creates the HTTP instruments.
func (r *Recorder) initInstruments() error {
	var err error

	r.requestsTotal, err = r.meter.Int64Counter(
		"http.server.request.count",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return fmt.Errorf("request counter: %w", err)
	}

	r.requestDuration, err = r.meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(DefaultDurationBuckets...),
	)
	if err != nil {
		return fmt.Errorf("duration histogram: %w", err)
	}

	r.responseSize, err = r.meter.Int64Histogram(
		"http.server.response.size",
		metric.WithDescription("HTTP response size in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return fmt.Errorf("size histogram: %w", err)
	}

	return nil
}

// OnRequestStart begins the request lifecycle. Excluded paths get a nil
// state: no wrapping, no OnRequestEnd, no metrics.
func (r *Recorder) OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any) {
	if _, excluded := r.excludePaths[req.URL.Path]; excluded {
		return ctx, nil
	}
	return ctx, &requestState{start: time.Now(), method: req.Method}
}

// WrapResponseWriter returns the writer unchanged: the router's own wrapper
// already exposes status and size through router.ResponseInfo.
func (r *Recorder) WrapResponseWriter(w http.ResponseWriter, state any) http.ResponseWriter {
	return w
}

// BuildRequestLogger returns a request-scoped logger tagged with the method
// and resolved route pattern.
func (r *Recorder) BuildRequestLogger(_ context.Context, req *http.Request, routePattern string) *slog.Logger {
	return r.logger.With(
		"service", r.serviceName,
		"method", req.Method,
		"route", routePattern,
	)
}

// OnRequestEnd records the request outcome.
func (r *Recorder) OnRequestEnd(ctx context.Context, state any, w http.ResponseWriter, routePattern string) {
	st, ok := state.(*requestState)
	if !ok {
		return
	}

	status := 0
	size := int64(0)
	if info, ok := w.(router.ResponseInfo); ok {
		status = info.StatusCode()
		size = info.Size()
	}

	attrs := metric.WithAttributes(
		attribute.String("http.request.method", st.method),
		attribute.String("http.route", routePattern),
		attribute.Int("http.response.status_code", status),
	)

	r.requestsTotal.Add(ctx, 1, attrs)
	r.requestDuration.Record(ctx, time.Since(st.start).Seconds(), attrs)
	r.responseSize.Record(ctx, size, attrs)
}

// Handler returns the Prometheus scrape handler, or nil for non-Prometheus
// providers. Mount it on its own route and exclude that path from recording:
//
//	rec, _ := metrics.New(metrics.WithExcludePaths("/metrics"))
//	mux.Handle("/metrics", rec.Handler())
func (r *Recorder) Handler() http.Handler {
	return r.promHandler
}

// Shutdown flushes and stops the meter provider.
func (r *Recorder) Shutdown(ctx context.Context) error {
	if r.meterSDK == nil {
		return nil
	}
	return r.meterSDK.Shutdown(ctx)
}

var _ router.ObservabilityRecorder = (*Recorder)(nil)
