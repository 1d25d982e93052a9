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
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	router "github.com/Moro-JS/moro-sub000"
)

func TestNewDefaultsToPrometheus(t *testing.T) {
	rec, err := New()
	require.NoError(t, err)
	defer rec.Shutdown(context.Background())

	assert.NotNil(t, rec.Handler())
}

func TestNewStdoutProviderHasNoScrapeHandler(t *testing.T) {
	rec, err := New(WithProvider(StdoutProvider))
	require.NoError(t, err)
	defer rec.Shutdown(context.Background())

	assert.Nil(t, rec.Handler())
}

func TestNewOTLPProviderHasNoScrapeHandler(t *testing.T) {
	rec, err := New(WithProvider(OTLPProvider), WithOTLPEndpoint("http://localhost:4318"))
	require.NoError(t, err)
	defer rec.Shutdown(context.Background())

	assert.Nil(t, rec.Handler())
}

func TestSplitOTLPEndpoint(t *testing.T) {
	tests := []struct {
		raw      string
		endpoint string
		insecure bool
	}{
		{"", "", false},
		{"http://localhost:4318", "localhost:4318", true},
		{"http://collector:4318/v1/metrics", "collector:4318", true},
		{"https://otel.example.com", "otel.example.com", false},
		{"collector:4318", "collector:4318", false},
	}
	for _, tt := range tests {
		endpoint, insecure := splitOTLPEndpoint(tt.raw)
		assert.Equal(t, tt.endpoint, endpoint, tt.raw)
		assert.Equal(t, tt.insecure, insecure, tt.raw)
	}
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	_, err := New(WithProvider(Provider("statsd")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "statsd")
}

func TestRecordedRequestsAppearInScrape(t *testing.T) {
	rec, err := New(WithServiceName("checkout"))
	require.NoError(t, err)
	defer rec.Shutdown(context.Background())

	r := router.MustNew(router.WithObservability(rec))
	r.GET("/orders/:id", func(c *router.Context) (any, error) {
		return map[string]string{"id": c.Param("id")}, nil
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/orders/7", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	scrape := httptest.NewRecorder()
	rec.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, scrape.Code)

	body := scrape.Body.String()
	assert.Contains(t, body, "http_server_request_count")
	// The route pattern, not the raw path, is the attribute.
	assert.Contains(t, body, "/orders/:id")
	assert.NotContains(t, body, "/orders/7")
}

func TestExcludedPathsAreNotRecorded(t *testing.T) {
	rec, err := New(WithExcludePaths("/healthz"))
	require.NoError(t, err)
	defer rec.Shutdown(context.Background())

	_, state := rec.OnRequestStart(context.Background(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Nil(t, state)

	_, state = rec.OnRequestStart(context.Background(), httptest.NewRequest(http.MethodGet, "/api", nil))
	assert.NotNil(t, state)
}

func TestOnRequestEndIgnoresForeignState(t *testing.T) {
	rec, err := New()
	require.NoError(t, err)
	defer rec.Shutdown(context.Background())

	// Must not panic on a state it did not create.
	rec.OnRequestEnd(context.Background(), "not-a-request-state", httptest.NewRecorder(), "/x")
}

func TestBuildRequestLogger(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	rec, err := New(WithServiceName("api"), WithLogger(logger))
	require.NoError(t, err)
	defer rec.Shutdown(context.Background())

	scoped := rec.BuildRequestLogger(context.Background(),
		httptest.NewRequest(http.MethodGet, "/users/1", nil), "/users/:id")
	require.NotNil(t, scoped)
}

func TestWrapResponseWriterPassthrough(t *testing.T) {
	rec, err := New()
	require.NoError(t, err)
	defer rec.Shutdown(context.Background())

	w := httptest.NewRecorder()
	assert.Same(t, http.ResponseWriter(w), rec.WrapResponseWriter(w, &requestState{}))
}
