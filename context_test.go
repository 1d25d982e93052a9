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
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext() (*Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	return &Context{
		Request:  httptest.NewRequest(http.MethodGet, "/", nil),
		Response: wrapResponseWriter(w),
		state:    stateRunning,
	}, w
}

func TestContextParamLookup(t *testing.T) {
	c := &Context{}
	c.captureValue("42")
	c.captureValue("7")
	c.bindParamNames([]string{"id", "postId"})

	assert.Equal(t, "42", c.Param("id"))
	assert.Equal(t, "7", c.Param("postId"))
	assert.Equal(t, "", c.Param("missing"))
	assert.Equal(t, 2, c.ParamCount())
}

// Routes with more params than the inline arrays overflow to the map without
// losing positional association.
func TestContextParamOverflow(t *testing.T) {
	c := &Context{}
	names := make([]string, maxInlineParams+2)
	for i := range names {
		names[i] = "p" + strconv.Itoa(i)
		c.captureValue("v" + strconv.Itoa(i))
	}
	c.bindParamNames(names)

	for i := range names {
		assert.Equal(t, "v"+strconv.Itoa(i), c.Param(names[i]))
	}
	assert.Equal(t, maxInlineParams+2, c.ParamCount())
}

func TestContextJSON(t *testing.T) {
	c, w := newTestContext()

	err := c.JSON(http.StatusCreated, map[string]int{"n": 1})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"n":1}`, w.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
}

// An unencodable body must not leave a half-written response.
func TestContextJSONEncodingFailure(t *testing.T) {
	c, w := newTestContext()

	err := c.JSON(http.StatusOK, map[string]any{"fn": func() {}})
	require.Error(t, err)
	assert.False(t, c.Written())
	assert.Empty(t, w.Body.String())
}

func TestContextYAML(t *testing.T) {
	c, w := newTestContext()

	err := c.YAML(http.StatusOK, map[string]string{"name": "alice"})
	require.NoError(t, err)
	assert.Contains(t, w.Body.String(), "name: alice")
	assert.Equal(t, "application/yaml; charset=utf-8", w.Header().Get("Content-Type"))
}

func TestContextStringFormatting(t *testing.T) {
	c, w := newTestContext()

	err := c.String(http.StatusOK, "user %s has %d items", "alice", 3)
	require.NoError(t, err)
	assert.Equal(t, "user alice has 3 items", w.Body.String())

	// Without values the format string passes through verbatim.
	c2, w2 := newTestContext()
	require.NoError(t, c2.String(http.StatusOK, "plain body, no formatting"))
	assert.Equal(t, "plain body, no formatting", w2.Body.String())
}

func TestContextAbortStateTransitions(t *testing.T) {
	c, _ := newTestContext()
	assert.False(t, c.IsAborted())

	c.Abort()
	assert.True(t, c.IsAborted())

	// fail after a short-circuit is a no-op: the first outcome wins.
	c.fail(errors.New("late failure"))
	assert.True(t, c.IsAborted())
	assert.Nil(t, c.failure)
}

func TestContextAbortWithStatus(t *testing.T) {
	c, w := newTestContext()
	c.AbortWithStatus(http.StatusForbidden)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestContextDoubleWriteSuppressed(t *testing.T) {
	c, w := newTestContext()

	c.Status(http.StatusCreated)
	c.Status(http.StatusInternalServerError)
	assert.Equal(t, http.StatusCreated, w.Code)

	// Header mutation after the write is a no-op.
	c.Header("X-Late", "value")
	assert.Empty(t, w.Header().Get("X-Late"))
}

func TestContextErrorCollection(t *testing.T) {
	c, _ := newTestContext()

	c.Error(errors.New("first"))
	c.Error(nil)
	c.Error(errors.New("second"))

	require.Len(t, c.Errors(), 2)
	assert.EqualError(t, c.Errors()[0], "first")
}

func TestContextLoggerNeverNil(t *testing.T) {
	c := &Context{}
	require.NotNil(t, c.Logger())
	c.Logger().Info("safe to call")
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		realIP     string
		forwarded  string
		remoteAddr string
		want       string
	}{
		{"x-real-ip wins", "203.0.113.9", "198.51.100.2", "192.0.2.1:1234", "203.0.113.9"},
		{"first forwarded hop", "", "198.51.100.2, 10.0.0.1", "192.0.2.1:1234", "198.51.100.2"},
		{"remote addr fallback", "", "", "192.0.2.1:1234", "192.0.2.1"},
		{"remote addr without port", "", "", "192.0.2.5", "192.0.2.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			c := &Context{Request: req}
			assert.Equal(t, tt.want, c.ClientIP())
		})
	}
}

func TestContextResetClearsState(t *testing.T) {
	c, _ := newTestContext()
	c.captureValue("v")
	c.bindParamNames([]string{"id"})
	c.SetPrincipal("user-1")
	c.Error(errors.New("boom"))
	c.Body = map[string]any{"k": "v"}

	c.reset()

	assert.Nil(t, c.Request)
	assert.Nil(t, c.Response)
	assert.Equal(t, 0, c.ParamCount())
	assert.Equal(t, "", c.Param("id"))
	assert.Nil(t, c.Principal())
	assert.Empty(t, c.Errors())
	assert.Nil(t, c.Body)
	assert.Equal(t, statePending, c.state)
}

func TestResponseWriterTracking(t *testing.T) {
	w := httptest.NewRecorder()
	rw := wrapResponseWriter(w)

	assert.False(t, rw.Written())
	assert.Equal(t, http.StatusOK, rw.StatusCode())

	rw.WriteHeader(http.StatusTeapot)
	rw.WriteHeader(http.StatusOK) // duplicate swallowed
	n, err := rw.Write([]byte("body"))
	require.NoError(t, err)

	assert.Equal(t, 4, n)
	assert.True(t, rw.Written())
	assert.Equal(t, http.StatusTeapot, rw.StatusCode())
	assert.Equal(t, int64(4), rw.Size())
	assert.Equal(t, http.StatusTeapot, w.Code)

	// Wrapping is idempotent.
	assert.Same(t, rw, wrapResponseWriter(rw))
}

func TestResponseWriterHijackUnsupported(t *testing.T) {
	rw := wrapResponseWriter(httptest.NewRecorder())
	_, _, err := rw.Hijack()
	assert.ErrorIs(t, err, ErrResponseWriterNotHijacker)
}

func TestContextPoolRoundTrip(t *testing.T) {
	c := getContext()
	require.NotNil(t, c)
	c.captureValue("x")
	c.state = stateCompleted

	releaseContext(c)

	c2 := getContext()
	assert.Equal(t, 0, c2.ParamCount())
	assert.Equal(t, statePending, c2.state)
	releaseContext(c2)
}

func TestIsJSONContentType(t *testing.T) {
	tests := []struct {
		contentType string
		want        bool
	}{
		{"application/json", true},
		{"application/json; charset=utf-8", true},
		{"application/problem+json", true},
		{"text/plain", false},
		{"", false},
		{"not a media type", false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.contentType), func(t *testing.T) {
			assert.Equal(t, tt.want, isJSONContentType(tt.contentType))
		})
	}
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "/", normalizePath(""))
	assert.Equal(t, "/", normalizePath("/"))
	assert.Equal(t, "/users", normalizePath("/users/"))
	assert.Equal(t, "/users", normalizePath("/users"))
	assert.Equal(t, "/", normalizePath("///"))
}
