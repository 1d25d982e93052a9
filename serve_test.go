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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildServerDefaults(t *testing.T) {
	r := MustNew()
	srv := r.buildServer(":8080")

	assert.Equal(t, ":8080", srv.Addr)
	assert.Equal(t, 5*time.Second, srv.ReadHeaderTimeout)
	assert.Equal(t, 15*time.Second, srv.ReadTimeout)
	assert.Equal(t, 30*time.Second, srv.WriteTimeout)
	assert.Equal(t, 60*time.Second, srv.IdleTimeout)
	// Without H2C the router itself is the handler.
	assert.Same(t, any(r), any(srv.Handler))
}

func TestBuildServerCustomTimeouts(t *testing.T) {
	r := MustNew(WithServerTimeouts(time.Second, 2*time.Second, 3*time.Second, 4*time.Second))
	srv := r.buildServer(":0")

	assert.Equal(t, time.Second, srv.ReadHeaderTimeout)
	assert.Equal(t, 2*time.Second, srv.ReadTimeout)
	assert.Equal(t, 3*time.Second, srv.WriteTimeout)
	assert.Equal(t, 4*time.Second, srv.IdleTimeout)
}

func TestBuildServerH2C(t *testing.T) {
	r := MustNew(WithH2C(true))
	srv := r.buildServer(":0")

	require.NotNil(t, srv.Handler)
	// The H2C wrapper replaces the router as the top-level handler.
	assert.NotSame(t, any(r), any(srv.Handler))
}
