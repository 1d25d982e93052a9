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
	"bytes"
	"maps"
	"net/http"
	"sync"
	"time"
)

// CacheConfig configures the CACHING phase for a route.
type CacheConfig struct {
	// TTL is how long a stored response stays fresh.
	TTL time.Duration

	// Key derives the cache key. Defaults to method + path + query.
	Key func(*Context) string
}

// cachedResponse is one stored response.
type cachedResponse struct {
	status  int
	header  http.Header
	body    []byte
	expires time.Time
}

// responseCache is an in-memory TTL response store. Stale entries are
// dropped lazily on read.
type responseCache struct {
	entries sync.Map // key string → *cachedResponse
}

func (s *responseCache) get(key string) (*cachedResponse, bool) {
	v, ok := s.entries.Load(key)
	if !ok {
		return nil, false
	}
	entry := v.(*cachedResponse)
	if time.Now().After(entry.expires) {
		s.entries.Delete(key)
		return nil, false
	}
	return entry, true
}

func (s *responseCache) put(key string, entry *cachedResponse) {
	s.entries.Store(key, entry)
}

// pendingCache records an in-flight capture installed on a cache miss.
// The dispatcher finalizes it when the plan completes.
type pendingCache struct {
	key     string
	ttl     time.Duration
	capture *captureWriter
}

// captureWriter tees the response into a buffer while writing through to the
// real writer. It preserves the ResponseInfo guard of the wrapped writer.
type captureWriter struct {
	*responseWriter
	buf bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.responseWriter.Write(b)
}

// cacheStep binds a CacheConfig into the CACHING phase.
//
// A fresh hit replays the stored response and short-circuits the plan (the
// handler never runs). A miss installs a capture writer; the dispatcher
// stores the response after COMPLETED when the handler produced a 2xx.
// Only safe methods participate.
func cacheStep(r *Router, cfg CacheConfig) HandlerFunc {
	keyFn := cfg.Key
	if keyFn == nil {
		keyFn = func(c *Context) string {
			return c.Request.Method + " " + c.Request.URL.Path + "?" + c.Request.URL.RawQuery
		}
	}

	return func(c *Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			return
		}

		key := keyFn(c)
		if entry, ok := r.cache.get(key); ok {
			header := c.Response.Header()
			for k, vs := range entry.header {
				header[k] = vs
			}
			header.Set("X-Cache", "HIT")
			c.Response.WriteHeader(entry.status)
			if _, err := c.Response.Write(entry.body); err != nil {
				c.Error(err)
			}
			c.Abort()
			return
		}

		rw, ok := c.Response.(*responseWriter)
		if !ok {
			return // unexpected writer; serve uncached
		}
		capture := &captureWriter{responseWriter: rw}
		c.Response = capture
		c.pendingCache = &pendingCache{key: key, ttl: cfg.TTL, capture: capture}
	}
}

// finalizeCache stores a captured response once the plan has completed.
// Only successful responses are stored; rejections and errors pass through.
func (r *Router) finalizeCache(c *Context) {
	pending := c.pendingCache
	if pending == nil || pending.capture == nil {
		return
	}

	status := pending.capture.StatusCode()
	if status < 200 || status >= 300 {
		return
	}

	header := make(http.Header, len(pending.capture.Header()))
	maps.Copy(header, pending.capture.Header())

	r.cache.put(pending.key, &cachedResponse{
		status:  status,
		header:  header,
		body:    bytes.Clone(pending.capture.buf.Bytes()),
		expires: time.Now().Add(pending.ttl),
	})
}
