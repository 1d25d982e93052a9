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
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig configures the RATE_LIMITING phase for a route: a token
// bucket per {route, client} key.
type RateLimitConfig struct {
	// Requests allowed per Window.
	Requests int

	// Window the request budget refills over.
	Window time.Duration

	// Burst is the bucket capacity. Zero defaults to Requests.
	Burst int

	// Key derives the client portion of the limiter key.
	// Defaults to the client IP.
	Key func(*Context) string
}

// limiterRegistry holds the token buckets shared across concurrent requests.
// This is the one intentionally shared mutable structure in the core:
// rate.Limiter performs its own atomic reserve-and-compare, so concurrent
// dispatches never race a read-then-write on a counter.
type limiterRegistry struct {
	limiters sync.Map // key string → *rate.Limiter
}

// limiter returns the bucket for the given key, creating it on first use.
func (reg *limiterRegistry) limiter(key string, limit rate.Limit, burst int) *rate.Limiter {
	if l, ok := reg.limiters.Load(key); ok {
		return l.(*rate.Limiter)
	}
	l, _ := reg.limiters.LoadOrStore(key, rate.NewLimiter(limit, burst))
	return l.(*rate.Limiter)
}

// rateLimitStep binds a RateLimitConfig into the RATE_LIMITING phase.
//
// Exceeding the budget is an expected outcome: the step writes the 429 with
// IETF RateLimit-* headers and short-circuits, it never raises.
func rateLimitStep(r *Router, d *RouteDescriptor, cfg RateLimitConfig) HandlerFunc {
	burst := cfg.Burst
	if burst <= 0 {
		burst = cfg.Requests
	}
	limit := rate.Limit(float64(cfg.Requests) / cfg.Window.Seconds())
	keyFn := cfg.Key
	if keyFn == nil {
		keyFn = func(c *Context) string { return c.ClientIP() }
	}
	routeKey := d.method + " " + d.pattern

	return func(c *Context) {
		key := routeKey + "|" + keyFn(c)
		lim := r.limits.limiter(key, limit, burst)

		allowed := lim.Allow()
		remaining := int(lim.Tokens())
		if remaining < 0 {
			remaining = 0
		}

		c.Header("RateLimit-Limit", strconv.Itoa(cfg.Requests))
		c.Header("RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("RateLimit-Reset", strconv.Itoa(int(cfg.Window.Seconds())))

		if !allowed {
			c.Header("Retry-After", strconv.Itoa(int(cfg.Window.Seconds())))
			c.AbortWithJSON(http.StatusTooManyRequests, statusBody{Error: "Too Many Requests"})
		}
	}
}
