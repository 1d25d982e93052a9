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

package router_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	router "github.com/Moro-JS/moro-sub000"
)

// ExampleNew demonstrates creating a router.
func ExampleNew() {
	r, err := router.New()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	r.GET("/", func(c *router.Context) (any, error) {
		return map[string]string{"message": "Hello World"}, nil
	})

	fmt.Println("Router created successfully")
	// Output: Router created successfully
}

// ExampleRouter_GET demonstrates path parameters and the serialized return
// value.
func ExampleRouter_GET() {
	r := router.MustNew()

	r.GET("/users/:id", func(c *router.Context) (any, error) {
		return map[string]string{"user_id": c.Param("id")}, nil
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/42", nil))
	fmt.Println(w.Body.String())
	// Output: {"user_id":"42"}
}

// ExampleRouter_Register demonstrates the route builder: behaviors may be
// attached in any order, the pipeline always runs security, rate limiting,
// authentication and validation ahead of the handler.
func ExampleRouter_Register() {
	r := router.MustNew()

	_, err := r.Register(http.MethodPost, "/orders").
		WithValidation(router.ValidationConfig{
			Validate: func(c *router.Context) error {
				if c.Body == nil {
					return errors.New("order body is required")
				}
				return nil
			},
		}).
		WithAuth(router.AuthConfig{
			Authenticate: func(c *router.Context) (any, error) {
				token := c.Request.Header.Get("Authorization")
				if token == "" {
					return nil, errors.New("missing token")
				}
				return "user-from-" + token, nil
			},
		}).
		WithRateLimit(router.RateLimitConfig{Requests: 100, Window: time.Minute}).
		Handler(func(c *router.Context) (any, error) {
			return map[string]any{"created_by": c.Principal()}, nil
		})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Println("Route registered")
	// Output: Route registered
}

// ExampleRouter_Use demonstrates router-wide hooks.
func ExampleRouter_Use() {
	r := router.MustNew()

	r.Use(func(c *router.Context) {
		c.Header("X-Request-Source", "edge")
	})

	r.GET("/ping", func(c *router.Context) (any, error) {
		return "pong", nil
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	fmt.Println(w.Header().Get("X-Request-Source"), w.Body.String())
	// Output: edge pong
}

// ExampleRouteBuilder_WithCache demonstrates response caching for idempotent
// routes.
func ExampleRouteBuilder_WithCache() {
	r := router.MustNew()

	r.Register(http.MethodGet, "/catalog").
		WithCache(router.CacheConfig{TTL: 30 * time.Second}).
		MustHandler(func(c *router.Context) (any, error) {
			return map[string]int{"items": 128}, nil
		})

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/catalog", nil))

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/catalog", nil))
	fmt.Println(second.Header().Get("X-Cache"))
	// Output: HIT
}
