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

// Package router is a request-routing and middleware-orchestration core for
// HTTP services.
//
// It combines two pieces: a compressed-prefix path matcher that resolves a
// request path to exactly one handler with correct parameter extraction, and
// a phase scheduler that sequences a route's attached behaviors into a
// fixed, declaration-order-independent pipeline before the handler runs.
//
// # Routing
//
//   - Static segments match exactly and always win over parameters
//   - ":name" segments capture one path segment under the declared name
//   - A trailing "*" or "*name" captures the remainder of the path
//
// Parameter names are bound per route, not per tree branch: two routes like
// /users/:email/profile and /users/:id/settings share the parameter branch
// structurally, yet each match resolves its own names.
//
// # Behavior pipeline
//
// Cross-cutting behaviors are attached through a fluent builder and executed
// in canonical phase order regardless of attachment order:
//
//	SECURITY < PARSING < RATE_LIMITING < BEFORE < AUTHENTICATION <
//	VALIDATION < TRANSFORM < CACHING < AFTER < HANDLER
//
// Rejections (failed auth, invalid input, exceeded rate limits) are modeled
// as short-circuits that write a complete response and skip the remaining
// phases; only unexpected failures reach the error boundary.
//
// # Quick start
//
//	r := router.MustNew()
//	r.Use(requestLogging)
//
//	_, err := r.Register(http.MethodGet, "/api/:version/users/:id").
//	    WithAuth(router.AuthConfig{Authenticate: sessionAuth}).
//	    WithCache(router.CacheConfig{TTL: 30 * time.Second}).
//	    Handler(func(c *router.Context) (any, error) {
//	        return loadUser(c.Param("version"), c.Param("id"))
//	    })
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	log.Fatal(r.Serve(":8080"))
package router
