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

// Package phase defines the canonical middleware pipeline and the scheduler
// that orders attached behaviors into it.
//
// Routes accumulate behaviors (security hooks, parsing, rate limits, auth,
// validation, transforms, caching, before/after hooks) through a fluent
// builder in whatever order the application author finds readable. The order
// those calls are made carries no semantic meaning: Schedule sorts the
// accumulated set into the fixed pipeline
//
//	SECURITY < PARSING < RATE_LIMITING < BEFORE < AUTHENTICATION <
//	VALIDATION < TRANSFORM < CACHING < AFTER < HANDLER
//
// with declaration order only breaking ties between behaviors of the same
// kind. The package is pure data and has no dependency on the router; it is
// exercised once per route at registration time, never per request.
package phase
