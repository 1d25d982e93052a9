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

import "sync"

// contextPool reuses Context allocations across requests.
var contextPool = sync.Pool{
	New: func() any {
		return &Context{}
	},
}

// getContext retrieves a Context from the pool. The type assertion is
// checked so pool corruption fails loudly instead of with a cryptic panic
// somewhere downstream.
func getContext() *Context {
	c, ok := contextPool.Get().(*Context)
	if !ok {
		panic("router: pool corruption - contextPool returned non-Context type")
	}
	return c
}

// releaseContext resets a context and returns it to the pool. Single point
// of truth for cleanup so no call site can forget a field.
func releaseContext(c *Context) {
	c.reset()
	contextPool.Put(c)
}
