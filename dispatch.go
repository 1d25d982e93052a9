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
	"fmt"
	"net/http"
)

// dispatch runs a matched route's execution plan against the context.
//
// The per-request state machine is PENDING → RUNNING(step) →
// {SHORT_CIRCUITED | FAILED | CANCELLED | COMPLETED}. RUNNING advances
// monotonically through the plan; a step that aborts moves to
// SHORT_CIRCUITED with its response already written and all later steps
// (including the handler) skipped; a panic or fail() moves to FAILED and the
// error boundary; an observed client disconnect moves to CANCELLED and the
// handler is never invoked.
//
// Every exit path results in exactly one response: short-circuiting steps
// write their own, completion serializes the handler result, and the error
// boundary checks the written flag before any late write. Cancelled requests
// are the one exception: the client is gone, so nothing is written.
func (r *Router) dispatch(c *Context, d *RouteDescriptor) {
	c.descriptor = d
	c.state = stateRunning

	defer func() {
		if rec := recover(); rec != nil {
			c.state = stateFailed
			c.failure = fmt.Errorf("%w: %v", ErrHandlerPanic, rec)
		}
		switch c.state {
		case stateFailed:
			r.handleFailure(c)
		case stateCompleted:
			r.finalizeCache(c)
		}
	}()

	for i := range d.plan {
		if c.state != stateRunning {
			return
		}
		if r.checkCancellation {
			if err := c.Request.Context().Err(); err != nil {
				c.state = stateCancelled
				return
			}
		}
		d.plan[i].run(c)
	}

	if c.state == stateRunning {
		c.state = stateCompleted
	}
}

// handleFailure is the dispatcher's error boundary: the failure is logged
// and turned into a generic 500 unless a custom error handler is installed.
// The written-flag guard keeps a step that already produced output from
// being followed by a second response.
func (r *Router) handleFailure(c *Context) {
	err := c.failure
	if err == nil {
		err = ErrHandlerPanic
	}

	c.Logger().Error("request failed",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"route", c.Pattern(),
		"error", err,
	)

	if r.errorHandler != nil {
		r.errorHandler(c, err)
		return
	}
	if c.Written() {
		return
	}
	if jsonErr := c.JSON(http.StatusInternalServerError, statusBody{Error: "Internal Server Error"}); jsonErr != nil {
		c.Error(jsonErr)
	}
}
