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
	"slices"

	"github.com/Moro-JS/moro-sub000/phase"
)

// RouteDescriptor is the immutable record of one registered route: its
// method, declared pattern, positional parameter names, attached behaviors,
// and the execution plan precomputed from them.
//
// Descriptors are created once when a builder's Handler call completes and
// are never mutated afterwards, so they are safely shared by all requests
// matching the route.
type RouteDescriptor struct {
	method     string
	pattern    string
	paramNames []string // positional, wildcard name last
	behaviors  []phase.Behavior
	plan       []planStep
}

// Method returns the HTTP method the route was registered under.
func (d *RouteDescriptor) Method() string { return d.method }

// Pattern returns the route pattern exactly as declared, for diagnostics and
// documentation.
func (d *RouteDescriptor) Pattern() string { return d.pattern }

// ParamNames returns a copy of the parameter names in path order.
func (d *RouteDescriptor) ParamNames() []string {
	return slices.Clone(d.paramNames)
}

// Behaviors returns a copy of the behaviors attached at registration time,
// in declaration order. The execution order is decided by the phase
// scheduler, not by this list.
func (d *RouteDescriptor) Behaviors() []phase.Behavior {
	return slices.Clone(d.behaviors)
}

// PlanKinds returns the behavior kinds of the execution plan in the order
// they run. Useful for asserting phase sequencing in tests and for route
// introspection tooling.
func (d *RouteDescriptor) PlanKinds() []phase.Kind {
	kinds := make([]phase.Kind, len(d.plan))
	for i := range d.plan {
		kinds[i] = d.plan[i].kind
	}
	return kinds
}
