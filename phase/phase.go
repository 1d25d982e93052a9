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

package phase

import "slices"

// Phase identifies one stage of the canonical request-processing pipeline.
// The pipeline order is fixed and total: behaviors attached to a route in any
// call order always execute in this sequence.
type Phase int

// Canonical pipeline stages, in execution order.
const (
	Security Phase = iota
	Parsing
	RateLimiting
	Before
	Authentication
	Validation
	Transform
	Caching
	After
	Handler
)

// String returns the phase name for diagnostics and logging.
func (p Phase) String() string {
	switch p {
	case Security:
		return "security"
	case Parsing:
		return "parsing"
	case RateLimiting:
		return "rate-limiting"
	case Before:
		return "before"
	case Authentication:
		return "authentication"
	case Validation:
		return "validation"
	case Transform:
		return "transform"
	case Caching:
		return "caching"
	case After:
		return "after"
	case Handler:
		return "handler"
	default:
		return "unknown"
	}
}

// Kind tags one attached behavior with the pipeline stage it belongs to.
// Behaviors are declared as tagged variants rather than a caller-ordered
// array; the scheduler, not the caller, decides execution order.
type Kind string

// Behavior kinds. Each kind maps to exactly one Phase.
const (
	KindSecurity   Kind = "security"
	KindParsing    Kind = "parsing"
	KindRateLimit  Kind = "rate-limit"
	KindBefore     Kind = "before"
	KindAuth       Kind = "auth"
	KindValidation Kind = "validation"
	KindTransform  Kind = "transform"
	KindCache      Kind = "cache"
	KindAfter      Kind = "after"
	KindHandler    Kind = "handler"
)

// Of returns the pipeline phase a behavior kind executes in.
// Unknown kinds sort with the Before phase so a misconfigured custom hook
// still runs ahead of authentication rather than silently last.
func Of(k Kind) Phase {
	switch k {
	case KindSecurity:
		return Security
	case KindParsing:
		return Parsing
	case KindRateLimit:
		return RateLimiting
	case KindBefore:
		return Before
	case KindAuth:
		return Authentication
	case KindValidation:
		return Validation
	case KindTransform:
		return Transform
	case KindCache:
		return Caching
	case KindAfter:
		return After
	case KindHandler:
		return Handler
	default:
		return Before
	}
}

// Behavior is one cross-cutting concern attached to a route.
//
// Config is interpreted by the router when the execution plan is built; this
// package only schedules. Priority is an optional hint ordering behaviors
// within the same phase (lower runs earlier); behaviors with equal priority
// keep their declaration order.
type Behavior struct {
	Kind     Kind
	Config   any
	Priority int

	// index records declaration order. Schedule assigns it from slice
	// position, so callers never set it.
	index int
}

// Schedule orders behaviors into canonical pipeline sequence.
//
// The sort key is (phase, priority, declaration index). The declaration-index
// tiebreak is the one place declaration order matters: among behaviors of the
// same kind and priority, earlier attachment runs earlier. Everything else is
// declaration-order independent, so two routes built with identical behavior
// sets attached in different call orders produce identical sequences.
//
// The input slice is not modified.
func Schedule(behaviors []Behavior) []Behavior {
	ordered := make([]Behavior, len(behaviors))
	copy(ordered, behaviors)
	for i := range ordered {
		ordered[i].index = i
	}

	slices.SortStableFunc(ordered, func(a, b Behavior) int {
		if pa, pb := Of(a.Kind), Of(b.Kind); pa != pb {
			return int(pa) - int(pb)
		}
		if a.Priority != b.Priority {
			return a.Priority - b.Priority
		}
		return a.index - b.index
	})

	return ordered
}
