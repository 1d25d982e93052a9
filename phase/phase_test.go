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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(behaviors []Behavior) []Kind {
	out := make([]Kind, len(behaviors))
	for i, b := range behaviors {
		out[i] = b.Kind
	}
	return out
}

func TestScheduleCanonicalOrder(t *testing.T) {
	// Declared deliberately backwards.
	declared := []Behavior{
		{Kind: KindHandler},
		{Kind: KindAfter},
		{Kind: KindCache},
		{Kind: KindTransform},
		{Kind: KindValidation},
		{Kind: KindAuth},
		{Kind: KindBefore},
		{Kind: KindRateLimit},
		{Kind: KindParsing},
		{Kind: KindSecurity},
	}

	ordered := Schedule(declared)
	assert.Equal(t, []Kind{
		KindSecurity,
		KindParsing,
		KindRateLimit,
		KindBefore,
		KindAuth,
		KindValidation,
		KindTransform,
		KindCache,
		KindAfter,
		KindHandler,
	}, kinds(ordered))
}

// TestScheduleDeclarationOrderIndependence verifies that attachment order
// never changes execution order.
func TestScheduleDeclarationOrderIndependence(t *testing.T) {
	permutations := [][]Behavior{
		{{Kind: KindAuth}, {Kind: KindValidation}, {Kind: KindCache}, {Kind: KindBefore}},
		{{Kind: KindCache}, {Kind: KindBefore}, {Kind: KindAuth}, {Kind: KindValidation}},
		{{Kind: KindValidation}, {Kind: KindCache}, {Kind: KindBefore}, {Kind: KindAuth}},
	}

	want := []Kind{KindBefore, KindAuth, KindValidation, KindCache}
	for _, declared := range permutations {
		assert.Equal(t, want, kinds(Schedule(declared)))
	}
}

func TestScheduleStableTies(t *testing.T) {
	declared := []Behavior{
		{Kind: KindBefore, Config: "first"},
		{Kind: KindBefore, Config: "second"},
		{Kind: KindBefore, Config: "third"},
	}

	ordered := Schedule(declared)
	require.Len(t, ordered, 3)
	assert.Equal(t, "first", ordered[0].Config)
	assert.Equal(t, "second", ordered[1].Config)
	assert.Equal(t, "third", ordered[2].Config)
}

func TestSchedulePriorityWithinPhase(t *testing.T) {
	declared := []Behavior{
		{Kind: KindBefore, Priority: 10, Config: "late"},
		{Kind: KindBefore, Priority: -5, Config: "early"},
		{Kind: KindBefore, Config: "mid"},
	}

	ordered := Schedule(declared)
	assert.Equal(t, "early", ordered[0].Config)
	assert.Equal(t, "mid", ordered[1].Config)
	assert.Equal(t, "late", ordered[2].Config)
}

// Priority orders within a phase only; it never hoists a behavior across
// phase boundaries.
func TestSchedulePriorityNeverCrossesPhases(t *testing.T) {
	declared := []Behavior{
		{Kind: KindAuth, Priority: -100},
		{Kind: KindBefore, Priority: 100},
	}

	ordered := Schedule(declared)
	assert.Equal(t, []Kind{KindBefore, KindAuth}, kinds(ordered))
}

func TestScheduleDoesNotModifyInput(t *testing.T) {
	declared := []Behavior{
		{Kind: KindAuth},
		{Kind: KindBefore},
	}

	_ = Schedule(declared)
	assert.Equal(t, KindAuth, declared[0].Kind)
	assert.Equal(t, KindBefore, declared[1].Kind)
}

func TestScheduleEmpty(t *testing.T) {
	assert.Empty(t, Schedule(nil))
	assert.Empty(t, Schedule([]Behavior{}))
}

func TestOfUnknownKindRunsBeforeAuth(t *testing.T) {
	assert.Equal(t, Before, Of(Kind("custom-hook")))
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "security", Security.String())
	assert.Equal(t, "handler", Handler.String())
	assert.Equal(t, "unknown", Phase(99).String())
}
