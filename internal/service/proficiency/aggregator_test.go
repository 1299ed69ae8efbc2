package proficiency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestApplyAnswers_BatchAccumulatesBeforeClamp — the documented end-to-end
// scenario: skill at 200, one band-4 correct (+4) and one band-6 incorrect
// (-2) in the same batch. Final score 202 with a single PointChange for the
// skill, not two.
func TestApplyAnswers_BatchAccumulatesBeforeClamp(t *testing.T) {
	scores := map[string]int{"algebra-1": 200}

	updated, changes := ApplyAnswers(scores, []ScoredAnswer{
		{Skill: "algebra-1", Delta: 4},
		{Skill: "algebra-1", Delta: -2},
	})

	assert.Equal(t, 202, updated["algebra-1"])
	require.Len(t, changes, 1, "one PointChange per touched skill, not per answer")
	assert.Equal(t, PointChange{Before: 200, After: 202, Delta: 2}, changes["algebra-1"])
}

// TestApplyAnswers_ClampReportsEffectiveDelta — a skill at 798 gaining +7
// lands exactly on 800 and the recorded delta is the clamped +2, not the
// requested +7.
func TestApplyAnswers_ClampReportsEffectiveDelta(t *testing.T) {
	scores := map[string]int{"linear-functions": 798}

	updated, changes := ApplyAnswers(scores, []ScoredAnswer{
		{Skill: "linear-functions", Delta: 7},
	})

	assert.Equal(t, 800, updated["linear-functions"])
	assert.Equal(t, PointChange{Before: 798, After: 800, Delta: 2}, changes["linear-functions"])
}

// TestApplyAnswers_ClampAtFloor — symmetric case at the lower bound.
func TestApplyAnswers_ClampAtFloor(t *testing.T) {
	scores := map[string]int{"percentages": 3}

	updated, changes := ApplyAnswers(scores, []ScoredAnswer{
		{Skill: "percentages", Delta: -7},
	})

	assert.Equal(t, 0, updated["percentages"])
	assert.Equal(t, PointChange{Before: 3, After: 0, Delta: -3}, changes["percentages"])
}

// TestApplyAnswers_ClampOncePerBatch — deltas crossing the ceiling mid-batch
// are summed first and clamped once at the end: 797 +7 -2 = 802 -> 800, not
// (797+7 -> 800) - 2 = 798.
func TestApplyAnswers_ClampOncePerBatch(t *testing.T) {
	scores := map[string]int{"circles": 797}

	updated, _ := ApplyAnswers(scores, []ScoredAnswer{
		{Skill: "circles", Delta: 7},
		{Skill: "circles", Delta: -2},
	})

	assert.Equal(t, 800, updated["circles"], "clamp applies to the batch sum, not per answer")
}

// TestApplyAnswers_DefaultsAbsentSkill — an untouched skill starts at 200.
func TestApplyAnswers_DefaultsAbsentSkill(t *testing.T) {
	updated, changes := ApplyAnswers(map[string]int{}, []ScoredAnswer{
		{Skill: "boundaries", Delta: 5},
	})

	assert.Equal(t, 205, updated["boundaries"])
	assert.Equal(t, PointChange{Before: 200, After: 205, Delta: 5}, changes["boundaries"])
}

// TestApplyAnswers_CopyOnWrite — the caller's map must stay untouched so
// before/after snapshots remain coherent.
func TestApplyAnswers_CopyOnWrite(t *testing.T) {
	scores := map[string]int{"probability": 400, "transitions": 300}

	updated, _ := ApplyAnswers(scores, []ScoredAnswer{
		{Skill: "probability", Delta: 6},
	})

	assert.Equal(t, 400, scores["probability"], "input map must not be mutated")
	assert.Equal(t, 406, updated["probability"])
	assert.Equal(t, 300, updated["transitions"], "untouched keys are carried over")
}

// TestApplyAnswers_MultipleSkills — one PointChange per distinct skill.
func TestApplyAnswers_MultipleSkills(t *testing.T) {
	scores := map[string]int{"percentages": 500}

	updated, changes := ApplyAnswers(scores, []ScoredAnswer{
		{Skill: "percentages", Delta: 3},
		{Skill: "inferences", Delta: -4},
		{Skill: "percentages", Delta: -1},
	})

	require.Len(t, changes, 2)
	assert.Equal(t, 502, updated["percentages"])
	assert.Equal(t, 196, updated["inferences"])
}

// TestApplyAnswers_EmptyBatch — a pass with no answers changes nothing.
func TestApplyAnswers_EmptyBatch(t *testing.T) {
	scores := map[string]int{"area-volume": 640}

	updated, changes := ApplyAnswers(scores, nil)

	assert.Empty(t, changes)
	assert.Equal(t, scores, updated)
}
