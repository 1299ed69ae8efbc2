package proficiency

import (
	"github.com/yourusername/satprep-api/internal/domain/entity"
)

// PointChange records the before/after snapshot of one score during a
// scoring pass. Delta is the effective change after clamping, which may be
// smaller than the sum of requested deltas at the score boundaries.
type PointChange struct {
	Before int `json:"before"`
	After  int `json:"after"`
	Delta  int `json:"delta"`
}

// ScoredAnswer is one answered question reduced to its scoring inputs.
type ScoredAnswer struct {
	Skill string
	Delta int
}

// ApplyAnswers applies a batch of answer deltas to a skill score map.
//
// The caller's map is never mutated; a fresh map containing every key of the
// input plus any newly touched skills is returned. Deltas for the same skill
// accumulate across the whole batch and the [MinSkillScore, MaxSkillScore]
// clamp is applied once per skill at the end, so one batch yields exactly
// one PointChange per touched skill. Skills absent from the map start at
// entity.DefaultSkillScore.
func ApplyAnswers(scores map[string]int, answers []ScoredAnswer) (map[string]int, map[string]PointChange) {
	updated := make(map[string]int, len(scores)+len(answers))
	for skill, score := range scores {
		updated[skill] = score
	}

	// Accumulate raw deltas per skill before clamping.
	pending := make(map[string]int)
	for _, a := range answers {
		pending[a.Skill] += a.Delta
	}

	changes := make(map[string]PointChange, len(pending))
	for skill, delta := range pending {
		before, ok := updated[skill]
		if !ok {
			before = entity.DefaultSkillScore
		}
		after := clamp(before+delta, entity.MinSkillScore, entity.MaxSkillScore)
		updated[skill] = after
		changes[skill] = PointChange{Before: before, After: after, Delta: after - before}
	}

	return updated, changes
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
