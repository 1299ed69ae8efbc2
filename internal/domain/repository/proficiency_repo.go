package repository

import "gorm.io/gorm"

// ProficiencyRepository defines persistence operations for per-skill scores.
//
// Scores are persisted as absolute values, never as increments, so that a
// retried write converges instead of compounding.
type ProficiencyRepository interface {
	// GetSkillScores returns the user's skill score map. Skills the user has
	// never touched are absent from the map.
	GetSkillScores(userID uint) (map[string]int, error)

	// SaveSkillScores upserts the given absolute scores for the user.
	// Skills not present in the map are left untouched. tx may be nil to use
	// the repository's own connection.
	SaveSkillScores(tx *gorm.DB, userID uint, scores map[string]int) error
}
