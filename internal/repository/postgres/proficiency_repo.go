package postgres

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/satprep-api/internal/domain/entity"
)

// ProficiencyRepo implements repository.ProficiencyRepository.
type ProficiencyRepo struct {
	db *gorm.DB
}

// NewProficiencyRepo creates a new proficiency repository.
func NewProficiencyRepo(db *gorm.DB) *ProficiencyRepo {
	return &ProficiencyRepo{db: db}
}

// GetSkillScores returns the user's persisted skill scores as a map.
// Untouched skills are simply absent; defaulting is the scoring layer's job.
func (r *ProficiencyRepo) GetSkillScores(userID uint) (map[string]int, error) {
	var rows []entity.SkillScore
	if err := r.db.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}

	scores := make(map[string]int, len(rows))
	for _, row := range rows {
		scores[row.Skill] = row.Score
	}
	return scores, nil
}

// SaveSkillScores upserts absolute scores for the user. Writing absolute
// values keeps retried completions convergent: replaying the same save
// lands on the same state instead of compounding increments.
func (r *ProficiencyRepo) SaveSkillScores(tx *gorm.DB, userID uint, scores map[string]int) error {
	if tx == nil {
		tx = r.db
	}
	if len(scores) == 0 {
		return nil
	}

	rows := make([]entity.SkillScore, 0, len(scores))
	for skill, score := range scores {
		rows = append(rows, entity.SkillScore{
			UserID: userID,
			Skill:  skill,
			Score:  score,
		})
	}

	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "skill"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "updated_at"}),
	}).Create(&rows).Error
}
