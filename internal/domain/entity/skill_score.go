package entity

import "time"

// Skill score bounds. A skill the user has never touched reads as
// DefaultSkillScore; persisted scores are always within [MinSkillScore, MaxSkillScore].
const (
	MinSkillScore     = 0
	MaxSkillScore     = 800
	DefaultSkillScore = 200
)

// SkillScore is one user's proficiency score for one skill.
// Created lazily the first time the skill is touched.
type SkillScore struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_user_skill" json:"user_id"`
	Skill     string    `gorm:"size:80;not null;uniqueIndex:idx_user_skill" json:"skill"`
	Score     int       `gorm:"not null;default:200" json:"score"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the GORM table name.
func (SkillScore) TableName() string {
	return "skill_scores"
}
