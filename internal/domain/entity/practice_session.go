package entity

import "time"

// Practice scope types. A session is always bound to one scope.
const (
	ScopeAll     = "all"
	ScopeSubject = "subject"
	ScopeDomain  = "domain"
	ScopeSkill   = "skill"
)

// PracticeSession represents one continuous practice attempt within a scope.
// Lifecycle: active -> completed. Completed is terminal; a session must
// never go back to active.
type PracticeSession struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	UserID    uint   `gorm:"not null;index" json:"user_id"`
	ScopeType string `gorm:"size:20;not null" json:"scope_type"`
	// ScopeID is the subject/domain/skill slug the session targets.
	// Empty for ScopeAll.
	ScopeID string `gorm:"size:80;not null;default:''" json:"scope_id"`

	TotalQuestionsAnswered int `gorm:"not null;default:0" json:"total_questions_answered"`
	CorrectAnswers         int `gorm:"not null;default:0" json:"correct_answers"`

	IsCompleted bool       `gorm:"not null;default:false;index" json:"is_completed"`
	StartedAt   time.Time  `gorm:"not null" json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the GORM table name.
func (PracticeSession) TableName() string {
	return "practice_sessions"
}

// IsValidScopeType reports whether t is one of the known scope types.
func IsValidScopeType(t string) bool {
	switch t {
	case ScopeAll, ScopeSubject, ScopeDomain, ScopeSkill:
		return true
	}
	return false
}
