package entity

import "time"

// AnsweredQuestion is the append-only record of one question attempt within
// a session. It is never mutated or deleted: it serves as the audit trail
// and as the exclusion list for subsequent question fetches in the scope.
type AnsweredQuestion struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	SessionID  uint `gorm:"not null;index;uniqueIndex:idx_session_question" json:"session_id"`
	UserID     uint `gorm:"not null;index" json:"user_id"`
	QuestionID uint `gorm:"not null;uniqueIndex:idx_session_question" json:"question_id"`

	Skill            string `gorm:"size:80;not null;index" json:"skill"`
	SelectedAnswerID string `gorm:"size:50;not null" json:"selected_answer_id"`
	IsCorrect        bool   `gorm:"not null" json:"is_correct"`
	TimeSpentMs      int64  `gorm:"not null;default:0" json:"time_spent_ms"`
	// PointDelta is the raw point contribution of this attempt. Clamping to
	// the score range happens over the whole session batch at completion.
	PointDelta int `gorm:"not null;default:0" json:"point_delta"`

	// AttemptID is a client-generated idempotency key. Replays of the same
	// submission (retried beacons) hit its unique index instead of
	// double-counting.
	AttemptID string `gorm:"size:36;not null;uniqueIndex" json:"attempt_id"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName sets the GORM table name.
func (AnsweredQuestion) TableName() string {
	return "answered_questions"
}
