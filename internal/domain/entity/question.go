package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// AnswerOption is a single choice of a multiple-choice question.
type AnswerOption struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// AnswerOptions is a custom type for storing options as JSONB.
type AnswerOptions []AnswerOption

// Scan implements sql.Scanner for AnswerOptions.
// Used by GORM to read JSONB data from the database.
func (o *AnswerOptions) Scan(value interface{}) error {
	if value == nil {
		*o = AnswerOptions{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*o = AnswerOptions{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value implements driver.Valuer for AnswerOptions.
func (o AnswerOptions) Value() (driver.Value, error) {
	if len(o) == 0 {
		return []byte("[]"), nil // empty JSON array instead of null
	}
	return json.Marshal(o)
}

// Question represents one practice question from the question bank.
// Subject, Domain and Skill are the slugs of the proficiency hierarchy
// the question belongs to (e.g. "math" / "algebra" / "linear-functions").
type Question struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	ExternalID      string        `gorm:"size:100;not null;uniqueIndex" json:"external_id"`
	Subject         string        `gorm:"size:50;not null;index" json:"subject"`
	Domain          string        `gorm:"size:80;not null;index" json:"domain"`
	Skill           string        `gorm:"size:80;not null;index" json:"skill"`
	Text            string        `gorm:"type:text;not null" json:"text"`
	Stimulus        string        `gorm:"type:text;not null;default:''" json:"stimulus,omitempty"`
	Explanation     string        `gorm:"type:text;not null;default:''" json:"-"`
	Options         AnswerOptions `gorm:"type:jsonb;not null" json:"options"`
	CorrectAnswerID string        `gorm:"size:50;not null" json:"-"` // hidden from the client
	// DifficultyBand is the 1..7 score band of the question. Nullable:
	// a question imported without a band is scored with the default band.
	DifficultyBand *int      `gorm:"index" json:"difficulty_band,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName sets the GORM table name.
func (Question) TableName() string {
	return "questions"
}

// IsCorrect reports whether the given option id is the correct answer.
func (q *Question) IsCorrect(answerID string) bool {
	return answerID != "" && answerID == q.CorrectAnswerID
}

// IsValidOption reports whether the given option id exists on the question.
func (q *Question) IsValidOption(answerID string) bool {
	for _, opt := range q.Options {
		if opt.ID == answerID {
			return true
		}
	}
	return false
}
