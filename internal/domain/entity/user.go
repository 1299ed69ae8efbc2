package entity

import (
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User represents a registered student.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Email    string `gorm:"size:100;not null;uniqueIndex" json:"email"`
	Password string `gorm:"size:100;not null" json:"-"`
	Role     string `gorm:"size:20;not null;default:'user'" json:"-"` // "user" or "admin"

	// Lifetime practice counters, updated on session completion.
	QuestionsAnswered int64 `gorm:"not null;default:0" json:"questions_answered"`
	CorrectAnswers    int64 `gorm:"not null;default:0" json:"correct_answers"`
	SessionsCompleted int64 `gorm:"not null;default:0" json:"sessions_completed"`

	// Daily streak, advanced at most once per calendar day.
	CurrentStreak    int        `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak    int        `gorm:"not null;default:0" json:"longest_streak"`
	LastPracticeDate *time.Time `gorm:"type:date" json:"last_practice_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the GORM table name.
func (User) TableName() string {
	return "users"
}

// BeforeSave hashes the password before persisting, unless it already is a
// bcrypt hash (GORM calls this hook on every save, including counter updates).
func (u *User) BeforeSave(tx *gorm.DB) error {
	if len(u.Password) > 0 && !isBcryptHash(u.Password) {
		hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("[User] Failed to hash password for user %s: %v", u.Username, err)
			return err
		}
		u.Password = string(hashed)
	}
	return nil
}

// CheckPassword compares a plaintext candidate with the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// isBcryptHash reports whether s looks like a bcrypt hash ($2a$, $2b$, $2y$).
func isBcryptHash(s string) bool {
	return len(s) == 60 && s[0] == '$' && s[1] == '2' && s[3] == '$'
}
