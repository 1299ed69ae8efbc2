package repository

import (
	"gorm.io/gorm"

	"github.com/yourusername/satprep-api/internal/domain/entity"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id uint) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	GetByUsername(username string) (*entity.User, error)
	Update(user *entity.User) error

	// ApplyCompletionStats adds the session totals to the user's lifetime
	// counters and sets the daily streak fields. tx may be nil to use the
	// repository's own connection; pass the completion transaction to keep
	// the update atomic with the session transition.
	ApplyCompletionStats(tx *gorm.DB, userID uint, total, correct int, newStreak, longestStreak int, practiceDate string) error

	// GetLeaderboard returns users ranked by lifetime correct answers.
	GetLeaderboard(limit, offset int) ([]entity.User, int64, error)
}
