package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/satprep-api/internal/domain/entity"
	apperrors "github.com/yourusername/satprep-api/internal/pkg/errors"
)

// UserRepo implements repository.UserRepository.
type UserRepo struct {
	db *gorm.DB
}

// NewUserRepo creates a new user repository.
func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create persists a new user.
func (r *UserRepo) Create(user *entity.User) error {
	return r.db.Create(user).Error
}

// GetByID returns the user with the given id.
func (r *UserRepo) GetByID(id uint) (*entity.User, error) {
	var user entity.User
	err := r.db.First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByEmail returns the user with the given email.
func (r *UserRepo) GetByEmail(email string) (*entity.User, error) {
	var user entity.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByUsername returns the user with the given username.
func (r *UserRepo) GetByUsername(username string) (*entity.User, error) {
	var user entity.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Update saves changes to an existing user.
func (r *UserRepo) Update(user *entity.User) error {
	return r.db.Save(user).Error
}

// ApplyCompletionStats adds session totals to the lifetime counters and sets
// the streak fields in one statement. Totals are added, streaks are absolute:
// the caller computed the new streak from the previous record, and the write
// runs inside the completion transaction whose conditional session update
// guarantees it happens at most once.
func (r *UserRepo) ApplyCompletionStats(tx *gorm.DB, userID uint, total, correct int, newStreak, longestStreak int, practiceDate string) error {
	if tx == nil {
		tx = r.db
	}
	return tx.Model(&entity.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"questions_answered": gorm.Expr("questions_answered + ?", total),
			"correct_answers":    gorm.Expr("correct_answers + ?", correct),
			"sessions_completed": gorm.Expr("sessions_completed + 1"),
			"current_streak":     newStreak,
			"longest_streak":     longestStreak,
			"last_practice_date": practiceDate,
		}).Error
}

// GetLeaderboard returns users ranked by lifetime correct answers, with the
// total user count for pagination.
func (r *UserRepo) GetLeaderboard(limit, offset int) ([]entity.User, int64, error) {
	var users []entity.User
	var total int64

	if err := r.db.Model(&entity.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Order("correct_answers DESC, questions_answered DESC, id ASC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	return users, total, err
}
