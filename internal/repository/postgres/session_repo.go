package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/satprep-api/internal/domain/entity"
	"github.com/yourusername/satprep-api/internal/domain/repository"
	apperrors "github.com/yourusername/satprep-api/internal/pkg/errors"
)

// SessionRepo implements repository.SessionRepository.
type SessionRepo struct {
	db *gorm.DB
}

// NewSessionRepo creates a new session repository.
func NewSessionRepo(db *gorm.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create persists a new practice session.
func (r *SessionRepo) Create(session *entity.PracticeSession) error {
	return r.db.Create(session).Error
}

// GetByID returns the session with the given id.
func (r *SessionRepo) GetByID(id uint) (*entity.PracticeSession, error) {
	var session entity.PracticeSession
	err := r.db.First(&session, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// GetUserSessions returns the user's sessions, newest first, with the total
// count for pagination.
func (r *SessionRepo) GetUserSessions(userID uint, limit, offset int) ([]entity.PracticeSession, int64, error) {
	var sessions []entity.PracticeSession
	var total int64

	if err := r.db.Model(&entity.PracticeSession{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Where("user_id = ?", userID).
		Order("started_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&sessions).Error
	return sessions, total, err
}

// UpdateProgress overwrites the cumulative counters of an active session.
// The guard on is_completed makes a late heartbeat against a finished
// session a detectable no-op instead of a resurrection.
func (r *SessionRepo) UpdateProgress(id uint, total, correct int) error {
	res := r.db.Model(&entity.PracticeSession{}).
		Where("id = ? AND is_completed = ?", id, false).
		Updates(map[string]interface{}{
			"total_questions_answered": total,
			"correct_answers":          correct,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Either the session does not exist or it is already completed.
		if _, err := r.GetByID(id); err != nil {
			return err
		}
		return repository.ErrSessionCompleted
	}
	return nil
}

// IncrementCounters adds one answer to the session counters.
func (r *SessionRepo) IncrementCounters(id uint, correct bool) error {
	updates := map[string]interface{}{
		"total_questions_answered": gorm.Expr("total_questions_answered + 1"),
	}
	if correct {
		updates["correct_answers"] = gorm.Expr("correct_answers + 1")
	}

	res := r.db.Model(&entity.PracticeSession{}).
		Where("id = ? AND is_completed = ?", id, false).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(id); err != nil {
			return err
		}
		return repository.ErrSessionCompleted
	}
	return nil
}

// CompleteIfActive is the single transition to the completed state.
// The conditional UPDATE on is_completed = false is what makes completion
// idempotent under racing triggers (navigation action, unload beacon,
// heartbeat): exactly one caller sees RowsAffected = 1 and owns the side
// effects; everyone else gets the already-final record back.
func (r *SessionRepo) CompleteIfActive(tx *gorm.DB, id uint, total, correct int) (bool, *entity.PracticeSession, error) {
	if tx == nil {
		tx = r.db
	}
	now := time.Now()
	res := tx.Model(&entity.PracticeSession{}).
		Where("id = ? AND is_completed = ?", id, false).
		Updates(map[string]interface{}{
			"is_completed":             true,
			"completed_at":             now,
			"total_questions_answered": total,
			"correct_answers":          correct,
		})
	if res.Error != nil {
		return false, nil, res.Error
	}

	// Read back through the same handle so a transactional caller sees its
	// own uncommitted update.
	var session entity.PracticeSession
	if err := tx.First(&session, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil, apperrors.ErrNotFound
		}
		return false, nil, err
	}
	return res.RowsAffected == 1, &session, nil
}

// SaveAnsweredQuestion appends one attempt record. Duplicate attempts hit
// the unique constraints and surface as a database error for the service
// layer to classify.
func (r *SessionRepo) SaveAnsweredQuestion(record *entity.AnsweredQuestion) error {
	return r.db.Create(record).Error
}

// GetSessionAnswers returns the session's attempt records in answer order.
func (r *SessionRepo) GetSessionAnswers(sessionID uint) ([]entity.AnsweredQuestion, error) {
	var answers []entity.AnsweredQuestion
	err := r.db.Where("session_id = ?", sessionID).
		Order("created_at").
		Find(&answers).Error
	return answers, err
}

// GetAnsweredQuestionIDs returns ids of questions the user already answered
// within the scope, joining through the question bank for the scope filter.
func (r *SessionRepo) GetAnsweredQuestionIDs(userID uint, scope repository.QuestionScope) ([]uint, error) {
	var ids []uint
	query := r.db.Model(&entity.AnsweredQuestion{}).
		Joins("JOIN questions ON questions.id = answered_questions.question_id").
		Where("answered_questions.user_id = ?", userID)

	if scope.Subject != "" {
		query = query.Where("questions.subject = ?", scope.Subject)
	}
	if scope.Domain != "" {
		query = query.Where("questions.domain = ?", scope.Domain)
	}
	if scope.Skill != "" {
		query = query.Where("questions.skill = ?", scope.Skill)
	}

	err := query.Distinct().Pluck("answered_questions.question_id", &ids).Error
	return ids, err
}
