package repository

import (
	"gorm.io/gorm"

	"github.com/yourusername/satprep-api/internal/domain/entity"
)

// SessionRepository defines persistence operations for practice sessions
// and their answered-question records.
type SessionRepository interface {
	Create(session *entity.PracticeSession) error
	GetByID(id uint) (*entity.PracticeSession, error)
	GetUserSessions(userID uint, limit, offset int) ([]entity.PracticeSession, int64, error)

	// UpdateProgress overwrites the cumulative counters of an active session.
	// Returns ErrSessionCompleted if the session is already completed.
	UpdateProgress(id uint, total, correct int) error

	// CompleteIfActive performs the single atomic transition to completed:
	// it sets is_completed, completed_at and the final totals only if
	// is_completed was previously false. Returns (true, session) when this
	// call won the transition and (false, session) when the session had
	// already been completed (the returned record is the final one either
	// way). tx may be nil to use the repository's own connection; the
	// completion side effects run inside the same transaction.
	CompleteIfActive(tx *gorm.DB, id uint, total, correct int) (bool, *entity.PracticeSession, error)

	// IncrementCounters adds one answer to the session counters.
	// Returns ErrSessionCompleted if the session is already completed.
	IncrementCounters(id uint, correct bool) error

	SaveAnsweredQuestion(record *entity.AnsweredQuestion) error
	GetSessionAnswers(sessionID uint) ([]entity.AnsweredQuestion, error)

	// GetAnsweredQuestionIDs returns the ids of all questions the user has
	// already answered within the scope, for exclusion from fetches.
	GetAnsweredQuestionIDs(userID uint, scope QuestionScope) ([]uint, error)
}
