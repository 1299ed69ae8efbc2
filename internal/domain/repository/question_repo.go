package repository

import (
	"github.com/yourusername/satprep-api/internal/domain/entity"
)

// QuestionScope narrows a question query to a slice of the hierarchy.
// Zero value means the whole bank.
type QuestionScope struct {
	Subject string
	Domain  string
	Skill   string
}

// QuestionRepository defines persistence operations for the question bank.
type QuestionRepository interface {
	Create(question *entity.Question) error
	CreateBatch(questions []entity.Question) error
	GetByID(id uint) (*entity.Question, error)
	Update(question *entity.Question) error
	Delete(id uint) error

	// GetUnseen returns up to limit questions matching the scope, excluding
	// the given ids, in random order.
	GetUnseen(scope QuestionScope, excludeIDs []uint, limit int) ([]entity.Question, error)

	// CountByScope returns how many questions exist for the scope.
	CountByScope(scope QuestionScope) (int64, error)
}
