package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/satprep-api/internal/domain/entity"
	"github.com/yourusername/satprep-api/internal/domain/repository"
	apperrors "github.com/yourusername/satprep-api/internal/pkg/errors"
)

// QuestionRepo implements repository.QuestionRepository.
type QuestionRepo struct {
	db *gorm.DB
}

// NewQuestionRepo creates a new question repository.
func NewQuestionRepo(db *gorm.DB) *QuestionRepo {
	return &QuestionRepo{db: db}
}

// Create persists a new question.
func (r *QuestionRepo) Create(question *entity.Question) error {
	return r.db.Create(question).Error
}

// CreateBatch persists several questions at once.
func (r *QuestionRepo) CreateBatch(questions []entity.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return r.db.Create(&questions).Error
}

// GetByID returns the question with the given id.
func (r *QuestionRepo) GetByID(id uint) (*entity.Question, error) {
	var question entity.Question
	err := r.db.First(&question, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &question, nil
}

// Update saves changes to an existing question.
func (r *QuestionRepo) Update(question *entity.Question) error {
	return r.db.Save(question).Error
}

// Delete removes a question from the bank.
func (r *QuestionRepo) Delete(id uint) error {
	return r.db.Delete(&entity.Question{}, id).Error
}

// scopedQuery applies the hierarchy scope filter to a questions query.
func scopedQuery(db *gorm.DB, scope repository.QuestionScope) *gorm.DB {
	q := db.Model(&entity.Question{})
	if scope.Subject != "" {
		q = q.Where("subject = ?", scope.Subject)
	}
	if scope.Domain != "" {
		q = q.Where("domain = ?", scope.Domain)
	}
	if scope.Skill != "" {
		q = q.Where("skill = ?", scope.Skill)
	}
	return q
}

// GetUnseen returns up to limit questions in the scope the user has not
// answered yet, in random order.
func (r *QuestionRepo) GetUnseen(scope repository.QuestionScope, excludeIDs []uint, limit int) ([]entity.Question, error) {
	var questions []entity.Question

	query := scopedQuery(r.db, scope)
	if len(excludeIDs) > 0 {
		query = query.Where("id NOT IN ?", excludeIDs)
	}

	err := query.Order("RANDOM()").Limit(limit).Find(&questions).Error
	return questions, err
}

// CountByScope returns how many questions exist for the scope.
func (r *QuestionRepo) CountByScope(scope repository.QuestionScope) (int64, error) {
	var count int64
	err := scopedQuery(r.db, scope).Count(&count).Error
	return count, err
}
