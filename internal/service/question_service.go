package service

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"

	"github.com/yourusername/satprep-api/internal/domain/entity"
	"github.com/yourusername/satprep-api/internal/domain/repository"
	apperrors "github.com/yourusername/satprep-api/internal/pkg/errors"
	"github.com/yourusername/satprep-api/internal/service/proficiency"
)

// bulkLockKey guards against two admins loading question batches at once,
// which would race on external_id conflicts mid-batch.
const (
	bulkLockKey = "questions:bulk:lock"
	bulkLockTTL = time.Minute
)

// ErrBulkLoadInProgress is returned when a batch creation is already running.
var ErrBulkLoadInProgress = errors.New("a question batch load is already in progress")

// QuestionService manages the question bank (admin surface). Reads for the
// practice flow live in PracticeService; this service owns the writes.
type QuestionService struct {
	questionRepo repository.QuestionRepository
	cacheRepo    repository.CacheRepository
	hierarchy    *proficiency.Hierarchy
}

// NewQuestionService creates a new question bank service.
func NewQuestionService(
	questionRepo repository.QuestionRepository,
	cacheRepo repository.CacheRepository,
	hierarchy *proficiency.Hierarchy,
) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		cacheRepo:    cacheRepo,
		hierarchy:    hierarchy,
	}
}

// Create validates and persists a single question.
func (s *QuestionService) Create(question *entity.Question) error {
	if err := s.validate(question); err != nil {
		return err
	}
	if err := s.questionRepo.Create(question); err != nil {
		return mapQuestionWriteError(err)
	}
	log.Printf("[QuestionService] Created question #%d (%s)", question.ID, question.ExternalID)
	return nil
}

// CreateBatch validates and persists a batch of questions atomically. Only
// one batch load may run at a time; a second call while the lock is held
// returns ErrBulkLoadInProgress.
func (s *QuestionService) CreateBatch(questions []entity.Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("%w: empty question batch", apperrors.ErrValidation)
	}
	for i := range questions {
		if err := s.validate(&questions[i]); err != nil {
			return fmt.Errorf("question %d (%s): %w", i, questions[i].ExternalID, err)
		}
	}

	acquired, err := s.cacheRepo.SetNX(bulkLockKey, 1, bulkLockTTL)
	if err != nil {
		// A broken cache must not block bank maintenance; the unique index
		// on external_id still catches racing duplicates.
		log.Printf("[QuestionService] WARNING: bulk lock unavailable, proceeding: %v", err)
	} else if !acquired {
		return ErrBulkLoadInProgress
	} else {
		defer func() {
			if delErr := s.cacheRepo.Delete(bulkLockKey); delErr != nil {
				log.Printf("[QuestionService] WARNING: failed to release bulk lock: %v", delErr)
			}
		}()
	}

	if err := s.questionRepo.CreateBatch(questions); err != nil {
		return mapQuestionWriteError(err)
	}
	log.Printf("[QuestionService] Loaded %d questions into the bank", len(questions))
	return nil
}

// Update validates and saves changes to an existing question.
func (s *QuestionService) Update(id uint, question *entity.Question) error {
	existing, err := s.questionRepo.GetByID(id)
	if err != nil {
		return err
	}

	question.ID = existing.ID
	question.CreatedAt = existing.CreatedAt
	if err := s.validate(question); err != nil {
		return err
	}
	if err := s.questionRepo.Update(question); err != nil {
		return mapQuestionWriteError(err)
	}
	log.Printf("[QuestionService] Updated question #%d", id)
	return nil
}

// Delete removes a question from the bank. Existing answered_questions rows
// keep their copied skill and delta, so past sessions stay scorable.
func (s *QuestionService) Delete(id uint) error {
	if _, err := s.questionRepo.GetByID(id); err != nil {
		return err
	}
	if err := s.questionRepo.Delete(id); err != nil {
		return err
	}
	log.Printf("[QuestionService] Deleted question #%d", id)
	return nil
}

// Count returns how many questions exist for the scope (zero scope counts
// the whole bank). Used by admins to spot thin skills before publishing.
func (s *QuestionService) Count(scope repository.QuestionScope) (int64, error) {
	if scope.Skill != "" && !s.hierarchy.HasSkill(scope.Skill) {
		return 0, fmt.Errorf("%w: unknown skill %q", ErrInvalidScope, scope.Skill)
	}
	if scope.Domain != "" {
		if _, ok := s.hierarchy.Domain(scope.Domain); !ok {
			return 0, fmt.Errorf("%w: unknown domain %q", ErrInvalidScope, scope.Domain)
		}
	}
	if scope.Subject != "" {
		if _, ok := s.hierarchy.Subject(scope.Subject); !ok {
			return 0, fmt.Errorf("%w: unknown subject %q", ErrInvalidScope, scope.Subject)
		}
	}
	return s.questionRepo.CountByScope(scope)
}

// validate checks a question against the bank's invariants: a known
// hierarchy placement, a gradable option set and a plausible band.
func (s *QuestionService) validate(q *entity.Question) error {
	if q.ExternalID == "" {
		return fmt.Errorf("%w: external_id is required", apperrors.ErrValidation)
	}
	if q.Text == "" {
		return fmt.Errorf("%w: question text is required", apperrors.ErrValidation)
	}
	if len(q.Options) < 2 {
		return fmt.Errorf("%w: a question needs at least two options", apperrors.ErrValidation)
	}
	if !q.IsValidOption(q.CorrectAnswerID) {
		return fmt.Errorf("%w: correct_answer_id must reference one of the options", apperrors.ErrValidation)
	}
	if q.DifficultyBand != nil && (*q.DifficultyBand < proficiency.MinBand || *q.DifficultyBand > proficiency.MaxBand) {
		return fmt.Errorf("%w: difficulty_band must be between %d and %d",
			apperrors.ErrValidation, proficiency.MinBand, proficiency.MaxBand)
	}

	if !s.hierarchy.HasSkill(q.Skill) {
		return fmt.Errorf("%w: unknown skill %q", apperrors.ErrValidation, q.Skill)
	}
	if domain, _ := s.hierarchy.DomainOfSkill(q.Skill); domain != q.Domain {
		return fmt.Errorf("%w: skill %q belongs to domain %q, not %q",
			apperrors.ErrValidation, q.Skill, domain, q.Domain)
	}
	if subject, _ := s.hierarchy.SubjectOfDomain(q.Domain); subject != q.Subject {
		return fmt.Errorf("%w: domain %q belongs to subject %q, not %q",
			apperrors.ErrValidation, q.Domain, subject, q.Subject)
	}
	return nil
}

// mapQuestionWriteError translates the unique external_id violation into the
// conflict sentinel.
func mapQuestionWriteError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
		return fmt.Errorf("%w: a question with this external_id already exists", apperrors.ErrConflict)
	}
	return err
}
