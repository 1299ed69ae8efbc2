package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/yourusername/satprep-api/internal/domain/entity"
	"github.com/yourusername/satprep-api/internal/domain/repository"
	apperrors "github.com/yourusername/satprep-api/internal/pkg/errors"
	"github.com/yourusername/satprep-api/internal/service/proficiency"
)

const (
	// DefaultQuestionSetSize is how many questions one fetch returns.
	DefaultQuestionSetSize = 10
	// MaxQuestionSetSize caps a single fetch.
	MaxQuestionSetSize = 50

	// seenSetTTL bounds the Redis seen-question fast path; the database
	// join remains the source of truth.
	seenSetTTL = 24 * time.Hour
)

// AnswerSubmission is one graded answer request.
type AnswerSubmission struct {
	QuestionID       uint   `json:"question_id"`
	SelectedAnswerID string `json:"selected_answer_id"`
	TimeSpentMs      int64  `json:"time_spent_ms"`
	// AttemptID is an optional client idempotency key; one is generated
	// when absent.
	AttemptID string `json:"attempt_id"`
}

// AnswerResult is the graded outcome returned to the client. PointDelta is
// the raw delta this answer contributes to the completion batch; the
// clamped skill score lands when the session finalizes.
type AnswerResult struct {
	QuestionID      uint   `json:"question_id"`
	IsCorrect       bool   `json:"is_correct"`
	CorrectAnswerID string `json:"correct_answer_id"`
	Explanation     string `json:"explanation,omitempty"`
	PointDelta      int    `json:"point_delta"`
	Skill           string `json:"skill"`
}

// PracticeService selects unseen questions for a session's scope and grades
// submitted answers.
type PracticeService struct {
	questionRepo repository.QuestionRepository
	sessionRepo  repository.SessionRepository
	sessionSvc   *SessionService
	cacheRepo    repository.CacheRepository
	hierarchy    *proficiency.Hierarchy
}

// NewPracticeService creates a new practice service.
func NewPracticeService(
	questionRepo repository.QuestionRepository,
	sessionRepo repository.SessionRepository,
	sessionSvc *SessionService,
	cacheRepo repository.CacheRepository,
	hierarchy *proficiency.Hierarchy,
) *PracticeService {
	return &PracticeService{
		questionRepo: questionRepo,
		sessionRepo:  sessionRepo,
		sessionSvc:   sessionSvc,
		cacheRepo:    cacheRepo,
		hierarchy:    hierarchy,
	}
}

// scopeFilter translates a session's scope into a question query filter.
func scopeFilter(session *entity.PracticeSession) repository.QuestionScope {
	switch session.ScopeType {
	case entity.ScopeSubject:
		return repository.QuestionScope{Subject: session.ScopeID}
	case entity.ScopeDomain:
		return repository.QuestionScope{Domain: session.ScopeID}
	case entity.ScopeSkill:
		return repository.QuestionScope{Skill: session.ScopeID}
	}
	return repository.QuestionScope{}
}

// FetchQuestions returns up to limit unseen questions for the session's
// scope, excluding everything the user has already answered in that scope.
func (s *PracticeService) FetchQuestions(ctx context.Context, userID, sessionID uint, limit int) ([]entity.Question, error) {
	session, err := s.sessionSvc.Get(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.IsCompleted {
		return nil, ErrInvalidSessionState
	}

	if limit < 1 {
		limit = DefaultQuestionSetSize
	} else if limit > MaxQuestionSetSize {
		limit = MaxQuestionSetSize
	}

	excludeIDs, err := s.seenQuestionIDs(userID, session)
	if err != nil {
		return nil, err
	}

	questions, err := s.questionRepo.GetUnseen(scopeFilter(session), excludeIDs, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch questions: %w", err)
	}

	log.Printf("[PracticeService] Fetched %d questions for session #%d (scope %s/%s, %d excluded)",
		len(questions), sessionID, session.ScopeType, session.ScopeID, len(excludeIDs))
	return questions, nil
}

// seenQuestionIDs returns the exclusion list for the user and scope. The
// Redis set is a fast path only: on any cache trouble the database join
// answers, and the set is rebuilt lazily.
func (s *PracticeService) seenQuestionIDs(userID uint, session *entity.PracticeSession) ([]uint, error) {
	key := seenSetKey(userID, session)

	members, cacheErr := s.cacheRepo.SMembers(key)
	if cacheErr == nil && len(members) > 0 {
		ids := make([]uint, 0, len(members))
		for _, m := range members {
			id, err := strconv.ParseUint(m, 10, 32)
			if err != nil {
				// Corrupt member: fall back to the database.
				ids = nil
				break
			}
			ids = append(ids, uint(id))
		}
		if ids != nil {
			return ids, nil
		}
	} else if cacheErr != nil {
		log.Printf("[PracticeService] WARNING: Redis error reading seen set %s: %v", key, cacheErr)
	}

	ids, err := s.sessionRepo.GetAnsweredQuestionIDs(userID, scopeFilter(session))
	if err != nil {
		return nil, fmt.Errorf("failed to load answered question ids: %w", err)
	}

	if len(ids) > 0 {
		members := make([]interface{}, len(ids))
		for i, id := range ids {
			members[i] = strconv.FormatUint(uint64(id), 10)
		}
		if cacheErr := s.cacheRepo.SAdd(key, members...); cacheErr != nil {
			log.Printf("[PracticeService] WARNING: failed to rebuild seen set %s: %v", key, cacheErr)
		} else if cacheErr := s.cacheRepo.ExpireAt(key, time.Now().Add(seenSetTTL)); cacheErr != nil {
			log.Printf("[PracticeService] WARNING: failed to expire seen set %s: %v", key, cacheErr)
		}
	}
	return ids, nil
}

func seenSetKey(userID uint, session *entity.PracticeSession) string {
	return fmt.Sprintf("user:%d:seen:%s:%s", userID, session.ScopeType, session.ScopeID)
}

// SubmitAnswer grades one answer against the question bank and records it.
//
// Order matters, DB first: the append-only attempt record is the source of
// truth and carries the unique constraints that make duplicate submissions
// (retried beacons, double clicks) detectable. Everything after a successful
// save is best-effort and must never block the student's flow.
func (s *PracticeService) SubmitAnswer(ctx context.Context, userID, sessionID uint, sub AnswerSubmission) (*AnswerResult, error) {
	session, err := s.sessionSvc.Get(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session.IsCompleted {
		return nil, ErrInvalidSessionState
	}

	question, err := s.questionRepo.GetByID(sub.QuestionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load question: %w", err)
	}
	if sub.SelectedAnswerID != "" && !question.IsValidOption(sub.SelectedAnswerID) {
		return nil, fmt.Errorf("%w: unknown option %q", apperrors.ErrValidation, sub.SelectedAnswerID)
	}

	isCorrect := question.IsCorrect(sub.SelectedAnswerID)

	delta, err := proficiency.PointsForAnswer(question.DifficultyBand, isCorrect)
	if err != nil {
		// An out-of-range band is corrupt bank data; surface it, this is a
		// bug to fix rather than swallow.
		return nil, fmt.Errorf("question #%d has invalid difficulty: %w", question.ID, err)
	}

	attemptID := sub.AttemptID
	if attemptID == "" {
		attemptID = uuid.NewString()
	}

	record := &entity.AnsweredQuestion{
		SessionID:        sessionID,
		UserID:           userID,
		QuestionID:       question.ID,
		Skill:            question.Skill,
		SelectedAnswerID: sub.SelectedAnswerID,
		IsCorrect:        isCorrect,
		TimeSpentMs:      sub.TimeSpentMs,
		PointDelta:       delta,
		AttemptID:        attemptID,
	}
	if err := s.sessionRepo.SaveAnsweredQuestion(record); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			log.Printf("[PracticeService] Duplicate answer for question #%d in session #%d (attempt %s)",
				question.ID, sessionID, attemptID)
			return nil, ErrAlreadyAnswered
		}
		return nil, fmt.Errorf("failed to save answer: %w", err)
	}

	// Post-save bookkeeping is best-effort: the attempt record already
	// guarantees the answer counts toward completion scoring.
	if err := s.sessionSvc.RecordAnswer(sessionID, isCorrect); err != nil {
		log.Printf("[PracticeService] WARNING: failed to bump counters for session #%d: %v", sessionID, err)
	}
	if err := s.cacheRepo.SAdd(seenSetKey(userID, session), strconv.FormatUint(uint64(question.ID), 10)); err != nil {
		log.Printf("[PracticeService] WARNING: failed to mark question #%d seen: %v", question.ID, err)
	}

	return &AnswerResult{
		QuestionID:      question.ID,
		IsCorrect:       isCorrect,
		CorrectAnswerID: question.CorrectAnswerID,
		Explanation:     question.Explanation,
		PointDelta:      delta,
		Skill:           question.Skill,
	}, nil
}

// SessionAnswers returns the attempt records of the user's session.
func (s *PracticeService) SessionAnswers(userID, sessionID uint) ([]entity.AnsweredQuestion, error) {
	if _, err := s.sessionSvc.Get(sessionID, userID); err != nil {
		return nil, err
	}
	return s.sessionRepo.GetSessionAnswers(sessionID)
}
