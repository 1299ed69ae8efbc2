package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/satprep-api/internal/domain/entity"
	"github.com/yourusername/satprep-api/internal/domain/repository"
	apperrors "github.com/yourusername/satprep-api/internal/pkg/errors"
	"github.com/yourusername/satprep-api/internal/service/proficiency"
)

// heartbeatTTL bounds how long a progress snapshot survives in the cache.
const heartbeatTTL = time.Hour

// SessionTotals are the cumulative counters reported by a caller on
// heartbeat or completion.
type SessionTotals struct {
	TotalQuestionsAnswered int `json:"total_questions_answered"`
	CorrectAnswers         int `json:"correct_answers"`
}

// CompletionResult is the outcome of a Complete call. When the call lost the
// idempotency race (or arrived after completion), AlreadyCompleted is true,
// Session is the final record from the first completion and the change maps
// are empty — no side effects ran a second time.
type CompletionResult struct {
	Session          *entity.PracticeSession            `json:"session"`
	AlreadyCompleted bool                               `json:"already_completed"`
	Ignored          bool                               `json:"ignored,omitempty"`
	SkillChanges     map[string]proficiency.PointChange `json:"skill_changes,omitempty"`
	DomainChanges    map[string]proficiency.PointChange `json:"domain_changes,omitempty"`
	SubjectChanges   map[string]proficiency.PointChange `json:"subject_changes,omitempty"`
	OverallChange    *proficiency.PointChange           `json:"overall_change,omitempty"`
	CurrentStreak    int                                `json:"current_streak"`
}

// SessionService manages the practice session lifecycle: active -> completed,
// with completion idempotent under racing triggers (explicit navigation,
// unload beacon, heartbeat).
type SessionService struct {
	sessionRepo     repository.SessionRepository
	userRepo        repository.UserRepository
	proficiencyRepo repository.ProficiencyRepository
	cacheRepo       repository.CacheRepository
	hierarchy       *proficiency.Hierarchy
	db              repository.TxManager
}

// NewSessionService creates a new session service.
func NewSessionService(
	sessionRepo repository.SessionRepository,
	userRepo repository.UserRepository,
	proficiencyRepo repository.ProficiencyRepository,
	cacheRepo repository.CacheRepository,
	hierarchy *proficiency.Hierarchy,
	db repository.TxManager,
) *SessionService {
	return &SessionService{
		sessionRepo:     sessionRepo,
		userRepo:        userRepo,
		proficiencyRepo: proficiencyRepo,
		cacheRepo:       cacheRepo,
		hierarchy:       hierarchy,
		db:              db,
	}
}

// Start creates a new active session for the user and scope.
func (s *SessionService) Start(ctx context.Context, userID uint, scopeType, scopeID string) (*entity.PracticeSession, error) {
	if userID == 0 {
		return nil, ErrAuthenticationRequired
	}
	if !entity.IsValidScopeType(scopeType) {
		return nil, fmt.Errorf("%w: unknown scope type %q", ErrInvalidScope, scopeType)
	}
	if scopeType == entity.ScopeAll {
		scopeID = ""
	} else if !s.hierarchy.ValidScopeTarget(scopeType, scopeID) {
		return nil, fmt.Errorf("%w: %s %q not found in hierarchy", ErrInvalidScope, scopeType, scopeID)
	}

	session := &entity.PracticeSession{
		UserID:    userID,
		ScopeType: scopeType,
		ScopeID:   scopeID,
		StartedAt: time.Now(),
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, fmt.Errorf("failed to create practice session: %w", err)
	}

	log.Printf("[SessionService] Started session #%d for user #%d (scope %s/%s)",
		session.ID, userID, scopeType, scopeID)
	return session, nil
}

// Get returns the user's session by id.
func (s *SessionService) Get(sessionID, userID uint) (*entity.PracticeSession, error) {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return session, nil
}

// History returns the user's sessions, newest first.
func (s *SessionService) History(userID uint, page, pageSize int) ([]entity.PracticeSession, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	} else if pageSize > 100 {
		pageSize = 100
	}
	return s.sessionRepo.GetUserSessions(userID, pageSize, (page-1)*pageSize)
}

// RecordAnswer increments the cumulative counters of an active session.
func (s *SessionService) RecordAnswer(sessionID uint, correct bool) error {
	err := s.sessionRepo.IncrementCounters(sessionID, correct)
	if errors.Is(err, repository.ErrSessionCompleted) {
		return ErrInvalidSessionState
	}
	return err
}

// UpdateProgress idempotently overwrites the session counters from a
// periodic heartbeat. This path is best-effort telemetry: a heartbeat
// against a completed session returns ErrInvalidSessionState for the caller
// to log and drop, and cache failures never surface.
func (s *SessionService) UpdateProgress(ctx context.Context, userID, sessionID uint, totals SessionTotals) error {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return err
	}
	if session.UserID != userID {
		return apperrors.ErrForbidden
	}

	err = s.sessionRepo.UpdateProgress(sessionID, totals.TotalQuestionsAnswered, totals.CorrectAnswers)
	if errors.Is(err, repository.ErrSessionCompleted) {
		return ErrInvalidSessionState
	}
	if err != nil {
		return err
	}

	// Keep a cache snapshot for the progress UI; losing it is harmless.
	key := fmt.Sprintf("session:%d:progress", sessionID)
	if cacheErr := s.cacheRepo.SetJSON(key, totals, heartbeatTTL); cacheErr != nil {
		log.Printf("[SessionService] WARNING: failed to cache progress for session #%d: %v", sessionID, cacheErr)
	}
	return nil
}

// Complete is the only transition to the completed state and is idempotent:
// duplicate or racing completions (navigation action, unload beacon,
// heartbeat timeout) apply side effects at most once, guarded by the
// conditional is_completed update in the repository.
//
// force distinguishes a definite exit from a heuristic one: a non-forced
// signal for a session with no recorded activity is ignored, since an empty
// tentative beacon usually means the tab closed before practice started.
func (s *SessionService) Complete(ctx context.Context, userID, sessionID uint, totals SessionTotals, force bool) (*CompletionResult, error) {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, apperrors.ErrForbidden
	}

	if session.IsCompleted {
		log.Printf("[SessionService] Session #%d already completed, returning final record", sessionID)
		return &CompletionResult{Session: session, AlreadyCompleted: true, CurrentStreak: s.currentStreak(userID)}, nil
	}

	// Client totals can run ahead of the server counters when answer writes
	// and the exit signal race; never let a completion lose progress.
	total := max(totals.TotalQuestionsAnswered, session.TotalQuestionsAnswered)
	correct := max(totals.CorrectAnswers, session.CorrectAnswers)

	if !force && total == 0 {
		log.Printf("[SessionService] Ignoring tentative completion of empty session #%d", sessionID)
		return &CompletionResult{Session: session, Ignored: true}, nil
	}

	var result *CompletionResult
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		won, finalSession, err := s.sessionRepo.CompleteIfActive(tx, sessionID, total, correct)
		if err != nil {
			return err
		}
		if !won {
			// Lost the race to a concurrent trigger; its side effects stand.
			result = &CompletionResult{Session: finalSession, AlreadyCompleted: true}
			return nil
		}

		result, err = s.applyCompletionEffects(tx, finalSession, total, correct)
		return err
	})
	if txErr != nil {
		// The transaction rolled back: the session is still active and the
		// caller is expected to retry (unload beacons redeliver blindly).
		log.Printf("[SessionService] CRITICAL: completion of session #%d failed, left active for retry: %v", sessionID, txErr)
		return nil, fmt.Errorf("failed to complete session: %w", txErr)
	}

	if result.AlreadyCompleted {
		result.CurrentStreak = s.currentStreak(userID)
	}
	return result, nil
}

// applyCompletionEffects runs the at-most-once side effects of a completion:
// the batched skill score pass over the session's answers, the hierarchy
// roll-up for the response, and the user's lifetime counters and streak.
// All writes go through tx so they commit or roll back with the session
// transition.
func (s *SessionService) applyCompletionEffects(tx *gorm.DB, session *entity.PracticeSession, total, correct int) (*CompletionResult, error) {
	answers, err := s.sessionRepo.GetSessionAnswers(session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session answers: %w", err)
	}

	batch := make([]proficiency.ScoredAnswer, 0, len(answers))
	for _, a := range answers {
		if !s.hierarchy.HasSkill(a.Skill) {
			log.Printf("[SessionService] WARNING: answer #%d references unknown skill %q, skipping", a.ID, a.Skill)
			continue
		}
		batch = append(batch, proficiency.ScoredAnswer{Skill: a.Skill, Delta: a.PointDelta})
	}

	before, err := s.proficiencyRepo.GetSkillScores(session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load skill scores: %w", err)
	}

	after, skillChanges := proficiency.ApplyAnswers(before, batch)

	// Persist only the touched skills, as absolute values.
	touched := make(map[string]int, len(skillChanges))
	for skill := range skillChanges {
		touched[skill] = after[skill]
	}
	if err := s.proficiencyRepo.SaveSkillScores(tx, session.UserID, touched); err != nil {
		return nil, fmt.Errorf("failed to save skill scores: %w", err)
	}

	domainChanges, subjectChanges, overallChange := s.hierarchy.RollupChanges(before, after, skillChanges)

	newStreak, longest, practiceDate, err := s.advanceStreak(session.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.ApplyCompletionStats(tx, session.UserID, total, correct, newStreak, longest, practiceDate); err != nil {
		return nil, fmt.Errorf("failed to update user stats: %w", err)
	}

	log.Printf("[SessionService] Completed session #%d for user #%d: %d/%d correct, %d skills touched",
		session.ID, session.UserID, correct, total, len(skillChanges))

	return &CompletionResult{
		Session:        session,
		SkillChanges:   skillChanges,
		DomainChanges:  domainChanges,
		SubjectChanges: subjectChanges,
		OverallChange:  &overallChange,
		CurrentStreak:  newStreak,
	}, nil
}

// advanceStreak computes the user's streak values for today from the last
// recorded practice date: same day keeps the streak, the following day
// extends it, a gap resets it to 1.
func (s *SessionService) advanceStreak(userID uint) (current, longest int, practiceDate string, err error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return 0, 0, "", fmt.Errorf("failed to load user for streak update: %w", err)
	}

	today := time.Now().Truncate(24 * time.Hour)
	current = 1
	if user.LastPracticeDate != nil {
		last := user.LastPracticeDate.Truncate(24 * time.Hour)
		switch int(today.Sub(last).Hours() / 24) {
		case 0:
			current = user.CurrentStreak
			if current == 0 {
				current = 1
			}
		case 1:
			current = user.CurrentStreak + 1
		}
	}

	longest = user.LongestStreak
	if current > longest {
		longest = current
	}
	return current, longest, today.Format("2006-01-02"), nil
}

// currentStreak reads the user's streak for duplicate-completion responses.
func (s *SessionService) currentStreak(userID uint) int {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return 0
	}
	return user.CurrentStreak
}
