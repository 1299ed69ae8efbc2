package service

import (
	"context"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/satprep-api/internal/domain/entity"
	"github.com/yourusername/satprep-api/internal/domain/repository"
	apperrors "github.com/yourusername/satprep-api/internal/pkg/errors"
	"github.com/yourusername/satprep-api/internal/service/proficiency"
)

// ============================================================================
// Mocks for PracticeService
// ============================================================================

// MockQuestionRepo implements repository.QuestionRepository.
type MockQuestionRepo struct {
	mock.Mock
}

func (m *MockQuestionRepo) Create(question *entity.Question) error {
	args := m.Called(question)
	return args.Error(0)
}

func (m *MockQuestionRepo) CreateBatch(questions []entity.Question) error {
	args := m.Called(questions)
	return args.Error(0)
}

func (m *MockQuestionRepo) GetByID(id uint) (*entity.Question, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionRepo) Update(question *entity.Question) error {
	args := m.Called(question)
	return args.Error(0)
}

func (m *MockQuestionRepo) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockQuestionRepo) GetUnseen(scope repository.QuestionScope, excludeIDs []uint, limit int) ([]entity.Question, error) {
	args := m.Called(scope, excludeIDs, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockQuestionRepo) CountByScope(scope repository.QuestionScope) (int64, error) {
	args := m.Called(scope)
	return args.Get(0).(int64), args.Error(1)
}

// ============================================================================
// Helpers
// ============================================================================

func createTestPracticeService(
	questionRepo *MockQuestionRepo,
	sessionRepo *MockSessionRepo,
	cacheRepo *MockCacheRepo,
	hierarchy *proficiency.Hierarchy,
) *PracticeService {
	sessionSvc := createTestSessionService(sessionRepo, new(MockUserRepo), cacheRepo, hierarchy)
	return &PracticeService{
		questionRepo: questionRepo,
		sessionRepo:  sessionRepo,
		sessionSvc:   sessionSvc,
		cacheRepo:    cacheRepo,
		hierarchy:    hierarchy,
	}
}

func bandPtr(b int) *int { return &b }

func algebraQuestion() *entity.Question {
	return &entity.Question{
		ID:      11,
		Subject: "math",
		Domain:  "algebra",
		Skill:   "linear-equations-one-var",
		Text:    "Solve for x: 2x + 3 = 11",
		Options: entity.AnswerOptions{
			{ID: "a", Content: "2"},
			{ID: "b", Content: "4"},
			{ID: "c", Content: "8"},
		},
		CorrectAnswerID: "b",
		DifficultyBand:  bandPtr(5),
	}
}

// ============================================================================
// SubmitAnswer
// ============================================================================

func TestPracticeService_SubmitAnswer_CorrectAnswer(t *testing.T) {
	questionRepo := new(MockQuestionRepo)
	sessionRepo := new(MockSessionRepo)
	cacheRepo := new(MockCacheRepo)
	svc := createTestPracticeService(questionRepo, sessionRepo, cacheRepo, testServiceHierarchy(t))

	sessionRepo.On("GetByID", uint(5)).Return(&entity.PracticeSession{ID: 5, UserID: 42}, nil)
	questionRepo.On("GetByID", uint(11)).Return(algebraQuestion(), nil)
	sessionRepo.On("SaveAnsweredQuestion", mock.AnythingOfType("*entity.AnsweredQuestion")).Return(nil)
	sessionRepo.On("IncrementCounters", uint(5), true).Return(nil)
	cacheRepo.On("SAdd", "user:42:seen::", "11").Return(nil)

	result, err := svc.SubmitAnswer(context.Background(), 42, 5, AnswerSubmission{
		QuestionID:       11,
		SelectedAnswerID: "b",
	})

	require.NoError(t, err)
	assert.True(t, result.IsCorrect)
	assert.Equal(t, "b", result.CorrectAnswerID)
	assert.Equal(t, 5, result.PointDelta, "band 5 correct earns +5")
	assert.Equal(t, "linear-equations-one-var", result.Skill)
	sessionRepo.AssertExpectations(t)
}

func TestPracticeService_SubmitAnswer_IncorrectAnswer(t *testing.T) {
	questionRepo := new(MockQuestionRepo)
	sessionRepo := new(MockSessionRepo)
	cacheRepo := new(MockCacheRepo)
	svc := createTestPracticeService(questionRepo, sessionRepo, cacheRepo, testServiceHierarchy(t))

	sessionRepo.On("GetByID", uint(5)).Return(&entity.PracticeSession{ID: 5, UserID: 42}, nil)
	questionRepo.On("GetByID", uint(11)).Return(algebraQuestion(), nil)
	sessionRepo.On("SaveAnsweredQuestion", mock.AnythingOfType("*entity.AnsweredQuestion")).Return(nil)
	sessionRepo.On("IncrementCounters", uint(5), false).Return(nil)
	cacheRepo.On("SAdd", "user:42:seen::", "11").Return(nil)

	result, err := svc.SubmitAnswer(context.Background(), 42, 5, AnswerSubmission{
		QuestionID:       11,
		SelectedAnswerID: "a",
	})

	require.NoError(t, err)
	assert.False(t, result.IsCorrect)
	assert.Equal(t, -3, result.PointDelta, "band 5 incorrect costs -(8-5)")
}

func TestPracticeService_SubmitAnswer_RecordCarriesRawDelta(t *testing.T) {
	questionRepo := new(MockQuestionRepo)
	sessionRepo := new(MockSessionRepo)
	cacheRepo := new(MockCacheRepo)
	svc := createTestPracticeService(questionRepo, sessionRepo, cacheRepo, testServiceHierarchy(t))

	var saved *entity.AnsweredQuestion
	sessionRepo.On("GetByID", uint(5)).Return(&entity.PracticeSession{ID: 5, UserID: 42}, nil)
	questionRepo.On("GetByID", uint(11)).Return(algebraQuestion(), nil)
	sessionRepo.On("SaveAnsweredQuestion", mock.AnythingOfType("*entity.AnsweredQuestion")).Run(func(args mock.Arguments) {
		saved = args.Get(0).(*entity.AnsweredQuestion)
	}).Return(nil)
	sessionRepo.On("IncrementCounters", uint(5), true).Return(nil)
	cacheRepo.On("SAdd", "user:42:seen::", "11").Return(nil)

	_, err := svc.SubmitAnswer(context.Background(), 42, 5, AnswerSubmission{
		QuestionID:       11,
		SelectedAnswerID: "b",
		AttemptID:        "client-key-1",
	})

	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, 5, saved.PointDelta)
	assert.Equal(t, "client-key-1", saved.AttemptID, "client idempotency key is kept verbatim")
	assert.Equal(t, uint(5), saved.SessionID)
}

func TestPracticeService_SubmitAnswer_DuplicateHitsUniqueIndex(t *testing.T) {
	questionRepo := new(MockQuestionRepo)
	sessionRepo := new(MockSessionRepo)
	svc := createTestPracticeService(questionRepo, sessionRepo, new(MockCacheRepo), testServiceHierarchy(t))

	sessionRepo.On("GetByID", uint(5)).Return(&entity.PracticeSession{ID: 5, UserID: 42}, nil)
	questionRepo.On("GetByID", uint(11)).Return(algebraQuestion(), nil)
	sessionRepo.On("SaveAnsweredQuestion", mock.Anything).Return(&pq.Error{Code: "23505"})

	_, err := svc.SubmitAnswer(context.Background(), 42, 5, AnswerSubmission{
		QuestionID:       11,
		SelectedAnswerID: "b",
	})

	assert.ErrorIs(t, err, ErrAlreadyAnswered)
	// A duplicate must not bump counters a second time.
	sessionRepo.AssertNotCalled(t, "IncrementCounters", mock.Anything, mock.Anything)
}

func TestPracticeService_SubmitAnswer_DefersSkillScoringToCompletion(t *testing.T) {
	// Submitting an answer records the raw point delta and reports it to the
	// client, but skill scores are only read and written once, over the whole
	// session batch, when the session completes.
	questionRepo := new(MockQuestionRepo)
	sessionRepo := new(MockSessionRepo)
	cacheRepo := new(MockCacheRepo)
	proficiencyRepo := new(MockProficiencyRepo)
	hierarchy := testServiceHierarchy(t)
	sessionSvc := createCompletionTestService(sessionRepo, new(MockUserRepo), proficiencyRepo, hierarchy)
	svc := &PracticeService{
		questionRepo: questionRepo,
		sessionRepo:  sessionRepo,
		sessionSvc:   sessionSvc,
		cacheRepo:    cacheRepo,
		hierarchy:    hierarchy,
	}

	sessionRepo.On("GetByID", uint(5)).Return(&entity.PracticeSession{ID: 5, UserID: 42}, nil)
	questionRepo.On("GetByID", uint(11)).Return(algebraQuestion(), nil)
	sessionRepo.On("SaveAnsweredQuestion", mock.AnythingOfType("*entity.AnsweredQuestion")).Return(nil)
	sessionRepo.On("IncrementCounters", uint(5), true).Return(nil)
	cacheRepo.On("SAdd", "user:42:seen::", "11").Return(nil)

	result, err := svc.SubmitAnswer(context.Background(), 42, 5, AnswerSubmission{
		QuestionID:       11,
		SelectedAnswerID: "b",
	})

	require.NoError(t, err)
	assert.Equal(t, 5, result.PointDelta)
	proficiencyRepo.AssertNotCalled(t, "GetSkillScores", mock.Anything)
	proficiencyRepo.AssertNotCalled(t, "SaveSkillScores", mock.Anything, mock.Anything, mock.Anything)
}

func TestPracticeService_SubmitAnswer_CompletedSession(t *testing.T) {
	sessionRepo := new(MockSessionRepo)
	svc := createTestPracticeService(new(MockQuestionRepo), sessionRepo, new(MockCacheRepo), testServiceHierarchy(t))

	sessionRepo.On("GetByID", uint(5)).Return(&entity.PracticeSession{ID: 5, UserID: 42, IsCompleted: true}, nil)

	_, err := svc.SubmitAnswer(context.Background(), 42, 5, AnswerSubmission{QuestionID: 11, SelectedAnswerID: "b"})

	assert.ErrorIs(t, err, ErrInvalidSessionState)
}

func TestPracticeService_SubmitAnswer_UnknownOption(t *testing.T) {
	questionRepo := new(MockQuestionRepo)
	sessionRepo := new(MockSessionRepo)
	svc := createTestPracticeService(questionRepo, sessionRepo, new(MockCacheRepo), testServiceHierarchy(t))

	sessionRepo.On("GetByID", uint(5)).Return(&entity.PracticeSession{ID: 5, UserID: 42}, nil)
	questionRepo.On("GetByID", uint(11)).Return(algebraQuestion(), nil)

	_, err := svc.SubmitAnswer(context.Background(), 42, 5, AnswerSubmission{QuestionID: 11, SelectedAnswerID: "z"})

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestPracticeService_SubmitAnswer_PostSaveFailuresAreBestEffort(t *testing.T) {
	// Once the attempt record is saved the answer counts; counter and cache
	// trouble afterwards must not surface to the student.
	questionRepo := new(MockQuestionRepo)
	sessionRepo := new(MockSessionRepo)
	cacheRepo := new(MockCacheRepo)
	svc := createTestPracticeService(questionRepo, sessionRepo, cacheRepo, testServiceHierarchy(t))

	sessionRepo.On("GetByID", uint(5)).Return(&entity.PracticeSession{ID: 5, UserID: 42}, nil)
	questionRepo.On("GetByID", uint(11)).Return(algebraQuestion(), nil)
	sessionRepo.On("SaveAnsweredQuestion", mock.Anything).Return(nil)
	sessionRepo.On("IncrementCounters", uint(5), true).Return(assert.AnError)
	cacheRepo.On("SAdd", "user:42:seen::", "11").Return(assert.AnError)

	result, err := svc.SubmitAnswer(context.Background(), 42, 5, AnswerSubmission{
		QuestionID:       11,
		SelectedAnswerID: "b",
	})

	require.NoError(t, err)
	assert.True(t, result.IsCorrect)
}

// ============================================================================
// FetchQuestions
// ============================================================================

func TestPracticeService_FetchQuestions_CompletedSession(t *testing.T) {
	sessionRepo := new(MockSessionRepo)
	svc := createTestPracticeService(new(MockQuestionRepo), sessionRepo, new(MockCacheRepo), testServiceHierarchy(t))

	sessionRepo.On("GetByID", uint(5)).Return(&entity.PracticeSession{ID: 5, UserID: 42, IsCompleted: true}, nil)

	_, err := svc.FetchQuestions(context.Background(), 42, 5, 10)

	assert.ErrorIs(t, err, ErrInvalidSessionState)
}

func TestPracticeService_FetchQuestions_ExcludesSeenFromCache(t *testing.T) {
	questionRepo := new(MockQuestionRepo)
	sessionRepo := new(MockSessionRepo)
	cacheRepo := new(MockCacheRepo)
	svc := createTestPracticeService(questionRepo, sessionRepo, cacheRepo, testServiceHierarchy(t))

	session := &entity.PracticeSession{ID: 5, UserID: 42, ScopeType: entity.ScopeDomain, ScopeID: "algebra"}
	sessionRepo.On("GetByID", uint(5)).Return(session, nil)
	cacheRepo.On("SMembers", "user:42:seen:domain:algebra").Return([]string{"3", "9"}, nil)
	questionRepo.On("GetUnseen",
		repository.QuestionScope{Domain: "algebra"},
		[]uint{3, 9},
		10,
	).Return([]entity.Question{{ID: 12}, {ID: 13}}, nil)

	questions, err := svc.FetchQuestions(context.Background(), 42, 5, 10)

	require.NoError(t, err)
	assert.Len(t, questions, 2)
	// Cache answered the exclusion list, no DB join needed.
	sessionRepo.AssertNotCalled(t, "GetAnsweredQuestionIDs", mock.Anything, mock.Anything)
}

func TestPracticeService_FetchQuestions_CacheMissRebuildsSeenSet(t *testing.T) {
	questionRepo := new(MockQuestionRepo)
	sessionRepo := new(MockSessionRepo)
	cacheRepo := new(MockCacheRepo)
	svc := createTestPracticeService(questionRepo, sessionRepo, cacheRepo, testServiceHierarchy(t))

	session := &entity.PracticeSession{ID: 5, UserID: 42, ScopeType: entity.ScopeSkill, ScopeID: "boundaries"}
	sessionRepo.On("GetByID", uint(5)).Return(session, nil)
	cacheRepo.On("SMembers", "user:42:seen:skill:boundaries").Return(nil, assert.AnError)
	sessionRepo.On("GetAnsweredQuestionIDs", uint(42), repository.QuestionScope{Skill: "boundaries"}).
		Return([]uint{7}, nil)
	cacheRepo.On("SAdd", "user:42:seen:skill:boundaries", "7").Return(nil)
	cacheRepo.On("ExpireAt", "user:42:seen:skill:boundaries", mock.AnythingOfType("time.Time")).Return(nil)
	questionRepo.On("GetUnseen", repository.QuestionScope{Skill: "boundaries"}, []uint{7}, 10).
		Return([]entity.Question{{ID: 20}}, nil)

	questions, err := svc.FetchQuestions(context.Background(), 42, 5, 0)

	require.NoError(t, err)
	assert.Len(t, questions, 1)
	cacheRepo.AssertExpectations(t)
}

func TestPracticeService_FetchQuestions_LimitClamped(t *testing.T) {
	questionRepo := new(MockQuestionRepo)
	sessionRepo := new(MockSessionRepo)
	cacheRepo := new(MockCacheRepo)
	svc := createTestPracticeService(questionRepo, sessionRepo, cacheRepo, testServiceHierarchy(t))

	session := &entity.PracticeSession{ID: 5, UserID: 42, ScopeType: entity.ScopeAll}
	sessionRepo.On("GetByID", uint(5)).Return(session, nil)
	cacheRepo.On("SMembers", "user:42:seen:all:").Return([]string{}, nil)
	sessionRepo.On("GetAnsweredQuestionIDs", uint(42), repository.QuestionScope{}).Return([]uint{}, nil)
	questionRepo.On("GetUnseen", repository.QuestionScope{}, []uint{}, MaxQuestionSetSize).
		Return([]entity.Question{}, nil)

	_, err := svc.FetchQuestions(context.Background(), 42, 5, 500)

	require.NoError(t, err)
	questionRepo.AssertExpectations(t)
}
