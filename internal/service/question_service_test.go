package service

import (
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

func createTestQuestionService(
	questionRepo *MockQuestionRepo,
	cacheRepo *MockCacheRepo,
	hierarchy *proficiency.Hierarchy,
) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		cacheRepo:    cacheRepo,
		hierarchy:    hierarchy,
	}
}

func bankQuestion() *entity.Question {
	return &entity.Question{
		ExternalID: "cb-2024-0001",
		Subject:    "math",
		Domain:     "algebra",
		Skill:      "linear-equations-one-var",
		Text:       "Solve for x: 3x - 6 = 9",
		Options: entity.AnswerOptions{
			{ID: "a", Content: "3"},
			{ID: "b", Content: "5"},
			{ID: "c", Content: "15"},
		},
		CorrectAnswerID: "b",
		DifficultyBand:  bandPtr(3),
	}
}

func TestQuestionService_Create_PersistsValidQuestion(t *testing.T) {
	questionRepo := new(MockQuestionRepo)
	svc := createTestQuestionService(questionRepo, new(MockCacheRepo), testServiceHierarchy(t))

	questionRepo.On("Create", mock.AnythingOfType("*entity.Question")).Return(nil)

	err := svc.Create(bankQuestion())

	require.NoError(t, err)
	questionRepo.AssertExpectations(t)
}

func TestQuestionService_Create_RejectsCorrectAnswerOutsideOptions(t *testing.T) {
	svc := createTestQuestionService(new(MockQuestionRepo), new(MockCacheRepo), testServiceHierarchy(t))

	q := bankQuestion()
	q.CorrectAnswerID = "z"

	err := svc.Create(q)

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestQuestionService_Create_RejectsOutOfRangeBand(t *testing.T) {
	svc := createTestQuestionService(new(MockQuestionRepo), new(MockCacheRepo), testServiceHierarchy(t))

	q := bankQuestion()
	q.DifficultyBand = bandPtr(8)

	err := svc.Create(q)

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestQuestionService_Create_RejectsMisplacedSkill(t *testing.T) {
	// A question can only enter the bank under the hierarchy node its skill
	// actually belongs to; otherwise scope filters and roll-ups disagree.
	svc := createTestQuestionService(new(MockQuestionRepo), new(MockCacheRepo), testServiceHierarchy(t))

	q := bankQuestion()
	q.Domain = "geometry"

	err := svc.Create(q)

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestQuestionService_Create_DuplicateExternalID(t *testing.T) {
	questionRepo := new(MockQuestionRepo)
	svc := createTestQuestionService(questionRepo, new(MockCacheRepo), testServiceHierarchy(t))

	questionRepo.On("Create", mock.AnythingOfType("*entity.Question")).
		Return(&pq.Error{Code: "23505"})

	err := svc.Create(bankQuestion())

	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestQuestionService_CreateBatch_AcquiresAndReleasesLock(t *testing.T) {
	questionRepo := new(MockQuestionRepo)
	cacheRepo := new(MockCacheRepo)
	svc := createTestQuestionService(questionRepo, cacheRepo, testServiceHierarchy(t))

	cacheRepo.On("SetNX", bulkLockKey, 1, bulkLockTTL).Return(true, nil)
	questionRepo.On("CreateBatch", mock.AnythingOfType("[]entity.Question")).Return(nil)
	cacheRepo.On("Delete", bulkLockKey).Return(nil)

	err := svc.CreateBatch([]entity.Question{*bankQuestion()})

	require.NoError(t, err)
	cacheRepo.AssertExpectations(t)
	questionRepo.AssertExpectations(t)
}

func TestQuestionService_CreateBatch_RefusesConcurrentLoad(t *testing.T) {
	questionRepo := new(MockQuestionRepo)
	cacheRepo := new(MockCacheRepo)
	svc := createTestQuestionService(questionRepo, cacheRepo, testServiceHierarchy(t))

	cacheRepo.On("SetNX", bulkLockKey, 1, bulkLockTTL).Return(false, nil)

	err := svc.CreateBatch([]entity.Question{*bankQuestion()})

	assert.ErrorIs(t, err, ErrBulkLoadInProgress)
	questionRepo.AssertNotCalled(t, "CreateBatch", mock.Anything)
}

func TestQuestionService_CreateBatch_ValidatesBeforeLocking(t *testing.T) {
	questionRepo := new(MockQuestionRepo)
	cacheRepo := new(MockCacheRepo)
	svc := createTestQuestionService(questionRepo, cacheRepo, testServiceHierarchy(t))

	bad := *bankQuestion()
	bad.Options = nil

	err := svc.CreateBatch([]entity.Question{*bankQuestion(), bad})

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	cacheRepo.AssertNotCalled(t, "SetNX", mock.Anything, mock.Anything, mock.Anything)
	questionRepo.AssertNotCalled(t, "CreateBatch", mock.Anything)
}

func TestQuestionService_Count_RejectsUnknownScope(t *testing.T) {
	svc := createTestQuestionService(new(MockQuestionRepo), new(MockCacheRepo), testServiceHierarchy(t))

	_, err := svc.Count(repository.QuestionScope{Skill: "underwater-basket-weaving"})

	assert.ErrorIs(t, err, ErrInvalidScope)
}

func TestQuestionService_Count_ByDomain(t *testing.T) {
	questionRepo := new(MockQuestionRepo)
	svc := createTestQuestionService(questionRepo, new(MockCacheRepo), testServiceHierarchy(t))

	questionRepo.On("CountByScope", repository.QuestionScope{Domain: "algebra"}).Return(int64(120), nil)

	count, err := svc.Count(repository.QuestionScope{Domain: "algebra"})

	require.NoError(t, err)
	assert.Equal(t, int64(120), count)
}

func TestQuestionService_Delete_UnknownQuestion(t *testing.T) {
	questionRepo := new(MockQuestionRepo)
	svc := createTestQuestionService(questionRepo, new(MockCacheRepo), testServiceHierarchy(t))

	questionRepo.On("GetByID", uint(404)).Return(nil, apperrors.ErrNotFound)

	err := svc.Delete(404)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	questionRepo.AssertNotCalled(t, "Delete", mock.Anything)
}
