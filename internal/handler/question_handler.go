package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/satprep-api/internal/domain/entity"
	"github.com/yourusername/satprep-api/internal/domain/repository"
	apperrors "github.com/yourusername/satprep-api/internal/pkg/errors"
	"github.com/yourusername/satprep-api/internal/service"
)

// QuestionHandler handles the admin question bank routes.
type QuestionHandler struct {
	questionService *service.QuestionService
}

// NewQuestionHandler creates a new question handler.
func NewQuestionHandler(questionService *service.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// QuestionRequest is the payload for creating or updating a question.
type QuestionRequest struct {
	ExternalID      string               `json:"external_id" binding:"required,max=100"`
	Subject         string               `json:"subject" binding:"required,max=50"`
	Domain          string               `json:"domain" binding:"required,max=80"`
	Skill           string               `json:"skill" binding:"required,max=80"`
	Text            string               `json:"text" binding:"required"`
	Stimulus        string               `json:"stimulus"`
	Explanation     string               `json:"explanation"`
	Options         entity.AnswerOptions `json:"options" binding:"required"`
	CorrectAnswerID string               `json:"correct_answer_id" binding:"required,max=50"`
	DifficultyBand  *int                 `json:"difficulty_band"`
}

func (r *QuestionRequest) toEntity() *entity.Question {
	return &entity.Question{
		ExternalID:      r.ExternalID,
		Subject:         r.Subject,
		Domain:          r.Domain,
		Skill:           r.Skill,
		Text:            r.Text,
		Stimulus:        r.Stimulus,
		Explanation:     r.Explanation,
		Options:         r.Options,
		CorrectAnswerID: r.CorrectAnswerID,
		DifficultyBand:  r.DifficultyBand,
	}
}

// CreateQuestion handles POST /api/admin/questions.
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input data", "details": err.Error()})
		return
	}

	question := req.toEntity()
	if err := h.questionService.Create(question); err != nil {
		h.handleQuestionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, question)
}

// CreateQuestionBatch handles POST /api/admin/questions/batch.
func (h *QuestionHandler) CreateQuestionBatch(c *gin.Context) {
	var req struct {
		Questions []QuestionRequest `json:"questions" binding:"required,min=1,max=500,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input data", "details": err.Error()})
		return
	}

	questions := make([]entity.Question, 0, len(req.Questions))
	for _, q := range req.Questions {
		questions = append(questions, *q.toEntity())
	}
	if err := h.questionService.CreateBatch(questions); err != nil {
		h.handleQuestionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"created": len(questions)})
}

// UpdateQuestion handles PUT /api/admin/questions/:id.
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)

	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input data", "details": err.Error()})
		return
	}

	question := req.toEntity()
	if err := h.questionService.Update(questionID, question); err != nil {
		h.handleQuestionError(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

// DeleteQuestion handles DELETE /api/admin/questions/:id.
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)

	if err := h.questionService.Delete(questionID); err != nil {
		h.handleQuestionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Question deleted"})
}

// CountQuestions handles GET /api/admin/questions/count with optional
// subject/domain/skill query filters.
func (h *QuestionHandler) CountQuestions(c *gin.Context) {
	scope := repository.QuestionScope{
		Subject: c.Query("subject"),
		Domain:  c.Query("domain"),
		Skill:   c.Query("skill"),
	}

	count, err := h.questionService.Count(scope)
	if err != nil {
		h.handleQuestionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *QuestionHandler) handleQuestionError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Question not found"})
	} else if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, service.ErrBulkLoadInProgress) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) || errors.Is(err, service.ErrInvalidScope) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in QuestionHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
