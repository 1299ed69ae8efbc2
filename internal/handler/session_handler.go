package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/satprep-api/internal/handler/dto"
	apperrors "github.com/yourusername/satprep-api/internal/pkg/errors"
	"github.com/yourusername/satprep-api/internal/service"
)

// SessionHandler handles the practice session routes: lifecycle, question
// fetches, answer submissions, heartbeats and completion.
type SessionHandler struct {
	sessionService  *service.SessionService
	practiceService *service.PracticeService
	progressService *service.ProgressService
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(
	sessionService *service.SessionService,
	practiceService *service.PracticeService,
	progressService *service.ProgressService,
) *SessionHandler {
	return &SessionHandler{
		sessionService:  sessionService,
		practiceService: practiceService,
		progressService: progressService,
	}
}

// StartSessionRequest is the payload for starting a session.
type StartSessionRequest struct {
	ScopeType string `json:"scope_type" binding:"required"`
	ScopeID   string `json:"scope_id" binding:"omitempty,max=80"`
}

// CompleteSessionRequest is the payload for completing a session. Totals are
// the client-side counters; Force marks a definite exit (navigation or an
// unload beacon) as opposed to a heuristic one (heartbeat timeout).
type CompleteSessionRequest struct {
	Totals service.SessionTotals `json:"totals"`
	Force  bool                  `json:"force"`
}

// StartSession handles POST /api/sessions.
func (h *SessionHandler) StartSession(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.sessionService.Start(c.Request.Context(), userID, req.ScopeType, req.ScopeID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// GetSession handles GET /api/sessions/:id.
func (h *SessionHandler) GetSession(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	sessionID := c.MustGet("sessionID").(uint)

	session, err := h.sessionService.Get(sessionID, userID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// GetHistory handles GET /api/sessions.
func (h *SessionHandler) GetHistory(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	sessions, total, err := h.sessionService.History(userID, page, pageSize)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PaginatedSessionResponse{
		Sessions: sessions,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// GetQuestions handles GET /api/sessions/:id/questions.
func (h *SessionHandler) GetQuestions(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	sessionID := c.MustGet("sessionID").(uint)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	questions, err := h.practiceService.FetchQuestions(c.Request.Context(), userID, sessionID, limit)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuestionSetResponse(sessionID, questions))
}

// SubmitAnswer handles POST /api/sessions/:id/answers.
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	sessionID := c.MustGet("sessionID").(uint)

	var req service.AnswerSubmission
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.QuestionID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question_id is required"})
		return
	}

	result, err := h.practiceService.SubmitAnswer(c.Request.Context(), userID, sessionID, req)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyAnswered) {
			c.JSON(http.StatusConflict, gin.H{"error": "Question already answered in this session"})
			return
		}
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAnswers handles GET /api/sessions/:id/answers.
func (h *SessionHandler) GetAnswers(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	sessionID := c.MustGet("sessionID").(uint)

	answers, err := h.practiceService.SessionAnswers(userID, sessionID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "answers": answers})
}

// UpdateProgress handles PUT /api/sessions/:id/progress. Heartbeats are
// telemetry: one against a completed session answers 200 with ignored=true
// so clients don't retry a signal that no longer matters.
func (h *SessionHandler) UpdateProgress(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	sessionID := c.MustGet("sessionID").(uint)

	var totals service.SessionTotals
	if err := c.ShouldBindJSON(&totals); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.sessionService.UpdateProgress(c.Request.Context(), userID, sessionID, totals)
	if errors.Is(err, service.ErrInvalidSessionState) {
		log.Printf("[SessionHandler] Dropped heartbeat for completed session #%d", sessionID)
		c.JSON(http.StatusOK, gin.H{"ignored": true})
		return
	}
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": true})
}

// CompleteSession handles POST /api/sessions/:id/complete. The route accepts
// navigator.sendBeacon deliveries, which always ship as text/plain: the body
// is read raw and parsed as JSON regardless of Content-Type. An empty body
// is a valid tentative signal with zero totals.
func (h *SessionHandler) CompleteSession(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)
	sessionID := c.MustGet("sessionID").(uint)

	var req CompleteSessionRequest
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid completion payload"})
			return
		}
	}

	result, err := h.sessionService.Complete(c.Request.Context(), userID, sessionID, req.Totals, req.Force)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	if !result.AlreadyCompleted && !result.Ignored {
		h.progressService.InvalidateProgress(userID)
	}
	c.JSON(http.StatusOK, result)
}

func (h *SessionHandler) handleSessionError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Session belongs to another user"})
	} else if errors.Is(err, service.ErrInvalidSessionState) {
		c.JSON(http.StatusConflict, gin.H{"error": "Session is already completed"})
	} else if errors.Is(err, service.ErrInvalidScope) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else if errors.Is(err, service.ErrAuthenticationRequired) || errors.Is(err, apperrors.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in SessionHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
