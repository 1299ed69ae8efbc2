package dto

import (
	"github.com/yourusername/satprep-api/internal/domain/entity"
)

// PaginatedSessionResponse is a page of the user's session history.
type PaginatedSessionResponse struct {
	Sessions []entity.PracticeSession `json:"sessions"`
	Total    int64                    `json:"total"`
	Page     int                      `json:"page"`
	PageSize int                      `json:"page_size"`
}

// QuestionSetResponse is the batch of questions served for one fetch.
type QuestionSetResponse struct {
	SessionID uint              `json:"session_id"`
	Questions []entity.Question `json:"questions"`
	Count     int               `json:"count"`
}

// NewQuestionSetResponse builds the fetch response.
func NewQuestionSetResponse(sessionID uint, questions []entity.Question) *QuestionSetResponse {
	return &QuestionSetResponse{
		SessionID: sessionID,
		Questions: questions,
		Count:     len(questions),
	}
}
