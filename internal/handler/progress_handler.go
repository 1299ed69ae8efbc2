package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/satprep-api/internal/service"
)

// ProgressHandler serves the proficiency snapshot.
type ProgressHandler struct {
	progressService *service.ProgressService
}

// NewProgressHandler creates a new progress handler.
func NewProgressHandler(progressService *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// GetProgress handles GET /api/progress.
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	userID := c.MustGet("user_id").(uint)

	snapshot, err := h.progressService.GetProgress(userID)
	if err != nil {
		log.Printf("ERROR: Internal server error in ProgressHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}
