package gin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uniedit/genbridge/internal/model"
)

// sessionGenerationRequest is POST /v1/session/generate's body.
type sessionGenerationRequest struct {
	CallerToken string `json:"caller_token"`
}

type sessionGenerationResponse struct {
	SessionToken string `json:"session_token"`
}

// GenerateSession handles POST /v1/session/generate.
func (h *Handler) GenerateSession(c *gin.Context) {
	var req sessionGenerationRequest
	_ = c.ShouldBindJSON(&req)

	token, err := h.orchestrator.GenerateSession(c.Request.Context(), model.SessionGenerationRequest{
		CallerToken: sessionTokenFrom(c, req.CallerToken),
	})
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionGenerationResponse{SessionToken: token})
}
