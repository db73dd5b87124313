package gin

import (
	"github.com/gin-gonic/gin"
	apperrors "github.com/uniedit/genbridge/internal/shared/errors"
)

// errorBody is the OpenAI-shaped error envelope every failing endpoint
// returns.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// handleError maps any error the orchestrator returns to an HTTP status
// and the OpenAI-style error body. Bare (non-AppError) errors fall back to
// the server kind.
func handleError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	status := (&apperrors.AppError{Kind: kind}).StatusCode()

	c.JSON(status, errorBody{Error: errorDetail{
		Message: err.Error(),
		Type:    string(kind),
		Code:    string(kind),
	}})
}
