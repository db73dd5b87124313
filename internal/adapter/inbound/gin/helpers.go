package gin

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// sessionTokenFrom prefers a body-supplied token, falling back to the
// Authorization header's bearer credential, matching §6's "both
// directions" Authorization convention.
func sessionTokenFrom(c *gin.Context, bodyToken string) string {
	if bodyToken != "" {
		return bodyToken
	}
	auth := c.GetHeader("Authorization")
	return strings.TrimPrefix(auth, "Bearer ")
}

// validationError writes the OpenAI-shaped error envelope for a client
// input mistake.
func validationError(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, errorBody{Error: errorDetail{Message: message, Type: "validation", Code: "validation"}})
}

// isMultipart reports whether the request body is multipart/form-data
// rather than JSON.
func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// formFilePaths reads a repeated file_paths (or camelCase filePaths) form
// field, the shape both the image composition and video multipart bodies
// accept for referencing images by path/URL.
func formFilePaths(c *gin.Context) []string {
	if v := c.PostFormArray("file_paths"); len(v) > 0 {
		return v
	}
	return c.PostFormArray("filePaths")
}
