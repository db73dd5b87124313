package gin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/uniedit/genbridge/internal/domain/message"
	"github.com/uniedit/genbridge/internal/model"
)

const maxVideoFrameImages = 2

// videoGenerationRequest is POST /v1/videos/generations' JSON body.
type videoGenerationRequest struct {
	Model        string `json:"model"`
	Prompt       string `json:"prompt"`
	Duration     int    `json:"duration" binding:"required"`
	FirstFrame   string `json:"first_frame"`
	LastFrame    string `json:"last_frame"`
	SessionToken string `json:"session_token"`
}

// GenerateVideo handles POST /v1/videos/generations. The body is either
// JSON (first_frame/last_frame as single image strings, duration as a
// number) or multipart/form-data (duration arrives as a string; up to two
// reference images via a file_paths/filePaths array, first entry mapped to
// the first frame and the second to the last frame).
func (h *Handler) GenerateVideo(c *gin.Context) {
	if isMultipart(c) {
		h.generateVideoMultipart(c)
		return
	}

	var req videoGenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err.Error())
		return
	}

	firstFrame, ok := classifyOptionalImage(c, req.FirstFrame)
	if !ok {
		return
	}
	lastFrame, ok := classifyOptionalImage(c, req.LastFrame)
	if !ok {
		return
	}

	h.runVideoGeneration(c, model.VideoGenerationRequest{
		SessionToken: sessionTokenFrom(c, req.SessionToken),
		Prompt:       req.Prompt,
		Model:        req.Model,
		Duration:     req.Duration,
		FirstFrame:   firstFrame,
		LastFrame:    lastFrame,
	})
}

func (h *Handler) generateVideoMultipart(c *gin.Context) {
	durationStr := c.PostForm("duration")
	duration, err := strconv.Atoi(durationStr)
	if err != nil {
		validationError(c, "duration must be an integer number of seconds")
		return
	}

	paths := formFilePaths(c)
	if len(paths) > maxVideoFrameImages {
		validationError(c, "at most 2 reference images (first/last frame) are supported")
		return
	}

	images, err := classifyImages(paths)
	if err != nil {
		validationError(c, err.Error())
		return
	}

	var firstFrame, lastFrame model.Image
	if len(images) > 0 {
		firstFrame = images[0]
	}
	if len(images) > 1 {
		lastFrame = images[1]
	}

	h.runVideoGeneration(c, model.VideoGenerationRequest{
		SessionToken: sessionTokenFrom(c, c.PostForm("session_token")),
		Prompt:       c.PostForm("prompt"),
		Model:        c.PostForm("model"),
		Duration:     duration,
		FirstFrame:   firstFrame,
		LastFrame:    lastFrame,
	})
}

func (h *Handler) runVideoGeneration(c *gin.Context, req model.VideoGenerationRequest) {
	result, err := h.orchestrator.GenerateVideo(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}

	resp, err := toImageResponse(c.Request.Context(), result, "")
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// classifyOptionalImage classifies a possibly-empty image field, writing
// a validation error and returning ok=false if the value is non-empty but
// unrecognized.
func classifyOptionalImage(c *gin.Context, value string) (model.Image, bool) {
	if value == "" {
		return nil, true
	}
	img, ok := message.ClassifyImage(value)
	if !ok {
		validationError(c, errUnclassifiableImage.Error())
		return nil, false
	}
	return img, true
}
