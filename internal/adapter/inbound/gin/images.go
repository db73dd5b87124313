package gin

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/uniedit/genbridge/internal/domain/message"
	"github.com/uniedit/genbridge/internal/domain/upload"
	"github.com/uniedit/genbridge/internal/model"
)

var errUnclassifiableImage = errors.New("image value is empty or unrecognized")

// forbiddenImageFields are the OpenAI image-size knobs this gateway does
// not support; §4.7/§6 require requests carrying them to be rejected
// rather than silently ignored.
var forbiddenImageFields = []string{"size", "width", "height"}

const maxCompositionImages = 10

// imageGenerationRequest is POST /v1/images/generations' body.
type imageGenerationRequest struct {
	Model          string  `json:"model"`
	Prompt         string  `json:"prompt" binding:"required"`
	NegativePrompt string  `json:"negative_prompt"`
	SampleStrength float64 `json:"sample_strength"`
	N              int     `json:"n"`
	Resolution     string  `json:"resolution"`
	Ratio          string  `json:"ratio"`
	ResponseFormat string  `json:"response_format"`
	SessionToken   string  `json:"session_token"`
}

// imageCompositionRequest is POST /v1/images/compositions' body.
type imageCompositionRequest struct {
	Model          string   `json:"model"`
	Prompt         string   `json:"prompt"`
	NegativePrompt string   `json:"negative_prompt"`
	SampleStrength float64  `json:"sample_strength"`
	Resolution     string   `json:"resolution"`
	Ratio          string   `json:"ratio"`
	Images         []string `json:"images" binding:"required"`
	ResponseFormat string   `json:"response_format"`
	SessionToken   string   `json:"session_token"`
}

// imageResponse is the OpenAI images-API-shaped response body.
type imageResponse struct {
	Created int64       `json:"created"`
	Data    []imageItem `json:"data"`
}

type imageItem struct {
	URL     string `json:"url,omitempty"`
	B64JSON string `json:"b64_json,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
}

// GenerateImages handles POST /v1/images/generations.
func (h *Handler) GenerateImages(c *gin.Context) {
	if rejectSizeFields(c) {
		return
	}

	var req imageGenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err.Error())
		return
	}

	result, err := h.orchestrator.GenerateImages(c.Request.Context(), model.ImageGenerationRequest{
		SessionToken:   sessionTokenFrom(c, req.SessionToken),
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		SampleStrength: req.SampleStrength,
		Model:          req.Model,
		Resolution:     model.Resolution(req.Resolution),
		Ratio:          model.Ratio(req.Ratio),
		N:              req.N,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	resp, err := toImageResponse(c.Request.Context(), result, req.ResponseFormat)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GenerateImageComposition handles POST /v1/images/compositions. The body
// is either JSON (an "images" array of URL/data-URI/base64 strings) or
// multipart/form-data (a "file_paths"/"filePaths" array and/or uploaded
// "images" files), capped at 10 input images either way.
func (h *Handler) GenerateImageComposition(c *gin.Context) {
	if isMultipart(c) {
		h.generateImageCompositionMultipart(c)
		return
	}

	if rejectSizeFields(c) {
		return
	}

	var req imageCompositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, err.Error())
		return
	}
	if len(req.Images) > maxCompositionImages {
		validationError(c, "at most 10 input images are supported")
		return
	}

	images, err := classifyImages(req.Images)
	if err != nil {
		validationError(c, err.Error())
		return
	}

	result, err := h.orchestrator.GenerateImageComposition(c.Request.Context(), model.ImageCompositionRequest{
		SessionToken:   sessionTokenFrom(c, req.SessionToken),
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		SampleStrength: req.SampleStrength,
		Model:          req.Model,
		Resolution:     model.Resolution(req.Resolution),
		Ratio:          model.Ratio(req.Ratio),
		Images:         images,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	resp, err := toImageResponse(c.Request.Context(), result, req.ResponseFormat)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) generateImageCompositionMultipart(c *gin.Context) {
	paths := formFilePaths(c)
	if len(paths) > maxCompositionImages {
		validationError(c, "at most 10 input images are supported")
		return
	}

	images, err := classifyImages(paths)
	if err != nil {
		validationError(c, err.Error())
		return
	}

	if form, err := c.MultipartForm(); err == nil {
		for _, fh := range form.File["images"] {
			if len(images) >= maxCompositionImages {
				validationError(c, "at most 10 input images are supported")
				return
			}
			data, err := readMultipartFile(fh)
			if err != nil {
				validationError(c, err.Error())
				return
			}
			images = append(images, model.ImageBytes{Bytes: data})
		}
	}
	if len(images) == 0 {
		validationError(c, "at least one input image is required")
		return
	}

	sampleStrength, _ := strconv.ParseFloat(c.PostForm("sample_strength"), 64)

	req := model.ImageCompositionRequest{
		SessionToken:   sessionTokenFrom(c, c.PostForm("session_token")),
		Prompt:         c.PostForm("prompt"),
		NegativePrompt: c.PostForm("negative_prompt"),
		SampleStrength: sampleStrength,
		Model:          c.PostForm("model"),
		Resolution:     model.Resolution(c.PostForm("resolution")),
		Ratio:          model.Ratio(c.PostForm("ratio")),
		Images:         images,
	}

	result, err := h.orchestrator.GenerateImageComposition(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}

	resp, err := toImageResponse(c.Request.Context(), result, c.PostForm("response_format"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// classifyImages converts raw client-supplied image strings (URL,
// data-URI, bare base64, or filesystem path) into the polymorphic Image
// the uploader consumes.
func classifyImages(raw []string) ([]model.Image, error) {
	images := make([]model.Image, 0, len(raw))
	for _, s := range raw {
		img, ok := message.ClassifyImage(s)
		if !ok {
			return nil, errUnclassifiableImage
		}
		images = append(images, img)
	}
	return images, nil
}

// rejectSizeFields rejects a JSON body carrying any of size/width/height,
// the OpenAI image-dimension knobs this gateway doesn't support.
// ShouldBindJSON otherwise ignores unknown fields silently, so this check
// must run before binding and restore the body for it afterward.
func rejectSizeFields(c *gin.Context) bool {
	body, err := c.GetRawData()
	if err != nil {
		return false
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return false
	}
	for _, field := range forbiddenImageFields {
		if _, present := raw[field]; present {
			validationError(c, "unsupported field \""+field+"\": size is derived from model/resolution/ratio")
			return true
		}
	}
	return false
}

func toImageResponse(ctx context.Context, result *model.GenerationResult, responseFormat string) (imageResponse, error) {
	data := make([]imageItem, 0, len(result.Items))
	for _, item := range result.Items {
		if responseFormat == "b64_json" {
			raw, err := upload.FetchURL(ctx, item.URL)
			if err != nil {
				return imageResponse{}, err
			}
			data = append(data, imageItem{B64JSON: base64.StdEncoding.EncodeToString(raw), Width: item.Width, Height: item.Height})
			continue
		}
		data = append(data, imageItem{URL: item.URL, Width: item.Width, Height: item.Height})
	}
	return imageResponse{Created: time.Now().Unix(), Data: data}, nil
}

// readMultipartFile reads an uploaded multipart file's full contents.
func readMultipartFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
