package inbound

import "github.com/gin-gonic/gin"

// MediaHttpPort defines the OpenAI-shaped HTTP surface the gateway exposes.
type MediaHttpPort interface {
	// GenerateImages handles POST /v1/images/generations.
	GenerateImages(c *gin.Context)

	// GenerateImageComposition handles POST /v1/images/compositions.
	GenerateImageComposition(c *gin.Context)

	// GenerateVideo handles POST /v1/videos/generations.
	GenerateVideo(c *gin.Context)

	// ChatCompletions handles POST /v1/chat/completions, streaming or not.
	ChatCompletions(c *gin.Context)

	// GenerateSession handles POST /v1/session/generate.
	GenerateSession(c *gin.Context)

	// ListModels handles GET /v1/models.
	ListModels(c *gin.Context)
}
