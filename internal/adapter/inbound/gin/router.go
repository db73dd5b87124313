package gin

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uniedit/genbridge/internal/shared/logger"
	"github.com/uniedit/genbridge/internal/shared/metrics"
	"github.com/uniedit/genbridge/internal/shared/middleware"
)

// NewRouter builds the gateway's gin engine: ambient middleware plus the
// OpenAI-shaped surface backed by handler.
func NewRouter(handler *Handler, m *metrics.Metrics, log *logger.Logger) *gin.Engine {
	r := gin.New()

	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(log))
	r.Use(middleware.Metrics(m))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	r.GET("/ping", Ping)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		v1.GET("/models", handler.ListModels)
		v1.POST("/images/generations", handler.GenerateImages)
		v1.POST("/images/compositions", handler.GenerateImageComposition)
		v1.POST("/videos/generations", handler.GenerateVideo)
		v1.POST("/chat/completions", handler.ChatCompletions)
		v1.POST("/session/generate", handler.GenerateSession)
	}

	return r
}
