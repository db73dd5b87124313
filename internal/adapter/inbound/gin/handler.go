// Package gin implements the OpenAI-shaped public HTTP surface
// (inbound.MediaHttpPort) on top of gin, translating request bodies into
// the Generation Orchestrator's calls and mapping its results/errors back
// to OpenAI-style response and error bodies.
package gin

import (
	"github.com/gin-gonic/gin"
	"github.com/uniedit/genbridge/internal/domain/generation"
	"github.com/uniedit/genbridge/internal/port/inbound"
)

// Handler implements inbound.MediaHttpPort.
type Handler struct {
	orchestrator *generation.Orchestrator
}

// NewHandler creates a new media handler bound to the given orchestrator.
func NewHandler(orchestrator *generation.Orchestrator) *Handler {
	return &Handler{orchestrator: orchestrator}
}

var _ inbound.MediaHttpPort = (*Handler)(nil)

// Ping answers the liveness probe.
func Ping(c *gin.Context) {
	c.String(200, "pong")
}
