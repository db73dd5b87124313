package gin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uniedit/genbridge/internal/domain/draft"
)

type modelEntry struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	OwnedBy string `json:"owned_by"`
}

type modelListResponse struct {
	Object string       `json:"object"`
	Data   []modelEntry `json:"data"`
}

// ListModels handles GET /v1/models, advertising the image and video model
// catalogs the Draft Builder can map.
func (h *Handler) ListModels(c *gin.Context) {
	names := append(draft.ListImageModels(), draft.ListVideoModels()...)

	data := make([]modelEntry, 0, len(names))
	for _, name := range names {
		data = append(data, modelEntry{ID: name, Object: "model", OwnedBy: "genbridge"})
	}

	c.JSON(http.StatusOK, modelListResponse{Object: "list", Data: data})
}
