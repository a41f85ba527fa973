package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"imageserver/internal/service"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	svc *service.CatalogService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(svc *service.CatalogService) *HealthHandler {
	return &HealthHandler{svc: svc}
}

// Health reports ready only once the catalog has been built non-empty and
// the cache backend can serve.
func (h *HealthHandler) Health(c *gin.Context) {
	if !h.svc.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"catalog_size": h.svc.Size(),
	})
}
