package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"imageserver/internal/cache"
	"imageserver/internal/fetch"
	"imageserver/internal/logger"
	"imageserver/internal/selector"
	"imageserver/internal/service"
)

// ImageHandler serves the image endpoints.
type ImageHandler struct {
	svc *service.CatalogService
}

// NewImageHandler creates a new image handler.
func NewImageHandler(svc *service.CatalogService) *ImageHandler {
	return &ImageHandler{svc: svc}
}

// Welcome handles GET /.
func (h *ImageHandler) Welcome(c *gin.Context) {
	c.String(http.StatusOK, "Welcome to the Random Image Server!")
}

// Random handles GET /random.
func (h *ImageHandler) Random(c *gin.Context) {
	h.serve(c, selector.ModeRandom)
}

// Sequential handles GET /sequential.
func (h *ImageHandler) Sequential(c *gin.Context) {
	h.serve(c, selector.ModeSequential)
}

func (h *ImageHandler) serve(c *gin.Context, mode selector.Mode) {
	data, contentType, err := h.svc.Serve(c.Request.Context(), mode)
	if err != nil {
		logger.CtxError(c.Request.Context(), "failed to serve %s image: %v", mode, err)
		c.JSON(statusFor(err), gin.H{"error": "failed to serve image"})
		return
	}
	c.Data(http.StatusOK, contentType, data)
}

// statusFor maps the fetch/cache error taxonomy onto HTTP status codes:
// a vanished local source is 404, upstream failures are 502, and the
// cache's own storage failures are 500.
func statusFor(err error) int {
	var badStatus *fetch.BadStatusError
	switch {
	case errors.Is(err, fetch.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, fetch.ErrUnreachable),
		errors.Is(err, fetch.ErrUnsupportedImage),
		errors.As(err, &badStatus):
		return http.StatusBadGateway
	case errors.Is(err, fetch.ErrRead), errors.Is(err, cache.ErrCacheIO):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
