package files

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"caradmin/internal/pkg/fileurl"
	"caradmin/internal/pkg/response"
)

type Handler struct {
	apiURL string
}

func NewHandler(apiURL string) *Handler {
	return &Handler{apiURL: apiURL}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	protected.GET("/files/url", h.ResolveURL)
}

// ResolveURL godoc
// @Summary Resolve a stored file path
// @Description Turns a path saved by the backend into an absolute URL. Legacy storefront links are moved to the backend host.
// @Tags Files
// @Produce json
// @Security BearerAuth
// @Param path query string true "Stored path"
// @Success 200 {object} map[string]interface{}
// @Router /files/url [get]
func (h *Handler) ResolveURL(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "path is required")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"url": fileurl.Resolve(h.apiURL, path)})
}

// WriteError maps upload check failures to the envelope.
func WriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrFileTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", err.Error())
	case errors.Is(err, ErrInvalidMimeType), errors.Is(err, ErrEmptyFile), errors.Is(err, ErrNoFiles):
		response.Error(c, http.StatusBadRequest, "INVALID_FILE", err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to read upload")
	}
}
