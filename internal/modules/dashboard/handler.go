package dashboard

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"caradmin/internal/middleware"
	"caradmin/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	protected.GET("/dashboard", h.Get)
}

// Get godoc
// @Summary Главная страница
// @Description Неназначенные лиды, машины за неделю и чаты без ответа. Клиент обновляет страницу раз в refreshSeconds; ETag совпадает с hash.
// @Tags Дашборд
// @Security BearerAuth
// @Success 200 {object} Dashboard
// @Success 304 "Данные не изменились"
// @Router /dashboard [get]
func (h *Handler) Get(c *gin.Context) {
	p, _ := middleware.CurrentPrincipal(c)
	d, err := h.service.Build(c.Request.Context(), middleware.Upstream(c), p)
	if err != nil {
		response.Upstream(c, err)
		return
	}

	etag := strconv.Quote(d.Hash)
	c.Header("ETag", etag)
	c.Header("Cache-Control", "private, max-age="+strconv.Itoa(d.RefreshSeconds))
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}
	response.Success(c, http.StatusOK, d)
}
