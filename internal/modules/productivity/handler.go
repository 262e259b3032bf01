package productivity

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"caradmin/internal/middleware"
	"caradmin/internal/pkg/response"
	"caradmin/internal/pkg/utils"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	p := protected.Group("/productivity")
	{
		p.GET("", h.Report)
		p.GET("/chart", h.Chart)
		p.GET("/admins/:id", h.Admin)
	}
}

// Report godoc
// @Summary Продуктивность админов
// @Description Топ-5 по добавленным машинам, 5 отстающих, 3 с наибольшим числом ошибок и динамика за неделю.
// @Tags Статистика
// @Security BearerAuth
// @Success 200 {object} Report
// @Router /productivity [get]
func (h *Handler) Report(c *gin.Context) {
	r, err := h.service.Report(c.Request.Context(), middleware.Upstream(c))
	if err != nil {
		response.Upstream(c, err)
		return
	}
	response.Success(c, http.StatusOK, r)
}

// Chart godoc
// @Summary График продуктивности
// @Description HTML-страница с графиками (go-echarts).
// @Tags Статистика
// @Security BearerAuth
// @Produce html
// @Router /productivity/chart [get]
func (h *Handler) Chart(c *gin.Context) {
	r, err := h.service.Report(c.Request.Context(), middleware.Upstream(c))
	if err != nil {
		response.Upstream(c, err)
		return
	}
	html, err := h.service.Chart(r)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Не удалось построить график")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (h *Handler) Admin(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}
	row, detail, err := h.service.Admin(c.Request.Context(), middleware.Upstream(c), id)
	if err != nil {
		response.Upstream(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"admin": row, "leads": detail.Leads, "recentLeads": detail.RecentLeads})
}
