package export

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"caradmin/internal/domain"
	"caradmin/internal/middleware"
	"caradmin/internal/pkg/response"
	"caradmin/internal/pkg/utils"
)

const ymlContentType = "application/xml; charset=utf-8"

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	export := protected.Group("/export")
	{
		export.GET("/yml", h.YML)
		export.GET("/history", h.History)
	}
}

// YML godoc
// @Summary Выгрузка каталога в YML
// @Description Каталог автомобилей в продаже для Яндекс.Маркета. С download=true отдаётся файлом.
// @Tags Экспорт
// @Security BearerAuth
// @Produce xml
// @Param download query bool false "Скачать файлом"
// @Router /export/yml [get]
func (h *Handler) YML(c *gin.Context) {
	p, _ := middleware.CurrentPrincipal(c)
	adminID := p.AdminID

	exp, err := h.service.Generate(c.Request.Context(), middleware.Upstream(c), domain.FeedTriggerHTTP, &adminID)
	if err != nil {
		response.Upstream(c, err)
		return
	}

	c.Header("X-Feed-Offers", strconv.Itoa(exp.Record.Offers))
	c.Header("X-Feed-SHA256", exp.Record.SHA256)
	if d := utils.QueryBool(c, "download"); d != nil && *d {
		c.Header("Content-Disposition", `attachment; filename="`+exp.Record.FileName+`"`)
	}
	c.Data(http.StatusOK, ymlContentType, []byte(exp.Document))
}

func (h *Handler) History(c *gin.Context) {
	limit := utils.QueryInt(c, "limit", 20)
	list, err := h.service.History(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Не удалось загрузить историю выгрузок")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"exports": list})
}
