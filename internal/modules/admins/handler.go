package admins

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"caradmin/internal/domain/admin"
	"caradmin/internal/middleware"
	"caradmin/internal/pkg/response"
	"caradmin/internal/pkg/utils"
	"caradmin/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	admins := protected.Group("/admins")
	{
		admins.GET("", h.List)
		admins.GET("/summary", h.Summary)
		admins.GET("/:id", h.Get)
		admins.GET("/:id/working-hours", h.GetWorkingHours)
		admins.PUT("/:id/working-hours", h.UpdateWorkingHours)

		super := admins.Group("")
		super.Use(middleware.SuperOnly())
		super.POST("", h.Create)
		super.PUT("/:id", h.Update)
		super.DELETE("/:id", h.Delete)
		super.POST("/:id/restore", h.Restore)
	}
}

// List godoc
// @Summary Список администраторов
// @Description Все администраторы, включая удалённых, и счётчики (активные, удалённые, супер).
// @Tags Администраторы
// @Security BearerAuth
// @Success 200 {object} ListResponse
// @Router /admins [get]
func (h *Handler) List(c *gin.Context) {
	out, err := h.service.List(c.Request.Context(), middleware.Upstream(c))
	if err != nil {
		response.Upstream(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) Summary(c *gin.Context) {
	out, err := h.service.Summary(c.Request.Context(), middleware.Upstream(c))
	if err != nil {
		response.Upstream(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}
	a, err := h.service.Get(c.Request.Context(), middleware.Upstream(c), id)
	if err != nil {
		response.Upstream(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"admin": a, "permissions": a.Can()})
}

// Create godoc
// @Summary Создать администратора
// @Tags Администраторы
// @Security BearerAuth
// @Param request body admin.CreateRequest true "Новый администратор"
// @Success 201 {object} map[string]interface{}
// @Failure 400,403 {object} map[string]interface{}
// @Router /admins [post]
func (h *Handler) Create(c *gin.Context) {
	var req admin.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.Validation(c, errs)
		return
	}

	a, err := h.service.Create(c.Request.Context(), middleware.Upstream(c), req)
	if err != nil {
		response.Upstream(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"admin": a})
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}
	var req admin.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.Validation(c, errs)
		return
	}

	a, err := h.service.Update(c.Request.Context(), middleware.Upstream(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"admin": a})
}

// Delete godoc
// @Summary Удалить администратора
// @Description Удаляет администратора на бэкенде и завершает его сессии в консоли.
// @Tags Администраторы
// @Security BearerAuth
// @Param id path int true "ID администратора"
// @Success 200 {object} map[string]interface{}
// @Failure 400,403 {object} map[string]interface{}
// @Router /admins/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}
	p, _ := middleware.CurrentPrincipal(c)
	if p.AdminID == id {
		response.Error(c, http.StatusBadRequest, "CANNOT_DELETE_SELF", "You cannot delete your own account")
		return
	}

	if err := h.service.Delete(c.Request.Context(), middleware.Upstream(c), id); err != nil {
		response.Upstream(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) Restore(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Restore(c.Request.Context(), middleware.Upstream(c), id); err != nil {
		response.Upstream(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"restored": true})
}

// GetWorkingHours godoc
// @Summary График работы
// @Description Неделя администратора: сохранённые дни поверх графика по умолчанию (Пн-Пт 09:00-18:00).
// @Tags Администраторы
// @Security BearerAuth
// @Param id path int true "ID администратора"
// @Success 200 {object} WorkingHoursResponse
// @Router /admins/{id}/working-hours [get]
func (h *Handler) GetWorkingHours(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}
	out, err := h.service.WorkingHours(c.Request.Context(), middleware.Upstream(c), id)
	if err != nil {
		response.Upstream(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

// UpdateWorkingHours godoc
// @Summary Сохранить график работы
// @Description Администратор может менять свой график, супер-администратор любой.
// @Tags Администраторы
// @Security BearerAuth
// @Param id path int true "ID администратора"
// @Param request body WorkingHoursRequest true "Дни недели"
// @Success 200 {object} WorkingHoursResponse
// @Failure 400,403 {object} map[string]interface{}
// @Router /admins/{id}/working-hours [put]
func (h *Handler) UpdateWorkingHours(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}
	p, _ := middleware.CurrentPrincipal(c)
	if !p.IsSuper && p.AdminID != id {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied")
		return
	}

	var req WorkingHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.Validation(c, errs)
		return
	}

	out, err := h.service.SaveWorkingHours(c.Request.Context(), middleware.Upstream(c), id, req.WorkingDays)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, admin.ErrInvalidDay), errors.Is(err, admin.ErrInvalidTime), errors.Is(err, admin.ErrEmptyShift):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		response.Upstream(c, err)
	}
}
