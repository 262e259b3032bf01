package tasks

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"caradmin/internal/domain/lead"
	"caradmin/internal/middleware"
	"caradmin/internal/pkg/response"
	"caradmin/internal/pkg/taskscript"
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
	tasks := protected.Group("/tasks")
	{
		tasks.GET("/board", h.Board)
		tasks.POST("/format", h.Format)
		tasks.GET("/:id/form", h.Form)
		tasks.POST("/:id/complete", h.Complete)
		tasks.PUT("/:id", h.Update)
		tasks.DELETE("/:id", h.Delete)
	}
}

// Board godoc
// @Summary Мои задачи
// @Description Задачи текущего администратора, сгруппированные по лидам.
// @Tags Задачи
// @Security BearerAuth
// @Param status query string false "pending, in_progress, completed"
// @Param completed query bool false "Только выполненные / невыполненные"
// @Success 200 {object} Board
// @Router /tasks/board [get]
func (h *Handler) Board(c *gin.Context) {
	board, err := h.service.Board(c.Request.Context(), middleware.Upstream(c), c.Query("status"), utils.QueryBool(c, "completed"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, board)
}

// Form godoc
// @Summary Форма вопросов задачи
// @Description Поля из блока «Что узнать» описания задачи, заполненные из taskData.
// @Tags Задачи
// @Security BearerAuth
// @Param id path int true "ID задачи"
// @Success 200 {object} FormResponse
// @Failure 404 {object} map[string]interface{}
// @Router /tasks/{id}/form [get]
func (h *Handler) Form(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}
	out, err := h.service.Form(c.Request.Context(), middleware.Upstream(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

// Complete godoc
// @Summary Завершить задачу
// @Description Задачу нельзя завершить, пока не заполнены обязательные поля формы.
// @Tags Задачи
// @Security BearerAuth
// @Param id path int true "ID задачи"
// @Param request body CompleteRequest true "Ответы"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /tasks/{id}/complete [post]
func (h *Handler) Complete(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}
	var req CompleteRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
			return
		}
	}

	task, err := h.service.Complete(c.Request.Context(), middleware.Upstream(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"task": task})
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}
	var upd lead.TaskUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if errs := validator.Validate(upd); errs != nil {
		response.Validation(c, errs)
		return
	}

	task, err := h.service.Update(c.Request.Context(), middleware.Upstream(c), id, upd)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"task": task})
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), middleware.Upstream(c), id); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// Format renders a task description as HTML.
func (h *Handler) Format(c *gin.Context) {
	var req FormatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.Validation(c, errs)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"html": taskscript.Format(req.Description)})
}

func writeError(c *gin.Context, err error) {
	var missing *MissingFieldsError
	switch {
	case errors.As(err, &missing):
		response.ErrorWithDetails(c, http.StatusBadRequest, "REQUIRED_FIELDS", "Заполните обязательные поля", gin.H{"missing": missing.Fields})
	case errors.Is(err, lead.ErrInvalidTaskData):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, lead.ErrTaskNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Задача не найдена")
	default:
		response.Upstream(c, err)
	}
}
