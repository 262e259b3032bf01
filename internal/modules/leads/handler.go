package leads

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"caradmin/internal/domain/lead"
	"caradmin/internal/middleware"
	"caradmin/internal/modules/files"
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
	leads := protected.Group("/leads")
	{
		leads.GET("", h.List)
		leads.POST("", h.Create)
		leads.POST("/from-chat/:sessionId", h.CreateFromChat)
		leads.GET("/stats/summary", h.Stats)

		leads.GET("/tags", h.Tags)
		leads.POST("/tags", h.CreateTag)

		leads.DELETE("/comments/:commentId", h.DeleteComment)
		leads.DELETE("/attachments/:attachmentId", h.DeleteAttachment)
		leads.PUT("/meetings/:meetingId", h.UpdateMeeting)
		leads.DELETE("/meetings/:meetingId", h.DeleteMeeting)

		leads.GET("/:id", h.Get)
		leads.PUT("/:id", h.Update)
		leads.DELETE("/:id", h.Delete)
		leads.PUT("/:id/stage", h.MoveStage)
		leads.PUT("/:id/assign", h.Assign)
		leads.PUT("/:id/status", h.SetStatus)
		leads.GET("/:id/pipeline", h.Pipeline)
		leads.GET("/:id/comments", h.Comments)
		leads.POST("/:id/comments", h.AddComment)
		leads.GET("/:id/activities", h.Activities)
		leads.GET("/:id/tasks", h.Tasks)
		leads.POST("/:id/tasks", h.CreateTask)
		leads.POST("/:id/tags/:tagId", h.AddTag)
		leads.DELETE("/:id/tags/:tagId", h.RemoveTag)
		leads.GET("/:id/attachments", h.Attachments)
		leads.POST("/:id/attachments", h.AddAttachment)
		leads.GET("/:id/meetings", h.Meetings)
		leads.POST("/:id/meetings", h.CreateMeeting)
		leads.POST("/:id/score", h.Score)
		leads.POST("/:id/convert", h.Convert)
	}
}

// List godoc
// @Summary Список лидов
// @Tags Лиды
// @Security BearerAuth
// @Param status query string false "Статус"
// @Param source query string false "Источник"
// @Param assignedAdminId query int false "Ответственный"
// @Param search query string false "Поиск по имени, телефону, email"
// @Success 200 {object} map[string]interface{}
// @Router /leads [get]
func (h *Handler) List(c *gin.Context) {
	var f lead.Filter
	if err := c.ShouldBindQuery(&f); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters")
		return
	}

	list, err := h.service.List(c.Request.Context(), middleware.Upstream(c), f)
	if err != nil {
		response.Upstream(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"leads": list, "total": len(list)})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}
	v, err := h.service.Get(c.Request.Context(), middleware.Upstream(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"lead": v})
}

// Create godoc
// @Summary Создать лида
// @Tags Лиды
// @Security BearerAuth
// @Param request body lead.LeadInput true "Лид"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{} "Имя обязательно"
// @Router /leads [post]
func (h *Handler) Create(c *gin.Context) {
	in, ok := bindLead(c)
	if !ok {
		return
	}
	v, err := h.service.Create(c.Request.Context(), middleware.Upstream(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"lead": v})
}

// CreateFromChat godoc
// @Summary Лид из чата
// @Description Создаёт лида по сессии чата с сайта. Контакты клиента берутся из сессии.
// @Tags Лиды
// @Security BearerAuth
// @Param sessionId path string true "ID сессии чата"
// @Success 201 {object} map[string]interface{}
// @Router /leads/from-chat/{sessionId} [post]
func (h *Handler) CreateFromChat(c *gin.Context) {
	sessionID := strings.TrimSpace(c.Param("sessionId"))
	if sessionID == "" {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid sessionId")
		return
	}
	var req lead.FromChatRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
			return
		}
	}
	if req.AssignedAdminID == nil {
		p, _ := middleware.CurrentPrincipal(c)
		req.AssignedAdminID = &p.AdminID
	}

	v, err := h.service.CreateFromChat(c.Request.Context(), middleware.Upstream(c), sessionID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"lead": v})
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}
	in, ok := bindLead(c)
	if !ok {
		return
	}
	v, err := h.service.Update(c.Request.Context(), middleware.Upstream(c), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"lead": v})
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

// MoveStage godoc
// @Summary Перевести лида на этап воронки
// @Tags Лиды
// @Security BearerAuth
// @Param id path int true "ID лида"
// @Param request body StageRequest true "Этап"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /leads/{id}/stage [put]
func (h *Handler) MoveStage(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}
	var req StageRequest
	if !bindValid(c, &req) {
		return
	}
	v, err := h.service.MoveStage(c.Request.Context(), middleware.Upstream(c), id, req.Stage)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"lead": v})
}

func (h *Handler) Assign(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	v, err := h.service.Assign(c.Request.Context(), middleware.Upstream(c), id, req.AdminID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"lead": v})
}

func (h *Handler) SetStatus(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}
	var req StatusRequest
	if !bindValid(c, &req) {
		return
	}
	v, err := h.service.SetStatus(c.Request.Context(), middleware.Upstream(c), id, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"lead": v})
}

// Pipeline godoc
// @Summary Воронка лида
// @Description Этапы воронки, прогресс в процентах, следующее действие и задачи текущего и следующего этапа.
// @Tags Лиды
// @Security BearerAuth
// @Param id path int true "ID лида"
// @Success 200 {object} PipelineResponse
// @Router /leads/{id}/pipeline [get]
func (h *Handler) Pipeline(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}
	out, err := h.service.Pipeline(c.Request.Context(), middleware.Upstream(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) Stats(c *gin.Context) {
	out, err := h.service.Stats(c.Request.Context(), middleware.Upstream(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) Comments(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}
	out, err := h.service.Comments(c.Request.Context(), middleware.Upstream(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"comments": out})
}

func (h *Handler) AddComment(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}
	var req lead.CommentInput
	if !bindValid(c, &req) {
		return
	}
	if strings.TrimSpace(req.Comment) == "" {
		response.Validation(c, map[string]string{"comment": "required"})
		return
	}
	p, _ := middleware.CurrentPrincipal(c)

	out, err := h.service.AddComment(c.Request.Context(), middleware.Upstream(c), id, p.AdminID, req.Comment)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"comment": out})
}

func (h *Handler) DeleteComment(c *gin.Context) {
	id, ok := utils.ParamID(c, "commentId")
	if !ok {
		return
	}
	if err := h.service.DeleteComment(c.Request.Context(), middleware.Upstream(c), id); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) Activities(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}
	out, err := h.service.Activities(c.Request.Context(), middleware.Upstream(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"activities": out})
}

func (h *Handler) Tasks(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}
	out, err := h.service.Tasks(c.Request.Context(), middleware.Upstream(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tasks": out})
}

func (h *Handler) CreateTask(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}
	var in lead.TaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	p, _ := middleware.CurrentPrincipal(c)
	if in.AdminID == 0 {
		in.AdminID = p.AdminID
	}
	if errs := validator.Validate(in); errs != nil {
		response.Validation(c, errs)
		return
	}

	out, err := h.service.CreateTask(c.Request.Context(), middleware.Upstream(c), id, p.AdminID, in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"task": out})
}

func (h *Handler) Tags(c *gin.Context) {
	out, err := h.service.Tags(c.Request.Context(), middleware.Upstream(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tags": out})
}

func (h *Handler) CreateTag(c *gin.Context) {
	var in lead.TagInput
	if !bindValid(c, &in) {
		return
	}
	out, err := h.service.CreateTag(c.Request.Context(), middleware.Upstream(c), in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"tag": out})
}

func (h *Handler) AddTag(c *gin.Context)    { h.tagOp(c, true) }
func (h *Handler) RemoveTag(c *gin.Context) { h.tagOp(c, false) }

func (h *Handler) tagOp(c *gin.Context, add bool) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}
	tagID, ok := utils.ParamID(c, "tagId")
	if !ok {
		return
	}

	var err error
	if add {
		err = h.service.AddTag(c.Request.Context(), middleware.Upstream(c), id, tagID)
	} else {
		err = h.service.RemoveTag(c.Request.Context(), middleware.Upstream(c), id, tagID)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"leadId": id, "tagId": tagID, "attached": add})
}

func (h *Handler) Attachments(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}
	out, err := h.service.Attachments(c.Request.Context(), middleware.Upstream(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"attachments": out})
}

// AddAttachment godoc
// @Summary Прикрепить файл к лиду
// @Tags Лиды
// @Accept multipart/form-data
// @Security BearerAuth
// @Param id path int true "ID лида"
// @Param file formData file true "Файл"
// @Param description formData string false "Описание"
// @Success 201 {object} map[string]interface{}
// @Failure 400,413 {object} map[string]interface{}
// @Router /leads/{id}/attachments [post]
func (h *Handler) AddAttachment(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_FILE", "no file provided")
		return
	}
	upload, err := files.Read(fh, files.Attachments)
	if err != nil {
		files.WriteError(c, err)
		return
	}

	out, err := h.service.AddAttachment(c.Request.Context(), middleware.Upstream(c), id, upload, c.PostForm("description"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"attachment": out})
}

func (h *Handler) DeleteAttachment(c *gin.Context) {
	id, ok := utils.ParamID(c, "attachmentId")
	if !ok {
		return
	}
	if err := h.service.DeleteAttachment(c.Request.Context(), middleware.Upstream(c), id); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) Meetings(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}
	out, err := h.service.Meetings(c.Request.Context(), middleware.Upstream(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"meetings": out})
}

func (h *Handler) CreateMeeting(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}
	var in lead.MeetingInput
	if !bindValid(c, &in) {
		return
	}
	p, _ := middleware.CurrentPrincipal(c)

	out, err := h.service.CreateMeeting(c.Request.Context(), middleware.Upstream(c), id, p.AdminID, in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"meeting": out})
}

func (h *Handler) UpdateMeeting(c *gin.Context) {
	id, ok := utils.ParamID(c, "meetingId")
	if !ok {
		return
	}
	var in lead.MeetingUpdate
	if !bindValid(c, &in) {
		return
	}
	out, err := h.service.UpdateMeeting(c.Request.Context(), middleware.Upstream(c), id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"meeting": out})
}

func (h *Handler) DeleteMeeting(c *gin.Context) {
	id, ok := utils.ParamID(c, "meetingId")
	if !ok {
		return
	}
	if err := h.service.DeleteMeeting(c.Request.Context(), middleware.Upstream(c), id); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) Score(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}
	out, err := h.service.Score(c.Request.Context(), middleware.Upstream(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

// Convert godoc
// @Summary Конвертировать лида в клиента
// @Tags Лиды
// @Security BearerAuth
// @Param id path int true "ID лида"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{} "Лид уже конвертирован"
// @Router /leads/{id}/convert [post]
func (h *Handler) Convert(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}
	v, err := h.service.Convert(c.Request.Context(), middleware.Upstream(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"lead": v})
}

func bindLead(c *gin.Context) (lead.LeadInput, bool) {
	var in lead.LeadInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return in, false
	}
	// имя проверяем раньше валидатора, чтобы вернуть понятное сообщение
	if err := in.Check(); err != nil {
		writeError(c, err)
		return in, false
	}
	if errs := validator.Validate(in); errs != nil {
		response.Validation(c, errs)
		return in, false
	}
	return in, true
}

// bindValid decodes the JSON body into v and runs struct validation.
func bindValid(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return false
	}
	if errs := validator.Validate(v); errs != nil {
		response.Validation(c, errs)
		return false
	}
	return true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, lead.ErrNameRequired):
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), map[string]string{"name": "required"})
	case errors.Is(err, lead.ErrInvalidStage):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, lead.ErrAlreadyConverted):
		response.Error(c, http.StatusConflict, "ALREADY_CONVERTED", "Лид уже конвертирован в клиента")
	default:
		response.Upstream(c, err)
	}
}
