package cars

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"caradmin/internal/domain/car"
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
	carsGroup := protected.Group("/cars")
	{
		carsGroup.GET("", h.List)
		carsGroup.GET("/all", h.All)
		carsGroup.GET("/brands", h.Brands)
		carsGroup.POST("/search", h.Search)
		carsGroup.POST("", h.Create)
		carsGroup.GET("/by-admin/:adminId", h.ByAdmin)
		carsGroup.GET("/:id", h.Get)
		carsGroup.PATCH("/:id", h.Update)
		carsGroup.DELETE("/:id", h.Delete)
		carsGroup.POST("/:id/restore", middleware.SuperOnly(), h.Restore)
		carsGroup.POST("/:id/sold", h.MarkSold)
		carsGroup.POST("/:id/available", h.MarkAvailable)
		carsGroup.POST("/:id/images", h.UploadImages)
		carsGroup.DELETE("/:id/images/:fileId", h.DeleteImage)
	}
}

// List godoc
// @Summary Список автомобилей
// @Tags Автомобили
// @Security BearerAuth
// @Param limit query int false "Лимит"
// @Param sortBy query string false "Поле сортировки"
// @Param sortOrder query string false "ASC или DESC"
// @Param random query bool false "Случайный порядок"
// @Success 200 {object} map[string]interface{}
// @Router /cars [get]
func (h *Handler) List(c *gin.Context) {
	var q car.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters")
		return
	}

	list, err := h.service.List(c.Request.Context(), middleware.Upstream(c), q)
	if err != nil {
		response.Upstream(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cars": list, "total": len(list)})
}

// All returns every car including sold and deleted ones.
func (h *Handler) All(c *gin.Context) {
	list, err := h.service.All(c.Request.Context(), middleware.Upstream(c))
	if err != nil {
		response.Upstream(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cars": list, "total": len(list)})
}

// Brands godoc
// @Summary Марки и модели
// @Tags Автомобили
// @Security BearerAuth
// @Param count query bool false "С количеством автомобилей"
// @Success 200 {object} map[string]interface{}
// @Router /cars/brands [get]
func (h *Handler) Brands(c *gin.Context) {
	withCount := c.Query("count") == "true"
	out, err := h.service.Brands(c.Request.Context(), middleware.Upstream(c), withCount)
	if err != nil {
		response.Upstream(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"brands": out})
}

func (h *Handler) Search(c *gin.Context) {
	var req car.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	list, err := h.service.Search(c.Request.Context(), middleware.Upstream(c), req)
	if err != nil {
		response.Upstream(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cars": list, "total": len(list)})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}

	out, err := h.service.Get(c.Request.Context(), middleware.Upstream(c), id)
	if err != nil {
		response.Upstream(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"car": out})
}

// Create godoc
// @Summary Добавить автомобиль
// @Tags Автомобили
// @Security BearerAuth
// @Param request body CarRequest true "Автомобиль"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /cars [post]
func (h *Handler) Create(c *gin.Context) {
	req, ok := bindCar(c)
	if !ok {
		return
	}

	out, err := h.service.Create(c.Request.Context(), middleware.Upstream(c), req)
	if err != nil {
		response.Upstream(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"car": out})
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}
	req, ok := bindCar(c)
	if !ok {
		return
	}

	out, err := h.service.Update(c.Request.Context(), middleware.Upstream(c), id, req)
	if err != nil {
		response.Upstream(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"car": out})
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
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

func (h *Handler) MarkSold(c *gin.Context)      { h.setSold(c, true) }
func (h *Handler) MarkAvailable(c *gin.Context) { h.setSold(c, false) }

func (h *Handler) setSold(c *gin.Context, sold bool) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}
	out, err := h.service.SetSold(c.Request.Context(), middleware.Upstream(c), id, sold)
	if err != nil {
		response.Upstream(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"car": out})
}

// ByAdmin godoc
// @Summary Автомобили администратора
// @Description Возвращает автомобили, добавленные администратором, и счётчик за последние 7 дней.
// @Tags Автомобили
// @Security BearerAuth
// @Param adminId path int true "ID администратора"
// @Success 200 {object} AdminCars
// @Router /cars/by-admin/{adminId} [get]
func (h *Handler) ByAdmin(c *gin.Context) {
	adminID, ok := utils.ParamID(c, "adminId")
	if !ok {
		return
	}

	p, _ := middleware.CurrentPrincipal(c)
	if !p.IsSuper && p.AdminID != adminID {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied")
		return
	}

	out, err := h.service.ByAdmin(c.Request.Context(), middleware.Upstream(c), adminID)
	if err != nil {
		response.Upstream(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

// UploadImages godoc
// @Summary Загрузить фотографии
// @Tags Автомобили
// @Accept multipart/form-data
// @Security BearerAuth
// @Param id path int true "ID автомобиля"
// @Param images formData file true "Фотографии"
// @Success 200 {object} map[string]interface{}
// @Failure 400,413 {object} map[string]interface{}
// @Router /cars/{id}/images [post]
func (h *Handler) UploadImages(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_FILE", "multipart form with images is required")
		return
	}
	uploads, err := files.ReadAll(form.File["images"], files.Images)
	if err != nil {
		files.WriteError(c, err)
		return
	}

	out, err := h.service.UploadImages(c.Request.Context(), middleware.Upstream(c), id, uploads)
	if err != nil {
		if errors.Is(err, car.ErrNoImages) {
			response.Error(c, http.StatusBadRequest, "INVALID_FILE", err.Error())
			return
		}
		response.Upstream(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"car": out})
}

func (h *Handler) DeleteImage(c *gin.Context) {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return
	}
	fileID, ok := utils.ParamID(c, "fileId")
	if !ok {
		return
	}

	if err := h.service.DeleteImage(c.Request.Context(), middleware.Upstream(c), id, fileID); err != nil {
		response.Upstream(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func bindCar(c *gin.Context) (CarRequest, bool) {
	var req CarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return req, false
	}
	if errs := validator.Validate(req); errs != nil {
		response.Validation(c, errs)
		return req, false
	}
	return req, true
}
