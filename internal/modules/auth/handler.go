package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"caradmin/internal/middleware"
	"caradmin/internal/pkg/response"
	"caradmin/internal/pkg/validator"
)

// Handler manages all HTTP interactions for console authentication
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterPublicRoutes mounts sign-in behind the per-IP limiter.
func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup, limiter gin.HandlerFunc) {
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/signin", limiter, h.SignIn)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	authGroup := protected.Group("/auth")
	{
		authGroup.POST("/logout", h.Logout)
		authGroup.GET("/me", h.GetMe)
	}
}

// SignIn авторизует администратора через основной бэкенд.
// @Summary		Войти в консоль
// @Description	Проверяет email и пароль на бэкенде, сохраняет зашифрованный токен бэкенда в сессии консоли и возвращает JWT консоли.
// @Tags		Авторизация
// @Param		request	body	SignInRequest	true	"Учётные данные (email, password)"
// @Success		200	{object}	SignInResponse
// @Failure		400	{object}	map[string]interface{} "Ошибка валидации"
// @Failure		401	{object}	map[string]interface{} "Неверный email или пароль"
// @Failure		429	{object}	map[string]interface{} "Слишком много попыток"
// @Failure		502	{object}	map[string]interface{} "Бэкенд недоступен"
// @Router		/auth/signin [POST]
func (h *Handler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.Validation(c, errs)
		return
	}

	res, err := h.service.SignIn(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Неверный email или пароль")
			return
		}
		response.Upstream(c, err)
		return
	}

	response.Success(c, http.StatusOK, SignInResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		Admin:     res.Admin,
	})
}

// Logout завершает сессию консоли.
// @Summary		Выйти
// @Tags		Авторизация
// @Security	BearerAuth
// @Success		200	{object}	map[string]interface{}
// @Router		/auth/logout [POST]
func (h *Handler) Logout(c *gin.Context) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	if err := h.service.Logout(c.Request.Context(), p.SessionID); err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to logout")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"logged_out": true})
}

// GetMe возвращает текущего администратора и его права.
// @Summary		Текущий администратор
// @Tags		Авторизация
// @Security	BearerAuth
// @Success		200	{object}	MeResponse
// @Failure		401	{object}	map[string]interface{} "Сессия истекла"
// @Router		/auth/me [GET]
func (h *Handler) GetMe(c *gin.Context) {
	p, _ := middleware.CurrentPrincipal(c)

	me, err := h.service.Me(c.Request.Context(), middleware.Upstream(c))
	if err != nil {
		response.Upstream(c, err)
		return
	}

	response.Success(c, http.StatusOK, MeResponse{
		Admin:       me,
		Permissions: me.Can(),
		SessionID:   p.SessionID,
	})
}
