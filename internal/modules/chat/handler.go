package chat

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"caradmin/internal/domain/chat"
	"caradmin/internal/middleware"
	"caradmin/internal/pkg/response"
	"caradmin/internal/pkg/slogx"
	"caradmin/internal/pkg/validator"
)

type Handler struct {
	service  *Service
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewHandler builds the chat handler. Websocket upgrades are accepted from
// origins (any origin when the list is empty).
func NewHandler(service *Service, hub *Hub, origins []string) *Handler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[strings.TrimRight(o, "/")] = true
	}
	return &Handler{
		service: service,
		hub:     hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowed) == 0 || allowed[origin]
			},
		},
	}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	chats := protected.Group("/chat")
	{
		chats.GET("/sessions", h.Sessions)
		chats.GET("/messages/:sessionId", h.Messages)
		chats.POST("/messages/:sessionId", h.Send)
		chats.POST("/read/:sessionId", h.MarkRead)
		chats.POST("/session/:sessionId/assign", h.Assign)
		chats.POST("/session/:sessionId/close", h.Close)
	}
}

// RegisterWSRoutes mounts GET /chat on a group guarded by ConsoleAuth, which
// reads the token from ?token= for upgrades.
func (h *Handler) RegisterWSRoutes(ws *gin.RouterGroup) {
	ws.GET("/chat", h.ServeWS)
}

// Sessions godoc
// @Summary Чаты с сайта
// @Description Обычный администратор видит только чаты своего проекта.
// @Tags Чат
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /chat/sessions [get]
func (h *Handler) Sessions(c *gin.Context) {
	p, _ := middleware.CurrentPrincipal(c)
	list, err := h.service.Sessions(c.Request.Context(), middleware.Upstream(c), p)
	if err != nil {
		writeError(c, err)
		return
	}

	unread := 0
	for _, s := range list {
		unread += s.Unread
	}
	response.Success(c, http.StatusOK, gin.H{"sessions": list, "unread": unread})
}

// Messages godoc
// @Summary История чата
// @Description Открытие чата помечает сообщения клиента прочитанными.
// @Tags Чат
// @Security BearerAuth
// @Param sessionId path string true "ID сессии"
// @Success 200 {object} MessagesResponse
// @Failure 404 {object} map[string]interface{}
// @Router /chat/messages/{sessionId} [get]
func (h *Handler) Messages(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}
	p, _ := middleware.CurrentPrincipal(c)

	out, err := h.service.Messages(c.Request.Context(), middleware.Upstream(c), p, sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

// Send godoc
// @Summary Ответить в чат
// @Tags Чат
// @Security BearerAuth
// @Param sessionId path string true "ID сессии"
// @Param request body chat.SendRequest true "Сообщение"
// @Success 201 {object} map[string]interface{}
// @Failure 400,404,409 {object} map[string]interface{}
// @Router /chat/messages/{sessionId} [post]
func (h *Handler) Send(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}
	var req chat.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.Validation(c, errs)
		return
	}
	p, _ := middleware.CurrentPrincipal(c)

	msg, err := h.service.Send(c.Request.Context(), middleware.Upstream(c), p, sessionID, req.Message)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"message": msg})
}

func (h *Handler) MarkRead(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}
	p, _ := middleware.CurrentPrincipal(c)
	if err := h.service.MarkRead(c.Request.Context(), middleware.Upstream(c), p, sessionID); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"read": true})
}

func (h *Handler) Assign(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}
	var req AssignRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
			return
		}
	}
	p, _ := middleware.CurrentPrincipal(c)

	if err := h.service.Assign(c.Request.Context(), middleware.Upstream(c), p, sessionID, req.AdminID); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"assigned": true})
}

func (h *Handler) Close(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}
	if err := h.service.Close(c.Request.Context(), middleware.Upstream(c), sessionID); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"closed": true})
}

// ServeWS godoc
// @Summary Живой чат (WebSocket)
// @Description Подписка: {"type":"subscribe","sessionId":"..."}. Новые сообщения приходят событиями {"type":"message"}.
// @Tags Чат
// @Param token query string true "Токен консоли"
// @Router /ws/chat [get]
func (h *Handler) ServeWS(c *gin.Context) {
	p, _ := middleware.CurrentPrincipal(c)
	api := middleware.Upstream(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже ответил клиенту
		slogx.FromContext(c.Request.Context()).Warn("websocket upgrade failed", "error", err)
		return
	}
	h.hub.Serve(conn, p, api)
}

func sessionParam(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("sessionId"))
	if id == "" {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid sessionId")
		return "", false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, chat.ErrSessionNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Чат не найден")
	case errors.Is(err, chat.ErrEmptyMessage):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Сообщение не может быть пустым")
	case errors.Is(err, chat.ErrSessionClosed):
		response.Error(c, http.StatusConflict, "SESSION_CLOSED", "Чат закрыт")
	case errors.Is(err, chat.ErrAssignOthers):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Назначать чат другим может только супер-админ")
	default:
		response.Upstream(c, err)
	}
}
