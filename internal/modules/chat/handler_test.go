package chat

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caradmin/internal/domain"
	"caradmin/internal/domain/chat"
	"caradmin/internal/modules/moduletest"
	"caradmin/internal/pkg/slogx"
)

const sessionsJSON = `[
	{"sessionId":"s1","projectId":"cars","isActive":true,"unreadCount":0,
	 "messages":[{"id":1,"sessionId":"s1","message":"hi","senderType":"client","isRead":false},
	             {"id":2,"sessionId":"s1","message":"hello","senderType":"admin","isRead":true}]},
	{"sessionId":"s2","projectId":"trucks","isActive":true,"unreadCount":4},
	{"sessionId":"s3","projectId":"cars","isActive":false,"unreadCount":0}
]`

var operator = domain.Principal{SessionID: "c1", AdminID: 7, ProjectID: "cars"}

type env struct {
	up      *moduletest.Upstream
	router  http.Handler
	hub     *Hub
	watcher *Watcher
}

func setup(t *testing.T, p domain.Principal) *env {
	t.Helper()
	up := moduletest.NewUpstream(t)
	up.On("GET /chat/sessions", 200, sessionsJSON)

	hub := NewHub(slogx.Discard())
	watcher := NewWatcher(hub, 10*time.Millisecond, "", slogx.Discard())
	t.Cleanup(watcher.Close)
	svc := NewService(watcher)
	hub.Listen(watcher)
	hub.Authorize(svc.Authorize)

	r, protected := moduletest.Router(p, up.URL)
	h := NewHandler(svc, hub, nil)
	h.RegisterRoutes(protected)
	h.RegisterWSRoutes(protected.Group("/ws"))
	return &env{up: up, router: r, hub: hub, watcher: watcher}
}

func TestSessions_ProjectFilter(t *testing.T) {
	e := setup(t, operator)

	w := moduletest.Do(e.router, http.MethodGet, "/api/v1/chat/sessions", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out struct {
		Sessions []SessionView `json:"sessions"`
		Unread   int           `json:"unread"`
	}
	moduletest.Data(t, w, &out)
	require.Len(t, out.Sessions, 2)
	assert.Equal(t, "s1", out.Sessions[0].SessionID)
	assert.Equal(t, 1, out.Sessions[0].Unread)
	assert.Equal(t, 1, out.Unread)

	super := setup(t, domain.Principal{AdminID: 1, IsSuper: true, ProjectID: "cars"})
	w = moduletest.Do(super.router, http.MethodGet, "/api/v1/chat/sessions", nil)
	moduletest.Data(t, w, &out)
	assert.Len(t, out.Sessions, 3)
	assert.Equal(t, 5, out.Unread)
}

func TestMessages_MarksRead(t *testing.T) {
	e := setup(t, operator)
	e.up.On("GET /chat/messages/s1", 200, `[{"id":1,"sessionId":"s1","message":"hi","senderType":"client","isRead":false}]`)
	e.up.On("POST /chat/read/s1", 200, `{}`)

	w := moduletest.Do(e.router, http.MethodGet, "/api/v1/chat/messages/s1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out MessagesResponse
	moduletest.Data(t, w, &out)
	assert.Equal(t, 1, out.MarkedRead)

	call, ok := e.up.Last("POST /chat/read/s1")
	require.True(t, ok)
	assert.JSONEq(t, `{"adminId":7}`, string(call.Body))

	// another project's chat is not visible
	w = moduletest.Do(e.router, http.MethodGet, "/api/v1/chat/messages/s2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSend(t *testing.T) {
	e := setup(t, operator)
	e.up.On("POST /chat/message", 201, `{"id":10,"sessionId":"s1","message":"Добрый день","senderType":"admin"}`)

	w := moduletest.Do(e.router, http.MethodPost, "/api/v1/chat/messages/s1", chat.SendRequest{Message: "  Добрый день "})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	call, _ := e.up.Last("POST /chat/message")
	var sent chat.OutgoingMessage
	require.NoError(t, json.Unmarshal(call.Body, &sent))
	assert.Equal(t, chat.NewAdminMessage("s1", 7, "Добрый день"), sent)

	w = moduletest.Do(e.router, http.MethodPost, "/api/v1/chat/messages/s1", chat.SendRequest{Message: "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = moduletest.Do(e.router, http.MethodPost, "/api/v1/chat/messages/s3", chat.SendRequest{Message: "есть кто?"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "SESSION_CLOSED", moduletest.ErrorCode(t, w))
}

func TestAssign(t *testing.T) {
	e := setup(t, operator)
	e.up.On("POST /chat/session/s1/assign", 200, `{}`)

	w := moduletest.Do(e.router, http.MethodPost, "/api/v1/chat/session/s1/assign", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	call, _ := e.up.Last("POST /chat/session/s1/assign")
	assert.JSONEq(t, `{"adminId":7}`, string(call.Body))

	w = moduletest.Do(e.router, http.MethodPost, "/api/v1/chat/session/s1/assign", AssignRequest{AdminID: ptr(int64(9))})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func ptr[T any](v T) *T { return &v }

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestWebsocket_LiveMessages(t *testing.T) {
	e := setup(t, operator)
	e.up.On("GET /chat/messages/s1", 200, `[{"id":1,"sessionId":"s1","message":"hi","senderType":"client"}]`)
	e.up.On("POST /chat/message", 201, `{"id":10,"sessionId":"s1","message":"ответ","senderType":"admin"}`)

	srv := httptest.NewServer(e.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws/chat?token=console-token"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(clientFrame{Type: "subscribe", SessionID: "s2"}))
	ev := readEvent(t, conn)
	assert.Equal(t, EventError, ev.Type)
	assert.Equal(t, "FORBIDDEN", ev.Code)

	require.NoError(t, conn.WriteJSON(clientFrame{Type: "subscribe", SessionID: "s1"}))
	ev = readEvent(t, conn)
	assert.Equal(t, EventSubscribed, ev.Type)
	assert.Equal(t, 1, e.hub.Viewers("s1"))
	require.Eventually(t, func() bool { return e.watcher.Watching() == 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		_, primed := e.up.Last("GET /chat/messages/s1")
		return primed
	}, time.Second, 5*time.Millisecond)

	// a reply sent over REST reaches the viewer once, even though the poll
	// loop will see it too
	w := moduletest.Do(e.router, http.MethodPost, "/api/v1/chat/messages/s1", chat.SendRequest{Message: "ответ"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	ev = readEvent(t, conn)
	assert.Equal(t, EventMessage, ev.Type)
	require.NotNil(t, ev.Message)
	assert.Equal(t, "ответ", ev.Message.Message)

	// a new client message arrives through polling
	e.up.On("GET /chat/messages/s1", 200, `[
		{"id":1,"sessionId":"s1","message":"hi","senderType":"client"},
		{"id":10,"sessionId":"s1","message":"ответ","senderType":"admin"},
		{"id":11,"sessionId":"s1","message":"спасибо","senderType":"client"}]`)
	ev = readEvent(t, conn)
	require.NotNil(t, ev.Message)
	assert.Equal(t, "спасибо", ev.Message.Message)

	require.NoError(t, conn.WriteJSON(clientFrame{Type: "ping"}))
	assert.Equal(t, EventPong, readEvent(t, conn).Type)

	require.NoError(t, conn.WriteJSON(clientFrame{Type: "unsubscribe", SessionID: "s1"}))
	assert.Equal(t, EventUnsubscribed, readEvent(t, conn).Type)
	require.Eventually(t, func() bool { return e.watcher.Watching() == 0 }, time.Second, 5*time.Millisecond)
}
