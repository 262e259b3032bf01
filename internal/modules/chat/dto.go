package chat

import "caradmin/internal/domain/chat"

// SessionView is a chat session with its unread counter
type SessionView struct {
	chat.Session
	Unread   int  `json:"unread"`
	Assigned bool `json:"assigned"`
}

// MessagesResponse is returned when a session is opened
type MessagesResponse struct {
	SessionID  string         `json:"sessionId"`
	Messages   []chat.Message `json:"messages"`
	MarkedRead int            `json:"markedRead"`
}

// AssignRequest is the body of POST /chat/session/:id/assign. Empty assigns
// the caller.
type AssignRequest struct {
	AdminID *int64 `json:"adminId"`
}

// Event types sent to browser websocket clients.
const (
	EventMessage      = "message"
	EventSubscribed   = "subscribed"
	EventUnsubscribed = "unsubscribed"
	EventFeedStopped  = "feed_stopped"
	EventPong         = "pong"
	EventError        = "error"
)

// Event is one frame sent to a browser websocket
type Event struct {
	Type      string        `json:"type"`
	SessionID string        `json:"sessionId,omitempty"`
	Message   *chat.Message `json:"message,omitempty"`
	Code      string        `json:"code,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// clientFrame is one frame received from a browser websocket
type clientFrame struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
}
