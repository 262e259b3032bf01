package chat

import (
	"fmt"
	"time"
)

// SenderType distinguishes website visitors from admins
type SenderType string

const (
	SenderClient SenderType = "client"
	SenderAdmin  SenderType = "admin"
)

// ProjectSource marks messages sent from this console
const ProjectSource = "car-admin"

// Session is a support chat opened by a website visitor
type Session struct {
	ID              int64      `json:"id,omitempty"`
	SessionID       string     `json:"sessionId"`
	ClientName      string     `json:"clientName,omitempty"`
	ClientEmail     string     `json:"clientEmail,omitempty"`
	ClientPhone     string     `json:"clientPhone,omitempty"`
	ProjectSource   string     `json:"projectSource"`
	ProjectID       string     `json:"projectId,omitempty"`
	IsActive        bool       `json:"isActive"`
	AssignedAdminID *int64     `json:"assignedAdminId,omitempty"`
	LastMessageAt   *time.Time `json:"lastMessageAt,omitempty"`
	UnreadCount     int        `json:"unreadCount"`
	Messages        []Message  `json:"messages,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// Unread counts client messages the admins have not read yet. Sessions that
// come with their messages are counted from them; otherwise the backend
// counter is used.
func (s *Session) Unread() int {
	if len(s.Messages) == 0 {
		return s.UnreadCount
	}
	n := 0
	for _, m := range s.Messages {
		if m.SenderType == SenderClient && !m.IsRead {
			n++
		}
	}
	return n
}

// Message is a single chat line
type Message struct {
	ID            int64      `json:"id,omitempty"`
	SessionID     string     `json:"sessionId"`
	Message       string     `json:"message"`
	SenderType    SenderType `json:"senderType"`
	ClientName    string     `json:"clientName,omitempty"`
	ClientEmail   string     `json:"clientEmail,omitempty"`
	ClientPhone   string     `json:"clientPhone,omitempty"`
	AdminID       *int64     `json:"adminId,omitempty"`
	IsRead        bool       `json:"isRead"`
	ProjectSource string     `json:"projectSource,omitempty"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
}

// Key identifies a message across the push and poll paths. Messages that
// have not been persisted yet have no id, so their content is used instead.
func (m *Message) Key() string {
	if m.ID > 0 {
		return fmt.Sprintf("id:%d", m.ID)
	}
	ts := ""
	if m.CreatedAt != nil {
		ts = m.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return fmt.Sprintf("tmp:%s|%s|%s|%s", m.SessionID, m.SenderType, ts, m.Message)
}

// SendRequest is the console body for posting an admin reply
type SendRequest struct {
	Message string `json:"message" validate:"required"`
}

// OutgoingMessage is the body of POST /chat/message
type OutgoingMessage struct {
	SessionID     string     `json:"sessionId"`
	Message       string     `json:"message"`
	SenderType    SenderType `json:"senderType"`
	AdminID       int64      `json:"adminId"`
	ProjectSource string     `json:"projectSource"`
}

// NewAdminMessage builds the payload the backend expects for an admin reply.
func NewAdminMessage(sessionID string, adminID int64, text string) OutgoingMessage {
	return OutgoingMessage{
		SessionID:     sessionID,
		Message:       text,
		SenderType:    SenderAdmin,
		AdminID:       adminID,
		ProjectSource: ProjectSource,
	}
}

// AdminRef is the body of the read and assign calls
type AdminRef struct {
	AdminID int64 `json:"adminId"`
}
