package chat

import (
	"context"

	"caradmin/internal/domain/chat"
)

// Upstream is the part of the backend client the chat viewer uses
type Upstream interface {
	ChatSessions(ctx context.Context) ([]chat.Session, error)
	ChatMessages(ctx context.Context, sessionID string) ([]chat.Message, error)
	SendChatMessage(ctx context.Context, msg chat.OutgoingMessage) (*chat.Message, error)
	MarkChatRead(ctx context.Context, sessionID string, adminID int64) error
	AssignChat(ctx context.Context, sessionID string, adminID int64) error
	CloseChat(ctx context.Context, sessionID string) error
}

// Source is where a feed polls messages from
type Source interface {
	ChatMessages(ctx context.Context, sessionID string) ([]chat.Message, error)
}
