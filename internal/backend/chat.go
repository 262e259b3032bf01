package backend

import (
	"context"
	"net/http"
	"net/url"

	"caradmin/internal/domain/chat"
)

func (c *Client) ChatSessions(ctx context.Context) ([]chat.Session, error) {
	var out []chat.Session
	err := c.getJSON(ctx, "/chat/sessions", nil, &out)
	return out, err
}

func (c *Client) ChatMessages(ctx context.Context, sessionID string) ([]chat.Message, error) {
	var out []chat.Message
	err := c.getJSON(ctx, "/chat/messages/"+url.PathEscape(sessionID), nil, &out)
	return out, err
}

func (c *Client) SendChatMessage(ctx context.Context, msg chat.OutgoingMessage) (*chat.Message, error) {
	var out chat.Message
	if err := c.sendJSON(ctx, http.MethodPost, "/chat/message", msg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MarkChatRead(ctx context.Context, sessionID string, adminID int64) error {
	return c.sendJSON(ctx, http.MethodPost, "/chat/read/"+url.PathEscape(sessionID), chat.AdminRef{AdminID: adminID}, nil)
}

func (c *Client) AssignChat(ctx context.Context, sessionID string, adminID int64) error {
	return c.sendJSON(ctx, http.MethodPost, "/chat/session/"+url.PathEscape(sessionID)+"/assign", chat.AdminRef{AdminID: adminID}, nil)
}

func (c *Client) CloseChat(ctx context.Context, sessionID string) error {
	return c.sendJSON(ctx, http.MethodPost, "/chat/session/"+url.PathEscape(sessionID)+"/close", struct{}{}, nil)
}
