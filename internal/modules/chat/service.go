package chat

import (
	"context"
	"errors"
	"strings"

	"caradmin/internal/domain"
	"caradmin/internal/domain/chat"
	"caradmin/internal/pkg/slogx"
)

type Service struct {
	watcher *Watcher
}

func NewService(watcher *Watcher) *Service {
	return &Service{watcher: watcher}
}

// visible hides sessions of other projects from non-super admins.
func visible(p domain.Principal, s *chat.Session) bool {
	if p.IsSuper || p.ProjectID == "" {
		return true
	}
	return s.ProjectID == p.ProjectID
}

func (s *Service) Sessions(ctx context.Context, api Upstream, p domain.Principal) ([]SessionView, error) {
	list, err := api.ChatSessions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]SessionView, 0, len(list))
	for i := range list {
		sess := &list[i]
		if !visible(p, sess) {
			continue
		}
		out = append(out, SessionView{
			Session:  *sess,
			Unread:   sess.Unread(),
			Assigned: sess.AssignedAdminID != nil && *sess.AssignedAdminID > 0,
		})
	}
	return out, nil
}

// Session finds one session the caller may see.
func (s *Service) Session(ctx context.Context, api Upstream, p domain.Principal, sessionID string) (*chat.Session, error) {
	list, err := api.ChatSessions(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].SessionID == sessionID && visible(p, &list[i]) {
			return &list[i], nil
		}
	}
	return nil, chat.ErrSessionNotFound
}

// Messages opens a session: it returns the history and marks client
// messages read.
func (s *Service) Messages(ctx context.Context, api Upstream, p domain.Principal, sessionID string) (*MessagesResponse, error) {
	if _, err := s.Session(ctx, api, p, sessionID); err != nil {
		return nil, err
	}
	msgs, err := api.ChatMessages(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []chat.Message{}
	}

	unread := 0
	for _, m := range msgs {
		if m.SenderType == chat.SenderClient && !m.IsRead {
			unread++
		}
	}
	if unread > 0 {
		if err := api.MarkChatRead(ctx, sessionID, p.AdminID); err != nil {
			// историю всё равно показываем
			slogx.FromContext(ctx).Warn("chat mark read failed", "session_id", sessionID, "error", err)
			unread = 0
		}
	}
	return &MessagesResponse{SessionID: sessionID, Messages: msgs, MarkedRead: unread}, nil
}

// Send posts an admin reply and shows it to everyone watching the session.
func (s *Service) Send(ctx context.Context, api Upstream, p domain.Principal, sessionID, text string) (*chat.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, chat.ErrEmptyMessage
	}
	sess, err := s.Session(ctx, api, p, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.IsActive {
		return nil, chat.ErrSessionClosed
	}

	msg, err := api.SendChatMessage(ctx, chat.NewAdminMessage(sessionID, p.AdminID, text))
	if err != nil {
		return nil, err
	}
	if msg.SessionID == "" {
		msg.SessionID = sessionID
	}
	if s.watcher != nil {
		if err := s.watcher.Offer(sessionID, *msg); err != nil && !errors.Is(err, chat.ErrNotWatching) {
			return nil, err
		}
	}
	return msg, nil
}

func (s *Service) MarkRead(ctx context.Context, api Upstream, p domain.Principal, sessionID string) error {
	return api.MarkChatRead(ctx, sessionID, p.AdminID)
}

// Assign gives the session to adminID, or to the caller when nil.
func (s *Service) Assign(ctx context.Context, api Upstream, p domain.Principal, sessionID string, adminID *int64) error {
	target := p.AdminID
	if adminID != nil && *adminID > 0 {
		target = *adminID
	}
	if target != p.AdminID && !p.IsSuper {
		return chat.ErrAssignOthers
	}
	return api.AssignChat(ctx, sessionID, target)
}

func (s *Service) Close(ctx context.Context, api Upstream, sessionID string) error {
	return api.CloseChat(ctx, sessionID)
}

// Authorize is the hub subscribe check.
func (s *Service) Authorize(ctx context.Context, c *Client, sessionID string) error {
	if c.API == nil {
		return chat.ErrSessionNotFound
	}
	_, err := s.Session(ctx, c.API, c.Principal, sessionID)
	return err
}
