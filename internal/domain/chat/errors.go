package chat

import "errors"

var (
	ErrSessionNotFound = errors.New("chat session not found")
	ErrEmptyMessage    = errors.New("message is empty")
	ErrSessionClosed   = errors.New("chat session is closed")
	ErrNotWatching     = errors.New("session is not watched")
	ErrAssignOthers    = errors.New("only a super admin can assign chats to others")
)
