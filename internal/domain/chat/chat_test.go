package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMessageKey(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("MSK", 3*3600))

	assert.Equal(t, "id:12", (&Message{ID: 12, Message: "hi"}).Key())

	a := Message{SessionID: "s1", SenderType: SenderAdmin, Message: "hi", CreatedAt: &at}
	b := a
	utc := at.UTC()
	b.CreatedAt = &utc
	assert.Equal(t, a.Key(), b.Key())

	c := a
	c.Message = "bye"
	assert.NotEqual(t, a.Key(), c.Key())
}

func TestSessionUnread(t *testing.T) {
	assert.Equal(t, 3, (&Session{UnreadCount: 3}).Unread())

	s := Session{UnreadCount: 9, Messages: []Message{
		{SenderType: SenderClient},
		{SenderType: SenderClient, IsRead: true},
		{SenderType: SenderAdmin},
		{SenderType: SenderClient},
	}}
	assert.Equal(t, 2, s.Unread())
}

func TestNewAdminMessage(t *testing.T) {
	m := NewAdminMessage("s1", 7, "Здравствуйте")
	assert.Equal(t, SenderAdmin, m.SenderType)
	assert.Equal(t, int64(7), m.AdminID)
	assert.Equal(t, "car-admin", m.ProjectSource)
}
