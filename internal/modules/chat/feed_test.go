package chat

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caradmin/internal/backend"
	"caradmin/internal/domain/chat"
	"caradmin/internal/pkg/slogx"
)

type fakeSource struct {
	mu    sync.Mutex
	msgs  []chat.Message
	err   error
	calls int
}

func (s *fakeSource) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *fakeSource) set(msgs ...chat.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = msgs
}

func (s *fakeSource) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *fakeSource) ChatMessages(context.Context, string) ([]chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return append([]chat.Message(nil), s.msgs...), s.err
}

type collector struct {
	mu  sync.Mutex
	got []chat.Message
}

func (c *collector) add(m chat.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, m)
}

func (c *collector) texts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.got))
	for _, m := range c.got {
		out = append(out, m.Message)
	}
	return out
}

func msg(id int64, text string) chat.Message {
	return chat.Message{ID: id, SessionID: "s1", Message: text, SenderType: chat.SenderClient}
}

func TestFeed_OfferDeduplicates(t *testing.T) {
	var col collector
	f := NewFeed("s1", &fakeSource{}, FeedOptions{Logger: slogx.Discard()}, col.add)

	assert.True(t, f.Offer(PathPush, msg(1, "привет")))
	assert.False(t, f.Offer(PathPoll, msg(1, "привет")))
	assert.False(t, f.Offer(PathPoll, chat.Message{ID: 5, SessionID: "other", Message: "x"}))

	// unsaved messages are keyed by their content
	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	tmp := chat.Message{SessionID: "s1", Message: "без id", CreatedAt: &at}
	assert.True(t, f.Offer(PathPush, tmp))
	assert.False(t, f.Offer(PathPoll, tmp))

	assert.Equal(t, []string{"привет", "без id"}, col.texts())
}

func TestFeed_PollDeliversOnlyNew(t *testing.T) {
	src := &fakeSource{}
	src.set(msg(1, "старое"))
	var col collector
	f := NewFeed("s1", src, FeedOptions{Interval: 10 * time.Millisecond, Logger: slogx.Discard()}, col.add)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()

	// wait for the priming read
	require.Eventually(t, func() bool { return src.count() >= 1 }, time.Second, time.Millisecond)
	src.set(msg(1, "старое"), msg(2, "новое"))

	require.Eventually(t, func() bool { return len(col.texts()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, []string{"новое"}, col.texts())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("feed did not stop")
	}
}

func TestFeed_StopsOnUnauthorized(t *testing.T) {
	src := &fakeSource{err: backend.ErrUnauthorized}
	f := NewFeed("s1", src, FeedOptions{Interval: 10 * time.Millisecond, Logger: slogx.Discard()}, func(chat.Message) {})

	err := f.Run(context.Background())
	assert.ErrorIs(t, err, backend.ErrUnauthorized)
}

func TestFeed_PushAndPollMerge(t *testing.T) {
	var (
		mu                  sync.Mutex
		gotAuth, gotSession string
	)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotAuth = r.Header.Get("Authorization")
		gotSession = r.URL.Query().Get("sessionId")
		mu.Unlock()
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"message","message":{"id":7,"sessionId":"s1","message":"из пуша","senderType":"client"}}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	src := &fakeSource{}
	var col collector
	f := NewFeed("s1", src, FeedOptions{
		Interval: 10 * time.Millisecond,
		PushURL:  "ws" + strings.TrimPrefix(srv.URL, "http"),
		Token:    "up-token",
		Logger:   slogx.Discard(),
	}, col.add)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = f.Run(ctx) }()

	require.Eventually(t, func() bool { return len(col.texts()) == 1 }, time.Second, 5*time.Millisecond)

	// the poll path sees the same message later
	src.set(msg(7, "из пуша"))
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, []string{"из пуша"}, col.texts())
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "up-token", gotAuth)
	assert.Equal(t, "s1", gotSession)
}

func TestDecodePush(t *testing.T) {
	m, ok := decodePush([]byte(`{"id":3,"sessionId":"s1","message":"bare"}`))
	require.True(t, ok)
	assert.Equal(t, "bare", m.Message)

	m, ok = decodePush([]byte(`{"type":"message","message":{"id":4,"message":"wrapped"}}`))
	require.True(t, ok)
	assert.Equal(t, int64(4), m.ID)

	_, ok = decodePush([]byte(`{"type":"typing"}`))
	assert.False(t, ok)
	_, ok = decodePush([]byte(`{`))
	assert.False(t, ok)
}

func TestFeed_PrimeRetriedBeforeDelivering(t *testing.T) {
	src := &fakeSource{err: errors.New("backend down")}
	src.set(msg(1, "старое"), msg(2, "тоже старое"))
	var col collector
	f := NewFeed("s1", src, FeedOptions{Interval: 10 * time.Millisecond, Logger: slogx.Discard()}, col.add)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = f.Run(ctx) }()

	require.Eventually(t, func() bool { return src.count() >= 1 }, time.Second, time.Millisecond)
	src.fail(nil)
	require.Eventually(t, f.isPrimed, time.Second, 5*time.Millisecond)
	assert.Empty(t, col.texts())

	src.set(msg(1, "старое"), msg(2, "тоже старое"), msg(3, "новое"))
	require.Eventually(t, func() bool { return len(col.texts()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, []string{"новое"}, col.texts())
}

func TestFeed_PruneKeepsHistoryAndRecentKeys(t *testing.T) {
	var col collector
	f := NewFeed("s1", &fakeSource{}, FeedOptions{Interval: 10 * time.Millisecond, Logger: slogx.Discard()}, col.add)
	clock := time.Date(2024, 6, 14, 12, 0, 0, 0, time.UTC)
	f.now = func() time.Time { return clock }

	f.Offer(PathPush, msg(1, "в истории"))
	f.Offer(PathPush, msg(2, "пропал из истории"))
	require.Equal(t, 2, f.Seen())

	clock = clock.Add(2 * time.Minute)
	f.Offer(PathSend, msg(3, "только что"))
	f.prune([]chat.Message{msg(1, "в истории")})

	assert.Equal(t, 2, f.Seen())
	assert.False(t, f.Offer(PathPoll, msg(1, "в истории")))
	assert.False(t, f.Offer(PathPoll, msg(3, "только что")))

	clock = clock.Add(2 * time.Minute)
	f.prune([]chat.Message{msg(1, "в истории")})
	assert.Equal(t, 1, f.Seen())
}

func TestWatcher_LateRoomEvents(t *testing.T) {
	hub := NewHub(slogx.Discard())
	w := NewWatcher(hub, 10*time.Millisecond, "", slogx.Discard())
	defer w.Close()
	src := &fakeSource{}

	a := &Client{hub: hub, send: make(chan []byte, 1), rooms: make(map[string]bool)}
	b := &Client{hub: hub, send: make(chan []byte, 1), rooms: make(map[string]bool)}

	hub.join(a, "s1")
	w.Watch("s1", src, "")
	require.Equal(t, 1, w.Watching())

	// a leaves as the last viewer, b joins before a's close event arrives
	hub.mu.Lock()
	require.True(t, hub.leaveLocked(a, "s1"))
	hub.mu.Unlock()
	hub.join(b, "s1")
	w.RoomClosed("s1")

	assert.Equal(t, 1, hub.Viewers("s1"))
	assert.Equal(t, 1, w.Watching())

	// the room empties and a late open event must not restart the feed
	hub.leave(b, "s1")
	w.RoomClosed("s1")
	require.Equal(t, 0, w.Watching())
	w.Watch("s1", src, "")
	assert.Equal(t, 0, w.Watching())
}
