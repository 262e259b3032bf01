package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"caradmin/internal/domain/chat"
)

type watch struct {
	feed   *Feed
	cancel context.CancelFunc
	done   chan struct{}
}

// Watcher runs one Feed per chat session that has viewers and broadcasts
// what the feeds deliver through the hub.
type Watcher struct {
	hub      *Hub
	interval time.Duration
	pushURL  string
	log      *slog.Logger

	mu      sync.Mutex
	feeds   map[string]*watch
	baseCtx context.Context
	stop    context.CancelFunc
}

func NewWatcher(hub *Hub, interval time.Duration, pushURL string, log *slog.Logger) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		hub:      hub,
		interval: interval,
		pushURL:  pushURL,
		log:      log,
		feeds:    make(map[string]*watch),
		baseCtx:  ctx,
		stop:     cancel,
	}
}

// RoomOpened starts following a session with the first viewer's credentials.
func (w *Watcher) RoomOpened(sessionID string, c *Client) {
	if c.API == nil {
		return
	}
	w.Watch(sessionID, c.API, c.API.Token())
}

func (w *Watcher) RoomClosed(sessionID string) {
	w.Unwatch(sessionID)
}

// Watch starts a feed for sessionID unless one is running or the room is
// already empty again.
func (w *Watcher) Watch(sessionID string, source Source, token string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.feeds[sessionID]; ok || w.baseCtx.Err() != nil {
		return
	}
	// хаб зовёт слушателя вне своей блокировки, события могут прийти не по порядку
	if w.hub.Viewers(sessionID) == 0 {
		return
	}

	feed := NewFeed(sessionID, source, FeedOptions{
		Interval: w.interval,
		PushURL:  w.pushURL,
		Token:    token,
		Logger:   w.log,
	}, func(m chat.Message) {
		w.hub.Broadcast(sessionID, Event{Type: EventMessage, SessionID: sessionID, Message: &m})
	})

	ctx, cancel := context.WithCancel(w.baseCtx)
	wt := &watch{feed: feed, cancel: cancel, done: make(chan struct{})}
	w.feeds[sessionID] = wt

	go func() {
		defer close(wt.done)
		err := feed.Run(ctx)
		w.forget(sessionID, wt)
		if err != nil {
			w.log.Warn("chat feed stopped", "session_id", sessionID, "error", err)
			w.hub.Broadcast(sessionID, Event{Type: EventFeedStopped, SessionID: sessionID, Error: err.Error()})
		}
	}()
}

func (w *Watcher) forget(sessionID string, wt *watch) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.feeds[sessionID] == wt {
		delete(w.feeds, sessionID)
	}
}

// Unwatch stops the feed of sessionID and waits for it. A room that got a
// new viewer in the meantime keeps its feed.
func (w *Watcher) Unwatch(sessionID string) {
	w.mu.Lock()
	if w.hub.Viewers(sessionID) > 0 {
		w.mu.Unlock()
		return
	}
	wt, ok := w.feeds[sessionID]
	delete(w.feeds, sessionID)
	w.mu.Unlock()

	if ok {
		wt.cancel()
		<-wt.done
	}
}

// Offer hands a message sent from the console to the session's feed so the
// poll loop does not deliver it a second time.
func (w *Watcher) Offer(sessionID string, m chat.Message) error {
	w.mu.Lock()
	wt, ok := w.feeds[sessionID]
	w.mu.Unlock()
	if !ok {
		return chat.ErrNotWatching
	}
	wt.feed.Offer(PathSend, m)
	return nil
}

// Watching returns the number of running feeds.
func (w *Watcher) Watching() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.feeds)
}

// Close stops every feed.
func (w *Watcher) Close() {
	w.stop()
	w.mu.Lock()
	all := make([]*watch, 0, len(w.feeds))
	for id, wt := range w.feeds {
		all = append(all, wt)
		delete(w.feeds, id)
	}
	w.mu.Unlock()

	for _, wt := range all {
		<-wt.done
	}
}
