package chat

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"caradmin/internal/backend"
	"caradmin/internal/domain/chat"
	"caradmin/internal/pkg/metrics"
)

// Delivery paths, also used as the metrics label.
const (
	PathPoll = "poll"
	PathPush = "push"
	PathSend = "send"
)

const (
	pushBackoffMin = time.Second
	pushBackoffMax = 30 * time.Second

	// keys missing from the polled history are kept this many intervals
	seenIntervals = 10
	seenMinKeep   = time.Minute
)

// FeedOptions configures how a feed reaches the backend.
type FeedOptions struct {
	Interval time.Duration
	PushURL  string
	Token    string
	Logger   *slog.Logger
}

// Feed follows one chat session. A poll loop and an optional upstream
// websocket both hand messages to Offer, which delivers each message once.
type Feed struct {
	sessionID string
	source    Source
	opts      FeedOptions
	deliver   func(chat.Message)

	mu     sync.Mutex
	seen   map[string]time.Time
	primed bool
	now    func() time.Time
}

func NewFeed(sessionID string, source Source, opts FeedOptions, deliver func(chat.Message)) *Feed {
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Feed{
		sessionID: sessionID,
		source:    source,
		opts:      opts,
		deliver:   deliver,
		seen:      make(map[string]time.Time),
		now:       time.Now,
	}
}

// Run blocks until ctx is cancelled or the backend rejects the session.
func (f *Feed) Run(ctx context.Context) error {
	// history is already on screen, only new messages are delivered
	if err := f.prime(ctx); err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			return err
		}
		f.opts.Logger.Warn("chat feed prime failed", "session_id", f.sessionID, "error", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return f.poll(ctx) })
	if f.opts.PushURL != "" {
		g.Go(func() error { return f.push(ctx) })
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (f *Feed) prime(ctx context.Context) error {
	msgs, err := f.source.ChatMessages(ctx, f.sessionID)
	if err != nil {
		return err
	}
	f.remember(msgs)
	return nil
}

// remember marks msgs as already shown without delivering them.
func (f *Feed) remember(msgs []chat.Message) {
	now := f.now()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range msgs {
		f.seen[msgs[i].Key()] = now
	}
	f.primed = true
}

func (f *Feed) isPrimed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.primed
}

// prune drops keys that left the polled history and are older than the
// keep window. Keys still in history stay, so they are never delivered twice.
func (f *Feed) prune(history []chat.Message) {
	inHistory := make(map[string]struct{}, len(history))
	for i := range history {
		inHistory[history[i].Key()] = struct{}{}
	}
	keep := seenIntervals * f.opts.Interval
	if keep < seenMinKeep {
		keep = seenMinKeep
	}
	now := f.now()

	f.mu.Lock()
	defer f.mu.Unlock()
	for key, at := range f.seen {
		if _, ok := inHistory[key]; ok {
			continue
		}
		if now.Sub(at) > keep {
			delete(f.seen, key)
		}
	}
}

// Seen returns the size of the dedupe set.
func (f *Feed) Seen() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}

// Offer is the merge step. It reports whether m was new.
func (f *Feed) Offer(path string, m chat.Message) bool {
	if m.SessionID == "" {
		m.SessionID = f.sessionID
	}
	if m.SessionID != f.sessionID {
		return false
	}

	key := m.Key()
	now := f.now()
	f.mu.Lock()
	_, dup := f.seen[key]
	if !dup {
		f.seen[key] = now
	}
	f.mu.Unlock()

	metrics.RecordChatDelivery(path, dup)
	if dup {
		return false
	}
	f.deliver(m)
	return true
}

func (f *Feed) poll(ctx context.Context) error {
	ticker := time.NewTicker(f.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			msgs, err := f.source.ChatMessages(ctx, f.sessionID)
			if errors.Is(err, backend.ErrUnauthorized) {
				return err
			}
			if err != nil {
				if ctx.Err() == nil {
					f.opts.Logger.Warn("chat poll failed", "session_id", f.sessionID, "error", err)
				}
				continue
			}
			if !f.isPrimed() {
				f.remember(msgs)
				continue
			}
			for _, m := range msgs {
				f.Offer(PathPoll, m)
			}
			f.prune(msgs)
		}
	}
}

// push keeps an upstream websocket open, reconnecting with backoff.
func (f *Feed) push(ctx context.Context) error {
	backoff := pushBackoffMin
	for {
		err := f.pushOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		f.opts.Logger.Warn("chat push disconnected", "session_id", f.sessionID, "error", err, "retry_in", backoff)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > pushBackoffMax {
			backoff = pushBackoffMax
		}
	}
}

func (f *Feed) pushOnce(ctx context.Context) error {
	u, err := url.Parse(f.opts.PushURL)
	if err != nil {
		return err
	}
	q := u.Query()
	q.Set("sessionId", f.sessionID)
	u.RawQuery = q.Encode()

	header := http.Header{}
	if f.opts.Token != "" {
		header.Set("Authorization", f.opts.Token)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if err != nil {
		return err
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if m, ok := decodePush(data); ok {
			f.Offer(PathPush, m)
		}
	}
}

// decodePush accepts either {"type":"message","message":{...}} or a bare
// message object.
func decodePush(data []byte) (chat.Message, bool) {
	if !gjson.ValidBytes(data) {
		return chat.Message{}, false
	}
	raw := data
	if inner := gjson.GetBytes(data, "message"); inner.IsObject() {
		raw = []byte(inner.Raw)
	}

	var m chat.Message
	if err := json.Unmarshal(raw, &m); err != nil || m.Message == "" {
		return chat.Message{}, false
	}
	return m, true
}
