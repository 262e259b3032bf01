// Package dashboard builds the console start page: leads nobody took,
// the operator's cars of the week and chats waiting for an answer.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"caradmin/internal/domain"
	"caradmin/internal/domain/car"
	"caradmin/internal/domain/chat"
	"caradmin/internal/domain/lead"
)

const (
	shownLeads = 5
	shownChats = 5
	week       = 7 * 24 * time.Hour
)

// Upstream is the part of the backend client the dashboard reads
type Upstream interface {
	ListLeads(ctx context.Context, f lead.Filter) ([]lead.Lead, error)
	CarsByAdmin(ctx context.Context, adminID int64) ([]car.Car, error)
	ChatSessions(ctx context.Context) ([]chat.Session, error)
}

// LeadRow is an unassigned lead card
type LeadRow struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Phone       string        `json:"phone,omitempty"`
	Source      lead.Source   `json:"source"`
	SourceLabel string        `json:"sourceLabel"`
	Priority    lead.Priority `json:"priority"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// ChatRow is a chat waiting for an answer
type ChatRow struct {
	SessionID     string     `json:"sessionId"`
	ClientName    string     `json:"clientName,omitempty"`
	Unread        int        `json:"unread"`
	LastMessageAt *time.Time `json:"lastMessageAt,omitempty"`
}

// CarRow is a car added by the operator this week
type CarRow struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Price     float64   `json:"price"`
	IsSold    bool      `json:"isSold"`
	CreatedAt time.Time `json:"createdAt"`
}

type Dashboard struct {
	UnassignedLeads []LeadRow `json:"unassignedLeads"`
	UnassignedTotal int       `json:"unassignedTotal"`
	CarsThisWeek    []CarRow  `json:"carsThisWeek"`
	AwaitingChats   []ChatRow `json:"awaitingChats"`
	AwaitingTotal   int       `json:"awaitingTotal"`
	Hash            string    `json:"hash"`
	RefreshSeconds  int       `json:"refreshSeconds"`
	GeneratedAt     time.Time `json:"generatedAt"`
}

type Service struct {
	refresh time.Duration
	now     func() time.Time
}

func NewService(refresh time.Duration) *Service {
	return &Service{refresh: refresh, now: time.Now}
}

// Build loads the three blocks concurrently. Any failed call fails the page.
func (s *Service) Build(ctx context.Context, api Upstream, p domain.Principal) (*Dashboard, error) {
	var (
		leads    []lead.Lead
		cars     []car.Car
		sessions []chat.Session
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		leads, err = api.ListLeads(gctx, lead.Filter{})
		if err != nil {
			return fmt.Errorf("dashboard leads: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		cars, err = api.CarsByAdmin(gctx, p.AdminID)
		if err != nil {
			return fmt.Errorf("dashboard cars: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		sessions, err = api.ChatSessions(gctx)
		if err != nil {
			return fmt.Errorf("dashboard chats: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := s.now()
	d := &Dashboard{
		UnassignedLeads: []LeadRow{},
		CarsThisWeek:    []CarRow{},
		AwaitingChats:   []ChatRow{},
		RefreshSeconds:  int(s.refresh.Seconds()),
		GeneratedAt:     now.UTC(),
	}

	for i := range leads {
		l := &leads[i]
		if !l.IsUnassigned() {
			continue
		}
		// менеджер по лидам видит лиды всех офисов
		if !p.IsLeadManager && p.ProjectID != "" && l.ProjectID != p.ProjectID {
			continue
		}
		d.UnassignedTotal++
		if len(d.UnassignedLeads) < shownLeads {
			d.UnassignedLeads = append(d.UnassignedLeads, LeadRow{
				ID:          l.ID,
				Name:        l.Name,
				Phone:       l.Phone,
				Source:      l.Source,
				SourceLabel: l.Source.Label(),
				Priority:    l.Priority,
				CreatedAt:   l.CreatedAt,
			})
		}
	}

	since := now.Add(-week)
	for i := range cars {
		c := &cars[i]
		if !c.AddedSince(since) {
			continue
		}
		d.CarsThisWeek = append(d.CarsThisWeek, CarRow{
			ID:        c.ID,
			Title:     fmt.Sprintf("%s %s", c.Brand, c.Model),
			Price:     c.Price,
			IsSold:    c.IsSold,
			CreatedAt: c.CreatedAt,
		})
	}

	for i := range sessions {
		sess := &sessions[i]
		if !p.IsSuper && p.ProjectID != "" && sess.ProjectID != p.ProjectID {
			continue
		}
		unread := sess.Unread()
		if unread == 0 {
			continue
		}
		d.AwaitingTotal++
		if len(d.AwaitingChats) < shownChats {
			d.AwaitingChats = append(d.AwaitingChats, ChatRow{
				SessionID:     sess.SessionID,
				ClientName:    sess.ClientName,
				Unread:        unread,
				LastMessageAt: sess.LastMessageAt,
			})
		}
	}

	d.Hash = fmt.Sprintf("%d-%d-%d", d.UnassignedTotal, len(d.CarsThisWeek), d.AwaitingTotal)
	return d, nil
}
