// Package export generates the YML catalog and keeps a history of what was
// exported. The same Service serves the HTTP endpoint, the cron snapshot and
// the ymlexport command.
package export

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"caradmin/internal/domain"
	"caradmin/internal/domain/car"
	"caradmin/internal/pkg/metrics"
	"caradmin/internal/pkg/slogx"
	"caradmin/internal/pkg/ymlfeed"
)

// CarSource lists every car of the dealership
type CarSource interface {
	AllCars(ctx context.Context) ([]car.Car, error)
}

// History persists export records
type History interface {
	Create(ctx context.Context, e *domain.FeedExport) error
	List(ctx context.Context, limit int) ([]domain.FeedExport, error)
}

// Export is a generated catalog with its history record
type Export struct {
	Document string
	Record   domain.FeedExport
}

type Service struct {
	history History
	shop    ymlfeed.ShopConfig
	now     func() time.Time
	log     *slog.Logger
}

func NewService(history History, shop ymlfeed.ShopConfig, log *slog.Logger) *Service {
	if log == nil {
		log = slogx.Discard()
	}
	return &Service{history: history, shop: shop, now: time.Now, log: log}
}

// Generate builds the catalog from the current cars. A failure to write the
// history record is logged and does not fail the export.
func (s *Service) Generate(ctx context.Context, src CarSource, trigger domain.FeedTrigger, adminID *int64) (*Export, error) {
	cars, err := src.AllCars(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cars: %w", err)
	}

	now := s.now()
	res := ymlfeed.Build(cars, now, s.shop)
	sum := sha256.Sum256([]byte(res.Document))

	out := &Export{
		Document: res.Document,
		Record: domain.FeedExport{
			AdminID:   adminID,
			Trigger:   trigger,
			Offers:    res.Offers,
			Skipped:   res.Skipped,
			Bytes:     len(res.Document),
			SHA256:    hex.EncodeToString(sum[:]),
			FileName:  ymlfeed.FileName(now),
			CreatedAt: now.UTC(),
		},
	}

	metrics.RecordFeedExport(string(trigger), res.Offers)
	if s.history != nil {
		if err := s.history.Create(ctx, &out.Record); err != nil {
			s.log.Warn("feed_export_not_recorded", "trigger", trigger, "err", err)
		}
	}
	s.log.Info("feed_exported",
		"trigger", trigger,
		"offers", res.Offers,
		"skipped", res.Skipped,
		"bytes", out.Record.Bytes,
	)
	return out, nil
}

// History returns the latest exports, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]domain.FeedExport, error) {
	if s.history == nil {
		return []domain.FeedExport{}, nil
	}
	list, err := s.history.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list feed exports: %w", err)
	}
	return list, nil
}

// SnapshotJob is the cron job that regenerates the catalog on schedule.
func (s *Service) SnapshotJob(src CarSource, timeout time.Duration) func() error {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_, err := s.Generate(ctx, src, domain.FeedTriggerCron, nil)
		return err
	}
}
