package admins

import (
	"context"
	"log/slog"
	"time"

	"caradmin/internal/domain/admin"
	"caradmin/internal/pkg/metrics"
)

// RevokeAdminRemoved is the session revoke reason for deleted admins.
const RevokeAdminRemoved = "admin_removed"

type Service struct {
	sessions SessionRevoker
	now      func() time.Time
	log      *slog.Logger
}

func NewService(sessions SessionRevoker, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{sessions: sessions, now: time.Now, log: log}
}

// List returns all admins with their counters. Removed admins are included.
func (s *Service) List(ctx context.Context, api Upstream) (*ListResponse, error) {
	list, err := api.ListAdmins(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []admin.Admin{}
	}
	return &ListResponse{Admins: list, Summary: admin.Summarize(list)}, nil
}

// Get returns an admin with the working week filled in from defaults.
func (s *Service) Get(ctx context.Context, api Upstream, id int64) (*admin.Admin, error) {
	a, err := api.GetAdmin(ctx, id)
	if err != nil {
		return nil, err
	}
	a.WorkingDays = admin.MergeWorkingDays(a.WorkingDays)
	return a, nil
}

func (s *Service) Create(ctx context.Context, api Upstream, req admin.CreateRequest) (*admin.Admin, error) {
	return api.CreateAdmin(ctx, req)
}

func (s *Service) Update(ctx context.Context, api Upstream, id int64, req admin.UpdateRequest) (*admin.Admin, error) {
	if req.WorkingDays != nil {
		if err := admin.ValidateWorkingDays(req.WorkingDays); err != nil {
			return nil, err
		}
		req.WorkingDays = admin.ForUpstream(req.WorkingDays)
	}
	return api.UpdateAdmin(ctx, id, req)
}

// Delete removes the admin upstream and ends their console sessions.
func (s *Service) Delete(ctx context.Context, api Upstream, id int64) error {
	if err := api.DeleteAdmin(ctx, id); err != nil {
		return err
	}

	n, err := s.sessions.RevokeByAdmin(ctx, id, RevokeAdminRemoved)
	if err != nil {
		// админ уже удалён на бэкенде, его токен всё равно перестанет работать
		s.log.Warn("revoke_admin_sessions_failed", "admin_id", id, "error", err)
		return nil
	}
	for i := int64(0); i < n; i++ {
		metrics.RecordSessionRevoked(RevokeAdminRemoved)
	}
	return nil
}

func (s *Service) Restore(ctx context.Context, api Upstream, id int64) error {
	return api.RestoreAdmin(ctx, id)
}

func (s *Service) Summary(ctx context.Context, api Upstream) (admin.Summary, error) {
	list, err := api.ListAdmins(ctx)
	if err != nil {
		return admin.Summary{}, err
	}
	return admin.Summarize(list), nil
}

// WorkingHours returns the merged week and whether the admin is on shift now.
func (s *Service) WorkingHours(ctx context.Context, api Upstream, id int64) (*WorkingHoursResponse, error) {
	a, err := api.GetAdmin(ctx, id)
	if err != nil {
		return nil, err
	}
	days := admin.MergeWorkingDays(a.WorkingDays)
	return &WorkingHoursResponse{
		AdminID:     id,
		WorkingDays: days,
		WorkingNow:  admin.IsWorkingAt(days, s.now()),
	}, nil
}

// SaveWorkingHours validates and stores the week. Days that are not sent
// keep their defaults.
func (s *Service) SaveWorkingHours(ctx context.Context, api Upstream, id int64, days []admin.WorkingDay) (*WorkingHoursResponse, error) {
	merged := admin.MergeWorkingDays(days)
	if err := admin.ValidateWorkingDays(merged); err != nil {
		return nil, err
	}

	a, err := api.UpdateAdmin(ctx, id, admin.UpdateRequest{WorkingDays: admin.ForUpstream(merged)})
	if err != nil {
		return nil, err
	}
	saved := admin.MergeWorkingDays(a.WorkingDays)
	return &WorkingHoursResponse{
		AdminID:     id,
		WorkingDays: saved,
		WorkingNow:  admin.IsWorkingAt(saved, s.now()),
	}, nil
}
