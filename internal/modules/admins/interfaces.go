package admins

import (
	"context"

	"caradmin/internal/domain/admin"
)

// Upstream is the part of the backend client admin screens use
type Upstream interface {
	ListAdmins(ctx context.Context) ([]admin.Admin, error)
	GetAdmin(ctx context.Context, id int64) (*admin.Admin, error)
	CreateAdmin(ctx context.Context, req admin.CreateRequest) (*admin.Admin, error)
	UpdateAdmin(ctx context.Context, id int64, req admin.UpdateRequest) (*admin.Admin, error)
	DeleteAdmin(ctx context.Context, id int64) error
	RestoreAdmin(ctx context.Context, id int64) error
}

// SessionRevoker ends console sessions of a removed admin
type SessionRevoker interface {
	RevokeByAdmin(ctx context.Context, adminID int64, reason string) (int64, error)
}
