package backend

import (
	"context"
	"net/http"

	"caradmin/internal/domain/admin"
)

func (c *Client) ListAdmins(ctx context.Context) ([]admin.Admin, error) {
	var out []admin.Admin
	err := c.getJSON(ctx, "/admins/all", nil, &out)
	return out, err
}

func (c *Client) GetAdmin(ctx context.Context, id int64) (*admin.Admin, error) {
	var out admin.Admin
	if err := c.getJSON(ctx, "/admins/admin/"+itoa(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateAdmin(ctx context.Context, req admin.CreateRequest) (*admin.Admin, error) {
	var out admin.Admin
	if err := c.sendJSON(ctx, http.MethodPost, "/admins/admin", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateAdmin(ctx context.Context, id int64, req admin.UpdateRequest) (*admin.Admin, error) {
	var out admin.Admin
	if err := c.sendJSON(ctx, http.MethodPut, "/admins/admin/"+itoa(id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteAdmin(ctx context.Context, id int64) error {
	return c.sendJSON(ctx, http.MethodDelete, "/admins/admin/"+itoa(id), nil, nil)
}

func (c *Client) RestoreAdmin(ctx context.Context, id int64) error {
	return c.getJSON(ctx, "/admins/admin/"+itoa(id)+"/restore", nil, nil)
}
