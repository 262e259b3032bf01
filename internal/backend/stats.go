package backend

import (
	"context"

	"caradmin/internal/domain/stats"
)

func (c *Client) Productivity(ctx context.Context) ([]stats.AdminProductivity, error) {
	var out []stats.AdminProductivity
	err := c.getJSON(ctx, "/stats/productivity", nil, &out)
	return out, err
}

func (c *Client) AdminProductivity(ctx context.Context, adminID int64) (*stats.AdminProductivity, error) {
	var out stats.AdminProductivity
	if err := c.getJSON(ctx, "/stats/admin/"+itoa(adminID)+"/productivity", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CarStats(ctx context.Context) (*stats.CarStats, error) {
	var out stats.CarStats
	if err := c.getJSON(ctx, "/stats/cars", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ErrorStats(ctx context.Context) (*stats.ErrorStats, error) {
	var out stats.ErrorStats
	if err := c.getJSON(ctx, "/stats/errors", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
