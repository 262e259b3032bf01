package tasks

import (
	"context"

	"caradmin/internal/domain/lead"
)

// Upstream is the part of the backend client the task screens use
type Upstream interface {
	MyTasks(ctx context.Context, status string, completed *bool) ([]lead.Task, error)
	UpdateLeadTask(ctx context.Context, taskID int64, in lead.TaskUpdate) (*lead.Task, error)
	DeleteLeadTask(ctx context.Context, taskID int64) error
}
