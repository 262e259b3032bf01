package lead

import (
	"encoding/json"
	"strings"
	"time"
)

// TaskStatus is the workflow state of a task
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

// LeadRef is the short lead reference embedded in tasks
type LeadRef struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Task is a to-do item attached to a lead
type Task struct {
	ID          int64          `json:"id"`
	LeadID      int64          `json:"leadId"`
	AdminID     int64          `json:"adminId"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	TaskType    string         `json:"taskType"`
	Status      TaskStatus     `json:"status"`
	DueDate     *time.Time     `json:"dueDate,omitempty"`
	Completed   bool           `json:"completed"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
	TaskData    map[string]any `json:"taskData,omitempty"`
	Lead        *LeadRef       `json:"lead,omitempty"`
	Admin       *Person        `json:"admin,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// GetTaskType lets tasks be filtered by pipeline helpers
func (t Task) GetTaskType() string { return t.TaskType }

// Overdue is true for open tasks whose due date has passed.
func (t *Task) Overdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && !t.Completed
}

// TaskInput is the body of POST /leads/:id/tasks
type TaskInput struct {
	AdminID     int64          `json:"adminId" validate:"required"`
	Title       string         `json:"title" validate:"required"`
	Description string         `json:"description,omitempty"`
	TaskType    string         `json:"taskType,omitempty"`
	Status      TaskStatus     `json:"status,omitempty" validate:"omitempty,oneof=pending in_progress completed"`
	DueDate     *time.Time     `json:"dueDate,omitempty"`
	TaskData    map[string]any `json:"taskData,omitempty"`
}

// TaskUpdate is the body of PUT /leads/tasks/:id. Nil fields are left as is.
type TaskUpdate struct {
	Title       *string        `json:"title,omitempty"`
	Description *string        `json:"description,omitempty"`
	TaskType    *string        `json:"taskType,omitempty"`
	Status      *TaskStatus    `json:"status,omitempty" validate:"omitempty,oneof=pending in_progress completed"`
	DueDate     *time.Time     `json:"dueDate,omitempty"`
	Completed   *bool          `json:"completed,omitempty"`
	TaskData    map[string]any `json:"taskData,omitempty"`
}

// Normalize applies the console rules before an update is sent: a completed
// status marks the task completed, and CSV brand/model lists become arrays.
func (u *TaskUpdate) Normalize() {
	if u.Status != nil && *u.Status == TaskCompleted {
		done := true
		u.Completed = &done
	}
	for _, key := range []string{"preferredBrands", "preferredModels"} {
		if v, ok := u.TaskData[key]; ok {
			u.TaskData[key] = SplitList(v)
		}
	}
}

// SplitList turns "BMW, Audi,," into ["BMW", "Audi"]. Slices are cleaned the
// same way so either form round-trips.
func SplitList(v any) []string {
	var parts []string
	switch val := v.(type) {
	case string:
		parts = strings.Split(val, ",")
	case []string:
		parts = val
	case []any:
		for _, p := range val {
			if s, ok := p.(string); ok {
				parts = append(parts, s)
			}
		}
	case json.RawMessage:
		var arr []string
		if err := json.Unmarshal(val, &arr); err == nil {
			parts = arr
		}
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinList is the inverse of SplitList for form display.
func JoinList(v any) string {
	return strings.Join(SplitList(v), ", ")
}
