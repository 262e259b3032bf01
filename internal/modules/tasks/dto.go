package tasks

import (
	"fmt"
	"strings"
	"time"

	"caradmin/internal/domain/lead"
	"caradmin/internal/pkg/pipeline"
	"caradmin/internal/pkg/taskscript"
)

// TaskView is a task with the labels shown on the board
type TaskView struct {
	lead.Task
	StatusLabel string         `json:"statusLabel"`
	TypeLabel   string         `json:"typeLabel"`
	Stage       pipeline.Stage `json:"stage,omitempty"`
	Overdue     bool           `json:"overdue"`
}

func newTaskView(t lead.Task, now time.Time) TaskView {
	v := TaskView{
		Task:        t,
		StatusLabel: t.Status.Label(),
		TypeLabel:   lead.TaskTypeLabel(t.TaskType),
		Overdue:     t.Overdue(now),
	}
	if st, ok := pipeline.StageForTaskType(t.TaskType); ok {
		v.Stage = st
	}
	return v
}

// Group is one lead on the board
type Group struct {
	LeadID   int64      `json:"leadId"`
	LeadName string     `json:"leadName"`
	Tasks    []TaskView `json:"tasks"`
	Open     int        `json:"open"`
	Total    int        `json:"total"`
	Hidden   int        `json:"hidden"`
	Expanded bool       `json:"expanded"`
}

// Board is the "my tasks" screen
type Board struct {
	Groups  []Group `json:"groups"`
	Total   int     `json:"total"`
	Open    int     `json:"open"`
	Overdue int     `json:"overdue"`
}

// FormResponse is the question form of a task
type FormResponse struct {
	TaskID      int64              `json:"taskId"`
	Fields      []taskscript.Field `json:"fields"`
	Missing     []string           `json:"missing"`
	CanComplete bool               `json:"canComplete"`
}

// CompleteRequest is the body of POST /tasks/:id/complete
type CompleteRequest struct {
	Values   map[string]string `json:"values"`
	TaskData map[string]any    `json:"taskData"`
}

// FormatRequest is the body of POST /tasks/format
type FormatRequest struct {
	Description string `json:"description" validate:"required"`
}

// MissingFieldsError lists the required form fields left empty
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("required fields are empty: %s", strings.Join(e.Fields, ", "))
}

func (e *MissingFieldsError) Unwrap() error { return lead.ErrRequiredFields }
