package tasks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"caradmin/internal/domain/lead"
	"caradmin/internal/pkg/taskscript"
)

const (
	openShown = 3 // незавершённые задачи, видимые в группе
	doneShown = 2 // последние выполненные, если открытых нет
)

type Service struct {
	validator *DataValidator
	now       func() time.Time
}

func NewService(validator *DataValidator) *Service {
	return &Service{validator: validator, now: time.Now}
}

// Board groups the caller's tasks by lead, in the order leads first appear.
func (s *Service) Board(ctx context.Context, api Upstream, status string, completed *bool) (*Board, error) {
	list, err := api.MyTasks(ctx, status, completed)
	if err != nil {
		return nil, err
	}
	return buildBoard(list, s.now()), nil
}

func buildBoard(list []lead.Task, now time.Time) *Board {
	board := &Board{Groups: []Group{}}
	index := map[int64]int{}
	buckets := [][]lead.Task{}

	for _, t := range list {
		i, ok := index[t.LeadID]
		if !ok {
			i = len(board.Groups)
			index[t.LeadID] = i
			board.Groups = append(board.Groups, Group{LeadID: t.LeadID, LeadName: leadName(t)})
			buckets = append(buckets, nil)
		}
		buckets[i] = append(buckets[i], t)
	}

	for i := range board.Groups {
		g := &board.Groups[i]
		tasks := buckets[i]
		sortTasks(tasks)

		var open, done []lead.Task
		for _, t := range tasks {
			if t.Completed {
				done = append(done, t)
			} else {
				open = append(open, t)
			}
			if t.Overdue(now) {
				board.Overdue++
			}
		}

		visible := open
		if len(open) > openShown {
			visible = open[:openShown]
		}
		if len(open) == 0 {
			visible = done
			if len(done) > doneShown {
				visible = done[len(done)-doneShown:]
			}
		}

		g.Tasks = make([]TaskView, 0, len(visible))
		for _, t := range visible {
			g.Tasks = append(g.Tasks, newTaskView(t, now))
		}
		g.Open = len(open)
		g.Total = len(tasks)
		g.Hidden = g.Total - len(g.Tasks)
		g.Expanded = g.Open > 0

		board.Total += g.Total
		board.Open += g.Open
	}
	return board
}

// sortTasks puts open tasks first, then orders by due date with dated tasks
// ahead of undated ones.
func sortTasks(tasks []lead.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.Completed != b.Completed {
			return !a.Completed
		}
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return false
		case a.DueDate == nil:
			return false
		case b.DueDate == nil:
			return true
		}
		return a.DueDate.Before(*b.DueDate)
	})
}

func leadName(t lead.Task) string {
	if t.Lead != nil && strings.TrimSpace(t.Lead.Name) != "" {
		return t.Lead.Name
	}
	return fmt.Sprintf("Лид #%d", t.LeadID)
}

func (s *Service) find(ctx context.Context, api Upstream, id int64) (*lead.Task, error) {
	list, err := api.MyTasks(ctx, "", nil)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, lead.ErrTaskNotFound
}

// form extracts the question fields and fills them from stored taskData.
func form(t *lead.Task) taskscript.Form {
	f := taskscript.ExtractFields(t.Description)
	for _, fld := range f.Fields {
		v, ok := t.TaskData[fld.Key]
		if !ok || v == nil {
			continue
		}
		f.Set(fld.Key, displayValue(v))
	}
	return f
}

func displayValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []any, []string:
		return lead.JoinList(val)
	case float64:
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprint(val)
	}
}

func (s *Service) Form(ctx context.Context, api Upstream, id int64) (*FormResponse, error) {
	t, err := s.find(ctx, api, id)
	if err != nil {
		return nil, err
	}
	f := form(t)
	missing := f.Missing()
	if missing == nil {
		missing = []string{}
	}
	fields := f.Fields
	if fields == nil {
		fields = []taskscript.Field{}
	}
	return &FormResponse{TaskID: t.ID, Fields: fields, Missing: missing, CanComplete: f.CanComplete()}, nil
}

// Complete fills the form, checks required fields and the taskData schema
// and marks the task completed.
func (s *Service) Complete(ctx context.Context, api Upstream, id int64, req CompleteRequest) (*lead.Task, error) {
	t, err := s.find(ctx, api, id)
	if err != nil {
		return nil, err
	}

	f := form(t)
	f.Apply(req.Values)
	if !f.CanComplete() {
		return nil, &MissingFieldsError{Fields: f.Missing()}
	}

	data := make(map[string]any, len(t.TaskData)+len(req.TaskData))
	for k, v := range t.TaskData {
		data[k] = v
	}
	for k, v := range req.TaskData {
		data[k] = v
	}
	for k, v := range f.Values() {
		data[k] = v
	}

	status := lead.TaskCompleted
	upd := lead.TaskUpdate{Status: &status, TaskData: data}
	return s.update(ctx, api, id, upd)
}

func (s *Service) Update(ctx context.Context, api Upstream, id int64, upd lead.TaskUpdate) (*lead.Task, error) {
	return s.update(ctx, api, id, upd)
}

func (s *Service) update(ctx context.Context, api Upstream, id int64, upd lead.TaskUpdate) (*lead.Task, error) {
	upd.Normalize()
	if err := s.validator.Validate(upd.TaskData); err != nil {
		return nil, err
	}
	return api.UpdateLeadTask(ctx, id, upd)
}

func (s *Service) Delete(ctx context.Context, api Upstream, id int64) error {
	return api.DeleteLeadTask(ctx, id)
}
