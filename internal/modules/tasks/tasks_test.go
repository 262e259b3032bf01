package tasks

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caradmin/internal/domain"
	"caradmin/internal/domain/lead"
	"caradmin/internal/modules/moduletest"
)

var now = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func day(d int) *time.Time {
	t := now.AddDate(0, 0, d)
	return &t
}

func task(id, leadID int64, done bool, due *time.Time) lead.Task {
	return lead.Task{ID: id, LeadID: leadID, Completed: done, DueDate: due, Status: lead.TaskPending}
}

func ids(views []TaskView) []int64 {
	out := make([]int64, 0, len(views))
	for _, v := range views {
		out = append(out, v.ID)
	}
	return out
}

func TestBuildBoard_GroupsAndOrder(t *testing.T) {
	list := []lead.Task{
		task(1, 20, false, nil),
		task(2, 10, false, day(3)),
		task(3, 20, true, day(-5)),
		task(4, 20, false, day(1)),
		task(5, 20, false, day(-1)),
		task(6, 20, false, day(2)),
		task(7, 10, true, nil),
	}
	list[0].Lead = &lead.LeadRef{ID: 20, Name: "Анна"}

	b := buildBoard(list, now)
	require.Len(t, b.Groups, 2)

	first := b.Groups[0]
	assert.Equal(t, int64(20), first.LeadID)
	assert.Equal(t, "Анна", first.LeadName)
	// dated open tasks by due date, undated open after them, at most three
	assert.Equal(t, []int64{5, 4, 6}, ids(first.Tasks))
	assert.Equal(t, 4, first.Open)
	assert.Equal(t, 5, first.Total)
	assert.Equal(t, 2, first.Hidden)
	assert.True(t, first.Expanded)
	assert.True(t, first.Tasks[0].Overdue)

	second := b.Groups[1]
	assert.Equal(t, "Лид #10", second.LeadName)
	assert.Equal(t, []int64{2}, ids(second.Tasks))

	assert.Equal(t, 7, b.Total)
	assert.Equal(t, 5, b.Open)
	assert.Equal(t, 1, b.Overdue)
}

func TestBuildBoard_AllDoneShowsLastTwo(t *testing.T) {
	list := []lead.Task{
		task(1, 5, true, day(-3)),
		task(2, 5, true, nil),
		task(3, 5, true, day(-1)),
	}
	b := buildBoard(list, now)
	require.Len(t, b.Groups, 1)
	g := b.Groups[0]
	assert.Equal(t, []int64{3, 2}, ids(g.Tasks))
	assert.False(t, g.Expanded)
	assert.Equal(t, 1, g.Hidden)
}

func TestBuildBoard_Empty(t *testing.T) {
	b := buildBoard(nil, now)
	assert.NotNil(t, b.Groups)
	assert.Empty(t, b.Groups)
}

func TestDataValidator(t *testing.T) {
	v := NewDataValidator()
	assert.NoError(t, v.Validate(nil))
	assert.NoError(t, v.Validate(map[string]any{
		"email":           "ivan@example.com",
		"preferredBrands": []string{"BMW", "Audi"},
		"year":            2020,
		"budget":          "2 000 000",
		"custom":          map[string]any{"any": true},
	}))

	err := v.Validate(map[string]any{"email": "not-an-email"})
	assert.True(t, errors.Is(err, lead.ErrInvalidTaskData), err)

	err = v.Validate(map[string]any{"preferredBrands": "BMW"})
	assert.True(t, errors.Is(err, lead.ErrInvalidTaskData), err)
}

const script = `🎯 Цель: квалифицировать клиента
📋 Что узнать:
- Имя*: ___
- Телефон: +7 900 000-00-00
- Марка: ...
━━━━━━━━━━
💬 Скрипт:
Здравствуйте!`

func setup(t *testing.T) (*moduletest.Upstream, http.Handler) {
	t.Helper()
	up := moduletest.NewUpstream(t)
	r, protected := moduletest.Router(domain.Principal{SessionID: "s", AdminID: 3}, up.URL)
	NewHandler(NewService(NewDataValidator())).RegisterRoutes(protected)
	return up, r
}

func myTasks(t *testing.T, tasks ...lead.Task) string {
	t.Helper()
	data, err := json.Marshal(tasks)
	require.NoError(t, err)
	return string(data)
}

func TestForm_PrefilledFromTaskData(t *testing.T) {
	up, r := setup(t)
	up.On("GET /leads/tasks/my", 200, myTasks(t, lead.Task{
		ID: 8, LeadID: 1, Description: script,
		TaskData: map[string]any{"preferredBrands": []string{"BMW", "Kia"}},
	}))

	w := moduletest.Do(r, http.MethodGet, "/api/v1/tasks/8/form", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out FormResponse
	moduletest.Data(t, w, &out)
	require.Len(t, out.Fields, 3)
	assert.Equal(t, "BMW, Kia", out.Fields[2].Value)
	assert.Equal(t, []string{"name"}, out.Missing)
	assert.False(t, out.CanComplete)

	w = moduletest.Do(r, http.MethodGet, "/api/v1/tasks/99/form", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestComplete_RequiresFields(t *testing.T) {
	up, r := setup(t)
	up.On("GET /leads/tasks/my", 200, myTasks(t, lead.Task{ID: 8, LeadID: 1, Description: script}))

	w := moduletest.Do(r, http.MethodPost, "/api/v1/tasks/8/complete", CompleteRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "REQUIRED_FIELDS", moduletest.ErrorCode(t, w))
	assert.Contains(t, w.Body.String(), `"missing":["name"]`)
	_, sent := up.Last("PUT /leads/tasks/8")
	assert.False(t, sent)
}

func TestComplete_NormalizesAndSends(t *testing.T) {
	up, r := setup(t)
	up.On("GET /leads/tasks/my", 200, myTasks(t, lead.Task{ID: 8, LeadID: 1, Description: script}))
	up.On("PUT /leads/tasks/8", 200, `{"id":8,"status":"completed","completed":true}`)

	w := moduletest.Do(r, http.MethodPost, "/api/v1/tasks/8/complete", CompleteRequest{
		Values: map[string]string{"name": "Иван", "preferredBrands": "BMW, Audi,"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	call, ok := up.Last("PUT /leads/tasks/8")
	require.True(t, ok)
	var sent lead.TaskUpdate
	require.NoError(t, json.Unmarshal(call.Body, &sent))
	require.NotNil(t, sent.Completed)
	assert.True(t, *sent.Completed)
	assert.Equal(t, lead.TaskCompleted, *sent.Status)
	assert.Equal(t, "Иван", sent.TaskData["name"])
	assert.Equal(t, []any{"BMW", "Audi"}, sent.TaskData["preferredBrands"])
	assert.Equal(t, "+7 900 000-00-00", sent.TaskData["phone"])
}

func TestComplete_InvalidTaskData(t *testing.T) {
	up, r := setup(t)
	up.On("GET /leads/tasks/my", 200, myTasks(t, lead.Task{ID: 8, LeadID: 1, Description: script}))

	w := moduletest.Do(r, http.MethodPost, "/api/v1/tasks/8/complete", CompleteRequest{
		Values:   map[string]string{"name": "Иван"},
		TaskData: map[string]any{"email": "nope"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", moduletest.ErrorCode(t, w))
}

func TestBoard_ForwardsFilter(t *testing.T) {
	up, r := setup(t)
	up.On("GET /leads/tasks/my", 200, `[]`)

	w := moduletest.Do(r, http.MethodGet, "/api/v1/tasks/board?status=pending&completed=false", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	call, _ := up.Last("GET /leads/tasks/my")
	assert.Contains(t, call.Query, "status=pending")
	assert.Contains(t, call.Query, "completed=false")
}

func TestFormat(t *testing.T) {
	_, r := setup(t)
	w := moduletest.Do(r, http.MethodPost, "/api/v1/tasks/format", FormatRequest{Description: "🎯 Цель: **звонок**"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "task-section--goal")

	w = moduletest.Do(r, http.MethodPost, "/api/v1/tasks/format", FormatRequest{})
	assert.Equal(t, "VALIDATION_ERROR", moduletest.ErrorCode(t, w))
}
