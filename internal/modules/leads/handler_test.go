package leads

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caradmin/internal/domain"
	"caradmin/internal/domain/lead"
	"caradmin/internal/modules/moduletest"
	"caradmin/internal/pkg/pipeline"
)

var manager = domain.Principal{SessionID: "s1", AdminID: 7, Email: "m@adenatrans.ru"}

func setup(t *testing.T) (*moduletest.Upstream, http.Handler) {
	t.Helper()
	up := moduletest.NewUpstream(t)
	r, protected := moduletest.Router(manager, up.URL)
	NewHandler(NewService("https://api.adenatrans.ru")).RegisterRoutes(protected)
	return up, r
}

func TestList_LabelsAndFilter(t *testing.T) {
	up, r := setup(t)
	up.On("GET /leads", 200, `[{"id":1,"name":"Иван","status":"in_progress","priority":"urgent","source":"telegram","score":75,"pipelineStage":"qualification"}]`)

	w := moduletest.Do(r, http.MethodGet, "/api/v1/leads?status=in_progress&search=%20%D0%98%D0%B2%D0%B0%D0%BD%20", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out struct {
		Leads []LeadView `json:"leads"`
		Total int        `json:"total"`
	}
	moduletest.Data(t, w, &out)
	require.Len(t, out.Leads, 1)
	v := out.Leads[0]
	assert.Equal(t, "В работе", v.StatusLabel)
	assert.Equal(t, "Срочный", v.PriorityLabel)
	assert.Equal(t, "Telegram", v.SourceLabel)
	assert.Equal(t, "medium", v.ScoreClass)
	assert.Equal(t, 29, v.Progress)

	call, ok := up.Last("GET /leads")
	require.True(t, ok)
	assert.Contains(t, call.Query, "status=in_progress")
	assert.Contains(t, call.Query, "search=%D0%98%D0%B2%D0%B0%D0%BD")
	assert.Equal(t, moduletest.UpstreamToken, call.Authorization)
}

func TestCreate_NameRequired(t *testing.T) {
	up, r := setup(t)

	w := moduletest.Do(r, http.MethodPost, "/api/v1/leads", map[string]any{"name": "   ", "phone": "+7900"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", moduletest.ErrorCode(t, w))
	assert.Contains(t, w.Body.String(), "Имя обязательно")
	assert.Empty(t, up.Calls())
}

func TestCreate_Defaults(t *testing.T) {
	up, r := setup(t)
	up.On("POST /leads", 201, `{"id":5,"name":"Пётр","status":"new","priority":"normal","source":"other"}`)

	w := moduletest.Do(r, http.MethodPost, "/api/v1/leads", map[string]any{"name": " Пётр "})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	call, _ := up.Last("POST /leads")
	var sent map[string]any
	require.NoError(t, json.Unmarshal(call.Body, &sent))
	assert.Equal(t, "Пётр", sent["name"])
	assert.Equal(t, "new", sent["status"])
	assert.Equal(t, "normal", sent["priority"])
	assert.Equal(t, "other", sent["source"])
}

func TestMoveStage(t *testing.T) {
	up, r := setup(t)
	up.On("PUT /leads/3", 200, `{"id":3,"name":"A","pipelineStage":"presentation"}`)

	w := moduletest.Do(r, http.MethodPut, "/api/v1/leads/3/stage", StageRequest{Stage: "bogus"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", moduletest.ErrorCode(t, w))
	assert.Empty(t, up.Calls())

	w = moduletest.Do(r, http.MethodPut, "/api/v1/leads/3/stage", StageRequest{Stage: pipeline.Presentation})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	call, _ := up.Last("PUT /leads/3")
	assert.JSONEq(t, `{"pipelineStage":"presentation"}`, string(call.Body))
}

func TestAssign_NullUnassigns(t *testing.T) {
	up, r := setup(t)
	up.On("PUT /leads/3", 200, `{"id":3,"name":"A"}`)

	w := moduletest.Do(r, http.MethodPut, "/api/v1/leads/3/assign", `{"adminId":null}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	call, _ := up.Last("PUT /leads/3")
	assert.JSONEq(t, `{"assignedAdminId":null}`, string(call.Body))
}

func TestPipeline_FiltersTasks(t *testing.T) {
	up, r := setup(t)
	up.On("GET /leads/9", 200, `{"id":9,"name":"A","pipelineStage":"qualification"}`)
	up.On("GET /leads/9/tasks", 200, `[
		{"id":1,"taskType":"contact"},
		{"id":2,"taskType":"qualification"},
		{"id":3,"taskType":"budget"},
		{"id":4,"taskType":"send_offers"},
		{"id":5,"taskType":"call_grandma"}
	]`)

	w := moduletest.Do(r, http.MethodGet, "/api/v1/leads/9/pipeline", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out PipelineResponse
	moduletest.Data(t, w, &out)
	assert.Equal(t, int64(9), out.LeadID)
	assert.Equal(t, pipeline.NeedsAnalysis, out.NextStage)
	assert.Equal(t, pipeline.Qualification, out.Current)

	ids := make([]int64, 0, len(out.Tasks))
	for _, task := range out.Tasks {
		ids = append(ids, task.ID)
	}
	assert.Equal(t, []int64{2, 3, 5}, ids)
	assert.Len(t, out.ByStage[pipeline.Other], 1)
	assert.Len(t, out.ByStage[pipeline.NewLead], 1)
}

func TestStats(t *testing.T) {
	up, r := setup(t)
	up.On("GET /leads/stats/summary", 200, `{"total":10}`)
	up.On("GET /leads/stats/unprocessed-count", 200, `{"count":4}`)

	w := moduletest.Do(r, http.MethodGet, "/api/v1/leads/stats/summary", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out map[string]any
	moduletest.Data(t, w, &out)
	assert.EqualValues(t, 4, out["unprocessed"])
}

func TestComment_UsesCaller(t *testing.T) {
	up, r := setup(t)
	up.On("POST /leads/3/comments", 201, `{"id":1,"comment":"перезвонить"}`)

	w := moduletest.Do(r, http.MethodPost, "/api/v1/leads/3/comments", map[string]any{"comment": " перезвонить ", "adminId": 99})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	call, _ := up.Last("POST /leads/3/comments")
	var sent lead.CommentInput
	require.NoError(t, json.Unmarshal(call.Body, &sent))
	assert.Equal(t, int64(7), sent.AdminID)
	assert.Equal(t, "перезвонить", sent.Comment)
}

func TestCreateTask_DefaultsAssignee(t *testing.T) {
	up, r := setup(t)
	up.On("POST /leads/3/tasks", 201, `{"id":11,"title":"Позвонить","status":"pending"}`)

	w := moduletest.Do(r, http.MethodPost, "/api/v1/leads/3/tasks", map[string]any{"title": "Позвонить", "taskType": "contact"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	call, _ := up.Last("POST /leads/3/tasks")
	var sent lead.TaskInput
	require.NoError(t, json.Unmarshal(call.Body, &sent))
	assert.Equal(t, int64(7), sent.AdminID)
	assert.Equal(t, lead.TaskPending, sent.Status)
}

func TestAttachments(t *testing.T) {
	up, r := setup(t)
	up.On("GET /leads/3/attachments", 200, `[{"id":1,"fileName":"passport.pdf","filePath":"uploads/leads/passport.pdf","fileSize":2048}]`)
	up.On("POST /leads/3/attachments", 201, `{"id":2,"fileName":"offer.pdf","filePath":"uploads/leads/offer.pdf","fileSize":1536}`)

	w := moduletest.Do(r, http.MethodGet, "/api/v1/leads/3/attachments", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var list struct {
		Attachments []AttachmentView `json:"attachments"`
	}
	moduletest.Data(t, w, &list)
	require.Len(t, list.Attachments, 1)
	assert.Equal(t, "2.00 KB", list.Attachments[0].SizeLabel)
	assert.Equal(t, "https://api.adenatrans.ru/uploads/leads/passport.pdf", list.Attachments[0].URL)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "offer.pdf")
	_, _ = part.Write([]byte("%PDF-1.4\n%test"))
	require.NoError(t, mw.WriteField("description", "коммерческое предложение"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/leads/3/attachments", &buf)
	req.Header.Set("Authorization", "Bearer t")
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	call, _ := up.Last("POST /leads/3/attachments")
	assert.Contains(t, call.ContentType, "multipart/form-data")
	assert.Contains(t, string(call.Body), `filename="offer.pdf"`)
	assert.Contains(t, string(call.Body), "коммерческое предложение")
}

func TestAttachment_MissingFile(t *testing.T) {
	_, r := setup(t)
	w := moduletest.Do(r, http.MethodPost, "/api/v1/leads/3/attachments", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_FILE", moduletest.ErrorCode(t, w))
}

func TestConvert_Twice(t *testing.T) {
	up, r := setup(t)
	up.On("GET /leads/4", 200, `{"id":4,"name":"A","convertedToClient":true}`)

	w := moduletest.Do(r, http.MethodPost, "/api/v1/leads/4/convert", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ALREADY_CONVERTED", moduletest.ErrorCode(t, w))
	_, called := up.Last("POST /leads/4/convert-to-client")
	assert.False(t, called)

	up.On("GET /leads/4", 200, `{"id":4,"name":"A"}`)
	up.On("POST /leads/4/convert-to-client", 200, `{"id":4,"name":"A","convertedToClient":true}`)
	w = moduletest.Do(r, http.MethodPost, "/api/v1/leads/4/convert", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestGet_NotFound(t *testing.T) {
	_, r := setup(t)
	w := moduletest.Do(r, http.MethodGet, "/api/v1/leads/404", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", moduletest.ErrorCode(t, w))

	w = moduletest.Do(r, http.MethodGet, "/api/v1/leads/abc", nil)
	assert.Equal(t, "INVALID_ID", moduletest.ErrorCode(t, w))
}
