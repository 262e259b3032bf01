package dashboard

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caradmin/internal/domain"
	"caradmin/internal/modules/moduletest"
)

var now = time.Date(2024, 6, 14, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T, p domain.Principal) (*moduletest.Upstream, http.Handler) {
	t.Helper()
	up := moduletest.NewUpstream(t)
	svc := NewService(5 * time.Minute)
	svc.now = func() time.Time { return now }
	r, protected := moduletest.Router(p, up.URL)
	NewHandler(svc).RegisterRoutes(protected)

	leads := "["
	for i := 1; i <= 7; i++ {
		if i > 1 {
			leads += ","
		}
		leads += fmt.Sprintf(`{"id":%d,"name":"Лид %d","source":"chat","projectId":"office_1"}`, i, i)
	}
	leads += `,{"id":8,"name":"Чужой","projectId":"office_2"}`
	leads += `,{"id":9,"name":"Взят","projectId":"office_1","assignedAdminId":3}]`
	up.On("GET /leads", 200, leads)

	up.On("GET /cars/by-admin/3", 200, `[
		{"id":1,"brand":"BMW","model":"X5","price":5500000,"createdAt":"2024-06-13T10:00:00Z"},
		{"id":2,"brand":"Kia","model":"Rio","createdAt":"2024-06-01T10:00:00Z"}]`)
	up.On("GET /chat/sessions", 200, `[
		{"sessionId":"a","projectId":"office_1","unreadCount":2},
		{"sessionId":"b","projectId":"office_1","unreadCount":0},
		{"sessionId":"c","projectId":"office_2","unreadCount":1}]`)
	return up, r
}

func TestDashboard_Operator(t *testing.T) {
	_, r := setup(t, domain.Principal{AdminID: 3, ProjectID: "office_1"})

	w := moduletest.Do(r, http.MethodGet, "/api/v1/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var d Dashboard
	moduletest.Data(t, w, &d)
	assert.Equal(t, 7, d.UnassignedTotal)
	require.Len(t, d.UnassignedLeads, 5)
	assert.Equal(t, "Чат", d.UnassignedLeads[0].SourceLabel)
	require.Len(t, d.CarsThisWeek, 1)
	assert.Equal(t, "BMW X5", d.CarsThisWeek[0].Title)
	require.Len(t, d.AwaitingChats, 1)
	assert.Equal(t, "a", d.AwaitingChats[0].SessionID)
	assert.Equal(t, "7-1-1", d.Hash)
	assert.Equal(t, 300, d.RefreshSeconds)
	assert.Equal(t, `"7-1-1"`, w.Header().Get("ETag"))
}

func TestDashboard_LeadManagerSeesAllOffices(t *testing.T) {
	_, r := setup(t, domain.Principal{AdminID: 3, ProjectID: "office_1", IsLeadManager: true})

	w := moduletest.Do(r, http.MethodGet, "/api/v1/dashboard", nil)
	var d Dashboard
	moduletest.Data(t, w, &d)
	assert.Equal(t, 8, d.UnassignedTotal)
	// chats still follow the office
	assert.Equal(t, 1, d.AwaitingTotal)
}

func TestDashboard_NotModified(t *testing.T) {
	_, r := setup(t, domain.Principal{AdminID: 3, ProjectID: "office_1"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	req.Header.Set("Authorization", "Bearer t")
	req.Header.Set("If-None-Match", `"7-1-1"`)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotModified, w.Code)
}

func TestDashboard_UpstreamFailure(t *testing.T) {
	up, r := setup(t, domain.Principal{AdminID: 3})
	up.On("GET /chat/sessions", 500, `{"message":"boom"}`)

	w := moduletest.Do(r, http.MethodGet, "/api/v1/dashboard", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "UPSTREAM_ERROR", moduletest.ErrorCode(t, w))
}
