package export

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caradmin/internal/backend"
	"caradmin/internal/database"
	"caradmin/internal/domain"
	"caradmin/internal/modules/moduletest"
	"caradmin/internal/pkg/slogx"
	"caradmin/internal/pkg/ymlfeed"
	"caradmin/internal/repository"
)

var exportTime = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

const carsJSON = `[
	{"id":1,"brand":"BMW","model":"X5","year":2020,"mileage":50000,"vin":"VIN1","price":5500000},
	{"id":2,"brand":"Kia","model":"Rio","price":900000,"isSold":true}]`

func newRepo(t *testing.T) *repository.FeedExportRepository {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect(fmt.Sprintf("file:export_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return repository.NewFeedExportRepository(db)
}

func newService(t *testing.T) (*Service, *repository.FeedExportRepository) {
	t.Helper()
	repo := newRepo(t)
	svc := NewService(repo, ymlfeed.DefaultShop(), slogx.Discard())
	svc.now = func() time.Time { return exportTime }
	return svc, repo
}

func setup(t *testing.T) (*moduletest.Upstream, http.Handler, *repository.FeedExportRepository) {
	t.Helper()
	up := moduletest.NewUpstream(t)
	up.On("GET /cars/all", 200, carsJSON)
	svc, repo := newService(t)
	r, protected := moduletest.Router(domain.Principal{AdminID: 7}, up.URL)
	NewHandler(svc).RegisterRoutes(protected)
	return up, r, repo
}

func TestYML_Inline(t *testing.T) {
	_, r, repo := setup(t)

	w := moduletest.Do(r, http.MethodGet, "/api/v1/export/yml", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, `<?xml version="1.0" encoding="UTF-8"?><yml_catalog date="2024-03-01T09:30:00.000Z">`))
	assert.Contains(t, body, `<offer id="1" available="true">`)
	assert.NotContains(t, body, `<offer id="2"`)
	assert.Equal(t, "application/xml; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Empty(t, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "1", w.Header().Get("X-Feed-Offers"))

	list, err := repo.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	rec := list[0]
	sum := sha256.Sum256([]byte(body))
	assert.Equal(t, hex.EncodeToString(sum[:]), rec.SHA256)
	assert.Equal(t, domain.FeedTriggerHTTP, rec.Trigger)
	require.NotNil(t, rec.AdminID)
	assert.Equal(t, int64(7), *rec.AdminID)
	assert.Equal(t, 1, rec.Offers)
	assert.Equal(t, 1, rec.Skipped)
	assert.Equal(t, len(body), rec.Bytes)
}

func TestYML_Download(t *testing.T) {
	_, r, _ := setup(t)

	w := moduletest.Do(r, http.MethodGet, "/api/v1/export/yml?download=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="adenatrans-catalog-2024-03-01.yml"`, w.Header().Get("Content-Disposition"))
}

func TestYML_UpstreamFailureNotRecorded(t *testing.T) {
	up, r, repo := setup(t)
	up.On("GET /cars/all", 500, `{"message":"db down"}`)

	w := moduletest.Do(r, http.MethodGet, "/api/v1/export/yml", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "UPSTREAM_ERROR", moduletest.ErrorCode(t, w))

	list, err := repo.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestHistory(t *testing.T) {
	_, r, _ := setup(t)
	for i := 0; i < 3; i++ {
		w := moduletest.Do(r, http.MethodGet, "/api/v1/export/yml", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := moduletest.Do(r, http.MethodGet, "/api/v1/export/history?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var out struct {
		Exports []domain.FeedExport `json:"exports"`
	}
	moduletest.Data(t, w, &out)
	assert.Len(t, out.Exports, 2)
	assert.Equal(t, "adenatrans-catalog-2024-03-01.yml", out.Exports[0].FileName)
}

func TestSnapshotJob(t *testing.T) {
	up := moduletest.NewUpstream(t)
	up.On("GET /cars/all", 200, carsJSON)
	svc, repo := newService(t)

	client := backend.New(up.URL, backend.WithLogger(slogx.Discard()))
	require.NoError(t, svc.SnapshotJob(client, time.Second)())

	latest, err := repo.Latest(context.Background())
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, domain.FeedTriggerCron, latest.Trigger)
	assert.Nil(t, latest.AdminID)

	call, ok := up.Last("GET /cars/all")
	require.True(t, ok)
	assert.Empty(t, call.Authorization)
}

func TestGenerate_WithoutHistory(t *testing.T) {
	up := moduletest.NewUpstream(t)
	up.On("GET /cars/all", 200, `[]`)
	svc := NewService(nil, ymlfeed.DefaultShop(), nil)

	exp, err := svc.Generate(context.Background(), backend.New(up.URL), domain.FeedTriggerCLI, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, exp.Record.Offers)
	assert.Contains(t, exp.Document, "<offers>\n</offers>")

	list, err := svc.History(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, list)
}
