package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := Registry.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if matchLabels(m.GetLabel(), labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func matchLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	found := 0
	for _, p := range pairs {
		if v, ok := want[p.GetName()]; ok {
			if v != p.GetValue() {
				return false
			}
			found++
		}
	}
	return found == len(want)
}

func TestRecordChatDelivery(t *testing.T) {
	before := counterValue(t, "caradmin_chat_messages_delivered_total", map[string]string{"path": "poll"})
	dupBefore := counterValue(t, "caradmin_chat_messages_deduplicated_total", nil)

	RecordChatDelivery("poll", false)
	RecordChatDelivery("push", true)

	assert.Equal(t, before+1, counterValue(t, "caradmin_chat_messages_delivered_total", map[string]string{"path": "poll"}))
	assert.Equal(t, dupBefore+1, counterValue(t, "caradmin_chat_messages_deduplicated_total", nil))
}

func TestUpstreamAndHTTP(t *testing.T) {
	Upstream{}.ObserveUpstream("GET", "/cars", 200, 15*time.Millisecond)
	assert.GreaterOrEqual(t, counterValue(t, "caradmin_upstream_requests_total",
		map[string]string{"method": "GET", "route": "/cars", "status": "200"}), 1.0)

	done := HTTPStarted()
	done("POST", "", 201)
	assert.GreaterOrEqual(t, counterValue(t, "caradmin_http_requests_total",
		map[string]string{"route": "unmatched", "status": "201"}), 1.0)
}

func TestHandlerExposesRegistry(t *testing.T) {
	RecordSignin("ok")
	RecordJobRun("session_cleanup", true)

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.True(t, strings.Contains(text, `caradmin_auth_signins_total{result="ok"}`))
	assert.True(t, strings.Contains(text, `caradmin_jobs_runs_total{job="session_cleanup",success="true"}`))
}
