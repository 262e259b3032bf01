// Package moduletest wires module handlers against a fake backend for tests.
package moduletest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"caradmin/internal/backend"
	"caradmin/internal/domain"
	"caradmin/internal/middleware"
	"caradmin/internal/pkg/slogx"
)

// UpstreamToken is the backend token every test client carries.
const UpstreamToken = "up-token"

// Call is one request received by the fake backend.
type Call struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	ContentType   string
	Body          []byte
}

type reply struct {
	status int
	body   string
}

// Upstream is a fake dealership backend. Unknown routes answer 404.
type Upstream struct {
	*httptest.Server

	mu     sync.Mutex
	routes map[string]reply
	calls  []Call
}

func NewUpstream(t *testing.T) *Upstream {
	t.Helper()
	u := &Upstream{routes: map[string]reply{}}
	u.Server = httptest.NewServer(http.HandlerFunc(u.serve))
	t.Cleanup(u.Close)
	return u
}

// On registers the answer for "METHOD /path".
func (u *Upstream) On(route string, status int, body string) *Upstream {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.routes[route] = reply{status: status, body: body}
	return u
}

func (u *Upstream) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	u.mu.Lock()
	u.calls = append(u.calls, Call{
		Method:        r.Method,
		Path:          r.URL.Path,
		Query:         r.URL.RawQuery,
		Authorization: r.Header.Get("Authorization"),
		ContentType:   r.Header.Get("Content-Type"),
		Body:          body,
	})
	rep, ok := u.routes[r.Method+" "+r.URL.Path]
	u.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"not found"}`))
		return
	}
	w.WriteHeader(rep.status)
	_, _ = w.Write([]byte(rep.body))
}

// Calls returns the requests received so far.
func (u *Upstream) Calls() []Call {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]Call(nil), u.calls...)
}

// Last returns the last request for "METHOD /path".
func (u *Upstream) Last(route string) (Call, bool) {
	calls := u.Calls()
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].Method+" "+calls[i].Path == route {
			return calls[i], true
		}
	}
	return Call{}, false
}

// Auth authenticates every token as the given principal.
type Auth struct {
	Principal domain.Principal
	BaseURL   string
}

func (a Auth) Authenticate(_ context.Context, _ string) (domain.Principal, *backend.Client, error) {
	client := backend.New(a.BaseURL, backend.WithToken(UpstreamToken), backend.WithLogger(slogx.Discard()))
	return a.Principal, client, nil
}

// Router returns an engine and the protected /api/v1 group.
func Router(p domain.Principal, upstreamURL string) (*gin.Engine, *gin.RouterGroup) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorLogger())
	protected := r.Group("/api/v1")
	protected.Use(middleware.ConsoleAuth(Auth{Principal: p, BaseURL: upstreamURL}))
	return r, protected
}

// Do sends a signed-in request. A non-nil body is sent as JSON unless it is
// already an io.Reader.
func Do(h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		rd = b
	case string:
		rd = bytes.NewBufferString(b)
	default:
		data, _ := json.Marshal(b)
		rd = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Authorization", "Bearer console-token")
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// Data decodes the "data" field of a success envelope.
func Data(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	require.True(t, env.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out))
}

// ErrorCode returns error.code of a failure envelope.
func ErrorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env.Error.Code
}
