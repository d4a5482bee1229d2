package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/approvd/approvd/definition"
	"github.com/approvd/approvd/engine"
	"github.com/approvd/approvd/model"
	"github.com/approvd/approvd/notify"
	"github.com/approvd/approvd/store"
)

type noopScheduler struct{}

func (noopScheduler) Start()                         {}
func (noopScheduler) Stop()                          {}
func (noopScheduler) Arm(string, int, time.Duration) {}
func (noopScheduler) Cancel(string)                  {}

const testDefinition = `{
  "flowId": "expense-approval",
  "steps": [
    {"stepId": "manager-review", "role": "manager", "actions": ["approve", "reject"], "slaHours": 1},
    {"stepId": "admin-review", "role": "admin", "actions": ["approve", "reject"], "slaHours": 2}
  ]
}`

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flow.json")
	require.NoError(t, os.WriteFile(path, []byte(testDefinition), 0644))

	defs := definition.NewService(definition.NewFileSource(path))
	_, err := defs.Reload()
	require.NoError(t, err)

	eng := engine.New(defs, store.NewInMemoryStore(0), noopScheduler{}, notify.NewLogNotifier(), nil)
	srv, err := NewServer(0, eng)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts, path
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func submit(t *testing.T, ts *httptest.Server) model.RequestStateResponse {
	resp := postJSON(t, ts.URL+"/requests", model.SubmitRequest{Type: "expense", CreatedBy: "alice"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[model.RequestStateResponse](t, resp)
}

func TestSubmitAndGet(t *testing.T) {
	ts, _ := newTestServer(t)

	state := submit(t, ts)
	require.Equal(t, model.STATUS_PENDING, state.Status)
	require.Equal(t, "manager-review", state.CurrentStep)

	resp, err := http.Get(fmt.Sprintf("%s/requests/%s", ts.URL, state.Id))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	req := decode[model.Request](t, resp)
	require.Equal(t, "alice", req.CreatedBy)
	require.Len(t, req.Steps, 2)

	resp, err = http.Get(ts.URL + "/requests/no-such-id")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestSubmitInvalidBody(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Post(ts.URL+"/requests", "application/json", bytes.NewReader([]byte("{broken")))
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestActStatusCodes(t *testing.T) {
	ts, _ := newTestServer(t)
	state := submit(t, ts)
	actURL := fmt.Sprintf("%s/requests/%s/actions", ts.URL, state.Id)

	// wrong role
	resp := postJSON(t, actURL, model.ActionRequest{Actor: "dave", Role: "employee", Action: "approve"})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	// action not permitted
	resp = postJSON(t, actURL, model.ActionRequest{Actor: "bob", Role: "manager", Action: "delegate"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// unknown request
	resp = postJSON(t, ts.URL+"/requests/no-such-id/actions", model.ActionRequest{Actor: "bob", Role: "manager", Action: "approve"})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// reject terminates the request
	resp = postJSON(t, actURL, model.ActionRequest{Actor: "bob", Role: "manager", Action: "reject", Comment: "no"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rejected := decode[model.RequestStateResponse](t, resp)
	require.Equal(t, model.STATUS_REJECTED, rejected.Status)
	require.Empty(t, rejected.CurrentStep)

	// acting on a terminal request conflicts
	resp = postJSON(t, actURL, model.ActionRequest{Actor: "carol", Role: "admin", Action: "approve"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestApprovalFlowOverHttp(t *testing.T) {
	ts, _ := newTestServer(t)
	state := submit(t, ts)
	actURL := fmt.Sprintf("%s/requests/%s/actions", ts.URL, state.Id)

	resp := postJSON(t, actURL, model.ActionRequest{Actor: "bob", Role: "manager", Action: "approve"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	advanced := decode[model.RequestStateResponse](t, resp)
	require.Equal(t, model.STATUS_PENDING, advanced.Status)
	require.Equal(t, "admin-review", advanced.CurrentStep)

	resp = postJSON(t, actURL, model.ActionRequest{Actor: "carol", Role: "admin", Action: "approve"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	final := decode[model.RequestStateResponse](t, resp)
	require.Equal(t, model.STATUS_APPROVED, final.Status)
}

func TestListFilters(t *testing.T) {
	ts, _ := newTestServer(t)
	first := submit(t, ts)
	submit(t, ts)

	resp := postJSON(t, fmt.Sprintf("%s/requests/%s/actions", ts.URL, first.Id),
		model.ActionRequest{Actor: "bob", Role: "manager", Action: "reject"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	get := func(query string) []model.Request {
		resp, err := http.Get(ts.URL + "/requests" + query)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		return decode[[]model.Request](t, resp)
	}

	require.Len(t, get(""), 2)
	require.Len(t, get("?status=PENDING"), 1)
	require.Len(t, get("?status=REJECTED"), 1)
	require.Len(t, get("?createdBy=alice"), 2)
	require.Len(t, get("?createdBy=nobody"), 0)
}

func TestDefinitionEndpoints(t *testing.T) {
	ts, path := newTestServer(t)

	resp, err := http.Get(ts.URL + "/definition")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	def := decode[model.FlowDefinition](t, resp)
	require.Equal(t, "expense-approval", def.FlowId)

	require.NoError(t, os.WriteFile(path, []byte(`{
  "flowId": "leave-approval",
  "steps": [{"stepId": "hr-review", "role": "hr", "actions": ["approve", "reject"], "slaHours": 8}]
}`), 0644))

	resp = postJSON(t, ts.URL+"/definition/reload", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	reload := decode[model.ReloadResponse](t, resp)
	require.Equal(t, "leave-approval", reload.FlowId)
	require.Equal(t, 1, reload.StepCount)

	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0644))
	resp = postJSON(t, ts.URL+"/definition/reload", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}
