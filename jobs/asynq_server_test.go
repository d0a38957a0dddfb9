package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"
)

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) { return s.info, s.err }

type recordingEnqueuer struct {
	repair    bool
	statement StatementPayload
}

func (r *recordingEnqueuer) EnqueueReconcile(_ context.Context, repair bool) (*asynq.TaskInfo, error) {
	r.repair = repair
	return &asynq.TaskInfo{ID: "t-1", Type: TaskLedgerReconcile}, nil
}

func (r *recordingEnqueuer) EnqueueStatement(_ context.Context, payload StatementPayload) (*asynq.TaskInfo, error) {
	r.statement = payload
	return &asynq.TaskInfo{ID: "t-2", Type: TaskStatementRender}, nil
}

func serve(h *Handler, method, path, body string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Route("/jobs", h.MountRoutes)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestHealthWithoutInspector(t *testing.T) {
	rec := serve(NewHandler(nil, nil, nil), http.MethodGet, "/jobs/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var out queueHealth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(t, QueueDefault, out.Queue)
	require.Zero(t, out.Pending)
}

func TestHealthReportsQueue(t *testing.T) {
	rec := serve(NewHandler(stubInspector{info: &asynq.QueueInfo{Queue: "default", Pending: 3, Retry: 1}}, nil, nil), http.MethodGet, "/jobs/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var out queueHealth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(t, 3, out.Pending)
	require.Equal(t, 1, out.Retry)

	rec = serve(NewHandler(stubInspector{err: errors.New("redis down")}, nil, nil), http.MethodGet, "/jobs/health", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestTriggerEndpoints(t *testing.T) {
	enq := &recordingEnqueuer{}
	h := NewHandler(nil, enq, nil)

	rec := serve(h, http.MethodPost, "/jobs/reconcile?repair=true", "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.True(t, enq.repair)

	rec = serve(h, http.MethodPost, "/jobs/statements", `{"owner":"Alice","from":"2024-01-01"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, "Alice", enq.statement.Owner)

	rec = serve(h, http.MethodPost, "/jobs/statements", `{"owner":"Alice","from":"yesterday"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(NewHandler(nil, nil, nil), http.MethodPost, "/jobs/reconcile", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestNewWorkerRequiresHandlers(t *testing.T) {
	_, err := NewWorker(WorkerConfig{RedisOpts: asynq.RedisClientOpt{Addr: "127.0.0.1:0"}})
	require.Error(t, err)
}
