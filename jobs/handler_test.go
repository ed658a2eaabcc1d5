package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEnqueuer struct {
	payloads []JSONBackupPayload
	err      error
}

func (s *stubEnqueuer) EnqueueJSONBackup(ctx context.Context, payload JSONBackupPayload) (*asynq.TaskInfo, error) {
	s.payloads = append(s.payloads, payload)
	if s.err != nil {
		return nil, s.err
	}
	return &asynq.TaskInfo{ID: "task-1", Queue: QueueDefault}, nil
}

func jobsRouter(enqueuer BackupEnqueuer) http.Handler {
	h := NewHandler(nil, enqueuer, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.MountRoutes(r)
	return r
}

func TestEnqueueBackupQueuesSweep(t *testing.T) {
	stub := &stubEnqueuer{}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/backup", strings.NewReader(`{"companyIds":[3,7]}`))

	jobsRouter(stub).ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"task-1"`)
	require.Len(t, stub.payloads, 1)
	assert.Equal(t, []int64{3, 7}, stub.payloads[0].CompanyIDs)
}

func TestEnqueueBackupEmptyBodySweepsAll(t *testing.T) {
	stub := &stubEnqueuer{}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/backup", nil)

	jobsRouter(stub).ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, stub.payloads, 1)
	assert.Empty(t, stub.payloads[0].CompanyIDs)
}

func TestEnqueueBackupReportsQueueFailure(t *testing.T) {
	stub := &stubEnqueuer{err: errors.New("redis down")}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/backup", nil)

	jobsRouter(stub).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
