package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/shelfsync/internal/database/runs"
	"github.com/mrlokans/shelfsync/internal/entities"
	"github.com/mrlokans/shelfsync/internal/shelfsync"
)

type fakeSyncer struct {
	result    *shelfsync.Result
	err       error
	running   bool
	lastShelf string
	calls     int
}

func (f *fakeSyncer) Run(ctx context.Context, userID, shelf string) (*shelfsync.Result, error) {
	f.calls++
	f.lastShelf = shelf
	return f.result, f.err
}

func (f *fakeSyncer) IsRunning() bool { return f.running }

type fakeHistory struct {
	runs []entities.SyncRun
	err  error
}

func (f *fakeHistory) GetRun(runID uint) (*entities.SyncRun, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.runs {
		if f.runs[i].ID == runID {
			return &f.runs[i], nil
		}
	}
	return nil, runs.ErrRunNotFound
}

func (f *fakeHistory) LatestRun() (*entities.SyncRun, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.runs) == 0 {
		return nil, nil
	}
	return &f.runs[0], nil
}

func (f *fakeHistory) ListRuns(limit int) ([]entities.SyncRun, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.runs) {
		return f.runs[:limit], nil
	}
	return f.runs, nil
}

type fakeEnqueuer struct {
	id    string
	err   error
	calls int
}

func (f *fakeEnqueuer) EnqueueSync(ctx context.Context, userID, shelf string) (string, error) {
	f.calls++
	return f.id, f.err
}

type fakeTaskStatus struct {
	status backlite.TaskStatus
	err    error
}

func (f *fakeTaskStatus) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	return f.status, f.err
}

type fakeShelfReader struct {
	books []entities.ShelfBook
	err   error
}

func (f *fakeShelfReader) FetchShelf(ctx context.Context, userID, shelf string) ([]entities.ShelfBook, error) {
	return f.books, f.err
}

type fakeQuerier struct {
	result any
	err    error
}

func (f *fakeQuerier) Query(ctx context.Context, query string, params map[string]any, out any) error {
	if f.err != nil {
		return f.err
	}
	raw, err := json.Marshal(f.result)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping() error { return f.err }

var errBoom = errors.New("boom")

// serve runs a single request through a fresh test-mode router.
func serve(t *testing.T, method, path string, register func(r *gin.Engine)) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	register(router)

	w := httptest.NewRecorder()
	req, err := http.NewRequest(method, path, nil)
	require.NoError(t, err)
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

// captureLog redirects the global logger into a buffer for the rest of the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	previous := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = previous })
	return &buf
}

type fakeAudits struct {
	files []string
	err   error
}

func (f *fakeAudits) List() ([]string, error) { return f.files, f.err }
