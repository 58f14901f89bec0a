package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/shelfsync/internal/shelfsync"
)

func TestNewRouter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := NewRouter(RouterConfig{
		Syncer:          &fakeSyncer{result: &shelfsync.Result{}},
		Shelf:           &fakeShelfReader{},
		Books:           &fakeQuerier{result: []any{}},
		Database:        &fakePinger{},
		AuditLog:        &fakeAudits{},
		GoodreadsUserID: "42",
		DefaultShelf:    "read",
	})

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/ping", http.StatusOK},
		{http.MethodGet, "/api/sync", http.StatusOK},
		{http.MethodPost, "/api/sync", http.StatusOK},
		{http.MethodGet, "/api/sync/status", http.StatusOK},
		{http.MethodGet, "/api/sync/runs", http.StatusOK},
		{http.MethodGet, "/api/sync/runs/1", http.StatusNotFound},
		{http.MethodGet, "/api/sync/audits", http.StatusOK},
		{http.MethodGet, "/api/shelf?shelf=read", http.StatusOK},
		{http.MethodGet, "/api/books/summarized", http.StatusOK},
		{http.MethodGet, "/api/tasks/abc", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(tt.method, tt.path, nil)
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}
