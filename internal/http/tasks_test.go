package http

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
)

func tasksRoutes(tc *TasksController) func(r *gin.Engine) {
	return func(r *gin.Engine) {
		r.GET("/api/tasks/:id", tc.GetTaskStatus)
	}
}

func TestTasksController_GetTaskStatus(t *testing.T) {
	t.Run("returns the task status", func(t *testing.T) {
		tc := NewTasksController(&fakeTaskStatus{status: backlite.TaskStatusSuccess})

		w := serve(t, http.MethodGet, "/api/tasks/abc", tasksRoutes(tc))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id": "abc", "status": "success"}`, w.Body.String())
	})

	t.Run("returns 404 for unknown tasks", func(t *testing.T) {
		tc := NewTasksController(&fakeTaskStatus{status: backlite.TaskStatusNotFound})

		w := serve(t, http.MethodGet, "/api/tasks/missing", tasksRoutes(tc))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("reports lookup errors", func(t *testing.T) {
		tc := NewTasksController(&fakeTaskStatus{err: errBoom})

		w := serve(t, http.MethodGet, "/api/tasks/abc", tasksRoutes(tc))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestTaskStatusToString(t *testing.T) {
	assert.Equal(t, "pending", taskStatusToString(backlite.TaskStatusPending))
	assert.Equal(t, "running", taskStatusToString(backlite.TaskStatusRunning))
	assert.Equal(t, "failure", taskStatusToString(backlite.TaskStatusFailure))
}
