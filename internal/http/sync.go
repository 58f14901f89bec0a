package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/shelfsync/internal/database/runs"
	"github.com/mrlokans/shelfsync/internal/entities"
	"github.com/mrlokans/shelfsync/internal/shelfsync"
)

const maxRunsLimit = 100

// SyncResponse is returned by a finished synchronous sync.
type SyncResponse struct {
	Message       string `json:"message"`
	Operations    int    `json:"operations"`
	TransactionID string `json:"transaction_id,omitempty"`
}

// SyncStatusResponse describes the current and most recent run.
type SyncStatusResponse struct {
	Running bool              `json:"running"`
	LastRun *entities.SyncRun `json:"last_run"`
}

// SyncController triggers shelf syncs and reports their history.
type SyncController struct {
	syncer   ShelfSyncer
	history  RunHistory
	enqueuer SyncEnqueuer
	userID   string
	shelf    string
}

// NewSyncController creates a controller syncing userID's shelf by default.
// history and enqueuer are optional.
func NewSyncController(syncer ShelfSyncer, history RunHistory, enqueuer SyncEnqueuer, userID, shelf string) *SyncController {
	return &SyncController{
		syncer:   syncer,
		history:  history,
		enqueuer: enqueuer,
		userID:   userID,
		shelf:    shelf,
	}
}

// Sync handles GET/POST /api/sync.
// Runs one sync and reports the number of committed operations. With
// ?async=true the run is queued instead and the task id returned.
func (sc *SyncController) Sync(c *gin.Context) {
	if sc.userID == "" {
		respondBadRequest(c, "Goodreads user ID is not configured.")
		return
	}

	shelf := strings.TrimSpace(c.DefaultQuery("shelf", sc.shelf))
	if shelf == "" {
		respondBadRequest(c, "Shelf and User ID are required.")
		return
	}

	if c.Query("async") == "true" {
		sc.enqueue(c, shelf)
		return
	}

	result, err := sc.syncer.Run(c.Request.Context(), sc.userID, shelf)
	if errors.Is(err, shelfsync.ErrSyncInProgress) {
		respondError(c, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		log.Error().Err(err).Str("shelf", shelf).Msg("sync request failed")
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, SyncResponse{
		Message:       result.Message(),
		Operations:    result.Operations,
		TransactionID: result.TransactionID,
	})
}

func (sc *SyncController) enqueue(c *gin.Context, shelf string) {
	if sc.enqueuer == nil {
		respondError(c, http.StatusServiceUnavailable, "background tasks are disabled")
		return
	}

	taskID, err := sc.enqueuer.EnqueueSync(c.Request.Context(), sc.userID, shelf)
	if err != nil {
		respondInternalError(c, err, "enqueue sync")
		return
	}

	respondAccepted(c, "Sync queued.", gin.H{"task_id": taskID, "shelf": shelf})
}

// Status handles GET /api/sync/status
func (sc *SyncController) Status(c *gin.Context) {
	response := SyncStatusResponse{Running: sc.syncer.IsRunning()}

	if sc.history != nil {
		run, err := sc.history.LatestRun()
		if err != nil {
			respondInternalError(c, err, "latest sync run")
			return
		}
		response.LastRun = run
	}

	c.JSON(http.StatusOK, response)
}

// Runs handles GET /api/sync/runs?limit=N
func (sc *SyncController) Runs(c *gin.Context) {
	limit, ok := parseLimitQuery(c, runs.DefaultListLimit, maxRunsLimit)
	if !ok {
		return
	}

	if sc.history == nil {
		c.JSON(http.StatusOK, gin.H{"runs": []entities.SyncRun{}, "count": 0})
		return
	}

	list, err := sc.history.ListRuns(limit)
	if err != nil {
		respondInternalError(c, err, "list sync runs")
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": list, "count": len(list)})
}

// Run handles GET /api/sync/runs/:id
func (sc *SyncController) Run(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondBadRequest(c, "Invalid run ID")
		return
	}

	if sc.history == nil {
		respondError(c, http.StatusNotFound, runs.ErrRunNotFound.Error())
		return
	}

	run, err := sc.history.GetRun(uint(id))
	if errors.Is(err, runs.ErrRunNotFound) {
		respondError(c, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		respondInternalError(c, err, "get sync run")
		return
	}

	c.JSON(http.StatusOK, run)
}
