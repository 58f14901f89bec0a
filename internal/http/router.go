package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Sync endpoints
	syncController := NewSyncController(cfg.Syncer, cfg.RunHistory, cfg.TaskEnqueuer, cfg.GoodreadsUserID, cfg.DefaultShelf)
	router.GET("/api/sync", syncController.Sync)
	router.POST("/api/sync", syncController.Sync)
	router.GET("/api/sync/status", syncController.Status)
	router.GET("/api/sync/runs", syncController.Runs)
	router.GET("/api/sync/runs/:id", syncController.Run)

	if cfg.AuditLog != nil {
		auditController := NewAuditController(cfg.AuditLog)
		router.GET("/api/sync/audits", auditController.List)
	}

	// Public shelf listing
	if cfg.Shelf != nil {
		shelfController := NewShelfController(cfg.Shelf, cfg.GoodreadsUserID, cfg.AffiliateTag)
		router.GET("/api/shelf", shelfController.GetShelf)
	}

	// Content store listings
	if cfg.Books != nil {
		booksController := NewBooksController(cfg.Books)
		router.GET("/api/books/summarized", booksController.GetSummarizedBooks)
	}

	// Task status endpoint
	if cfg.TaskStatus != nil {
		tasksController := NewTasksController(cfg.TaskStatus)
		router.GET("/api/tasks/:id", tasksController.GetTaskStatus)
	}

	return router
}
