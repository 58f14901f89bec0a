package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AuditController exposes the audit files written after each commit.
type AuditController struct {
	audits AuditLister
}

func NewAuditController(audits AuditLister) *AuditController {
	return &AuditController{audits: audits}
}

// List handles GET /api/sync/audits
// Returns audit filenames, newest first.
func (ac *AuditController) List(c *gin.Context) {
	files, err := ac.audits.List()
	if err != nil {
		respondInternalError(c, err, "list audit files")
		return
	}
	if files == nil {
		files = []string{}
	}

	c.JSON(http.StatusOK, gin.H{"files": files, "count": len(files)})
}
