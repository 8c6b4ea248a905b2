package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/10xr-agents/browse-automation-service/internal/audit"
)

// queryAudit handles GET /audit?session_id=&tool_name=&limit=: returns the
// most recent MCP tool-call invocations, newest first, for operators
// diagnosing a session without re-running it.
func (s *Server) queryAudit(c *gin.Context) {
	if s.deps.Audit == nil {
		c.JSON(http.StatusOK, gin.H{"entries": []audit.AuditEntry{}})
		return
	}

	filter := audit.AuditFilter{
		SessionID: c.Query("session_id"),
		ToolName:  c.Query("tool_name"),
	}
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			filter.Limit = n
		}
	}

	c.JSON(http.StatusOK, gin.H{"entries": s.deps.Audit.Query(filter)})
}
