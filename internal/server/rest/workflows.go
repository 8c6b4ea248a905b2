package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type workflowStatusResp struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
	Phase  string `json:"phase"`
	Error  string `json:"error,omitempty"`
}

// workflowStatus handles GET /workflows/status/{job_id} (§6.2): reports the
// current phase and terminal error of an in-flight or finished ingest run.
// Job state is process-local (§ "Job tracking" of internal/server/mcp/jobs.go
// applies here too); it does not survive a restart, only the underlying
// workflow checkpoints do.
func (s *Server) workflowStatus(c *gin.Context) {
	j, ok := s.jobs.get(c.Param("job_id"))
	if !ok {
		writeError(c, errNotFound("job "+c.Param("job_id")+" not found"))
		return
	}
	snap := j.snapshot()
	c.JSON(http.StatusOK, workflowStatusResp{
		JobID:  snap.JobID,
		Status: string(snap.Status),
		Phase:  snap.Phase,
		Error:  snap.Err,
	})
}
