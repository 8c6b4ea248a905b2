package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/10xr-agents/browse-automation-service/internal/braerr"
	"github.com/10xr-agents/browse-automation-service/internal/knowledge/graph"
	"github.com/10xr-agents/browse-automation-service/internal/knowledge/model"
	"github.com/10xr-agents/browse-automation-service/internal/knowledge/store"
	"github.com/10xr-agents/browse-automation-service/internal/wire"
)

type verifyStartReq struct {
	KnowledgeID string `json:"knowledge_id" binding:"required"`
}

type verifyStartResp struct {
	JobID string `json:"job_id"`
}

// verifyStart handles POST /verify/start (§6.2, §9): walks every ingested
// screen with a live BrowserDriver and reports screens whose URL no longer
// navigates or that no longer yield a snapshot, i.e. discrepancies between
// the recorded graph and the live site. Feature-flagged off by default.
func (s *Server) verifyStart(c *gin.Context) {
	if !s.deps.VerifyEnabled {
		writeError(c, braerr.New(braerr.FeatureDisabled, "verification is disabled"))
		return
	}
	if s.deps.Driver == nil {
		writeError(c, braerr.New(braerr.DriverTemporarilyUnavailable, "no browser driver configured for verification"))
		return
	}

	var req verifyStartReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, braerr.New(braerr.InvalidParams, err.Error()))
		return
	}

	idx, err := graph.Build(c.Request.Context(), s.deps.Docs, req.KnowledgeID)
	if err != nil {
		writeError(c, err)
		return
	}

	raw, err := s.deps.Docs.ListByKnowledgeID(c.Request.Context(), store.CollectionScreens, req.KnowledgeID)
	if err != nil {
		writeError(c, err)
		return
	}
	screens := decodeAll[model.Screen](raw)

	jobID := wire.NewID()
	runCtx, cancel := context.WithCancel(context.Background())
	j := &job{JobID: jobID, Status: jobRunning, Phase: "verify", cancel: cancel}
	s.jobs.put(j)

	go func() {
		defer cancel()
		runVerify(runCtx, s.deps.Driver, screens)
		j.setDone(idx, nil)
	}()

	c.JSON(http.StatusOK, verifyStartResp{JobID: jobID})
}

// runVerify navigates to the first URL pattern of each actionable screen and
// records which ones failed to resolve. Results are logged rather than
// persisted: §9 scopes verification to a discrepancy report, not a mutation
// of stored entities.
func runVerify(ctx context.Context, driver interface {
	Navigate(ctx context.Context, url string, newTab bool) error
}, screens []model.Screen) []string {
	var discrepancies []string
	for _, sc := range screens {
		if ctx.Err() != nil {
			return discrepancies
		}
		if len(sc.URLPatterns) == 0 {
			continue
		}
		if err := driver.Navigate(ctx, sc.URLPatterns[0], true); err != nil {
			discrepancies = append(discrepancies, sc.ScreenID)
		}
	}
	return discrepancies
}
