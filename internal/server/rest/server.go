// Package rest is the agent-facing REST surface of spec.md §6.2, gin-based,
// grounded on codeready-toolchain/tarsy's pkg/api.Server (a thin Server{deps}
// struct with one gin.HandlerFunc method per route, wired in a Router()
// builder rather than registered directly against a package-level engine).
package rest

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/10xr-agents/browse-automation-service/internal/audit"
	"github.com/10xr-agents/browse-automation-service/internal/capability"
	"github.com/10xr-agents/browse-automation-service/internal/knowledge/ingest"
	"github.com/10xr-agents/browse-automation-service/internal/session"
	streamstore "github.com/10xr-agents/browse-automation-service/internal/stream/store"
	"github.com/10xr-agents/browse-automation-service/internal/workflow"
)

// Deps are the capabilities the REST surface dispatches into.
type Deps struct {
	Sessions      *session.Manager
	Docs          capability.DocStore
	Orchestrator  *workflow.Orchestrator
	Ingesters     map[string]ingest.Ingester
	StreamStore   *streamstore.Store
	Driver        capability.BrowserDriver
	VerifyEnabled bool
	Audit         *audit.AuditTrail
	Log           *slog.Logger
}

// Server serves the §6.2 REST routes.
type Server struct {
	deps Deps
	jobs *jobTracker
	log  *slog.Logger
}

// New constructs a Server wired against deps.
func New(deps Deps) *Server {
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}
	return &Server{deps: deps, jobs: newJobTracker(), log: log}
}

// Router builds the gin engine for this server's routes.
func (s *Server) Router() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", s.health)

	r.POST("/ingest/start", s.ingestStart)
	r.POST("/ingest/upload", s.ingestUpload)

	r.POST("/graph/query", s.graphQuery)

	r.GET("/screens/:id", s.getEntity("screens"))
	r.GET("/tasks/:id", s.getEntity("tasks"))
	r.GET("/actions/:id", s.getEntity("actions"))
	r.GET("/transitions/:id", s.getEntity("transitions"))
	r.GET("/screens", s.listEntities("screens"))
	r.GET("/tasks", s.listEntities("tasks"))
	r.GET("/actions", s.listEntities("actions"))
	r.GET("/transitions", s.listEntities("transitions"))

	r.GET("/workflows/status/:job_id", s.workflowStatus)

	r.POST("/verify/start", s.verifyStart)

	r.GET("/streams/:room_name/lag", s.streamLag)

	r.GET("/audit", s.queryAudit)

	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
