package rest

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/10xr-agents/browse-automation-service/internal/braerr"
	"github.com/10xr-agents/browse-automation-service/internal/knowledge/ingest"
	"github.com/10xr-agents/browse-automation-service/internal/wire"
	"github.com/10xr-agents/browse-automation-service/internal/workflow"
)

type sourceReq struct {
	Type string `json:"type" binding:"required"`
	Ref  string `json:"ref" binding:"required"`
}

type ingestStartReq struct {
	KnowledgeID string      `json:"knowledge_id"`
	Sources     []sourceReq `json:"sources" binding:"required,min=1"`
	Verify      bool        `json:"verify"`
}

type ingestStartResp struct {
	JobID       string `json:"job_id"`
	KnowledgeID string `json:"knowledge_id"`
}

// ingestStart handles POST /ingest/start (§6.2): an existing knowledge_id
// triggers the orchestrator's replace-by-id resync.
func (s *Server) ingestStart(c *gin.Context) {
	var req ingestStartReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, braerr.New(braerr.InvalidParams, err.Error()))
		return
	}

	knowledgeID := req.KnowledgeID
	if knowledgeID == "" {
		knowledgeID = wire.NewID()
	}
	jobID := wire.NewID()

	sources := make([]ingest.Source, 0, len(req.Sources))
	for _, src := range req.Sources {
		sources = append(sources, ingest.Source{KnowledgeID: knowledgeID, Type: src.Type, Ref: src.Ref})
	}

	runCtx, cancel := context.WithCancel(context.Background())
	j := &job{JobID: jobID, Status: jobRunning, Phase: string(workflow.PhaseIngestSource), cancel: cancel}
	s.jobs.put(j)

	go func() {
		idx, err := s.deps.Orchestrator.Run(runCtx, workflow.RunOptions{
			WorkflowID:  jobID,
			KnowledgeID: knowledgeID,
			Sources:     sources,
			Ingesters:   s.deps.Ingesters,
			Verify:      req.Verify,
		})
		j.setDone(idx, err)
	}()

	c.JSON(http.StatusOK, ingestStartResp{JobID: jobID, KnowledgeID: knowledgeID})
}

type fileMetadataReq struct {
	Type string `json:"type" binding:"required"`
}

type s3ReferenceReq struct {
	PresignedURL string `json:"presigned_url" binding:"required"`
	ExpiresAtMs  int64  `json:"expires_at_ms" binding:"required"`
}

type ingestUploadReq struct {
	KnowledgeID  string            `json:"knowledge_id"`
	S3Reference  *s3ReferenceReq   `json:"s3_reference"`
	FileMetadata *fileMetadataReq  `json:"file_metadata"`
	Batch        []s3BatchEntryReq `json:"batch"`
}

type s3BatchEntryReq struct {
	S3Reference  s3ReferenceReq  `json:"s3_reference" binding:"required"`
	FileMetadata fileMetadataReq `json:"file_metadata" binding:"required"`
}

// ingestUpload handles POST /ingest/upload (§6.2): downloads one or more
// S3-presigned-URL-referenced files and ingests them as knowledge sources.
// Presigned URLs are plain HTTPS GETs once minted, so downloading one needs
// no AWS SDK — only the party minting the URL (not this service) does.
func (s *Server) ingestUpload(c *gin.Context) {
	var req ingestUploadReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, braerr.New(braerr.InvalidParams, err.Error()))
		return
	}

	entries := req.Batch
	if req.S3Reference != nil && req.FileMetadata != nil {
		entries = append(entries, s3BatchEntryReq{S3Reference: *req.S3Reference, FileMetadata: *req.FileMetadata})
	}
	if len(entries) == 0 {
		writeError(c, braerr.New(braerr.InvalidParams, "s3_reference+file_metadata or batch is required"))
		return
	}

	knowledgeID := req.KnowledgeID
	if knowledgeID == "" {
		knowledgeID = wire.NewID()
	}

	nowMs := time.Now().UnixMilli()
	sources := make([]ingest.Source, 0, len(entries))
	for _, entry := range entries {
		if entry.S3Reference.ExpiresAtMs < nowMs {
			writeError(c, braerr.New(braerr.PresignedURLExpired, "presigned url expired"))
			return
		}
		localPath, err := downloadToTemp(c.Request.Context(), entry.S3Reference.PresignedURL)
		if err != nil {
			writeError(c, err)
			return
		}
		sources = append(sources, ingest.Source{KnowledgeID: knowledgeID, Type: entry.FileMetadata.Type, Ref: localPath})
	}

	jobID := wire.NewID()
	runCtx, cancel := context.WithCancel(context.Background())
	j := &job{JobID: jobID, Status: jobRunning, Phase: string(workflow.PhaseIngestSource), cancel: cancel}
	s.jobs.put(j)

	go func() {
		idx, err := s.deps.Orchestrator.Run(runCtx, workflow.RunOptions{
			WorkflowID: jobID, KnowledgeID: knowledgeID, Sources: sources, Ingesters: s.deps.Ingesters,
		})
		j.setDone(idx, err)
	}()

	c.JSON(http.StatusOK, ingestStartResp{JobID: jobID, KnowledgeID: knowledgeID})
}

func downloadToTemp(ctx context.Context, presignedURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, presignedURL, nil)
	if err != nil {
		return "", braerr.Wrap(braerr.InvalidParams, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", braerr.New(braerr.NetworkFlap, "download failed: "+err.Error())
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotFound:
		return "", errNotFound("object not found at presigned url")
	default:
		if resp.StatusCode >= 300 {
			return "", braerr.New(braerr.NetworkFlap, "upstream download returned "+resp.Status)
		}
	}

	f, err := os.CreateTemp("", "browse-ingest-*")
	if err != nil {
		return "", braerr.Wrap(braerr.NetworkFlap, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return "", braerr.New(braerr.NetworkFlap, "writing downloaded object: "+err.Error())
	}
	return f.Name(), nil
}
