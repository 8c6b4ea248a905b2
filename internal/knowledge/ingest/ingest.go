// Package ingest declares the source-type-dispatched Ingester interface of
// spec.md §4.8 phase 1 ("Ingest Source"). Concrete ingesters live in the
// doc, site, and video subpackages.
package ingest

import (
	"context"

	"github.com/10xr-agents/browse-automation-service/internal/knowledge/model"
)

// MaxChunkTokens is the §4.8 chunk size cap ("ContentChunks (≤ 2000
// tokens, semantic boundaries)"). Token count is approximated by
// whitespace-delimited word count, matching the teacher corpus's
// token-estimation convention.
const MaxChunkTokens = 2000

// Source describes one piece of material to ingest.
type Source struct {
	KnowledgeID string
	Type        string // "documentation" | "website" | "video"
	Ref         string // file path, URL, or media reference
}

// Ingester turns one Source into deduped, hashed ContentChunks.
type Ingester interface {
	Ingest(ctx context.Context, src Source) ([]model.ContentChunk, error)
}
