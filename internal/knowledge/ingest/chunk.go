package ingest

import (
	"strings"

	"github.com/10xr-agents/browse-automation-service/internal/knowledge/model"
	"github.com/10xr-agents/browse-automation-service/internal/wire"
)

// ChunkText splits text into ContentChunks at paragraph boundaries, packing
// paragraphs greedily up to MaxChunkTokens words per chunk (§4.8 "semantic
// boundaries"). Each chunk is content-hashed for dedup.
func ChunkText(knowledgeID, sourceType, sourceRef, text string) []model.ContentChunk {
	paragraphs := strings.Split(text, "\n\n")
	var chunks []model.ContentChunk
	var current strings.Builder
	currentWords := 0
	seq := 0

	flush := func() {
		body := strings.TrimSpace(current.String())
		if body == "" {
			return
		}
		chunks = append(chunks, model.ContentChunk{
			KnowledgeID: knowledgeID,
			ChunkID:     wire.NewID(),
			SourceType:  sourceType,
			SourceRef:   sourceRef,
			Text:        body,
			ContentHash: wire.SHA256Hex([]byte(body)),
			SequenceNum: seq,
		})
		seq++
		current.Reset()
		currentWords = 0
	}

	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		words := len(strings.Fields(p))
		if currentWords+words > MaxChunkTokens && currentWords > 0 {
			flush()
		}
		current.WriteString(p)
		current.WriteString("\n\n")
		currentWords += words
	}
	flush()
	return chunks
}
