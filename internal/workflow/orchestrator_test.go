package workflow

import (
	"context"
	"sync"
	"testing"

	"github.com/10xr-agents/browse-automation-service/internal/knowledge/ingest"
	"github.com/10xr-agents/browse-automation-service/internal/knowledge/model"
)

// memDocStore is a minimal in-process capability.DocStore fake for tests
// that don't need a live Postgres instance.
type memDocStore struct {
	mu   sync.Mutex
	docs map[string]map[string][]byte
}

func newMemDocStore() *memDocStore {
	return &memDocStore{docs: map[string]map[string][]byte{}}
}

func (m *memDocStore) Upsert(ctx context.Context, collection, id string, doc []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docs[collection] == nil {
		m.docs[collection] = map[string][]byte{}
	}
	m.docs[collection][id] = doc
	return nil
}

func (m *memDocStore) Get(ctx context.Context, collection, id string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[collection][id]
	return doc, ok, nil
}

func (m *memDocStore) ListByKnowledgeID(ctx context.Context, collection, knowledgeID string) ([][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out [][]byte
	for _, doc := range m.docs[collection] {
		out = append(out, doc)
	}
	return out, nil
}

func (m *memDocStore) DeleteByKnowledgeID(ctx context.Context, collection, knowledgeID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.docs[collection])
	delete(m.docs, collection)
	return n, nil
}

// fixedIngester returns a fixed set of chunks regardless of source, for
// exercising the fan-out/dedup path without a real file or network fetch.
type fixedIngester struct {
	chunks []model.ContentChunk
}

func (f fixedIngester) Ingest(ctx context.Context, src ingest.Source) ([]model.ContentChunk, error) {
	return f.chunks, nil
}

var _ ingest.Ingester = fixedIngester{}

func TestOrchestrator_Run_PersistsScreensAndBuildsIndex(t *testing.T) {
	docs := newMemDocStore()
	orc := NewOrchestrator(nil, docs, nil, nil, nil)

	chunks := []model.ContentChunk{{
		ChunkID:    "c1",
		SourceType: "documentation",
		Text: "## Dashboard\n" +
			"This screen shows the dashboard overview. Required: summary widget.\n" +
			"Visit https://example.com/dashboard to see it.\n",
	}}

	idx, err := orc.Run(context.Background(), RunOptions{
		WorkflowID:  "wf1",
		KnowledgeID: "kw1",
		Sources:     []ingest.Source{{KnowledgeID: "kw1", Type: "documentation", Ref: "fixture"}},
		Ingesters:   map[string]ingest.Ingester{"documentation": fixedIngester{chunks: chunks}},
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if idx == nil {
		t.Fatal("expected a non-nil graph index")
	}
	if len(idx.Screens) == 0 {
		t.Fatal("expected at least one screen to have been extracted and persisted")
	}
}

func TestOrchestrator_Run_MissingIngesterFails(t *testing.T) {
	docs := newMemDocStore()
	orc := NewOrchestrator(nil, docs, nil, nil, nil)

	_, err := orc.Run(context.Background(), RunOptions{
		WorkflowID:  "wf1",
		KnowledgeID: "kw1",
		Sources:     []ingest.Source{{KnowledgeID: "kw1", Type: "video", Ref: "fixture"}},
		Ingesters:   map[string]ingest.Ingester{},
	})
	if err == nil {
		t.Fatal("expected an error when no ingester is registered for the source type")
	}
}
