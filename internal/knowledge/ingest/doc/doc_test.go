package doc

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/10xr-agents/browse-automation-service/internal/knowledge/ingest"
)

func TestIngest_SplitsByHeadingSection(t *testing.T) {
	markdown := "# Title\n\nIntro paragraph.\n\n## Login\n\nHow to log in. " +
		"This section has enough words to survive chunking without being empty.\n\n" +
		"## Logout\n\nHow to log out of the application entirely.\n"

	dir := t.TempDir()
	path := filepath.Join(dir, "guide.md")
	if err := os.WriteFile(path, []byte(markdown), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	in := New()
	chunks, err := in.Ingest(context.Background(), ingest.Source{
		KnowledgeID: "kw1",
		Type:        "documentation",
		Ref:         path,
	})
	if err != nil {
		t.Fatalf("Ingest error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 section chunks, got %d", len(chunks))
	}
	for _, c := range chunks {
		if c.SourceType != "documentation" {
			t.Errorf("expected source type documentation, got %s", c.SourceType)
		}
		if c.ContentHash == "" {
			t.Error("expected a content hash to be set")
		}
	}
}
