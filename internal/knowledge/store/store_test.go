package store

import (
	"context"
	"os"
	"testing"
)

// TestStore_UpsertGetListDelete exercises the full document-store round
// trip against a live Postgres instance. It is skipped unless
// KNOWLEDGE_STORE_TEST_DSN is set, matching the pack's pattern of gating
// real-database integration tests behind an environment variable rather
// than standing up a container in every test run.
func TestStore_UpsertGetListDelete(t *testing.T) {
	dsn := os.Getenv("KNOWLEDGE_STORE_TEST_DSN")
	if dsn == "" {
		t.Skip("KNOWLEDGE_STORE_TEST_DSN not set, skipping live Postgres integration test")
	}

	ctx := context.Background()
	s, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	doc := []byte(`{"knowledge_id":"kw1","screen_id":"s1","name":"Dashboard"}`)
	if err := s.Upsert(ctx, CollectionScreens, "s1", doc); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, ok, err := s.Get(ctx, CollectionScreens, "s1")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if string(got) != string(doc) {
		t.Fatalf("got %s, want %s", got, doc)
	}

	docs, err := s.ListByKnowledgeID(ctx, CollectionScreens, "kw1")
	if err != nil || len(docs) != 1 {
		t.Fatalf("ListByKnowledgeID: len=%d err=%v", len(docs), err)
	}

	n, err := s.DeleteByKnowledgeID(ctx, CollectionScreens, "kw1")
	if err != nil || n != 1 {
		t.Fatalf("DeleteByKnowledgeID: n=%d err=%v", n, err)
	}

	if _, ok, _ := s.Get(ctx, CollectionScreens, "s1"); ok {
		t.Fatal("expected s1 to be deleted")
	}
}

func TestStore_Checkpoint(t *testing.T) {
	dsn := os.Getenv("KNOWLEDGE_STORE_TEST_DSN")
	if dsn == "" {
		t.Skip("KNOWLEDGE_STORE_TEST_DSN not set, skipping live Postgres integration test")
	}

	ctx := context.Background()
	s, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if err := s.SaveCheckpoint(ctx, "wf1", "extract_screens", 100, "item-100"); err != nil {
		t.Fatalf("SaveCheckpoint: %v", err)
	}
	processed, lastID, ok, err := s.LoadCheckpoint(ctx, "wf1", "extract_screens")
	if err != nil || !ok {
		t.Fatalf("LoadCheckpoint: ok=%v err=%v", ok, err)
	}
	if processed != 100 || lastID != "item-100" {
		t.Fatalf("got processed=%d lastID=%s", processed, lastID)
	}
}
