package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "streams.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAppendAndReadGroup(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Append(ctx, "commands:room-1", []byte(`{"command_id":"c1"}`)); err != nil {
		t.Fatalf("Append error: %v", err)
	}

	msgID, payload, ok, err := s.ReadGroup(ctx, "commands:room-1", "cluster", "consumer-a", 200*time.Millisecond)
	if err != nil {
		t.Fatalf("ReadGroup error: %v", err)
	}
	if !ok {
		t.Fatal("expected a message to be claimed")
	}
	if string(payload) != `{"command_id":"c1"}` {
		t.Fatalf("unexpected payload: %s", payload)
	}

	if err := s.Ack(ctx, "commands:room-1", "cluster", msgID); err != nil {
		t.Fatalf("Ack error: %v", err)
	}

	_, _, ok, err = s.ReadGroup(ctx, "commands:room-1", "cluster", "consumer-a", 100*time.Millisecond)
	if err != nil {
		t.Fatalf("ReadGroup error: %v", err)
	}
	if ok {
		t.Fatal("expected no further messages for the same consumer group")
	}
}

func TestDedupStatusTTL(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	if _, found, err := s.DedupStatus(ctx, "room-1", "c1"); err != nil || found {
		t.Fatalf("expected no dedup entry yet, found=%v err=%v", found, err)
	}

	if err := s.SetDedupStatus(ctx, "room-1", "c1", DedupProcessing, 5*time.Minute); err != nil {
		t.Fatalf("SetDedupStatus error: %v", err)
	}
	status, found, err := s.DedupStatus(ctx, "room-1", "c1")
	if err != nil || !found || status != DedupProcessing {
		t.Fatalf("expected processing status, got %s found=%v err=%v", status, found, err)
	}

	if err := s.SetDedupStatus(ctx, "room-1", "c1", DedupProcessed, 5*time.Minute); err != nil {
		t.Fatalf("SetDedupStatus error: %v", err)
	}
	status, found, err = s.DedupStatus(ctx, "room-1", "c1")
	if err != nil || !found || status != DedupProcessed {
		t.Fatalf("expected processed status, got %s found=%v err=%v", status, found, err)
	}
}

func TestSequenceTracker(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	seq, err := s.LastProcessedSeq(ctx, "room-1")
	if err != nil || seq != 0 {
		t.Fatalf("expected initial seq 0, got %d err=%v", seq, err)
	}
	if err := s.SetLastProcessedSeq(ctx, "room-1", 5); err != nil {
		t.Fatalf("SetLastProcessedSeq error: %v", err)
	}
	seq, err = s.LastProcessedSeq(ctx, "room-1")
	if err != nil || seq != 5 {
		t.Fatalf("expected seq 5, got %d err=%v", seq, err)
	}
}
