// Package store is the SQLite-backed append-only CommandStream/StateStream
// persistence (spec.md §3.2, §4.6), grounded on the teacher corpus's
// internal/db pattern (joestump-claude-ops): pure-Go modernc.org/sqlite
// driver, goose-managed embedded migrations, a single-writer connection.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/10xr-agents/browse-automation-service/internal/capability"
	"github.com/10xr-agents/browse-automation-service/internal/wire"
)

var _ capability.StreamBus = (*Store)(nil)

// Store wraps the SQLite connection backing every stream key.
type Store struct {
	conn *sql.DB
}

// Open creates (or attaches to) the SQLite database at path and applies all
// pending migrations.
func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	migrationsFS, err := fs.Sub(MigrationFS, "migrations")
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrations sub-fs: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, conn, migrationsFS)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("create migration provider: %w", err)
	}
	if _, err := provider.Up(context.Background()); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	return &Store{conn: conn}, nil
}

func (s *Store) Close() error { return s.conn.Close() }

// Append writes payload to streamKey and returns the assigned message id
// (capability.StreamBus.Append).
func (s *Store) Append(ctx context.Context, streamKey string, payload []byte) (string, error) {
	messageID := wire.NewID()
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO stream_messages (stream_key, message_id, payload, created_at) VALUES (?, ?, ?, ?)`,
		streamKey, messageID, payload, wire.NowMillis(),
	)
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", streamKey, err)
	}
	return messageID, nil
}

// ReadGroup claims the next undelivered message for consumerGroup on
// streamKey, polling until one is available or timeout elapses
// (capability.StreamBus.ReadGroup). SQLite has no native blocking-read
// primitive, so the bounded block is implemented as a poll loop — the
// consumer-group exclusivity guarantee still holds because claim is a
// single atomic UPDATE...RETURNING-style read-then-insert under the
// connection's serialized writer.
func (s *Store) ReadGroup(ctx context.Context, streamKey, consumerGroup, consumerName string, timeout time.Duration) (string, []byte, bool, error) {
	deadline := time.Now().Add(timeout)
	const pollInterval = 50 * time.Millisecond

	for {
		msgID, payload, ok, err := s.tryClaim(ctx, streamKey, consumerGroup, consumerName)
		if err != nil {
			return "", nil, false, err
		}
		if ok {
			return msgID, payload, true, nil
		}
		if time.Now().After(deadline) {
			return "", nil, false, nil
		}
		select {
		case <-ctx.Done():
			return "", nil, false, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

func (s *Store) tryClaim(ctx context.Context, streamKey, consumerGroup, consumerName string) (string, []byte, bool, error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return "", nil, false, fmt.Errorf("begin claim tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var lastDelivered int64
	err = tx.QueryRowContext(ctx,
		`SELECT last_delivered_id FROM consumer_group_offsets WHERE stream_key = ? AND consumer_group = ?`,
		streamKey, consumerGroup,
	).Scan(&lastDelivered)
	if err != nil && err != sql.ErrNoRows {
		return "", nil, false, fmt.Errorf("read offset: %w", err)
	}

	var id int64
	var messageID string
	var payload []byte
	err = tx.QueryRowContext(ctx,
		`SELECT id, message_id, payload FROM stream_messages WHERE stream_key = ? AND id > ? ORDER BY id ASC LIMIT 1`,
		streamKey, lastDelivered,
	).Scan(&id, &messageID, &payload)
	if err == sql.ErrNoRows {
		return "", nil, false, nil
	}
	if err != nil {
		return "", nil, false, fmt.Errorf("claim next message: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO consumer_group_offsets (stream_key, consumer_group, last_delivered_id)
		 VALUES (?, ?, ?)
		 ON CONFLICT(stream_key, consumer_group) DO UPDATE SET last_delivered_id = excluded.last_delivered_id`,
		streamKey, consumerGroup, id,
	); err != nil {
		return "", nil, false, fmt.Errorf("advance offset: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO consumer_group_pending (stream_key, consumer_group, message_id, consumer_name, claimed_at)
		 VALUES (?, ?, ?, ?, ?)`,
		streamKey, consumerGroup, messageID, consumerName, wire.NowMillis(),
	); err != nil {
		return "", nil, false, fmt.Errorf("record pending: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", nil, false, fmt.Errorf("commit claim: %w", err)
	}
	return messageID, payload, true, nil
}

// HeadSeq returns the highest message id appended to streamKey, or 0 for an
// empty or unknown stream. Used to compute consumer lag (current head minus
// LastProcessedSeq) for the operator-facing stream lag endpoint.
func (s *Store) HeadSeq(ctx context.Context, streamKey string) (int64, error) {
	var head int64
	err := s.conn.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(id), 0) FROM stream_messages WHERE stream_key = ?`, streamKey,
	).Scan(&head)
	if err != nil {
		return 0, fmt.Errorf("head seq for %s: %w", streamKey, err)
	}
	return head, nil
}

// Ack removes messageID from consumerGroup's pending entries
// (capability.StreamBus.Ack).
func (s *Store) Ack(ctx context.Context, streamKey, consumerGroup, messageID string) error {
	_, err := s.conn.ExecContext(ctx,
		`DELETE FROM consumer_group_pending WHERE stream_key = ? AND consumer_group = ? AND message_id = ?`,
		streamKey, consumerGroup, messageID,
	)
	if err != nil {
		return fmt.Errorf("ack %s: %w", messageID, err)
	}
	return nil
}

// ReclaimIdle returns pending entries claimed longer than idleTimeout ago so
// another consumer may reprocess them (§4.6 step 7: "leave un-acked so
// another consumer may claim after idle timeout (60s)").
func (s *Store) ReclaimIdle(ctx context.Context, streamKey, consumerGroup string, idleTimeout time.Duration) ([]string, error) {
	cutoff := wire.NowMillis() - idleTimeout.Milliseconds()
	rows, err := s.conn.QueryContext(ctx,
		`SELECT message_id FROM consumer_group_pending WHERE stream_key = ? AND consumer_group = ? AND claimed_at < ?`,
		streamKey, consumerGroup, cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("reclaim idle: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan reclaim row: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Trim enforces maxLen and idleTTL retention on streamKey
// (capability.StreamBus.Trim).
func (s *Store) Trim(ctx context.Context, streamKey string, maxLen int, idleTTL time.Duration) error {
	cutoff := wire.NowMillis() - idleTTL.Milliseconds()
	if _, err := s.conn.ExecContext(ctx,
		`DELETE FROM stream_messages WHERE stream_key = ? AND created_at < ?`, streamKey, cutoff,
	); err != nil {
		return fmt.Errorf("trim by ttl: %w", err)
	}
	if maxLen <= 0 {
		return nil
	}
	_, err := s.conn.ExecContext(ctx, `
		DELETE FROM stream_messages
		WHERE stream_key = ? AND id NOT IN (
			SELECT id FROM stream_messages WHERE stream_key = ? ORDER BY id DESC LIMIT ?
		)`, streamKey, streamKey, maxLen)
	if err != nil {
		return fmt.Errorf("trim by maxlen: %w", err)
	}
	return nil
}

// Dedup status constants (§3.2 DedupCacheEntry).
const (
	DedupProcessing = "processing"
	DedupProcessed  = "processed"
)

// DedupStatus reports a command's dedup status for sessionRoom, or ("", false)
// if absent or expired.
func (s *Store) DedupStatus(ctx context.Context, sessionRoom, commandID string) (string, bool, error) {
	var status string
	var expiresAt int64
	err := s.conn.QueryRowContext(ctx,
		`SELECT status, expires_at FROM dedup_cache WHERE session_room = ? AND command_id = ?`,
		sessionRoom, commandID,
	).Scan(&status, &expiresAt)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("dedup status: %w", err)
	}
	if expiresAt < wire.NowMillis() {
		return "", false, nil
	}
	return status, true, nil
}

// SetDedupStatus upserts commandID's status with the given TTL.
func (s *Store) SetDedupStatus(ctx context.Context, sessionRoom, commandID, status string, ttl time.Duration) error {
	expiresAt := wire.NowMillis() + ttl.Milliseconds()
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO dedup_cache (session_room, command_id, status, expires_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(session_room, command_id) DO UPDATE SET status = excluded.status, expires_at = excluded.expires_at`,
		sessionRoom, commandID, status, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("set dedup status: %w", err)
	}
	return nil
}

// LastProcessedSeq returns the sequence tracker's last_processed_seq for
// sessionRoom (§3.2 SequenceTracker), 0 if none recorded yet.
func (s *Store) LastProcessedSeq(ctx context.Context, sessionRoom string) (int64, error) {
	var seq int64
	err := s.conn.QueryRowContext(ctx,
		`SELECT last_processed_seq FROM sequence_trackers WHERE session_room = ?`, sessionRoom,
	).Scan(&seq)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("last processed seq: %w", err)
	}
	return seq, nil
}

// SetLastProcessedSeq advances sessionRoom's sequence tracker.
func (s *Store) SetLastProcessedSeq(ctx context.Context, sessionRoom string, seq int64) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO sequence_trackers (session_room, last_processed_seq) VALUES (?, ?)
		 ON CONFLICT(session_room) DO UPDATE SET last_processed_seq = excluded.last_processed_seq`,
		sessionRoom, seq,
	)
	if err != nil {
		return fmt.Errorf("set last processed seq: %w", err)
	}
	return nil
}
