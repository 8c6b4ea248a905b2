// Package store is the Postgres-backed document store of spec.md §4.10,
// grounded on the teacher corpus's pkg/database/client.go: pgx driver,
// golang-migrate embedded migrations, a generic collection+id+jsonb table
// rather than a typed schema per entity, matching the "document store,
// collections prefixed uniformly" requirement without per-entity DDL.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/10xr-agents/browse-automation-service/internal/capability"
)

//go:embed migrations
var migrationsFS embed.FS

var _ capability.DocStore = (*Store)(nil)

// Store is the Postgres-backed capability.DocStore implementation.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to dsn, runs pending migrations, and returns a ready Store.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if err := runMigrations(dsn); err != nil {
		return nil, fmt.Errorf("run knowledge store migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() { s.pool.Close() }

func runMigrations(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer func() { _ = db.Close() }()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create postgres migration driver: %w", err)
	}
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return sourceDriver.Close()
}

// knowledgeIDOf extracts the knowledge_id field every stored entity
// document carries (§3.3: "Every entity carries knowledge_id"), so callers
// need not pass it redundantly alongside the encoded doc.
func knowledgeIDOf(doc []byte) string {
	var probe struct {
		KnowledgeID string `json:"knowledge_id"`
	}
	if err := json.Unmarshal(doc, &probe); err != nil {
		return ""
	}
	return probe.KnowledgeID
}

// Upsert implements capability.DocStore.
func (s *Store) Upsert(ctx context.Context, collection, id string, doc []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO knowledge_entities (collection, id, knowledge_id, doc, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (collection, id) DO UPDATE SET
			knowledge_id = excluded.knowledge_id,
			doc = excluded.doc,
			updated_at = now()
	`, collection, id, knowledgeIDOf(doc), doc)
	if err != nil {
		return fmt.Errorf("upsert %s/%s: %w", collection, id, err)
	}
	return nil
}

// Get implements capability.DocStore.
func (s *Store) Get(ctx context.Context, collection, id string) ([]byte, bool, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`SELECT doc FROM knowledge_entities WHERE collection = $1 AND id = $2`, collection, id,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return doc, true, nil
}

// ListByKnowledgeID implements capability.DocStore.
func (s *Store) ListByKnowledgeID(ctx context.Context, collection, knowledgeID string) ([][]byte, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT doc FROM knowledge_entities WHERE collection = $1 AND knowledge_id = $2`, collection, knowledgeID,
	)
	if err != nil {
		return nil, fmt.Errorf("list %s for %s: %w", collection, knowledgeID, err)
	}
	defer rows.Close()

	var docs [][]byte
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", collection, err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// DeleteByKnowledgeID implements capability.DocStore — the bulk delete half
// of the §3.4/§4.8 "replace-by-id" semantics.
func (s *Store) DeleteByKnowledgeID(ctx context.Context, collection, knowledgeID string) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM knowledge_entities WHERE collection = $1 AND knowledge_id = $2`, collection, knowledgeID,
	)
	if err != nil {
		return 0, fmt.Errorf("delete %s for %s: %w", collection, knowledgeID, err)
	}
	return int(tag.RowsAffected()), nil
}

// SaveCheckpoint persists a phase's progress marker (§4.8 "Checkpointing:
// every 100 items processed, phase writes {activity_name, items_processed,
// last_item_id}").
func (s *Store) SaveCheckpoint(ctx context.Context, workflowID, activityName string, itemsProcessed int, lastItemID string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO checkpoints (workflow_id, activity_name, items_processed, last_item_id, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (workflow_id, activity_name) DO UPDATE SET
			items_processed = excluded.items_processed,
			last_item_id = excluded.last_item_id,
			updated_at = now()
	`, workflowID, activityName, itemsProcessed, lastItemID)
	if err != nil {
		return fmt.Errorf("save checkpoint %s/%s: %w", workflowID, activityName, err)
	}
	return nil
}

// LoadCheckpoint returns the last saved progress marker for an activity, or
// ok=false if none exists (a fresh run).
func (s *Store) LoadCheckpoint(ctx context.Context, workflowID, activityName string) (itemsProcessed int, lastItemID string, ok bool, err error) {
	err = s.pool.QueryRow(ctx,
		`SELECT items_processed, last_item_id FROM checkpoints WHERE workflow_id = $1 AND activity_name = $2`,
		workflowID, activityName,
	).Scan(&itemsProcessed, &lastItemID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, "", false, nil
	}
	if err != nil {
		return 0, "", false, fmt.Errorf("load checkpoint %s/%s: %w", workflowID, activityName, err)
	}
	return itemsProcessed, lastItemID, true, nil
}
