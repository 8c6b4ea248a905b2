package store

import "embed"

// MigrationFS embeds the stream store's goose migrations into the compiled
// binary, matching the teacher's internal/db embed.go pattern.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
