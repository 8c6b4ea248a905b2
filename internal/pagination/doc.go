// Package pagination provides cursor-based pagination over the bounded
// ring buffers in internal/buffers, for the REST surface's (§6.2) paged
// listings:
//   - knowledge entity listings (timestamp + sequence number)
//   - audit log entries (timestamp + sequence number)
//   - stream lag / consumer diagnostics (sequence number only)
//
// Cursor format: "timestamp:sequence" (e.g., "2026-01-30T10:15:23Z:42"), or
// ":sequence" for entries with no natural timestamp. Supports both after
// (forward) and before (backward) pagination with a limit.
//
// Handles eviction gracefully:
//   - If cursor is expired (entry evicted from buffer), returns error
//   - Optionally allows restart=true to return oldest available instead
//
// All functions are pure - they don't modify the buffer, only filter and slice.
package pagination
