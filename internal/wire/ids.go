// Package wire holds the small set of identifier and versioning helpers
// shared by every on-the-wire envelope (action envelopes, state updates,
// knowledge entities).
package wire

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// ProtocolVersion is the semver-major compatibility tag carried on every
// envelope (§6.5: "All envelopes include version").
const ProtocolVersion = "1.0"

// NewID returns an opaque unique token suitable for a command_id, update_id,
// or knowledge entity id.
func NewID() string {
	return uuid.NewString()
}

// NowMillis returns the current time as milliseconds since the Unix epoch,
// the timestamp unit required by §6.5.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// SHA256Hex returns the lowercase hex-encoded SHA-256 digest of data, the
// canonical content-hash format required by §6.5 ("All content hashes are
// SHA-256 hex").
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
