// Package sync implements the schedule synchronization core: content
// fingerprinting, dictionary sync, per-group reconciliation, the sync
// orchestrator, retention sweeping and reminder scanning.
package sync

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/pwlgk/s13-backend/internal/domain/schedule"
)

// Fields the feed varies across otherwise-identical republications.
// They carry no semantic content and are excluded from the fingerprint.
var volatileFields = []string{"id", "publishDate"}

// Fingerprint produces a stable digest of a raw lesson occurrence.
//
// The upstream row id and publish timestamp are stripped, the remaining
// fields are serialized with deterministic key ordering and hashed with
// SHA-256. Equal semantic content therefore yields an equal fingerprint
// regardless of field order in the payload or republication time.
func Fingerprint(raw schedule.RawLesson) string {
	stable := make(map[string]any, len(raw))
	for k, v := range raw {
		stable[k] = v
	}
	for _, f := range volatileFields {
		delete(stable, f)
	}

	// json.Marshal sorts map keys, which gives the deterministic ordering.
	encoded, err := json.Marshal(stable)
	if err != nil {
		// Raw lessons come from decoded JSON, so re-encoding cannot fail;
		// hash the empty document rather than propagate an impossible error.
		encoded = []byte("{}")
	}

	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:])
}
