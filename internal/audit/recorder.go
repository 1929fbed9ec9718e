// Package audit records a decision trail for every handled message.
package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/fentz26/breakroom/internal/models"
	"github.com/fentz26/breakroom/internal/store"
)

// Recorder writes decision records for audit trails.
type Recorder struct {
	store *store.Store
}

// NewRecorder creates a new decision recorder.
func NewRecorder(s *store.Store) *Recorder {
	return &Recorder{store: s}
}

// Record writes a decision for msg. The message itself is not stored, only a
// hash of it, so the trail can be matched against chat history later.
func (r *Recorder) Record(ctx context.Context, msg models.Message, res models.Result, details string) (*models.Decision, error) {
	return r.store.WriteDecision(ctx, msg.AgentID, res.Intent.Kind, res.Outcome, HashInputs(msg), details)
}

// HashInputs creates a SHA256 hash of the inputs for reproducibility.
func HashInputs(inputs interface{}) string {
	data, err := json.Marshal(inputs)
	if err != nil {
		return "hash_error"
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
