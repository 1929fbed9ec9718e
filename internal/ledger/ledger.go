// Package ledger defines the durable absence log and its backends. Only break
// and offline stretches are logged; a start appends an open row and an end
// closes every open row for the agent and category.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/fentz26/breakroom/internal/models"
)

// ErrUnsupportedBackend is returned by Open for unknown backend names.
var ErrUnsupportedBackend = errors.New("unsupported ledger backend")

// Event is one start or end entry.
type Event struct {
	AgentID     models.AgentID
	DisplayName string
	Category    models.State
	At          time.Time
}

// Sink receives ledger events. Implementations may block on I/O; callers
// dispatch them off the admission path.
type Sink interface {
	// Name returns the backend identifier.
	Name() string

	// Start records that the agent entered category.
	Start(ctx context.Context, ev Event) error

	// End records that the agent left category.
	End(ctx context.Context, ev Event) error
}

// Nop discards every event.
type Nop struct{}

// Name implements Sink.
func (Nop) Name() string { return "none" }

// Start implements Sink.
func (Nop) Start(context.Context, Event) error { return nil }

// End implements Sink.
func (Nop) End(context.Context, Event) error { return nil }
