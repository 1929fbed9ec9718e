package ledger

import (
	"context"

	"github.com/fentz26/breakroom/internal/store"
)

// SQLite writes events to the absences table.
type SQLite struct {
	store *store.Store
}

// NewSQLite creates a sink backed by s.
func NewSQLite(s *store.Store) *SQLite {
	return &SQLite{store: s}
}

// Name implements Sink.
func (l *SQLite) Name() string { return "sqlite" }

// Start implements Sink.
func (l *SQLite) Start(ctx context.Context, ev Event) error {
	_, err := l.store.StartAbsence(ctx, ev.AgentID, ev.DisplayName, ev.Category, ev.At)
	return err
}

// End implements Sink. Ending with no open row is a no-op.
func (l *SQLite) End(ctx context.Context, ev Event) error {
	_, err := l.store.EndAbsence(ctx, ev.AgentID, ev.Category, ev.At)
	return err
}
