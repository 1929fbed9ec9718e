// Package store provides SQLite-backed persistence for breakroom.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fentz26/breakroom/internal/models"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store provides access to the breakroom SQLite database.
type Store struct {
	db *sql.DB
}

// New creates a new Store and runs migrations.
func New(dbPath string) (*Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Open with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate runs idempotent schema migrations.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS absences (
		id TEXT PRIMARY KEY,
		agent_id TEXT NOT NULL,
		display_name TEXT NOT NULL,
		category TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		ended_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS decisions (
		id TEXT PRIMARY KEY,
		agent_id TEXT NOT NULL,
		intent TEXT NOT NULL,
		outcome TEXT NOT NULL,
		inputs_hash TEXT NOT NULL,
		details TEXT,
		timestamp DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_absences_agent_id ON absences(agent_id);
	CREATE INDEX IF NOT EXISTS idx_absences_open ON absences(agent_id, category, ended_at);
	CREATE INDEX IF NOT EXISTS idx_decisions_agent_id ON decisions(agent_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// --- Absence Operations ---

// StartAbsence appends an open absence row.
func (s *Store) StartAbsence(ctx context.Context, agentID models.AgentID, displayName string, category models.State, at time.Time) (*models.Absence, error) {
	a := &models.Absence{
		ID:          uuid.New().String(),
		AgentID:     agentID,
		DisplayName: displayName,
		Category:    category,
		StartedAt:   at.UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO absences (id, agent_id, display_name, category, started_at) VALUES (?, ?, ?, ?, ?)`,
		a.ID, string(a.AgentID), a.DisplayName, string(a.Category), a.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert absence: %w", err)
	}
	return a, nil
}

// EndAbsence closes every open row for the agent in category and returns the
// number of rows closed. Closing nothing is not an error.
func (s *Store) EndAbsence(ctx context.Context, agentID models.AgentID, category models.State, at time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE absences SET ended_at = ? WHERE agent_id = ? AND category = ? AND ended_at IS NULL`,
		at.UTC(), string(agentID), string(category),
	)
	if err != nil {
		return 0, fmt.Errorf("end absence: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check rows affected: %w", err)
	}
	return n, nil
}

// AbsenceFilter narrows ListAbsences.
type AbsenceFilter struct {
	AgentID  models.AgentID
	OpenOnly bool
	Limit    int
}

// ListAbsences returns absences, newest first.
func (s *Store) ListAbsences(ctx context.Context, f AbsenceFilter) ([]models.Absence, error) {
	query := `SELECT id, agent_id, display_name, category, started_at, ended_at FROM absences WHERE 1=1`
	var args []interface{}

	if f.AgentID != "" {
		query += ` AND agent_id = ?`
		args = append(args, string(f.AgentID))
	}
	if f.OpenOnly {
		query += ` AND ended_at IS NULL`
	}
	query += ` ORDER BY started_at DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query absences: %w", err)
	}
	defer rows.Close()

	absences := make([]models.Absence, 0)
	for rows.Next() {
		var a models.Absence
		var agentID, category string
		var endedAt sql.NullTime
		if err := rows.Scan(&a.ID, &agentID, &a.DisplayName, &category, &a.StartedAt, &endedAt); err != nil {
			return nil, fmt.Errorf("scan absence: %w", err)
		}
		a.AgentID = models.AgentID(agentID)
		a.Category = models.State(category)
		if endedAt.Valid {
			a.EndedAt = &endedAt.Time
		}
		absences = append(absences, a)
	}
	return absences, rows.Err()
}

// --- Decision Operations ---

// WriteDecision writes an audit record for one handled message.
func (s *Store) WriteDecision(ctx context.Context, agentID models.AgentID, intent models.IntentKind, outcome models.Outcome, inputsHash, details string) (*models.Decision, error) {
	d := &models.Decision{
		ID:         uuid.New().String(),
		AgentID:    agentID,
		Intent:     intent,
		Outcome:    outcome,
		InputsHash: inputsHash,
		Details:    details,
		Timestamp:  time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO decisions (id, agent_id, intent, outcome, inputs_hash, details, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.ID, string(d.AgentID), string(d.Intent), string(d.Outcome), d.InputsHash, d.Details, d.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert decision: %w", err)
	}
	return d, nil
}

// ListDecisions returns the most recent decisions for an agent, newest first.
// An empty agentID lists every agent.
func (s *Store) ListDecisions(ctx context.Context, agentID models.AgentID, limit int) ([]models.Decision, error) {
	query := `SELECT id, agent_id, intent, outcome, inputs_hash, details, timestamp FROM decisions`
	var args []interface{}
	if agentID != "" {
		query += ` WHERE agent_id = ?`
		args = append(args, string(agentID))
	}
	query += ` ORDER BY timestamp DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	var decisions []models.Decision
	for rows.Next() {
		var d models.Decision
		var id, intent, outcome string
		var details sql.NullString
		if err := rows.Scan(&d.ID, &id, &intent, &outcome, &d.InputsHash, &details, &d.Timestamp); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		d.AgentID = models.AgentID(id)
		d.Intent = models.IntentKind(intent)
		d.Outcome = models.Outcome(outcome)
		if details.Valid {
			d.Details = details.String
		}
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}
