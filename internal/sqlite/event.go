package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/covenant-ledger/covenant/internal/domain/vault"
)

// EventRepository reads the audit log. Writing happens exclusively inside
// the mutating repository methods, in the same transaction as the state
// change each event records.
type EventRepository struct {
	db *DB
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

// insertEvent appends an audit event within an open transaction.
func insertEvent(ctx context.Context, e execer, evt *vault.Event) error {
	var details any
	if len(evt.Details) > 0 {
		data, err := json.Marshal(evt.Details)
		if err != nil {
			return fmt.Errorf("failed to encode event details: %w", err)
		}
		details = string(data)
	}

	_, err := e.ExecContext(ctx, `
		INSERT INTO events (id, project_id, kind, actor, role, amount, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, evt.ID, evt.ProjectID, string(evt.Kind), evt.Actor, string(evt.Role), evt.Amount, details, evt.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// List returns audit events, newest first.
func (r *EventRepository) List(ctx context.Context, opts vault.ListEventsOptions) ([]vault.Event, error) {
	query := `
		SELECT id, project_id, kind, actor, role, amount, details, created_at
		FROM events
	`
	var conds []string
	var args []any
	if opts.ProjectID != nil {
		conds = append(conds, "project_id = ?")
		args = append(args, *opts.ProjectID)
	}
	if len(opts.Kinds) > 0 {
		placeholders := make([]string, len(opts.Kinds))
		for i, kind := range opts.Kinds {
			placeholders[i] = "?"
			args = append(args, string(kind))
		}
		conds = append(conds, "kind IN ("+strings.Join(placeholders, ", ")+")")
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, opts.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []vault.Event
	for rows.Next() {
		evt, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}
	return events, nil
}

func scanEvent(rows *sql.Rows) (vault.Event, error) {
	var evt vault.Event
	var kind, role string
	var details sql.NullString
	if err := rows.Scan(&evt.ID, &evt.ProjectID, &kind, &evt.Actor, &role, &evt.Amount, &details, &evt.CreatedAt); err != nil {
		return vault.Event{}, fmt.Errorf("failed to scan event: %w", err)
	}
	evt.Kind = vault.EventKind(kind)
	evt.Role = vault.Role(role)
	if details.Valid && details.String != "" {
		if err := json.Unmarshal([]byte(details.String), &evt.Details); err != nil {
			return vault.Event{}, fmt.Errorf("failed to decode event details: %w", err)
		}
	}
	return evt, nil
}
