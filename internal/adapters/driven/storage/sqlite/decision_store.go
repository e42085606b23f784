package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/custodia-labs/margin/internal/core/domain"
	"github.com/custodia-labs/margin/internal/core/ports/driven"
)

// Ensure decisionStore implements the interface.
var _ driven.DecisionStore = (*decisionStore)(nil)

// decisionStore implements driven.DecisionStore using SQLite.
type decisionStore struct {
	store *Store
}

// Record appends a decision.
func (s *decisionStore) Record(ctx context.Context, d *domain.Decision) error {
	if !d.Action.IsValid() {
		return fmt.Errorf("%w: decision action %q", domain.ErrInvalidInput, d.Action)
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO decisions (id, sidecar_ref, suggestion_id, action, text, decided_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, d.ID, d.SidecarRef, d.SuggestionID, string(d.Action), d.Text, formatTime(d.DecidedAt))
	if err != nil {
		return fmt.Errorf("recording decision: %w", err)
	}
	return nil
}

// List returns decisions for a sidecar, newest first.
func (s *decisionStore) List(ctx context.Context, ref string, limit int) ([]domain.Decision, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, sidecar_ref, suggestion_id, action, text, decided_at
		FROM decisions
		WHERE sidecar_ref = ?
		ORDER BY decided_at DESC, rowid DESC
		LIMIT ?
	`, ref, limit)
	if err != nil {
		return nil, fmt.Errorf("listing decisions: %w", err)
	}
	defer rows.Close()

	var decisions []domain.Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		decisions = append(decisions, *d)
	}
	return decisions, rows.Err()
}

// Prune keeps the newest keep decisions for a sidecar.
func (s *decisionStore) Prune(ctx context.Context, ref string, keep int) (int, error) {
	res, err := s.store.db.ExecContext(ctx, `
		DELETE FROM decisions
		WHERE sidecar_ref = ? AND id NOT IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (ORDER BY decided_at DESC, rowid DESC) AS rn
				FROM decisions
				WHERE sidecar_ref = ?
			) WHERE rn <= ?
		)
	`, ref, ref, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning decisions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("pruning decisions: %w", err)
	}
	return int(n), nil
}

// ==================== Helper Functions ====================

func scanDecision(rows *sql.Rows) (*domain.Decision, error) {
	var d domain.Decision
	var action, decidedAt string
	if err := rows.Scan(&d.ID, &d.SidecarRef, &d.SuggestionID, &action, &d.Text, &decidedAt); err != nil {
		return nil, fmt.Errorf("scanning decision: %w", err)
	}
	d.Action = domain.DecisionAction(action)
	t, err := time.Parse(time.RFC3339Nano, decidedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing decided_at: %w", err)
	}
	d.DecidedAt = t
	return &d, nil
}

// formatTime stores UTC RFC 3339 with fixed-width nanoseconds so that
// lexical order matches time order.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}
