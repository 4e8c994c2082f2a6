package db

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const insertTurnQuery = `
INSERT INTO turns (id, child_id, role, content, created_at)
VALUES (?, ?, ?, ?, ?);
`

// AppendTurn appends one message to the child's turn log. The log is
// append-only; rows are never updated or deleted by the pipeline.
func (s *Store) AppendTurn(ctx context.Context, childID string, role string, content string) error {
	createdAt := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx, insertTurnQuery, uuid.NewString(), childID, role, content, createdAt)
	if err != nil {
		s.logger.Error("failed to insert turn", "error", err, "child_id", childID, "role", role)
		return err
	}
	return nil
}

const listRecentTurnsQuery = `
SELECT id, child_id, role, content, created_at
FROM turns
WHERE child_id = ?
ORDER BY created_at DESC, rowid DESC
LIMIT ?;
`

// ListRecentTurns returns up to limit turns, newest first.
func (s *Store) ListRecentTurns(ctx context.Context, childID string, limit int) ([]*Turn, error) {
	var rows []turnRow
	err := s.db.SelectContext(ctx, &rows, listRecentTurnsQuery, childID, limit)
	if err != nil {
		s.logger.Error("failed to list turns", "error", err, "child_id", childID)
		return nil, err
	}

	turns := make([]*Turn, 0, len(rows))
	for i := range rows {
		turns = append(turns, rows[i].ToModel())
	}
	return turns, nil
}

const countUserTurnsQuery = `
SELECT COUNT(*) FROM turns WHERE child_id = ? AND role = ?;
`

// CountUserTurns counts user-authored turns in the persisted log, so
// the extraction cadence is shared across concurrent processes.
func (s *Store) CountUserTurns(ctx context.Context, childID string) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, countUserTurnsQuery, childID, RoleUser)
	if err != nil {
		s.logger.Error("failed to count user turns", "error", err, "child_id", childID)
		return 0, err
	}
	return count, nil
}
