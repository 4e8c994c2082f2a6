package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

const getLatestMemorySnapshotQuery = `
SELECT id, child_id, facts, updated_by, created_at
FROM memory_snapshots
WHERE child_id = ?
ORDER BY created_at DESC, rowid DESC
LIMIT 1;
`

// GetLatestMemorySnapshot returns the most recently written snapshot
// for the child, or (nil, nil) when none exists yet.
func (s *Store) GetLatestMemorySnapshot(ctx context.Context, childID string) (*MemorySnapshot, error) {
	var row memorySnapshotRow
	err := s.db.GetContext(ctx, &row, getLatestMemorySnapshotQuery, childID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("failed to load memory snapshot", "error", err, "child_id", childID)
		return nil, err
	}
	return row.ToModel(), nil
}

const insertMemorySnapshotQuery = `
INSERT INTO memory_snapshots (id, child_id, facts, updated_by, created_at)
VALUES (?, ?, ?, ?, ?);
`

// WriteMemorySnapshot appends a new immutable snapshot. Prior
// snapshots are never mutated; the newest row wins.
func (s *Store) WriteMemorySnapshot(ctx context.Context, childID string, facts []string, updatedBy string) error {
	factsJSON, err := json.Marshal(facts)
	if err != nil {
		s.logger.Error("failed to marshal memory facts", "error", err, "child_id", childID)
		return err
	}

	createdAt := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(ctx, insertMemorySnapshotQuery, uuid.NewString(), childID, string(factsJSON), updatedBy, createdAt)
	if err != nil {
		s.logger.Error("failed to insert memory snapshot", "error", err, "child_id", childID)
		return err
	}
	return nil
}
