package db

import (
	"context"
	"database/sql"
	"errors"
)

const getChildByUserIDQuery = `
SELECT id, user_id, name, age, learning_interests, usage_goals, avatar_url
FROM children
WHERE user_id = ?
LIMIT 1;
`

// GetChildProfileByUserID resolves the child profile owned by the
// authenticated user. Returns (nil, nil) when no profile exists.
func (s *Store) GetChildProfileByUserID(ctx context.Context, userID string) (*ChildProfile, error) {
	var row childRow
	err := s.db.GetContext(ctx, &row, getChildByUserIDQuery, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("failed to load child profile", "error", err, "user_id", userID)
		return nil, err
	}
	return row.ToModel(), nil
}
