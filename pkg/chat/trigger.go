package chat

import (
	"context"
)

// shouldExtract decides from the persisted user-turn count whether
// memory extraction runs after this turn. The count is read after the
// current turn's write, so the cadence stays consistent across
// concurrent processes and restarts. A failed read fails closed: the
// reply has already been produced and extraction is skipped.
func (s *Service) shouldExtract(ctx context.Context, childID string) bool {
	count, err := s.storage.CountUserTurns(ctx, childID)
	if err != nil {
		s.logger.Error("user turn count unavailable, skipping extraction", "error", err, "child_id", childID)
		return false
	}
	return count > 0 && count%s.cfg.ExtractionCadence == 0
}
