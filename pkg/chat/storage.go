package chat

import (
	"context"

	"github.com/lumokids/companion/pkg/db"
)

type Storage interface {
	GetChildProfileByUserID(ctx context.Context, userID string) (*db.ChildProfile, error)
	AppendTurn(ctx context.Context, childID string, role string, content string) error
	ListRecentTurns(ctx context.Context, childID string, limit int) ([]*db.Turn, error)
	CountUserTurns(ctx context.Context, childID string) (int, error)
	GetLatestMemorySnapshot(ctx context.Context, childID string) (*db.MemorySnapshot, error)
	WriteMemorySnapshot(ctx context.Context, childID string, facts []string, updatedBy string) error
}
