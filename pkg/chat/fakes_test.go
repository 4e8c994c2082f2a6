package chat

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/openai/openai-go"
	"github.com/samber/lo"

	"github.com/lumokids/companion/pkg/db"
)

type fakeStorage struct {
	profile         *db.ChildProfile
	profileErr      error
	turns           []*db.Turn // oldest first
	appendErr       error
	countErr        error
	snapshots       []*db.MemorySnapshot
	snapshotReadErr error
	writeErr        error
}

func (f *fakeStorage) GetChildProfileByUserID(ctx context.Context, userID string) (*db.ChildProfile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	if f.profile == nil || f.profile.UserID != userID {
		return nil, nil
	}
	return f.profile, nil
}

func (f *fakeStorage) AppendTurn(ctx context.Context, childID string, role string, content string) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.turns = append(f.turns, &db.Turn{
		ID:        uuid.NewString(),
		ChildID:   childID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().Add(time.Duration(len(f.turns)) * time.Millisecond),
	})
	return nil
}

func (f *fakeStorage) ListRecentTurns(ctx context.Context, childID string, limit int) ([]*db.Turn, error) {
	recent := lo.Reverse(append([]*db.Turn{}, f.turns...))
	if len(recent) > limit {
		recent = recent[:limit]
	}
	return recent, nil
}

func (f *fakeStorage) CountUserTurns(ctx context.Context, childID string) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	count := 0
	for _, turn := range f.turns {
		if turn.Role == db.RoleUser {
			count++
		}
	}
	return count, nil
}

func (f *fakeStorage) GetLatestMemorySnapshot(ctx context.Context, childID string) (*db.MemorySnapshot, error) {
	if f.snapshotReadErr != nil {
		return nil, f.snapshotReadErr
	}
	if len(f.snapshots) == 0 {
		return nil, nil
	}
	return f.snapshots[len(f.snapshots)-1], nil
}

func (f *fakeStorage) WriteMemorySnapshot(ctx context.Context, childID string, facts []string, updatedBy string) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.snapshots = append(f.snapshots, &db.MemorySnapshot{
		ID:        uuid.NewString(),
		ChildID:   childID,
		Facts:     facts,
		UpdatedBy: updatedBy,
		CreatedAt: time.Now(),
	})
	return nil
}

type completionCall struct {
	messages    []openai.ChatCompletionMessageParamUnion
	model       string
	temperature float64
}

type fakeCompleter struct {
	replies []string
	err     error
	calls   []completionCall
}

func (f *fakeCompleter) Completions(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, model string, temperature float64) (openai.ChatCompletionMessage, error) {
	f.calls = append(f.calls, completionCall{messages: messages, model: model, temperature: temperature})
	if f.err != nil {
		return openai.ChatCompletionMessage{}, f.err
	}
	reply := "ok"
	if idx := len(f.calls) - 1; idx < len(f.replies) {
		reply = f.replies[idx]
	}
	return openai.ChatCompletionMessage{Content: reply}, nil
}

func messageText(message openai.ChatCompletionMessageParamUnion) string {
	switch {
	case message.OfSystem != nil:
		return message.OfSystem.Content.OfString.Value
	case message.OfUser != nil:
		return message.OfUser.Content.OfString.Value
	case message.OfAssistant != nil:
		return message.OfAssistant.Content.OfString.Value
	default:
		return ""
	}
}

func messageRole(message openai.ChatCompletionMessageParamUnion) string {
	switch {
	case message.OfSystem != nil:
		return "system"
	case message.OfUser != nil:
		return "user"
	case message.OfAssistant != nil:
		return "assistant"
	default:
		return ""
	}
}
