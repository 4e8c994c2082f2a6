package chat

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumokids/companion/pkg/db"
)

func newTestService(storage *fakeStorage, completer *fakeCompleter, cfg Config) *Service {
	if cfg.CompletionsModel == "" {
		cfg.CompletionsModel = "gpt-4o-mini"
	}
	if cfg.ExtractorModel == "" {
		cfg.ExtractorModel = "gpt-4o-mini"
	}
	return NewService(log.New(io.Discard), storage, completer, nil, cfg)
}

func testProfile() *db.ChildProfile {
	return &db.ChildProfile{
		ID:                "child-1",
		UserID:            "user-1",
		Name:              "Alex",
		Age:               7,
		LearningInterests: []string{"dinosaurs", "space"},
		UsageGoals:        []string{"reading practice"},
	}
}

func TestBuildContextEmptyHistory(t *testing.T) {
	storage := &fakeStorage{profile: testProfile()}
	svc := newTestService(storage, &fakeCompleter{}, Config{})

	messages, err := svc.BuildContext(context.Background(), testProfile(), "Hi there!")
	require.NoError(t, err)

	require.Len(t, messages, 2)
	assert.Equal(t, "system", messageRole(messages[0]))
	assert.Equal(t, "user", messageRole(messages[1]))
	assert.Equal(t, "Hi there!", messageText(messages[1]))

	system := messageText(messages[0])
	assert.Contains(t, system, "Alex")
	assert.Contains(t, system, "dinosaurs")
	assert.Contains(t, system, "have not talked with Alex before")
}

func TestBuildContextIncludesMemory(t *testing.T) {
	storage := &fakeStorage{profile: testProfile()}
	require.NoError(t, storage.WriteMemorySnapshot(context.Background(), "child-1", []string{"likes dinosaurs", "has a dog named Rex"}, db.UpdatedByAI))
	svc := newTestService(storage, &fakeCompleter{}, Config{})

	messages, err := svc.BuildContext(context.Background(), testProfile(), "hello")
	require.NoError(t, err)

	system := messageText(messages[0])
	assert.Contains(t, system, "- likes dinosaurs")
	assert.Contains(t, system, "- has a dog named Rex")
	assert.NotContains(t, system, "have not talked with Alex before")
}

func TestBuildContextWindowsHistoryOldestFirst(t *testing.T) {
	storage := &fakeStorage{profile: testProfile()}
	for i := 0; i < 6; i++ {
		require.NoError(t, storage.AppendTurn(context.Background(), "child-1", db.RoleUser, fmt.Sprintf("question %d", i)))
		require.NoError(t, storage.AppendTurn(context.Background(), "child-1", db.RoleAssistant, fmt.Sprintf("answer %d", i)))
	}
	svc := newTestService(storage, &fakeCompleter{}, Config{HistoryWindow: 8})

	messages, err := svc.BuildContext(context.Background(), testProfile(), "new message")
	require.NoError(t, err)

	// system + 8 history turns + new user message
	require.Len(t, messages, 10)

	// The 8 newest of the 12 stored turns, chronological order.
	assert.Equal(t, "question 2", messageText(messages[1]))
	assert.Equal(t, "user", messageRole(messages[1]))
	assert.Equal(t, "answer 2", messageText(messages[2]))
	assert.Equal(t, "assistant", messageRole(messages[2]))
	assert.Equal(t, "answer 5", messageText(messages[8]))
	assert.Equal(t, "new message", messageText(messages[9]))
}

func TestFormatFacts(t *testing.T) {
	assert.Equal(t, "", FormatFacts(nil))
	assert.Equal(t, "", FormatFacts(&db.MemorySnapshot{}))
	assert.Equal(t, "- a\n- b", FormatFacts(&db.MemorySnapshot{Facts: []string{"a", "b"}}))
}
