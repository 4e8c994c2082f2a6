package chat

import (
	"context"
	"strings"

	"github.com/openai/openai-go"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/lumokids/companion/pkg/db"
	"github.com/lumokids/companion/pkg/prompts"
)

// BuildContext assembles the exact ordered message list sent to the
// model: one system message (profile plus current memory), the most
// recent window of persisted turns oldest first, then the new user
// message. It is a pure projection of state at call time and performs
// no writes.
func (s *Service) BuildContext(ctx context.Context, profile *db.ChildProfile, input string) ([]openai.ChatCompletionMessageParamUnion, error) {
	snapshot, err := s.storage.GetLatestMemorySnapshot(ctx, profile.ID)
	if err != nil {
		return nil, errors.Wrap(err, "loading memory snapshot")
	}

	system, err := prompts.BuildCompanionSystemPrompt(prompts.CompanionSystemPrompt{
		ChildName: profile.Name,
		Age:       profile.Age,
		Interests: strings.Join(profile.LearningInterests, ", "),
		Goals:     strings.Join(profile.UsageGoals, ", "),
		Memory:    FormatFacts(snapshot),
	})
	if err != nil {
		return nil, errors.Wrap(err, "rendering system prompt")
	}

	turns, err := s.storage.ListRecentTurns(ctx, profile.ID, s.cfg.HistoryWindow)
	if err != nil {
		return nil, errors.Wrap(err, "listing recent turns")
	}
	// The store returns newest first; the model wants chronological order.
	turns = lo.Reverse(turns)

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns)+2)
	messages = append(messages, openai.SystemMessage(system))
	for _, turn := range turns {
		switch turn.Role {
		case db.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(turn.Content))
		default:
			messages = append(messages, openai.UserMessage(turn.Content))
		}
	}
	messages = append(messages, openai.UserMessage(input))

	return messages, nil
}

// FormatFacts renders a snapshot's facts as the bulleted list embedded
// in prompts. Returns the empty string when no snapshot exists.
func FormatFacts(snapshot *db.MemorySnapshot) string {
	if snapshot == nil || len(snapshot.Facts) == 0 {
		return ""
	}
	lines := lo.Map(snapshot.Facts, func(fact string, _ int) string {
		return "- " + fact
	})
	return strings.Join(lines, "\n")
}
