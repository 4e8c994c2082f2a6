package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/tidwall/gjson"

	"github.com/lumokids/companion/pkg/db"
	"github.com/lumokids/companion/pkg/prompts"
)

const noUpdateSentinel = "NO_UPDATE"

// MemoryDelta is the extractor's proposed replacement memory. It is
// transient and only ever persisted through a MemorySnapshot write.
type MemoryDelta struct {
	Update bool
	Memory []string
}

// runExtraction re-derives the child's memory from recent history.
// Extraction is background enrichment, not part of the reply path:
// every failure inside it is logged and swallowed.
func (s *Service) runExtraction(ctx context.Context, profile *db.ChildProfile) {
	snapshot, err := s.storage.GetLatestMemorySnapshot(ctx, profile.ID)
	if err != nil {
		s.logger.Error("extraction: failed to load memory snapshot", "error", err, "child_id", profile.ID)
		return
	}

	turns, err := s.storage.ListRecentTurns(ctx, profile.ID, s.cfg.HistoryWindow)
	if err != nil {
		s.logger.Error("extraction: failed to list recent turns", "error", err, "child_id", profile.ID)
		return
	}
	if len(turns) == 0 {
		return
	}
	turns = lo.Reverse(turns)

	prompt, err := prompts.BuildMemoryExtractorPrompt(prompts.MemoryExtractorPrompt{
		ProfileSummary: profileSummary(profile),
		Memory:         FormatFacts(snapshot),
	})
	if err != nil {
		s.logger.Error("extraction: failed to render prompt", "error", err, "child_id", profile.ID)
		return
	}

	extractCtx, cancel := context.WithTimeout(ctx, s.cfg.ExtractionTimeout)
	defer cancel()

	completion, err := s.completions.Completions(extractCtx, []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(prompt),
		openai.UserMessage(formatTranscript(turns)),
	}, s.cfg.ExtractorModel, extractorTemperature)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			s.logger.Error("extraction: model call timed out", "child_id", profile.ID)
		} else {
			s.logger.Error("extraction: model call failed", "error", err, "child_id", profile.ID)
		}
		return
	}

	delta := ParseMemoryDelta(completion.Content)
	if !delta.Update {
		s.logger.Debug("extraction produced no memory update", "child_id", profile.ID)
		return
	}

	if err := s.storage.WriteMemorySnapshot(ctx, profile.ID, delta.Memory, db.UpdatedByAI); err != nil {
		s.logger.Error("extraction: failed to write memory snapshot", "error", err, "child_id", profile.ID)
		return
	}
	s.logger.Info("memory snapshot written", "child_id", profile.ID, "facts", len(delta.Memory))
}

func profileSummary(profile *db.ChildProfile) string {
	summary := fmt.Sprintf("%s, age %d", profile.Name, profile.Age)
	if len(profile.LearningInterests) > 0 {
		summary += ", interested in " + strings.Join(profile.LearningInterests, ", ")
	}
	return summary
}

func formatTranscript(turns []*db.Turn) string {
	lines := lo.Map(turns, func(turn *db.Turn, _ int) string {
		return turn.Role + ": " + turn.Content
	})
	return strings.Join(lines, "\n")
}

// ParseMemoryDelta reads the extractor model's raw output. Two well
// formed shapes exist: the NO_UPDATE sentinel, and a JSON object with
// "update" and "memory" keys, possibly embedded in incidental prose.
// Anything else means no update. The output is treated strictly as
// data; it is never evaluated.
func ParseMemoryDelta(raw string) MemoryDelta {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return MemoryDelta{}
	}
	if strings.Contains(trimmed, noUpdateSentinel) && !strings.ContainsRune(trimmed, '{') {
		return MemoryDelta{}
	}

	obj, ok := firstJSONObject(trimmed)
	if !ok || !gjson.Valid(obj) {
		return MemoryDelta{}
	}

	parsed := gjson.Parse(obj)
	if parsed.Get("update").Type != gjson.True {
		return MemoryDelta{}
	}

	memory := parsed.Get("memory")
	if !memory.IsArray() {
		return MemoryDelta{}
	}

	facts := make([]string, 0)
	for _, entry := range memory.Array() {
		if entry.Type == gjson.String && entry.String() != "" {
			facts = append(facts, entry.String())
		}
	}
	if len(facts) == 0 {
		return MemoryDelta{}
	}

	return MemoryDelta{Update: true, Memory: facts}
}

// firstJSONObject returns the first balanced {...} substring, honoring
// string literals and escapes so braces inside facts do not truncate
// the scan.
func firstJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
