package ai

import (
	"context"

	"github.com/openai/openai-go"
)

type Completions interface {
	Completions(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, model string, temperature float64) (openai.ChatCompletionMessage, error)
}
