package ai

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
)

var _ Completions = (*Service)(nil)

type Service struct {
	client *openai.Client
	logger *log.Logger
}

func NewOpenAIService(logger *log.Logger, apiKey string, baseUrl string) *Service {
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseUrl),
	)
	return &Service{
		client: &client,
		logger: logger,
	}
}

func (s *Service) ParamsCompletions(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletionMessage, error) {
	completion, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return openai.ChatCompletionMessage{}, err
	}

	if len(completion.Choices) == 0 {
		return openai.ChatCompletionMessage{}, fmt.Errorf("OpenAI returned no completion choices")
	}

	return completion.Choices[0].Message, nil
}

// Completions issues a single non-streaming chat completion.
func (s *Service) Completions(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, model string, temperature float64) (openai.ChatCompletionMessage, error) {
	return s.ParamsCompletions(ctx, completionParams(messages, model, temperature))
}

// completionParams wraps temperature with param.NewOpt so a zero value still
// serializes instead of being treated as omitted.
func completionParams(messages []openai.ChatCompletionMessageParamUnion, model string, temperature float64) openai.ChatCompletionNewParams {
	return openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       model,
		Temperature: param.NewOpt(temperature),
	}
}
