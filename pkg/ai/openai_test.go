package ai

import (
	"encoding/json"
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestCompletionParamsSerializesTemperature(t *testing.T) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.UserMessage("hello"),
	}

	tests := []struct {
		name        string
		temperature float64
	}{
		{name: "zero temperature still sent", temperature: 0},
		{name: "reply temperature", temperature: 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := completionParams(messages, "gpt-4o-mini", tt.temperature)

			body, err := json.Marshal(params)
			require.NoError(t, err)

			temperature := gjson.GetBytes(body, "temperature")
			require.True(t, temperature.Exists(), "temperature missing from request body: %s", body)
			assert.Equal(t, tt.temperature, temperature.Float())
			assert.Equal(t, "gpt-4o-mini", gjson.GetBytes(body, "model").String())
		})
	}
}
