package prompts

import (
	"bytes"
	_ "embed"
	"text/template"

	"github.com/pkg/errors"
)

//go:embed templates/memory_extractor_prompt.tmpl
var memoryExtractorPromptTemplate string

type MemoryExtractorPrompt struct {
	ProfileSummary string
	Memory         string
}

func BuildMemoryExtractorPrompt(data MemoryExtractorPrompt) (string, error) {
	if data.ProfileSummary == "" {
		return "", errors.Wrap(ErrMissingField, "profile summary")
	}

	extractorPromptTmpl := template.Must(template.New("memory_extractor_prompt").Parse(memoryExtractorPromptTemplate))
	var buf bytes.Buffer
	if err := extractorPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
