package prompts

import (
	"bytes"
	_ "embed"
	"text/template"

	"github.com/pkg/errors"
)

//go:embed templates/companion_system_prompt.tmpl
var companionSystemPromptTemplate string

// ErrMissingField is returned when a required profile field is absent.
var ErrMissingField = errors.New("required prompt field is missing")

type CompanionSystemPrompt struct {
	ChildName string
	Age       int
	Interests string
	Goals     string
	Memory    string
}

func BuildCompanionSystemPrompt(data CompanionSystemPrompt) (string, error) {
	if data.ChildName == "" {
		return "", errors.Wrap(ErrMissingField, "child name")
	}

	systemPromptTmpl := template.Must(template.New("companion_system_prompt").Parse(companionSystemPromptTemplate))
	var buf bytes.Buffer
	if err := systemPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
