package prompts

import (
	"errors"
	"strings"
	"testing"
)

func TestBuildMemoryExtractorPrompt(t *testing.T) {
	prompt, err := BuildMemoryExtractorPrompt(MemoryExtractorPrompt{
		ProfileSummary: "Alex, age 7, interested in dinosaurs",
		Memory:         "- likes dinosaurs",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(prompt, "Alex, age 7") {
		t.Errorf("expected prompt to contain profile summary")
	}
	if !strings.Contains(prompt, "- likes dinosaurs") {
		t.Errorf("expected prompt to contain existing memory")
	}
	if !strings.Contains(prompt, "NO_UPDATE") {
		t.Errorf("expected prompt to describe the sentinel")
	}
	if !strings.Contains(prompt, `{"update": true, "memory":`) {
		t.Errorf("expected prompt to describe the JSON shape")
	}
}

func TestBuildMemoryExtractorPromptEmptyMemory(t *testing.T) {
	prompt, err := BuildMemoryExtractorPrompt(MemoryExtractorPrompt{
		ProfileSummary: "Alex, age 7",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(prompt, "(no stored memory yet)") {
		t.Errorf("expected empty-memory marker")
	}
}

func TestBuildMemoryExtractorPromptMissingSummary(t *testing.T) {
	_, err := BuildMemoryExtractorPrompt(MemoryExtractorPrompt{})
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
}
