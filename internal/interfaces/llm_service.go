package interfaces

import (
	"context"
)

// ProgressFunc receives human-readable progress messages during long operations.
// A nil ProgressFunc is allowed everywhere one is accepted.
type ProgressFunc func(message string)

// Report calls fn when it is set
func (fn ProgressFunc) Report(message string) {
	if fn != nil {
		fn(message)
	}
}

// ContentRequest is a provider-agnostic single-turn generation request
type ContentRequest struct {
	SystemInstruction string
	Prompt            string
	Model             string // Empty uses the default provider's model; "claude/" or "gemini/" prefixes select a provider
	MaxTokens         int
	Temperature       float32
	Label             string // Prefix for progress messages, e.g. "[Partea 1/2] "
	Progress          ProgressFunc
}

// ContentResponse is the generated text plus token usage
type ContentResponse struct {
	Text         string
	Provider     string
	Model        string
	InputTokens  int64
	OutputTokens int64
}

// ContentGenerator generates text with a language model
type ContentGenerator interface {
	GenerateContent(ctx context.Context, request *ContentRequest) (*ContentResponse, error)
}
