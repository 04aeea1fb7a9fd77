package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/Bogdan-Mihalca97/Oferta-Tehnica/internal/common"
	"github.com/Bogdan-Mihalca97/Oferta-Tehnica/internal/interfaces"
	"github.com/anthropics/anthropic-sdk-go"
)

// generateWithClaude streams a single-turn completion from the Claude API.
// The SDK rejects non-streaming requests whose max_tokens implies a long generation.
func (f *ProviderFactory) generateWithClaude(ctx context.Context, request *interfaces.ContentRequest, model string) (*interfaces.ContentResponse, error) {
	client, err := f.GetClaudeClient()
	if err != nil {
		return nil, err
	}

	maxTokens := request.MaxTokens
	if maxTokens <= 0 {
		maxTokens = f.claudeConfig.MaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(request.Prompt)),
		},
	}

	temp := request.Temperature
	if temp <= 0 {
		temp = f.claudeConfig.Temperature
	}
	if temp > 0 {
		params.Temperature = anthropic.Float(float64(temp))
	}

	if request.SystemInstruction != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: request.SystemInstruction},
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, common.MustDuration(f.claudeConfig.Timeout, defaultCallTimeout))
	defer cancel()

	stream := client.Messages.NewStreaming(callCtx, params)
	defer stream.Close()

	message := anthropic.Message{}
	var text strings.Builder
	received := 0
	nextReport := progressInterval

	for stream.Next() {
		event := stream.Current()
		if err := message.Accumulate(event); err != nil {
			return nil, fmt.Errorf("failed to accumulate Claude stream: %w", err)
		}

		switch ev := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			switch delta := ev.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				text.WriteString(delta.Text)
				received += len([]rune(delta.Text))
				if received >= nextReport {
					request.Progress.Report(fmt.Sprintf("  %sSe generează... %d caractere primite", request.Label, received))
					nextReport = (received/progressInterval + 1) * progressInterval
				}
			}
		}
	}
	if err := stream.Err(); err != nil {
		return nil, err
	}

	if text.Len() == 0 {
		return nil, fmt.Errorf("empty response from Claude API (stop reason: %s)", message.StopReason)
	}

	if message.StopReason == anthropic.StopReasonMaxTokens {
		f.logger.Warn().
			Str("model", model).
			Int("max_tokens", maxTokens).
			Msg("Claude output truncated at max tokens")
	}

	inputTokens := message.Usage.InputTokens
	outputTokens := message.Usage.OutputTokens
	request.Progress.Report(fmt.Sprintf("  %sTerminat. Input: %d tokeni, Output: %d tokeni", request.Label, inputTokens, outputTokens))

	return &interfaces.ContentResponse{
		Text:         text.String(),
		Provider:     string(ProviderClaude),
		Model:        model,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
	}, nil
}
