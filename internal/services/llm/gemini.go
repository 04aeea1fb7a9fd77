package llm

import (
	"context"
	"fmt"

	"github.com/Bogdan-Mihalca97/Oferta-Tehnica/internal/common"
	"github.com/Bogdan-Mihalca97/Oferta-Tehnica/internal/interfaces"
	"google.golang.org/genai"
)

// generateWithGemini generates content using the Gemini API
func (f *ProviderFactory) generateWithGemini(ctx context.Context, request *interfaces.ContentRequest, model string) (*interfaces.ContentResponse, error) {
	client, err := f.GetGeminiClient(ctx)
	if err != nil {
		return nil, err
	}

	temp := request.Temperature
	if temp <= 0 {
		temp = f.geminiConfig.Temperature
	}

	config := &genai.GenerateContentConfig{}
	if temp > 0 {
		config.Temperature = genai.Ptr(temp)
	}

	maxTokens := request.MaxTokens
	if maxTokens <= 0 {
		maxTokens = f.geminiConfig.MaxTokens
	}
	if maxTokens > 0 {
		config.MaxOutputTokens = int32(maxTokens)
	}

	if request.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(request.SystemInstruction, genai.RoleUser)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(request.Prompt, genai.RoleUser),
	}

	callCtx, cancel := context.WithTimeout(ctx, common.MustDuration(f.geminiConfig.Timeout, defaultCallTimeout))
	defer cancel()

	resp, err := client.Models.GenerateContent(callCtx, model, contents, config)
	if err != nil {
		return nil, err
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini API")
	}

	responseText := resp.Text()
	if responseText == "" {
		return nil, fmt.Errorf("empty text in Gemini response")
	}

	var inputTokens, outputTokens int64
	if resp.UsageMetadata != nil {
		inputTokens = int64(resp.UsageMetadata.PromptTokenCount)
		outputTokens = int64(resp.UsageMetadata.CandidatesTokenCount)
	}

	request.Progress.Report(fmt.Sprintf("  %sTerminat. Input: %d tokeni, Output: %d tokeni", request.Label, inputTokens, outputTokens))

	return &interfaces.ContentResponse{
		Text:         responseText,
		Provider:     string(ProviderGemini),
		Model:        model,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
	}, nil
}
