package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Bogdan-Mihalca97/Oferta-Tehnica/internal/common"
	"github.com/Bogdan-Mihalca97/Oferta-Tehnica/internal/interfaces"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// ProviderType represents the AI provider type
type ProviderType string

const (
	// ProviderGemini uses Google Gemini API
	ProviderGemini ProviderType = "gemini"
	// ProviderClaude uses Anthropic Claude API
	ProviderClaude ProviderType = "claude"
)

const (
	// progressInterval is the number of streamed characters between progress reports
	progressInterval = 500

	defaultCallTimeout = 15 * time.Minute
)

// ProviderFactory routes generation requests to Claude or Gemini and owns their clients
type ProviderFactory struct {
	geminiConfig *common.GeminiConfig
	claudeConfig *common.ClaudeConfig
	llmConfig    *common.LLMConfig
	logger       arbor.ILogger
	retryConfig  *RateLimitRetryConfig

	claudeOptions []option.RequestOption
	geminiBaseURL string

	mu            sync.Mutex
	geminiClient  *genai.Client
	claudeClient  anthropic.Client
	claudeReady   bool
	claudeLimiter *rate.Limiter
	geminiLimiter *rate.Limiter
}

// Compile-time assertion
var _ interfaces.ContentGenerator = (*ProviderFactory)(nil)

// FactoryOption configures the ProviderFactory
type FactoryOption func(*ProviderFactory)

// WithClaudeOptions appends request options to the Anthropic client (e.g. a base URL)
func WithClaudeOptions(opts ...option.RequestOption) FactoryOption {
	return func(f *ProviderFactory) {
		f.claudeOptions = append(f.claudeOptions, opts...)
	}
}

// WithGeminiBaseURL points the Gemini client at a different endpoint
func WithGeminiBaseURL(baseURL string) FactoryOption {
	return func(f *ProviderFactory) {
		f.geminiBaseURL = baseURL
	}
}

// WithRetryConfig overrides the rate limit retry configuration
func WithRetryConfig(config *RateLimitRetryConfig) FactoryOption {
	return func(f *ProviderFactory) {
		f.retryConfig = config
	}
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(
	geminiConfig *common.GeminiConfig,
	claudeConfig *common.ClaudeConfig,
	llmConfig *common.LLMConfig,
	logger arbor.ILogger,
	opts ...FactoryOption,
) *ProviderFactory {
	f := &ProviderFactory{
		geminiConfig:  geminiConfig,
		claudeConfig:  claudeConfig,
		llmConfig:     llmConfig,
		logger:        logger,
		retryConfig:   NewDefaultRetryConfig(),
		claudeLimiter: newLimiter(claudeConfig.RateLimit),
		geminiLimiter: newLimiter(geminiConfig.RateLimit),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// newLimiter allows one call per interval; an empty or zero interval disables pacing
func newLimiter(interval string) *rate.Limiter {
	d := common.MustDuration(interval, 0)
	if d <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(d), 1)
}

// DetectProvider determines the provider type from a model string.
// Model strings can be:
// - "claude-sonnet-4-20250514" -> Claude
// - "claude/claude-sonnet-4-20250514" -> Claude (with prefix)
// - "gemini-2.5-pro" -> Gemini
// - "gemini/gemini-2.5-pro" -> Gemini (with prefix)
// - Empty string -> uses default provider from config
func (f *ProviderFactory) DetectProvider(model string) ProviderType {
	if model == "" {
		return f.defaultProvider()
	}

	model = strings.ToLower(model)

	// Check for explicit provider prefix
	if strings.HasPrefix(model, "claude/") || strings.HasPrefix(model, "anthropic/") {
		return ProviderClaude
	}
	if strings.HasPrefix(model, "gemini/") || strings.HasPrefix(model, "google/") {
		return ProviderGemini
	}

	// Check for model name patterns
	if strings.HasPrefix(model, "claude-") {
		return ProviderClaude
	}
	if strings.HasPrefix(model, "gemini-") {
		return ProviderGemini
	}

	return f.defaultProvider()
}

func (f *ProviderFactory) defaultProvider() ProviderType {
	if f.llmConfig == nil || f.llmConfig.DefaultProvider == "" {
		return ProviderClaude
	}
	return ProviderType(f.llmConfig.DefaultProvider)
}

// NormalizeModel removes provider prefix from model name if present
func (f *ProviderFactory) NormalizeModel(model string) string {
	prefixes := []string{"claude/", "anthropic/", "gemini/", "google/"}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToLower(model), prefix) {
			return model[len(prefix):]
		}
	}
	return model
}

// GetDefaultModel returns the default model for a provider
func (f *ProviderFactory) GetDefaultModel(provider ProviderType) string {
	switch provider {
	case ProviderGemini:
		return f.geminiConfig.Model
	default:
		return f.claudeConfig.Model
	}
}

// GetGeminiClient returns a Gemini client, creating one if necessary
func (f *ProviderFactory) GetGeminiClient(ctx context.Context) (*genai.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.geminiClient != nil {
		return f.geminiClient, nil
	}

	if f.geminiConfig.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is not configured (set GEMINI_API_KEY, OFERTA_GEMINI_API_KEY or gemini.api_key)")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  f.geminiConfig.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if f.geminiBaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: f.geminiBaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	f.geminiClient = client
	return client, nil
}

// GetClaudeClient returns a Claude client, creating one if necessary
func (f *ProviderFactory) GetClaudeClient() (anthropic.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.claudeReady {
		return f.claudeClient, nil
	}

	if f.claudeConfig.APIKey == "" {
		return anthropic.Client{}, fmt.Errorf("Anthropic API key is not configured (set ANTHROPIC_API_KEY, OFERTA_CLAUDE_API_KEY or claude.api_key)")
	}

	opts := append([]option.RequestOption{option.WithAPIKey(f.claudeConfig.APIKey)}, f.claudeOptions...)
	f.claudeClient = anthropic.NewClient(opts...)
	f.claudeReady = true
	return f.claudeClient, nil
}

// GenerateContent generates content using the appropriate provider based on model
func (f *ProviderFactory) GenerateContent(ctx context.Context, request *interfaces.ContentRequest) (*interfaces.ContentResponse, error) {
	if request == nil || strings.TrimSpace(request.Prompt) == "" {
		return nil, fmt.Errorf("prompt cannot be empty")
	}

	provider := f.DetectProvider(request.Model)
	model := f.NormalizeModel(request.Model)
	if model == "" {
		model = f.GetDefaultModel(provider)
	}

	f.logger.Debug().
		Str("provider", string(provider)).
		Str("model", model).
		Int("prompt_len", len(request.Prompt)).
		Msg("Generating content with provider")

	start := time.Now()
	var (
		resp *interfaces.ContentResponse
		err  error
	)
	switch provider {
	case ProviderGemini:
		resp, err = f.withRetry(ctx, "Gemini", f.geminiLimiter, func(ctx context.Context) (*interfaces.ContentResponse, error) {
			return f.generateWithGemini(ctx, request, model)
		})
	default:
		resp, err = f.withRetry(ctx, "Claude", f.claudeLimiter, func(ctx context.Context) (*interfaces.ContentResponse, error) {
			return f.generateWithClaude(ctx, request, model)
		})
	}
	if err != nil {
		return nil, err
	}

	f.logger.Info().
		Str("provider", resp.Provider).
		Str("model", resp.Model).
		Int64("input_tokens", resp.InputTokens).
		Int64("output_tokens", resp.OutputTokens).
		Dur("duration", time.Since(start)).
		Msg("Content generated")

	return resp, nil
}

// withRetry paces every call through limiter and retries rate limit errors with backoff
func (f *ProviderFactory) withRetry(
	ctx context.Context,
	name string,
	limiter *rate.Limiter,
	call func(ctx context.Context) (*interfaces.ContentResponse, error),
) (*interfaces.ContentResponse, error) {
	var apiErr error
	for attempt := 0; attempt <= f.retryConfig.MaxRetries; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		resp, err := call(ctx)
		if err == nil {
			return resp, nil
		}
		apiErr = err

		if !IsRateLimitError(err) || attempt == f.retryConfig.MaxRetries {
			break
		}

		backoff := f.retryConfig.CalculateBackoff(attempt, ExtractRetryDelay(err))
		f.logger.Warn().
			Int("attempt", attempt+1).
			Dur("backoff", backoff).
			Err(err).
			Msgf("Retrying %s API call after rate limit", name)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return nil, fmt.Errorf("%s API call failed: %w", name, apiErr)
}

// Close releases provider clients
func (f *ProviderFactory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.geminiClient = nil
	f.claudeClient = anthropic.Client{}
	f.claudeReady = false
	return nil
}
