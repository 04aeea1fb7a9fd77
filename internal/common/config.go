package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Server      ServerConfig     `toml:"server"`
	Logging     LoggingConfig    `toml:"logging"`
	Creatio     CreatioConfig    `toml:"creatio"`
	LLM         LLMConfig        `toml:"llm"`
	Claude      ClaudeConfig     `toml:"claude"`
	Gemini      GeminiConfig     `toml:"gemini"`
	Generation  GenerationConfig `toml:"generation"`
	Company     CompanyConfig    `toml:"company"`
	Document    DocumentConfig   `toml:"document"`
}

type ServerConfig struct {
	Port         int    `toml:"port"`
	Host         string `toml:"host"`
	ReadTimeout  string `toml:"read_timeout"`  // e.g. "30s"
	WriteTimeout string `toml:"write_timeout"` // generation runs for minutes, keep this generous
	IdleTimeout  string `toml:"idle_timeout"`
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// CreatioConfig contains the CRM gateway settings
type CreatioConfig struct {
	BaseURL    string `toml:"base_url"`    // e.g. "https://crm.example.com"
	AuthSecret string `toml:"auth_secret"` // Sent as the AuthSecret header on every request
	MaxRetries int    `toml:"max_retries"` // Total attempts per call (default: 3)
	RetryDelay string `toml:"retry_delay"` // Fixed delay between attempts (default: "2s")
	Timeout    string `toml:"timeout"`     // Per-request HTTP timeout (default: "60s")
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
)

// LLMConfig contains provider selection
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider"` // "claude" or "gemini" (default: "claude")
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Timeout     string  `toml:"timeout"`    // Per-call timeout (default: "15m")
	RateLimit   string  `toml:"rate_limit"` // Minimum interval between calls (default: "1s")
	Temperature float32 `toml:"temperature"`
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Timeout     string  `toml:"timeout"`
	RateLimit   string  `toml:"rate_limit"`
	Temperature float32 `toml:"temperature"`
}

// GenerationConfig controls proposal generation
type GenerationConfig struct {
	PTEModel           string `toml:"pte_model"`            // Model for the PTE endpoint; empty uses the provider default
	SummaryModel       string `toml:"summary_model"`        // Model for the Rezumat section
	MaxTokens          int    `toml:"max_tokens"`           // Output budget per call (default: 16384)
	ChunkThreshold     int    `toml:"chunk_threshold"`      // Characters above which PTE input is split in two (default: 30000)
	PromptsDir         string `toml:"prompts_dir"`          // Optional directory overriding the embedded prompt templates
	ReferenceStylePath string `toml:"reference_style_path"` // Optional JSON file with a "reference_style" key
	OutputFileName     string `toml:"output_file_name"`     // Name of the document uploaded to Creatio
}

// CompanyConfig describes the bidding association
type CompanyConfig struct {
	Leader         string `toml:"leader"`
	Associate      string `toml:"associate"`
	Subcontractor  string `toml:"subcontractor"`
	WarrantyMonths int    `toml:"warranty_months"`
	PMExperience   int    `toml:"pm_experience"` // Similar projects led by the project manager
}

// DocumentConfig controls rendering of generated documents
type DocumentConfig struct {
	Format       string  `toml:"format"`         // "docx" or "pdf" (default: "docx")
	FontName     string  `toml:"font_name"`      // Font requested by DOCX output (default: "Arial Narrow")
	FontPath     string  `toml:"font_path"`      // Optional UTF-8 TTF font (regular)
	FontBoldPath string  `toml:"font_bold_path"` // Optional UTF-8 TTF font (bold)
	FontSize     float64 `toml:"font_size"`
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port:         8080,
			Host:         "localhost",
			ReadTimeout:  "30s",
			WriteTimeout: "15m",
			IdleTimeout:  "60s",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
		Creatio: CreatioConfig{
			MaxRetries: 3,
			RetryDelay: "2s",
			Timeout:    "60s",
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderClaude,
		},
		Claude: ClaudeConfig{
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 16384,
			Timeout:   "15m",
			RateLimit: "1s",
		},
		Gemini: GeminiConfig{
			Model:     "gemini-2.5-pro",
			MaxTokens: 16384,
			Timeout:   "15m",
			RateLimit: "4s", // 15 RPM on the free tier
		},
		Generation: GenerationConfig{
			MaxTokens:      16384,
			ChunkThreshold: 30000,
			OutputFileName: "proceduri_tehnice_executie.docx",
		},
		Company: CompanyConfig{
			Leader:         "CRC AG S.R.L.",
			Associate:      "CRC NEW ENERGY S.R.L.",
			Subcontractor:  "BACKUP TECHNOLOGY S.R.L.",
			WarrantyMonths: 120,
			PMExperience:   5,
		},
		Document: DocumentConfig{
			Format:   "docx",
			FontName: "Arial Narrow",
			FontSize: 12,
		},
	}
}

// LoadFromFiles loads configuration with priority: default -> file1 -> file2 -> ... -> env
// Later files override earlier files. CLI flags are applied afterwards by ApplyFlagOverrides.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks that duration fields parse and numeric fields are sane.
// Missing Creatio credentials are not an error here: the CLI can run locally without them.
func (c *Config) Validate() error {
	durations := map[string]string{
		"server.read_timeout":  c.Server.ReadTimeout,
		"server.write_timeout": c.Server.WriteTimeout,
		"server.idle_timeout":  c.Server.IdleTimeout,
		"creatio.retry_delay":  c.Creatio.RetryDelay,
		"creatio.timeout":      c.Creatio.Timeout,
		"claude.timeout":       c.Claude.Timeout,
		"claude.rate_limit":    c.Claude.RateLimit,
		"gemini.timeout":       c.Gemini.Timeout,
		"gemini.rate_limit":    c.Gemini.RateLimit,
	}
	for key, value := range durations {
		if value == "" {
			continue
		}
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid duration for %s: %q: %w", key, value, err)
		}
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d", c.Server.Port)
	}
	if c.Creatio.MaxRetries < 1 {
		return fmt.Errorf("creatio.max_retries must be at least 1, got %d", c.Creatio.MaxRetries)
	}
	switch c.LLM.DefaultProvider {
	case LLMProviderClaude, LLMProviderGemini:
	default:
		return fmt.Errorf("unknown llm.default_provider: %q", c.LLM.DefaultProvider)
	}
	switch c.Document.Format {
	case "", "docx", "pdf":
	default:
		return fmt.Errorf("unknown document.format: %q", c.Document.Format)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("OFERTA_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("OFERTA_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("OFERTA_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Logging configuration
	if level := os.Getenv("OFERTA_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("OFERTA_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Creatio configuration
	if baseURL := os.Getenv("OFERTA_CREATIO_BASE_URL"); baseURL != "" {
		config.Creatio.BaseURL = baseURL
	}
	if secret := os.Getenv("OFERTA_CREATIO_AUTH_SECRET"); secret != "" {
		config.Creatio.AuthSecret = secret
	}
	if maxRetries := os.Getenv("OFERTA_CREATIO_MAX_RETRIES"); maxRetries != "" {
		if mr, err := strconv.Atoi(maxRetries); err == nil {
			config.Creatio.MaxRetries = mr
		}
	}
	if delay := os.Getenv("OFERTA_CREATIO_RETRY_DELAY"); delay != "" {
		config.Creatio.RetryDelay = delay
	}

	// LLM provider configuration
	if provider := os.Getenv("OFERTA_LLM_DEFAULT_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(provider)
	}

	// Claude configuration
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if apiKey := os.Getenv("OFERTA_CLAUDE_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey // OFERTA_ prefix takes priority
	}
	if model := os.Getenv("OFERTA_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}
	if maxTokens := os.Getenv("OFERTA_CLAUDE_MAX_TOKENS"); maxTokens != "" {
		if mt, err := strconv.Atoi(maxTokens); err == nil {
			config.Claude.MaxTokens = mt
		}
	}

	// Gemini configuration
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if apiKey := os.Getenv("OFERTA_GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if model := os.Getenv("OFERTA_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}

	// Generation configuration
	if model := os.Getenv("OFERTA_GENERATION_PTE_MODEL"); model != "" {
		config.Generation.PTEModel = model
	}
	if promptsDir := os.Getenv("OFERTA_GENERATION_PROMPTS_DIR"); promptsDir != "" {
		config.Generation.PromptsDir = promptsDir
	}

	// Document configuration
	if format := os.Getenv("OFERTA_DOCUMENT_FORMAT"); format != "" {
		config.Document.Format = strings.ToLower(format)
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// MustDuration parses a duration that has already passed Validate.
// Empty or invalid values fall back to def.
func MustDuration(value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return d
}
