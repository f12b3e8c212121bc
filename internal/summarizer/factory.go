package summarizer

import (
	"fmt"
	"os"
	"strings"
)

// EnvProvider selects the provider explicitly
const EnvProvider = "ORDERDESK_SUMMARY_PROVIDER"

// Config holds summarizer configuration
type Config struct {
	Provider  string
	APIKey    string
	Model     string
	BaseURL   string // Optional: override the API endpoint
	CacheSize int
}

// NewFromEnv creates a summarizer based on environment variables
// Priority:
// 1. ORDERDESK_SUMMARY_PROVIDER (gemini, openai, local)
// 2. Check for API keys: GEMINI_API_KEY, OPENAI_API_KEY
// 3. Fail with ErrNoProviderEnabled if neither is set
func NewFromEnv() (Summarizer, error) {
	return New(Config{Provider: DetectProvider(), CacheSize: DefaultCacheSize})
}

// New creates a summarizer with explicit configuration
func New(cfg Config) (Summarizer, error) {
	var cache *Cache
	if cfg.CacheSize > 0 {
		cache = NewCache(cfg.CacheSize)
	}

	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = DetectProvider()
	}
	if provider == "" {
		return nil, fmt.Errorf("%w: set %s or %s, or %s=%s", ErrNoProviderEnabled, EnvGeminiAPIKey, EnvOpenAIAPIKey, EnvProvider, ProviderLocal)
	}

	switch provider {
	case ProviderGemini:
		p, err := NewGeminiProvider(cfg.APIKey, cache)
		if err != nil {
			return nil, err
		}
		p.apply(cfg)
		return p, nil
	case ProviderOpenAI:
		p, err := NewOpenAIProvider(cfg.APIKey, cache)
		if err != nil {
			return nil, err
		}
		p.apply(cfg)
		return p, nil
	case ProviderLocal:
		return NewLocalProvider(cache)
	default:
		return nil, fmt.Errorf("%w: unknown provider %s", ErrUnsupportedProvider, cfg.Provider)
	}
}

func (p *httpProvider) apply(cfg Config) {
	if cfg.Model != "" {
		p.model = cfg.Model
	}
	if cfg.BaseURL != "" {
		p.baseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
}

// DetectProvider returns the provider that would be used based on current environment
func DetectProvider() string {
	if provider := os.Getenv(EnvProvider); provider != "" {
		return strings.ToLower(provider)
	}

	if os.Getenv(EnvGeminiAPIKey) != "" {
		return ProviderGemini
	}
	if os.Getenv(EnvOpenAIAPIKey) != "" {
		return ProviderOpenAI
	}

	return ""
}
