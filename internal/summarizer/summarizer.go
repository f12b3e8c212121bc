package summarizer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Common errors
var (
	ErrProviderFailed      = errors.New("summary provider failed")
	ErrEmptyText           = errors.New("text cannot be empty")
	ErrNoProviderEnabled   = errors.New("no summary provider configured")
	ErrUnsupportedProvider = errors.New("unsupported provider")
)

// Request asks a provider to summarize a block of formatted orders.
type Request struct {
	Text  string
	Model string // Optional: override default model
}

// Summary is the provider's answer plus the metadata needed for the action log.
type Summary struct {
	Text     string
	Provider string
	Model    string
	Hash     string // Prompt hash for caching
	Cached   bool
}

// Summarizer turns a formatted order listing into a short sales analysis.
type Summarizer interface {
	// Summarize produces a summary for req.Text
	Summarize(ctx context.Context, req Request) (*Summary, error)

	// Provider returns the provider name
	Provider() string

	// Model returns the default model name
	Model() string

	// Close releases any resources held by the summarizer
	Close() error
}

// Cache keeps recent summaries keyed by prompt hash
type Cache struct {
	cache *lru.Cache[string, Summary]
}

// NewCache creates a summary cache with LRU eviction
func NewCache(maxLen int) *Cache {
	if maxLen <= 0 {
		maxLen = DefaultCacheSize
	}
	cache, err := lru.New[string, Summary](maxLen)
	if err != nil {
		cache, _ = lru.New[string, Summary](DefaultCacheSize)
	}
	return &Cache{cache: cache}
}

// Get returns a copy of the cached summary, flagged as cached
func (c *Cache) Get(hash string) (*Summary, bool) {
	s, ok := c.cache.Get(hash)
	if !ok {
		return nil, false
	}
	s.Cached = true
	return &s, true
}

// Set stores a summary
func (c *Cache) Set(hash string, s *Summary) {
	stored := *s
	stored.Cached = false
	c.cache.Add(hash, stored)
}

// Size returns the current cache size
func (c *Cache) Size() int {
	return c.cache.Len()
}

// Clear empties the cache. A nil cache is a no-op.
func (c *Cache) Clear() {
	if c == nil {
		return
	}
	c.cache.Purge()
}

// ComputeHash computes the SHA-256 of the model and prompt pair
func ComputeHash(model, prompt string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	return hex.EncodeToString(h.Sum(nil))
}

// ValidateRequest rejects blank input
func ValidateRequest(req Request) error {
	if strings.TrimSpace(req.Text) == "" {
		return ErrEmptyText
	}
	return nil
}

const analystInstruction = "You are an experienced sales analyst. Analyze the following orders and write a concise summary. " +
	"Include: the most frequent products, the average order value, purchasing patterns and any other relevant insight."

// BuildPrompt prepends the analyst instruction to the formatted orders.
func BuildPrompt(orders string) string {
	return analystInstruction + "\n\n" + strings.TrimSpace(orders)
}
