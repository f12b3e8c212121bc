package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOrders = `Orders:

--- Order ID: 2, Customer: Bruno, Date: 2024-05-02, Total: 3.50 ---
widget (qty: 1)

--- Order ID: 1, Customer: Ana, Date: 2024-05-01, Total: 17.00 ---
widget (qty: 2), gadget (qty: 1)
`

func fastRetry() RetryConfig {
	return RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}
}

func geminiServer(t *testing.T, calls *int32, status func(n int32) int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(calls, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		if code := status(n); code != http.StatusOK {
			http.Error(w, "boom", code)
			return
		}

		var body struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Contents, 1)
		assert.True(t, strings.HasPrefix(body.Contents[0].Parts[0].Text, analystInstruction))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]string{{"text": "Widgets dominate. "}, {"text": "Average 10.25."}},
				}},
			},
		})
	}))
}

func newTestGemini(t *testing.T, baseURL string, cache *Cache) *GeminiProvider {
	t.Helper()
	s, err := New(Config{Provider: ProviderGemini, APIKey: "test-key", BaseURL: baseURL})
	require.NoError(t, err)
	g := s.(*GeminiProvider)
	g.cache = cache
	g.retry = fastRetry()
	return g
}

func TestGeminiProvider(t *testing.T) {
	t.Run("joins candidate parts", func(t *testing.T) {
		var calls int32
		srv := geminiServer(t, &calls, func(int32) int { return http.StatusOK })
		defer srv.Close()

		g := newTestGemini(t, srv.URL, nil)
		sum, err := g.Summarize(context.Background(), Request{Text: sampleOrders})
		require.NoError(t, err)
		assert.Equal(t, "Widgets dominate. Average 10.25.", sum.Text)
		assert.Equal(t, ProviderGemini, sum.Provider)
		assert.Equal(t, DefaultGeminiModel, sum.Model)
		assert.False(t, sum.Cached)
	})

	t.Run("cache hit skips the api", func(t *testing.T) {
		var calls int32
		srv := geminiServer(t, &calls, func(int32) int { return http.StatusOK })
		defer srv.Close()

		cache := NewCache(4)
		g := newTestGemini(t, srv.URL, cache)

		first, err := g.Summarize(context.Background(), Request{Text: sampleOrders})
		require.NoError(t, err)
		second, err := g.Summarize(context.Background(), Request{Text: sampleOrders})
		require.NoError(t, err)

		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
		assert.Equal(t, first.Text, second.Text)
		assert.True(t, second.Cached)
		assert.Equal(t, 1, cache.Size())

		require.NoError(t, g.Close())
		assert.Equal(t, 0, cache.Size())
	})

	t.Run("retries server errors", func(t *testing.T) {
		var calls int32
		srv := geminiServer(t, &calls, func(n int32) int {
			if n < 3 {
				return http.StatusServiceUnavailable
			}
			return http.StatusOK
		})
		defer srv.Close()

		g := newTestGemini(t, srv.URL, nil)
		_, err := g.Summarize(context.Background(), Request{Text: sampleOrders})
		require.NoError(t, err)
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		var calls int32
		srv := geminiServer(t, &calls, func(int32) int { return http.StatusUnauthorized })
		defer srv.Close()

		g := newTestGemini(t, srv.URL, nil)
		_, err := g.Summarize(context.Background(), Request{Text: sampleOrders})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrProviderFailed)
		assert.Contains(t, err.Error(), "401")
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		var calls int32
		srv := geminiServer(t, &calls, func(int32) int { return http.StatusTooManyRequests })
		defer srv.Close()

		g := newTestGemini(t, srv.URL, nil)
		_, err := g.Summarize(context.Background(), Request{Text: sampleOrders})
		assert.ErrorIs(t, err, ErrProviderFailed)
		assert.Equal(t, int32(MaxRetries), atomic.LoadInt32(&calls))
	})

	t.Run("empty text", func(t *testing.T) {
		g := newTestGemini(t, "http://127.0.0.1:1", nil)
		_, err := g.Summarize(context.Background(), Request{Text: "  \n"})
		assert.ErrorIs(t, err, ErrEmptyText)
	})
}

func TestOpenAIProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-test", body.Model)
		require.Len(t, body.Messages, 1)
		assert.Contains(t, body.Messages[0].Content, "Order ID: 1")

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "  Mostly widgets.  "}},
			},
		})
	}))
	defer srv.Close()

	s, err := New(Config{Provider: "OpenAI", APIKey: "sk-test", Model: "gpt-test", BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	defer s.Close()

	sum, err := s.Summarize(context.Background(), Request{Text: sampleOrders})
	require.NoError(t, err)
	assert.Equal(t, "Mostly widgets.", sum.Text)
	assert.Equal(t, "gpt-test", s.Model())
}

func TestLocalProvider(t *testing.T) {
	cache := NewCache(2)
	p, err := NewLocalProvider(cache)
	require.NoError(t, err)

	sum, err := p.Summarize(context.Background(), Request{Text: sampleOrders})
	require.NoError(t, err)

	assert.Equal(t, ProviderLocal, sum.Provider)
	assert.Contains(t, sum.Text, "Orders analyzed: 2")
	assert.Contains(t, sum.Text, "Line items: 3")
	assert.Contains(t, sum.Text, "Revenue: 20.50")
	assert.Contains(t, sum.Text, "Average order value: 10.25")
	assert.Contains(t, sum.Text, "Top products: widget (3), gadget (1)")
	assert.Contains(t, sum.Text, "Top customer: Ana (17.00)")

	again, err := p.Summarize(context.Background(), Request{Text: sampleOrders})
	require.NoError(t, err)
	assert.True(t, again.Cached)

	empty, err := p.Summarize(context.Background(), Request{Text: "Orders:"})
	require.NoError(t, err)
	assert.Equal(t, "No orders to analyze.", empty.Text)

	require.Equal(t, 2, cache.Size())
	require.NoError(t, p.Close())
	assert.Equal(t, 0, cache.Size())

	uncached, err := NewLocalProvider(nil)
	require.NoError(t, err)
	assert.NoError(t, uncached.Close())
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := retryWithBackoff(ctx, RetryConfig{MaxRetries: 5, BaseDelay: time.Second, MaxDelay: time.Second, Multiplier: 2}, func() (int, error) {
		calls++
		cancel()
		return 0, errors.New("transient")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestWithJitter(t *testing.T) {
	base := 100 * time.Millisecond
	for i := 0; i < 50; i++ {
		d := withJitter(base, 0.5)
		assert.GreaterOrEqual(t, d, base)
		assert.LessOrEqual(t, d, 150*time.Millisecond)
	}
	assert.Equal(t, base, withJitter(base, 0))
}

func TestFactory(t *testing.T) {
	t.Run("detect provider", func(t *testing.T) {
		tests := []struct {
			name      string
			provider  string
			geminiKey string
			openaiKey string
			want      string
		}{
			{"explicit local", "LOCAL", "g", "o", ProviderLocal},
			{"gemini key present", "", "g", "o", ProviderGemini},
			{"openai key present", "", "", "o", ProviderOpenAI},
			{"nothing set", "", "", "", ""},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Setenv(EnvProvider, tt.provider)
				t.Setenv(EnvGeminiAPIKey, tt.geminiKey)
				t.Setenv(EnvOpenAIAPIKey, tt.openaiKey)
				assert.Equal(t, tt.want, DetectProvider())
			})
		}
	})

	t.Run("missing key", func(t *testing.T) {
		t.Setenv(EnvGeminiAPIKey, "")
		_, err := New(Config{Provider: ProviderGemini})
		assert.ErrorIs(t, err, ErrNoProviderEnabled)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := New(Config{Provider: "claude"})
		assert.ErrorIs(t, err, ErrUnsupportedProvider)
	})

	t.Run("no credentials means no provider", func(t *testing.T) {
		t.Setenv(EnvProvider, "")
		t.Setenv(EnvGeminiAPIKey, "")
		t.Setenv(EnvOpenAIAPIKey, "")
		s, err := NewFromEnv()
		assert.ErrorIs(t, err, ErrNoProviderEnabled)
		assert.Nil(t, s)
	})

	t.Run("local is opt in", func(t *testing.T) {
		t.Setenv(EnvProvider, "local")
		t.Setenv(EnvGeminiAPIKey, "")
		t.Setenv(EnvOpenAIAPIKey, "")
		s, err := NewFromEnv()
		require.NoError(t, err)
		assert.Equal(t, ProviderLocal, s.Provider())
	})
}

func TestComputeHash(t *testing.T) {
	assert.Equal(t, ComputeHash("m", "p"), ComputeHash("m", "p"))
	assert.NotEqual(t, ComputeHash("m1", "p"), ComputeHash("m2", "p"))
	assert.Len(t, ComputeHash("", ""), 64)
}
