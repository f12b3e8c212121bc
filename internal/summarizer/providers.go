package summarizer

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Provider configuration
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderLocal  = "local"

	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"

	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultOpenAIModel = "gpt-4o-mini"
	LocalModel         = "heuristic"

	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	DefaultOpenAIBaseURL = "https://api.openai.com"

	DefaultCacheSize = 256
	HTTPTimeout      = 30 * time.Second

	// Retry configuration
	MaxRetries        = 3
	InitialBackoffMs  = 100
	MaxBackoffMs      = 5000
	BackoffMultiplier = 2.0
	DefaultJitter     = 0.5
)

// httpProvider carries what the remote providers share.
type httpProvider struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	cache      *Cache
	retry      RetryConfig
}

func newHTTPProvider(apiKey, model, baseURL string, cache *Cache) httpProvider {
	return httpProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: HTTPTimeout,
		},
		cache: cache,
		retry: DefaultRetryConfig(),
	}
}

// summarize runs the cache lookup, retry loop and cache store around call.
func (p *httpProvider) summarize(ctx context.Context, name string, req Request, call func(ctx context.Context, prompt, model string) (string, error)) (*Summary, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	model := req.Model
	if model == "" {
		model = p.model
	}
	prompt := BuildPrompt(req.Text)
	hash := ComputeHash(model, prompt)

	if p.cache != nil {
		if s, ok := p.cache.Get(hash); ok {
			return s, nil
		}
	}

	text, err := retryWithBackoff(ctx, p.retry, func() (string, error) {
		return call(ctx, prompt, model)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrProviderFailed, name, err)
	}

	s := &Summary{
		Text:     strings.TrimSpace(text),
		Provider: name,
		Model:    model,
		Hash:     hash,
	}
	if p.cache != nil {
		p.cache.Set(hash, s)
	}
	return s, nil
}

// postJSON sends body to url and decodes a 200 answer into out.
func (p *httpProvider) postJSON(ctx context.Context, url string, headers map[string]string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &apiError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(bodyBytes))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// GeminiProvider implements Summarizer with the Gemini generateContent API
type GeminiProvider struct {
	httpProvider
}

// NewGeminiProvider creates a Gemini summarizer. An empty apiKey falls back to GEMINI_API_KEY.
func NewGeminiProvider(apiKey string, cache *Cache) (*GeminiProvider, error) {
	if apiKey == "" {
		apiKey = os.Getenv(EnvGeminiAPIKey)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s not set", ErrNoProviderEnabled, EnvGeminiAPIKey)
	}
	return &GeminiProvider{newHTTPProvider(apiKey, DefaultGeminiModel, DefaultGeminiBaseURL, cache)}, nil
}

func (g *GeminiProvider) Summarize(ctx context.Context, req Request) (*Summary, error) {
	return g.summarize(ctx, ProviderGemini, req, g.callAPI)
}

func (g *GeminiProvider) callAPI(ctx context.Context, prompt, model string) (string, error) {
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	}

	var apiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.baseURL, model)
	if err := g.postJSON(ctx, url, map[string]string{"x-goog-api-key": g.apiKey}, reqBody, &apiResp); err != nil {
		return "", err
	}

	if len(apiResp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned")
	}
	var sb strings.Builder
	for _, part := range apiResp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("empty candidate")
	}
	return sb.String(), nil
}

func (g *GeminiProvider) Provider() string {
	return ProviderGemini
}

func (g *GeminiProvider) Model() string {
	return g.model
}

func (g *GeminiProvider) Close() error {
	g.httpClient.CloseIdleConnections()
	g.cache.Clear()
	return nil
}

// OpenAIProvider implements Summarizer with the chat completions API
type OpenAIProvider struct {
	httpProvider
}

// NewOpenAIProvider creates an OpenAI summarizer. An empty apiKey falls back to OPENAI_API_KEY.
func NewOpenAIProvider(apiKey string, cache *Cache) (*OpenAIProvider, error) {
	if apiKey == "" {
		apiKey = os.Getenv(EnvOpenAIAPIKey)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s not set", ErrNoProviderEnabled, EnvOpenAIAPIKey)
	}
	return &OpenAIProvider{newHTTPProvider(apiKey, DefaultOpenAIModel, DefaultOpenAIBaseURL, cache)}, nil
}

func (o *OpenAIProvider) Summarize(ctx context.Context, req Request) (*Summary, error) {
	return o.summarize(ctx, ProviderOpenAI, req, o.callAPI)
}

func (o *OpenAIProvider) callAPI(ctx context.Context, prompt, model string) (string, error) {
	reqBody := map[string]interface{}{
		"model": model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}

	var apiResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	url := o.baseURL + "/v1/chat/completions"
	if err := o.postJSON(ctx, url, map[string]string{"Authorization": "Bearer " + o.apiKey}, reqBody, &apiResp); err != nil {
		return "", err
	}

	if len(apiResp.Choices) == 0 || apiResp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("no choices returned")
	}
	return apiResp.Choices[0].Message.Content, nil
}

func (o *OpenAIProvider) Provider() string {
	return ProviderOpenAI
}

func (o *OpenAIProvider) Model() string {
	return o.model
}

func (o *OpenAIProvider) Close() error {
	o.httpClient.CloseIdleConnections()
	o.cache.Clear()
	return nil
}

// LocalProvider digests the formatted orders offline. It needs no API key.
type LocalProvider struct {
	cache *Cache
}

// NewLocalProvider creates the offline summarizer
func NewLocalProvider(cache *Cache) (*LocalProvider, error) {
	return &LocalProvider{cache: cache}, nil
}

var (
	orderHeaderRe = regexp.MustCompile(`^--- Order ID: (\d+), Customer: (.*), Date: (\S+), Total: (-?[0-9.]+) ---$`)
	orderItemRe   = regexp.MustCompile(`^(.+) \(qty: (\d+)\)$`)
)

type orderDigest struct {
	orders    int
	lines     int
	revenue   decimal.Decimal
	products  map[string]int
	customers map[string]decimal.Decimal
}

func (l *LocalProvider) Summarize(ctx context.Context, req Request) (*Summary, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hash := ComputeHash(LocalModel, req.Text)
	if l.cache != nil {
		if s, ok := l.cache.Get(hash); ok {
			return s, nil
		}
	}

	d := digestOrders(req.Text)
	s := &Summary{
		Text:     d.render(),
		Provider: ProviderLocal,
		Model:    LocalModel,
		Hash:     hash,
	}
	if l.cache != nil {
		l.cache.Set(hash, s)
	}
	return s, nil
}

func digestOrders(text string) orderDigest {
	d := orderDigest{
		revenue:   decimal.Zero,
		products:  make(map[string]int),
		customers: make(map[string]decimal.Decimal),
	}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if m := orderHeaderRe.FindStringSubmatch(line); m != nil {
			d.orders++
			total, err := decimal.NewFromString(m[4])
			if err != nil {
				continue
			}
			d.revenue = d.revenue.Add(total)
			d.customers[m[2]] = d.customers[m[2]].Add(total)
			continue
		}
		for _, entry := range strings.Split(line, ", ") {
			m := orderItemRe.FindStringSubmatch(strings.TrimSpace(entry))
			if m == nil {
				continue
			}
			qty, err := strconv.Atoi(m[2])
			if err != nil {
				continue
			}
			d.lines++
			d.products[m[1]] += qty
		}
	}
	return d
}

func (d orderDigest) render() string {
	if d.orders == 0 {
		return "No orders to analyze."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Orders analyzed: %d\n", d.orders)
	fmt.Fprintf(&sb, "Line items: %d\n", d.lines)
	fmt.Fprintf(&sb, "Revenue: %s\n", d.revenue.StringFixed(2))
	avg := d.revenue.DivRound(decimal.NewFromInt(int64(d.orders)), 2)
	fmt.Fprintf(&sb, "Average order value: %s\n", avg.StringFixed(2))

	type count struct {
		name string
		qty  int
	}
	products := make([]count, 0, len(d.products))
	for name, qty := range d.products {
		products = append(products, count{name, qty})
	}
	sort.Slice(products, func(i, j int) bool {
		if products[i].qty != products[j].qty {
			return products[i].qty > products[j].qty
		}
		return products[i].name < products[j].name
	})
	if len(products) > 3 {
		products = products[:3]
	}
	if len(products) > 0 {
		parts := make([]string, len(products))
		for i, p := range products {
			parts[i] = fmt.Sprintf("%s (%d)", p.name, p.qty)
		}
		fmt.Fprintf(&sb, "Top products: %s\n", strings.Join(parts, ", "))
	}

	var topName string
	topSpend := decimal.Zero
	for name, spend := range d.customers {
		if spend.GreaterThan(topSpend) || (spend.Equal(topSpend) && name < topName) {
			topName, topSpend = name, spend
		}
	}
	if topName != "" {
		fmt.Fprintf(&sb, "Top customer: %s (%s)\n", topName, topSpend.StringFixed(2))
	}

	return strings.TrimRight(sb.String(), "\n")
}

func (l *LocalProvider) Provider() string {
	return ProviderLocal
}

func (l *LocalProvider) Model() string {
	return LocalModel
}

func (l *LocalProvider) Close() error {
	l.cache.Clear()
	return nil
}
