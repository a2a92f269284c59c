package gemini

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/dmarchenko/medclaims/internal/core/domain"
	"github.com/dmarchenko/medclaims/internal/infrastructure/resilience"
)

// Client talks to the Gemini generateContent API and implements
// ports.Oracle. Calls are rate-limited, then retried behind a circuit
// breaker; responses come back as raw text for the caller to recover
// JSON from.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
	executor   *resilience.Executor
}

type Option func(*Client)

// WithRateLimit caps outbound oracle calls at rps with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

func WithExecutor(executor *resilience.Executor) Option {
	return func(c *Client) {
		c.executor = executor
	}
}

func New(baseURL, apiKey, model string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		executor:   resilience.NewExecutor(resilience.DefaultConfig()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type generateRequest struct {
	SystemInstruction *content        `json:"systemInstruction,omitempty"`
	Contents          []content       `json:"contents"`
	GenerationConfig  *generateConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateConfig struct {
	Temperature      float64        `json:"temperature"`
	ResponseMimeType string         `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]any `json:"responseSchema,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (c *Client) Generate(ctx context.Context, req domain.OracleRequest) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("oracle rate limit wait: %w", err)
		}
	}

	payload := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: req.UserPrompt}}}},
		GenerationConfig: &generateConfig{
			Temperature:      0.1,
			ResponseMimeType: "application/json",
		},
	}
	if req.SystemPrompt != "" {
		payload.SystemInstruction = &content{Parts: []part{{Text: req.SystemPrompt}}}
	}
	if req.Schema != nil {
		payload.GenerationConfig.ResponseSchema = responseSchema(req.Schema)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))

	var resp generateResponse
	err := c.executor.Do(ctx, "gemini.generate", classifyGeminiError, func(ctx context.Context) error {
		resp = generateResponse{}
		return c.postJSON(ctx, endpoint, payload, &resp, "generate")
	})
	if err != nil {
		return "", wrapTemporaryIfNeeded("gemini generate", err)
	}

	text := candidateText(resp)
	if text == "" {
		return "", domain.WrapError(domain.ErrOracleFailure, "gemini generate", fmt.Errorf("empty candidate response"))
	}
	return text, nil
}

func candidateText(resp generateResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return strings.TrimSpace(b.String())
}

// responseSchema maps a field schema onto the Gemini structured-output
// schema format. Every field is a string unless the type says otherwise;
// cleaning downstream never trusts the oracle to have honored this.
func responseSchema(schema *domain.FieldSchema) map[string]any {
	properties := map[string]any{}
	for _, field := range schema.Fields {
		switch field.Type {
		case domain.FieldAmount:
			properties[field.Name] = map[string]any{"type": "number"}
		case domain.FieldList, domain.FieldCodes:
			properties[field.Name] = map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			}
		default:
			properties[field.Name] = map[string]any{"type": "string"}
		}
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
	}
}
