package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/fundingforward/outreach/internal/domain"
	"github.com/fundingforward/outreach/internal/pkg/logger"
)

// chatMessage is a message in an OpenAI-compatible chat request.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// chatRequest is the request to the Groq chat completions endpoint.
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

// chatResponse is the response from the Groq chat completions endpoint.
type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// GroqProvider generates emails through Groq's OpenAI-compatible API.
// A circuit breaker sits in front of the HTTP call so a failing API
// degrades the whole batch to fallback content quickly instead of
// timing out pair by pair.
type GroqProvider struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*chatResponse]
	fallback   *FallbackProvider
	sender     SenderIdentity
}

// GroqOptions configures a GroqProvider.
type GroqOptions struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// NewGroqProvider builds a Groq-backed provider. fallback must be
// non-nil; it absorbs every API failure.
func NewGroqProvider(opts GroqOptions, sender SenderIdentity, fallback *FallbackProvider) (*GroqProvider, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("groq api key is required")
	}
	if fallback == nil {
		return nil, fmt.Errorf("fallback provider is required")
	}
	if opts.Model == "" {
		opts.Model = "llama-3.3-70b-versatile"
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://api.groq.com/openai/v1"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[*chatResponse](gobreaker.Settings{
		Name:    "groq",
		Timeout: 60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name,
				"from", from.String(), "to", to.String())
		},
	})

	return &GroqProvider{
		apiKey:     opts.APIKey,
		model:      opts.Model,
		baseURL:    opts.BaseURL,
		httpClient: &http.Client{Timeout: opts.Timeout},
		breaker:    breaker,
		fallback:   fallback,
		sender:     sender,
	}, nil
}

// Generate asks Groq for the email and falls back to the deterministic
// renderer on any failure. The error return is always nil; failures
// surface as fallback content with a warning.
func (p *GroqProvider) Generate(ctx context.Context, r *domain.Recipient, e *domain.Event, day domain.Day) (*Result, error) {
	payload, err := p.generateAI(ctx, r, e, day)
	if err != nil {
		logger.Warn("groq generation failed, using fallback",
			"recipient", r.ID, "event", e.ID, "day", string(day), "error", err.Error())
		return p.degrade(ctx, r, e, day, err)
	}

	return &Result{
		Subject:  payload.Email.Subject,
		Body:     payload.Email.Body,
		Warnings: payload.Warnings,
	}, nil
}

func (p *GroqProvider) generateAI(ctx context.Context, r *domain.Recipient, e *domain.Event, day domain.Day) (*aiPayload, error) {
	userPrompt, err := buildUserPrompt(r, e, day, p.sender)
	if err != nil {
		return nil, err
	}

	reqBody := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature:    0.7,
		MaxTokens:      4096,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	resp, err := p.breaker.Execute(func() (*chatResponse, error) {
		return p.post(ctx, reqBody)
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("groq returned no choices")
	}
	return parseModelOutput(resp.Choices[0].Message.Content)
}

func (p *GroqProvider) post(ctx context.Context, reqBody chatRequest) (*chatResponse, error) {
	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("groq API returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var chat chatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		return nil, fmt.Errorf("decode groq response: %w", err)
	}
	if chat.Error != nil {
		return nil, fmt.Errorf("groq API error: %s", chat.Error.Message)
	}
	return &chat, nil
}

func (p *GroqProvider) degrade(ctx context.Context, r *domain.Recipient, e *domain.Event, day domain.Day, cause error) (*Result, error) {
	res, err := p.fallback.Generate(ctx, r, e, day)
	if err != nil {
		return nil, err
	}
	res.Warnings = append(res.Warnings, fmt.Sprintf("Used fallback due to: %v", cause))
	return res, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
