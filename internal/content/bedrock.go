package content

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/fundingforward/outreach/internal/domain"
	"github.com/fundingforward/outreach/internal/pkg/logger"
)

type bedrockMessage struct {
	Role    string                `json:"role"`
	Content []bedrockContentBlock `json:"content"`
}

type bedrockContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type bedrockRequest struct {
	AnthropicVersion string           `json:"anthropic_version"`
	MaxTokens        int              `json:"max_tokens"`
	System           string           `json:"system,omitempty"`
	Messages         []bedrockMessage `json:"messages"`
	Temperature      float64          `json:"temperature,omitempty"`
}

type bedrockResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// BedrockProvider generates emails through AWS Bedrock using an
// Anthropic model. Like the Groq provider, it degrades to the fallback
// renderer on any failure.
type BedrockProvider struct {
	client   *bedrockruntime.Client
	modelID  string
	fallback *FallbackProvider
	sender   SenderIdentity
}

// NewBedrockProvider loads the default AWS credential chain for the
// given region.
func NewBedrockProvider(ctx context.Context, region, modelID string, sender SenderIdentity, fallback *FallbackProvider) (*BedrockProvider, error) {
	if fallback == nil {
		return nil, fmt.Errorf("fallback provider is required")
	}
	if region == "" {
		region = "us-east-1"
	}
	if modelID == "" {
		modelID = "anthropic.claude-3-sonnet-20240229-v1:0"
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &BedrockProvider{
		client:   bedrockruntime.NewFromConfig(cfg),
		modelID:  modelID,
		fallback: fallback,
		sender:   sender,
	}, nil
}

// Generate asks Bedrock for the email and falls back to the
// deterministic renderer on any failure.
func (p *BedrockProvider) Generate(ctx context.Context, r *domain.Recipient, e *domain.Event, day domain.Day) (*Result, error) {
	payload, err := p.generateAI(ctx, r, e, day)
	if err != nil {
		logger.Warn("bedrock generation failed, using fallback",
			"recipient", r.ID, "event", e.ID, "day", string(day), "error", err.Error())
		res, ferr := p.fallback.Generate(ctx, r, e, day)
		if ferr != nil {
			return nil, ferr
		}
		res.Warnings = append(res.Warnings, fmt.Sprintf("Used fallback due to: %v", err))
		return res, nil
	}

	return &Result{
		Subject:  payload.Email.Subject,
		Body:     payload.Email.Body,
		Warnings: payload.Warnings,
	}, nil
}

func (p *BedrockProvider) generateAI(ctx context.Context, r *domain.Recipient, e *domain.Event, day domain.Day) (*aiPayload, error) {
	userPrompt, err := buildUserPrompt(r, e, day, p.sender)
	if err != nil {
		return nil, err
	}

	request := bedrockRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        4096,
		System:           systemPrompt,
		Messages: []bedrockMessage{
			{
				Role:    "user",
				Content: []bedrockContentBlock{{Type: "text", Text: userPrompt}},
			},
		},
		Temperature: 0.7,
	}

	requestBody, err := json.Marshal(request)
	if err != nil {
		return nil, err
	}

	output, err := p.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(p.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        requestBody,
	})
	if err != nil {
		return nil, fmt.Errorf("bedrock invoke: %w", err)
	}

	var response bedrockResponse
	if err := json.Unmarshal(output.Body, &response); err != nil {
		return nil, fmt.Errorf("decode bedrock response: %w", err)
	}

	var text string
	for _, block := range response.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return parseModelOutput(text)
}
