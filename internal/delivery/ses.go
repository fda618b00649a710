package delivery

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/fundingforward/outreach/internal/domain"
)

// SESSender delivers mail through AWS SES v2.
type SESSender struct {
	client   *sesv2.Client
	from     string
	fromName string
	replyTo  string
}

// SESOptions configures an SESSender.
type SESOptions struct {
	Region    string
	AccessKey string
	SecretKey string
	From      string
	FromName  string
	ReplyTo   string
}

// NewSESSender builds an SES client with static credentials.
func NewSESSender(ctx context.Context, opts SESOptions) (*SESSender, error) {
	if opts.From == "" {
		return nil, fmt.Errorf("ses from address is required")
	}

	creds := credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(creds),
	)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &SESSender{
		client:   sesv2.NewFromConfig(awsCfg),
		from:     opts.From,
		fromName: opts.FromName,
		replyTo:  opts.ReplyTo,
	}, nil
}

// Send delivers one email as plain text.
func (s *SESSender) Send(ctx context.Context, email *domain.OutboundEmail) error {
	from := s.from
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", s.fromName, s.from)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{email.RecipientEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(email.Subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Text: &types.Content{
						Data:    aws.String(email.Body),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}
	if s.replyTo != "" {
		input.ReplyToAddresses = []string{s.replyTo}
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("ses send: %w", err)
	}
	return nil
}
