package email

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"docstudio/internal/config"
	"docstudio/internal/domain/ports/adapter"
)

var _ adapter.Mailer = (*SESMailer)(nil)

// SESService is the SES surface we call, extracted for mocking.
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SESMailer struct {
	client SESService
	from   string
}

func NewSESMailer(ctx context.Context, cfg *config.EmailConfig) (*SESMailer, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &SESMailer{client: ses.NewFromConfig(awsCfg), from: cfg.From}, nil
}

func (m *SESMailer) SendDownloadLink(ctx context.Context, msg adapter.DownloadEmail) error {
	subject := fmt.Sprintf("Your document %q is ready", msg.DocumentName)
	text := fmt.Sprintf(
		"Hi %s,\n\nYour document %q has been rendered and is ready to download:\n\n%s\n\nThe link expires after a short while; just render again if it does.\n",
		msg.Name, msg.DocumentName, msg.DownloadURL)
	html := fmt.Sprintf(
		`<p>Hi %s,</p><p>Your document <strong>%s</strong> has been rendered and is ready to download:</p><p><a href=%q>Download</a></p><p>The link expires after a short while; just render again if it does.</p>`,
		msg.Name, msg.DocumentName, msg.DownloadURL)

	_, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(text)},
				Html: &types.Content{Data: aws.String(html)},
			},
		},
		Source: aws.String(m.from),
	})
	return err
}
