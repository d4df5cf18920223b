package service

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"

	"dadsadvice/internal/models"
	"dadsadvice/internal/validation"
)

// sendEmailAPI is the subset of the SES client used here
type sendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// Names come from user input; the template escapes them.
var childJoinedTemplate = template.Must(template.New("child_joined").Parse(`
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<p>Hi {{.FatherName}},</p>
	<p><strong>{{.ChildName}}</strong> just signed up and can now read the advice you leave for them.</p>
	<p><a href="{{.AppBaseURL}}">Write your first advice</a></p>
	<p style="font-size: 12px; color: #666;">This is an automated email. Please do not reply.</p>
</body>
</html>
`))

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     sendEmailAPI
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	logger     *zap.Logger
}

// NewEmailService creates a new email service. It is disabled when fromEmail is empty.
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName, appBaseURL string, logger *zap.Logger) (*EmailService, error) {
	if fromEmail == "" {
		logger.Info("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, logger: logger}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	logger.Info("Email service enabled", zap.String("from", fromEmail), zap.String("region", awsRegion))

	return &EmailService{
		client:     sesv2.NewFromConfig(cfg),
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
		logger:     logger,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// NotifyChildJoined tells a father that a child registered under him.
// Fathers whose id is not an email address are skipped.
func (s *EmailService) NotifyChildJoined(ctx context.Context, father, child *models.User) error {
	if !s.enabled {
		s.logger.Debug("Skipping email send (service disabled)", zap.String("father_id", father.ID))
		return nil
	}
	if !validation.IsEmail(father.ID) {
		s.logger.Debug("Skipping email send (father id is not an email)", zap.String("father_id", father.ID))
		return nil
	}

	subject := fmt.Sprintf("%s joined Dad's Advice", child.Name)
	var htmlBody strings.Builder
	err := childJoinedTemplate.Execute(&htmlBody, struct {
		FatherName string
		ChildName  string
		AppBaseURL string
	}{father.Name, child.Name, s.appBaseURL})
	if err != nil {
		return fmt.Errorf("failed to render email: %w", err)
	}

	textBody := fmt.Sprintf(`Hi %s,

%s just signed up and can now read the advice you leave for them.

Write your first advice: %s

---
This is an automated email. Please do not reply.
`, father.Name, child.Name, s.appBaseURL)

	return s.sendEmail(ctx, father.ID, subject, htmlBody.String(), textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	s.logger.Info("Email sent",
		zap.String("to", toEmail),
		zap.String("subject", subject),
		zap.String("message_id", aws.ToString(result.MessageId)),
	)
	return nil
}
