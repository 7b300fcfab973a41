package service

import (
	"context"
	"fmt"
	"html"
	"log"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"readyset/internal/models"
)

// sesAPI is the part of the SES client the service uses
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     sesAPI
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	debug      bool
}

// NewEmailService creates a new email service. Without fromEmail it is disabled and every send is a logged no-op.
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName, appBaseURL string, debug bool) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, debug: debug}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)
	return newEmailService(sesv2.NewFromConfig(cfg), fromEmail, fromName, appBaseURL, debug), nil
}

func newEmailService(client sesAPI, fromEmail, fromName, appBaseURL string, debug bool) *EmailService {
	return &EmailService{
		client:     client,
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: strings.TrimRight(appBaseURL, "/"),
		enabled:    true,
		debug:      debug,
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendKitChecklist emails the items of a kit as a printable checklist
func (s *EmailService) SendKitChecklist(ctx context.Context, toEmail, toName string, kit models.Kit) error {
	if s.debug {
		log.Printf("[DEBUG] SendKitChecklist called: to=%s, kit=%s, items=%d", toEmail, kit.ID, len(kit.RecommendedItems))
	}

	if !s.enabled {
		log.Printf("Skipping email send (service disabled): kit checklist to %s", toEmail)
		return nil
	}

	kitLink := fmt.Sprintf("%s/kits/%s", s.appBaseURL, url.PathEscape(kit.ID))
	subject := "Your ReadySet emergency kit checklist"

	var rows, lines strings.Builder
	for _, it := range kit.RecommendedItems {
		amount := itemAmount(it)
		fmt.Fprintf(&rows, "<li><input type=\"checkbox\"> <strong>%s</strong>%s<br><span class=\"muted\">%s</span></li>\n",
			html.EscapeString(it.Name), html.EscapeString(amount), html.EscapeString(it.Description))
		fmt.Fprintf(&lines, "[ ] %s%s\n", it.Name, amount)
		if it.Description != "" {
			fmt.Fprintf(&lines, "    %s\n", it.Description)
		}
	}

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #d9534f; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.muted { font-size: 12px; color: #666; }
		ul { list-style: none; padding-left: 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Emergency Kit Checklist</h1>
		</div>
		<div class="content">
			<p>Hi %s,</p>
			<p>Here is the checklist for your %s kit in %s (%d residents).</p>
			<ul>
%s			</ul>
			<p><a href="%s">Open the kit in ReadySet</a></p>
		</div>
		<div class="footer">
			<p>This is an automated email from ReadySet. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, html.EscapeString(toName), html.EscapeString(kit.HouseType), html.EscapeString(kit.Region), kit.NumResidents, rows.String(), kitLink)

	textBody := fmt.Sprintf(`Hi %s,

Here is the checklist for your %s kit in %s (%d residents).

%s
Open the kit: %s

---
This is an automated email from ReadySet. Please do not reply.
`, toName, kit.HouseType, kit.Region, kit.NumResidents, lines.String(), kitLink)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// itemAmount renders " (3 gal)" style quantities
func itemAmount(it models.Item) string {
	if it.Quantity == nil {
		return ""
	}
	if it.Unit == "" {
		return fmt.Sprintf(" (%d)", *it.Quantity)
	}
	return fmt.Sprintf(" (%d %s)", *it.Quantity, it.Unit)
}

// SendWelcomeEmail sends a welcome email to new users
func (s *EmailService) SendWelcomeEmail(ctx context.Context, toEmail, toName string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): welcome to %s", toEmail)
		return nil
	}

	subject := "Welcome to ReadySet!"
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<p>Hi %s,</p>
	<p>Thanks for joining ReadySet. Build an emergency kit for your household, take a quiz, and keep an eye on local alerts.</p>
	<p><a href="%s/dashboard">Go to your dashboard</a></p>
	<p style="font-size: 12px; color: #666;">This is an automated email from ReadySet. Please do not reply.</p>
</body>
</html>
`, html.EscapeString(toName), s.appBaseURL)

	textBody := fmt.Sprintf(`Hi %s,

Thanks for joining ReadySet. Build an emergency kit for your household, take a quiz, and keep an eye on local alerts.

Go to your dashboard: %s/dashboard

---
This is an automated email from ReadySet. Please do not reply.
`, toName, s.appBaseURL)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail sends a multipart (HTML and text) message through SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	utf8 := func(data string) *types.Content {
		return &types.Content{Data: aws.String(data), Charset: aws.String("UTF-8")}
	}
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination:      &types.Destination{ToAddresses: []string{toEmail}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: utf8(subject),
				Body:    &types.Body{Html: utf8(htmlBody), Text: utf8(textBody)},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	if s.debug && result.MessageId != nil {
		log.Printf("[DEBUG] SES message ID: %s", *result.MessageId)
	}
	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
