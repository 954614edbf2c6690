// Package ses delivers share invitations and access codes through Amazon SES.
package ses

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"medvault/internal/port"
)

// SendEmailAPI is the subset of the SES client the sender uses.
type SendEmailAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type sesSender struct {
	client      SendEmailAPI
	fromAddress string
	fromName    string
	frontendURL string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(region, fromAddress, fromName, frontendURL string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return NewSESSenderWithClient(sesv2.NewFromConfig(cfg), fromAddress, fromName, frontendURL), nil
}

// NewSESSenderWithClient builds a sender around an existing SES client.
func NewSESSenderWithClient(client SendEmailAPI, fromAddress, fromName, frontendURL string) port.EmailSender {
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
		frontendURL: frontendURL,
	}
}

// ShareURL is the recipient landing page for a share token.
func ShareURL(frontendURL, shareToken string) string {
	return fmt.Sprintf("%s/shared/%s", frontendURL, url.PathEscape(shareToken))
}

func (s *sesSender) SendShareInvite(ctx context.Context, toEmail, toName, ownerName, shareToken string, expiresAt time.Time) error {
	shareURL := ShareURL(s.frontendURL, shareToken)
	expires := expiresAt.UTC().Format("Jan 2, 2006 15:04 MST")

	subject := fmt.Sprintf("%s shared health records with you", ownerName)
	textBody := fmt.Sprintf("Hi %s,\n\n%s has shared health records with you on MedVault.\n\n"+
		"Open the link below and request an access code to view them:\n%s\n\n"+
		"Access ends %s.\n\nMedVault", toName, ownerName, shareURL, expires)
	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Health records shared with you</h2>
  <p>Hi %s,</p>
  <p>%s has shared health records with you. Open the link and request an access code to view them.</p>
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #0F766E; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">View Records</a>
  </p>
  <p style="word-break: break-all; color: #666;">%s</p>
  <p style="color: #999; font-size: 12px;">Access ends %s.</p>
</body>
</html>`, html.EscapeString(toName), html.EscapeString(ownerName), shareURL, shareURL, expires)

	return s.send(ctx, toEmail, subject, textBody, htmlBody)
}

func (s *sesSender) SendShareCode(ctx context.Context, toEmail, toName, code string, ttl time.Duration) error {
	minutes := int(ttl.Round(time.Minute) / time.Minute)
	subject := "Your MedVault access code"
	textBody := fmt.Sprintf("Hi %s,\n\nYour access code is %s. It expires in %d minutes.\n\n"+
		"If you did not request this code, you can ignore this email.\n\nMedVault", toName, code, minutes)
	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <p>Hi %s,</p>
  <p>Your access code is:</p>
  <p style="font-size: 28px; letter-spacing: 6px; font-weight: bold; text-align: center;">%s</p>
  <p style="color: #999; font-size: 12px;">It expires in %d minutes. If you did not request this code, you can ignore this email.</p>
</body>
</html>`, html.EscapeString(toName), code, minutes)

	return s.send(ctx, toEmail, subject, textBody, htmlBody)
}

func (s *sesSender) send(ctx context.Context, toEmail, subject, textBody, htmlBody string) error {
	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)
	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}
