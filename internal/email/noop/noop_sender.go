// Package noop provides an EmailSender for local development that only logs.
package noop

import (
	"context"
	"time"

	"medvault/internal/email/ses"
	"medvault/internal/logging"
	"medvault/internal/port"
)

type noopSender struct {
	frontendURL string
}

// NewNoopSender creates a no-op EmailSender that logs share links and codes.
func NewNoopSender(frontendURL string) port.EmailSender {
	return &noopSender{frontendURL: frontendURL}
}

func (s *noopSender) SendShareInvite(_ context.Context, toEmail, toName, ownerName, shareToken string, expiresAt time.Time) error {
	logging.API.WithField("to", toEmail).WithField("recipient", toName).WithField("owner", ownerName).
		WithField("url", ses.ShareURL(s.frontendURL, shareToken)).WithField("expires_at", expiresAt).
		Info("noopSender.SendShareInvite: email not sent")
	return nil
}

func (s *noopSender) SendShareCode(_ context.Context, toEmail, toName, code string, ttl time.Duration) error {
	logging.API.WithField("to", toEmail).WithField("recipient", toName).WithField("code", code).
		WithField("ttl", ttl).Info("noopSender.SendShareCode: email not sent")
	return nil
}
