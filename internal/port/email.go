package port

import (
	"context"
	"time"
)

// EmailSender defines the contract for sending share emails.
type EmailSender interface {
	// SendShareInvite tells a recipient that records were shared with them.
	SendShareInvite(ctx context.Context, toEmail, toName, ownerName, shareToken string, expiresAt time.Time) error
	// SendShareCode delivers a one-time access code.
	SendShareCode(ctx context.Context, toEmail, toName, code string, ttl time.Duration) error
}
