package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendShareInvite(ctx context.Context, toEmail, toName, ownerName, shareToken string, expiresAt time.Time) error {
	args := m.Called(ctx, toEmail, toName, ownerName, shareToken, expiresAt)
	return args.Error(0)
}

func (m *MockEmailSender) SendShareCode(ctx context.Context, toEmail, toName, code string, ttl time.Duration) error {
	args := m.Called(ctx, toEmail, toName, code, ttl)
	return args.Error(0)
}
