package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"medvault/internal/port"
)

// MockTerminologySource is a mock implementation of port.TerminologySource.
type MockTerminologySource struct {
	mock.Mock
	SourceName string
}

func (m *MockTerminologySource) Name() string {
	return m.SourceName
}

func (m *MockTerminologySource) Search(ctx context.Context, q port.TerminologyQuery) ([]port.Suggestion, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]port.Suggestion), args.Error(1)
}
