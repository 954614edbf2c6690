package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"medvault/internal/port"
)

// MockCardParser is a mock implementation of port.CardParser.
type MockCardParser struct {
	mock.Mock
}

func (m *MockCardParser) Parse(ctx context.Context, input port.CardParseInput) (*port.CardParseOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.CardParseOutput), args.Error(1)
}

// MockOCREngine is a mock implementation of port.OCREngine.
type MockOCREngine struct {
	mock.Mock
}

func (m *MockOCREngine) Recognize(ctx context.Context, image []byte) (string, error) {
	args := m.Called(ctx, image)
	return args.String(0), args.Error(1)
}
