package invoice

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockGenerator mocks the ai.TextGenerator interface
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockGenerator) GenerateWithImage(ctx context.Context, prompt string, imagePNG []byte) (string, error) {
	args := m.Called(ctx, prompt, imagePNG)
	return args.String(0), args.Error(1)
}
