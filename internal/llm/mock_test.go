package llm

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Complete(ctx context.Context, system, user string, maxTokens int, temperature float64) (string, error) {
	args := m.Called(ctx, system, user, maxTokens, temperature)
	return args.String(0), args.Error(1)
}

func (m *mockProvider) Name() string { return "mock" }
