package compose

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type mockCompleter struct {
	mock.Mock
}

func (m *mockCompleter) Complete(ctx context.Context, system, user string, maxTokens int, temperature float64) (string, error) {
	args := m.Called(ctx, system, user, maxTokens, temperature)
	return args.String(0), args.Error(1)
}
