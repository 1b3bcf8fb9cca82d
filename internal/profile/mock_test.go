package profile

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/outreach-cli/internal/scrape"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Fetch(ctx context.Context, url string) (*scrape.Page, error) {
	args := m.Called(ctx, url)
	if v := args.Get(0); v != nil {
		return v.(*scrape.Page), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFetcher) Name() string { return "mock" }
