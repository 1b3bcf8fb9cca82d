package outreach

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/outreach-cli/internal/delivery"
	"github.com/sells-group/outreach-cli/internal/model"
)

type mockProfiler struct {
	mock.Mock
}

func (m *mockProfiler) Profile(ctx context.Context, rawURL string) (*model.SiteProfile, error) {
	args := m.Called(ctx, rawURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SiteProfile), args.Error(1)
}

type mockAnalyzer struct {
	mock.Mock
}

func (m *mockAnalyzer) Analyze(ctx context.Context, profile *model.SiteProfile, p model.Prospect, temperature float64) (*model.InsightSet, error) {
	args := m.Called(ctx, profile, p, temperature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.InsightSet), args.Error(1)
}

type mockComposer struct {
	mock.Mock
}

func (m *mockComposer) Compose(ctx context.Context, p model.Prospect, s *model.InsightSet, pd *model.PersonalizationData, tone model.Tone) (*model.Draft, error) {
	args := m.Called(ctx, p, s, pd, tone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Draft), args.Error(1)
}

func (m *mockComposer) OptimizeLength(ctx context.Context, d *model.Draft, targetWords int) *model.Draft {
	args := m.Called(ctx, d, targetWords)
	return args.Get(0).(*model.Draft)
}

type mockChannel struct {
	mock.Mock
}

func (m *mockChannel) Send(ctx context.Context, msg delivery.Message) model.DeliveryOutcome {
	args := m.Called(ctx, msg)
	return args.Get(0).(model.DeliveryOutcome)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) SaveResult(ctx context.Context, runID string, result *model.ProcessingResult) error {
	args := m.Called(ctx, runID, result)
	return args.Error(0)
}

func (m *mockRecorder) SaveDelivery(ctx context.Context, runID string, outcome model.DeliveryOutcome) error {
	args := m.Called(ctx, runID, outcome)
	return args.Error(0)
}
