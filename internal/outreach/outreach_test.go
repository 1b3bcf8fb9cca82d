package outreach

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/compose"
	"github.com/sells-group/outreach-cli/internal/delivery"
	"github.com/sells-group/outreach-cli/internal/model"
)

func acme() model.Prospect {
	return model.NewProspect(model.ProspectFields{
		Email:       "a@b.com",
		FirstName:   "ann",
		LastName:    "lee",
		JobPosition: "CTO",
		CompanyName: "Acme",
		CompanyURL:  "acme.test",
	})
}

func prospectAt(name, url string) model.Prospect {
	return model.NewProspect(model.ProspectFields{
		Email:       strings.ToLower(name) + "@example.test",
		FirstName:   name,
		LastName:    "Doe",
		CompanyName: name + " Co",
		CompanyURL:  url,
	})
}

func site(url string) *model.SiteProfile {
	s := model.NewSiteProfile(url)
	s.Title = "Acme Widgets"
	s.BusinessCategory = "ecommerce"
	s.AIOpportunities = []string{"Automate order follow-up"}
	return s
}

func goodInsights() *model.InsightSet {
	s := &model.InsightSet{
		Opportunities: []string{
			"Implement a performance optimization program to cut page load",
			"Automate the quote workflow with a custom dashboard",
			"Build an SEO content hub for regional buyers",
		},
		PainPoints:      []string{"Slow checkout speed loses buyers"},
		Recommendations: []string{"Move static assets to a CDN"},
		IndustryTrends:  []string{"Buyers expect instant quotes"},
		CompetitiveGaps: []string{"Competitors offer self-service portals"},
	}
	s.Normalize()
	return s
}

func badInsights() *model.InsightSet {
	s := &model.InsightSet{Opportunities: []string{"AI chatbot"}}
	s.Normalize()
	return s
}

func shortDraft() *model.Draft {
	return &model.Draft{
		Subject:              "Faster checkout for Acme",
		Body:                 "Hi Ann, a quick idea about checkout speed at Acme.",
		CallToAction:         "Open to a 15 minute call next week?",
		PersonalizationScore: 0.6,
		Tone:                 model.ToneProfessional,
	}
}

type fixture struct {
	profiler *mockProfiler
	analyzer *mockAnalyzer
	composer *mockComposer
	channel  *mockChannel
}

func newFixture() *fixture {
	return &fixture{
		profiler: &mockProfiler{},
		analyzer: &mockAnalyzer{},
		composer: &mockComposer{},
		channel:  &mockChannel{},
	}
}

func (f *fixture) orchestrator(opts Options) *Orchestrator {
	return New(f.profiler, f.analyzer, f.composer, f.channel, opts)
}

// happyPath wires every stub to succeed for any prospect.
func (f *fixture) happyPath() {
	f.profiler.On("Profile", mock.Anything, mock.Anything).Return(site("https://acme.test"), nil)
	f.analyzer.On("Analyze", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(goodInsights(), nil)
	f.composer.On("Compose", mock.Anything, mock.Anything, mock.Anything, mock.Anything, model.ToneProfessional).
		Return(shortDraft(), nil)
}

func TestProcessProspect_DryRunAcme(t *testing.T) {
	f := newFixture()
	f.profiler.On("Profile", mock.Anything, "https://acme.test").Return(site("https://acme.test"), nil)
	f.analyzer.On("Analyze", mock.Anything, mock.Anything, mock.Anything, 0.7).Return(goodInsights(), nil)
	f.composer.On("Compose", mock.Anything, mock.Anything, mock.Anything, mock.Anything, model.ToneProfessional).
		Return(shortDraft(), nil)

	res := f.orchestrator(Options{DryRun: true, BaseTemperature: 0.7}).ProcessProspect(context.Background(), acme())

	assert.True(t, res.Success)
	assert.Empty(t, res.Errors)
	assert.Equal(t, []model.Step{
		model.StepWebsiteAnalysis,
		model.StepAIAnalysis,
		model.StepPersonalization,
		model.StepEmailGeneration,
		model.StepEmailValidation,
		model.StepTestModeComplete,
	}, res.StepsCompleted)
	assert.Equal(t, "https://acme.test", res.Prospect.CompanyURL)
	require.NotNil(t, res.EmailContent)
	assert.Equal(t, "Faster checkout for Acme", res.EmailContent.Subject)
	require.NotNil(t, res.PersonalizationData)
	assert.Equal(t, "Acme", res.PersonalizationData.CompanyName)
	assert.Equal(t, 3, res.AIInsights["opportunities_count"])
	assert.Equal(t, "https://acme.test", res.WebsiteAnalysis["url"])
	require.NotNil(t, res.EmailValidation)
	assert.Nil(t, res.DeliveryResult)

	f.channel.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	f.composer.AssertNotCalled(t, "OptimizeLength", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessProspect_SiteDown(t *testing.T) {
	f := newFixture()
	down := prospectAt("Dee", "down.test")
	f.profiler.On("Profile", mock.Anything, "https://down.test").Return(nil, context.DeadlineExceeded)

	res := f.orchestrator(Options{DryRun: true}).ProcessProspect(context.Background(), down)

	assert.False(t, res.Success)
	assert.Empty(t, res.StepsCompleted)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "Website analysis failed")
	f.analyzer.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessProspect_NilProfileWithoutError(t *testing.T) {
	f := newFixture()
	f.profiler.On("Profile", mock.Anything, mock.Anything).Return(nil, nil)

	res := f.orchestrator(Options{DryRun: true}).ProcessProspect(context.Background(), acme())
	assert.Equal(t, []string{ErrWebsiteAnalysis}, res.Errors)
}

func TestProcessProspect_InsightRetryBound(t *testing.T) {
	f := newFixture()
	f.profiler.On("Profile", mock.Anything, mock.Anything).Return(site("https://acme.test"), nil)

	var temps []float64
	f.analyzer.On("Analyze", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { temps = append(temps, args.Get(3).(float64)) }).
		Return(badInsights(), nil)

	o := f.orchestrator(Options{DryRun: true, BaseTemperature: 0.7})
	res := o.ProcessProspect(context.Background(), acme())

	assert.False(t, res.Success)
	assert.Equal(t, []string{ErrInsights}, res.Errors)
	assert.Equal(t, []model.Step{model.StepWebsiteAnalysis}, res.StepsCompleted)
	f.analyzer.AssertNumberOfCalls(t, "Analyze", 2)
	require.Len(t, temps, 2)
	assert.InDelta(t, 0.7, temps[0], 1e-9)
	assert.InDelta(t, 0.9, temps[1], 1e-9)
	assert.InDelta(t, 0.7, o.opts.BaseTemperature, 1e-9)
	f.composer.AssertNotCalled(t, "Compose", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessProspect_InsightSecondAttemptSucceeds(t *testing.T) {
	f := newFixture()
	f.profiler.On("Profile", mock.Anything, mock.Anything).Return(site("https://acme.test"), nil)
	f.analyzer.On("Analyze", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, eris.New("insight: unparseable response")).Once()
	f.analyzer.On("Analyze", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(goodInsights(), nil).Once()
	f.composer.On("Compose", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(shortDraft(), nil)

	res := f.orchestrator(Options{DryRun: true}).ProcessProspect(context.Background(), acme())
	assert.True(t, res.Success)
	assert.True(t, res.Completed(model.StepAIAnalysis))
	f.analyzer.AssertNumberOfCalls(t, "Analyze", 2)
}

func TestAttemptTemperature_Capped(t *testing.T) {
	o := New(nil, nil, nil, nil, Options{BaseTemperature: 0.95, MaxInsightAttempts: 3})
	assert.InDelta(t, 0.95, o.attemptTemperature(0), 1e-9)
	assert.InDelta(t, 1.0, o.attemptTemperature(1), 1e-9)
	assert.InDelta(t, 1.0, o.attemptTemperature(2), 1e-9)
}

func TestProcessProspect_ComposeFailures(t *testing.T) {
	tests := []struct {
		name  string
		draft *model.Draft
		err   error
		want  string
	}{
		{"error", nil, eris.New("llm down"), "Email generation failed: llm down"},
		{"nil draft", nil, nil, "Email generation failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.profiler.On("Profile", mock.Anything, mock.Anything).Return(site("https://acme.test"), nil)
			f.analyzer.On("Analyze", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(goodInsights(), nil)
			if tt.draft == nil {
				f.composer.On("Compose", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)
			}

			res := f.orchestrator(Options{DryRun: true}).ProcessProspect(context.Background(), acme())
			assert.False(t, res.Success)
			assert.Equal(t, []string{tt.want}, res.Errors)
			assert.True(t, res.Completed(model.StepPersonalization))
			assert.False(t, res.Completed(model.StepEmailGeneration))
		})
	}
}

func TestProcessProspect_LongDraftKeptByDefault(t *testing.T) {
	f := newFixture()
	long := shortDraft()
	long.Body = strings.Repeat("word ", 180)

	f.profiler.On("Profile", mock.Anything, mock.Anything).Return(site("https://acme.test"), nil)
	f.analyzer.On("Analyze", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(goodInsights(), nil)
	f.composer.On("Compose", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(long, nil)

	res := f.orchestrator(Options{DryRun: true}).ProcessProspect(context.Background(), acme())
	require.True(t, res.Success)
	assert.Equal(t, 180, res.EmailContent.WordCount)
	f.composer.AssertNotCalled(t, "OptimizeLength", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessProspect_OptimizesLongDraftWhenEnabled(t *testing.T) {
	f := newFixture()
	long := shortDraft()
	long.Body = strings.Repeat("word ", 200)
	trimmed := shortDraft()
	trimmed.PersonalizationScore = 0

	f.profiler.On("Profile", mock.Anything, mock.Anything).Return(site("https://acme.test"), nil)
	f.analyzer.On("Analyze", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(goodInsights(), nil)
	f.composer.On("Compose", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(long, nil)
	f.composer.On("OptimizeLength", mock.Anything, long, DefaultTargetWords).Return(trimmed)

	res := f.orchestrator(Options{DryRun: true, OptimizeLength: true}).ProcessProspect(context.Background(), acme())
	require.True(t, res.Success)
	assert.Equal(t, trimmed.WordCount(), res.EmailContent.WordCount)
	assert.InDelta(t, compose.Score(trimmed.Subject, trimmed.Body, acme(), goodInsights()), res.EmailContent.PersonalizationScore, 1e-9)
	f.composer.AssertExpectations(t)
}

func TestProcessProspect_LiveSend(t *testing.T) {
	f := newFixture()
	f.happyPath()
	rec := &mockRecorder{}
	rec.On("SaveDelivery", mock.Anything, "run-1", mock.Anything).Return(nil)

	sent := model.DeliveryOutcome{Success: true, RecipientEmail: "a@b.com", SMTPResponse: delivery.ResponseSent}
	f.channel.On("Send", mock.Anything, mock.MatchedBy(func(m delivery.Message) bool {
		return m.To == "a@b.com" && m.Subject == "Faster checkout for Acme" && m.SenderName == "Dana Reyes"
	})).Return(sent)

	o := f.orchestrator(Options{SenderName: "Dana Reyes"}).WithRecorder(rec, "run-1")
	res := o.ProcessProspect(context.Background(), acme())

	assert.True(t, res.Success)
	assert.True(t, res.Completed(model.StepEmailSent))
	assert.False(t, res.Completed(model.StepTestModeComplete))
	require.NotNil(t, res.DeliveryResult)
	assert.Equal(t, delivery.ResponseSent, res.DeliveryResult.SMTPResponse)
	f.channel.AssertNumberOfCalls(t, "Send", 1)
	rec.AssertNumberOfCalls(t, "SaveDelivery", 1)
}

func TestProcessProspect_LiveSendFailure(t *testing.T) {
	f := newFixture()
	f.happyPath()
	f.channel.On("Send", mock.Anything, mock.Anything).
		Return(model.DeliveryOutcome{Success: false, ErrorMessage: "SMTP error 550: mailbox unavailable"})

	res := f.orchestrator(Options{}).ProcessProspect(context.Background(), acme())

	assert.False(t, res.Success)
	assert.True(t, res.Completed(model.StepEmailSent))
	assert.Equal(t, []string{"Email delivery failed: SMTP error 550: mailbox unavailable"}, res.Errors)
	require.NotNil(t, res.DeliveryResult)
}

func TestRun_BatchContinuation(t *testing.T) {
	f := newFixture()
	prospects := []model.Prospect{
		prospectAt("One", "one.test"),
		prospectAt("Two", "two.test"),
		prospectAt("Three", "three.test"),
	}
	f.profiler.On("Profile", mock.Anything, "https://two.test").Return(nil, nil)
	f.happyPath()

	results := f.orchestrator(Options{DryRun: true}).Run(context.Background(), prospects)

	require.Len(t, results, 3)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.Equal(t, []string{ErrWebsiteAnalysis}, results[1].Errors)
	assert.True(t, results[2].Success)
	f.channel.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestRun_DryRunNeverSends(t *testing.T) {
	f := newFixture()
	f.happyPath()

	results := f.orchestrator(Options{DryRun: true}).Run(context.Background(), []model.Prospect{
		prospectAt("One", "one.test"),
		prospectAt("Two", "two.test"),
	})

	require.Len(t, results, 2)
	for _, r := range results {
		assert.True(t, r.Success)
	}
	f.channel.AssertNumberOfCalls(t, "Send", 0)
}

func TestRun_PanicBecomesFailedResult(t *testing.T) {
	f := newFixture()
	f.profiler.On("Profile", mock.Anything, "https://boom.test").Run(func(mock.Arguments) { panic("kaboom") })
	f.happyPath()

	results := f.orchestrator(Options{DryRun: true}).Run(context.Background(), []model.Prospect{
		prospectAt("Boom", "boom.test"),
		prospectAt("Fine", "fine.test"),
	})

	require.Len(t, results, 2)
	assert.False(t, results[0].Success)
	assert.Equal(t, []string{"Exception: kaboom"}, results[0].Errors)
	assert.Empty(t, results[0].StepsCompleted)
	assert.True(t, results[1].Success)
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := f.orchestrator(Options{DryRun: true}).Run(ctx, []model.Prospect{acme()})
	assert.Empty(t, results)
	f.profiler.AssertNotCalled(t, "Profile", mock.Anything, mock.Anything)
}

func TestRun_CancelledDuringDelay(t *testing.T) {
	f := newFixture()
	f.happyPath()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	results := f.orchestrator(Options{DryRun: true, Delay: time.Minute}).Run(ctx, []model.Prospect{
		prospectAt("One", "one.test"),
		prospectAt("Two", "two.test"),
	})
	assert.Len(t, results, 1)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestRun_RecorderErrorsAreNotFatal(t *testing.T) {
	f := newFixture()
	f.happyPath()
	rec := &mockRecorder{}
	rec.On("SaveResult", mock.Anything, "run-9", mock.Anything).Return(eris.New("disk full"))

	results := f.orchestrator(Options{DryRun: true}).WithRecorder(rec, "run-9").Run(context.Background(), []model.Prospect{
		prospectAt("One", "one.test"),
		prospectAt("Two", "two.test"),
	})

	require.Len(t, results, 2)
	assert.True(t, results[1].Success)
	rec.AssertNumberOfCalls(t, "SaveResult", 2)
}

func TestSummarize(t *testing.T) {
	now := time.Now()
	ok := model.NewProcessingResult(acme(), now)
	ok.Success = true
	ok.StepsCompleted = []model.Step{model.StepWebsiteAnalysis, model.StepAIAnalysis}
	ok.EmailContent = &model.DraftSummary{PersonalizationScore: 0.8}

	ok2 := model.NewProcessingResult(acme(), now)
	ok2.Success = true
	ok2.StepsCompleted = []model.Step{model.StepWebsiteAnalysis}
	ok2.EmailContent = &model.DraftSummary{PersonalizationScore: 0.4}

	bad := model.NewProcessingResult(acme(), now)
	bad.Errors = []string{ErrWebsiteAnalysis}
	bad2 := model.NewProcessingResult(acme(), now)
	bad2.Errors = []string{ErrInsights, ErrWebsiteAnalysis}

	ds := &delivery.Stats{TotalEmails: 2, Successful: 2, SuccessRate: 100}
	st := Summarize([]*model.ProcessingResult{ok, ok2, bad, bad2}, ds)

	assert.Equal(t, 4, st.TotalProspects)
	assert.Equal(t, 2, st.Successful)
	assert.Equal(t, 2, st.Failed)
	assert.InDelta(t, 50.0, st.SuccessRate, 1e-9)
	assert.Equal(t, 2, st.StepCounts[model.StepWebsiteAnalysis])
	assert.InDelta(t, 25.0, st.StepRates[model.StepAIAnalysis], 1e-9)
	assert.InDelta(t, 0.6, st.AveragePersonalizationScore, 1e-9)
	require.Len(t, st.CommonErrors, 2)
	assert.Equal(t, ErrorCount{Error: ErrWebsiteAnalysis, Count: 2}, st.CommonErrors[0])
	require.NotNil(t, st.DeliveryStats)
	assert.Equal(t, 2, st.DeliveryStats.TotalEmails)

	assert.Nil(t, Summarize(nil, &delivery.Stats{}).DeliveryStats)
}

func TestSummarize_Empty(t *testing.T) {
	st := Summarize(nil, nil)
	assert.Equal(t, 0, st.TotalProspects)
	assert.Equal(t, 0.0, st.SuccessRate)
	assert.Empty(t, st.CommonErrors)
}

func TestSummarize_CommonErrorsCapped(t *testing.T) {
	var results []*model.ProcessingResult
	for i := 0; i < 7; i++ {
		r := model.NewProcessingResult(acme(), time.Now())
		r.Errors = []string{"error " + string(rune('a'+i))}
		results = append(results, r)
	}
	assert.Len(t, Summarize(results, nil).CommonErrors, 5)
}

func TestExportResults(t *testing.T) {
	ok := model.NewProcessingResult(acme(), time.Now())
	ok.Success = true
	bad := model.NewProcessingResult(acme(), time.Now())
	bad.Errors = []string{ErrWebsiteAnalysis}

	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, ExportResults(path, 5, []*model.ProcessingResult{ok, bad}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"metadata\"")

	var doc Export
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, 5, doc.Metadata.TotalProspects)
	assert.Equal(t, 2, doc.Metadata.TotalResults)
	assert.InDelta(t, 50.0, doc.Metadata.SuccessRate, 1e-9)
	require.Len(t, doc.Results, 2)
	assert.Equal(t, []string{ErrWebsiteAnalysis}, doc.Results[1].Errors)
}
