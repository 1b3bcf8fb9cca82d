// Package outreach drives each prospect through profiling, insight
// generation, composition and delivery, and reports on the run.
package outreach

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/compose"
	"github.com/sells-group/outreach-cli/internal/delivery"
	"github.com/sells-group/outreach-cli/internal/insight"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/profile"
	"github.com/sells-group/outreach-cli/internal/resilience"
)

// Profiler fetches and profiles a prospect's website.
type Profiler interface {
	Profile(ctx context.Context, rawURL string) (*model.SiteProfile, error)
}

// Analyzer produces insights for a profiled site at a given temperature.
type Analyzer interface {
	Analyze(ctx context.Context, profile *model.SiteProfile, p model.Prospect, temperature float64) (*model.InsightSet, error)
}

// Composer writes and shortens drafts.
type Composer interface {
	Compose(ctx context.Context, p model.Prospect, s *model.InsightSet, pd *model.PersonalizationData, tone model.Tone) (*model.Draft, error)
	OptimizeLength(ctx context.Context, d *model.Draft, targetWords int) *model.Draft
}

// Channel delivers one message.
type Channel interface {
	Send(ctx context.Context, m delivery.Message) model.DeliveryOutcome
}

// Recorder persists results for a run. store.Store satisfies it.
type Recorder interface {
	SaveResult(ctx context.Context, runID string, result *model.ProcessingResult) error
	SaveDelivery(ctx context.Context, runID string, outcome model.DeliveryOutcome) error
}

// Options tune the pipeline.
type Options struct {
	DryRun             bool
	Delay              time.Duration
	MaxInsightAttempts int
	BaseTemperature    float64
	TemperatureStep    float64
	Tone               model.Tone
	TargetWords        int
	SenderName         string
	// OptimizeLength asks the composer to shorten drafts over TargetWords.
	OptimizeLength bool
}

// Defaults for zero-valued Options fields.
const (
	DefaultMaxInsightAttempts = 2
	DefaultTemperatureStep    = 0.2
	DefaultTargetWords        = 150
	maxTemperature            = 1.0
)

// Error strings recorded on results.
const (
	ErrWebsiteAnalysis = "Website analysis failed"
	ErrInsights        = "AI insights generation failed or invalid"
	ErrEmailGeneration = "Email generation failed"
)

// Orchestrator runs prospects through the pipeline one at a time.
type Orchestrator struct {
	profiler Profiler
	analyzer Analyzer
	composer Composer
	channel  Channel
	recorder Recorder
	runID    string
	opts     Options
	now      func() time.Time
}

// New creates an Orchestrator. The channel may be nil in dry-run mode.
func New(profiler Profiler, analyzer Analyzer, composer Composer, channel Channel, opts Options) *Orchestrator {
	if opts.MaxInsightAttempts <= 0 {
		opts.MaxInsightAttempts = DefaultMaxInsightAttempts
	}
	if opts.TemperatureStep <= 0 {
		opts.TemperatureStep = DefaultTemperatureStep
	}
	if opts.TargetWords <= 0 {
		opts.TargetWords = DefaultTargetWords
	}
	if opts.Tone == "" {
		opts.Tone = model.ToneProfessional
	}
	return &Orchestrator{
		profiler: profiler,
		analyzer: analyzer,
		composer: composer,
		channel:  channel,
		opts:     opts,
		now:      time.Now,
	}
}

// WithRecorder attaches run history storage under runID.
func (o *Orchestrator) WithRecorder(r Recorder, runID string) *Orchestrator {
	o.recorder = r
	o.runID = runID
	return o
}

// attemptTemperature is the temperature for the zero-based insight attempt.
func (o *Orchestrator) attemptTemperature(attempt int) float64 {
	t := o.opts.BaseTemperature + float64(attempt)*o.opts.TemperatureStep
	return math.Min(t, maxTemperature)
}

// ProcessProspect runs one prospect through every step. The first failing
// step records its error and ends processing; the result is always returned.
func (o *Orchestrator) ProcessProspect(ctx context.Context, p model.Prospect) *model.ProcessingResult {
	res := model.NewProcessingResult(p, o.now())
	log := zap.L().With(zap.String("company", p.CompanyName), zap.String("email", p.Email))
	log.Info("outreach: processing prospect", zap.String("name", p.FullName()))

	site, err := o.profiler.Profile(ctx, p.CompanyURL)
	if err != nil || site == nil {
		log.Warn("outreach: website analysis failed", zap.String("url", p.CompanyURL), zap.Error(err))
		res.Fail(ErrWebsiteAnalysis)
		return res
	}
	res.Complete(model.StepWebsiteAnalysis)
	res.WebsiteAnalysis = profile.Summary(site)

	insights := o.insights(ctx, log, site, p)
	if insights == nil {
		res.Fail(ErrInsights)
		return res
	}
	res.Complete(model.StepAIAnalysis)
	res.AIInsights = insight.Summary(insights)

	pd, err := insight.Personalize(insights, p)
	if err != nil {
		log.Error("outreach: personalization failed", zap.Error(err))
		res.Fail(fmt.Sprintf("Personalization data generation failed: %v", err))
		return res
	}
	res.PersonalizationData = pd
	res.Complete(model.StepPersonalization)

	draft, err := o.composer.Compose(ctx, p, insights, pd, o.opts.Tone)
	if err != nil {
		log.Error("outreach: email generation failed", zap.Error(err))
		res.Fail(fmt.Sprintf("%s: %v", ErrEmailGeneration, err))
		return res
	}
	if draft == nil {
		res.Fail(ErrEmailGeneration)
		return res
	}
	if o.opts.OptimizeLength && draft.WordCount() > o.opts.TargetWords {
		if shorter := o.composer.OptimizeLength(ctx, draft, o.opts.TargetWords); shorter != draft {
			shorter.PersonalizationScore = compose.Score(shorter.Subject, shorter.Body, p, insights)
			draft = shorter
		}
	}
	res.Complete(model.StepEmailGeneration)
	res.EmailContent = draft.Summarize()

	v := compose.Validate(draft)
	res.EmailValidation = &v
	res.Complete(model.StepEmailValidation)
	if !v.IsValid {
		log.Warn("outreach: email validation issues", zap.Strings("issues", v.Issues))
	}

	if o.opts.DryRun {
		res.Complete(model.StepTestModeComplete)
		res.Success = true
		log.Info("outreach: test mode, email not sent", zap.String("subject", draft.Subject))
		return res
	}

	outcome := o.channel.Send(ctx, delivery.Message{
		To:         p.Email,
		Subject:    draft.Subject,
		Body:       draft.Body,
		SenderName: o.opts.SenderName,
	})
	o.saveDelivery(ctx, outcome)
	res.DeliveryResult = &outcome
	res.Complete(model.StepEmailSent)
	res.Success = outcome.Success
	if !outcome.Success {
		res.Fail("Email delivery failed: " + outcome.ErrorMessage)
	}
	return res
}

// insights runs up to MaxInsightAttempts analyses, raising the temperature
// on each retry, and returns the first set that validates.
func (o *Orchestrator) insights(ctx context.Context, log *zap.Logger, site *model.SiteProfile, p model.Prospect) *model.InsightSet {
	for attempt := 0; attempt < o.opts.MaxInsightAttempts; attempt++ {
		temp := o.attemptTemperature(attempt)
		s, err := o.analyzer.Analyze(ctx, site, p, temp)
		if err == nil {
			if err = insight.Validate(s); err == nil {
				return s
			}
		}
		log.Warn("outreach: insight attempt rejected",
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", o.opts.MaxInsightAttempts),
			zap.Float64("temperature", temp),
			zap.Error(err),
		)
		if ctx.Err() != nil {
			break
		}
	}
	log.Error("outreach: insight generation failed after all attempts")
	return nil
}

// Run processes prospects in order, sleeping Delay between them. A panic in
// one prospect becomes a failed result. Cancellation stops the loop and
// returns the results gathered so far.
func (o *Orchestrator) Run(ctx context.Context, prospects []model.Prospect) []*model.ProcessingResult {
	zap.L().Info("outreach: run starting",
		zap.Int("prospects", len(prospects)),
		zap.Bool("dry_run", o.opts.DryRun),
	)

	results := make([]*model.ProcessingResult, 0, len(prospects))
	successes := 0
	for i, p := range prospects {
		if ctx.Err() != nil {
			zap.L().Warn("outreach: run cancelled", zap.Int("processed", len(results)))
			break
		}

		res := o.safeProcess(ctx, p)
		results = append(results, res)
		o.saveResult(ctx, res)
		if res.Success {
			successes++
		}
		zap.L().Info("outreach: progress",
			zap.Int("done", i+1),
			zap.Int("total", len(prospects)),
			zap.Int("successful", successes),
			zap.Bool("success", res.Success),
			zap.Strings("errors", res.Errors),
		)

		if i < len(prospects)-1 && o.opts.Delay > 0 {
			if err := resilience.Sleep(ctx, o.opts.Delay); err != nil {
				zap.L().Warn("outreach: run cancelled during delay", zap.Int("processed", len(results)))
				break
			}
		}
	}
	return results
}

func (o *Orchestrator) safeProcess(ctx context.Context, p model.Prospect) (res *model.ProcessingResult) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("outreach: prospect panicked",
				zap.String("company", p.CompanyName),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			res = model.NewProcessingResult(p, o.now())
			res.Fail(fmt.Sprintf("Exception: %v", r))
		}
	}()
	return o.ProcessProspect(ctx, p)
}

func (o *Orchestrator) saveResult(ctx context.Context, res *model.ProcessingResult) {
	if o.recorder == nil {
		return
	}
	if err := o.recorder.SaveResult(context.WithoutCancel(ctx), o.runID, res); err != nil {
		zap.L().Warn("outreach: failed to save result", zap.String("run_id", o.runID), zap.Error(err))
	}
}

func (o *Orchestrator) saveDelivery(ctx context.Context, outcome model.DeliveryOutcome) {
	if o.recorder == nil {
		return
	}
	if err := o.recorder.SaveDelivery(context.WithoutCancel(ctx), o.runID, outcome); err != nil {
		zap.L().Warn("outreach: failed to save delivery", zap.String("run_id", o.runID), zap.Error(err))
	}
}
