package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/dig"

	"github.com/sells-group/outreach-cli/internal/compose"
	"github.com/sells-group/outreach-cli/internal/config"
	"github.com/sells-group/outreach-cli/internal/delivery"
	"github.com/sells-group/outreach-cli/internal/insight"
	"github.com/sells-group/outreach-cli/internal/llm"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/outreach"
	"github.com/sells-group/outreach-cli/internal/profile"
	"github.com/sells-group/outreach-cli/internal/scrape"
	"github.com/sells-group/outreach-cli/internal/store"
)

// buildContainer registers the pipeline graph. Constructors run on Invoke.
func buildContainer(ctx context.Context, c *config.Config, opts outreach.Options) (*dig.Container, error) {
	container := dig.New()

	providers := []any{
		func() *config.Config { return c },
		func() outreach.Options { return opts },
		func(c *config.Config) (*llm.Client, error) {
			return llm.New(ctx, c.LLM)
		},
		func(client *llm.Client) llm.Completer { return client },
		func(c *config.Config) scrape.Fetcher {
			return scrape.New(c.Scrape.Backend, scrape.Options{
				Timeout:   time.Duration(c.Scrape.TimeoutSecs) * time.Second,
				UserAgent: c.Scrape.UserAgent,
			})
		},
		func(c *config.Config) (*profile.Rules, error) {
			return profile.LoadRules(c.Profile.RulesFile)
		},
		profile.New,
		func(comp llm.Completer, c *config.Config) *insight.Generator {
			return insight.New(comp, nil, c.LLM.MaxTokens)
		},
		func(comp llm.Completer, c *config.Config) *compose.Composer {
			return compose.New(comp, compose.Options{
				Sender:    c.SMTP.SenderName,
				MaxTokens: c.LLM.MaxTokens,
			})
		},
		func(c *config.Config) *delivery.Channel { return delivery.New(c.SMTP) },
		func(c *config.Config) (store.Store, error) { return store.Open(ctx, c.Store) },
		func(p *profile.Profiler, g *insight.Generator, comp *compose.Composer, ch *delivery.Channel, o outreach.Options) *outreach.Orchestrator {
			return outreach.New(p, g, comp, ch, o)
		},
	}
	for _, p := range providers {
		if err := container.Provide(p); err != nil {
			return nil, eris.Wrap(err, "container: provide")
		}
	}
	return container, nil
}

// pipelineOptions maps configuration onto orchestrator options.
func pipelineOptions(c *config.Config, dryRun bool) outreach.Options {
	return outreach.Options{
		DryRun:             dryRun,
		Delay:              time.Duration(c.Pipeline.DelaySecs * float64(time.Second)),
		MaxInsightAttempts: c.Pipeline.MaxInsightAttempts,
		BaseTemperature:    c.LLM.Temperature,
		TemperatureStep:    c.Pipeline.TemperatureStep,
		Tone:               model.Tone(c.Pipeline.Tone),
		TargetWords:        c.Pipeline.TargetWords,
		SenderName:         c.SMTP.SenderName,
		OptimizeLength:     c.Pipeline.OptimizeLength,
	}
}
