// Package insight asks the LLM for sales insights about a profiled website,
// checks their quality and condenses them into personalization data.
package insight

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/llm"
	"github.com/sells-group/outreach-cli/internal/model"
)

// Generator produces InsightSets through a Completer.
type Generator struct {
	llm       llm.Completer
	contexts  map[string]IndustryContext
	maxTokens int
}

// New creates a Generator. A nil contexts map uses IndustryContexts().
func New(c llm.Completer, contexts map[string]IndustryContext, maxTokens int) *Generator {
	if contexts == nil {
		contexts = IndustryContexts()
	}
	if maxTokens <= 0 {
		maxTokens = 1000
	}
	return &Generator{llm: c, contexts: contexts, maxTokens: maxTokens}
}

// Analyze prompts the model with the profile and prospect at the given
// temperature. Transport and parse failures return an error. A parsed set
// with no opportunities is returned as-is for Validate to reject.
func (g *Generator) Analyze(ctx context.Context, profile *model.SiteProfile, p model.Prospect, temperature float64) (*model.InsightSet, error) {
	if profile == nil {
		return nil, eris.New("insight: nil site profile")
	}
	log := zap.L().With(zap.String("company", p.CompanyName))
	log.Info("insight: generating", zap.Float64("temperature", temperature))

	text, err := g.llm.Complete(ctx, systemPrompt, buildPrompt(profile, p, g.contextFor(profile.BusinessCategory)), g.maxTokens, temperature)
	if err != nil {
		return nil, eris.Wrap(err, "insight: complete")
	}

	set, err := parse(text)
	if err != nil {
		log.Warn("insight: could not parse response", zap.Int("response_len", len(text)))
		return nil, err
	}

	log.Info("insight: generated", zap.Int("opportunities", len(set.Opportunities)))
	return set, nil
}

func (g *Generator) contextFor(category string) IndustryContext {
	if c, ok := g.contexts[category]; ok {
		return c
	}
	return g.contexts[fallbackContext]
}
