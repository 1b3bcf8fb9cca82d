// Package compose drafts personalized outreach emails from insights, scores
// and validates them, and suggests subject lines.
package compose

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/llm"
	"github.com/sells-group/outreach-cli/internal/model"
)

const (
	shortenMaxTokens    = 400
	shortenTemperature  = 0.3
	subjectsMaxTokens   = 200
	subjectsTemperature = 0.8
	defaultSubjectCount = 5
)

// Options tunes a Composer.
type Options struct {
	Sender      string
	MaxTokens   int
	Temperature float64
	Templates   *Templates
}

// Composer drafts emails through a Completer.
type Composer struct {
	llm         llm.Completer
	templates   *Templates
	sender      string
	maxTokens   int
	temperature float64
}

// New creates a Composer. Zero options fall back to DefaultSender, 800
// tokens, temperature 0.8 and DefaultTemplates.
func New(c llm.Completer, opts Options) *Composer {
	if opts.Sender == "" {
		opts.Sender = DefaultSender
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 800
	}
	if opts.Temperature <= 0 {
		opts.Temperature = 0.8
	}
	if opts.Templates == nil {
		opts.Templates = DefaultTemplates()
	}
	return &Composer{
		llm:         c,
		templates:   opts.Templates,
		sender:      opts.Sender,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
	}
}

// Compose drafts an email. Only a transport failure returns an error; any
// model reply yields a draft.
func (c *Composer) Compose(ctx context.Context, p model.Prospect, s *model.InsightSet, pd *model.PersonalizationData, tone model.Tone) (*model.Draft, error) {
	if s == nil || pd == nil {
		return nil, eris.New("compose: insights and personalization are required")
	}
	if _, ok := c.templates.Tones[tone]; !ok {
		tone = model.ToneProfessional
	}
	log := zap.L().With(zap.String("company", p.CompanyName), zap.String("tone", string(tone)))

	text, err := c.llm.Complete(ctx, c.systemPrompt(tone), c.userPrompt(p, s, pd), c.maxTokens, c.temperature)
	if err != nil {
		return nil, eris.Wrap(err, "compose: complete")
	}

	out := parseDraft(text, parseEnv{company: p.CompanyName, sender: c.sender, templates: c.templates})
	d := &model.Draft{
		Subject:      out.subject,
		Body:         out.body,
		CallToAction: out.cta,
		Tone:         tone,
	}
	d.PersonalizationScore = Score(d.Subject, d.Body, p, s)

	log.Info("compose: drafted",
		zap.Float64("personalization_score", d.PersonalizationScore),
		zap.Int("words", d.WordCount()),
	)
	return d, nil
}

// OptimizeLength asks the model to shorten a draft whose body exceeds
// targetWords. Only the body changes. Failures return d unchanged.
func (c *Composer) OptimizeLength(ctx context.Context, d *model.Draft, targetWords int) *model.Draft {
	words := d.WordCount()
	if words <= targetWords {
		return d
	}

	prompt := fmt.Sprintf(shortenPromptTmpl, targetWords, words, d.Body)
	text, err := c.llm.Complete(ctx, "", prompt, shortenMaxTokens, shortenTemperature)
	if err != nil {
		zap.L().Warn("compose: length optimization failed", zap.Error(err))
		return d
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return d
	}

	shorter := *d
	shorter.Body = text
	zap.L().Debug("compose: shortened", zap.Int("from_words", words), zap.Int("to_words", shorter.WordCount()))
	return &shorter
}

// SuggestSubjects fills count subject lines from the fixed patterns and
// asks the model for the rest. Every line is capped at 60 characters.
func (c *Composer) SuggestSubjects(ctx context.Context, p model.Prospect, s *model.InsightSet, count int) []string {
	if count <= 0 {
		count = defaultSubjectCount
	}
	values := map[string]string{
		"first_name":  p.FirstName,
		"company":     p.CompanyName,
		"opportunity": "tech upgrade",
		"pain_point":  "efficiency",
	}
	if s != nil && len(s.Opportunities) > 0 {
		values["opportunity"] = strings.ToLower(clip(s.Opportunities[0], 20))
	}
	if s != nil && len(s.PainPoints) > 0 {
		values["pain_point"] = strings.ToLower(clip(s.PainPoints[0], 20))
	}

	subjects := []string{}
	for _, pattern := range c.templates.SubjectPatterns {
		if len(subjects) == count {
			break
		}
		subjects = append(subjects, clip(fill(pattern, values), maxSubjectLen))
	}

	if need := count - len(subjects); need > 0 {
		extra, err := c.aiSubjects(ctx, p, values, need)
		if err != nil {
			zap.L().Warn("compose: subject suggestions failed", zap.Error(err))
		}
		subjects = append(subjects, extra...)
	}

	if len(subjects) == 0 {
		return []string{fill(c.templates.SubjectFallback, values)}
	}
	if len(subjects) > count {
		subjects = subjects[:count]
	}
	return subjects
}

func (c *Composer) aiSubjects(ctx context.Context, p model.Prospect, values map[string]string, n int) ([]string, error) {
	prompt := fmt.Sprintf(subjectsPromptTmpl, n, p.FullName(), orDefault(p.JobPosition, "decision maker"), p.CompanyName, values["opportunity"], values["pain_point"])
	text, err := c.llm.Complete(ctx, "", prompt, subjectsMaxTokens, subjectsTemperature)
	if err != nil {
		return nil, eris.Wrap(err, "compose: subjects")
	}

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start || !gjson.Valid(text[start:end+1]) {
		return nil, eris.New("compose: subjects reply is not a JSON array")
	}

	var out []string
	for _, item := range gjson.Parse(text[start : end+1]).Array() {
		if s := strings.TrimSpace(item.String()); s != "" && len(out) < n {
			out = append(out, clip(s, maxSubjectLen))
		}
	}
	return out, nil
}

func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
