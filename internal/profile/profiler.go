package profile

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/scrape"
)

// Profiler fetches a site once and derives a SiteProfile from it.
type Profiler struct {
	fetcher scrape.Fetcher
	rules   *Rules
}

// New creates a Profiler. A nil rules uses DefaultRules.
func New(fetcher scrape.Fetcher, rules *Rules) *Profiler {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Profiler{fetcher: fetcher, rules: rules}
}

// CleanURL adds a missing scheme, drops query and fragment, and strips the
// trailing slash. It returns "" for input that cannot be parsed.
func CleanURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimRight(u.Scheme+"://"+u.Host+u.Path, "/")
}

// Profile fetches rawURL and analyzes it. A fetch failure is the only error;
// every heuristic check degrades to empty results instead.
func (p *Profiler) Profile(ctx context.Context, rawURL string) (*model.SiteProfile, error) {
	target := CleanURL(rawURL)
	if target == "" {
		return nil, eris.Errorf("profile: invalid url %q", rawURL)
	}

	log := zap.L().With(zap.String("url", target), zap.String("fetcher", p.fetcher.Name()))
	log.Info("profile: analyzing website")

	start := time.Now()
	pg, err := p.fetcher.Fetch(ctx, target)
	latency := time.Since(start)
	if err != nil {
		log.Error("profile: fetch failed", zap.Error(err))
		return nil, eris.Wrapf(err, "profile: fetch %s", target)
	}

	prof, err := p.Analyze(target, pg.Body, latency)
	if err != nil {
		return nil, err
	}
	prof.FinalURL = pg.FinalURL
	prof.StatusCode = pg.StatusCode

	if ch := scrape.DetectChallenge(pg); ch != scrape.ChallengeNone {
		prof.Challenge = string(ch)
		log.Warn("profile: bot challenge detected", zap.String("challenge", prof.Challenge))
	}

	log.Info("profile: analysis complete",
		zap.String("category", prof.BusinessCategory),
		zap.Int("tech", len(prof.TechStack)),
		zap.Int("opportunities", len(prof.AIOpportunities)),
		zap.Duration("latency", latency),
	)
	return prof, nil
}

// Analyze builds a profile from an already fetched body.
func (p *Profiler) Analyze(target string, body []byte, latency time.Duration) (*model.SiteProfile, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "profile: parse html")
	}

	prof := model.NewSiteProfile(target)
	prof.PageLoadTime = latency.Seconds()

	pg := &page{doc: doc, rawLower: strings.ToLower(string(body))}
	extractBasics(pg, prof)
	detectTech(pg, p.rules, prof)
	checkSEO(pg, prof)
	checkAccessibility(pg, prof)
	prof.BusinessCategory = classify(prof.Content, p.rules)
	detectFeatures(pg, p.rules, prof)
	identifyOpportunities(prof, p.rules, markerGaps(pg))

	return prof, nil
}

// Summary returns the headline fields of a profile.
func Summary(p *model.SiteProfile) map[string]any {
	top := p.AIOpportunities
	if len(top) > 3 {
		top = top[:3]
	}
	return map[string]any{
		"url":                    p.URL,
		"title":                  p.Title,
		"business_category":      p.BusinessCategory,
		"tech_stack_count":       len(p.TechStack),
		"seo_issues_count":       len(p.SEOIssues),
		"tech_gaps_count":        len(p.TechGaps),
		"ai_opportunities_count": len(p.AIOpportunities),
		"mobile_responsive":      p.MobileResponsive,
		"has_chatbot":            p.HasChatbot,
		"page_load_time":         p.PageLoadTime,
		"top_opportunities":      append([]string{}, top...),
	}
}
