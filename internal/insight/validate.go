package insight

import (
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/model"
)

// ErrInvalid wraps every Validate rejection.
var ErrInvalid = eris.New("insight: rejected")

const (
	minOpportunityLen = 15
	validateTopN      = 3
	maxGenericHits    = 1
	minQualityHits    = 2
	minDistinctTypes  = 2
)

var genericPhrases = []string{
	"ai chatbot",
	"customer engagement",
	"customer service chatbot",
	"ai-powered chatbot",
	"chatbot integration",
}

var qualityKeywords = []string{
	"implement", "develop", "create", "build", "integrate", "deploy",
	"design", "customize", "optimize", "automate", "track", "analyze",
	"performance", "seo", "conversion", "workflow", "dashboard",
	"system", "platform", "tool", "solution",
}

type keywordClass struct {
	name     string
	keywords []string
}

// opportunityTypes classifies an opportunity by its first matching class.
var opportunityTypes = []keywordClass{
	{"chatbot", []string{"chatbot", "ai chat", "conversation"}},
	{"marketing", []string{"seo", "search", "content", "marketing"}},
	{"performance", []string{"performance", "speed", "optimization", "load"}},
	{"automation", []string{"automation", "workflow", "process"}},
	{"analytics", []string{"analytics", "tracking", "data", "insights"}},
	{"ux", []string{"design", "ux", "user experience", "conversion"}},
	{"integration", []string{"integration", "api", "system", "platform"}},
}

// Validate accepts insights that are specific, varied and not dominated by
// generic chatbot pitches. Rejections wrap ErrInvalid with the failed rule.
func Validate(s *model.InsightSet) error {
	if s == nil {
		return eris.Wrap(ErrInvalid, "no insights")
	}

	substantial := false
	for _, o := range s.Opportunities {
		if utf8.RuneCountInString(strings.TrimSpace(o)) > minOpportunityLen {
			substantial = true
			break
		}
	}
	if !substantial {
		return eris.Wrap(ErrInvalid, "no substantial opportunity")
	}

	top := head(s.Opportunities, validateTopN)
	joined := strings.ToLower(strings.Join(top, " "))

	if countHits(joined, genericPhrases) > maxGenericHits {
		return eris.Wrap(ErrInvalid, "too focused on generic chatbot solutions")
	}
	if countHits(joined, qualityKeywords) < minQualityHits {
		return eris.Wrap(ErrInvalid, "lacks specific technical detail")
	}

	distinct := map[string]struct{}{}
	for _, o := range top {
		distinct[classifyOpportunity(o)] = struct{}{}
	}
	if len(distinct) < minDistinctTypes {
		return eris.Wrap(ErrInvalid, "lacks variety in solution types")
	}
	return nil
}

func classifyOpportunity(o string) string {
	lower := strings.ToLower(o)
	for _, c := range opportunityTypes {
		if containsAny(lower, c.keywords) {
			return c.name
		}
	}
	return "general"
}

// countHits counts how many keywords occur in text, each at most once.
func countHits(text string, keywords []string) int {
	n := 0
	for _, k := range keywords {
		if strings.Contains(text, k) {
			n++
		}
	}
	return n
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
