package compose

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/sells-group/outreach-cli/internal/model"
)

const (
	insightSample     = 5
	insightWordMinLen = 4
	insightWeight     = 0.08
	insightCap        = 0.40
	termWeight        = 0.02
	termCap           = 0.15
	structureWeight   = 0.05
)

var businessTerms = []string{"revenue", "customers", "growth", "optimization", "efficiency", "competitive"}

var ctaPhrases = []string{"would you", "interested in", "call", "chat", "discuss"}

// Score rates how personalized a draft is, from 0 to 1. It is a pure
// function of its inputs.
func Score(subject, body string, p model.Prospect, s *model.InsightSet) float64 {
	lower := strings.ToLower(body)
	score := 0.0

	if present(lower, p.FirstName) {
		score += 0.10
	}
	if present(lower, p.CompanyName) {
		score += 0.15
	}
	if present(lower, p.JobPosition) {
		score += 0.05
	}

	if s != nil {
		var all []string
		all = append(all, s.Opportunities...)
		all = append(all, s.PainPoints...)
		all = append(all, s.Recommendations...)
		if len(all) > insightSample {
			all = all[:insightSample]
		}
		mentions := 0
		for _, insight := range all {
			if mentionsInsight(lower, insight) {
				mentions++
			}
		}
		score += math.Min(float64(mentions)*insightWeight, insightCap)
	}

	terms := 0
	for _, t := range businessTerms {
		if strings.Contains(lower, t) {
			terms++
		}
	}
	score += math.Min(float64(terms)*termWeight, termCap)

	if p.FirstName != "" && strings.Contains(lower, "hi "+strings.ToLower(p.FirstName)) {
		score += structureWeight
	}
	if strings.Contains(lower, "best regards") {
		score += structureWeight
	}
	for _, phrase := range ctaPhrases {
		if strings.Contains(lower, phrase) {
			score += structureWeight
			break
		}
	}

	return math.Min(score, 1.0)
}

func present(lowerBody, field string) bool {
	field = strings.ToLower(strings.TrimSpace(field))
	return field != "" && strings.Contains(lowerBody, field)
}

// mentionsInsight reports whether any word of insight longer than four
// characters appears in the body.
func mentionsInsight(lowerBody, insight string) bool {
	for _, w := range strings.Fields(insight) {
		if utf8.RuneCountInString(w) > insightWordMinLen && strings.Contains(lowerBody, strings.ToLower(w)) {
			return true
		}
	}
	return false
}
