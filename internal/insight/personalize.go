package insight

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-cli/internal/model"
)

const (
	fallbackOpportunity = "website optimization and modernization"
	fallbackPainPoint   = "operational efficiency challenges"
	maxSecondary        = 2
	maxTalkingPoints    = 3
)

type bucket struct {
	name         string
	keywords     []string
	painKeywords []string
	talkingPoint string
	solution     string
}

// buckets are checked in order; integration catches everything else.
var buckets = []bucket{
	{
		name:         "technical",
		keywords:     []string{"performance", "speed", "technical", "optimization", "infrastructure"},
		painKeywords: []string{"speed", "performance", "technical"},
		talkingPoint: "Optimize website performance and technical infrastructure",
		solution:     "Performance Optimization",
	},
	{
		name:         "marketing",
		keywords:     []string{"seo", "content", "marketing", "search", "visibility"},
		painKeywords: []string{"visibility", "traffic", "leads"},
		talkingPoint: "Enhance digital marketing and search visibility",
		solution:     "Digital Marketing Enhancement",
	},
	{
		name:         "automation",
		keywords:     []string{"automation", "workflow", "process", "manual"},
		painKeywords: []string{"manual", "time", "efficiency"},
		talkingPoint: "Automate manual processes and improve efficiency",
		solution:     "Process Automation",
	},
	{
		name:         "ux",
		keywords:     []string{"ux", "user experience", "design", "conversion", "navigation"},
		talkingPoint: "Improve user experience and conversion rates",
		solution:     "User Experience Improvement",
	},
	{
		name:         "analytics",
		keywords:     []string{"analytics", "tracking", "data", "insights", "reporting"},
		talkingPoint: "Implement data tracking and business insights",
		solution:     "Data & Analytics Setup",
	},
	{
		name:         "integration",
		talkingPoint: "Modernize technology stack and integrations",
		solution:     "System Integration",
	},
}

var urgencyKeywords = []string{"security", "compliance", "performance", "competitive", "outdated"}

// Personalize condenses insights into the single theme an email should
// lead with.
func Personalize(s *model.InsightSet, p model.Prospect) (*model.PersonalizationData, error) {
	if s == nil {
		return nil, eris.New("insight: personalize: nil insights")
	}

	sorted := sortIntoBuckets(s.Opportunities)
	primary := 0
	for i := range buckets {
		if len(sorted[i]) > len(sorted[primary]) {
			primary = i
		}
	}
	b := buckets[primary]

	primaryOpp := fallbackOpportunity
	switch {
	case len(sorted[primary]) > 0:
		primaryOpp = sorted[primary][0]
	case len(s.Opportunities) > 0:
		primaryOpp = s.Opportunities[0]
	}

	secondary := []string{}
	for _, o := range head(s.Opportunities, 3) {
		if o != primaryOpp && len(secondary) < maxSecondary {
			secondary = append(secondary, o)
		}
	}

	talking := []string{b.talkingPoint}
	if len(s.PainPoints) > 0 {
		talking = append(talking, "Address "+strings.ToLower(s.PainPoints[0]))
	}

	return &model.PersonalizationData{
		ProspectName:             p.FirstName,
		CompanyName:              p.CompanyName,
		JobPosition:              p.JobPosition,
		PrimaryOpportunity:       primaryOpp,
		SecondaryOpportunities:   secondary,
		PrimaryPainPoint:         pickPainPoint(s.PainPoints, b),
		ROIPotential:             s.ROIPotential,
		ImplementationComplexity: s.ImplementationComplexity,
		TalkingPoints:            head(talking, maxTalkingPoints),
		UrgencyLevel:             Urgency(s),
		IndustryTrend:            first(s.IndustryTrends),
		CompetitiveAdvantage:     first(s.CompetitiveGaps),
		OpportunityCategory:      b.name,
		SolutionType:             b.solution,
	}, nil
}

func sortIntoBuckets(opps []string) [][]string {
	sorted := make([][]string, len(buckets))
	for _, o := range opps {
		lower := strings.ToLower(o)
		idx := len(buckets) - 1
		for i, b := range buckets[:len(buckets)-1] {
			if containsAny(lower, b.keywords) {
				idx = i
				break
			}
		}
		sorted[idx] = append(sorted[idx], o)
	}
	return sorted
}

func pickPainPoint(pains []string, b bucket) string {
	if len(pains) == 0 {
		return fallbackPainPoint
	}
	for _, pain := range pains {
		if containsAny(strings.ToLower(pain), b.painKeywords) {
			return pain
		}
	}
	return pains[0]
}

// Urgency rates insights high, medium or low by how many distinct urgency
// keywords appear across opportunities, pain points and competitive gaps.
func Urgency(s *model.InsightSet) string {
	var all []string
	all = append(all, s.Opportunities...)
	all = append(all, s.PainPoints...)
	all = append(all, s.CompetitiveGaps...)
	switch n := countHits(strings.ToLower(strings.Join(all, " ")), urgencyKeywords); {
	case n >= 3:
		return "high"
	case n >= 1:
		return "medium"
	default:
		return "low"
	}
}

// Summary reports counts and the top opportunity for logs and results.
func Summary(s *model.InsightSet) map[string]any {
	var top any
	if len(s.Opportunities) > 0 {
		top = s.Opportunities[0]
	}
	return map[string]any{
		"opportunities_count":   len(s.Opportunities),
		"pain_points_count":     len(s.PainPoints),
		"recommendations_count": len(s.Recommendations),
		"roi_potential":         s.ROIPotential,
		"complexity":            s.ImplementationComplexity,
		"top_opportunity":       top,
	}
}

func first(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return items[0]
}
