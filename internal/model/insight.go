package model

// Default labels used when the model leaves ROI or complexity blank.
const DefaultRating = "Medium"

// InsightSet holds LLM-derived business insights for one prospect.
type InsightSet struct {
	Opportunities            []string `json:"opportunities"`
	PainPoints               []string `json:"pain_points"`
	Recommendations          []string `json:"recommendations"`
	IndustryTrends           []string `json:"industry_trends"`
	CompetitiveGaps          []string `json:"competitive_gaps"`
	ROIPotential             string   `json:"roi_potential"`
	ImplementationComplexity string   `json:"implementation_complexity"`
}

// Normalize replaces nil lists with empty ones and fills blank ratings.
func (s *InsightSet) Normalize() {
	for _, l := range []*[]string{&s.Opportunities, &s.PainPoints, &s.Recommendations, &s.IndustryTrends, &s.CompetitiveGaps} {
		if *l == nil {
			*l = []string{}
		}
	}
	if s.ROIPotential == "" {
		s.ROIPotential = DefaultRating
	}
	if s.ImplementationComplexity == "" {
		s.ImplementationComplexity = DefaultRating
	}
}

// PersonalizationData steers email drafting toward one primary theme.
type PersonalizationData struct {
	ProspectName             string   `json:"prospect_name"`
	CompanyName              string   `json:"company_name"`
	JobPosition              string   `json:"job_position"`
	PrimaryOpportunity       string   `json:"primary_opportunity"`
	SecondaryOpportunities   []string `json:"secondary_opportunities"`
	PrimaryPainPoint         string   `json:"primary_pain_point"`
	ROIPotential             string   `json:"roi_potential"`
	ImplementationComplexity string   `json:"implementation_complexity"`
	TalkingPoints            []string `json:"talking_points"`
	UrgencyLevel             string   `json:"urgency_level"`
	IndustryTrend            string   `json:"industry_trend"`
	CompetitiveAdvantage     string   `json:"competitive_advantage"`
	OpportunityCategory      string   `json:"opportunity_category"`
	SolutionType             string   `json:"solution_type"`
}
