package insight

// IndustryContext lists the common problem areas of one business category.
// They are quoted in the analysis prompt as background.
type IndustryContext struct {
	RevenueLeaks       []string `yaml:"revenue_leaks"`
	CompetitiveGaps    []string `yaml:"competitive_gaps"`
	ScalingBottlenecks []string `yaml:"scaling_bottlenecks"`
	EfficiencyGains    []string `yaml:"efficiency_gains"`
}

// fallbackContext is used for categories without their own entry.
const fallbackContext = "consulting"

// IndustryContexts returns the built-in context table keyed by business
// category.
func IndustryContexts() map[string]IndustryContext {
	return map[string]IndustryContext{
		"ecommerce": {
			RevenueLeaks:       []string{"cart abandonment without recovery", "poor product search", "missing upsell automation", "slow checkout process"},
			CompetitiveGaps:    []string{"no product recommendations", "limited payment options", "no inventory alerts", "poor mobile checkout"},
			ScalingBottlenecks: []string{"manual inventory management", "no customer segmentation", "basic analytics", "limited integrations"},
			EfficiencyGains:    []string{"automated reorder notifications", "dynamic pricing", "inventory forecasting", "customer service automation"},
		},
		"saas": {
			RevenueLeaks:       []string{"poor onboarding conversion", "high trial-to-paid dropout", "no usage-based upselling", "customer churn"},
			CompetitiveGaps:    []string{"no in-app guidance", "limited integrations", "poor feature discovery", "basic analytics"},
			ScalingBottlenecks: []string{"manual user onboarding", "no automated workflows", "limited customer success tracking"},
			EfficiencyGains:    []string{"automated user journeys", "usage analytics", "churn prediction", "feature adoption tracking"},
		},
		"consulting": {
			RevenueLeaks:       []string{"no lead scoring", "poor proposal automation", "missing case studies", "weak authority positioning"},
			CompetitiveGaps:    []string{"no thought leadership content", "basic contact process", "no client portal", "limited social proof"},
			ScalingBottlenecks: []string{"manual proposal creation", "no knowledge management", "time tracking inefficiencies"},
			EfficiencyGains:    []string{"automated lead qualification", "proposal templates", "client communication systems", "project tracking"},
		},
		"agency": {
			RevenueLeaks:       []string{"no retainer automation", "poor project scoping", "missing upsell opportunities", "client churn"},
			CompetitiveGaps:    []string{"no automated reporting", "limited client self-service", "basic project visibility"},
			ScalingBottlenecks: []string{"manual reporting", "poor resource planning", "scattered project data"},
			EfficiencyGains:    []string{"automated client reporting", "resource management", "project profitability tracking"},
		},
		"healthcare": {
			RevenueLeaks:       []string{"appointment no-shows", "poor online booking", "missing patient communications", "inefficient scheduling"},
			CompetitiveGaps:    []string{"no patient portal", "limited online presence", "poor patient experience"},
			ScalingBottlenecks: []string{"manual appointment management", "paper-based processes", "poor patient flow"},
			EfficiencyGains:    []string{"automated appointment reminders", "online scheduling", "patient communication systems"},
		},
		"restaurant": {
			RevenueLeaks:       []string{"no online ordering", "poor table management", "missing loyalty program", "delivery inefficiencies"},
			CompetitiveGaps:    []string{"limited online presence", "no reservation system", "poor customer data collection"},
			ScalingBottlenecks: []string{"manual order management", "poor inventory tracking", "limited customer insights"},
			EfficiencyGains:    []string{"online ordering system", "table management software", "inventory automation", "customer loyalty tracking"},
		},
		"real_estate": {
			RevenueLeaks:       []string{"poor lead qualification", "missing virtual tours", "weak follow-up systems", "limited market reach"},
			CompetitiveGaps:    []string{"basic property listings", "no lead automation", "poor client communication"},
			ScalingBottlenecks: []string{"manual lead tracking", "paper-based processes", "limited market analysis"},
			EfficiencyGains:    []string{"CRM automation", "virtual tour integration", "market analytics", "automated follow-up"},
		},
		"education": {
			RevenueLeaks:       []string{"poor student retention", "limited online offerings", "manual enrollment", "weak student engagement"},
			CompetitiveGaps:    []string{"no online learning platform", "basic student tracking", "limited digital content"},
			ScalingBottlenecks: []string{"manual grading", "poor progress tracking", "limited communication tools"},
			EfficiencyGains:    []string{"learning management system", "automated progress tracking", "student engagement tools"},
		},
		"finance": {
			RevenueLeaks:       []string{"slow client onboarding", "manual compliance", "poor client experience", "limited service automation"},
			CompetitiveGaps:    []string{"no client portal", "manual reporting", "basic document management"},
			ScalingBottlenecks: []string{"manual processes", "paper-based workflows", "limited client self-service"},
			EfficiencyGains:    []string{"automated onboarding", "digital document management", "compliance automation", "client portal"},
		},
		"manufacturing": {
			RevenueLeaks:       []string{"poor supply chain visibility", "quality control issues", "inventory inefficiencies", "production bottlenecks"},
			CompetitiveGaps:    []string{"manual tracking systems", "limited automation", "poor data visibility"},
			ScalingBottlenecks: []string{"manual processes", "poor production planning", "reactive maintenance"},
			EfficiencyGains:    []string{"supply chain automation", "predictive maintenance", "quality tracking systems", "production optimization"},
		},
	}
}
