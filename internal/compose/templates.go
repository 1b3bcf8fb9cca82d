package compose

import "github.com/sells-group/outreach-cli/internal/model"

// DefaultSender signs drafts when no sender name is configured.
const DefaultSender = "Your Technical Solutions Consultant"

// ToneProfile describes a tone to the model. It never changes scoring.
type ToneProfile struct {
	Formality   string
	Personality string
	Language    string
	Approach    string
}

// Focus is the angle an email takes for one opportunity category.
type Focus struct {
	Area         string
	Approach     string
	ValueProp    string
	Technologies []string
}

type focusRule struct {
	category string
	keywords []string
}

// Templates holds the fixed text tables the composer draws on.
type Templates struct {
	Tones           map[model.Tone]ToneProfile
	Focus           map[string]Focus
	SubjectPatterns []string

	WholeTextSubject    string
	WholeTextCTA        string
	SubjectFallback     string
	TemplateSubject     string
	TemplateCTA         string
	TemplateBodyOpening string
}

const defaultFocus = "performance"

// focusRules assign an opportunity to the first matching category; anything
// unmatched lands in performance.
var focusRules = []focusRule{
	{"technical", []string{"performance", "speed", "load time", "optimization", "technical"}},
	{"marketing", []string{"seo", "content", "marketing", "visibility", "search"}},
	{"automation", []string{"automation", "workflow", "process", "manual", "automated"}},
	{"ux_conversion", []string{"conversion", "user experience", "ux", "navigation", "design"}},
	{"data_analytics", []string{"analytics", "tracking", "data", "insights", "reporting"}},
}

var focusOrder = []string{"technical", "marketing", "automation", "ux_conversion", "data_analytics", "performance"}

// DefaultTemplates returns the built-in tables.
func DefaultTemplates() *Templates {
	return &Templates{
		Tones: map[model.Tone]ToneProfile{
			model.ToneProfessional: {"formal", "professional and respectful", "business-appropriate", "consultative"},
			model.ToneFriendly:     {"semi-formal", "friendly and approachable", "conversational but professional", "collaborative"},
			model.ToneDirect:       {"formal", "direct and results-oriented", "concise and clear", "solution-focused"},
		},
		Focus: map[string]Focus{
			"technical": {
				Area:         "technical performance optimization",
				Approach:     "Full-stack performance engineering and optimization",
				ValueProp:    "Sub-second load times and optimal resource utilization",
				Technologies: []string{"Next.js", "Redis", "CloudFront", "WebP/AVIF", "Service Workers"},
			},
			"marketing": {
				Area:         "technical SEO and analytics architecture",
				Approach:     "Data-driven marketing infrastructure development",
				ValueProp:    "Automated SEO optimization and conversion tracking",
				Technologies: []string{"Next.js", "Google Analytics 4", "Schema.org", "GTM", "BigQuery"},
			},
			"automation": {
				Area:         "process automation and integration",
				Approach:     "Custom automation system development",
				ValueProp:    "End-to-end workflow automation and integration",
				Technologies: []string{"Node.js", "Python", "Docker", "RabbitMQ", "Redis"},
			},
			"ux_conversion": {
				Area:         "frontend architecture optimization",
				Approach:     "Modern frontend development and UX engineering",
				ValueProp:    "Performant, conversion-optimized user experiences",
				Technologies: []string{"React", "Next.js", "TailwindCSS", "Framer Motion"},
			},
			"data_analytics": {
				Area:         "data engineering and analytics architecture",
				Approach:     "Custom analytics infrastructure development",
				ValueProp:    "Real-time data processing and visualization",
				Technologies: []string{"Python", "PostgreSQL", "Apache Kafka", "Elasticsearch"},
			},
			"performance": {
				Area:         "full-stack system optimization",
				Approach:     "Comprehensive technical architecture enhancement",
				ValueProp:    "Scalable, high-performance system architecture",
				Technologies: []string{"Kubernetes", "AWS/GCP", "Terraform", "Prometheus"},
			},
		},
		SubjectPatterns: []string{
			"{first_name}, noticed something unusual about {company}",
			"Quick question about {company}'s {opportunity}",
			"{first_name}, your {pain_point} fix is simpler than you think",
		},
		WholeTextSubject:    "Opportunity for {company}'s digital transformation",
		WholeTextCTA:        "Would you be open to a brief 15-minute conversation this week?",
		SubjectFallback:     "Quick question for {first_name} at {company}",
		TemplateSubject:     "Quick tech insight for your business",
		TemplateCTA:         "Would you be interested in a quick chat?",
		TemplateBodyOpening: "I recently analyzed your website and noticed some interesting opportunities for optimization. I'd love to share my findings with you.",
	}
}

// tone returns the profile for t, falling back to professional.
func (t *Templates) tone(tone model.Tone) ToneProfile {
	if p, ok := t.Tones[tone]; ok {
		return p
	}
	return t.Tones[model.ToneProfessional]
}
