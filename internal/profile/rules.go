// Package profile derives a heuristic business profile from a prospect's
// website.
package profile

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// TechRule maps a technology label to the source keywords that reveal it.
type TechRule struct {
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
}

// CategoryRule maps a business category to its content keywords.
type CategoryRule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Rules holds every heuristic table the profiler consults. Tables are
// ordered; earlier entries win ties.
type Rules struct {
	Tech                  []TechRule          `yaml:"tech"`
	Categories            []CategoryRule      `yaml:"categories"`
	ContactPhrases        []string            `yaml:"contact_phrases"`
	ChatIndicators        []string            `yaml:"chat_indicators"`
	BlogIndicators        []string            `yaml:"blog_indicators"`
	CommerceIndicators    []string            `yaml:"commerce_indicators"`
	CategoryOpportunities map[string][]string `yaml:"category_opportunities"`
	ContentCategories     []string            `yaml:"content_categories"`
	SlowPageSecs          float64             `yaml:"slow_page_secs"`
	ContactThreshold      float64             `yaml:"contact_threshold"`
}

const fallbackCategory = "general"

// DefaultRules returns the built-in tables.
func DefaultRules() *Rules {
	return &Rules{
		Tech: []TechRule{
			{"React", []string{"react", "reactjs", "react.js", "create-react-app"}},
			{"Angular", []string{"angular", "angularjs", "ng-"}},
			{"Vue.js", []string{"vue", "vuejs", "vue.js", "nuxt"}},
			{"Next.js", []string{"next.js", "nextjs", "_next/static"}},
			{"Svelte", []string{"svelte", "sveltekit"}},
			{"jQuery", []string{"jquery"}},
			{"Bootstrap", []string{"bootstrap"}},
			{"Tailwind", []string{"tailwindcss", "tailwind.css"}},
			{"Material UI", []string{"material-ui", "@mui/material"}},
			{"WordPress", []string{"wp-content", "wordpress", "wp-includes"}},
			{"Shopify", []string{"shopify", "myshopify"}},
			{"Wix", []string{"wix.com", "wixstatic"}},
			{"Squarespace", []string{"squarespace"}},
			{"Webflow", []string{"webflow.com", "webflow.io"}},
			{"Google Analytics", []string{"google-analytics", "gtag", "ga.js"}},
			{"Google Tag Manager", []string{"googletagmanager", "gtm.js"}},
			{"Facebook Pixel", []string{"facebook.net/tr", "fbevents.js"}},
			{"Hotjar", []string{"hotjar", "hjsv"}},
			{"Segment", []string{"segment.com", "analytics.js"}},
			{"Stripe", []string{"stripe", "js.stripe.com"}},
			{"PayPal", []string{"paypal"}},
			{"Square", []string{"squareup.com"}},
			{"Intercom", []string{"intercom"}},
			{"Zendesk", []string{"zendesk"}},
			{"Drift", []string{"drift.com", "driftt.com"}},
			{"Crisp", []string{"crisp.chat"}},
			{"HubSpot", []string{"hubspot"}},
			{"Mailchimp", []string{"mailchimp", "list-manage.com"}},
			{"Marketo", []string{"marketo", "mktoresp.com"}},
			{"Salesforce", []string{"salesforce", "force.com"}},
			{"Pipedrive", []string{"pipedrive"}},
			{"Monday.com", []string{"monday.com"}},
			{"Cloudflare", []string{"cloudflare", "cdnjs"}},
			{"reCAPTCHA", []string{"recaptcha", "gstatic.com"}},
			{"Auth0", []string{"auth0.com"}},
			{"GitHub", []string{"github.io", "githubusercontent"}},
			{"npm", []string{"npmjs.com", "unpkg.com"}},
			{"Webpack", []string{"webpack", "chunks.js"}},
		},
		Categories: []CategoryRule{
			{"ecommerce", []string{"shop", "store", "buy", "cart", "checkout", "product", "price", "order", "inventory", "shipping"}},
			{"saas", []string{"software", "platform", "api", "dashboard", "subscription", "cloud", "integration", "enterprise", "scalable"}},
			{"consulting", []string{"consulting", "advisory", "strategy", "expert", "professional", "solutions", "transformation", "optimization"}},
			{"agency", []string{"agency", "marketing", "design", "creative", "branding", "campaigns", "digital", "advertising", "media"}},
			{"healthcare", []string{"health", "medical", "doctor", "clinic", "patient", "care", "wellness", "treatment", "telehealth"}},
			{"finance", []string{"finance", "investment", "banking", "loan", "insurance", "wealth", "portfolio", "financial", "trading"}},
			{"education", []string{"education", "training", "course", "learning", "school", "curriculum", "students", "online learning"}},
			{"real_estate", []string{"real estate", "property", "homes", "rent", "lease", "commercial", "residential", "agents"}},
			{"restaurant", []string{"restaurant", "food", "menu", "delivery", "catering", "reservations", "dining", "cuisine"}},
			{"tech", []string{"technology", "software", "development", "ai", "machine learning", "innovation", "digital transformation"}},
			{"manufacturing", []string{"manufacturing", "production", "factory", "industrial", "supply chain", "quality control"}},
			{"legal", []string{"law", "legal", "attorney", "compliance", "regulations", "contracts", "litigation"}},
			{"nonprofit", []string{"nonprofit", "charity", "donation", "community", "social impact", "volunteer", "cause"}},
		},
		ContactPhrases: []string{
			"get in touch", "contact us", "reach out", "send us a message", "talk to us",
			"connect with us", "book a call", "schedule a demo", "request a quote",
		},
		ChatIndicators:     []string{"chat", "support", "help", "intercom", "zendesk", "livechat", "drift", "freshchat"},
		BlogIndicators:     []string{"blog", "news", "articles", "posts", "resources", "insights", "knowledge"},
		CommerceIndicators: []string{"add to cart", "buy now", "checkout", "shopping cart", "product", "pricing", "subscription", "payment", "plans", "store"},
		CategoryOpportunities: map[string][]string{
			"ecommerce": {
				"Real-time recommendation engine driven by browsing behavior",
				"Inventory optimization system with demand forecasting",
				"Dynamic pricing engine with competitor price monitoring",
			},
			"consulting": {
				"Intelligent lead scoring and qualification system",
				"AI-powered market trend analysis and insights",
				"Automated proposal generation with client-specific data",
				"Smart meeting scheduling with context awareness",
				"Client success prediction modeling",
				"Automated case study generation from project data",
			},
			"agency": {
				"AI-powered content strategy optimization",
				"Automated social media content creation and scheduling",
				"Advanced campaign analytics with predictive insights",
				"Creative asset generation using AI",
				"Client reporting automation with natural language insights",
				"Multi-channel campaign performance prediction",
			},
			"saas": saasOpportunities,
			"tech": saasOpportunities,
			"healthcare": {
				"Patient engagement automation system",
				"Appointment scheduling optimization",
				"Healthcare document processing automation",
				"Patient feedback analysis and insights",
				"Treatment recommendation support system",
			},
			"manufacturing": {
				"Predictive maintenance scheduling",
				"Quality control automation with computer vision",
				"Supply chain optimization using ML",
				"Production scheduling optimization",
				"Inventory management automation",
			},
			"legal": {
				"Legal document analysis and processing",
				"Case outcome prediction system",
				"Automated compliance monitoring",
				"Legal research automation",
				"Client intake process automation",
			},
			"nonprofit": {
				"Donor engagement optimization",
				"Grant application automation",
				"Impact reporting automation",
				"Volunteer matching system",
				"Fundraising campaign optimization",
			},
		},
		ContentCategories: []string{"consulting", "agency", "tech", "saas"},
		SlowPageSecs:      4.0,
		ContactThreshold:  2,
	}
}

var saasOpportunities = []string{
	"Intelligent user onboarding personalization",
	"Predictive user behavior analytics",
	"Advanced churn prediction with intervention suggestions",
	"Automated technical documentation generation",
	"Smart feature usage analytics and recommendations",
	"AI-powered bug prediction and prevention",
}

// LoadRules reads a YAML rules file and overlays it on DefaultRules. Tables
// present in the file replace the defaults wholesale; absent ones are kept.
func LoadRules(path string) (*Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "profile: read rules %s", path)
	}

	var override Rules
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, eris.Wrap(err, "profile: parse rules")
	}

	if len(override.Tech) > 0 {
		rules.Tech = override.Tech
	}
	if len(override.Categories) > 0 {
		rules.Categories = override.Categories
	}
	if len(override.ContactPhrases) > 0 {
		rules.ContactPhrases = override.ContactPhrases
	}
	if len(override.ChatIndicators) > 0 {
		rules.ChatIndicators = override.ChatIndicators
	}
	if len(override.BlogIndicators) > 0 {
		rules.BlogIndicators = override.BlogIndicators
	}
	if len(override.CommerceIndicators) > 0 {
		rules.CommerceIndicators = override.CommerceIndicators
	}
	for cat, opps := range override.CategoryOpportunities {
		rules.CategoryOpportunities[cat] = opps
	}
	if len(override.ContentCategories) > 0 {
		rules.ContentCategories = override.ContentCategories
	}
	if override.SlowPageSecs > 0 {
		rules.SlowPageSecs = override.SlowPageSecs
	}
	if override.ContactThreshold > 0 {
		rules.ContactThreshold = override.ContactThreshold
	}
	return rules, nil
}
