package model

// SiteProfile is a heuristic snapshot of a prospect's website. It is built
// fresh for every profiling call and never cached.
type SiteProfile struct {
	URL                 string    `json:"url"`
	FinalURL            string    `json:"final_url,omitempty"`
	StatusCode          int       `json:"status_code,omitempty"`
	Title               string    `json:"title"`
	MetaDescription     string    `json:"meta_description"`
	Headings            []string  `json:"headings"`
	TechStack           []string  `json:"tech_stack"`
	Content             string    `json:"content"`
	PageLoadTime        float64   `json:"page_load_time"`
	HasContactForm      bool      `json:"has_contact_form"`
	HasChatbot          bool      `json:"has_chatbot"`
	HasBlog             bool      `json:"has_blog"`
	HasEcommerce        bool      `json:"has_ecommerce"`
	MobileResponsive    bool      `json:"mobile_responsive"`
	BusinessCategory    string    `json:"business_category"`
	SEOIssues           []string  `json:"seo_issues"`
	AccessibilityIssues []string  `json:"accessibility_issues"`
	TechGaps            []string  `json:"tech_gaps"`
	AIOpportunities     []string  `json:"ai_opportunities"`
	Resources           Resources `json:"resources"`
	Challenge           string    `json:"challenge,omitempty"`
}

// Resources counts the static assets referenced by a page.
type Resources struct {
	Scripts     int `json:"scripts"`
	Stylesheets int `json:"stylesheets"`
	Images      int `json:"images"`
}

// NewSiteProfile returns a profile with every list initialized.
func NewSiteProfile(url string) *SiteProfile {
	return &SiteProfile{
		URL:                 url,
		Headings:            []string{},
		TechStack:           []string{},
		SEOIssues:           []string{},
		AccessibilityIssues: []string{},
		TechGaps:            []string{},
		AIOpportunities:     []string{},
	}
}

// HasTech reports whether label was detected on the page.
func (p *SiteProfile) HasTech(label string) bool {
	for _, t := range p.TechStack {
		if t == label {
			return true
		}
	}
	return false
}

// HasAnyTech reports whether any of labels was detected.
func (p *SiteProfile) HasAnyTech(labels ...string) bool {
	for _, l := range labels {
		if p.HasTech(l) {
			return true
		}
	}
	return false
}
