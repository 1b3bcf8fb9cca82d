package profile

import (
	"fmt"

	"github.com/sells-group/outreach-cli/internal/model"
)

// findings accumulates gaps and opportunities in rule order.
type findings struct {
	gaps []string
	opps []string
}

func (f *findings) gap(s ...string) { f.gaps = append(f.gaps, s...) }
func (f *findings) opp(s ...string) { f.opps = append(f.opps, s...) }

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// identifyOpportunities applies the gap and opportunity rules in order and
// stores deduplicated results on p.
func identifyOpportunities(p *model.SiteProfile, rules *Rules, markers []string) {
	var f findings

	if p.PageLoadTime > rules.SlowPageSecs {
		requests := p.Resources.Scripts + p.Resources.Stylesheets
		f.gap(
			fmt.Sprintf("Critical: Page load time of %.2fs causing estimated 20-30%% loss in conversions", p.PageLoadTime),
			fmt.Sprintf("Server response time exceeding Google's recommended threshold by %.2fs", p.PageLoadTime-2.5),
			fmt.Sprintf("Resource load efficiency at %d requests, recommended: <15", requests),
		)
		f.opp(
			"AI-powered performance optimization targeting 60-80% improvement",
			"Machine learning CDN optimization reducing TTFB by estimated 60-80%",
			"Intelligent code splitting with dynamic imports based on user behavior",
			"Automated critical CSS extraction and inline injection",
			"Smart image optimization with WebP conversion and lazy loading",
			"Predictive prefetching based on user navigation patterns",
		)
		if p.Resources.Scripts > 10 {
			f.gap(fmt.Sprintf("JavaScript bundling inefficiency: %d separate requests", p.Resources.Scripts))
			f.opp("AI-driven JavaScript bundle optimization and code splitting")
		}
		if p.Resources.Images > 15 {
			f.gap(fmt.Sprintf("High image load impact: %d unoptimized images", p.Resources.Images))
			f.opp("Automated image optimization and format conversion pipeline")
		}
		if !p.HasTech("Cloudflare") {
			f.gap("Missing CDN integration causing high TTFB")
			f.opp("Global CDN implementation with ML-based edge caching")
		}
	}

	if !p.MobileResponsive {
		f.gap(
			"Non-responsive design limiting mobile audience reach",
			"Suboptimal mobile user experience",
			"Missing mobile-first approach",
		)
		f.opp(
			"AI-driven responsive design optimization",
			"Machine learning-based mobile UX enhancement",
			"Automated mobile performance optimization",
		)
	}

	if !p.HasAnyTech("React", "Vue.js", "Angular", "Next.js", "Svelte") {
		f.gap(
			"Legacy frontend architecture limiting user experience",
			"Missing modern JavaScript framework implementation",
			"Limited interactive capabilities",
		)
		f.opp(
			"AI-powered frontend modernization with React/Next.js",
			"Intelligent component optimization system",
			"Automated UI/UX enhancement pipeline",
		)
	}

	if p.HasTech("jQuery") {
		f.gap("Reliance on legacy jQuery limiting modern capabilities")
		f.opp("Smart jQuery to modern framework migration system")
	}

	if !p.HasAnyTech("Cloudflare", "AWS", "Azure") {
		f.gap(
			"Limited cloud infrastructure utilization",
			"Potential scalability limitations",
			"Missing edge computing capabilities",
		)
		f.opp(
			"AI-powered cloud infrastructure optimization",
			"Smart scaling system with predictive analytics",
			"Automated cloud resource management",
		)
	}

	if !p.HasAnyTech("Google Analytics", "Segment", "Hotjar") {
		f.gap(
			"Limited data analytics capabilities",
			"Missing user behavior tracking",
			"Incomplete conversion tracking",
		)
		f.opp(
			"Advanced analytics implementation with ML insights",
			"AI-powered user behavior analysis system",
			"Predictive analytics for conversion optimization",
		)
	}

	if !p.HasAnyTech("Cloudflare", "Auth0", "reCAPTCHA") {
		f.gap(
			"Limited security infrastructure",
			"Missing advanced authentication system",
			"Potential compliance gaps",
		)
		f.opp(
			"AI-powered security monitoring and threat detection",
			"Automated compliance management system",
			"Smart authentication and authorization platform",
		)
	}

	if !p.HasChatbot {
		f.gap(
			"Limited automated customer support",
			"Missing real-time assistance capability",
			"Manual FAQ management",
		)
		f.opp(
			"Advanced NLP-powered chatbot implementation",
			"Automated knowledge base generation and management",
			"Predictive customer support system",
		)
	}

	if !p.HasContactForm {
		f.gap(
			"Limited lead capture capabilities",
			"Manual contact management process",
			"Missing automated follow-up system",
		)
		f.opp(
			"AI-powered lead qualification and routing",
			"Smart contact form with real-time validation",
			"Automated follow-up and engagement system",
		)
	}

	if !p.HasAnyTech("Salesforce", "HubSpot", "Pipedrive") {
		f.gap(
			"Limited CRM integration",
			"Manual lead management process",
			"Missing marketing automation",
		)
		f.opp(
			"AI-powered CRM integration and automation",
			"Smart lead scoring and management system",
			"Automated marketing workflow platform",
		)
	}

	if len(p.SEOIssues) > 0 {
		f.gap("Suboptimal search engine visibility")
		f.opp(
			"AI-powered SEO optimization and content strategy",
			"Automated meta tag and content optimization",
		)
	}

	f.opp(rules.CategoryOpportunities[p.BusinessCategory]...)

	f.opp("Process automation opportunities")

	if p.HasContactForm && !p.HasChatbot {
		f.opp("Intelligent lead routing and prioritization")
	}

	if p.HasBlog {
		f.opp("AI-powered content optimization and generation")
	} else if containsString(rules.ContentCategories, p.BusinessCategory) {
		f.gap("Missing content marketing strategy")
		f.opp("Automated thought leadership content creation")
	}

	for _, fw := range []string{"React", "Next.js", "Vue.js"} {
		if p.HasTech(fw) {
			f.gap(fmt.Sprintf("Current %s implementation could be optimized for performance", fw))
			f.opp(fmt.Sprintf("AI-powered %s component optimization and code splitting", fw))
		}
	}

	f.gap(markers...)

	p.TechGaps = dedupe(f.gaps)
	p.AIOpportunities = dedupe(f.opps)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
