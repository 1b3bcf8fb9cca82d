package profile

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sells-group/outreach-cli/internal/model"
)

const (
	maxHeadingLen = 200
	maxContentLen = 2000
)

var (
	reSpace       = regexp.MustCompile(`\s+`)
	reChatClass   = regexp.MustCompile(`(?i)chat|support|help-widget`)
	reBlogLink    = regexp.MustCompile(`(?i)/blog|/news|/articles|/resources`)
	rePaymentSrc  = regexp.MustCompile(`(?i)stripe|paypal|shopify|woocommerce`)
	reNewsletter  = regexp.MustCompile(`(?i)newsletter|subscribe|signup|lead`)
	reTestimonial = regexp.MustCompile(`(?i)testimonial|review|case-study`)
	reIntegration = regexp.MustCompile(`(?i)integration|partner|tool`)
)

// page is a parsed document plus the text views the checks share.
type page struct {
	doc       *goquery.Document
	rawLower  string
	textLower string
}

func collapse(s string) string {
	return strings.TrimSpace(reSpace.ReplaceAllString(s, " "))
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// extractBasics fills title, meta description, headings and the content
// excerpt. The excerpt is read from a clone with script, style, meta and
// link nodes removed so the document itself stays intact.
func extractBasics(pg *page, p *model.SiteProfile) {
	doc := pg.doc
	p.Title = strings.TrimSpace(doc.Find("title").First().Text())
	if desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		p.MetaDescription = strings.TrimSpace(desc)
	}

	doc.Find("h1, h2, h3, h4").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text != "" && len([]rune(text)) < maxHeadingLen {
			p.Headings = append(p.Headings, text)
		}
	})

	p.MobileResponsive = doc.Find(`meta[name="viewport"]`).Length() > 0
	p.Resources = model.Resources{
		Scripts:     doc.Find("script[src]").Length(),
		Stylesheets: doc.Find(`link[rel="stylesheet"]`).Length(),
		Images:      doc.Find("img").Length(),
	}

	clone := doc.Clone()
	clone.Find("script, style, meta, link").Remove()
	text := collapse(clone.Text())
	pg.textLower = strings.ToLower(text)
	p.Content = truncateRunes(text, maxContentLen)
}

// detectTech records technology labels in first-match order.
func detectTech(pg *page, rules *Rules, p *model.SiteProfile) {
	add := func(label string) {
		if !p.HasTech(label) {
			p.TechStack = append(p.TechStack, label)
		}
	}

	for _, rule := range rules.Tech {
		for _, kw := range rule.Keywords {
			if strings.Contains(pg.rawLower, strings.ToLower(kw)) {
				add(rule.Label)
				break
			}
		}
	}

	pg.doc.Find("script[src]").Each(func(_ int, s *goquery.Selection) {
		src := strings.ToLower(s.AttrOr("src", ""))
		switch {
		case strings.Contains(src, "react"):
			add("React")
		case strings.Contains(src, "angular"):
			add("Angular")
		case strings.Contains(src, "vue"):
			add("Vue.js")
		}
	})
}

// classify scores each category by keyword occurrences in the excerpt. The
// first category with the highest non-zero score wins.
func classify(content string, rules *Rules) string {
	lower := strings.ToLower(content)
	best, bestScore := fallbackCategory, 0
	for _, cat := range rules.Categories {
		score := 0
		for _, kw := range cat.Keywords {
			score += strings.Count(lower, strings.ToLower(kw))
		}
		if score > bestScore {
			best, bestScore = cat.Name, score
		}
	}
	return best
}

func checkSEO(pg *page, p *model.SiteProfile) {
	switch n := len([]rune(p.Title)); {
	case n == 0:
		p.SEOIssues = append(p.SEOIssues, "Missing title tag")
	case n < 30 || n > 60:
		p.SEOIssues = append(p.SEOIssues, "Title tag length not optimal (30-60 chars)")
	}

	switch n := len([]rune(p.MetaDescription)); {
	case n == 0:
		p.SEOIssues = append(p.SEOIssues, "Missing meta description")
	case n < 120 || n > 160:
		p.SEOIssues = append(p.SEOIssues, "Meta description length not optimal (120-160 chars)")
	}

	switch h1 := pg.doc.Find("h1").Length(); {
	case h1 == 0:
		p.SEOIssues = append(p.SEOIssues, "Missing H1 tag")
	case h1 > 1:
		p.SEOIssues = append(p.SEOIssues, "Multiple H1 tags found")
	}

	missingAlt := pg.doc.Find("img").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.TrimSpace(s.AttrOr("alt", "")) == ""
	}).Length()
	if missingAlt > 0 {
		p.SEOIssues = append(p.SEOIssues, fmt.Sprintf("%d images missing alt text", missingAlt))
	}
}

func checkAccessibility(pg *page, p *model.SiteProfile) {
	if pg.doc.Find(`a[href^="#"]`).Length() == 0 {
		p.AccessibilityIssues = append(p.AccessibilityIssues, "No skip navigation links found")
	}

	unlabeled := pg.doc.Find("form").Find("input, textarea, select").FilterFunction(func(_ int, s *goquery.Selection) bool {
		switch strings.ToLower(s.AttrOr("type", "")) {
		case "hidden", "submit", "button":
			return false
		}
		return s.AttrOr("aria-label", "") == "" && s.AttrOr("id", "") == ""
	})
	if unlabeled.Length() > 0 {
		p.AccessibilityIssues = append(p.AccessibilityIssues, "Form inputs without proper labels")
	}
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func attrMatches(s *goquery.Selection, attr string, re *regexp.Regexp) bool {
	v, ok := s.Attr(attr)
	return ok && re.MatchString(v)
}

func anyMatch(sel *goquery.Selection, attr string, re *regexp.Regexp) bool {
	return sel.FilterFunction(func(_ int, s *goquery.Selection) bool {
		return attrMatches(s, attr, re)
	}).Length() > 0
}

// detectFeatures sets the feature flags and appends marker gaps.
func detectFeatures(pg *page, rules *Rules, p *model.SiteProfile) {
	doc := pg.doc
	contentLower := strings.ToLower(p.Content)

	p.HasContactForm = contactScore(pg, rules) >= rules.ContactThreshold

	if containsAny(pg.textLower, rules.ChatIndicators) &&
		anyMatch(doc.Find("div, iframe, script"), "class", reChatClass) {
		p.HasChatbot = true
	}

	if anyMatch(doc.Find("a"), "href", reBlogLink) || containsAny(contentLower, rules.BlogIndicators) {
		p.HasBlog = true
	}

	if anyMatch(doc.Find("script"), "src", rePaymentSrc) || containsAny(contentLower, rules.CommerceIndicators) {
		p.HasEcommerce = true
	}
}

// markerGaps reports newsletter, testimonial and integration markers.
func markerGaps(pg *page) []string {
	doc := pg.doc
	var gaps []string
	newsletter := doc.Find("form, div, section")
	if anyMatch(newsletter, "class", reNewsletter) || anyMatch(newsletter, "id", reNewsletter) {
		gaps = append(gaps, "Basic newsletter system - could be enhanced with AI personalization")
	}
	if anyMatch(doc.Find("div, section"), "class", reTestimonial) {
		gaps = append(gaps, "Manual testimonial management - opportunity for automated social proof")
	}
	integration := doc.Find("img, div, a")
	if anyMatch(integration, "src", reIntegration) || anyMatch(integration, "class", reIntegration) {
		gaps = append(gaps, "Manual integration management - opportunity for AI-powered workflow automation")
	}
	return gaps
}
