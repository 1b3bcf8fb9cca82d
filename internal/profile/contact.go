package profile

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	reEmailish     = regexp.MustCompile(`(?i)email`)
	reContact      = regexp.MustCompile(`(?i)contact`)
	reContactHref  = regexp.MustCompile(`(?i)#contact|/contact|contact\.html`)
	reContactText  = regexp.MustCompile(`(?i)^contact$|contact us|get in touch`)
	reMailto       = regexp.MustCompile(`(?i)^mailto:`)
	rePhone        = regexp.MustCompile(`(\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	reBooking      = regexp.MustCompile(`(?i)cal\.com|calendly\.com|acuityscheduling|bookeo|setmore`)
	reFormService  = regexp.MustCompile(`(?i)typeform|googleforms|formstack|jotform`)
	reSocial       = regexp.MustCompile(`(?i)linkedin\.com|twitter\.com|facebook\.com`)
	reChatProvider = regexp.MustCompile(`(?i)intercom|zendesk|drift|crisp|livechat`)
)

// contactScore sums the weighted contact signals found on the page.
func contactScore(pg *page, rules *Rules) float64 {
	doc := pg.doc
	score := 0.0

	emailInputs := doc.Find("form input").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.EqualFold(s.AttrOr("type", ""), "email") ||
			attrMatches(s, "name", reEmailish) ||
			attrMatches(s, "placeholder", reEmailish)
	})
	if emailInputs.Length() > 0 {
		score += 2
	}

	sections := doc.Find("div, section, main")
	if anyMatch(sections, "id", reContact) || anyMatch(sections, "class", reContact) {
		score++
	}

	links := doc.Find("a")
	navText := links.FilterFunction(func(_ int, s *goquery.Selection) bool {
		return reContactText.MatchString(strings.TrimSpace(s.Text()))
	}).Length() > 0
	if anyMatch(links, "href", reContactHref) || navText {
		score++
	}

	if anyMatch(links, "href", reMailto) {
		score++
	}

	if rePhone.MatchString(pg.textLower) {
		score++
	}

	if anyMatch(links, "href", reBooking) {
		score++
	}

	if anyMatch(doc.Find("iframe, embed"), "src", reFormService) {
		score++
	}

	if anyMatch(links, "href", reSocial) {
		score += 0.5
	}

	if anyMatch(doc.Find("div, iframe"), "class", reChatProvider) || anyMatch(doc.Find("script"), "src", reChatProvider) {
		score++
	}

	hits := 0
	for _, phrase := range rules.ContactPhrases {
		if strings.Contains(pg.textLower, phrase) {
			hits++
		}
	}
	if hits >= 2 {
		score++
	}

	return score
}
