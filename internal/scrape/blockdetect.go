package scrape

import (
	"strings"
)

// Challenge describes anti-bot protection seen on a fetched page.
type Challenge string

const (
	ChallengeNone       Challenge = ""
	ChallengeCloudflare Challenge = "cloudflare"
	ChallengeCaptcha    Challenge = "captcha"
	ChallengeJSShell    Challenge = "js_shell"
)

// smallPage is the body size under which captcha and script-shell markers
// count as a challenge rather than an embedded widget.
const smallPage = 5000

// DetectChallenge checks a fetched page for signs of bot protection.
func DetectChallenge(p *Page) Challenge {
	if p == nil {
		return ChallengeNone
	}

	if p.Header != nil {
		if p.Header.Get("cf-mitigated") != "" {
			return ChallengeCloudflare
		}
	}

	lower := strings.ToLower(string(p.Body))

	if strings.Contains(lower, "checking your browser") ||
		strings.Contains(lower, "cf-browser-verification") ||
		strings.Contains(lower, "cloudflare") && strings.Contains(lower, "challenge-platform") {
		return ChallengeCloudflare
	}

	if len(p.Body) < smallPage {
		if strings.Contains(lower, "captcha") {
			return ChallengeCaptcha
		}
		if strings.Contains(lower, "<noscript") && strings.Contains(lower, "enable javascript") {
			return ChallengeJSShell
		}
		if strings.Contains(lower, `meta http-equiv="refresh"`) {
			return ChallengeJSShell
		}
	}

	return ChallengeNone
}
