package scrape

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectChallenge(t *testing.T) {
	tests := []struct {
		name   string
		page   *Page
		expect Challenge
	}{
		{"nil page", nil, ChallengeNone},
		{
			"cf-mitigated header",
			&Page{Header: http.Header{"Cf-Mitigated": {"challenge"}}},
			ChallengeCloudflare,
		},
		{
			"checking your browser",
			&Page{Body: []byte("<html><body>Checking your browser before accessing</body></html>")},
			ChallengeCloudflare,
		},
		{
			"small captcha page",
			&Page{Body: []byte("<html><body>Please complete the reCAPTCHA to continue</body></html>")},
			ChallengeCaptcha,
		},
		{
			"large page with captcha widget",
			&Page{Body: []byte("<html><body>" + strings.Repeat("<p>content</p>", 600) + "captcha</body></html>")},
			ChallengeNone,
		},
		{
			"javascript shell",
			&Page{Body: []byte(`<html><noscript>Please enable JavaScript</noscript></html>`)},
			ChallengeJSShell,
		},
		{
			"normal page",
			&Page{Body: []byte(samplePage), Header: http.Header{}},
			ChallengeNone,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, DetectChallenge(tt.page))
		})
	}
}
