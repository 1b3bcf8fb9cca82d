package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewProspect_Normalizes(t *testing.T) {
	t.Parallel()

	p := NewProspect(ProspectFields{
		Email:       "  Ann@B.COM ",
		FirstName:   "ann",
		LastName:    "lee",
		CompanyName: " Acme ",
		CompanyURL:  "acme.test/",
	})

	assert.Equal(t, "ann@b.com", p.Email)
	assert.Equal(t, "Ann", p.FirstName)
	assert.Equal(t, "Lee", p.LastName)
	assert.Equal(t, "Acme", p.CompanyName)
	assert.Equal(t, "https://acme.test", p.CompanyURL)
	assert.True(t, p.IsValid())
	assert.Equal(t, "Ann Lee", p.FullName())
}

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"acme.test", "https://acme.test"},
		{"http://acme.test/", "http://acme.test"},
		{"HTTPS://acme.test", "HTTPS://acme.test"},
		{"  ", ""},
		{"acme.test/about/", "https://acme.test/about"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NormalizeURL(tt.in))
		})
	}
}

func TestProspect_IsValid(t *testing.T) {
	t.Parallel()

	base := ProspectFields{
		Email:       "a@b.com",
		FirstName:   "Ann",
		LastName:    "Lee",
		CompanyName: "Acme",
		CompanyURL:  "acme.test",
	}

	tests := []struct {
		name   string
		mutate func(*ProspectFields)
		want   bool
	}{
		{"valid", func(*ProspectFields) {}, true},
		{"missing email", func(f *ProspectFields) { f.Email = " " }, false},
		{"bad email", func(f *ProspectFields) { f.Email = "not-an-email" }, false},
		{"short tld", func(f *ProspectFields) { f.Email = "a@b.c" }, false},
		{"missing first", func(f *ProspectFields) { f.FirstName = "" }, false},
		{"missing last", func(f *ProspectFields) { f.LastName = "" }, false},
		{"missing company", func(f *ProspectFields) { f.CompanyName = "" }, false},
		{"missing url", func(f *ProspectFields) { f.CompanyURL = "" }, false},
		{"url with space", func(f *ProspectFields) { f.CompanyURL = "acme test.com" }, false},
		{"optional fields empty", func(f *ProspectFields) { f.Country = ""; f.LinkedIn = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := base
			tt.mutate(&f)
			assert.Equal(t, tt.want, NewProspect(f).IsValid())
		})
	}
}

func TestInsightSet_Normalize(t *testing.T) {
	t.Parallel()

	s := InsightSet{Opportunities: []string{"x"}}
	s.Normalize()
	assert.NotNil(t, s.PainPoints)
	assert.NotNil(t, s.CompetitiveGaps)
	assert.Equal(t, "Medium", s.ROIPotential)
	assert.Equal(t, "Medium", s.ImplementationComplexity)
	assert.Equal(t, []string{"x"}, s.Opportunities)
}

func TestDraft_Summarize(t *testing.T) {
	t.Parallel()

	body := ""
	for i := 0; i < 40; i++ {
		body += "word "
	}
	d := Draft{Subject: "Hello", Body: body, PersonalizationScore: 0.5}
	s := d.Summarize()
	assert.Equal(t, 40, s.WordCount)
	assert.Len(t, []rune(s.BodyPreview), 153)
	assert.Equal(t, "Hello", s.Subject)
}

func TestProcessingResult_Steps(t *testing.T) {
	t.Parallel()

	r := NewProcessingResult(Prospect{Email: "a@b.com"}, time.Now())
	assert.Empty(t, r.StepsCompleted)
	r.Complete(StepWebsiteAnalysis)
	r.Fail("boom")
	assert.True(t, r.Completed(StepWebsiteAnalysis))
	assert.False(t, r.Completed(StepAIAnalysis))
	assert.Equal(t, []string{"boom"}, r.Errors)
	assert.Len(t, AllSteps(), 7)
}

func TestSiteProfile_HasTech(t *testing.T) {
	t.Parallel()

	p := NewSiteProfile("https://acme.test")
	p.TechStack = append(p.TechStack, "React", "Stripe")
	assert.True(t, p.HasTech("React"))
	assert.True(t, p.HasAnyTech("Vue.js", "Stripe"))
	assert.False(t, p.HasAnyTech("Angular"))
	assert.NotNil(t, p.SEOIssues)
}
