package compose

import (
	"fmt"
	"strings"

	"github.com/sells-group/outreach-cli/internal/model"
)

const systemPromptTmpl = `You are %[1]s, a freelance business technology consultant who finds revenue opportunities and competitive advantages through technology.

You analyze infrastructure, code and systems and make specific technical recommendations backed by performance metrics, balancing modern implementation with business value.

Email writing rules:
1. Hook with a technical insight about their current setup.
2. Describe ONE specific solution and how it would be implemented.
3. Reference the relevant technologies and methods.
4. Include measurable metrics from similar work.
5. End with an invitation to a technical discussion.

Tone: %[2]s (%[3]s, %[4]s language, %[5]s approach)
Length: 120-180 words maximum

Avoid generic compliments, lists of improvements, sounding like every other web developer and being pushy. Write as a consultant who happened to analyze their online presence.`

const userPromptTmpl = `Create a compelling business outreach email from %[1]s to %[2]s %[3]s (%[4]s at %[5]s).

CRITICAL BUSINESS INSIGHTS DISCOVERED:
Top opportunity: %[6]s
Business impact: %[7]s
Key challenge: %[8]s
Competitive gap: %[9]s
Urgency: %[10]s
Talking points: %[11]s

EMAIL FOCUS:
Area: %[12]s
Approach: %[13]s
Value proposition: %[14]s
Technologies: %[15]s

SPECIFIC REQUIREMENTS:
- Length: 120-180 words maximum
- Start with "Hi %[2]s,"
- Open with a specific insight about their business or website
- Focus on business impact, not technical features
- Mention ONE compelling opportunity clearly
- End with a consultative invitation to discuss
- Sign off with "Best regards,\n%[1]s"
- Do not mention AI chatbots unless directly relevant

Return only JSON:
{
  "subject": "Specific insight about %[5]s (under 60 characters)",
  "body": "Hi %[2]s,\n\n[Main email content]\n\n[Call to action question]\n\nBest regards,\n%[1]s",
  "cta": "Consultative invitation to discuss further"
}`

const shortenPromptTmpl = `Shorten this email to approximately %d words while keeping all key personalized insights, a professional tone, a clear value proposition and the call to action.

Original email (%d words):
%s

Return only the shortened email body.`

const subjectsPromptTmpl = `Generate %d compelling email subject lines for outreach to:
- %s, %s at %s
- Primary opportunity: %s
- Key pain point: %s

Requirements: under 60 characters, specific to their business, professional but intriguing, not salesy.

Return a JSON array: ["subject1", "subject2", ...]`

func (c *Composer) systemPrompt(tone model.Tone) string {
	tp := c.templates.tone(tone)
	return fmt.Sprintf(systemPromptTmpl, c.sender, tp.Personality, tp.Formality, tp.Language, tp.Approach)
}

func (c *Composer) userPrompt(p model.Prospect, s *model.InsightSet, pd *model.PersonalizationData) string {
	focus := c.selectFocus(s.Opportunities)

	opp, pain := pd.PrimaryOpportunity, pd.PrimaryPainPoint
	if len(s.Opportunities) > 0 {
		opp = s.Opportunities[0]
	}
	if len(s.PainPoints) > 0 {
		pain = s.PainPoints[0]
	}
	gap := "industry positioning"
	if len(s.CompetitiveGaps) > 0 {
		gap = s.CompetitiveGaps[0]
	}

	return fmt.Sprintf(userPromptTmpl,
		c.sender,
		p.FirstName,
		p.LastName,
		orDefault(p.JobPosition, "decision maker"),
		p.CompanyName,
		opp,
		s.ROIPotential,
		pain,
		gap,
		orDefault(pd.UrgencyLevel, "medium"),
		strings.Join(pd.TalkingPoints, "; "),
		focus.Area,
		focus.Approach,
		focus.ValueProp,
		strings.Join(focus.Technologies, ", "),
	)
}

// Categorize sorts opportunities into the email focus categories.
func Categorize(opps []string) map[string][]string {
	out := map[string][]string{}
	for _, o := range opps {
		lower := strings.ToLower(o)
		category := defaultFocus
		for _, r := range focusRules {
			if containsAny(lower, r.keywords) {
				category = r.category
				break
			}
		}
		out[category] = append(out[category], o)
	}
	return out
}

// FocusCategory picks the category with the most opportunities, ties going
// to the earlier category. No opportunities selects performance.
func FocusCategory(opps []string) string {
	cats := Categorize(opps)
	best := ""
	for _, name := range focusOrder {
		if len(cats[name]) > 0 && (best == "" || len(cats[name]) > len(cats[best])) {
			best = name
		}
	}
	if best == "" {
		return defaultFocus
	}
	return best
}

// selectFocus returns the primary focus, borrowing up to two technologies
// from the runner-up category.
func (c *Composer) selectFocus(opps []string) Focus {
	primary := FocusCategory(opps)
	f := c.templates.Focus[primary]
	f.Technologies = append([]string(nil), f.Technologies...)

	cats := Categorize(opps)
	second := ""
	for _, name := range focusOrder {
		if name == primary || len(cats[name]) == 0 {
			continue
		}
		if second == "" || len(cats[name]) > len(cats[second]) {
			second = name
		}
	}
	if second == "" {
		return f
	}

	extra := c.templates.Focus[second]
	f.Approach += ", integrated with " + extra.Area
	added := 0
	for _, tech := range extra.Technologies {
		if added == 2 {
			break
		}
		if !containsString(f.Technologies, tech) {
			f.Technologies = append(f.Technologies, tech)
			added++
		}
	}
	return f
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func containsString(items []string, s string) bool {
	for _, it := range items {
		if it == s {
			return true
		}
	}
	return false
}
