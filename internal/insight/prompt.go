package insight

import (
	"fmt"
	"strings"

	"github.com/sells-group/outreach-cli/internal/model"
)

const contentLimit = 1000

const systemPrompt = `You are a technical freelance consultant who finds both technical optimization opportunities and business growth potential by analyzing company websites.

You combine technical excellence with business impact:
- Revenue optimization through technical improvements such as A/B testing and performance work
- Cost reduction through a modern stack, cloud solutions and API integrations
- Competitive advantage through advanced features, AI integration and custom algorithms
- Customer retention through analytics and personalization
- Market expansion through scalable architecture
- Process efficiency through automated workflows and system integration

Look for technical revenue leaks, technical competitive gaps, efficiency gaps, technical ROI and scaling barriers.

Avoid generic suggestions:
- "Add a contact form": propose specific conversion optimization with A/B testing instead
- "Improve SEO": propose technical SEO architecture improvements instead
- "Add AI chatbot": recommend specific AI use cases with ROI instead
- "Mobile optimization": propose a progressive web app with metrics instead

Every suggestion should state how it would be implemented, its quantifiable business impact, why it beats a generic solution and when results would show.`

const analysisPrompt = `You are analyzing %[1]s (%[2]s) for a consultant who needs SPECIFIC revenue opportunities and competitive gaps.

COMPANY CONTEXT:
- Company: %[1]s
- Industry: %[2]s
- Decision Maker: %[3]s, %[4]s
- Market: %[5]s
- Website: %[6]s

WEBSITE INTELLIGENCE:
- Page Title: %[7]s
- Meta Description: %[8]s
- Current Tech: %[9]s
- Contact Options: %[10]s
- Live Chat: %[11]s
- Content Strategy: %[12]s
- E-commerce: %[13]s
- Mobile Experience: %[14]s
- SEO Issues Found: %[15]d
- Performance: %.1[16]fs load time
- Technical Gaps: %[17]s
- Detected Opportunities: %[18]s

BUSINESS CONTENT ANALYSIS:
%[19]s

INDUSTRY-SPECIFIC BUSINESS INTELLIGENCE:
- Common revenue leaks in %[2]s: %[20]s
- Typical competitive gaps: %[21]s
- Scaling bottlenecks: %[22]s
- Efficiency opportunities: %[23]s

Identify technical opportunities that would make the owner think "this person really understands my business". Cover revenue leaks, competitive disadvantages, operational bottlenecks, scaling limitations and customer experience gaps. Be specific to their business model, focus on measurable impact and think like a business consultant rather than a web developer.

Return only JSON in this shape:
{
  "opportunities": ["Specific revenue opportunity unique to their business model", "Competitive advantage they could gain", "Operational efficiency that would save significant time or money"],
  "pain_points": ["Business-critical challenge affecting their bottom line", "Technical limitation preventing growth"],
  "recommendations": ["High-impact solution with clear ROI", "Strategic improvement addressing a core need"],
  "industry_trends": ["Market trend creating urgency for this business"],
  "competitive_gaps": ["Specific capability their competitors have"],
  "roi_potential": "High/Medium/Low with a dollar impact estimate",
  "implementation_complexity": "Low/Medium/High with a realistic timeline"
}`

func buildPrompt(profile *model.SiteProfile, p model.Prospect, ctx IndustryContext) string {
	return fmt.Sprintf(analysisPrompt,
		p.CompanyName,
		profile.BusinessCategory,
		p.FullName(),
		orNone(p.JobPosition),
		orNone(p.Country),
		profile.URL,
		orNone(profile.Title),
		orNone(profile.MetaDescription),
		joinOrNone(profile.TechStack),
		yesNo(profile.HasContactForm, "Contact form available", "No contact form, potential lead loss"),
		yesNo(profile.HasChatbot, "Chat widget present", "No live chat"),
		yesNo(profile.HasBlog, "Has blog/content", "No content marketing presence"),
		yesNo(profile.HasEcommerce, "E-commerce enabled", "No e-commerce functionality"),
		yesNo(profile.MobileResponsive, "Optimized", "Not mobile-optimized, losing mobile customers"),
		len(profile.SEOIssues),
		profile.PageLoadTime,
		joinOrNone(profile.TechGaps),
		joinOrNone(profile.AIOpportunities),
		truncate(profile.Content, contentLimit),
		joinOrNone(ctx.RevenueLeaks),
		joinOrNone(ctx.CompetitiveGaps),
		joinOrNone(ctx.ScalingBottlenecks),
		joinOrNone(ctx.EfficiencyGains),
	)
}

func yesNo(b bool, yes, no string) string {
	if b {
		return yes
	}
	return no
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None detected"
	}
	return strings.Join(items, "; ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
