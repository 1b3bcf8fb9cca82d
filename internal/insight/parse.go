package insight

import (
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"

	"github.com/sells-group/outreach-cli/internal/model"
)

// ErrUnparseable is returned when no parser could read the model response.
var ErrUnparseable = eris.New("insight: unparseable response")

// parser turns raw model text into an InsightSet or reports false so the
// next parser can try.
type parser func(text string) (*model.InsightSet, bool)

var parsers = []parser{
	parseWholeJSON,
	parseEmbeddedJSON,
	parseLines,
}

// parse runs the parser chain and normalizes the first result.
func parse(text string) (*model.InsightSet, error) {
	for _, p := range parsers {
		if set, ok := p(text); ok {
			set.Normalize()
			return set, nil
		}
	}
	return nil, ErrUnparseable
}

func parseWholeJSON(text string) (*model.InsightSet, bool) {
	return fromJSON(strings.TrimSpace(stripFences(text)))
}

func parseEmbeddedJSON(text string) (*model.InsightSet, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	return fromJSON(text[start : end+1])
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return text
}

func fromJSON(raw string) (*model.InsightSet, bool) {
	if !gjson.Valid(raw) {
		return nil, false
	}
	doc := gjson.Parse(raw)
	if !doc.IsObject() {
		return nil, false
	}
	return &model.InsightSet{
		Opportunities:            stringList(doc.Get("opportunities")),
		PainPoints:               stringList(doc.Get("pain_points")),
		Recommendations:          stringList(doc.Get("recommendations")),
		IndustryTrends:           stringList(doc.Get("industry_trends")),
		CompetitiveGaps:          stringList(doc.Get("competitive_gaps")),
		ROIPotential:             strings.TrimSpace(doc.Get("roi_potential").String()),
		ImplementationComplexity: strings.TrimSpace(doc.Get("implementation_complexity").String()),
	}, true
}

// stringList accepts an array of scalars or a single string.
func stringList(r gjson.Result) []string {
	out := []string{}
	switch {
	case r.IsArray():
		for _, item := range r.Array() {
			if s := strings.TrimSpace(item.String()); s != "" {
				out = append(out, s)
			}
		}
	case r.Type == gjson.String:
		if s := strings.TrimSpace(r.String()); s != "" {
			out = append(out, s)
		}
	}
	return out
}

type section int

const (
	sectionNone section = iota
	sectionOpportunities
	sectionPainPoints
	sectionRecommendations
	sectionTrends
	sectionGaps
)

// parseLines reads bulleted lists under loose section headings. It fails
// when no list item was found at all.
func parseLines(text string) (*model.InsightSet, bool) {
	set := &model.InsightSet{}
	current := sectionNone
	found := false

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)

		if item, ok := listItem(line); ok && !strings.HasSuffix(item, ":") {
			var dst *[]string
			switch current {
			case sectionOpportunities:
				dst = &set.Opportunities
			case sectionPainPoints:
				dst = &set.PainPoints
			case sectionRecommendations:
				dst = &set.Recommendations
			case sectionTrends:
				dst = &set.IndustryTrends
			case sectionGaps:
				dst = &set.CompetitiveGaps
			}
			if dst != nil && item != "" {
				*dst = append(*dst, item)
				found = true
			}
			continue
		}

		if key, value, ok := strings.Cut(lower, ":"); ok && strings.TrimSpace(value) != "" {
			original := strings.TrimSpace(line[strings.Index(line, ":")+1:])
			switch {
			case strings.Contains(key, "roi"):
				set.ROIPotential = original
				continue
			case strings.Contains(key, "complexity"):
				set.ImplementationComplexity = original
				continue
			}
		}

		switch {
		case strings.Contains(lower, "opportunit"):
			current = sectionOpportunities
		case strings.Contains(lower, "pain"), strings.Contains(lower, "challenge"):
			current = sectionPainPoints
		case strings.Contains(lower, "recommend"):
			current = sectionRecommendations
		case strings.Contains(lower, "trend"):
			current = sectionTrends
		case strings.Contains(lower, "competitive"), strings.Contains(lower, "gap"):
			current = sectionGaps
		}
	}
	return set, found
}

// listItem strips a leading bullet or number and reports whether the line
// was a list item.
func listItem(line string) (string, bool) {
	first := []rune(line)[0]
	if first != '-' && first != '*' && first != '•' && !unicode.IsDigit(first) {
		return "", false
	}
	item := strings.TrimLeftFunc(line, func(r rune) bool {
		return r == '-' || r == '*' || r == '•' || r == '.' || r == ')' || r == ' ' || unicode.IsDigit(r)
	})
	return strings.TrimSpace(strings.Trim(item, "*")), true
}
