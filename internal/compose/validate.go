package compose

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/sells-group/outreach-cli/internal/model"
)

const (
	minSubjectLen  = 10
	maxSubjectLen  = 60
	minWords       = 50
	maxWords       = 250
	minScore       = 0.3
	minCTALen      = 10
	subjectPoints  = 0.2
	lengthPoints   = 0.3
	personalPoints = 0.3
	ctaPoints      = 0.2
)

// Validate runs the advisory quality checks on a draft. Each check fails
// independently and adds its points only when it passes.
func Validate(d *model.Draft) model.DraftValidation {
	v := model.DraftValidation{Issues: []string{}, Suggestions: []string{}}

	switch n := utf8.RuneCountInString(d.Subject); {
	case n > maxSubjectLen:
		v.Issues = append(v.Issues, "Subject line too long (>60 characters)")
	case n < minSubjectLen:
		v.Issues = append(v.Issues, "Subject line too short (<10 characters)")
	default:
		v.Score += subjectPoints
	}

	switch n := d.WordCount(); {
	case n > maxWords:
		v.Issues = append(v.Issues, fmt.Sprintf("Email too long (%d words)", n))
	case n < minWords:
		v.Issues = append(v.Issues, fmt.Sprintf("Email too short (%d words)", n))
	default:
		v.Score += lengthPoints
	}

	if d.PersonalizationScore < minScore {
		v.Issues = append(v.Issues, "Low personalization score")
		v.Suggestions = append(v.Suggestions, "Add more specific business insights")
	} else {
		v.Score += personalPoints
	}

	if utf8.RuneCountInString(d.CallToAction) < minCTALen {
		v.Issues = append(v.Issues, "Weak or missing call to action")
	} else {
		v.Score += ctaPoints
	}

	v.IsValid = len(v.Issues) == 0
	v.Score = math.Min(v.Score, 1.0)
	return v
}
