package model

import "time"

// Step names a completed stage of per-prospect processing.
type Step string

const (
	StepWebsiteAnalysis  Step = "website_analysis"
	StepAIAnalysis       Step = "ai_analysis"
	StepPersonalization  Step = "personalization"
	StepEmailGeneration  Step = "email_generation"
	StepEmailValidation  Step = "email_validation"
	StepEmailSent        Step = "email_sent"
	StepTestModeComplete Step = "test_mode_complete"
)

// AllSteps lists steps in pipeline order.
func AllSteps() []Step {
	return []Step{
		StepWebsiteAnalysis,
		StepAIAnalysis,
		StepPersonalization,
		StepEmailGeneration,
		StepEmailValidation,
		StepEmailSent,
		StepTestModeComplete,
	}
}

// ProcessingResult records how far one prospect got through the pipeline.
type ProcessingResult struct {
	Prospect            Prospect             `json:"prospect"`
	Timestamp           time.Time            `json:"timestamp"`
	Success             bool                 `json:"success"`
	StepsCompleted      []Step               `json:"steps_completed"`
	Errors              []string             `json:"errors"`
	WebsiteAnalysis     map[string]any       `json:"website_analysis,omitempty"`
	AIInsights          map[string]any       `json:"ai_insights,omitempty"`
	PersonalizationData *PersonalizationData `json:"personalization_data,omitempty"`
	EmailContent        *DraftSummary        `json:"email_content,omitempty"`
	EmailValidation     *DraftValidation     `json:"email_validation,omitempty"`
	DeliveryResult      *DeliveryOutcome     `json:"delivery_result,omitempty"`
}

// NewProcessingResult starts an empty result for p.
func NewProcessingResult(p Prospect, now time.Time) *ProcessingResult {
	return &ProcessingResult{
		Prospect:       p,
		Timestamp:      now,
		StepsCompleted: []Step{},
		Errors:         []string{},
	}
}

// Complete appends a finished step.
func (r *ProcessingResult) Complete(s Step) {
	r.StepsCompleted = append(r.StepsCompleted, s)
}

// Fail appends an error message.
func (r *ProcessingResult) Fail(msg string) {
	r.Errors = append(r.Errors, msg)
}

// Completed reports whether s was reached.
func (r *ProcessingResult) Completed(s Step) bool {
	for _, done := range r.StepsCompleted {
		if done == s {
			return true
		}
	}
	return false
}

// DraftSummary is the slice of a Draft kept in results.
type DraftSummary struct {
	Subject              string  `json:"subject"`
	BodyPreview          string  `json:"body_preview"`
	PersonalizationScore float64 `json:"personalization_score"`
	WordCount            int     `json:"word_count"`
}

const bodyPreviewLen = 150

// Summarize builds a DraftSummary with a truncated body preview.
func (d *Draft) Summarize() *DraftSummary {
	preview := d.Body
	if r := []rune(preview); len(r) > bodyPreviewLen {
		preview = string(r[:bodyPreviewLen]) + "..."
	}
	return &DraftSummary{
		Subject:              d.Subject,
		BodyPreview:          preview,
		PersonalizationScore: d.PersonalizationScore,
		WordCount:            d.WordCount(),
	}
}
