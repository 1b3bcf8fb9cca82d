package model

import "strings"

// Tone selects the register of a drafted email.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneFriendly     Tone = "friendly"
	ToneDirect       Tone = "direct"
)

// Draft is a generated subject/body/call-to-action triple.
type Draft struct {
	Subject              string  `json:"subject"`
	Body                 string  `json:"body"`
	CallToAction         string  `json:"call_to_action"`
	PersonalizationScore float64 `json:"personalization_score"`
	Tone                 Tone    `json:"tone"`
}

// WordCount counts whitespace-separated words in the body.
func (d *Draft) WordCount() int {
	return len(strings.Fields(d.Body))
}

// DraftValidation is the advisory quality report for a draft.
type DraftValidation struct {
	IsValid     bool     `json:"is_valid"`
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
	Score       float64  `json:"score"`
}
