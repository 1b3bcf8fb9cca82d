package model

import "time"

// DeliveryOutcome is the recorded result of one attempted or simulated send.
type DeliveryOutcome struct {
	Timestamp      time.Time `json:"timestamp" csv:"timestamp"`
	RecipientEmail string    `json:"recipient_email" csv:"recipient_email"`
	Subject        string    `json:"subject" csv:"subject"`
	Success        bool      `json:"success" csv:"success"`
	ErrorMessage   string    `json:"error_message,omitempty" csv:"error_message"`
	DeliveryTimeMS int64     `json:"delivery_time_ms" csv:"delivery_time_ms"`
	SMTPResponse   string    `json:"smtp_response,omitempty" csv:"smtp_response"`
}
