package models

import "time"

// SMS message types
const (
	SMSTypeReminder     = "rent_reminder"
	SMSTypeVerification = "verification_result"
)

// SMSLog is one line of the outbound SMS audit trail
type SMSLog struct {
	ID           int       `json:"id"`
	Phone        string    `json:"phone"`
	Message      string    `json:"message"`
	MessageType  string    `json:"message_type"`
	TenantID     int       `json:"tenant_id,omitempty"`
	Status       string    `json:"status"` // sent or failed
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
