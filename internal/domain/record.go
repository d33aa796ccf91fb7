package domain

import "time"

// Record is the metadata persisted after a successful upload. It is
// immutable once created; creation triggers exactly one notification
// attempt.
type Record struct {
	ID        string
	Name      string
	URL       string
	Tags      string
	Email     string
	CreatedAt time.Time
}

// Validate checks the required fields before persistence.
func (r Record) Validate() error {
	if r.Name == "" {
		return NewValidationError("record name is required")
	}
	if r.Email == "" {
		return NewValidationError("Email is required to send notification")
	}
	return nil
}
