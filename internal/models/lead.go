package models

import "time"

// Lead is a consultation request submitted through the contact form.
type Lead struct {
	ID          string
	Name        string
	Phone       string
	Area        string
	Description string
	CreatedAt   time.Time
}
