package domain

import "time"

// EmailJob represents an email to be sent asynchronously
type EmailJob struct {
	ID        string    `json:"id"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	IsHTML    bool      `json:"is_html"`
	Retries   int       `json:"retries"`
	CreatedAt time.Time `json:"created_at"`
}
