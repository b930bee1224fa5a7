// Package jobs manages open positions. Each job carries a human-facing job
// code assigned by a database sequence starting at 1000; inbound email
// applications reference jobs by that code.
package jobs

import "time"

// Job statuses.
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Job is an open position at a client.
type Job struct {
	ID           string    `json:"id"`
	JobCode      int64     `json:"jobCode"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Requirements string    `json:"requirements,omitempty"`
	ClientName   string    `json:"clientName,omitempty"`
	Location     string    `json:"location,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
