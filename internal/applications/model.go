// Package applications links candidates to jobs. A candidate can hold at most
// one application per job; the pair is unique in the store and a duplicate
// submission surfaces the existing record instead of creating another.
package applications

import "time"

// Application statuses.
const (
	StatusSubmitted = "submitted"
	StatusScreening = "screening"
	StatusInterview = "interview"
	StatusOffered   = "offered"
	StatusRejected  = "rejected"
)

// Application is a candidate's submission to a job.
type Application struct {
	ID          string    `json:"id"`
	CandidateID string    `json:"candidateId"`
	JobID       string    `json:"jobId"`
	Status      string    `json:"status"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func validStatus(s string) bool {
	switch s {
	case StatusSubmitted, StatusScreening, StatusInterview, StatusOffered, StatusRejected:
		return true
	}
	return false
}
