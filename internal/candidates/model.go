package candidates

import "time"

// Candidate statuses.
const (
	StatusNew          = "new"
	StatusInProcess    = "in_process"
	StatusSentToClient = "sent_to_client"
	StatusHired        = "hired"
	StatusRejected     = "rejected"
	StatusArchived     = "archived"
)

// Recruitment sources.
const (
	SourceManual       = "manual"
	SourceInboundEmail = "inbound_email"
)

// PlaceholderCity is stored when a record is admitted without a city.
const PlaceholderCity = "לא צוין"

// PlaceholderEmailDomain marks generated emails that must never participate
// in identity resolution.
const PlaceholderEmailDomain = "placeholder.invalid"

// Candidate is a candidate profile. Email is always present (possibly a
// placeholder); CandidateNumber is assigned by the store at creation, is
// strictly increasing and never reused.
type Candidate struct {
	ID              string    `json:"id"`
	CandidateNumber int64     `json:"candidateNumber"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Email           string    `json:"email"`
	Mobile          string    `json:"mobile"`
	Landline        string    `json:"landline"`
	Phone2          string    `json:"phone2"`
	NationalID      string    `json:"nationalId"`
	City            string    `json:"city"`
	Street          string    `json:"street"`
	HouseNumber     string    `json:"houseNumber"`
	ZipCode         string    `json:"zipCode"`
	Gender          string    `json:"gender"`
	MaritalStatus   string    `json:"maritalStatus"`
	DrivingLicense  string    `json:"drivingLicense"`
	Profession      string    `json:"profession"`
	ExperienceYears string    `json:"experienceYears"`
	Achievements    string    `json:"achievements"`
	Source          string    `json:"source"`
	Status          string    `json:"status"`
	Rating          int       `json:"rating"`
	Notes           string    `json:"notes"`
	Tags            []string  `json:"tags"`
	CVFileKey       string    `json:"cvFileKey,omitempty"`
	CVText          string    `json:"-"`
	SearchText      string    `json:"-"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// FullName joins the name fields for display and search.
func (c Candidate) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	default:
		return c.FirstName + " " + c.LastName
	}
}

// Event is an append-only entry in a candidate's history.
type Event struct {
	ID          string    `json:"id"`
	CandidateID string    `json:"candidateId"`
	EventType   string    `json:"eventType"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}
