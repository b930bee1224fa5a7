package candidates

import "github.com/ayalaw/clickjob/internal/cvparse"

// candidateRequest is the inbound create/update payload.
type candidateRequest struct {
	FirstName       string   `json:"firstName"`
	LastName        string   `json:"lastName"`
	Email           string   `json:"email"`
	Mobile          string   `json:"mobile"`
	Landline        string   `json:"landline"`
	Phone2          string   `json:"phone2"`
	NationalID      string   `json:"nationalId"`
	City            string   `json:"city"`
	Street          string   `json:"street"`
	HouseNumber     string   `json:"houseNumber"`
	ZipCode         string   `json:"zipCode"`
	Gender          string   `json:"gender"`
	MaritalStatus   string   `json:"maritalStatus"`
	DrivingLicense  string   `json:"drivingLicense"`
	Profession      string   `json:"profession"`
	ExperienceYears string   `json:"experienceYears"`
	Achievements    string   `json:"achievements"`
	Source          string   `json:"source"`
	Status          string   `json:"status"`
	Rating          int      `json:"rating"`
	Notes           string   `json:"notes"`
	Tags            []string `json:"tags"`
}

func (req candidateRequest) toModel() Candidate {
	return Candidate{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Mobile:          req.Mobile,
		Landline:        req.Landline,
		Phone2:          req.Phone2,
		NationalID:      req.NationalID,
		City:            req.City,
		Street:          req.Street,
		HouseNumber:     req.HouseNumber,
		ZipCode:         req.ZipCode,
		Gender:          req.Gender,
		MaritalStatus:   req.MaritalStatus,
		DrivingLicense:  req.DrivingLicense,
		Profession:      req.Profession,
		ExperienceYears: req.ExperienceYears,
		Achievements:    req.Achievements,
		Source:          req.Source,
		Status:          req.Status,
		Rating:          req.Rating,
		Notes:           req.Notes,
		Tags:            req.Tags,
	}
}

// createResponse reports the stored candidate and whether identity
// resolution merged into an existing profile.
type createResponse struct {
	Candidate Candidate `json:"candidate"`
	Merged    bool      `json:"merged"`
}

// listResponse wraps a paginated candidate list.
type listResponse struct {
	Items []Candidate `json:"items"`
	Total int         `json:"total"`
}

// uploadCVResponse returns the updated profile and the extracted fields.
type uploadCVResponse struct {
	Candidate Candidate      `json:"candidate"`
	Extracted cvparse.Fields `json:"extracted"`
}
