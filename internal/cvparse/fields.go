// Package cvparse extracts structured candidate fields from raw CV text.
//
// Extraction is an ordered list of independent regex and keyword rules.
// Identity and contact rules only scan the head window (the first 30% of the
// text, where contact details cluster); professional rules scan the whole
// text. Every rule may find nothing: the zero value of Fields is a valid,
// fully-empty result and extraction never fails.
package cvparse

// Fields is the transient, fully-optional result of field extraction. An
// empty string means the heuristic found nothing, never an error.
type Fields struct {
	FirstName       string `json:"firstName,omitempty"`
	LastName        string `json:"lastName,omitempty"`
	Email           string `json:"email,omitempty"`
	Mobile          string `json:"mobile,omitempty"`
	Landline        string `json:"landline,omitempty"`
	Phone2          string `json:"phone2,omitempty"`
	NationalID      string `json:"nationalId,omitempty"`
	City            string `json:"city,omitempty"`
	Street          string `json:"street,omitempty"`
	ZipCode         string `json:"zipCode,omitempty"`
	Profession      string `json:"profession,omitempty"`
	ExperienceYears string `json:"experienceYears,omitempty"`
	Gender          string `json:"gender,omitempty"`
	MaritalStatus   string `json:"maritalStatus,omitempty"`
	DrivingLicense  string `json:"drivingLicense,omitempty"`
	Achievements    string `json:"achievements,omitempty"`
}

// IsEmpty reports whether no rule matched anything.
func (f Fields) IsEmpty() bool {
	return f == Fields{}
}

// headWindowRatio is the share of the text scanned by identity rules.
const headWindowRatio = 0.3

// headWindowMin keeps the window useful on very short documents.
const headWindowMin = 300

// headWindow returns the prefix of text scanned by identity/contact rules:
// nominally the first 30% of the rune length, but never less than
// headWindowMin runes. Texts of 1000 runes or fewer therefore get a wider
// window than the strict ratio, and anything at or under headWindowMin is
// scanned whole; a one-page CV often puts contact lines past the 30% cut.
func headWindow(text string) string {
	runes := []rune(text)
	n := int(float64(len(runes)) * headWindowRatio)
	if n < headWindowMin {
		n = headWindowMin
	}
	if n > len(runes) {
		n = len(runes)
	}
	return string(runes[:n])
}

// ExtractFields applies the rule list to text. It is a pure function of its
// input: same text, same result.
func ExtractFields(text string) Fields {
	var f Fields
	if text == "" {
		return f
	}

	head := headWindow(text)

	// Head-window rules, in precedence order. Zip runs after the phone
	// rules so phone digit runs can be rejected as zip candidates.
	f.Email = extractEmail(head)
	f.Mobile = extractMobile(head)
	f.Landline, f.Phone2 = extractLandlines(head, f.Mobile)
	f.ZipCode = extractZip(head, f.Mobile, f.Landline)
	f.NationalID = extractNationalID(head, f.Mobile, f.Landline)
	f.Street = extractStreet(head)
	f.City = extractCity(head)
	f.FirstName, f.LastName = extractName(head)

	// Full-text keyword rules.
	f.Profession = extractProfession(text)
	f.ExperienceYears = extractExperienceYears(text)
	f.Gender = extractGender(text)
	f.MaritalStatus = extractMaritalStatus(text)
	f.DrivingLicense = extractDrivingLicense(text)
	f.Achievements = extractAchievements(text)

	return f
}
