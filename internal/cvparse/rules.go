package cvparse

import (
	"regexp"
	"strings"
)

var (
	emailRe    = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	mobileRe   = regexp.MustCompile(`(?:\+972|972|0)[-\s]?5\d[-\s]?\d{3}[-\s]?\d{4}`)
	landlineRe = regexp.MustCompile(`(?:\+972|972|0)[-\s]?[23489][-\s]?\d{3}[-\s]?\d{4}`)
	zipRe      = regexp.MustCompile(`\b\d{5,7}\b`)

	nationalIDLabeledRe = regexp.MustCompile(`(?i)(?:ת"ז|ת\.ז\.?|תעודת זהות|מספר זהות|id number)\s*:?\s*(\d{8,9})`)
	nationalIDBareRe    = regexp.MustCompile(`\b\d{9}\b`)

	streetRe = regexp.MustCompile(`(?:רחוב|רח')\s+([\p{Hebrew}'"\s]+?\d*)(?:\n|,|$)`)

	nameLabeledRe   = regexp.MustCompile(`(?:שם מלא|שם)\s*:?\s*(\p{Hebrew}{2,})\s+(\p{Hebrew}{2,})`)
	nameLatinRe     = regexp.MustCompile(`\b([A-Z][a-z]+)\s+([A-Z][a-z]+)\b`)
	experienceYears = []*regexp.Regexp{
		regexp.MustCompile(`(\d{1,2})\s*שנות\s*ניסיון`),
		regexp.MustCompile(`ניסיון\s*של\s*(\d{1,2})\s*שנים`),
		regexp.MustCompile(`(?i)(\d{1,2})\+?\s*years?\s+(?:of\s+)?experience`),
	}

	nonDigitRe = regexp.MustCompile(`\D`)
)

func digitsOnly(s string) string {
	return nonDigitRe.ReplaceAllString(s, "")
}

func extractEmail(head string) string {
	return emailRe.FindString(head)
}

func extractMobile(head string) string {
	return mobileRe.FindString(head)
}

// extractLandlines returns the first landline-like match and, when a second
// distinct match exists, a secondary phone.
func extractLandlines(head, mobile string) (landline, phone2 string) {
	mobileDigits := digitsOnly(mobile)
	for _, m := range landlineRe.FindAllString(head, -1) {
		d := digitsOnly(m)
		if d == mobileDigits {
			continue
		}
		if landline == "" {
			landline = m
			continue
		}
		if d != digitsOnly(landline) {
			phone2 = m
			break
		}
	}
	return landline, phone2
}

// extractZip rejects digit runs already claimed by a phone rule, since a
// phone fragment is the usual zip false positive.
func extractZip(head, mobile, landline string) string {
	mobileDigits := digitsOnly(mobile)
	landlineDigits := digitsOnly(landline)
	for _, m := range zipRe.FindAllString(head, -1) {
		if m == mobileDigits || m == landlineDigits {
			continue
		}
		if mobileDigits != "" && strings.Contains(mobileDigits, m) {
			continue
		}
		if landlineDigits != "" && strings.Contains(landlineDigits, m) {
			continue
		}
		return m
	}
	return ""
}

func extractNationalID(head, mobile, landline string) string {
	if m := nationalIDLabeledRe.FindStringSubmatch(head); m != nil {
		return m[1]
	}
	mobileDigits := digitsOnly(mobile)
	landlineDigits := digitsOnly(landline)
	for _, m := range nationalIDBareRe.FindAllString(head, -1) {
		if m == mobileDigits || m == landlineDigits {
			continue
		}
		if mobileDigits != "" && strings.Contains(mobileDigits, m) {
			continue
		}
		return m
	}
	return ""
}

func extractStreet(head string) string {
	if m := streetRe.FindStringSubmatch(head); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func extractCity(head string) string {
	bestIdx := -1
	best := ""
	for _, city := range cityVocabulary {
		idx := indexFold(head, city)
		if idx < 0 {
			continue
		}
		if bestIdx == -1 || idx < bestIdx {
			bestIdx = idx
			best = city
		}
	}
	return best
}

// extractName prefers an explicit Hebrew "שם:" label; otherwise the first
// bigram of capitalized Latin tokens. There is no cross-validation against
// email or phone.
func extractName(head string) (first, last string) {
	if m := nameLabeledRe.FindStringSubmatch(head); m != nil {
		return m[1], m[2]
	}
	if m := nameLatinRe.FindStringSubmatch(head); m != nil {
		return m[1], m[2]
	}
	return "", ""
}

func extractProfession(text string) string {
	bestIdx := -1
	best := ""
	for _, p := range professionVocabulary {
		idx := indexFold(text, p)
		if idx < 0 {
			continue
		}
		if bestIdx == -1 || idx < bestIdx {
			bestIdx = idx
			best = p
		}
	}
	return best
}

func extractExperienceYears(text string) string {
	for _, re := range experienceYears {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

var (
	maleWordRe   = regexp.MustCompile(`(?i)\bmale\b`)
	femaleWordRe = regexp.MustCompile(`(?i)\bfemale\b`)
)

func extractGender(text string) string {
	if strings.Contains(text, "זכר") || maleWordRe.MatchString(text) {
		return "male"
	}
	if strings.Contains(text, "נקבה") || femaleWordRe.MatchString(text) {
		return "female"
	}
	return ""
}

func extractMaritalStatus(text string) string {
	for _, entry := range maritalVocabulary {
		for _, kw := range entry.keywords {
			if containsWordFold(text, kw) {
				return entry.status
			}
		}
	}
	return ""
}

// extractDrivingLicense returns the line containing a license phrase, so
// grade details ("רישיון נהיגה ב'") survive.
func extractDrivingLicense(text string) string {
	for _, phrase := range licensePhrases {
		idx := indexFold(text, phrase)
		if idx < 0 {
			continue
		}
		line := lineAround(text, idx)
		if runes := []rune(line); len(runes) > 80 {
			line = string(runes[:80])
		}
		return strings.TrimSpace(line)
	}
	return ""
}

// achievementsWindow is the fixed capture length after an achievements
// keyword. The window may cut mid-sentence; consumers treat it as a preview.
const achievementsWindow = 300

func extractAchievements(text string) string {
	for _, kw := range achievementKeywords {
		idx := indexFold(text, kw)
		if idx < 0 {
			continue
		}
		runes := []rune(text[idx:])
		if len(runes) > achievementsWindow {
			runes = runes[:achievementsWindow]
		}
		return strings.TrimSpace(string(runes))
	}
	return ""
}

func indexFold(haystack, needle string) int {
	return strings.Index(strings.ToLower(haystack), strings.ToLower(needle))
}

func containsWordFold(haystack, needle string) bool {
	return indexFold(haystack, needle) >= 0
}

func lineAround(text string, idx int) string {
	start := strings.LastIndexByte(text[:idx], '\n') + 1
	end := strings.IndexByte(text[idx:], '\n')
	if end < 0 {
		return text[start:]
	}
	return text[start : idx+end]
}
