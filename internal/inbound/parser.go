package inbound

import (
	"regexp"
	"strings"
)

// maxBodyRunes bounds how much of the message body is carried into notes.
const maxBodyRunes = 2000

// ParsedCandidate holds what could be read out of one message. Every field
// may be empty. It lives for the duration of one ProcessMessage call.
type ParsedCandidate struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	JobCode   string
	Subject   string
	Body      string
}

var (
	jobCodeRe     = regexp.MustCompile(`(?i)(?:job id|קוד משרה|#)\s*:?\s*([A-Za-z0-9_-]+)`)
	inboundMailRe = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	fromBracketRe = regexp.MustCompile(`<([^<>]+)>`)
	inboundTelRe  = regexp.MustCompile(`(?:\+972[-\s]?|972[-\s]?|0)(?:5\d|[23489])[-\s]?\d{3}[-\s]?\d{4}`)
	nameLabelRe   = regexp.MustCompile(`(?i)(?:name|שם(?: מלא)?)\s*[:：]\s*([\p{L}]+)\s+([\p{L}]+)`)
	displayNameRe = regexp.MustCompile(`^\s*"?([^"<]+?)"?\s*<`)
	localTokenRe  = regexp.MustCompile(`^[A-Za-z]+$`)
)

// ParseMessage extracts candidate fields from one message. Email resolution
// tries the full text first, then the bracketed From address, then the raw
// From header.
func ParseMessage(subject, body, from string) ParsedCandidate {
	fullText := subject + "\n" + body
	p := ParsedCandidate{
		Subject: strings.TrimSpace(subject),
		Body:    truncateRunes(strings.TrimSpace(body), maxBodyRunes),
	}

	if m := jobCodeRe.FindStringSubmatch(fullText); m != nil {
		p.JobCode = m[1]
	}
	p.Email = parseEmail(fullText, from)
	p.Phone = inboundTelRe.FindString(fullText)
	p.FirstName, p.LastName = parseName(fullText, from, p.Email)
	return p
}

func parseEmail(fullText, from string) string {
	if m := inboundMailRe.FindString(fullText); m != "" {
		return m
	}
	if m := fromBracketRe.FindStringSubmatch(from); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(from)
}

// parseName prefers an explicit label, then the From display name, then a
// split of the email local part on '.' or '_'.
func parseName(fullText, from, email string) (first, last string) {
	if m := nameLabelRe.FindStringSubmatch(fullText); m != nil {
		return m[1], m[2]
	}
	if m := displayNameRe.FindStringSubmatch(from); m != nil {
		tokens := strings.Fields(strings.TrimSpace(m[1]))
		if len(tokens) >= 2 {
			return tokens[0], strings.Join(tokens[1:], " ")
		}
	}
	if at := strings.IndexByte(email, '@'); at > 0 {
		local := email[:at]
		tokens := strings.FieldsFunc(local, func(r rune) bool {
			return r == '.' || r == '_'
		})
		if len(tokens) >= 2 && allAlphabetic(tokens) {
			return tokens[0], tokens[1]
		}
	}
	return "", ""
}

func allAlphabetic(tokens []string) bool {
	for _, t := range tokens {
		if !localTokenRe.MatchString(t) {
			return false
		}
	}
	return true
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
