// Package inbound turns job-application emails into candidate records. Each
// message runs through a stateless pipeline: classify, parse, resolve
// identity, and optionally link a job application.
package inbound

import "strings"

// applicationVocabulary marks a message as a job application when any entry
// appears in the lowercased subject+body+from text. Generic application terms
// plus known job-board sender names.
var applicationVocabulary = []string{
	"מועמדות",
	"קורות חיים",
	"משרה",
	"מועמד",
	"cv",
	"resume",
	"application",
	"candidate",
	"alljobs",
	"jobmaster",
	"drushim",
}

// IsJobApplication reports whether a message looks like a job application.
func IsJobApplication(subject, body, from string) bool {
	haystack := strings.ToLower(subject + "\n" + body + "\n" + from)
	for _, keyword := range applicationVocabulary {
		if strings.Contains(haystack, keyword) {
			return true
		}
	}
	return false
}
