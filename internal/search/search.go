// Package search finds candidates by CV content. Two modes exist: a naive
// full scan matching keyword substrings against assembled candidate text, and
// an indexed mode backed by the precomputed search vector in the store.
package search

import (
	"context"
	"strings"
	"time"

	"github.com/ayalaw/clickjob/internal/candidates"
)

const previewRunes = 200

// Result is one search hit.
type Result struct {
	CandidateID     string    `json:"candidateId"`
	CandidateNumber int64     `json:"candidateNumber"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Mobile          string    `json:"mobile"`
	MatchedKeywords []string  `json:"matchedKeywords"`
	Preview         string    `json:"preview"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Service runs searches over the candidate pool.
type Service struct {
	Candidates *candidates.Service
	// ScanLimit caps how many candidates the naive scan loads.
	ScanLimit int
}

// NewService constructs a Service.
func NewService(cands *candidates.Service, scanLimit int) *Service {
	if scanLimit <= 0 {
		scanLimit = 500
	}
	return &Service{Candidates: cands, ScanLimit: scanLimit}
}

// Search scans candidates newest first and matches keyword substrings, case
// insensitive. A candidate matches when any positive keyword appears (or the
// positive list is empty) and no negative keyword appears. With includeNotes
// the candidate's notes and event descriptions join the scanned text.
func (s *Service) Search(ctx context.Context, positive, negative []string, includeNotes bool, limit int) ([]Result, error) {
	positive = cleanKeywords(positive)
	negative = cleanKeywords(negative)
	if limit <= 0 || limit > s.ScanLimit {
		limit = s.ScanLimit
	}

	pool, err := s.Candidates.Repo.ListAll(ctx, s.ScanLimit)
	if err != nil {
		return nil, err
	}

	var out []Result
	for _, c := range pool {
		text := s.scanText(ctx, c, includeNotes)
		lower := strings.ToLower(text)

		if containsAny(lower, negative) {
			continue
		}
		matched := matchedKeywords(lower, positive)
		if len(positive) > 0 && len(matched) == 0 {
			continue
		}

		out = append(out, Result{
			CandidateID:     c.ID,
			CandidateNumber: c.CandidateNumber,
			Name:            c.FullName(),
			Email:           c.Email,
			Mobile:          c.Mobile,
			MatchedKeywords: matched,
			Preview:         preview(text),
			CreatedAt:       c.CreatedAt,
		})
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// SearchIndexed delegates to the store's full-text index. The query is split
// on whitespace and the terms are ANDed. An empty query returns (nil, 0)
// without touching the store.
func (s *Service) SearchIndexed(ctx context.Context, query string, limit, offset int) ([]candidates.Candidate, int, error) {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return nil, 0, nil
	}
	return s.Candidates.Repo.SearchIndexed(ctx, terms, limit, offset)
}

// scanText assembles the text a naive match runs against: name, profession,
// cached or on-demand CV text, and optionally notes plus event history.
func (s *Service) scanText(ctx context.Context, c candidates.Candidate, includeNotes bool) string {
	parts := []string{c.FullName(), c.Profession, s.Candidates.CVTextFor(ctx, c)}
	if includeNotes {
		parts = append(parts, c.Notes)
		if events, err := s.Candidates.Repo.ListEvents(ctx, c.ID); err == nil {
			for _, ev := range events {
				parts = append(parts, ev.Description)
			}
		}
	}
	var kept []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n")
}

func cleanKeywords(keywords []string) []string {
	var out []string
	for _, k := range keywords {
		if trimmed := strings.TrimSpace(k); trimmed != "" {
			out = append(out, strings.ToLower(trimmed))
		}
	}
	return out
}

func containsAny(lowerText string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(lowerText, k) {
			return true
		}
	}
	return false
}

func matchedKeywords(lowerText string, keywords []string) []string {
	var out []string
	for _, k := range keywords {
		if strings.Contains(lowerText, k) {
			out = append(out, k)
		}
	}
	return out
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewRunes {
		return text
	}
	return string(runes[:previewRunes])
}
