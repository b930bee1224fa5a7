package candidates

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Resolver decides whether inbound contact information refers to an existing
// candidate. Matching is deliberately permissive: any single key hit is a
// match, and merging two people who share a recycled phone number is accepted
// as the lesser risk versus duplicate profiles.
type Resolver struct {
	Repo Repo
}

// FindExisting matches by normalized mobile, case-insensitive email, or exact
// national ID. Placeholder emails never match. Returns ErrNotFound when no
// key matches.
func (r *Resolver) FindExisting(ctx context.Context, mobile, email, nationalID string) (Candidate, error) {
	normalizedMobile := NormalizePhone(strings.TrimSpace(mobile))
	emailLower := strings.ToLower(strings.TrimSpace(email))
	if IsPlaceholderEmail(emailLower) {
		emailLower = ""
	}
	nationalID = strings.TrimSpace(nationalID)

	if normalizedMobile == "" && emailLower == "" && nationalID == "" {
		return Candidate{}, ErrNotFound
	}

	c, err := r.Repo.FindByIdentity(ctx, normalizedMobile, emailLower, nationalID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Candidate{}, ErrNotFound
		}
		return Candidate{}, fmt.Errorf("find existing candidate: %w", err)
	}
	return c, nil
}

// IsPlaceholderEmail reports whether the email was generated by this system
// and must not participate in identity resolution.
func IsPlaceholderEmail(email string) bool {
	return strings.HasSuffix(strings.ToLower(email), "@"+PlaceholderEmailDomain)
}
