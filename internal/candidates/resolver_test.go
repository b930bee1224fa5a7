package candidates

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func seedCandidate(t *testing.T, repo *MemoryRepo, c Candidate) Candidate {
	t.Helper()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Email == "" {
		c.Email = c.ID[:8] + "@example.com"
	}
	created, err := repo.Create(context.Background(), c)
	if err != nil {
		t.Fatalf("seed candidate: %v", err)
	}
	return created
}

func TestResolver_MatchByAnyKey(t *testing.T) {
	repo := NewMemoryRepo()
	resolver := &Resolver{Repo: repo}
	ctx := context.Background()

	seeded := seedCandidate(t, repo, Candidate{
		FirstName:  "דנה",
		Email:      "dana@example.com",
		Mobile:     "+972-50-1234567",
		NationalID: "123456789",
	})

	byPhone, err := resolver.FindExisting(ctx, "0501234567", "", "")
	if err != nil {
		t.Fatalf("find by phone: %v", err)
	}
	if byPhone.ID != seeded.ID {
		t.Fatal("phone lookup returned wrong candidate")
	}

	byEmail, err := resolver.FindExisting(ctx, "", "DANA@Example.COM", "")
	if err != nil {
		t.Fatalf("find by email: %v", err)
	}
	if byEmail.ID != seeded.ID {
		t.Fatal("email lookup returned wrong candidate")
	}

	byID, err := resolver.FindExisting(ctx, "", "", "123456789")
	if err != nil {
		t.Fatalf("find by national id: %v", err)
	}
	if byID.ID != seeded.ID {
		t.Fatal("national id lookup returned wrong candidate")
	}
}

func TestResolver_CommutativeOverMatchedKey(t *testing.T) {
	// A candidate created via email alone must be found again by phone once
	// both keys are stored.
	repo := NewMemoryRepo()
	resolver := &Resolver{Repo: repo}
	ctx := context.Background()

	seeded := seedCandidate(t, repo, Candidate{
		Email:  "via-email@example.com",
		Mobile: "0521112233",
	})

	byPhone, err := resolver.FindExisting(ctx, "052-111-2233", "", "")
	if err != nil {
		t.Fatalf("find by phone: %v", err)
	}
	if byPhone.ID != seeded.ID {
		t.Fatal("expected same candidate by phone as by email")
	}
}

func TestResolver_PlaceholderEmailNeverMatches(t *testing.T) {
	repo := NewMemoryRepo()
	resolver := &Resolver{Repo: repo}
	ctx := context.Background()

	seedCandidate(t, repo, Candidate{
		Email: "candidate-1234abcd@" + PlaceholderEmailDomain,
	})

	_, err := resolver.FindExisting(ctx, "", "candidate-1234abcd@"+PlaceholderEmailDomain, "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for placeholder email, got %v", err)
	}
}

func TestResolver_MostRecentMatchWins(t *testing.T) {
	repo := NewMemoryRepo()
	resolver := &Resolver{Repo: repo}
	ctx := context.Background()

	seedCandidate(t, repo, Candidate{Email: "a@example.com", Mobile: "0501111111"})
	second := seedCandidate(t, repo, Candidate{Email: "b@example.com", Mobile: "0501111111"})

	got, err := resolver.FindExisting(ctx, "0501111111", "", "")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.ID != second.ID {
		t.Fatal("expected most recently created match to win")
	}
}

func TestResolver_NoKeysIsNotFound(t *testing.T) {
	resolver := &Resolver{Repo: NewMemoryRepo()}
	_, err := resolver.FindExisting(context.Background(), "", "", "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
