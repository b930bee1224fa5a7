package search

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/ayalaw/clickjob/internal/candidates"
	"github.com/ayalaw/clickjob/internal/extract"
)

type fakeStore struct {
	objects map[string][]byte
}

func (s *fakeStore) Save(_ context.Context, ownerID, fileName string, r io.Reader) (string, int64, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, "", err
	}
	key := ownerID + "/" + fileName
	s.objects[key] = data
	return key, int64(len(data)), "application/octet-stream", nil
}

func (s *fakeStore) Open(_ context.Context, storageKey string) (io.ReadCloser, error) {
	data, ok := s.objects[storageKey]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func newTestSearch(t *testing.T) (*Service, *candidates.Service, *fakeStore) {
	t.Helper()
	repo := candidates.NewMemoryRepo()
	store := &fakeStore{objects: map[string][]byte{}}
	cands := candidates.NewService(repo, store, extract.New("", 0))
	return NewService(cands, 100), cands, store
}

func seed(t *testing.T, cands *candidates.Service, email, profession, cv string) candidates.Candidate {
	t.Helper()
	res, err := cands.Create(context.Background(), candidates.Candidate{
		Email:      email,
		Profession: profession,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	c := res.Candidate
	if cv != "" {
		c, _, err = cands.UploadCV(context.Background(), c.ID, "cv.txt", strings.NewReader(cv))
		if err != nil {
			t.Fatalf("UploadCV: %v", err)
		}
	}
	return c
}

func TestSearchPositiveKeyword(t *testing.T) {
	svc, cands, _ := newTestSearch(t)
	java := seed(t, cands, "java@example.com", "", "חמש שנות ניסיון בפיתוח Java ו-Spring")
	seed(t, cands, "ruby@example.com", "", "פיתוח Ruby on Rails")

	results, err := svc.Search(context.Background(), []string{"java"}, nil, false, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one match, got %d", len(results))
	}
	if results[0].CandidateID != java.ID {
		t.Fatalf("expected %s, got %s", java.ID, results[0].CandidateID)
	}
	if len(results[0].MatchedKeywords) != 1 || results[0].MatchedKeywords[0] != "java" {
		t.Fatalf("expected matched keyword recorded, got %v", results[0].MatchedKeywords)
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	svc, cands, _ := newTestSearch(t)
	seed(t, cands, "java@example.com", "", "Senior JAVA developer")

	results, err := svc.Search(context.Background(), []string{"Java"}, nil, false, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected case-insensitive match, got %d results", len(results))
	}
}

func TestSearchNegativeKeywordExcludes(t *testing.T) {
	svc, cands, _ := newTestSearch(t)
	seed(t, cands, "both@example.com", "", "Java developer, also PHP")
	keep := seed(t, cands, "java@example.com", "", "Java developer")

	results, err := svc.Search(context.Background(), []string{"java"}, []string{"php"}, false, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one match after exclusion, got %d", len(results))
	}
	if results[0].CandidateID != keep.ID {
		t.Fatalf("expected %s, got %s", keep.ID, results[0].CandidateID)
	}
}

func TestSearchEmptyPositiveMatchesAllExceptNegative(t *testing.T) {
	svc, cands, _ := newTestSearch(t)
	seed(t, cands, "a@example.com", "", "Java developer")
	seed(t, cands, "b@example.com", "", "Python developer")

	results, err := svc.Search(context.Background(), nil, []string{"python"}, false, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected all-minus-negative, got %d", len(results))
	}
}

func TestSearchMatchesProfessionWithoutCV(t *testing.T) {
	svc, cands, _ := newTestSearch(t)
	seed(t, cands, "chef@example.com", "טבחית", "")

	results, err := svc.Search(context.Background(), []string{"טבחית"}, nil, false, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected profession match, got %d", len(results))
	}
}

func TestSearchOnDemandExtractionFromStoredFile(t *testing.T) {
	svc, cands, store := newTestSearch(t)
	res, err := cands.Create(context.Background(), candidates.Candidate{Email: "odl@example.com"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	c := res.Candidate
	key, _, _, err := store.Save(context.Background(), c.ID, "cv.txt", strings.NewReader("Kubernetes operations"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	c.CVFileKey = key
	if err := cands.Repo.Update(context.Background(), c); err != nil {
		t.Fatalf("Update: %v", err)
	}

	results, err := svc.Search(context.Background(), []string{"kubernetes"}, nil, false, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected a match from on-demand extraction, got %d", len(results))
	}
}

func TestSearchIncludeNotes(t *testing.T) {
	svc, cands, _ := newTestSearch(t)
	res, err := cands.Create(context.Background(), candidates.Candidate{
		Email: "notes@example.com",
		Notes: "ראיון טלפוני עבר בהצלחה",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := cands.AddEvent(context.Background(), res.Candidate.ID, "interview", "זומן לראיון אצל הלקוח"); err != nil {
		t.Fatalf("AddEvent: %v", err)
	}

	without, err := svc.Search(context.Background(), []string{"ראיון"}, nil, false, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(without) != 0 {
		t.Fatalf("notes must not match when excluded, got %d", len(without))
	}

	with, err := svc.Search(context.Background(), []string{"ראיון"}, nil, true, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(with) != 1 {
		t.Fatalf("expected notes match when included, got %d", len(with))
	}
}

func TestSearchNewestFirstAndLimit(t *testing.T) {
	svc, cands, _ := newTestSearch(t)
	seed(t, cands, "old@example.com", "", "Go developer")
	newest := seed(t, cands, "new@example.com", "", "Go developer")

	results, err := svc.Search(context.Background(), []string{"go developer"}, nil, false, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected limit respected, got %d", len(results))
	}
	if results[0].CandidateID != newest.ID {
		t.Fatalf("expected newest first, got %s", results[0].CandidateID)
	}
}

func TestSearchPreviewTruncated(t *testing.T) {
	svc, cands, _ := newTestSearch(t)
	long := strings.Repeat("א", 500)
	seed(t, cands, "long@example.com", "", long)

	results, err := svc.Search(context.Background(), []string{"א"}, nil, false, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected one match, got %d", len(results))
	}
	if got := len([]rune(results[0].Preview)); got != previewRunes {
		t.Fatalf("expected %d-rune preview, got %d", previewRunes, got)
	}
}

func TestSearchIndexedEmptyQuery(t *testing.T) {
	svc, _, _ := newTestSearch(t)
	results, total, err := svc.SearchIndexed(context.Background(), "   ", 10, 0)
	if err != nil {
		t.Fatalf("SearchIndexed: %v", err)
	}
	if results != nil || total != 0 {
		t.Fatalf("empty query must return nothing, got %v total=%d", results, total)
	}
}

func TestSearchIndexedTermsAnded(t *testing.T) {
	svc, cands, _ := newTestSearch(t)
	both := seed(t, cands, "both@example.com", "", "Java and Spring experience")
	seed(t, cands, "one@example.com", "", "Java only")

	results, total, err := svc.SearchIndexed(context.Background(), "java spring", 10, 0)
	if err != nil {
		t.Fatalf("SearchIndexed: %v", err)
	}
	if total != 1 || len(results) != 1 {
		t.Fatalf("expected AND semantics, got total=%d len=%d", total, len(results))
	}
	if results[0].ID != both.ID {
		t.Fatalf("expected %s, got %s", both.ID, results[0].ID)
	}
}
