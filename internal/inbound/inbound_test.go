package inbound

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/ayalaw/clickjob/internal/applications"
	"github.com/ayalaw/clickjob/internal/candidates"
	"github.com/ayalaw/clickjob/internal/extract"
	"github.com/ayalaw/clickjob/internal/jobs"
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

type fixture struct {
	pipeline *Pipeline
	cands    *candidates.Service
	jobsSvc  *jobs.Service
	apps     *applications.Service
}

func newFixture() *fixture {
	cands := candidates.NewService(
		candidates.NewMemoryRepo(),
		&fakeStore{objects: map[string][]byte{}},
		extract.New("", 0),
	)
	jobsSvc := jobs.NewService(jobs.NewMemoryRepo())
	apps := applications.NewService(applications.NewMemoryRepo())
	return &fixture{
		pipeline: NewPipeline(cands, jobsSvc, apps),
		cands:    cands,
		jobsSvc:  jobsSvc,
		apps:     apps,
	}
}

func TestClassifier(t *testing.T) {
	cases := []struct {
		subject, body, from string
		want                bool
	}{
		{"מועמדות למשרה", "", "dana@example.com", true},
		{"קורות חיים מצורפים", "", "dana@example.com", true},
		{"New candidate", "Please find my CV attached", "dana@example.com", true},
		{"FW: Resume", "", "dana@example.com", true},
		{"", "", "noreply@alljobs.co.il", true},
		{"Invoice #443", "Payment due", "billing@vendor.example", false},
		{"פגישת צוות", "נתראה ביום שלישי", "office@agency.example", false},
	}
	for i, tc := range cases {
		if got := IsJobApplication(tc.subject, tc.body, tc.from); got != tc.want {
			t.Errorf("case %d (%q): got %v, want %v", i, tc.subject, got, tc.want)
		}
	}
}

func TestParseJobCode(t *testing.T) {
	cases := []struct {
		text, want string
	}{
		{"מועמדות למשרה #123456", "123456"},
		{"Applying, Job ID: AB-42", "AB-42"},
		{"קוד משרה 1001", "1001"},
		{"no code here", ""},
	}
	for i, tc := range cases {
		p := ParseMessage(tc.text, "", "someone@example.com")
		if p.JobCode != tc.want {
			t.Errorf("case %d (%q): got %q, want %q", i, tc.text, p.JobCode, tc.want)
		}
	}
}

func TestParseEmailFallbacks(t *testing.T) {
	p := ParseMessage("מועמדות", "ניתן להשיג אותי בכתובת dana@example.com", "board@alljobs.co.il")
	if p.Email != "dana@example.com" {
		t.Fatalf("full text must win, got %q", p.Email)
	}

	p = ParseMessage("מועמדות", "ללא כתובת בגוף", `"Dana Levi" <dana@example.com>`)
	if p.Email != "dana@example.com" {
		t.Fatalf("expected bracketed From address, got %q", p.Email)
	}

	p = ParseMessage("מועמדות", "ללא כתובת בגוף", "dana@example.com")
	if p.Email != "dana@example.com" {
		t.Fatalf("expected raw From fallback, got %q", p.Email)
	}
}

func TestParseNameFallbacks(t *testing.T) {
	p := ParseMessage("מועמדות", "שם: דנה לוי", "x@example.com")
	if p.FirstName != "דנה" || p.LastName != "לוי" {
		t.Fatalf("expected labeled name, got %q %q", p.FirstName, p.LastName)
	}

	p = ParseMessage("מועמדות", "ללא שם", `"Dana Levi" <dana@example.com>`)
	if p.FirstName != "Dana" || p.LastName != "Levi" {
		t.Fatalf("expected display name, got %q %q", p.FirstName, p.LastName)
	}

	p = ParseMessage("מועמדות", "ללא שם", "dana.levi@example.com")
	if p.FirstName != "dana" || p.LastName != "levi" {
		t.Fatalf("expected local-part split, got %q %q", p.FirstName, p.LastName)
	}

	p = ParseMessage("מועמדות", "ללא שם", "dana123@example.com")
	if p.FirstName != "" || p.LastName != "" {
		t.Fatalf("non-alphabetic local part must yield no name, got %q %q", p.FirstName, p.LastName)
	}
}

func TestParsePhone(t *testing.T) {
	p := ParseMessage("מועמדות", "נייד: 050-1234567", "x@example.com")
	if p.Phone == "" {
		t.Fatal("expected phone extracted")
	}
	if candidates.NormalizePhone(p.Phone) != "0501234567" {
		t.Fatalf("expected normalizable phone, got %q", p.Phone)
	}
}

func TestParseBodyTruncated(t *testing.T) {
	long := strings.Repeat("א", 3000)
	p := ParseMessage("מועמדות", long, "x@example.com")
	if got := len([]rune(p.Body)); got != maxBodyRunes {
		t.Fatalf("expected body truncated to %d runes, got %d", maxBodyRunes, got)
	}
}

func TestProcessMessageIgnoresNonApplication(t *testing.T) {
	f := newFixture()
	if err := f.pipeline.ProcessMessage(context.Background(), "Invoice #443", "Payment due", "billing@vendor.example"); err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	all, err := f.cands.Repo.ListAll(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("ignored message must not create candidates, got %d", len(all))
	}
}

func TestProcessMessageSkipsWithoutEmail(t *testing.T) {
	f := newFixture()
	if err := f.pipeline.ProcessMessage(context.Background(), "מועמדות למשרה", "ללא פרטי קשר", "board sender"); err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	all, err := f.cands.Repo.ListAll(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("message without email must be skipped, got %d candidates", len(all))
	}
}

func TestProcessMessageCreatesCandidateAndApplication(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	job, err := f.jobsSvc.Create(ctx, jobs.Job{Title: "מפתח/ת גו"})
	if err != nil {
		t.Fatalf("create job: %v", err)
	}

	subject := "מועמדות למשרה #1000"
	body := "שלום, מצורפים קורות חיים. דוא\"ל dana@example.com נייד 050-1234567"
	if err := f.pipeline.ProcessMessage(ctx, subject, body, `"Dana Levi" <dana@example.com>`); err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}

	all, err := f.cands.Repo.ListAll(ctx, 10)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected one candidate, got %d", len(all))
	}
	c := all[0]
	if c.Email != "dana@example.com" {
		t.Fatalf("expected parsed email, got %q", c.Email)
	}
	if c.Source != candidates.SourceInboundEmail {
		t.Fatalf("expected inbound source, got %q", c.Source)
	}
	if !strings.Contains(c.Notes, subject) {
		t.Fatalf("notes must carry the subject, got %q", c.Notes)
	}

	apps, err := f.apps.ListByJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("ListByJob: %v", err)
	}
	if len(apps) != 1 {
		t.Fatalf("expected one application, got %d", len(apps))
	}
	if apps[0].CandidateID != c.ID {
		t.Fatalf("application must link the candidate, got %s", apps[0].CandidateID)
	}
	if apps[0].Status != applications.StatusSubmitted {
		t.Fatalf("expected submitted, got %q", apps[0].Status)
	}
}

func TestProcessMessageRepeatMergesWithoutDuplicateApplication(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.jobsSvc.Create(ctx, jobs.Job{Title: "מפתח/ת גו"}); err != nil {
		t.Fatalf("create job: %v", err)
	}

	subject := "מועמדות למשרה #1000"
	body := "קורות חיים, dana@example.com"
	from := `"Dana Levi" <dana@example.com>`
	if err := f.pipeline.ProcessMessage(ctx, subject, body, from); err != nil {
		t.Fatalf("first ProcessMessage: %v", err)
	}
	if err := f.pipeline.ProcessMessage(ctx, subject, body, from); err != nil {
		t.Fatalf("second ProcessMessage: %v", err)
	}

	all, err := f.cands.Repo.ListAll(ctx, 10)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("repeat message must merge, got %d candidates", len(all))
	}

	apps, err := f.apps.ListByCandidate(ctx, all[0].ID)
	if err != nil {
		t.Fatalf("ListByCandidate: %v", err)
	}
	if len(apps) != 1 {
		t.Fatalf("repeat message must not duplicate the application, got %d", len(apps))
	}

	// The second message's content is appended to notes, not dropped.
	if strings.Count(all[0].Notes, subject) != 2 {
		t.Fatalf("expected both messages in notes, got %q", all[0].Notes)
	}
}

func TestProcessMessageUnknownJobCodeKeepsCandidate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if err := f.pipeline.ProcessMessage(ctx, "מועמדות למשרה #999999", "dana@example.com", "dana@example.com"); err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}

	all, err := f.cands.Repo.ListAll(ctx, 10)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("candidate must persist without a job match, got %d", len(all))
	}
	apps, err := f.apps.ListByCandidate(ctx, all[0].ID)
	if err != nil {
		t.Fatalf("ListByCandidate: %v", err)
	}
	if len(apps) != 0 {
		t.Fatalf("no application expected, got %d", len(apps))
	}
}

func TestProcessMessageMergeFillsGapsOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	seed, err := f.cands.Create(ctx, candidates.Candidate{
		FirstName: "דנה",
		LastName:  "לוי-כהן",
		Email:     "dana@example.com",
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	body := "קורות חיים, נייד 052-7654321"
	if err := f.pipeline.ProcessMessage(ctx, "מועמדות", body, `"Dana Levi" <dana@example.com>`); err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}

	got, err := f.cands.Get(ctx, seed.Candidate.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.LastName != "לוי-כהן" {
		t.Fatalf("existing name must be kept, got %q", got.LastName)
	}
	if got.Mobile == "" {
		t.Fatal("missing phone must be filled from the message")
	}
}
