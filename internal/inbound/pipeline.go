package inbound

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ayalaw/clickjob/internal/applications"
	"github.com/ayalaw/clickjob/internal/candidates"
	"github.com/ayalaw/clickjob/internal/jobs"
	"github.com/ayalaw/clickjob/internal/shared/metrics"
	"github.com/ayalaw/clickjob/internal/shared/telemetry"
)

// Pipeline processes one inbound message at a time. It holds no per-message
// state; everything transient lives in the ParsedCandidate.
type Pipeline struct {
	Candidates   *candidates.Service
	Jobs         *jobs.Service
	Applications *applications.Service
}

// NewPipeline constructs a Pipeline.
func NewPipeline(cands *candidates.Service, jobsSvc *jobs.Service, apps *applications.Service) *Pipeline {
	return &Pipeline{Candidates: cands, Jobs: jobsSvc, Applications: apps}
}

// ProcessMessage classifies and ingests one message. A message that is not a
// job application, or that yields no email address, is skipped without error.
// Identity resolution decides merge versus create; a parsed job reference
// links at most one application.
func (p *Pipeline) ProcessMessage(ctx context.Context, subject, body, from string) error {
	metrics.IncInboundMessage()

	if !IsJobApplication(subject, body, from) {
		metrics.IncInboundSkipped()
		telemetry.Info("inbound.not_application", map[string]any{"subject": subject})
		return nil
	}

	parsed := ParseMessage(subject, body, from)
	if parsed.Email == "" || !strings.Contains(parsed.Email, "@") {
		metrics.IncInboundSkipped()
		telemetry.Info("inbound.no_email", map[string]any{"subject": subject, "from": from})
		return nil
	}

	incoming := candidates.Candidate{
		FirstName: parsed.FirstName,
		LastName:  parsed.LastName,
		Email:     parsed.Email,
		Mobile:    parsed.Phone,
		Source:    candidates.SourceInboundEmail,
		Notes:     messageNotes(parsed),
	}
	if parsed.JobCode != "" {
		incoming.Profession = fmt.Sprintf("מועמד למשרה %s", parsed.JobCode)
	}

	result, err := p.Candidates.Create(ctx, incoming)
	if err != nil {
		return fmt.Errorf("inbound candidate: %w", err)
	}
	telemetry.Info("inbound.candidate", map[string]any{
		"candidate_id": result.Candidate.ID,
		"merged":       result.Merged,
		"job_code":     parsed.JobCode,
	})

	if parsed.JobCode == "" {
		return nil
	}
	job, err := p.Jobs.Resolve(ctx, parsed.JobCode)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			// The candidate record still persists without an application.
			telemetry.Info("inbound.job_not_found", map[string]any{"job_code": parsed.JobCode})
			return nil
		}
		return fmt.Errorf("resolve job %q: %w", parsed.JobCode, err)
	}

	note := fmt.Sprintf("קושר אוטומטית ממייל נכנס, קוד משרה %s", parsed.JobCode)
	if _, err := p.Applications.Submit(ctx, result.Candidate.ID, job.ID, note); err != nil {
		if errors.Is(err, applications.ErrDuplicate) {
			return nil
		}
		return fmt.Errorf("link application: %w", err)
	}
	return nil
}

func messageNotes(p ParsedCandidate) string {
	parts := []string{}
	if p.Subject != "" {
		parts = append(parts, p.Subject)
	}
	if p.Body != "" {
		parts = append(parts, p.Body)
	}
	return strings.Join(parts, "\n")
}
