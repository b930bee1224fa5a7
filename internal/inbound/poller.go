package inbound

import (
	"context"
	"fmt"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/jhillyerd/enmime"

	"github.com/ayalaw/clickjob/internal/shared/telemetry"
)

// Poller drains an IMAP inbox on a fixed interval and feeds every message to
// the pipeline. Fetching uses a non-peek body section, so a fetched message
// is marked read whether or not it classifies as an application. A transport
// failure aborts the cycle; the next tick retries. A failure inside one
// message never stops the batch.
type Poller struct {
	Addr     string
	Username string
	Password string
	Mailbox  string
	Interval time.Duration
	Pipeline *Pipeline
}

// NewPoller constructs a Poller.
func NewPoller(addr, username, password, mailbox string, interval time.Duration, pipeline *Pipeline) *Poller {
	if mailbox == "" {
		mailbox = "INBOX"
	}
	if interval <= 0 {
		interval = 20 * time.Second
	}
	return &Poller{
		Addr:     addr,
		Username: username,
		Password: password,
		Mailbox:  mailbox,
		Interval: interval,
		Pipeline: pipeline,
	}
}

// Run polls until the context is cancelled.
func (p *Poller) Run(ctx context.Context) {
	telemetry.Info("inbound.poller_started", map[string]any{
		"addr":     p.Addr,
		"mailbox":  p.Mailbox,
		"interval": p.Interval.String(),
	})
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		if err := p.pollOnce(ctx); err != nil {
			telemetry.Error("inbound.poll_failed", map[string]any{"error": err.Error()})
		}
		select {
		case <-ctx.Done():
			telemetry.Info("inbound.poller_stopped", nil)
			return
		case <-ticker.C:
		}
	}
}

// pollOnce opens a fresh connection, fetches every message in the mailbox,
// and processes each.
func (p *Poller) pollOnce(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c, err := client.DialTLS(p.Addr, nil)
	if err != nil {
		return fmt.Errorf("imap dial %s: %w", p.Addr, err)
	}
	defer c.Logout()

	if err := c.Login(p.Username, p.Password); err != nil {
		return fmt.Errorf("imap login: %w", err)
	}

	mbox, err := c.Select(p.Mailbox, false)
	if err != nil {
		return fmt.Errorf("imap select %s: %w", p.Mailbox, err)
	}
	if mbox.Messages == 0 {
		return nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddRange(1, mbox.Messages)

	// Non-peek section. Fetching marks the message as read.
	section := &imap.BodySectionName{}
	items := []imap.FetchItem{section.FetchItem()}

	messages := make(chan *imap.Message, 16)
	fetchDone := make(chan error, 1)
	go func() {
		fetchDone <- c.Fetch(seqset, items, messages)
	}()

	for msg := range messages {
		p.processFetched(ctx, msg, section)
	}
	if err := <-fetchDone; err != nil {
		return fmt.Errorf("imap fetch: %w", err)
	}
	return nil
}

func (p *Poller) processFetched(ctx context.Context, msg *imap.Message, section *imap.BodySectionName) {
	body := msg.GetBody(section)
	if body == nil {
		telemetry.Error("inbound.message_no_body", map[string]any{"seq": msg.SeqNum})
		return
	}

	env, err := enmime.ReadEnvelope(body)
	if err != nil {
		telemetry.Error("inbound.message_parse_failed", map[string]any{
			"seq":   msg.SeqNum,
			"error": err.Error(),
		})
		return
	}

	subject := env.GetHeader("Subject")
	from := env.GetHeader("From")
	if err := p.Pipeline.ProcessMessage(ctx, subject, env.Text, from); err != nil {
		telemetry.Error("inbound.message_failed", map[string]any{
			"seq":     msg.SeqNum,
			"subject": subject,
			"error":   err.Error(),
		})
	}
}
