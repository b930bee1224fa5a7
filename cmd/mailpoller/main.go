package main

// Standalone inbound mail poller:
//   go run ./cmd/mailpoller
//
// Drains the configured IMAP inbox on an interval and feeds job-application
// emails into the candidate pipeline. Runs separately from the API so a slow
// mailbox never competes with request handling.

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ayalaw/clickjob/internal/applications"
	"github.com/ayalaw/clickjob/internal/candidates"
	"github.com/ayalaw/clickjob/internal/extract"
	"github.com/ayalaw/clickjob/internal/inbound"
	"github.com/ayalaw/clickjob/internal/jobs"
	"github.com/ayalaw/clickjob/internal/shared/config"
	"github.com/ayalaw/clickjob/internal/shared/storage/db"
	localstore "github.com/ayalaw/clickjob/internal/shared/storage/object/local"
)

func main() {
	cfg := config.Load()
	if cfg.IMAPAddr == "" {
		log.Printf("IMAP_ADDR is required")
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		log.Printf("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := db.OptionsFromEnv(db.DefaultPollerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		log.Printf("failed to connect database: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	store := localstore.New(cfg.UploadsDir)
	extractor := extract.New(cfg.PdfToTextPath, cfg.ExtractTimeout)
	candidateSvc := candidates.NewService(&candidates.PGRepo{DB: sqlDB}, store, extractor)
	jobSvc := jobs.NewService(&jobs.PGRepo{DB: sqlDB})
	appSvc := applications.NewService(&applications.PGRepo{DB: sqlDB})

	pipeline := inbound.NewPipeline(candidateSvc, jobSvc, appSvc)
	poller := inbound.NewPoller(
		cfg.IMAPAddr, cfg.IMAPUsername, cfg.IMAPPassword,
		cfg.IMAPMailbox, cfg.MailPollInterval, pipeline,
	)

	log.Printf("Starting mail poller against %s every %s", cfg.IMAPAddr, cfg.MailPollInterval)
	poller.Run(ctx)
}
