package main

import (
	"context"
	"log"

	"github.com/ayalaw/clickjob/internal/inbound"
	"github.com/ayalaw/clickjob/internal/shared/config"
	"github.com/ayalaw/clickjob/internal/shared/server"
)

func main() {
	cfg := config.Load()
	app := server.NewApp(cfg)

	if cfg.MailPollEnabled && cfg.IMAPAddr != "" {
		pipeline := inbound.NewPipeline(app.Candidates, app.Jobs, app.Apps)
		poller := inbound.NewPoller(
			cfg.IMAPAddr, cfg.IMAPUsername, cfg.IMAPPassword,
			cfg.IMAPMailbox, cfg.MailPollInterval, pipeline,
		)
		go poller.Run(context.Background())
	}

	addr := server.Addr(cfg.Port)
	log.Printf("Starting API server on %s", addr)

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
