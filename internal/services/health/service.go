package health

import (
	"context"
	"database/sql"
	"time"
)

// Service encapsulates health-related checks.
type Service struct {
	db *sql.DB
}

// NewService constructs a new health service. A nil database means the
// in-memory stores are in use and the store check always passes.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// Status reports overall health and the store the API is running against.
func (s *Service) Status(ctx context.Context) map[string]any {
	if s.db == nil {
		return map[string]any{"ok": true, "store": "memory"}
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.db.PingContext(pingCtx); err != nil {
		return map[string]any{"ok": false, "store": "postgres", "error": err.Error()}
	}
	return map[string]any{"ok": true, "store": "postgres"}
}
