package health

import (
	"context"
	"database/sql"
	"time"
)

const pingTimeout = 2 * time.Second

// Service reports liveness and the state of the SQL backend, if any.
type Service struct {
	DB       *sql.DB
	Provider string
	Model    string
}

// NewService constructs a new health service. db may be nil when the
// process runs on in-memory repositories.
func NewService(db *sql.DB, provider, model string) *Service {
	return &Service{DB: db, Provider: provider, Model: model}
}

// Status returns the health payload and whether the process is healthy.
func (s *Service) Status(ctx context.Context) (map[string]any, bool) {
	payload := map[string]any{
		"ok":       true,
		"provider": s.Provider,
		"model":    s.Model,
		"database": "memory",
	}
	if s.DB == nil {
		return payload, true
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.DB.PingContext(ctx); err != nil {
		payload["ok"] = false
		payload["database"] = "unreachable"
		return payload, false
	}
	payload["database"] = "ok"
	return payload, true
}
