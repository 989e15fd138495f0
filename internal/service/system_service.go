package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/stocktrackhq/stocktrack-backend/internal/database"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// SystemService reports process health and build information.
type SystemService struct {
	db        *sql.DB
	startedAt time.Time
}

// NewSystemService creates a new SystemService.
func NewSystemService(db *sql.DB) *SystemService {
	return &SystemService{db: db, startedAt: time.Now().UTC()}
}

// Health describes the service's current condition.
type Health struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Uptime   string `json:"uptime"`
	Database string `json:"database"`
}

// Check pings the database and reports overall health. Status is
// "degraded" rather than an error when the database is unreachable, so
// load balancers still get a parseable body.
func (s *SystemService) Check(ctx context.Context) Health {
	h := Health{
		Status:   "ok",
		Version:  Version,
		Uptime:   time.Since(s.startedAt).Round(time.Second).String(),
		Database: "ok",
	}
	if err := database.HealthCheck(s.db); err != nil {
		h.Status = "degraded"
		h.Database = err.Error()
	}
	return h
}
