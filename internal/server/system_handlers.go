package server

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/aristath/portfolio-tracker/internal/database"
	"github.com/aristath/portfolio-tracker/internal/scheduler"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// PortfolioCounter reports how many portfolios are stored
type PortfolioCounter interface {
	Count(ctx context.Context) (int, error)
}

// QuotaReporter reports the quote provider's remaining daily budget
type QuotaReporter interface {
	GetRemainingRequests() int
}

// JobStatusReporter reports background job outcomes
type JobStatusReporter interface {
	Status() []scheduler.JobStatus
}

// SystemHandlers serves operational status
type SystemHandlers struct {
	log        zerolog.Logger
	db         *database.DB
	portfolios PortfolioCounter
	quota      QuotaReporter
	jobs       JobStatusReporter
	startedAt  time.Time
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(
	log zerolog.Logger,
	db *database.DB,
	portfolios PortfolioCounter,
	quota QuotaReporter,
	jobs JobStatusReporter,
) *SystemHandlers {
	return &SystemHandlers{
		log:        log.With().Str("handler", "system").Logger(),
		db:         db,
		portfolios: portfolios,
		quota:      quota,
		jobs:       jobs,
		startedAt:  time.Now(),
	}
}

// HealthDetailsResponse is the body of GET /health/details
type HealthDetailsResponse struct {
	Status         string                `json:"status"`
	UptimeSeconds  int64                 `json:"uptime_seconds"`
	CPUPercent     float64               `json:"cpu_percent"`
	MemoryPercent  float64               `json:"memory_percent"`
	Goroutines     int                   `json:"goroutines"`
	Database       *database.Stats       `json:"database,omitempty"`
	Portfolios     int                   `json:"portfolios"`
	QuotesLeft     int                   `json:"quote_requests_remaining"`
	Jobs           []scheduler.JobStatus `json:"jobs"`
	DatabaseStatus string                `json:"database_status"`
}

// HandleHealthDetails returns process, host and database status
func (h *SystemHandlers) HandleHealthDetails(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.getSystemStats()

	resp := HealthDetailsResponse{
		Status:         "ok",
		UptimeSeconds:  int64(time.Since(h.startedAt).Seconds()),
		CPUPercent:     cpuPercent,
		MemoryPercent:  memPercent,
		Goroutines:     runtime.NumGoroutine(),
		DatabaseStatus: "ok",
		Jobs:           []scheduler.JobStatus{},
	}

	if err := h.db.QuickCheck(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("Database health check failed")
		resp.Status = "degraded"
		resp.DatabaseStatus = err.Error()
	} else if stats, err := h.db.GetStats(); err != nil {
		h.log.Warn().Err(err).Msg("Failed to get database stats")
	} else {
		resp.Database = stats
	}

	if h.portfolios != nil {
		if n, err := h.portfolios.Count(r.Context()); err == nil {
			resp.Portfolios = n
		} else {
			h.log.Warn().Err(err).Msg("Failed to count portfolios")
		}
	}
	if h.quota != nil {
		resp.QuotesLeft = h.quota.GetRemainingRequests()
	}
	if h.jobs != nil {
		resp.Jobs = h.jobs.Status()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// getSystemStats calculates CPU and RAM usage percentages
// Samples CPU for 100ms so the request stays fast
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}
