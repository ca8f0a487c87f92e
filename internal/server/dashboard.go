package server

import (
	"context"
	"net/http"
	"time"

	"github.com/rickgao/portfolio-tracker/internal/analytics"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	since := s.now().AddDate(0, 0, -analytics.CashFlowDays)
	snap, err := s.store.DashboardSnapshot(r.Context(), since, s.cfg.MarketIndices)
	if err != nil {
		s.storeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, analytics.BuildDashboard(snap))
}

func (s *Server) handleLastRefresh(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		s.writeError(w, http.StatusNotFound, "no refresh cycle has completed")
		return
	}
	report, ok := s.reports.LastReport()
	if !ok {
		s.writeError(w, http.StatusNotFound, "no refresh cycle has completed")
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

// handleHealth reports database connectivity and the last refresh cycle.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := struct {
		Status     string         `json:"status"`
		Components map[string]any `json:"components"`
	}{
		Status:     "healthy",
		Components: make(map[string]any),
	}

	// Check database
	if err := s.store.Ping(ctx); err != nil {
		health.Status = "unhealthy"
		health.Components["database"] = map[string]string{
			"status": "disconnected",
			"error":  err.Error(),
		}
	} else {
		health.Components["database"] = "connected"
	}

	// Check refresher
	switch {
	case s.reports == nil:
		health.Components["refresher"] = "disabled"
	default:
		report, ok := s.reports.LastReport()
		if !ok {
			health.Components["refresher"] = "pending"
			break
		}
		health.Components["refresher"] = map[string]any{
			"cycle_id":    report.ID,
			"finished_at": report.FinishedAt,
			"refreshed":   report.Succeeded(),
			"errors":      report.Failed(),
		}
		if report.Failed() > 0 && report.Succeeded() == 0 && health.Status == "healthy" {
			health.Status = "degraded"
		}
	}

	status := http.StatusOK
	if health.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, health)
}
