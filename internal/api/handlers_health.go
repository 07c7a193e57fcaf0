// handlers_health.go - Health check handlers
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/elite-status-check/backend/internal/inara"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version string
	started time.Time
	status  StatusSource
	journal JournalSource
	inara   inara.Service
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, status StatusSource, journal JournalSource, svc inara.Service) HealthHandler {
	return &HealthHandlerImpl{
		version: version,
		started: time.Now(),
		status:  status,
		journal: journal,
		inara:   svc,
	}
}

// HandleHealth returns server health status and component readiness
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	inaraMode := "disabled"
	if h.inara != nil {
		inaraMode = h.inara.Mode()
	}

	resp := map[string]interface{}{
		"status":         "ok",
		"version":        h.version,
		"uptimeSeconds":  int64(time.Since(h.started).Seconds()),
		"journalEnabled": h.journal != nil,
		"inara":          inaraMode,
	}
	if h.status != nil {
		resp["statusReady"] = h.status.Populated()
	}
	return c.JSON(http.StatusOK, resp)
}
