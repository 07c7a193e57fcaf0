// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/elite-status-check/backend/internal/flags"
	"github.com/elite-status-check/backend/internal/models"
)

// StatusHandler handles ship status operations
type StatusHandler interface {
	HandleGetStatus(c echo.Context) error
	HandleGetFlags(c echo.Context) error
	HandleGetFlagsMsgpack(c echo.Context) error
	HandleGetFlag(c echo.Context) error
}

// CargoHandler handles cargo manifest operations
type CargoHandler interface {
	HandleGetCargo(c echo.Context) error
}

// JournalHandler handles journal query operations
type JournalHandler interface {
	HandleCurrentSystem(c echo.Context) error
	HandleEvents(c echo.Context) error
	HandleEventTypes(c echo.Context) error
}

// InaraHandler handles Inara proxy operations
type InaraHandler interface {
	HandleInaraHealth(c echo.Context) error
	HandleCommanderProfile(c echo.Context) error
	HandleCommanderShips(c echo.Context) error
	HandleCurrentShip(c echo.Context) error
	HandleSystemFactions(c echo.Context) error
	HandleSystemStations(c echo.Context) error
	HandleStationMarket(c echo.Context) error
	HandleClearCache(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// StatusSource is the read side of the status cache.
// This allows mocking in tests
type StatusSource interface {
	Read() (models.StatusSnapshot, error)
	ReadParsed() (flags.ParsedFlags, time.Time, error)
	LastError() error
	Populated() bool
	UpdateCount() int64
}

// CargoSource reads the commander's current cargo manifest.
type CargoSource interface {
	Read() (*models.CargoManifest, error)
}

// JournalSource queries recorded journal events.
type JournalSource interface {
	Events(ctx context.Context, page, pageSize int, event string) (*models.JournalEventsPage, error)
	EventTypeCounts(ctx context.Context) ([]models.EventTypeCount, error)
	LatestSystem(ctx context.Context) (string, error)
	Count(ctx context.Context) (int64, error)
}

// SystemTracker reports the star system the live journal follower last saw.
type SystemTracker interface {
	CurrentSystem() (string, bool)
}
