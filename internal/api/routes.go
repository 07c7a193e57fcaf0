// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"crypto/subtle"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/elite-status-check/backend/internal/inara"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Status   StatusSource
	Cargo    CargoSource
	Journal  JournalSource
	Tracker  SystemTracker
	Inara    inara.Service
	APIToken string
	Version  string
}

// Handlers holds all handler instances
type Handlers struct {
	Health  HealthHandler
	Status  StatusHandler
	Cargo   CargoHandler
	Journal JournalHandler
	Inara   InaraHandler
	Stream  *StreamHub

	apiToken string
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(deps.Version, deps.Status, deps.Journal, deps.Inara),
		Status:   NewStatusHandler(deps.Status),
		Cargo:    NewCargoHandler(deps.Cargo),
		Journal:  NewJournalHandler(deps.Journal, deps.Tracker),
		Inara:    NewInaraHandler(deps.Inara),
		Stream:   NewStreamHub(deps.Status),
		apiToken: deps.APIToken,
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	// Health check
	e.GET("/health", handlers.Health.HandleHealth)

	apiGroup := e.Group("/api/v1")
	if handlers.apiToken != "" {
		apiGroup.Use(keyAuthMiddleware(handlers.apiToken))
	}

	// Ship status routes
	statusGroup := apiGroup.Group("/status")
	statusGroup.GET("", handlers.Status.HandleGetStatus)
	statusGroup.GET("/flags", handlers.Status.HandleGetFlags)
	statusGroup.GET("/flags/msgpack", handlers.Status.HandleGetFlagsMsgpack)
	statusGroup.GET("/flags/:name", handlers.Status.HandleGetFlag)
	statusGroup.GET("/stream", handlers.Stream.HandleStatusStream)

	// Cargo routes
	apiGroup.GET("/cargo", handlers.Cargo.HandleGetCargo)

	// Journal routes
	journalGroup := apiGroup.Group("/journal")
	journalGroup.GET("/current-system", handlers.Journal.HandleCurrentSystem)
	journalGroup.GET("/events", handlers.Journal.HandleEvents)
	journalGroup.GET("/events/types", handlers.Journal.HandleEventTypes)

	// Inara proxy routes
	inaraGroup := apiGroup.Group("/inara")
	inaraGroup.GET("/health", handlers.Inara.HandleInaraHealth)
	inaraGroup.GET("/commander/:name/profile", handlers.Inara.HandleCommanderProfile)
	inaraGroup.GET("/commander/:name/ships", handlers.Inara.HandleCommanderShips)
	inaraGroup.GET("/commander/:name/current-ship", handlers.Inara.HandleCurrentShip)
	inaraGroup.GET("/system/:name/factions", handlers.Inara.HandleSystemFactions)
	inaraGroup.GET("/system/:name/stations", handlers.Inara.HandleSystemStations)
	inaraGroup.GET("/station/:id/market", handlers.Inara.HandleStationMarket)
	inaraGroup.DELETE("/cache", handlers.Inara.HandleClearCache)
}

// keyAuthMiddleware guards the API group with a static X-API-Key token.
// The stream route is exempt; browser WebSocket clients cannot set headers.
func keyAuthMiddleware(token string) echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		KeyLookup: "header:X-API-Key",
		Skipper: func(c echo.Context) bool {
			return strings.HasSuffix(c.Path(), "/stream")
		},
		Validator: func(key string, c echo.Context) (bool, error) {
			return subtle.ConstantTimeCompare([]byte(key), []byte(token)) == 1, nil
		},
	})
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo) {
	// Use custom error handler
	e.HTTPErrorHandler = ErrorHandler
}
