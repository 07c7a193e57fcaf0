// Package inara provides a client for the Inara API: one POST endpoint
// taking an event envelope, answered with per-event status and payload.
// The live client adds rate limiting, response caching and retries; a
// mock client serves fixture data for offline use.
package inara

import (
	"context"
	"errors"
	"fmt"

	"github.com/elite-status-check/backend/internal/models"
)

var (
	// ErrRateLimited means Inara rejected the request with HTTP 429.
	ErrRateLimited = errors.New("inara rate limit exceeded")

	// ErrAuthentication means the API key or commander was rejected.
	ErrAuthentication = errors.New("inara authentication failed")

	// ErrNoData means the lookup succeeded but returned no payload.
	ErrNoData = errors.New("inara returned no data")
)

// APIError carries an upstream error status and its text.
type APIError struct {
	Code int
	Text string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("inara API error %d: %s", e.Code, e.Text)
}

// Service is the lookup surface the HTTP handlers consume. Implemented by
// Client (live) and MockClient (fixtures).
type Service interface {
	CommanderProfile(ctx context.Context, name string) (*models.CommanderProfile, error)
	CommanderShips(ctx context.Context, name string) ([]models.ShipLoadout, error)
	CurrentShip(ctx context.Context, name string) (*models.ShipLoadout, error)
	SystemFactions(ctx context.Context, system string) ([]models.SystemFaction, error)
	SystemStations(ctx context.Context, system string) ([]models.Station, error)
	StationMarket(ctx context.Context, stationID int) (*models.StationMarket, error)
	ClearCache()
	Mode() string
}
