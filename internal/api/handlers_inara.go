// handlers_inara.go - Inara proxy handlers
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/elite-status-check/backend/internal/inara"
)

// InaraHandlerImpl implements the InaraHandler interface
type InaraHandlerImpl struct {
	svc inara.Service
}

// NewInaraHandler creates a new Inara handler instance
func NewInaraHandler(svc inara.Service) InaraHandler {
	return &InaraHandlerImpl{svc: svc}
}

func (h *InaraHandlerImpl) service() (inara.Service, error) {
	if h.svc == nil {
		return nil, NewServiceUnavailableError("Inara integration is disabled")
	}
	return h.svc, nil
}

// HandleInaraHealth reports whether the Inara integration is enabled and
// which client flavor backs it
func (h *InaraHandlerImpl) HandleInaraHealth(c echo.Context) error {
	svc, err := h.service()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"mode":   svc.Mode(),
	})
}

// HandleCommanderProfile returns a commander's public Inara profile
func (h *InaraHandlerImpl) HandleCommanderProfile(c echo.Context) error {
	svc, err := h.service()
	if err != nil {
		return err
	}

	name := c.Param("name")
	profile, err := svc.CommanderProfile(c.Request().Context(), name)
	if err != nil {
		return inaraError(err, "commander", name)
	}
	return c.JSON(http.StatusOK, profile)
}

// HandleCommanderShips returns a commander's ship list
func (h *InaraHandlerImpl) HandleCommanderShips(c echo.Context) error {
	svc, err := h.service()
	if err != nil {
		return err
	}

	name := c.Param("name")
	ships, err := svc.CommanderShips(c.Request().Context(), name)
	if err != nil {
		return inaraError(err, "commander", name)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"ships": ships,
	})
}

// HandleCurrentShip returns the ship a commander is currently flying
func (h *InaraHandlerImpl) HandleCurrentShip(c echo.Context) error {
	svc, err := h.service()
	if err != nil {
		return err
	}

	name := c.Param("name")
	ship, err := svc.CurrentShip(c.Request().Context(), name)
	if err != nil {
		return inaraError(err, "current ship", name)
	}
	return c.JSON(http.StatusOK, ship)
}

// HandleSystemFactions returns the factions present in a star system
func (h *InaraHandlerImpl) HandleSystemFactions(c echo.Context) error {
	svc, err := h.service()
	if err != nil {
		return err
	}

	system := c.Param("name")
	factions, err := svc.SystemFactions(c.Request().Context(), system)
	if err != nil {
		return inaraError(err, "system", system)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"systemName": system,
		"factions":   factions,
	})
}

// HandleSystemStations returns the stations in a star system
func (h *InaraHandlerImpl) HandleSystemStations(c echo.Context) error {
	svc, err := h.service()
	if err != nil {
		return err
	}

	system := c.Param("name")
	stations, err := svc.SystemStations(c.Request().Context(), system)
	if err != nil {
		return inaraError(err, "system", system)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"systemName": system,
		"stations":   stations,
	})
}

// HandleStationMarket returns the commodity market of one station
func (h *InaraHandlerImpl) HandleStationMarket(c echo.Context) error {
	svc, err := h.service()
	if err != nil {
		return err
	}

	stationID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return NewBadRequestError("invalid station id", err)
	}

	market, err := svc.StationMarket(c.Request().Context(), stationID)
	if err != nil {
		return inaraError(err, "station", c.Param("id"))
	}
	return c.JSON(http.StatusOK, market)
}

// HandleClearCache drops all cached Inara responses
func (h *InaraHandlerImpl) HandleClearCache(c echo.Context) error {
	svc, err := h.service()
	if err != nil {
		return err
	}

	svc.ClearCache()
	return c.JSON(http.StatusOK, map[string]string{"status": "cache cleared"})
}

// inaraError maps Inara client errors onto API errors.
func inaraError(err error, resource, id string) error {
	var apiErr *inara.APIError
	switch {
	case errors.Is(err, inara.ErrRateLimited):
		return NewTooManyRequestsError("Inara rate limit reached, try again later")
	case errors.Is(err, inara.ErrAuthentication):
		return NewBadGatewayError("Inara authentication failed", err)
	case errors.Is(err, inara.ErrNoData):
		return NewNotFoundError(resource, id)
	case errors.As(err, &apiErr):
		return NewBadGatewayError("Inara request rejected", apiErr)
	default:
		return NewBadGatewayError("Inara request failed", err)
	}
}
