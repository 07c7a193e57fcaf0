// handlers_cargo.go - Cargo manifest handlers
package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/elite-status-check/backend/internal/cargo"
)

// CargoHandlerImpl implements the CargoHandler interface
type CargoHandlerImpl struct {
	source CargoSource
}

// NewCargoHandler creates a new cargo handler instance
func NewCargoHandler(source CargoSource) CargoHandler {
	return &CargoHandlerImpl{source: source}
}

// HandleGetCargo returns the commander's current cargo manifest
func (h *CargoHandlerImpl) HandleGetCargo(c echo.Context) error {
	manifest, err := h.source.Read()
	if err != nil {
		switch {
		case errors.Is(err, cargo.ErrNotAvailable):
			return NewServiceUnavailableError("cargo not available yet")
		case errors.Is(err, cargo.ErrMalformed):
			return NewInternalError("failed to parse cargo file", err)
		default:
			return NewInternalError("failed to read cargo file", err)
		}
	}

	return c.JSON(http.StatusOK, manifest)
}
