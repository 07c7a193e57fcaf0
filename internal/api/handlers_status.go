// handlers_status.go - Ship status and flag decoding handlers
package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/elite-status-check/backend/internal/flags"
	"github.com/elite-status-check/backend/internal/models"
	"github.com/elite-status-check/backend/internal/status"
)

// StatusHandlerImpl implements the StatusHandler interface
type StatusHandlerImpl struct {
	source StatusSource
}

// NewStatusHandler creates a new status handler instance
func NewStatusHandler(source StatusSource) StatusHandler {
	return &StatusHandlerImpl{source: source}
}

// HandleGetStatus returns the latest raw status snapshot
func (h *StatusHandlerImpl) HandleGetStatus(c echo.Context) error {
	snap, err := h.source.Read()
	if err != nil {
		return statusError(err)
	}

	return c.JSON(http.StatusOK, models.StatusResponse{
		Status:     snap.Raw,
		ObservedAt: snap.ObservedAt,
	})
}

// HandleGetFlags returns every decoded status flag by name
func (h *StatusHandlerImpl) HandleGetFlags(c echo.Context) error {
	parsed, observedAt, err := h.source.ReadParsed()
	if err != nil {
		return statusError(err)
	}

	return c.JSON(http.StatusOK, models.FlagsResponse{
		Flags:      parsed,
		ObservedAt: observedAt,
	})
}

// HandleGetFlagsMsgpack returns decoded flags in MessagePack format
// for high-frequency polling clients.
func (h *StatusHandlerImpl) HandleGetFlagsMsgpack(c echo.Context) error {
	parsed, observedAt, err := h.source.ReadParsed()
	if err != nil {
		return statusError(err)
	}

	data, err := msgpack.Marshal(map[string]interface{}{
		"flags":      map[string]bool(parsed),
		"observedAt": observedAt,
	})
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}

	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleGetFlag returns a single named flag
func (h *StatusHandlerImpl) HandleGetFlag(c echo.Context) error {
	name := c.Param("name")
	if !flags.Known(name) {
		return NewNotFoundError("flag", name)
	}

	snap, err := h.source.Read()
	if err != nil {
		return statusError(err)
	}

	value, _ := flags.IsSet(name, snap.Flags, snap.Flags2)
	return c.JSON(http.StatusOK, models.FlagResponse{Name: name, Value: value})
}

// statusError maps cache read errors onto API errors.
func statusError(err error) error {
	if errors.Is(err, status.ErrNotYetAvailable) {
		return NewServiceUnavailableError("status not available yet")
	}
	return NewInternalError("failed to read status", err)
}
