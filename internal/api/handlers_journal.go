// handlers_journal.go - Journal query handlers
package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// JournalHandlerImpl implements the JournalHandler interface
type JournalHandlerImpl struct {
	store   JournalSource
	tracker SystemTracker
}

// NewJournalHandler creates a new journal handler instance
func NewJournalHandler(store JournalSource, tracker SystemTracker) JournalHandler {
	return &JournalHandlerImpl{
		store:   store,
		tracker: tracker,
	}
}

// HandleCurrentSystem returns the star system from the newest jump event.
// The live follower answers first, the event store covers restarts.
func (h *JournalHandlerImpl) HandleCurrentSystem(c echo.Context) error {
	if h.tracker != nil {
		if system, ok := h.tracker.CurrentSystem(); ok {
			return c.JSON(http.StatusOK, map[string]string{
				"starSystem": system,
				"source":     "live",
			})
		}
	}

	if h.store == nil {
		return NewServiceUnavailableError("journal capture is disabled")
	}

	system, err := h.store.LatestSystem(c.Request().Context())
	if err != nil {
		return NewInternalError("failed to query journal", err)
	}
	if system == "" {
		return NewServiceUnavailableError("no star system recorded yet")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"starSystem": system,
		"source":     "store",
	})
}

// HandleEvents returns a page of recorded journal events, newest first
func (h *JournalHandlerImpl) HandleEvents(c echo.Context) error {
	if h.store == nil {
		return NewServiceUnavailableError("journal capture is disabled")
	}

	// Parse pagination params
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.QueryParam("pageSize"))
	if pageSize < 1 || pageSize > 1000 {
		pageSize = 100
	}
	event := c.QueryParam("event")

	result, err := h.store.Events(c.Request().Context(), page, pageSize, event)
	if err != nil {
		return NewInternalError("failed to query journal events", err)
	}

	return c.JSON(http.StatusOK, result)
}

// HandleEventTypes returns per-event-name counts across the recorded journal
func (h *JournalHandlerImpl) HandleEventTypes(c echo.Context) error {
	if h.store == nil {
		return NewServiceUnavailableError("journal capture is disabled")
	}

	counts, err := h.store.EventTypeCounts(c.Request().Context())
	if err != nil {
		return NewInternalError("failed to query journal events", err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"types": counts,
	})
}
