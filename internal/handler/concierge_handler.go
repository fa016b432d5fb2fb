package handler

import (
	"github.com/labstack/echo/v4"

	"spotly/internal/concierge"
	"spotly/internal/service"
)

// ConciergeHandler exposes the AI concierge.
type ConciergeHandler struct {
	concierge service.ConciergeService
}

// NewConciergeHandler creates a new concierge handler.
func NewConciergeHandler(svc service.ConciergeService) *ConciergeHandler {
	return &ConciergeHandler{concierge: svc}
}

// Ask godoc
// @Summary Ask the concierge
// @Description chat answers free text; plan picks up to three spots. Falls back to local answers when the model is unavailable.
// @Tags ai
// @Accept json
// @Produce json
// @Param request body concierge.Request true "Question"
// @Success 200 {object} Response{data=concierge.Answer}
// @Failure 400 {object} errors.ErrorResponse
// @Router /ai/concierge [post]
func (h *ConciergeHandler) Ask(c echo.Context) error {
	var req concierge.Request
	if err := bind(c, &req); err != nil {
		return err
	}

	answer, err := h.concierge.Ask(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return ok(c, answer)
}

// Plan godoc
// @Summary Plan a day
// @Tags ai
// @Accept json
// @Produce json
// @Param request body service.ItineraryInput true "What the day should look like"
// @Success 200 {object} Response{data=service.Itinerary}
// @Failure 400 {object} errors.ErrorResponse
// @Router /ai/plan [post]
func (h *ConciergeHandler) Plan(c echo.Context) error {
	var in service.ItineraryInput
	if err := bind(c, &in); err != nil {
		return err
	}

	itinerary, err := h.concierge.Itinerary(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return ok(c, itinerary)
}
