package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"spotly/internal/service"
)

// BusinessHandler handles spot claims and the owner dashboard.
type BusinessHandler struct {
	business service.BusinessService
}

// NewBusinessHandler creates a new business handler.
func NewBusinessHandler(business service.BusinessService) *BusinessHandler {
	return &BusinessHandler{business: business}
}

// Claim godoc
// @Summary Claim a spot
// @Description The first claim creates the business profile and promotes the caller to business_owner.
// @Tags business
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param spotId path string true "Spot ID"
// @Param request body service.ClaimInput false "Business profile, required on the first claim"
// @Success 200 {object} Response{data=service.ClaimResult}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /business/claim/{spotId} [post]
func (h *BusinessHandler) Claim(c echo.Context) error {
	spotID, err := pathID(c, "spotId", service.ErrSpotNotFound)
	if err != nil {
		return err
	}
	var in service.ClaimInput
	if err := c.Bind(&in); err != nil {
		return err
	}

	result, err := h.business.Claim(c.Request().Context(), actor(c), spotID, in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Business claim request submitted. Awaiting admin approval.", result)
}

// Dashboard godoc
// @Summary Owner dashboard
// @Tags business
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=service.Dashboard}
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /business/dashboard [get]
func (h *BusinessHandler) Dashboard(c echo.Context) error {
	dashboard, err := h.business.Dashboard(c.Request().Context(), actor(c).ID)
	if err != nil {
		return err
	}
	return ok(c, dashboard)
}

// Spots godoc
// @Summary Spots owned by the caller
// @Tags business
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response
// @Failure 403 {object} errors.ErrorResponse
// @Router /business/spots [get]
func (h *BusinessHandler) Spots(c echo.Context) error {
	spots, err := h.business.OwnedSpots(c.Request().Context(), actor(c).ID)
	if err != nil {
		return err
	}
	return ok(c, echo.Map{"spots": spots})
}
