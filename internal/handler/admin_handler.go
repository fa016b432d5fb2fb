package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"spotly/internal/service"
)

// AdminHandler handles user management and platform analytics.
type AdminHandler struct {
	admin service.AdminService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(admin service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// Users godoc
// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param role query string false "Role"
// @Param search query string false "Name or email"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/users [get]
func (h *AdminHandler) Users(c echo.Context) error {
	var q service.UserQuery
	if err := c.Bind(&q); err != nil {
		return err
	}

	users, page, err := h.admin.ListUsers(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return ok(c, echo.Map{"users": users, "pagination": page})
}

// Analytics godoc
// @Summary Platform analytics
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=service.PlatformAnalytics}
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/analytics [get]
func (h *AdminHandler) Analytics(c echo.Context) error {
	analytics, err := h.admin.Analytics(c.Request().Context())
	if err != nil {
		return err
	}
	return ok(c, analytics)
}

// ToggleUserActive godoc
// @Summary Activate or deactivate a user
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/users/{id}/toggle-active [put]
func (h *AdminHandler) ToggleUserActive(c echo.Context) error {
	id, err := pathID(c, "id", service.ErrUserNotFound)
	if err != nil {
		return err
	}

	user, err := h.admin.ToggleUserActive(c.Request().Context(), actor(c), id)
	if err != nil {
		return err
	}
	state := "deactivated"
	if user.IsActive {
		state = "activated"
	}
	return respond(c, http.StatusOK, "User "+state+" successfully", echo.Map{"user": user})
}
