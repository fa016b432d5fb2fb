package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "spotly/internal/errors"
	"spotly/internal/service"
	"spotly/internal/storage"
)

// UserHandler handles the signed in user's profile and wishlist.
type UserHandler struct {
	users service.UserService
	store storage.ImageStore
}

// NewUserHandler creates a new user handler.
func NewUserHandler(users service.UserService, store storage.ImageStore) *UserHandler {
	return &UserHandler{users: users, store: store}
}

// Profile godoc
// @Summary Get profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/profile [get]
func (h *UserHandler) Profile(c echo.Context) error {
	user, err := h.users.Profile(c.Request().Context(), actor(c).ID)
	if err != nil {
		return err
	}
	return ok(c, echo.Map{"user": user})
}

// UpdateProfile godoc
// @Summary Update profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.ProfileInput true "Fields to change"
// @Success 200 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Router /users/profile [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var in service.ProfileInput
	if err := c.Bind(&in); err != nil {
		return err
	}

	user, err := h.users.UpdateProfile(c.Request().Context(), actor(c).ID, in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Profile updated successfully", echo.Map{"user": user})
}

// UpdateAvatar godoc
// @Summary Upload avatar
// @Tags users
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param avatar formData file true "Image"
// @Success 200 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Router /users/avatar [put]
func (h *UserHandler) UpdateAvatar(c echo.Context) error {
	fh, err := c.FormFile("avatar")
	if err != nil {
		return apperrors.BadRequest("Please upload an image")
	}
	url, err := h.store.Save(storage.FolderAvatars, fh)
	if err != nil {
		return err
	}

	user, err := h.users.UpdateAvatar(c.Request().Context(), actor(c).ID, url)
	if err != nil {
		h.store.Remove(url)
		return err
	}
	return respond(c, http.StatusOK, "Avatar updated successfully", echo.Map{"avatar": url, "user": user})
}

// SavedSpots godoc
// @Summary Saved spots
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response
// @Router /users/saved [get]
func (h *UserHandler) SavedSpots(c echo.Context) error {
	spots, err := h.users.SavedSpots(c.Request().Context(), actor(c).ID)
	if err != nil {
		return err
	}
	return ok(c, echo.Map{"savedSpots": spots})
}

// ToggleSaved godoc
// @Summary Save or unsave a spot
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param spotId path string true "Spot ID"
// @Success 200 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Router /users/saved/{spotId} [post]
func (h *UserHandler) ToggleSaved(c echo.Context) error {
	saved, err := h.users.ToggleSavedSpot(c.Request().Context(), actor(c).ID, c.Param("spotId"))
	if err != nil {
		return err
	}
	msg := "Spot removed from saved"
	if saved {
		msg = "Spot saved successfully"
	}
	return respond(c, http.StatusOK, msg, echo.Map{"saved": saved})
}
