package handler

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "spotly/internal/errors"
	"spotly/internal/model"
	"spotly/internal/service"
	"spotly/internal/storage"
)

// SpotHandler handles spot discovery and management.
type SpotHandler struct {
	spots service.SpotService
	store storage.ImageStore
}

// NewSpotHandler creates a new spot handler.
func NewSpotHandler(spots service.SpotService, store storage.ImageStore) *SpotHandler {
	return &SpotHandler{spots: spots, store: store}
}

// StatusRequest carries a moderation decision.
type StatusRequest struct {
	Status model.ModerationStatus `json:"status" validate:"required"`
}

// List godoc
// @Summary List approved spots
// @Tags spots
// @Produce json
// @Param category query string false "Category"
// @Param priceRange query string false "Price tier"
// @Param minRating query number false "Minimum rating"
// @Param city query string false "City (partial match)"
// @Param search query string false "Text search over name, description and tags"
// @Param sort query string false "createdAt|rating|reviewCount|views|name, prefix - for descending"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Router /spots [get]
func (h *SpotHandler) List(c echo.Context) error {
	var q service.SpotQuery
	if err := c.Bind(&q); err != nil {
		return err
	}

	spots, page, err := h.spots.List(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return ok(c, echo.Map{"spots": spots, "pagination": page})
}

// Nearby godoc
// @Summary Spots near a point
// @Tags spots
// @Produce json
// @Param longitude query number true "Longitude"
// @Param latitude query number true "Latitude"
// @Param maxDistance query number false "Radius in meters (default 10000)"
// @Success 200 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Router /spots/nearby [get]
func (h *SpotHandler) Nearby(c echo.Context) error {
	lngRaw, latRaw := c.QueryParam("longitude"), c.QueryParam("latitude")
	if lngRaw == "" || latRaw == "" {
		return apperrors.BadRequest("Please provide longitude and latitude")
	}

	maxDistance := 0.0
	if raw := c.QueryParam("maxDistance"); raw != "" {
		maxDistance = parseFloat(raw)
	}

	spots, err := h.spots.Nearby(c.Request().Context(), parseFloat(lngRaw), parseFloat(latRaw), maxDistance)
	if err != nil {
		return err
	}
	return ok(c, echo.Map{"spots": spots})
}

// Get godoc
// @Summary Get a spot
// @Description Counts a view. Spots awaiting moderation are visible to their owner and admins only.
// @Tags spots
// @Produce json
// @Param id path string true "Spot ID"
// @Success 200 {object} Response
// @Failure 404 {object} errors.ErrorResponse
// @Router /spots/{id} [get]
func (h *SpotHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id", service.ErrSpotNotFound)
	if err != nil {
		return err
	}

	spot, err := h.spots.Get(c.Request().Context(), optionalActor(c), id)
	if err != nil {
		return err
	}
	return ok(c, echo.Map{"spot": spot})
}

// Create godoc
// @Summary Create a spot
// @Description Accepts JSON, or multipart with a data field holding the JSON document plus featuredImage and images files.
// @Tags spots
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param request body service.SpotInput true "Spot"
// @Success 201 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /spots [post]
func (h *SpotHandler) Create(c echo.Context) error {
	var in service.SpotInput
	featured, images, err := h.spotForm(c, &in)
	if err != nil {
		return err
	}
	if featured != "" {
		in.FeaturedImage = featured
	}
	in.Images = append(in.Images, images...)

	spot, err := h.spots.Create(c.Request().Context(), actor(c), in)
	if err != nil {
		h.store.Remove(append(images, featured)...)
		return err
	}
	return respond(c, http.StatusCreated, "Spot created successfully", echo.Map{"spot": spot})
}

// Update godoc
// @Summary Update a spot
// @Description Owner or admin. Uploaded images are appended to the gallery.
// @Tags spots
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param id path string true "Spot ID"
// @Param request body service.SpotUpdate true "Fields to change"
// @Success 200 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /spots/{id} [put]
func (h *SpotHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id", service.ErrSpotNotFound)
	if err != nil {
		return err
	}

	var in service.SpotUpdate
	featured, images, err := h.spotForm(c, &in)
	if err != nil {
		return err
	}
	if featured != "" {
		in.FeaturedImage = &featured
	}
	in.Images = append(in.Images, images...)

	spot, err := h.spots.Update(c.Request().Context(), actor(c), id, in)
	if err != nil {
		h.store.Remove(append(images, featured)...)
		return err
	}
	return respond(c, http.StatusOK, "Spot updated successfully", echo.Map{"spot": spot})
}

// Delete godoc
// @Summary Delete a spot
// @Tags spots
// @Produce json
// @Security BearerAuth
// @Param id path string true "Spot ID"
// @Success 200 {object} Response
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /spots/{id} [delete]
func (h *SpotHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id", service.ErrSpotNotFound)
	if err != nil {
		return err
	}

	if err := h.spots.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Spot deleted successfully", nil)
}

// Pending godoc
// @Summary Spots awaiting moderation
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} Response
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/spots/pending [get]
func (h *SpotHandler) Pending(c echo.Context) error {
	var q model.PageQuery
	if err := c.Bind(&q); err != nil {
		return err
	}

	spots, page, err := h.spots.ListPending(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return ok(c, echo.Map{"spots": spots, "pagination": page})
}

// UpdateStatus godoc
// @Summary Approve or reject a spot
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Spot ID"
// @Param request body StatusRequest true "approved or rejected"
// @Success 200 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/spots/{id}/status [put]
func (h *SpotHandler) UpdateStatus(c echo.Context) error {
	id, err := pathID(c, "id", service.ErrSpotNotFound)
	if err != nil {
		return err
	}
	var req StatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	spot, err := h.spots.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Spot "+string(spot.Status)+" successfully", echo.Map{"spot": spot})
}

// spotForm decodes a JSON body into v, or a multipart form whose data field
// holds the JSON document. Uploaded images are stored and their URLs returned.
func (h *SpotHandler) spotForm(c echo.Context, v any) (featured string, images []string, err error) {
	if !isMultipart(c) {
		return "", nil, c.Bind(v)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return "", nil, apperrors.BadRequest("Invalid multipart form")
	}
	if data := form.Value["data"]; len(data) > 0 && strings.TrimSpace(data[0]) != "" {
		if err := decodeStrict(strings.NewReader(data[0]), v); err != nil {
			return "", nil, err
		}
	}

	if fhs := form.File["featuredImage"]; len(fhs) > 0 {
		if featured, err = h.store.Save(storage.FolderSpots, fhs[0]); err != nil {
			return "", nil, err
		}
	}
	if fhs := append(form.File["images"], form.File["images[]"]...); len(fhs) > 0 {
		if images, err = h.store.SaveAll(storage.FolderSpots, fhs); err != nil {
			h.store.Remove(featured)
			return "", nil, err
		}
	}
	return featured, images, nil
}

// parseFloat returns NaN for malformed input so range checks reject it.
func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
