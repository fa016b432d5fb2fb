package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "spotly/internal/errors"
	"spotly/internal/model"
	"spotly/internal/service"
	"spotly/internal/storage"
)

// ReviewHandler handles review endpoints.
type ReviewHandler struct {
	reviews service.ReviewService
	store   storage.ImageStore
}

// NewReviewHandler creates a new review handler.
func NewReviewHandler(reviews service.ReviewService, store storage.ImageStore) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, store: store}
}

// ListBySpot godoc
// @Summary Approved reviews of a spot
// @Tags reviews
// @Produce json
// @Param spotId path string true "Spot ID"
// @Param sort query string false "createdAt|rating|helpfulCount, prefix - for descending"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} Response
// @Router /reviews/spot/{spotId} [get]
func (h *ReviewHandler) ListBySpot(c echo.Context) error {
	spotID, err := pathID(c, "spotId", service.ErrSpotNotFound)
	if err != nil {
		return err
	}
	var q model.PageQuery
	if err := c.Bind(&q); err != nil {
		return err
	}

	reviews, page, err := h.reviews.ListBySpot(c.Request().Context(), spotID, c.QueryParam("sort"), q)
	if err != nil {
		return err
	}
	return ok(c, echo.Map{"reviews": reviews, "pagination": page})
}

// Create godoc
// @Summary Review a spot
// @Description Accepts JSON, or multipart with spot, rating and text fields plus up to 5 images.
// @Tags reviews
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param request body service.ReviewInput true "Review"
// @Success 201 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /reviews [post]
func (h *ReviewHandler) Create(c echo.Context) error {
	var in service.ReviewInput
	var uploaded []string
	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			return apperrors.BadRequest("Invalid multipart form")
		}
		in.SpotID = c.FormValue("spot")
		in.Text = c.FormValue("text")
		if raw := strings.TrimSpace(c.FormValue("rating")); raw != "" {
			if in.Rating, err = strconv.Atoi(raw); err != nil {
				return apperrors.Validation([]apperrors.FieldError{
					{Field: "rating", Message: "rating must be a whole number between 1 and 5"},
				})
			}
		}
		if fhs := append(form.File["images"], form.File["images[]"]...); len(fhs) > 0 {
			if uploaded, err = h.store.SaveAll(storage.FolderReviews, fhs); err != nil {
				return err
			}
		}
		in.Images = uploaded
	} else if err := c.Bind(&in); err != nil {
		return err
	}

	review, err := h.reviews.Create(c.Request().Context(), actor(c), in)
	if err != nil {
		h.store.Remove(uploaded...)
		return err
	}
	return respond(c, http.StatusCreated, "Review created successfully", echo.Map{"review": review})
}

// Update godoc
// @Summary Edit own review
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Param request body service.ReviewUpdate true "Fields to change"
// @Success 200 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /reviews/{id} [put]
func (h *ReviewHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id", service.ErrReviewNotFound)
	if err != nil {
		return err
	}
	var in service.ReviewUpdate
	if err := c.Bind(&in); err != nil {
		return err
	}

	review, err := h.reviews.Update(c.Request().Context(), actor(c), id, in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Review updated successfully", echo.Map{"review": review})
}

// Delete godoc
// @Summary Delete a review
// @Description Author or admin.
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Success 200 {object} Response
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /reviews/{id} [delete]
func (h *ReviewHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id", service.ErrReviewNotFound)
	if err != nil {
		return err
	}

	if err := h.reviews.Delete(c.Request().Context(), actor(c), id); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Review deleted successfully", nil)
}

// ToggleHelpful godoc
// @Summary Toggle a helpful vote
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Success 200 {object} Response{data=service.HelpfulResult}
// @Failure 404 {object} errors.ErrorResponse
// @Router /reviews/{id}/helpful [post]
func (h *ReviewHandler) ToggleHelpful(c echo.Context) error {
	id, err := pathID(c, "id", service.ErrReviewNotFound)
	if err != nil {
		return err
	}

	result, err := h.reviews.ToggleHelpful(c.Request().Context(), actor(c), id)
	if err != nil {
		return err
	}
	msg := "Removed from helpful"
	if result.Helpful {
		msg = "Marked as helpful"
	}
	return respond(c, http.StatusOK, msg, result)
}

// UpdateStatus godoc
// @Summary Moderate a review
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Param request body StatusRequest true "approved, pending or rejected"
// @Success 200 {object} Response
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/reviews/{id}/status [put]
func (h *ReviewHandler) UpdateStatus(c echo.Context) error {
	id, err := pathID(c, "id", service.ErrReviewNotFound)
	if err != nil {
		return err
	}
	var req StatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	review, err := h.reviews.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Review "+string(review.Status)+" successfully", echo.Map{"review": review})
}
