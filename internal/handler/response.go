package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "spotly/internal/errors"
	"spotly/internal/middleware"
	"spotly/internal/service"
)

// Response is the success envelope shared by every endpoint.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respond(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Response{Success: true, Message: message, Data: data})
}

func ok(c echo.Context, data any) error {
	return respond(c, http.StatusOK, "", data)
}

// bind decodes the request into req and validates it.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return err
	}
	return c.Validate(req)
}

// pathID parses a uuid path parameter. Malformed ids cannot name a record,
// so they are reported as notFound.
func pathID(c echo.Context, name string, notFound *apperrors.AppError) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, notFound
	}
	return id, nil
}

// actor returns the authenticated caller. Routes using it run behind Gate.Mandatory.
func actor(c echo.Context) service.Actor {
	if a := optionalActor(c); a != nil {
		return *a
	}
	return service.Actor{}
}

func optionalActor(c echo.Context) *service.Actor {
	user := middleware.CurrentUser(c)
	if user == nil {
		return nil
	}
	return &service.Actor{ID: user.ID, Role: user.Role}
}

func isMultipart(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}
