package router

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "spotly/internal/errors"
	"spotly/internal/logging"
)

const genericMessage = "Something went wrong!"

// ErrorHandler renders every error in the failure envelope. With verbose set,
// internal detail is included in the error field.
func ErrorHandler(verbose bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, resp := renderError(err, c, verbose)
		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, resp)
		}
		if writeErr != nil {
			logging.Ctx(c.Request().Context()).Error().Err(writeErr).Msg("failed to write error response")
		}
	}
}

func renderError(err error, c echo.Context, verbose bool) (int, apperrors.ErrorResponse) {
	if appErr, ok := apperrors.As(err); ok {
		status := appErr.StatusCode()
		resp := apperrors.NewErrorResponse(appErr, verbose)
		if status >= http.StatusInternalServerError {
			logUnexpected(c, err)
			if !verbose && appErr.Kind == apperrors.KindInternal {
				resp.Message = genericMessage
			}
		}
		return status, resp
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		resp := apperrors.ErrorResponse{Message: httpErrorMessage(he)}
		switch {
		case he.Code == http.StatusNotFound:
			resp.Message = fmt.Sprintf("Route %s not found", c.Request().URL.RequestURI())
		case he.Code >= http.StatusInternalServerError:
			logUnexpected(c, err)
		}
		if verbose && he.Internal != nil {
			resp.Error = he.Internal.Error()
		}
		return he.Code, resp
	}

	logUnexpected(c, err)
	resp := apperrors.ErrorResponse{Message: genericMessage}
	if verbose {
		resp.Error = err.Error()
	}
	return http.StatusInternalServerError, resp
}

func httpErrorMessage(he *echo.HTTPError) string {
	switch m := he.Message.(type) {
	case string:
		return m
	case error:
		return m.Error()
	case nil:
		return http.StatusText(he.Code)
	default:
		return fmt.Sprint(m)
	}
}

func logUnexpected(c echo.Context, err error) {
	req := c.Request()
	logging.Ctx(req.Context()).Error().
		Err(err).
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")
}
