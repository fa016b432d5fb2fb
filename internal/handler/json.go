package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
)

// JSONSerializer is echo's JSON codec backed by goccy/go-json. Request bodies
// are decoded strictly: unknown fields are rejected.
type JSONSerializer struct{}

var _ echo.JSONSerializer = JSONSerializer{}

// Serialize writes i to the response.
func (JSONSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := json.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

// Deserialize reads the request body into i.
func (JSONSerializer) Deserialize(c echo.Context, i interface{}) error {
	return decodeStrict(c.Request().Body, i)
}

// decodeStrict decodes one JSON document, rejecting unknown fields.
func decodeStrict(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	err := dec.Decode(v)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &typeErr):
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("Invalid value for field %s: expected %v", typeErr.Field, typeErr.Type)).SetInternal(err)
	case errors.As(err, &syntaxErr):
		return echo.NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("Malformed JSON at offset %d", syntaxErr.Offset)).SetInternal(err)
	case errors.Is(err, io.EOF):
		return echo.NewHTTPError(http.StatusBadRequest, "Request body is empty").SetInternal(err)
	}
	msg := strings.TrimPrefix(err.Error(), "json: ")
	return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body: "+msg).SetInternal(err)
}
