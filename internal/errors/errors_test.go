package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindConflict, http.StatusBadRequest},
		{KindUnauthenticated, http.StatusUnauthorized},
		{KindInvalidCredential, http.StatusUnauthorized},
		{KindAccountDisabled, http.StatusUnauthorized},
		{KindForbidden, http.StatusForbidden},
		{KindNotFound, http.StatusNotFound},
		{KindUpstream, http.StatusBadGateway},
		{KindUnavailable, http.StatusServiceUnavailable},
		{KindInternal, http.StatusInternalServerError},
		{Kind("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.kind))
		})
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("create review: %w", Conflict("You have already reviewed this spot"))

	assert.Equal(t, KindConflict, KindOf(err))
	assert.True(t, Is(err, KindConflict))
	assert.False(t, Is(err, KindNotFound))
	assert.Equal(t, KindInternal, KindOf(stderrors.New("boom")))
	assert.False(t, Is(nil, KindInternal))
}

func TestAppError_Unwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Internal("Failed to load spot", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Failed to load spot: connection refused", err.Error())
}

func TestNewErrorResponse(t *testing.T) {
	err := Internal("Something went wrong!", stderrors.New("db down"))

	quiet := NewErrorResponse(err, false)
	assert.False(t, quiet.Success)
	assert.Empty(t, quiet.Error)

	verbose := NewErrorResponse(err, true)
	assert.Equal(t, "db down", verbose.Error)

	v := NewErrorResponse(Validation([]FieldError{{Field: "email", Message: "email is required"}}), false)
	assert.Equal(t, "Validation failed", v.Message)
	assert.Len(t, v.Errors, 1)
}
