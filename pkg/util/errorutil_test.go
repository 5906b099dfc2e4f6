package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	wrapped := fmt.Errorf("login: %w", ErrInvalidCredentials)
	assert.ErrorIs(t, wrapped, ErrInvalidCredentials)
	assert.NotErrorIs(t, wrapped, ErrSessionInvalid)

	copied := NewDomainError(CodeEmailTaken, "other text", http.StatusConflict, nil)
	assert.ErrorIs(t, copied, ErrEmailTaken)
}

func TestNewInvalidInput(t *testing.T) {
	err := NewInvalidInput("email", "bad email")
	de := ToDomainError(err)
	assert.Equal(t, CodeInvalidInput, de.Code)
	assert.Equal(t, http.StatusBadRequest, de.HTTPStatus)
	assert.Equal(t, "email", de.Details["field"])

	assert.Nil(t, ToDomainError(NewInvalidInput("", "bad")).Details)
}

func TestInternalErrorHidesCause(t *testing.T) {
	cause := errors.New("pq: connection refused")
	de := ToDomainError(NewInternalError(cause))
	assert.Equal(t, CodeInternal, de.Code)
	assert.Equal(t, MsgInternal, de.Message)
	assert.ErrorIs(t, de, cause)
}

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{name: "fiber not found", err: fiber.ErrNotFound, wantCode: CodeNotFound, wantStatus: http.StatusNotFound},
		{name: "fiber too many", err: fiber.ErrTooManyRequests, wantCode: CodeRateLimited, wantStatus: http.StatusTooManyRequests},
		{name: "body too large", err: fiber.ErrRequestEntityTooLarge, wantCode: CodeInvalidInput, wantStatus: http.StatusRequestEntityTooLarge},
		{name: "bad request", err: fiber.ErrBadRequest, wantCode: CodeInvalidInput, wantStatus: http.StatusBadRequest},
		{name: "method not allowed", err: fiber.ErrMethodNotAllowed, wantCode: "Method Not Allowed", wantStatus: http.StatusMethodNotAllowed},
		{name: "fiber 5xx", err: fiber.ErrServiceUnavailable, wantCode: CodeInternal, wantStatus: http.StatusInternalServerError},
		{name: "plain error", err: errors.New("boom"), wantCode: CodeInternal, wantStatus: http.StatusInternalServerError},
		{name: "wrapped domain", err: fmt.Errorf("x: %w", ErrUserGone), wantCode: CodeUserGone, wantStatus: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			de := ToDomainError(tt.err)
			require.NotNil(t, de)
			assert.Equal(t, tt.wantCode, de.Code)
			assert.Equal(t, tt.wantStatus, de.HTTPStatus)
		})
	}

	assert.Nil(t, ToDomainError(nil))
}

func TestRateLimitedAndNotFound(t *testing.T) {
	assert.Equal(t, http.StatusTooManyRequests, ToDomainError(NewRateLimited()).HTTPStatus)
	assert.Equal(t, http.StatusNotFound, ToDomainError(NewNotFound(MsgNotFound)).HTTPStatus)
}
