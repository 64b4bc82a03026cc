package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCarriesCodeAndMessage(t *testing.T) {
	err := New(CodeNotFound, "visit not found")

	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(err, CodeForbidden))
	assert.Equal(t, CodeNotFound, CodeOf(err))
	assert.Equal(t, "visit not found", MessageOf(err))
	assert.Equal(t, "not_found: visit not found", err.Error())
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "store unavailable")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodeInternal, CodeOf(err))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, CodeInternal, "ignored"))
}

func TestHasCodeFindsNestedCode(t *testing.T) {
	inner := New(CodeInvalidState, "visit is already approved")
	outer := fmt.Errorf("approve: %w", inner)

	assert.True(t, HasCode(outer, CodeInvalidState))
	assert.Equal(t, "visit is already approved", MessageOf(outer))
}

func TestNonDomainErrorDefaults(t *testing.T) {
	err := errors.New("plain")

	assert.Equal(t, CodeInternal, CodeOf(err))
	assert.Empty(t, MessageOf(err))
	assert.False(t, HasCode(err, CodeInternal))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeBadRequest:         http.StatusBadRequest,
		CodeValidation:         http.StatusBadRequest,
		CodeInvalidState:       http.StatusBadRequest,
		CodeUnauthorized:       http.StatusUnauthorized,
		CodeForbidden:          http.StatusForbidden,
		CodeNotFound:           http.StatusNotFound,
		CodeConflict:           http.StatusConflict,
		CodeConfigFault:        http.StatusInternalServerError,
		CodeInvariantViolation: http.StatusInternalServerError,
		CodeInternal:           http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), "code %s", code)
	}
}
