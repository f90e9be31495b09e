package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusError_HTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, NewBadRequest("bad").HTTPStatus())
	assert.Equal(t, http.StatusUnauthorized, NewUnauthorized("nope").HTTPStatus())
	assert.Equal(t, http.StatusNotFound, NewNotFound("missing").HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, NewInternal("boom", nil).HTTPStatus())
}

func TestStatusError_Message(t *testing.T) {
	err := NewNotFound("unknown franchise")
	assert.Equal(t, "unknown franchise", err.Message)
	assert.Contains(t, err.Error(), "NOT_FOUND")
}

func TestNewInternal_KeepsCause(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := NewInternal("unable to delete franchise", cause)
	assert.Equal(t, "connection reset", err.Details)
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, StatusUnauthorized, StatusOf(NewUnauthorized("nope")))
	assert.Equal(t, StatusInternal, StatusOf(stderrors.New("driver error")))

	// Classification survives wrapping.
	wrapped := fmt.Errorf("add user: %w", NewNotFound("missing"))
	assert.Equal(t, StatusNotFound, StatusOf(wrapped))
	assert.True(t, IsStatus(wrapped, StatusNotFound))
	assert.False(t, IsStatus(wrapped, StatusBadRequest))
}
