package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCodeAndMessage(t *testing.T) {
	notFound := New(http.StatusNotFound, "room not found")
	wrapped := fmt.Errorf("lookup: %w", notFound)

	assert.Equal(t, http.StatusNotFound, StatusCode(wrapped))
	assert.Equal(t, "room not found", Message(wrapped, "oops"))

	plain := errors.New("connection reset")
	assert.Equal(t, http.StatusInternalServerError, StatusCode(plain))
	assert.Equal(t, "oops", Message(plain, "oops"))
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(cause, http.StatusServiceUnavailable, "try again later")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "try again later", err.Error())
}
