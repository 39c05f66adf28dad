package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusAndMessage(t *testing.T) {
	cause := errors.New("disk full")

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", Validation("title is required"), http.StatusBadRequest, "title is required"},
		{"auth", Auth("token missing or invalid"), http.StatusUnauthorized, "token missing or invalid"},
		{"not found", NotFound("blog not found"), http.StatusNotFound, "blog not found"},
		{"internal", Internal("insert blog", cause), http.StatusInternalServerError, "internal server error"},
		{"unclassified", cause, http.StatusInternalServerError, "internal server error"},
		{"wrapped", fmt.Errorf("handler: %w", Auth("nope")), http.StatusUnauthorized, "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, Status(tt.err))
			assert.Equal(t, tt.message, Message(tt.err))
		})
	}
}

func TestInternalUnwrap(t *testing.T) {
	cause := errors.New("db down")
	err := Internal("list blogs", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "list blogs: db down", err.Error())
	assert.Equal(t, KindInternal, KindOf(err))
}
