package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestKindAndStatus(t *testing.T) {
	tests := []struct {
		err    error
		kind   Kind
		status int
	}{
		{Validation("request not pending"), KindValidation, fiber.StatusUnprocessableEntity},
		{NotFound("approval request", 7), KindNotFound, fiber.StatusNotFound},
		{Forbidden("no permission to approve at this level"), KindForbidden, fiber.StatusForbidden},
		{Conflict("workflow %s already exists", "AT"), KindConflict, fiber.StatusConflict},
		{errors.New("boom"), KindInternal, fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.kind, KindOf(tt.err), tt.err.Error())
		assert.Equal(t, tt.status, HTTPStatus(tt.err))
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("create request: %w", Validation("no suitable approval level"))
	assert.True(t, Is(err, KindValidation))
	assert.False(t, Is(nil, KindValidation))

	wrapped := Wrap(NotFound("item", 3), "calculate price")
	assert.True(t, Is(wrapped, KindNotFound))
	assert.Equal(t, "calculate price: item 3 not found", Message(wrapped))
}

func TestMessageHidesInternalCause(t *testing.T) {
	err := Wrap(errors.New("dial tcp 10.0.0.1:5432: connection refused"), "load workflow")
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "load workflow", Message(err))
	assert.Equal(t, "internal server error", Message(errors.New("raw")))
	assert.Nil(t, Wrap(nil, "noop"))
}
