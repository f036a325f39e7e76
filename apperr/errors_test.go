package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, NotFound, KindOf(New(NotFound, "challenge does not exist")))
	assert.Equal(t, InvalidArgument, KindOf(Newf(InvalidArgument, "bad type %q", "weekly")))

	// The kind survives further wrapping up the chain.
	wrapped := fmt.Errorf("claim: %w", New(FailedPrecondition, "already participated today"))
	assert.Equal(t, FailedPrecondition, KindOf(wrapped))

	assert.Equal(t, Unknown, KindOf(errors.New("disk full")))
	assert.Equal(t, Unknown, KindOf(nil))
}

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap(NotFound, "load post", nil))

	cause := errors.New("connection reset")
	err := Wrap(Unknown, "load post", cause)
	assert.Equal(t, Unknown, KindOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "caption too long", MessageOf(New(InvalidArgument, "caption too long")))
	assert.Equal(t, "internal error", MessageOf(errors.New("pq: deadlock detected")))
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{New(Unauthenticated, "missing user"), fiber.StatusUnauthorized},
		{New(InvalidArgument, "empty challenge id"), fiber.StatusBadRequest},
		{New(FailedPrecondition, "already participated today"), fiber.StatusUnprocessableEntity},
		{New(NotFound, "post does not exist"), fiber.StatusNotFound},
		{New(AlreadyExists, "already reported"), fiber.StatusConflict},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HTTPStatus(tc.err), tc.err)
	}
}
