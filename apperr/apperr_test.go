package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, Conflict, KindOf(New(Conflict, "stale read")))
	assert.Equal(t, NotFound, KindOf(Newf(NotFound, "task %d not found", 7)))

	// Wrapped classified errors keep their kind through fmt wrapping.
	inner := Wrap(Authorization, "denied", errors.New("db says no"))
	outer := fmt.Errorf("while transitioning: %w", inner)
	assert.Equal(t, Authorization, KindOf(outer))
	assert.True(t, IsKind(outer, Authorization))
	assert.False(t, IsKind(outer, Conflict))

	// Unclassified errors default to transient backend failures.
	assert.Equal(t, Transient, KindOf(errors.New("connection reset")))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("row missing")
	err := Wrap(NotFound, "task lookup", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "task lookup")
	assert.Contains(t, err.Error(), "row missing")
}
