package domainerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapPreservesChain(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeUnavailable, "tenant database unreachable")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodeUnavailable, CodeOf(err))
	assert.True(t, HasCode(err, CodeUnavailable))
	assert.False(t, HasCode(err, CodeNotFound))
}

func TestCodeOfUncoded(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "not_found: unknown tenant database",
		New(CodeNotFound, "unknown tenant database").Error())

	wrapped := Wrap(errors.New("no rows"), CodeNotFound, "partner missing")
	assert.Contains(t, wrapped.Error(), "no rows")
}

func TestHasCodeFindsNestedCode(t *testing.T) {
	inner := New(CodeConflict, "duplicate partner")
	outer := Wrap(inner, CodeInternal, "save partner")

	// The outermost code wins; nested codes do not leak through.
	assert.Equal(t, CodeInternal, CodeOf(outer))
}
