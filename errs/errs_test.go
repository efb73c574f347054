package errs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewWrapsSentinel(t *testing.T) {
	err := New(Format, ErrBadMagic, "not a K8R1 recipe")
	assert.True(t, errors.Is(err, ErrBadMagic))
	assert.False(t, errors.Is(err, ErrChecksum))
}

func TestErrorStringIncludesKindAndDetail(t *testing.T) {
	err := New(Truncation, ErrTruncated, "while reading recipe waves")
	assert.Contains(t, err.Error(), "truncation")
	assert.Contains(t, err.Error(), "while reading recipe waves")
}

func TestErrorStringOmitsEmptyDetail(t *testing.T) {
	err := New(Validation, ErrInvalidRecipe, "")
	assert.Equal(t, "validation: invalid recipe", err.Error())
}

func TestAsRecoversKind(t *testing.T) {
	err := New(Capacity, ErrTickBudget, "")
	var e *Error
	assert.True(t, errors.As(err, &e))
	assert.Equal(t, Capacity, e.Kind)
}

func TestIsCapacity(t *testing.T) {
	assert.True(t, IsCapacity(New(Capacity, ErrNoLegalWindow, "")))
	assert.False(t, IsCapacity(New(Format, ErrBadMagic, "")))
	assert.False(t, IsCapacity(errors.New("plain error")))
}

func TestKindString(t *testing.T) {
	cases := []struct {
		kind Kind
		want string
	}{
		{Validation, "validation"},
		{Format, "format"},
		{Capacity, "capacity"},
		{Truncation, "truncation"},
		{IO, "io"},
		{Kind(99), "unknown"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.kind.String())
	}
}
