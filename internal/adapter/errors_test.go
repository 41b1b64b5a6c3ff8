package adapter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	cause := errors.New("hci: connection refused")

	err := Wrap(OpConnect, "00:1a:22:33:44:55", cause)
	assert.EqualError(t, err, "adapter connect 00:1a:22:33:44:55: hci: connection refused")
	assert.ErrorIs(t, err, cause, "cause MUST survive unwrapping")
	assert.ErrorIs(t, err, ErrAdapter, "MUST match the adapter sentinel")
	assert.ErrorIs(t, err, &Error{Op: OpConnect}, "MUST match by operation")
	assert.NotErrorIs(t, err, &Error{Op: OpWrite})

	assert.NoError(t, Wrap(OpConnect, "", nil), "nil MUST pass through")
}

func TestNormalizeError(t *testing.T) {
	tests := []struct {
		name     string
		input    error
		sentinel error
	}{
		{"not connected", errors.New("ble: not connected"), ErrNotConnected},
		{"already connected", errors.New("device Already Connected"), ErrAlreadyConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NormalizeError(tt.input)
			assert.ErrorIs(t, err, tt.sentinel)
		})
	}

	t.Run("unknown errors pass through", func(t *testing.T) {
		cause := errors.New("hci: timeout")
		assert.Same(t, cause, NormalizeError(cause))
	})

	t.Run("nil passes through", func(t *testing.T) {
		assert.NoError(t, NormalizeError(nil))
	})
}
