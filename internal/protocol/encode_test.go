package protocol_test

import (
	"testing"
	"time"

	"github.com/srg/ccrtble/internal/protocol"
	"github.com/stretchr/testify/assert"
)

func TestEncodeCommands(t *testing.T) {
	tests := []struct {
		name     string
		buf      []byte
		expected []byte
	}{
		{
			name:     "get info",
			buf:      protocol.GetInfo(),
			expected: []byte{0x00},
		},
		{
			name:     "get status carries clock sync payload",
			buf:      protocol.GetStatus(time.Date(2023, time.November, 5, 14, 30, 45, 0, time.UTC)),
			expected: []byte{0x03, 23, 11, 5, 14, 30, 45},
		},
		{
			name:     "get status year is mod 100",
			buf:      protocol.GetStatus(time.Date(2100, time.January, 1, 0, 0, 0, 0, time.UTC)),
			expected: []byte{0x03, 0, 1, 1, 0, 0, 0},
		},
		{
			name:     "set target temperature half degree",
			buf:      protocol.SetTargetTemperature(21.5),
			expected: []byte{0x41, 43},
		},
		{
			name:     "set target temperature rounds to nearest step",
			buf:      protocol.SetTargetTemperature(21.3),
			expected: []byte{0x41, 43},
		},
		{
			name:     "set comfort temperature",
			buf:      protocol.SetComfortTemperature(),
			expected: []byte{0x43},
		},
		{
			name:     "set eco temperature",
			buf:      protocol.SetEcoTemperature(),
			expected: []byte{0x44},
		},
		{
			name:     "set boost on",
			buf:      protocol.SetBoost(true),
			expected: []byte{0x45, 0x01},
		},
		{
			name:     "set boost off",
			buf:      protocol.SetBoost(false),
			expected: []byte{0x45, 0x00},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.buf)
		})
	}
}

func TestTempRoundTrip(t *testing.T) {
	// Every representable half-degree value survives encode/decode exactly
	for raw := 0; raw <= 60; raw++ {
		celsius := float64(raw) / 2
		assert.Equal(t, celsius, protocol.DecodeTemp(protocol.EncodeTemp(celsius)),
			"half-degree value %.1f must round-trip", celsius)
	}
}

func TestEncodeTempRounding(t *testing.T) {
	tests := []struct {
		celsius  float64
		expected byte
	}{
		{4.3, 9},  // nearest representable is 4.5
		{4.2, 8},  // nearest representable is 4.0
		{4.25, 9}, // ties round away from zero
		{0, 0},
		{29.5, 59},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, protocol.EncodeTemp(tt.celsius), "encoding %.2f", tt.celsius)
	}
}
