package main

import (
	"errors"

	"github.com/srg/ccrtble/internal/adapter"
	"github.com/srg/ccrtble/internal/discovery"
	"github.com/srg/ccrtble/internal/thermostat"
)

// formatUserError maps library errors to messages a terminal user can act
// on. Unknown errors pass through unchanged.
func formatUserError(err error) string {
	var cfgErr *discovery.ConfigError
	if errors.As(err, &cfgErr) {
		return cfgErr.Error()
	}

	switch {
	case errors.Is(err, thermostat.ErrTimeout):
		return "operation timed out - is the thermostat in range and awake? (" + err.Error() + ")"
	case errors.Is(err, thermostat.ErrConnectInFlight):
		return "another connection attempt is already in progress"
	case errors.Is(err, adapter.ErrAdapter):
		return "bluetooth error: " + err.Error()
	default:
		return err.Error()
	}
}
