package thermostat

import (
	"context"
	"errors"
	"fmt"
)

// ConnectionState represents the specific kind of connection state failure
type ConnectionState string

const (
	NotConnected      ConnectionState = "not_connected"
	ConnectInFlight   ConnectionState = "connect_in_flight"
	DisconnectPending ConnectionState = "disconnect_pending"
)

// ConnectionError represents any connection-related problem
type ConnectionError struct {
	State ConnectionState
	Msg   string
}

// Error implements the error interface
func (e *ConnectionError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.State)
	}
	return fmt.Sprintf("%s: %s", e.State, e.Msg)
}

// Is allows errors.Is to compare ConnectionError values by State
func (e *ConnectionError) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*ConnectionError)
	if !ok {
		return false
	}
	return e.State == t.State
}

// Predefined sentinel errors for connection states
var (
	ErrNotConnected      = &ConnectionError{State: NotConnected}
	ErrConnectInFlight   = &ConnectionError{State: ConnectInFlight}
	ErrDisconnectPending = &ConnectionError{State: DisconnectPending}
)

// ErrTimeout marks any bounded operation that exceeded its deadline:
// connect, disconnect, write, or a command round-trip.
var ErrTimeout = errors.New("timeout")

// wrapTimeout maps a context deadline failure to ErrTimeout with operation
// context; other errors pass through unchanged.
func wrapTimeout(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s %w: %v", op, ErrTimeout, err)
	}
	return fmt.Errorf("%s failed: %w", op, err)
}
