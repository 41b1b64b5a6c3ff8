package adapter

import (
	"errors"
	"fmt"
	"strings"
)

// Op is the adapter operation that failed.
type Op string

const (
	OpPowerOn     Op = "power_on"
	OpScan        Op = "scan"
	OpConnect     Op = "connect"
	OpDisconnect  Op = "disconnect"
	OpDiscover    Op = "discover_characteristics"
	OpWrite       Op = "write"
	OpSubscribe   Op = "subscribe"
	OpUnsubscribe Op = "unsubscribe"
)

// Error wraps a host-driver failure with the operation and address it
// belongs to, so callers can report which exchange went wrong.
type Error struct {
	Op   Op
	Addr string
	Err  error
}

func (e *Error) Error() string {
	if e.Addr == "" {
		return fmt.Sprintf("adapter %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("adapter %s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is allows errors.Is to match any *Error, or one with the same Op when the
// target specifies it.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" || t.Op == e.Op
}

// ErrAdapter matches any adapter *Error via errors.Is.
var ErrAdapter = &Error{}

// Sentinel errors shared by adapter implementations.
var (
	ErrNotConnected     = errors.New("peripheral not connected")
	ErrAlreadyConnected = errors.New("peripheral already connected")
	ErrNotResolved      = errors.New("characteristic not resolved")
)

// Wrap attaches operation context to a driver error, passing nil through.
func Wrap(op Op, addr string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Addr: addr, Err: err}
}

// NormalizeError maps known go-ble error strings to shared sentinels so
// callers get consistent behavior even if the upstream library changes
// messages slightly. Unknown errors pass through unchanged.
func NormalizeError(err error) error {
	if err == nil {
		return nil
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "not connected"):
		return fmt.Errorf("%w: %v", ErrNotConnected, err)
	case strings.Contains(msg, "already connected"):
		return fmt.Errorf("%w: %v", ErrAlreadyConnected, err)
	default:
		return err
	}
}
