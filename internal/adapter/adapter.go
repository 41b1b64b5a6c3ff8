// Package adapter defines the capability interface between the thermostat
// core and the host BLE driver. The core never touches a radio directly: it
// is handed an Adapter, and everything it does — scanning, connecting,
// resolving characteristics, subscribing, writing — goes through these
// interfaces. The go-ble-backed implementation lives in the goble
// subpackage; tests use an in-memory fake.
package adapter

import "context"

// Advertisement is one broadcast from a peripheral seen during a scan.
type Advertisement interface {
	// Addr is the peripheral address as reported by the radio. Callers
	// normalize it before using it as a key.
	Addr() string
	LocalName() string
	RSSI() int
	Connectable() bool

	// Services lists advertised service UUIDs, normalized (lowercase hex,
	// no dashes).
	Services() []string
}

// Adapter is the host BLE driver. One Adapter is constructed at startup and
// passed explicitly; there is no ambient singleton.
type Adapter interface {
	// WaitPoweredOn blocks until the radio reaches a powered-on state or
	// the context is cancelled. There is no timeout beyond the context:
	// readiness follows the host stack's own model.
	WaitPoweredOn(ctx context.Context) error

	// Scan delivers advertisements to handler, in arrival order, until the
	// context is cancelled or expires. Cancellation is the only way to
	// stop a scan early.
	Scan(ctx context.Context, handler func(Advertisement)) error

	// Peripheral returns a handle for the given address. The handle is
	// cheap and disconnected; nothing happens until Connect.
	Peripheral(addr string) Peripheral
}

// Peripheral is one remote device. All blocking calls honor the context; a
// context deadline is the caller's operation timeout.
type Peripheral interface {
	Addr() string

	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Connected() bool

	// DiscoverCharacteristics resolves the given characteristics of a
	// service on the connected peripheral. It must be called after Connect
	// and before Write or Subscribe.
	DiscoverCharacteristics(ctx context.Context, service string, chars []string) error

	// Write writes data to a resolved characteristic.
	Write(ctx context.Context, char string, data []byte) error

	// Subscribe registers handler for notifications from a resolved
	// characteristic. The handler owns the data slice it receives.
	Subscribe(ctx context.Context, char string, handler func(data []byte)) error

	// Unsubscribe stops notifications from a characteristic. Safe to call
	// on a characteristic that was never subscribed.
	Unsubscribe(char string) error
}
