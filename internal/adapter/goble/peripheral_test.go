package goble

import (
	"context"
	"testing"
	"time"

	"github.com/go-ble/ble"
	"github.com/sirupsen/logrus"
	"github.com/srg/ccrtble/internal/adapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDevice stubs the dial path; every other ble.Device method panics via
// the embedded nil interface, which is fine — these tests never reach them.
type fakeDevice struct {
	ble.Device
	dialDelay time.Duration
}

func (d *fakeDevice) Dial(ctx context.Context, a ble.Addr) (ble.Client, error) {
	if d.dialDelay > 0 {
		select {
		case <-time.After(d.dialDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &fakeClient{}, nil
}

type fakeClient struct {
	ble.Client
}

func (c *fakeClient) CancelConnection() error { return nil }

func newTestAdapter(t *testing.T, dev ble.Device) adapter.Adapter {
	orig := DeviceFactory
	DeviceFactory = func() (ble.Device, error) { return dev, nil }
	t.Cleanup(func() { DeviceFactory = orig })

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	a := New(logger)
	require.NoError(t, a.WaitPoweredOn(context.Background()))
	return a
}

func TestConnectDoesNotBlockPeripheralState(t *testing.T) {
	// A slow dial must not hold the peripheral lock: Connected answers
	// immediately while the dial is still in flight.
	a := newTestAdapter(t, &fakeDevice{dialDelay: 200 * time.Millisecond})
	p := a.Peripheral("00:1a:22:33:44:55")

	done := make(chan error, 1)
	go func() { done <- p.Connect(context.Background()) }()

	time.Sleep(30 * time.Millisecond)

	start := time.Now()
	assert.False(t, p.Connected(), "peripheral is not connected until the dial completes")
	assert.Less(t, time.Since(start), 50*time.Millisecond,
		"Connected MUST not wait for the in-flight dial")

	require.NoError(t, <-done)
	assert.True(t, p.Connected())
}

func TestConnectWhileDialing(t *testing.T) {
	a := newTestAdapter(t, &fakeDevice{dialDelay: 100 * time.Millisecond})
	p := a.Peripheral("00:1a:22:33:44:55")

	done := make(chan error, 1)
	go func() { done <- p.Connect(context.Background()) }()

	time.Sleep(30 * time.Millisecond)

	err := p.Connect(context.Background())
	assert.ErrorIs(t, err, adapter.ErrAlreadyConnected,
		"second connect during a dial MUST be rejected")

	require.NoError(t, <-done)

	err = p.Connect(context.Background())
	assert.ErrorIs(t, err, adapter.ErrAlreadyConnected)
}

func TestDisconnectDuringDial(t *testing.T) {
	// Disconnect on a dialing peripheral is a no-op on the adapter (there is
	// no client yet) and returns promptly instead of waiting for the dial.
	a := newTestAdapter(t, &fakeDevice{dialDelay: 100 * time.Millisecond})
	p := a.Peripheral("00:1a:22:33:44:55")

	done := make(chan error, 1)
	go func() { done <- p.Connect(context.Background()) }()

	time.Sleep(30 * time.Millisecond)

	start := time.Now()
	require.NoError(t, p.Disconnect(context.Background()))
	assert.Less(t, time.Since(start), 50*time.Millisecond,
		"Disconnect MUST not wait for the in-flight dial")

	require.NoError(t, <-done)
}
