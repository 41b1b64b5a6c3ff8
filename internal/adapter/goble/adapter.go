// Package goble implements the adapter capability interfaces on top of
// github.com/go-ble/ble. Device creation goes through DeviceFactory so tests
// can substitute a mock radio.
package goble

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-ble/ble"
	"github.com/sirupsen/logrus"
	"github.com/srg/ccrtble/internal/adapter"
)

const (
	// poweredOnPollInterval is how often WaitPoweredOn retries device
	// creation while the radio is still coming up.
	poweredOnPollInterval = 500 * time.Millisecond
)

// Radio readiness states surfaced by the platform factories.
var (
	errPoweredOff = errors.New("powered off")
	errNotReady   = errors.New("not ready")
)

// bleAdapter implements adapter.Adapter over one ble.Device.
type bleAdapter struct {
	logger *logrus.Logger

	mu  sync.Mutex
	dev ble.Device
}

// New returns an Adapter backed by the platform BLE stack. The underlying
// device is created lazily on the first WaitPoweredOn call.
func New(logger *logrus.Logger) adapter.Adapter {
	if logger == nil {
		logger = logrus.New()
	}
	return &bleAdapter{logger: logger}
}

// WaitPoweredOn creates the underlying ble.Device, retrying while the radio
// reports a transient not-ready state. It blocks until the device is usable
// or the context is cancelled; there is no timeout of its own.
func (a *bleAdapter) WaitPoweredOn(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.dev != nil {
		return nil
	}

	for {
		dev, err := DeviceFactory()
		if err == nil {
			a.dev = dev
			a.logger.Debug("BLE adapter powered on")
			return nil
		}

		if !errors.Is(err, errPoweredOff) && !errors.Is(err, errNotReady) {
			return adapter.Wrap(adapter.OpPowerOn, "", err)
		}

		a.logger.WithField("error", err).Debug("BLE adapter not ready, waiting...")
		select {
		case <-ctx.Done():
			return adapter.Wrap(adapter.OpPowerOn, "", ctx.Err())
		case <-time.After(poweredOnPollInterval):
		}
	}
}

func (a *bleAdapter) device() (ble.Device, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.dev == nil {
		return nil, errNotReady
	}
	return a.dev, nil
}

// Scan delivers advertisements until the context ends. Context expiry is a
// normal stop, not an error.
func (a *bleAdapter) Scan(ctx context.Context, handler func(adapter.Advertisement)) error {
	dev, err := a.device()
	if err != nil {
		return adapter.Wrap(adapter.OpScan, "", err)
	}

	err = dev.Scan(ctx, false, func(adv ble.Advertisement) {
		handler(newAdvertisement(adv))
	})
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return adapter.Wrap(adapter.OpScan, "", adapter.NormalizeError(err))
	}
	return nil
}

func (a *bleAdapter) Peripheral(addr string) adapter.Peripheral {
	return &blePeripheral{adapter: a, addr: addr, logger: a.logger}
}
