// Package adaptertest provides an in-memory adapter implementation so the
// discovery engine and device sessions can be tested without a radio.
// Behavior is scripted per peripheral: canned advertisements, injectable
// errors, artificial delays and write-triggered notification replies.
package adaptertest

import (
	"context"
	"sync"
	"time"

	"github.com/srg/ccrtble/internal/adapter"
)

// Advertisement is a scripted advertisement. It implements
// adapter.Advertisement.
type Advertisement struct {
	Address      string
	Name         string
	Rssi         int
	ServiceUUIDs []string
}

func (a Advertisement) Addr() string       { return a.Address }
func (a Advertisement) LocalName() string  { return a.Name }
func (a Advertisement) RSSI() int          { return a.Rssi }
func (a Advertisement) Connectable() bool  { return true }
func (a Advertisement) Services() []string { return a.ServiceUUIDs }

// Adapter is a scripted adapter.Adapter. Advertisements are delivered in the
// order they were added; peripherals are created on demand and shared, so a
// test can configure a peripheral before discovery hands out sessions for it.
type Adapter struct {
	mu          sync.Mutex
	advs        []Advertisement
	peripherals map[string]*Peripheral

	// PowerOnDelay postpones WaitPoweredOn completion.
	PowerOnDelay time.Duration
	// PowerOnErr fails WaitPoweredOn.
	PowerOnErr error
}

// New creates a powered-on fake adapter with no advertisements.
func New() *Adapter {
	return &Adapter{peripherals: make(map[string]*Peripheral)}
}

// AddAdvertisement appends an advertisement to the scan script. Duplicate
// addresses are delivered as-is so dedup behavior can be exercised.
func (a *Adapter) AddAdvertisement(adv Advertisement) *Adapter {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.advs = append(a.advs, adv)
	return a
}

func (a *Adapter) WaitPoweredOn(ctx context.Context) error {
	if a.PowerOnErr != nil {
		return a.PowerOnErr
	}
	if a.PowerOnDelay > 0 {
		select {
		case <-time.After(a.PowerOnDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Scan replays the scripted advertisements in order, then blocks until the
// context ends. Context expiry is a normal stop, matching the real adapter.
func (a *Adapter) Scan(ctx context.Context, handler func(adapter.Advertisement)) error {
	a.mu.Lock()
	script := make([]Advertisement, len(a.advs))
	copy(script, a.advs)
	a.mu.Unlock()

	for _, adv := range script {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		handler(adv)
	}

	<-ctx.Done()
	return nil
}

func (a *Adapter) Peripheral(addr string) adapter.Peripheral {
	return a.FakePeripheral(addr)
}

// FakePeripheral returns the typed fake for addr, creating it if needed.
func (a *Adapter) FakePeripheral(addr string) *Peripheral {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, ok := a.peripherals[addr]
	if !ok {
		p = &Peripheral{addr: addr}
		a.peripherals[addr] = p
	}
	return p
}

// Peripheral is a scripted adapter.Peripheral. Zero value fields mean the
// operation succeeds immediately; tests set errors and delays per operation.
type Peripheral struct {
	addr string

	mu        sync.Mutex
	connected bool
	handler   func([]byte)
	writes    [][]byte

	ConnectErr   error
	DiscoverErr  error
	SubscribeErr error
	WriteErr     error

	ConnectDelay time.Duration
	WriteDelay   time.Duration

	// OnWrite, when set, runs after each successful write with the
	// written buffer. Typical use: push a canned notification via Notify
	// to play the device's reply.
	OnWrite func(data []byte)
}

func (p *Peripheral) Addr() string { return p.addr }

func (p *Peripheral) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

func (p *Peripheral) Connect(ctx context.Context) error {
	if err := wait(ctx, p.ConnectDelay); err != nil {
		return err
	}
	if p.ConnectErr != nil {
		return p.ConnectErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.connected {
		return adapter.ErrAlreadyConnected
	}
	p.connected = true
	return nil
}

func (p *Peripheral) Disconnect(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connected = false
	p.handler = nil
	return nil
}

func (p *Peripheral) DiscoverCharacteristics(ctx context.Context, service string, chars []string) error {
	if p.DiscoverErr != nil {
		return p.DiscoverErr
	}
	if !p.Connected() {
		return adapter.ErrNotConnected
	}
	return nil
}

func (p *Peripheral) Subscribe(ctx context.Context, char string, handler func([]byte)) error {
	if p.SubscribeErr != nil {
		return p.SubscribeErr
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.connected {
		return adapter.ErrNotConnected
	}
	p.handler = handler
	return nil
}

func (p *Peripheral) Unsubscribe(char string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handler = nil
	return nil
}

func (p *Peripheral) Write(ctx context.Context, char string, data []byte) error {
	if err := wait(ctx, p.WriteDelay); err != nil {
		return err
	}
	if p.WriteErr != nil {
		return p.WriteErr
	}

	p.mu.Lock()
	if !p.connected {
		p.mu.Unlock()
		return adapter.ErrNotConnected
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	p.writes = append(p.writes, buf)
	hook := p.OnWrite
	p.mu.Unlock()

	if hook != nil {
		hook(buf)
	}
	return nil
}

// Writes returns a snapshot of every buffer written so far.
func (p *Peripheral) Writes() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][]byte, len(p.writes))
	copy(out, p.writes)
	return out
}

// Notify delivers data to the subscribed notification handler, if any.
// Returns true when a handler consumed it.
func (p *Peripheral) Notify(data []byte) bool {
	p.mu.Lock()
	handler := p.handler
	p.mu.Unlock()
	if handler == nil {
		return false
	}
	handler(data)
	return true
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
