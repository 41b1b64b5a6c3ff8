package goble

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-ble/ble"
	"github.com/sirupsen/logrus"
	"github.com/srg/ccrtble/internal/adapter"
	"github.com/srg/ccrtble/internal/groutine"
)

// await runs a go-ble call that does not take a context on a named goroutine
// and bounds it with ctx, so a wedged host stack cannot hang the caller.
func await(ctx context.Context, name string, fn func() error) error {
	done := make(chan error, 1)
	groutine.Go(ctx, name, func(context.Context) {
		done <- fn()
	})

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// blePeripheral implements adapter.Peripheral over one ble.Client. The
// client exists only between Connect and Disconnect; resolved characteristic
// handles are dropped on disconnect and re-resolved on the next connect.
type blePeripheral struct {
	adapter *bleAdapter
	addr    string
	logger  *logrus.Logger

	mu      sync.Mutex
	client  ble.Client
	dialing bool
	chars   map[string]*ble.Characteristic
}

func (p *blePeripheral) Addr() string {
	return p.addr
}

func (p *blePeripheral) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.client != nil
}

func (p *blePeripheral) Connect(ctx context.Context) error {
	// Reserve the peripheral, then dial with the lock released: a dial can
	// take seconds and must not block Connected or Disconnect.
	p.mu.Lock()
	if p.client != nil || p.dialing {
		p.mu.Unlock()
		return adapter.Wrap(adapter.OpConnect, p.addr, adapter.ErrAlreadyConnected)
	}
	p.dialing = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.dialing = false
		p.mu.Unlock()
	}()

	dev, err := p.adapter.device()
	if err != nil {
		return adapter.Wrap(adapter.OpConnect, p.addr, err)
	}

	p.logger.WithField("address", p.addr).Debug("Dialing peripheral...")
	client, err := dev.Dial(ctx, ble.NewAddr(p.addr))
	if err != nil {
		return adapter.Wrap(adapter.OpConnect, p.addr, adapter.NormalizeError(err))
	}

	p.mu.Lock()
	p.client = client
	p.chars = make(map[string]*ble.Characteristic)
	p.mu.Unlock()
	return nil
}

func (p *blePeripheral) Disconnect(ctx context.Context) error {
	p.mu.Lock()
	client := p.client
	p.client = nil
	p.chars = nil
	p.mu.Unlock()

	if client == nil {
		return nil
	}

	err := await(ctx, "ble-disconnect", client.CancelConnection)
	return adapter.Wrap(adapter.OpDisconnect, p.addr, adapter.NormalizeError(err))
}

// DiscoverCharacteristics resolves the requested characteristics of service
// and caches the live handles for Write/Subscribe.
func (p *blePeripheral) DiscoverCharacteristics(ctx context.Context, service string, chars []string) error {
	client, err := p.connectedClient(adapter.OpDiscover)
	if err != nil {
		return err
	}

	svcUUID, err := ble.Parse(service)
	if err != nil {
		return adapter.Wrap(adapter.OpDiscover, p.addr, fmt.Errorf("invalid service UUID %q: %w", service, err))
	}

	charUUIDs := make([]ble.UUID, 0, len(chars))
	for _, c := range chars {
		u, err := ble.Parse(c)
		if err != nil {
			return adapter.Wrap(adapter.OpDiscover, p.addr, fmt.Errorf("invalid characteristic UUID %q: %w", c, err))
		}
		charUUIDs = append(charUUIDs, u)
	}

	var discovered []*ble.Characteristic
	err = await(ctx, "ble-discover", func() error {
		svcs, err := client.DiscoverServices([]ble.UUID{svcUUID})
		if err != nil {
			return err
		}
		if len(svcs) == 0 {
			return fmt.Errorf("service %s not found", service)
		}
		discovered, err = client.DiscoverCharacteristics(charUUIDs, svcs[0])
		return err
	})
	if err != nil {
		return adapter.Wrap(adapter.OpDiscover, p.addr, adapter.NormalizeError(err))
	}

	p.mu.Lock()
	for _, c := range discovered {
		p.chars[normalizeUUID(c.UUID.String())] = c
	}
	p.mu.Unlock()

	// Every requested characteristic must have resolved
	for _, want := range chars {
		if _, ok := p.resolved(want); !ok {
			return adapter.Wrap(adapter.OpDiscover, p.addr,
				fmt.Errorf("characteristic %s not found in service %s", want, service))
		}
	}
	return nil
}

func (p *blePeripheral) Write(ctx context.Context, char string, data []byte) error {
	client, err := p.connectedClient(adapter.OpWrite)
	if err != nil {
		return err
	}
	c, ok := p.resolved(char)
	if !ok {
		return adapter.Wrap(adapter.OpWrite, p.addr, adapter.ErrNotResolved)
	}

	err = await(ctx, "ble-write", func() error {
		return client.WriteCharacteristic(c, data, false)
	})
	return adapter.Wrap(adapter.OpWrite, p.addr, adapter.NormalizeError(err))
}

func (p *blePeripheral) Subscribe(ctx context.Context, char string, handler func([]byte)) error {
	client, err := p.connectedClient(adapter.OpSubscribe)
	if err != nil {
		return err
	}
	c, ok := p.resolved(char)
	if !ok {
		return adapter.Wrap(adapter.OpSubscribe, p.addr, adapter.ErrNotResolved)
	}

	err = await(ctx, "ble-subscribe", func() error {
		return client.Subscribe(c, false, handler)
	})
	return adapter.Wrap(adapter.OpSubscribe, p.addr, adapter.NormalizeError(err))
}

func (p *blePeripheral) Unsubscribe(char string) error {
	p.mu.Lock()
	client := p.client
	c := p.chars[normalizeUUID(char)]
	p.mu.Unlock()

	if client == nil || c == nil {
		return nil
	}
	return adapter.Wrap(adapter.OpUnsubscribe, p.addr, adapter.NormalizeError(client.Unsubscribe(c, false)))
}

func (p *blePeripheral) connectedClient(op adapter.Op) (ble.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client == nil {
		return nil, adapter.Wrap(op, p.addr, adapter.ErrNotConnected)
	}
	return p.client, nil
}

func (p *blePeripheral) resolved(char string) (*ble.Characteristic, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.chars[normalizeUUID(char)]
	return c, ok
}
