// Package thermostat implements the per-device session for a CCRTBLE
// radiator thermostat: a connect → resolve → subscribe → ready state machine
// and bounded command round-trips over the injected adapter.
package thermostat

import (
	"context"
	"sync"
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"
	"github.com/srg/ccrtble/internal/adapter"
	"github.com/srg/ccrtble/internal/protocol"
)

// Options configures a session.
type Options struct {
	// Timeout bounds every connect, disconnect, write and command
	// round-trip individually.
	Timeout time.Duration `default:"10s"`
}

// DefaultOptions returns session options with defaults applied.
func DefaultOptions() *Options {
	opts := new(Options)
	defaults.SetDefaults(opts)
	return opts
}

// Thermostat is one device session. Construct via New; safe for concurrent
// use, though command round-trips are serialized internally so exactly one
// command is in flight per device at a time.
type Thermostat struct {
	addr       string
	name       string
	rssi       int
	peripheral adapter.Peripheral
	logger     *logrus.Logger
	timeout    time.Duration

	// now supplies the clock-sync payload of status requests; replaced in
	// tests.
	now func() time.Time

	mu      sync.Mutex
	state   State
	pending map[protocol.ReplyKind]chan *protocol.Notification

	// cmdMu serializes command round-trips. Two concurrent commands of the
	// same reply kind would otherwise race for one notification; see the
	// single-shot reply slot in awaitReply.
	cmdMu sync.Mutex
}

// New creates a session for the given peripheral. opts may be nil.
func New(peripheral adapter.Peripheral, logger *logrus.Logger, opts *Options) *Thermostat {
	if logger == nil {
		logger = logrus.New()
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Thermostat{
		addr:       NormalizeAddress(peripheral.Addr()),
		peripheral: peripheral,
		logger:     logger,
		timeout:    opts.Timeout,
		now:        time.Now,
		pending:    make(map[protocol.ReplyKind]chan *protocol.Notification),
	}
}

// SetAdvertised records the name and signal strength seen during discovery.
func (t *Thermostat) SetAdvertised(name string, rssi int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.name = name
	t.rssi = rssi
}

// Address returns the normalized device identity.
func (t *Thermostat) Address() string { return t.addr }

// Name returns the advertised local name, if any.
func (t *Thermostat) Name() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.name
}

// RSSI returns the signal strength from the discovery advertisement.
func (t *Thermostat) RSSI() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rssi
}

// State returns the current session state.
func (t *Thermostat) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Thermostat) setState(s State) {
	t.mu.Lock()
	prev := t.state
	t.state = s
	t.mu.Unlock()

	t.logger.WithFields(logrus.Fields{
		"address": t.addr,
		"from":    prev.String(),
		"to":      s.String(),
	}).Debug("Session state changed")
}

// Connect drives the session to Ready: adapter connect, characteristic
// resolution, notification subscribe. The whole sequence is bounded by one
// timeout. A failure on any step rolls the session back to Disconnected so a
// later Connect can retry cleanly. Connect is a no-op when already Ready,
// and rejects a second attempt while one is in flight.
func (t *Thermostat) Connect(ctx context.Context) error {
	t.mu.Lock()
	switch t.state {
	case StateReady:
		t.mu.Unlock()
		return nil
	case StateDisconnecting:
		t.mu.Unlock()
		return ErrDisconnectPending
	case StateDisconnected:
		t.state = StateConnecting
		t.mu.Unlock()
	default:
		t.mu.Unlock()
		return ErrConnectInFlight
	}

	t.logger.WithFields(logrus.Fields{
		"address": t.addr,
		"timeout": t.timeout,
	}).Info("Connecting to thermostat...")

	connCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	if err := t.connectSequence(connCtx); err != nil {
		// Partial progress is unusable: tear everything down so the
		// next Connect starts from a clean slate.
		t.cleanup()
		t.setState(StateDisconnected)
		return wrapTimeout("connect", err)
	}

	t.setState(StateReady)
	t.logger.WithField("address", t.addr).Info("Thermostat session ready")
	return nil
}

func (t *Thermostat) connectSequence(ctx context.Context) error {
	// Already connected at the adapter level: skip straight to resolution.
	if !t.peripheral.Connected() {
		if err := t.peripheral.Connect(ctx); err != nil {
			return err
		}
	}

	t.setState(StateResolvingCharacteristics)
	err := t.peripheral.DiscoverCharacteristics(ctx, protocol.ServiceUUID,
		[]string{protocol.CommandCharUUID, protocol.NotifyCharUUID})
	if err != nil {
		return err
	}

	t.setState(StateSubscribing)
	return t.peripheral.Subscribe(ctx, protocol.NotifyCharUUID, t.handleNotification)
}

// cleanup tears down adapter state best-effort after a failed connect. It
// deliberately uses a fresh context: the caller's one is typically already
// expired.
func (t *Thermostat) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	if err := t.peripheral.Unsubscribe(protocol.NotifyCharUUID); err != nil {
		t.logger.WithFields(logrus.Fields{
			"address": t.addr,
			"error":   err,
		}).Debug("Unsubscribe during cleanup failed")
	}
	if err := t.peripheral.Disconnect(ctx); err != nil {
		t.logger.WithFields(logrus.Fields{
			"address": t.addr,
			"error":   err,
		}).Warn("Disconnect during cleanup failed")
	}
}

// Disconnect tears the session down. No-op when already disconnected, and
// rejected while a Connect or another Disconnect is still in flight: exactly
// one attempt may drive the adapter at a time.
func (t *Thermostat) Disconnect(ctx context.Context) error {
	t.mu.Lock()
	switch t.state {
	case StateDisconnected:
		t.mu.Unlock()
		t.logger.WithField("address", t.addr).Debug("Disconnect called but already disconnected")
		return nil
	case StateDisconnecting:
		t.mu.Unlock()
		return ErrDisconnectPending
	case StateReady:
		t.state = StateDisconnecting
		t.mu.Unlock()
	default:
		// A Connect is mid-sequence; tearing down underneath it would
		// race the adapter and could leave the session half-connected.
		t.mu.Unlock()
		return ErrConnectInFlight
	}

	discCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	if err := t.peripheral.Unsubscribe(protocol.NotifyCharUUID); err != nil {
		t.logger.WithFields(logrus.Fields{
			"address": t.addr,
			"error":   err,
		}).Debug("Unsubscribe during disconnect failed")
	}

	err := t.peripheral.Disconnect(discCtx)
	t.setState(StateDisconnected)
	if err != nil {
		return wrapTimeout("disconnect", err)
	}

	t.logger.WithField("address", t.addr).Info("Thermostat disconnected")
	return nil
}

// handleNotification decodes one inbound buffer and resolves the pending
// reply slot of its kind, if any. Protocol errors are reported and dropped;
// the session keeps listening, and the pending command (if one exists) times
// out on its own if no valid reply ever arrives.
func (t *Thermostat) handleNotification(data []byte) {
	notif, err := protocol.Decode(data)
	if err != nil {
		t.logger.WithFields(logrus.Fields{
			"address": t.addr,
			"length":  len(data),
			"error":   err,
		}).Warn("Dropping notification the codec does not understand")
		return
	}

	t.mu.Lock()
	ch, ok := t.pending[notif.Kind]
	if ok {
		delete(t.pending, notif.Kind)
	}
	t.mu.Unlock()

	if !ok {
		t.logger.WithFields(logrus.Fields{
			"address": t.addr,
			"kind":    notif.Kind.String(),
		}).Debug("Unsolicited notification, no pending command")
		return
	}

	// The slot is buffered and single-shot; this never blocks.
	ch <- notif
}

// command performs one write-and-await round-trip: ensure connection,
// register a single-shot reply slot for the expected kind, write the encoded
// buffer, then await the reply or the deadline. Both the write and the await
// are bounded by the session timeout. On timeout the stale reply slot is
// deregistered so a late notification cannot corrupt a later command.
func (t *Thermostat) command(ctx context.Context, kind protocol.ReplyKind, buf []byte) (*protocol.Notification, error) {
	t.cmdMu.Lock()
	defer t.cmdMu.Unlock()

	if err := t.Connect(ctx); err != nil {
		return nil, err
	}

	cmdCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	reply := make(chan *protocol.Notification, 1)
	t.mu.Lock()
	t.pending[kind] = reply
	t.mu.Unlock()

	t.logger.WithFields(logrus.Fields{
		"address": t.addr,
		"opcode":  buf[0],
		"await":   kind.String(),
	}).Debug("Writing command")

	if err := t.peripheral.Write(cmdCtx, protocol.CommandCharUUID, buf); err != nil {
		t.deregister(kind, reply)
		return nil, wrapTimeout("write", err)
	}

	select {
	case notif := <-reply:
		return notif, nil
	case <-cmdCtx.Done():
		t.deregister(kind, reply)
		return nil, wrapTimeout("command", cmdCtx.Err())
	}
}

// deregister removes a reply slot if it is still the registered one. The
// notification handler may have already consumed and resolved it; in that
// case the slot stays resolved and the late value is simply discarded.
func (t *Thermostat) deregister(kind protocol.ReplyKind, ch chan *protocol.Notification) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending[kind] == ch {
		delete(t.pending, kind)
	}
}

// GetStatus requests a status snapshot. The request carries the current
// time, syncing the device clock on every poll.
func (t *Thermostat) GetStatus(ctx context.Context) (*protocol.Status, error) {
	notif, err := t.command(ctx, protocol.ReplyStatus, protocol.GetStatus(t.now()))
	if err != nil {
		return nil, err
	}
	return notif.Status, nil
}

// GetInfo requests the firmware version and serial number.
func (t *Thermostat) GetInfo(ctx context.Context) (*protocol.Info, error) {
	notif, err := t.command(ctx, protocol.ReplyInfo, protocol.GetInfo())
	if err != nil {
		return nil, err
	}
	return notif.Info, nil
}

// SetTargetTemperature sets the target temperature. Values not representable
// in half-degree steps are rounded to the nearest representable one. The
// device confirms with a status notification, which is returned.
func (t *Thermostat) SetTargetTemperature(ctx context.Context, celsius float64) (*protocol.Status, error) {
	notif, err := t.command(ctx, protocol.ReplyStatus, protocol.SetTargetTemperature(celsius))
	if err != nil {
		return nil, err
	}
	return notif.Status, nil
}

// SetComfortTemperature switches to the stored comfort preset.
func (t *Thermostat) SetComfortTemperature(ctx context.Context) (*protocol.Status, error) {
	notif, err := t.command(ctx, protocol.ReplyStatus, protocol.SetComfortTemperature())
	if err != nil {
		return nil, err
	}
	return notif.Status, nil
}

// SetEcoTemperature switches to the stored eco preset.
func (t *Thermostat) SetEcoTemperature(ctx context.Context) (*protocol.Status, error) {
	notif, err := t.command(ctx, protocol.ReplyStatus, protocol.SetEcoTemperature())
	if err != nil {
		return nil, err
	}
	return notif.Status, nil
}

// SetBoost enables or disables boost mode.
func (t *Thermostat) SetBoost(ctx context.Context, enable bool) (*protocol.Status, error) {
	notif, err := t.command(ctx, protocol.ReplyStatus, protocol.SetBoost(enable))
	if err != nil {
		return nil, err
	}
	return notif.Status, nil
}
