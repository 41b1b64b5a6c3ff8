// Package discovery scans for advertising CCRTBLE thermostats and constructs
// one session per newly seen device. Filtering is by GATT service signature
// plus an optional address allow-list with deterministic early stop.
package discovery

import (
	"context"

	"github.com/cornelk/hashmap"
	"github.com/sirupsen/logrus"
	"github.com/srg/ccrtble/internal/adapter"
	"github.com/srg/ccrtble/internal/groutine"
	"github.com/srg/ccrtble/internal/protocol"
	"github.com/srg/ccrtble/internal/thermostat"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// advBufferSize bounds the advertisement hand-off channel between the radio
// callback and the discover loop. Arrival order is preserved.
const advBufferSize = 64

// Sessions maps normalized address → session, iterable in arrival order.
type Sessions = orderedmap.OrderedMap[string, *thermostat.Thermostat]

// Engine drives the adapter's scan primitive. One Discover call owns its
// discovered-device map exclusively; the engine itself is stateless between
// calls.
type Engine struct {
	adapter adapter.Adapter
	logger  *logrus.Logger
}

// New creates a discovery engine on the given adapter.
func New(a adapter.Adapter, logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.New()
	}
	return &Engine{adapter: a, logger: logger}
}

// Discover validates opts, waits for the radio to power on (unbounded, per
// the host stack's own readiness model), then scans until the duration
// elapses — or earlier, as soon as every allow-listed address has a recorded
// session. The result contains every discovered session in arrival order,
// not just allow-listed ones, unless IgnoreUnknown filtered the rest out.
func (e *Engine) Discover(ctx context.Context, opts *Options) (*Sessions, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	// Work on a copy so defaulting never mutates the caller's struct.
	o := *opts
	if o.Duration == 0 {
		o.Duration = DefaultOptions().Duration
	}
	opts = &o

	allow, err := opts.validate()
	if err != nil {
		return nil, err
	}

	// Well-defined but almost certainly a mistake: nothing can match.
	if opts.IgnoreUnknown && len(allow) == 0 {
		e.logger.Warn("IgnoreUnknown set without an address allow-list; every advertisement will be skipped")
	}

	e.logger.WithFields(logrus.Fields{
		"duration":       opts.Duration,
		"addresses":      len(allow),
		"ignore_unknown": opts.IgnoreUnknown,
	}).Info("Starting thermostat discovery...")

	if err := e.adapter.WaitPoweredOn(ctx); err != nil {
		return nil, err
	}

	scanCtx, stopScan := context.WithTimeout(ctx, opts.Duration)
	defer stopScan()

	// Advertisements cross from the radio callback into this loop over a
	// channel, so they are processed strictly in arrival order and the
	// all-found check runs synchronously after each new session.
	advs := make(chan adapter.Advertisement, advBufferSize)
	scanDone := make(chan error, 1)
	groutine.Go(scanCtx, "discovery-scan", func(ctx context.Context) {
		scanDone <- e.adapter.Scan(ctx, func(adv adapter.Advertisement) {
			select {
			case advs <- adv:
			case <-ctx.Done():
			}
		})
	})

	discovered := hashmap.New[string, *thermostat.Thermostat]()
	result := orderedmap.New[string, *thermostat.Thermostat]()

loop:
	for {
		select {
		case adv := <-advs:
			if !e.recordAdvertisement(adv, opts, allow, discovered, result) {
				continue
			}
			if len(allow) > 0 && allFound(allow, discovered) {
				e.logger.Debug("All requested addresses found, stopping scan early")
				stopScan()
				break loop
			}
		case <-scanCtx.Done():
			break loop
		}
	}

	if err := <-scanDone; err != nil {
		return nil, err
	}

	e.logger.WithField("device_count", result.Len()).Info("Thermostat discovery completed")
	return result, nil
}

// recordAdvertisement applies the filter chain to one advertisement and
// constructs a session for a new match. Returns true only when a new session
// was recorded.
func (e *Engine) recordAdvertisement(
	adv adapter.Advertisement,
	opts *Options,
	allow map[string]struct{},
	discovered *hashmap.Map[string, *thermostat.Thermostat],
	result *Sessions,
) bool {
	addr := thermostat.NormalizeAddress(adv.Addr())

	if opts.IgnoreUnknown {
		if _, ok := allow[addr]; !ok {
			return false
		}
	}

	if !advertisesService(adv, protocol.ServiceUUID) {
		return false
	}

	if _, exists := discovered.Get(addr); exists {
		return false
	}

	session := thermostat.New(e.adapter.Peripheral(addr), e.logger, opts.Session)
	session.SetAdvertised(adv.LocalName(), adv.RSSI())
	discovered.Set(addr, session)
	result.Set(addr, session)

	e.logger.WithFields(logrus.Fields{
		"address": addr,
		"name":    adv.LocalName(),
		"rssi":    adv.RSSI(),
	}).Info("Discovered thermostat")
	return true
}

func advertisesService(adv adapter.Advertisement, uuid string) bool {
	for _, svc := range adv.Services() {
		if svc == uuid {
			return true
		}
	}
	return false
}

func allFound(allow map[string]struct{}, discovered *hashmap.Map[string, *thermostat.Thermostat]) bool {
	for addr := range allow {
		if _, ok := discovered.Get(addr); !ok {
			return false
		}
	}
	return true
}
