package discovery

import (
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/srg/ccrtble/internal/thermostat"
)

// Options configures one Discover call.
type Options struct {
	// Duration bounds the scan. Scanning stops earlier if every address in
	// Addresses has been seen.
	Duration time.Duration `default:"10s"`

	// Addresses is an allow-list of device identities to wait for. Empty
	// means scan for the full duration and record everything advertising
	// the thermostat service.
	Addresses []string

	// IgnoreUnknown skips advertisements whose address is not in
	// Addresses instead of recording them alongside.
	IgnoreUnknown bool

	// Session configures the sessions constructed for matches. Nil uses
	// session defaults.
	Session *thermostat.Options
}

// DefaultOptions returns discovery options with defaults applied.
func DefaultOptions() *Options {
	opts := new(Options)
	defaults.SetDefaults(opts)
	return opts
}

// validate checks the options and returns the normalized allow-list. It runs
// before any radio activity so configuration mistakes fail fast.
func (o *Options) validate() (map[string]struct{}, error) {
	if o.Duration <= 0 {
		return nil, &ConfigError{Option: "Duration", Msg: "must be positive"}
	}

	allow := make(map[string]struct{}, len(o.Addresses))
	for _, addr := range o.Addresses {
		normalized, err := thermostat.ValidateAddress(addr)
		if err != nil {
			return nil, &ConfigError{Option: "Addresses", Msg: err.Error()}
		}
		allow[normalized] = struct{}{}
	}

	return allow, nil
}
