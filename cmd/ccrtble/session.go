package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/srg/ccrtble/internal/adapter/goble"
	"github.com/srg/ccrtble/internal/discovery"
	"github.com/srg/ccrtble/internal/thermostat"
)

// sessionFor discovers the thermostat at addr and returns its session. The
// scan is allow-listed to that single address so it stops as soon as the
// device is seen. The caller disconnects the returned session.
func sessionFor(ctx context.Context, logger *logrus.Logger, addr string, scanDuration, timeout time.Duration) (*thermostat.Thermostat, error) {
	normalized, err := thermostat.ValidateAddress(addr)
	if err != nil {
		return nil, err
	}

	engine := discovery.New(goble.New(logger), logger)
	sessions, err := engine.Discover(ctx, &discovery.Options{
		Duration:      scanDuration,
		Addresses:     []string{normalized},
		IgnoreUnknown: true,
		Session:       &thermostat.Options{Timeout: timeout},
	})
	if err != nil {
		return nil, err
	}

	pair := sessions.GetPair(normalized)
	if pair == nil {
		return nil, fmt.Errorf("thermostat %s not found within %s", normalized, scanDuration)
	}
	return pair.Value, nil
}

// resolveTimings merges flag values with the config file defaults.
func resolveTimings(cmd *cobra.Command, cfg *fileConfig, scanDuration, timeout time.Duration) (time.Duration, time.Duration) {
	if !cmd.Flags().Changed("duration") && cfg.ScanDuration > 0 {
		scanDuration = cfg.ScanDuration
	}
	if !cmd.Flags().Changed("timeout") && cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}
	return scanDuration, timeout
}
