package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/srg/ccrtble/internal/protocol"
	"github.com/srg/ccrtble/internal/thermostat"
)

// tempCmd represents the temp command
var tempCmd = &cobra.Command{
	Use:   "temp <address> <celsius>",
	Short: "Set the target temperature",
	Long: `Set the target temperature in degrees Celsius. The thermostat stores
temperatures in half-degree steps; other values are rounded to the nearest
representable one.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		celsius, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid temperature %q: %w", args[1], err)
		}
		return runSet(cmd, args[0], func(ctx context.Context, s *thermostat.Thermostat) (*protocol.Status, error) {
			return s.SetTargetTemperature(ctx, celsius)
		})
	},
}

// boostCmd represents the boost command
var boostCmd = &cobra.Command{
	Use:   "boost <address> on|off",
	Short: "Enable or disable boost mode",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var enable bool
		switch args[1] {
		case "on":
			enable = true
		case "off":
			enable = false
		default:
			return fmt.Errorf("invalid boost argument %q: use on or off", args[1])
		}
		return runSet(cmd, args[0], func(ctx context.Context, s *thermostat.Thermostat) (*protocol.Status, error) {
			return s.SetBoost(ctx, enable)
		})
	},
}

// comfortCmd represents the comfort command
var comfortCmd = &cobra.Command{
	Use:   "comfort <address>",
	Short: "Switch to the stored comfort temperature",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSet(cmd, args[0], func(ctx context.Context, s *thermostat.Thermostat) (*protocol.Status, error) {
			return s.SetComfortTemperature(ctx)
		})
	},
}

// ecoCmd represents the eco command
var ecoCmd = &cobra.Command{
	Use:   "eco <address>",
	Short: "Switch to the stored eco temperature",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSet(cmd, args[0], func(ctx context.Context, s *thermostat.Thermostat) (*protocol.Status, error) {
			return s.SetEcoTemperature(ctx)
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{tempCmd, boostCmd, comfortCmd, ecoCmd} {
		c.Flags().DurationP("duration", "d", 10*time.Second, "Scan duration")
		c.Flags().Duration("timeout", 10*time.Second, "Per-operation timeout")
	}
}

// runSet performs one set operation and prints the confirming status.
func runSet(cmd *cobra.Command, addr string, op func(context.Context, *thermostat.Thermostat) (*protocol.Status, error)) error {
	logger, err := configureLogger(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	duration, _ := cmd.Flags().GetDuration("duration")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	duration, timeout = resolveTimings(cmd, cfg, duration, timeout)

	cmd.SilenceUsage = true

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	session, err := sessionFor(ctx, logger, addr, duration, timeout)
	if err != nil {
		return err
	}
	defer disconnectSession(session, logger)

	status, err := op(ctx, session)
	if err != nil {
		return err
	}

	printStatus(session.Address(), status)
	return nil
}

func disconnectSession(session *thermostat.Thermostat, logger *logrus.Logger) {
	if err := session.Disconnect(context.Background()); err != nil {
		logger.WithField("error", err).Warn("Failed to disconnect")
	}
}
