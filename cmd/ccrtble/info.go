package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <address>",
	Short: "Read firmware version and serial number",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().DurationP("duration", "d", 10*time.Second, "Scan duration")
	infoCmd.Flags().Duration("timeout", 10*time.Second, "Per-operation timeout")
}

func runInfo(cmd *cobra.Command, args []string) error {
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

	session, err := sessionFor(ctx, logger, args[0], duration, timeout)
	if err != nil {
		return err
	}
	defer disconnectSession(session, logger)

	info, err := session.GetInfo(ctx)
	if err != nil {
		return err
	}

	color.New(color.Bold).Printf("Thermostat %s\n", session.Address())
	fmt.Printf("  Firmware: %d\n", info.Version)
	fmt.Printf("  Serial:   %s\n", info.Serial)
	return nil
}
