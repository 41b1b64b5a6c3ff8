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
	"github.com/srg/ccrtble/internal/protocol"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status <address>",
	Short: "Read thermostat status",
	Long: `Connect to a thermostat and read its current status: heating mode, valve
position, target temperature and flags. The request also syncs the device
clock to the local time.`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().DurationP("duration", "d", 10*time.Second, "Scan duration")
	statusCmd.Flags().Duration("timeout", 10*time.Second, "Per-operation timeout")
}

func runStatus(cmd *cobra.Command, args []string) error {
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

	status, err := session.GetStatus(ctx)
	if err != nil {
		return err
	}

	printStatus(session.Address(), status)
	return nil
}

func printStatus(addr string, s *protocol.Status) {
	bold := color.New(color.Bold)
	warn := color.New(color.FgYellow)

	bold.Printf("Thermostat %s\n", addr)
	fmt.Printf("  Mode:        %s\n", s.Mode)
	fmt.Printf("  Target:      %.1f°C\n", s.TargetTemp)
	fmt.Printf("  Valve:       %d%%\n", s.ValvePosition)
	fmt.Printf("  Boost:       %s\n", onOff(s.Boost))
	fmt.Printf("  DST:         %s\n", onOff(s.DST))
	fmt.Printf("  Window open: %s\n", onOff(s.WindowOpen))
	fmt.Printf("  Locked:      %s\n", onOff(s.Locked))

	if s.LowBattery {
		warn.Println("  Battery:     LOW")
	} else {
		fmt.Println("  Battery:     ok")
	}

	if s.Away != nil {
		fmt.Printf("  Away until:  %04d-%02d-%02d %02d:%02d\n",
			s.Away.Year, s.Away.Month, s.Away.Day, s.Away.Hour, s.Away.Minute)
	}
	if s.ComfortTemp != nil && s.EcoTemp != nil {
		fmt.Printf("  Comfort/Eco: %.1f°C / %.1f°C\n", *s.ComfortTemp, *s.EcoTemp)
	}
	if s.WindowOpenTemp != nil && s.WindowOpenDuration != nil {
		fmt.Printf("  Window mode: %.1f°C for %d min\n", *s.WindowOpenTemp, *s.WindowOpenDuration)
	}
	if s.TempOffset != nil {
		fmt.Printf("  Offset:      %+.1f°C\n", *s.TempOffset)
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
