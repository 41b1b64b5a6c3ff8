package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/srg/ccrtble/internal/adapter/goble"
	"github.com/srg/ccrtble/internal/discovery"
	"github.com/srg/ccrtble/internal/thermostat"
)

// discoverCmd represents the discover command
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover CCRTBLE thermostats",
	Long: `Scan for thermostats advertising the CCRTBLE control service.

With --address the scan stops as soon as every listed address has been seen;
otherwise it runs for the full duration. Known addresses can also be listed
in the config file.`,
	RunE: runDiscover,
}

var (
	discoverDuration      time.Duration
	discoverAddresses     []string
	discoverIgnoreUnknown bool
	discoverFormat        string
)

func init() {
	discoverCmd.Flags().DurationVarP(&discoverDuration, "duration", "d", 10*time.Second, "Scan duration")
	discoverCmd.Flags().StringSliceVarP(&discoverAddresses, "address", "a", nil, "Stop early once these addresses are seen")
	discoverCmd.Flags().BoolVar(&discoverIgnoreUnknown, "ignore-unknown", false, "Skip devices not in the address list")
	discoverCmd.Flags().StringVarP(&discoverFormat, "format", "f", "table", "Output format (table, json)")
	discoverCmd.Flags().Duration("timeout", 10*time.Second, "Per-operation timeout for created sessions")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	if discoverFormat != "table" && discoverFormat != "json" {
		return fmt.Errorf("invalid format '%s': must be table or json", discoverFormat)
	}

	logger, err := configureLogger(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if len(discoverAddresses) == 0 {
		discoverAddresses = cfg.Addresses
	}
	timeout, _ := cmd.Flags().GetDuration("timeout")
	duration, timeout := resolveTimings(cmd, cfg, discoverDuration, timeout)

	// All arguments validated - don't show usage on runtime errors
	cmd.SilenceUsage = true

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	engine := discovery.New(goble.New(logger), logger)
	sessions, err := engine.Discover(ctx, &discovery.Options{
		Duration:      duration,
		Addresses:     discoverAddresses,
		IgnoreUnknown: discoverIgnoreUnknown,
		Session:       &thermostat.Options{Timeout: timeout},
	})
	if err != nil {
		return err
	}

	if discoverFormat == "json" {
		return printSessionsJSON(sessions)
	}
	return printSessionsTable(sessions)
}

func printSessionsTable(sessions *discovery.Sessions) error {
	if sessions.Len() == 0 {
		fmt.Println("No thermostats found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ADDRESS\tNAME\tRSSI")
	for pair := sessions.Oldest(); pair != nil; pair = pair.Next() {
		s := pair.Value
		name := s.Name()
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\n", s.Address(), name, s.RSSI())
	}
	return w.Flush()
}

func printSessionsJSON(sessions *discovery.Sessions) error {
	type entry struct {
		Address string `json:"address"`
		Name    string `json:"name,omitempty"`
		RSSI    int    `json:"rssi"`
	}
	entries := make([]entry, 0, sessions.Len())
	for pair := sessions.Oldest(); pair != nil; pair = pair.Next() {
		entries = append(entries, entry{
			Address: pair.Value.Address(),
			Name:    pair.Value.Name(),
			RSSI:    pair.Value.RSSI(),
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}
