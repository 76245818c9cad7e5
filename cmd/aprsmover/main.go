/* Move an APRS object along a route via APRS-IS */
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	aprsmover "github.com/doismellburning/aprsmover/src"
)

func main() {
	var configPath = pflag.StringP("config", "c", "config.yaml", "Path to config YAML file")
	var verbose = pflag.BoolP("verbose", "v", false, "Verbose. Log every connect attempt, backoff, and packet sent.")
	var dryRun = pflag.Bool("dry-run", false, "Print packets to stdout instead of transmitting")
	var stateFile = pflag.String("state-file", "", "Path to state file for restart resilience (JSON)")
	var help = pflag.Bool("help", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Move an APRS object along a route via APRS-IS.\n")
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if *help {
		pflag.Usage()
		return
	}

	aprsmover.SetupLogging(*verbose)
	var logger = aprsmover.Logger

	var cfg, waypoints, err = aprsmover.LoadConfig(*configPath)
	if err != nil {
		logger.Error("Config error", "err", err)
		os.Exit(1)
	}

	route, routeErr := aprsmover.NewRoute(waypoints)
	if routeErr != nil {
		logger.Error("Route error", "err", routeErr)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sink aprsmover.PacketSink
	var reconnect func(context.Context) error

	if *dryRun {
		logger.Info("Dry run, not connecting to APRS-IS")
		sink = &aprsmover.ConsoleSink{W: os.Stdout}
	} else {
		var client = aprsmover.NewClient(cfg.APRSIS.Host, cfg.APRSIS.Port, cfg.APRSIS.Callsign, string(cfg.APRSIS.Passcode))
		if err := client.ConnectWithRetry(ctx); err != nil {
			if ctx.Err() != nil {
				// Interrupted while still trying to connect.
				os.Exit(0)
			}
			logger.Error("Could not connect to APRS-IS", "err", err)
			os.Exit(1)
		}
		sink = client
		reconnect = client.ConnectWithRetry
	}

	var states aprsmover.StateStore = aprsmover.NullStateStore{}
	if *stateFile != "" {
		states = &aprsmover.FileStateStore{Path: *stateFile}
	}

	var scheduler = &aprsmover.Scheduler{
		Route:      route,
		Clock:      &aprsmover.Clock{},
		Object:     cfg.ObjectDescriptor(),
		Callsign:   cfg.APRSIS.Callsign,
		Comments:   cfg.Object.Comments,
		Sink:       sink,
		Reconnect:  reconnect,
		States:     states,
		Interval:   time.Duration(cfg.Movement.BeaconInterval) * time.Second,
		SpeedKmh:   cfg.Movement.SpeedKmh,
		Loop:       cfg.Movement.Loop,
		OnComplete: aprsmover.CompletionPolicy(cfg.Movement.OnComplete),
	}

	if err := scheduler.Run(ctx); err != nil {
		logger.Error("Beaconing failed", "err", err)
		os.Exit(1)
	}
}
