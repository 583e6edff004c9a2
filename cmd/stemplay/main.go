// SPDX-License-Identifier: EPL-2.0

// Command stemplay plays the stems of one song together and lets you mix
// them live from the terminal.
//
//	stemplay [flags] drums.wav bass.wav vocals.wav keys.ogg
//
// Settings come from STEMMIX_* environment variables and can be overridden
// with flags. Logs go to a file since the terminal belongs to the UI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/decred/slog"

	"github.com/ik5/stemmix/config"
	"github.com/ik5/stemmix/mixer"
	"github.com/ik5/stemmix/output"
	"github.com/ik5/stemmix/resource"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] <track> [track...]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Supported formats: wav, mp3, ogg, aiff. All tracks must share one sample rate.\n\n")
	flag.PrintDefaults()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "stemplay: %v\n", err)

		var rateErr *mixer.SampleRateError
		if errors.As(err, &rateErr) {
			fmt.Fprintf(os.Stderr, "\nfix: %s\n", rateErr.Suggestion())
		}
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	profile := flag.String("profile", cfg.Profile, "hardware profile: "+fmt.Sprint(config.ProfileNames()))
	block := flag.Int("block", 0, "block size in frames (overrides the profile)")
	rate := flag.Int("rate", cfg.SampleRate, "required sample rate in Hz (0: take the first track's)")
	gc := flag.String("gc", "", "GC policy during playback: default or suspend (overrides the profile)")
	monitor := flag.Bool("latency", cfg.LatencyMonitor, "record render timing and show it")
	logFile := flag.String("log", cfg.LogFile, "log file")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		return errors.New("no tracks given")
	}

	if *profile != cfg.Profile {
		if err := cfg.ApplyProfile(*profile); err != nil {
			return err
		}
	}
	if *block > 0 {
		cfg.BlockSize = *block
	}
	if *gc != "" {
		if cfg.GCPolicy, err = resource.ParseGCPolicy(*gc); err != nil {
			return err
		}
	}
	cfg.SampleRate = *rate
	cfg.LatencyMonitor = *monitor
	if err := cfg.Validate(); err != nil {
		return err
	}

	f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer f.Close()

	backend := slog.NewBackend(f)
	log := backend.Logger("MIXR")
	log.SetLevel(cfg.LogLevel)
	loadLog := backend.Logger("LOAD")
	loadLog.SetLevel(cfg.LogLevel)

	log.Infof("Profile %s: block %d, GC %s", cfg.Profile, cfg.BlockSize, cfg.GCPolicy)

	policy := resource.NewPolicy(cfg.GCPolicy,
		resource.WithThreshold(cfg.MemoryThreshold),
		resource.WithLogger(loadLog))

	engine := mixer.New(
		mixer.WithLogger(log),
		mixer.WithLatencyCapacity(cfg.LatencyCapacity),
		mixer.WithPolicy(policy),
	)
	defer engine.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	err = engine.LoadFiles(ctx, flag.Args(), mixer.LoadOptions{
		SampleRate:     cfg.SampleRate,
		BlockSize:      cfg.BlockSize,
		GCPolicy:       cfg.GCPolicy,
		LatencyMonitor: cfg.LatencyMonitor,
	})
	if err != nil {
		return err
	}

	dev, err := output.Open(engine, output.Config{
		SampleRate:  engine.SampleRate(),
		BlockFrames: cfg.BlockSize,
		Log:         backend.Logger("AUDO"),
	})
	if err != nil {
		return err
	}
	defer dev.Close()
	dev.Start()

	p := tea.NewProgram(newModel(engine, dev, log), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("%w", err)
	}

	log.Infof("Exiting: %s", engine.LatencyStats())

	return nil
}
