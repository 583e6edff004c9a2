// SPDX-License-Identifier: EPL-2.0

// Package config resolves playback settings from a hardware profile and
// STEMMIX_* environment variables. The engine itself never inspects the
// machine; hosts pick a profile and pass the result in.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/decred/slog"

	"github.com/ik5/stemmix/latency"
	"github.com/ik5/stemmix/resource"
)

var (
	ErrUnknownProfile   = errors.New("unknown profile")
	ErrInvalidBlockSize = errors.New("block size must be between 32 and 8192 frames")
	ErrInvalidThreshold = errors.New("memory threshold must be in (0, 1]")
)

// Profile is a set of defaults tuned for a class of machine.
type Profile struct {
	Name      string
	BlockSize int
	GCPolicy  resource.GCPolicy
}

var profiles = []Profile{
	// modern machines with a low latency driver
	{Name: "low-latency", BlockSize: 256, GCPolicy: resource.GCDefault},
	{Name: "balanced", BlockSize: 1024, GCPolicy: resource.GCDefault},
	// 2008-era dual cores: big blocks and no collector pauses while playing
	{Name: "legacy", BlockSize: 2048, GCPolicy: resource.GCSuspendDuringPlayback},
}

const DefaultProfile = "balanced"

// LookupProfile finds a preset by name, case-insensitively.
func LookupProfile(name string) (Profile, error) {
	for _, p := range profiles {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}

	return Profile{}, fmt.Errorf("%w: %q (have %s)", ErrUnknownProfile, name, strings.Join(ProfileNames(), ", "))
}

func ProfileNames() []string {
	names := make([]string, len(profiles))
	for i, p := range profiles {
		names[i] = p.Name
	}
	slices.Sort(names)

	return names
}

// Config holds everything a host needs to set up playback.
type Config struct {
	Profile string

	BlockSize int
	GCPolicy  resource.GCPolicy
	// SampleRate required of every track; zero adopts the first track's.
	SampleRate int

	LatencyMonitor  bool
	LatencyCapacity int
	MemoryThreshold float64

	LogFile  string
	LogLevel slog.Level
}

// Load reads the environment. The profile supplies defaults that the more
// specific variables override.
func Load() (Config, error) {
	name := envStr("STEMMIX_PROFILE", DefaultProfile)
	p, err := LookupProfile(name)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Profile:         p.Name,
		BlockSize:       envInt("STEMMIX_BLOCK_SIZE", p.BlockSize),
		GCPolicy:        p.GCPolicy,
		SampleRate:      envInt("STEMMIX_SAMPLE_RATE", 0),
		LatencyMonitor:  envBool("STEMMIX_LATENCY_MONITOR", false),
		LatencyCapacity: envInt("STEMMIX_LATENCY_CAPACITY", latency.DefaultCapacity),
		MemoryThreshold: envFloat("STEMMIX_MEMORY_THRESHOLD", resource.DefaultThreshold),
		LogFile:         envStr("STEMMIX_LOG_FILE", "stemplay.log"),
		LogLevel:        slog.LevelInfo,
	}

	if v := os.Getenv("STEMMIX_GC"); v != "" {
		gc, err := resource.ParseGCPolicy(v)
		if err != nil {
			return Config{}, err
		}
		cfg.GCPolicy = gc
	}

	if v := os.Getenv("STEMMIX_LOG_LEVEL"); v != "" {
		lvl, ok := slog.LevelFromString(v)
		if !ok {
			return Config{}, fmt.Errorf("unknown log level %q", v)
		}
		cfg.LogLevel = lvl
	}

	return cfg, cfg.Validate()
}

// ApplyProfile switches to the named preset, replacing block size and GC
// policy.
func (c *Config) ApplyProfile(name string) error {
	p, err := LookupProfile(name)
	if err != nil {
		return err
	}

	c.Profile = p.Name
	c.BlockSize = p.BlockSize
	c.GCPolicy = p.GCPolicy

	return nil
}

func (c Config) Validate() error {
	if c.BlockSize < 32 || c.BlockSize > 8192 {
		return fmt.Errorf("%w: %d", ErrInvalidBlockSize, c.BlockSize)
	}
	if !(c.MemoryThreshold > 0 && c.MemoryThreshold <= 1) {
		return fmt.Errorf("%w: %v", ErrInvalidThreshold, c.MemoryThreshold)
	}

	return nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
