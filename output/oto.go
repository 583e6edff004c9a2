// SPDX-License-Identifier: EPL-2.0

// Package output plays a mixer.Engine through the system audio device.
//
// oto pulls stereo float32 frames from a mixer.StreamReader on its own
// goroutine; that pull is the render callback. oto allows one context per
// process, so a Device is opened once with a fixed sample rate.
package output

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/decred/slog"
	"github.com/ebitengine/oto/v3"

	"github.com/ik5/stemmix/mixer"
)

var ErrRateChanged = errors.New("device sample rate cannot change")

type Config struct {
	SampleRate  int
	BlockFrames int
	Log         slog.Logger
}

type Device struct {
	mtx    sync.Mutex
	ctx    *oto.Context
	player *oto.Player
	rate   int
	log    slog.Logger
}

// Open creates the device context and a paused player fed by e.
func Open(e *mixer.Engine, cfg Config) (*Device, error) {
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("output: invalid sample rate %d", cfg.SampleRate)
	}
	if cfg.BlockFrames <= 0 {
		cfg.BlockFrames = mixer.DefaultBlockSize
	}
	log := cfg.Log
	if log == nil {
		log = slog.Disabled
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(cfg.BlockFrames) * time.Second / time.Duration(cfg.SampleRate),
	})
	if err != nil {
		return nil, fmt.Errorf("opening audio device: %w", err)
	}
	<-ready

	player := ctx.NewPlayer(mixer.NewStreamReader(e, cfg.BlockFrames))
	// two blocks of float32 stereo
	player.SetBufferSize(cfg.BlockFrames * 2 * 2 * 4)

	log.Infof("Audio device open: %d Hz, %d frame blocks", cfg.SampleRate, cfg.BlockFrames)

	return &Device{ctx: ctx, player: player, rate: cfg.SampleRate, log: log}, nil
}

func (d *Device) SampleRate() int { return d.rate }

// Check fails when a session at rate cannot be played on this device.
func (d *Device) Check(rate int) error {
	if rate != d.rate {
		return fmt.Errorf("%w: device %d Hz, session %d Hz", ErrRateChanged, d.rate, rate)
	}

	return nil
}

func (d *Device) Start() {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.player != nil && !d.player.IsPlaying() {
		d.player.Play()
	}
}

// Pause stops pulling from the engine. Called from the host, never from
// the render path.
func (d *Device) Pause() {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.player != nil && d.player.IsPlaying() {
		d.player.Pause()
	}
}

func (d *Device) Playing() bool {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	return d.player != nil && d.player.IsPlaying()
}

func (d *Device) Close() error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.player == nil {
		return nil
	}

	err := d.player.Close()
	d.player = nil
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}
