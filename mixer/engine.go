// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/decred/slog"

	"github.com/ik5/stemmix/audio"
	"github.com/ik5/stemmix/latency"
	"github.com/ik5/stemmix/loader"
	"github.com/ik5/stemmix/resource"
	"github.com/ik5/stemmix/utils"
)

// Engine owns the loaded session, the transport and the monitors.
type Engine struct {
	// mu serializes control-plane calls. Render never takes it.
	mu sync.Mutex

	session   atomic.Pointer[Session]
	transport Transport
	smoother  Smoother
	monitor   *latency.Monitor
	clock     latency.Clock
	policy    *resource.Policy
	registry  *audio.Registry
	log       slog.Logger

	// master gain carried into every new session
	master float32
	closed bool

	framesProcessed atomic.Uint64
	lastTimestamp   atomic.Int64
}

type Option func(*Engine)

func WithLogger(l slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithLatencyCapacity sizes the latency ring. It is allocated once, here.
func WithLatencyCapacity(n int) Option {
	return func(e *Engine) { e.monitor = latency.NewMonitor(n) }
}

// WithClock replaces the clock used to time render blocks.
func WithClock(c latency.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

func WithPolicy(p *resource.Policy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithSmoothing sets the gain smoothing coefficient.
func WithSmoothing(alpha float32) Option {
	return func(e *Engine) { e.smoother = NewSmoother(alpha) }
}

// WithRegistry sets the decoders LoadFiles may use.
func WithRegistry(r *audio.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

func New(opts ...Option) *Engine {
	e := &Engine{
		smoother: NewSmoother(DefaultSmoothing),
		clock:    latency.SystemClock{},
		log:      slog.Disabled,
		master:   1,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.monitor == nil {
		e.monitor = latency.NewMonitor(latency.DefaultCapacity)
	}
	if e.policy == nil {
		e.policy = resource.NewPolicy(resource.GCDefault, resource.WithLogger(e.log))
	}
	if e.registry == nil {
		e.registry = loader.DefaultRegistry()
	}

	return e
}

type LoadOptions struct {
	// SampleRate required of every track; zero adopts the first track's.
	SampleRate int
	// BlockSize is the expected callback size in frames, used for the
	// latency budget. Zero means DefaultBlockSize.
	BlockSize int
	GCPolicy  resource.GCPolicy
	// LatencyMonitor turns block timing on for this session.
	LatencyMonitor bool
	// Names overrides track names by position. Missing entries fall back
	// to the file name.
	Names []string
}

// LoadFiles decodes paths and installs them as the new session. On error
// the current session is left as it was.
func (e *Engine) LoadFiles(ctx context.Context, paths []string, opts LoadOptions) error {
	tracks, err := loader.Load(ctx, paths, loader.Options{
		SampleRate: opts.SampleRate,
		Registry:   e.registry,
		Capacity:   e.policy,
		Log:        e.log,
	})
	if err != nil {
		e.log.Warnf("Load of %d tracks failed: %v", len(paths), err)
		return err
	}

	rate := tracks[0].Buffer.SampleRate
	return e.install(tracks, rate, opts)
}

// LoadBuffers installs copies of already decoded buffers as the new
// session. The caller keeps ownership of bufs.
func (e *Engine) LoadBuffers(bufs []*audio.Buffer, opts LoadOptions) error {
	tracks := make([]loader.Track, len(bufs))
	for i, b := range bufs {
		name := fmt.Sprintf("track %d", i+1)
		if i < len(opts.Names) && opts.Names[i] != "" {
			name = opts.Names[i]
		}
		tracks[i] = loader.Track{Name: name, Path: name, Buffer: b}
	}

	rate, err := loader.ValidateTracks(tracks, opts.SampleRate)
	if err != nil {
		return err
	}

	for i, t := range tracks {
		owned := *t.Buffer
		owned.Samples = slices.Clone(t.Buffer.Samples)
		tracks[i].Buffer = &owned
	}

	return e.install(tracks, rate, opts)
}

func (e *Engine) install(loaded []loader.Track, rate int, opts LoadOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}

	block := opts.BlockSize
	if block <= 0 {
		block = DefaultBlockSize
	}

	tracks := make([]*TrackBuffer, len(loaded))
	for i, t := range loaded {
		name := t.Name
		if i < len(opts.Names) && opts.Names[i] != "" {
			name = opts.Names[i]
		}
		tracks[i] = newTrackBuffer(name, t.Buffer)
	}

	s := newSession(tracks, rate, block, e.master)

	s.generation = e.transport.advance()
	e.policy.Release()
	e.policy.SetGC(opts.GCPolicy)

	e.monitor.SetEnabled(false)
	e.monitor.Reset()
	e.monitor.SetBudget(latency.BlockBudget(block, rate))
	e.monitor.SetEnabled(opts.LatencyMonitor)

	e.framesProcessed.Store(0)
	e.lastTimestamp.Store(0)
	e.session.Store(s)

	e.log.Infof("Loaded %d tracks, %d frames at %d Hz (%.1fs), block %d, GC %s",
		len(tracks), s.totalFrames, rate, float64(s.totalFrames)/float64(rate), block, opts.GCPolicy)

	return nil
}

func (e *Engine) current() (*Session, error) {
	if e.closed {
		return nil, ErrClosed
	}

	s := e.session.Load()
	if s == nil {
		return nil, ErrNotLoaded
	}

	return s, nil
}

func (e *Engine) track(i int) (*Session, *TrackBuffer, error) {
	s, err := e.current()
	if err != nil {
		return nil, nil, err
	}
	if i < 0 || i >= len(s.tracks) {
		return nil, nil, fmt.Errorf("%w: %d of %d", ErrTrackIndex, i, len(s.tracks))
	}

	return s, s.tracks[i], nil
}

// Play starts or resumes playback. A session that played to the end starts
// again from the beginning.
func (e *Engine) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.current()
	if err != nil {
		return err
	}
	if e.transport.State() == Playing {
		return nil
	}

	if s.position.Load() >= s.totalFrames {
		s.position.Store(0)
	}

	e.policy.Acquire()
	e.transport.play()
	e.log.Debugf("Play from frame %d", s.position.Load())

	return nil
}

// Pause holds the position. Pausing when not playing does nothing.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.current(); err != nil {
		return err
	}

	if e.transport.pause() {
		e.log.Debugf("Paused at frame %d", e.Position())
	}
	e.policy.Release()

	return nil
}

// Stop halts playback and rewinds to the start.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopLocked()
}

func (e *Engine) stopLocked() {
	prev := e.transport.stop()
	e.policy.Release()

	if s := e.session.Load(); s != nil {
		s.position.Store(0)
	}
	if prev != Stopped {
		e.log.Debugf("Stopped (was %s)", prev)
	}
}

// Seek moves to frame, clamped to the session. It fails while playing.
func (e *Engine) Seek(frame int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.current()
	if err != nil {
		return err
	}
	if e.transport.State() == Playing {
		return ErrSeekWhilePlaying
	}

	s.position.Store(min(max(frame, 0), s.totalFrames))

	return nil
}

// SeekSeconds is Seek with the position given in seconds.
func (e *Engine) SeekSeconds(seconds float64) error {
	rate := e.SampleRate()
	if rate == 0 {
		return ErrNotLoaded
	}
	if math.IsNaN(seconds) {
		seconds = 0
	}

	return e.Seek(int64(math.Round(seconds * float64(rate))))
}

// SetGain sets the target gain of track i, clamped to [0, 1].
func (e *Engine) SetGain(i int, gain float32) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, t, err := e.track(i)
	if err != nil {
		return err
	}
	t.target.Store(gain)

	return nil
}

// SetMasterGain sets the master target gain, clamped to [0, 1]. It also
// applies to sessions loaded later.
func (e *Engine) SetMasterGain(gain float32) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.master = utils.Clamp01(gain)
	if s := e.session.Load(); s != nil {
		s.master.Store(e.master)
	}
}

func (e *Engine) Mute(i int, muted bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, t, err := e.track(i)
	if err != nil {
		return err
	}
	t.muted.Store(muted)

	return nil
}

func (e *Engine) Solo(i int, soloed bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, t, err := e.track(i)
	if err != nil {
		return err
	}
	t.soloed.Store(soloed)
	s.recomputeSolo()

	return nil
}

// ClearSolo unsolos every track.
func (e *Engine) ClearSolo() {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.session.Load()
	if s == nil {
		return
	}
	for _, t := range s.tracks {
		t.soloed.Store(false)
	}
	s.soloActive.Store(false)
}

// TakeStopRequest reports, once, that playback reached the end. Hosts poll
// it and stop their device when it returns true.
func (e *Engine) TakeStopRequest() bool {
	if !e.transport.TakeStopRequest() {
		return false
	}

	e.mu.Lock()
	if e.transport.State() != Playing {
		e.policy.Release()
	}
	e.mu.Unlock()
	e.log.Debugf("End of session after %d frames", e.FramesProcessed())

	return true
}

// LatencyStats aggregates the recorded block timings. It is the zero Stats
// when monitoring is off.
func (e *Engine) LatencyStats() latency.Stats {
	return e.monitor.Stats()
}

func (e *Engine) TransportState() TransportState { return e.transport.State() }

// Position is the next frame to be rendered.
func (e *Engine) Position() int64 {
	if s := e.session.Load(); s != nil {
		return s.position.Load()
	}

	return 0
}

func (e *Engine) PositionSeconds() float64 {
	s := e.session.Load()
	if s == nil || s.sampleRate == 0 {
		return 0
	}

	return float64(s.position.Load()) / float64(s.sampleRate)
}

func (e *Engine) TotalFrames() int64 {
	if s := e.session.Load(); s != nil {
		return s.totalFrames
	}

	return 0
}

// Duration is the length of the loaded session.
func (e *Engine) Duration() time.Duration {
	s := e.session.Load()
	if s == nil || s.sampleRate == 0 {
		return 0
	}

	return time.Duration(float64(s.totalFrames) / float64(s.sampleRate) * float64(time.Second))
}

func (e *Engine) SampleRate() int {
	if s := e.session.Load(); s != nil {
		return s.sampleRate
	}

	return 0
}

func (e *Engine) BlockSize() int {
	if s := e.session.Load(); s != nil {
		return s.blockSize
	}

	return 0
}

// FramesProcessed counts every frame handed to the device since load,
// silence included.
func (e *Engine) FramesProcessed() uint64 { return e.framesProcessed.Load() }

// LastTimestamp is the device timestamp of the most recent render call.
func (e *Engine) LastTimestamp() time.Duration {
	return time.Duration(e.lastTimestamp.Load())
}

// MasterGain returns the master target and smoothed gains.
func (e *Engine) MasterGain() (target, smoothed float32) {
	s := e.session.Load()
	if s == nil {
		e.mu.Lock()
		defer e.mu.Unlock()

		return e.master, e.master
	}

	return s.master.Load(), s.masterSmoothed.Load()
}

// Tracks snapshots the controls of every track.
func (e *Engine) Tracks() []TrackStatus {
	s := e.session.Load()
	if s == nil {
		return nil
	}

	out := make([]TrackStatus, len(s.tracks))
	for i := range s.tracks {
		out[i] = s.status(i)
	}

	return out
}

// Policy exposes the resource policy, mainly for reporting.
func (e *Engine) Policy() *resource.Policy { return e.policy }

// Close stops playback and drops the session. Render keeps producing
// silence afterwards.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}

	e.stopLocked()
	e.transport.TakeStopRequest()
	e.monitor.SetEnabled(false)
	e.session.Store(nil)
	e.closed = true
	e.log.Debugf("Engine closed")

	return nil
}
