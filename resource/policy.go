// SPDX-License-Identifier: EPL-2.0

// Package resource keeps playback away from paging and GC pauses.
//
// Policy does two things, both on the control plane and never from the
// render callback:
//
//   - CheckCapacity rejects a load whose decoded tracks would take more than
//     a fraction (default 70%) of currently available memory.
//   - Acquire/Release suspend the garbage collector for the duration of
//     playback when the GC policy asks for it. The render path does not
//     allocate, so nothing new accumulates while collection is off.
package resource

import (
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/decred/slog"
)

// DefaultThreshold is the share of available memory a load may claim.
const DefaultThreshold = 0.70

// GCPolicy selects what happens to the collector during playback.
type GCPolicy int

const (
	// GCDefault leaves the collector alone.
	GCDefault GCPolicy = iota
	// GCSuspendDuringPlayback turns collection off while playing.
	GCSuspendDuringPlayback
)

func (p GCPolicy) String() string {
	switch p {
	case GCDefault:
		return "default"
	case GCSuspendDuringPlayback:
		return "suspend"
	default:
		return fmt.Sprintf("GCPolicy(%d)", int(p))
	}
}

// ParseGCPolicy accepts the names produced by String.
func ParseGCPolicy(s string) (GCPolicy, error) {
	switch s {
	case "", "default":
		return GCDefault, nil
	case "suspend":
		return GCSuspendDuringPlayback, nil
	default:
		return GCDefault, fmt.Errorf("%w: %q", ErrUnknownGCPolicy, s)
	}
}

// MemoryProber reports how many bytes can be allocated without swapping.
type MemoryProber interface {
	Available() (uint64, error)
}

// gcPercentSetter matches debug.SetGCPercent; tests swap it out since the
// collector setting is process wide.
type gcPercentSetter func(percent int) int

type Policy struct {
	gc        GCPolicy
	prober    MemoryProber
	threshold float64
	setGC     gcPercentSetter
	log       slog.Logger

	mtx       sync.Mutex
	suspended bool
	prevGC    int
}

type Option func(*Policy)

// WithProber replaces the system memory prober.
func WithProber(p MemoryProber) Option {
	return func(pol *Policy) { pol.prober = p }
}

// WithThreshold sets the share of available memory a load may claim.
// Values outside (0, 1] are ignored.
func WithThreshold(f float64) Option {
	return func(pol *Policy) {
		if f > 0 && f <= 1 {
			pol.threshold = f
		}
	}
}

func WithLogger(l slog.Logger) Option {
	return func(pol *Policy) { pol.log = l }
}

func withGCSetter(fn gcPercentSetter) Option {
	return func(pol *Policy) { pol.setGC = fn }
}

func NewPolicy(gc GCPolicy, opts ...Option) *Policy {
	p := &Policy{
		gc:        gc,
		prober:    SystemMemory{},
		threshold: DefaultThreshold,
		setGC:     debug.SetGCPercent,
		log:       slog.Disabled,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *Policy) GC() GCPolicy {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	return p.gc
}

// SetGC changes the GC policy for the next Acquire. An active suspension is
// released first so the previous collector setting is restored.
func (p *Policy) SetGC(gc GCPolicy) {
	p.Release()

	p.mtx.Lock()
	defer p.mtx.Unlock()
	p.gc = gc
}

// CheckCapacity fails with a *CapacityError when required bytes exceed the
// threshold share of available memory.
func (p *Policy) CheckCapacity(required uint64) error {
	available, err := p.prober.Available()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMemoryProbe, err)
	}

	limit := uint64(float64(available) * p.threshold)
	if required > limit {
		cerr := &CapacityError{
			Required:  required,
			Available: available,
			Limit:     limit,
			Threshold: p.threshold,
		}
		p.log.Warnf("Rejecting load: %v", cerr)
		return cerr
	}

	p.log.Debugf("Capacity ok: %s of %s allowed (%s available)",
		FormatBytes(required), FormatBytes(limit), FormatBytes(available))

	return nil
}

// Acquire enters playback. With GCSuspendDuringPlayback it turns the
// collector off. Calling it again while active is a no-op.
func (p *Policy) Acquire() {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if p.gc != GCSuspendDuringPlayback || p.suspended {
		return
	}

	p.prevGC = p.setGC(-1)
	p.suspended = true
	p.log.Debugf("GC suspended for playback (was %d%%)", p.prevGC)
}

// Release leaves playback and restores the collector setting that was in
// effect before Acquire. Safe to call when not active.
func (p *Policy) Release() {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if !p.suspended {
		return
	}

	p.setGC(p.prevGC)
	p.suspended = false
	p.log.Debugf("GC restored to %d%%", p.prevGC)
}

// Suspended reports whether the collector is currently held off.
func (p *Policy) Suspended() bool {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	return p.suspended
}
