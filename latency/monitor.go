// SPDX-License-Identifier: EPL-2.0

// Package latency records how long each render block takes.
//
// The Monitor is written by the audio callback and read by the control
// plane. Writes are a single atomic slot store into a ring allocated once at
// construction; reads copy the ring and aggregate it. A block that takes
// longer than XrunFraction of its time budget counts as an xrun, a tuning
// signal rather than a failure.
//
// A disabled Monitor records nothing and reports the zero Stats. Callers
// are expected to skip their own timing entirely when Enabled is false.
package latency

import (
	"math"
	"sync/atomic"
	"time"
)

const (
	// DefaultCapacity is the ring size used when none is given.
	DefaultCapacity = 1024

	// XrunFraction of the block budget above which a block is an xrun.
	XrunFraction = 0.8
)

const (
	cursorBits = 40
	countMask  = 1<<cursorBits - 1
)

// Clock is the time source used to measure render blocks.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type Monitor struct {
	durations []atomic.Int64 // nanoseconds

	// cursor holds the reset epoch above cursorBits and the number of
	// blocks recorded in that epoch below it.
	cursor     atomic.Uint64
	xruns      atomic.Uint64
	underflows atomic.Uint64

	enabled       atomic.Bool
	budget        atomic.Int64 // nanoseconds
	xrunThreshold atomic.Int64 // nanoseconds
}

// NewMonitor allocates a disabled monitor with room for capacity blocks.
func NewMonitor(capacity int) *Monitor {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	return &Monitor{
		durations: make([]atomic.Int64, capacity),
	}
}

func (m *Monitor) Capacity() int { return len(m.durations) }

func (m *Monitor) Enabled() bool {
	return m != nil && m.enabled.Load()
}

func (m *Monitor) SetEnabled(on bool) {
	m.enabled.Store(on)
}

// SetBudget sets the per-block time budget, normally blockSize/sampleRate.
func (m *Monitor) SetBudget(d time.Duration) {
	m.budget.Store(int64(d))
	m.xrunThreshold.Store(int64(float64(d) * XrunFraction))
}

// BlockBudget is the time available to render blockSize frames.
func BlockBudget(blockSize, sampleRate int) time.Duration {
	if blockSize <= 0 || sampleRate <= 0 {
		return 0
	}

	return time.Duration(blockSize) * time.Second / time.Duration(sampleRate)
}

// Reset clears recorded history. The ring is reused, never reallocated.
//
// Reset may race with a Record already in flight. Moving to a new epoch
// makes that Record's publish fail, so its slot is never counted.
func (m *Monitor) Reset() {
	for i := range m.durations {
		m.durations[i].Store(0)
	}
	for {
		old := m.cursor.Load()
		if m.cursor.CompareAndSwap(old, (old>>cursorBits+1)<<cursorBits) {
			break
		}
	}
	m.xruns.Store(0)
	m.underflows.Store(0)
}

// written is the number of blocks recorded since the last Reset.
func (m *Monitor) written() uint64 {
	return m.cursor.Load() & countMask
}

// Record stores one block duration. It must only be called from the render
// goroutine; it does not allocate or block.
func (m *Monitor) Record(d time.Duration) {
	if !m.enabled.Load() {
		return
	}

	m.record(m.cursor.Load(), d)
}

// record stores d for the block claimed at cursor cur and publishes it
// unless a Reset moved the cursor since.
func (m *Monitor) record(cur uint64, d time.Duration) {
	idx := cur & countMask
	m.durations[idx%uint64(len(m.durations))].Store(int64(d))
	if idx == countMask || !m.cursor.CompareAndSwap(cur, cur+1) {
		return
	}

	if limit := m.xrunThreshold.Load(); limit > 0 && int64(d) > limit {
		if n := m.xruns.Load(); n != math.MaxUint64 {
			m.xruns.Store(n + 1)
		}
	}
}

// RecordUnderflow counts an underflow reported by the audio driver.
func (m *Monitor) RecordUnderflow() {
	if !m.enabled.Load() {
		return
	}

	m.underflows.Add(1)
}

// Snapshot returns the recorded window ordered oldest to newest. Slots that
// were never written are left out.
func (m *Monitor) Snapshot() []time.Duration {
	written := m.written()
	if written == 0 {
		return nil
	}

	capacity := uint64(len(m.durations))
	filled := min(written, capacity)
	start := written - filled

	out := make([]time.Duration, filled)
	for i := range filled {
		out[i] = time.Duration(m.durations[(start+i)%capacity].Load())
	}

	return out
}

// Stats aggregates the recorded window. Control plane only.
func (m *Monitor) Stats() Stats {
	if !m.Enabled() {
		return Stats{}
	}

	s := Stats{
		Budget:           time.Duration(m.budget.Load()),
		Xruns:            m.xruns.Load(),
		TotalBlocks:      m.written(),
		DriverUnderflows: m.underflows.Load(),
	}

	window := m.Snapshot()
	if len(window) == 0 {
		return s
	}

	var sum time.Duration
	s.Min = window[0]
	for _, d := range window {
		sum += d
		s.Min = min(s.Min, d)
		s.Max = max(s.Max, d)
	}
	s.Count = len(window)
	s.Mean = sum / time.Duration(len(window))

	if s.Budget > 0 {
		s.UsagePct = 100 * float64(s.Mean) / float64(s.Budget)
		s.PeakUsagePct = 100 * float64(s.Max) / float64(s.Budget)
	}

	return s
}
