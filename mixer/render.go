// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"time"
)

// StatusFlags are the driver's per-callback status bits.
type StatusFlags uint32

const (
	OutputUnderflow StatusFlags = 1 << iota
	OutputOverflow
	PrimingOutput
)

// Render fills out with frameCount interleaved stereo frames and returns
// the number of frames written. frameCount is clamped to the room in out.
//
// Render is the device callback: it never blocks, allocates, or fails.
// Anything it cannot make sense of renders as silence.
func (e *Engine) Render(out []float32, frameCount int, timestamp time.Duration, flags StatusFlags) int {
	timed := e.monitor.Enabled()
	var start time.Time
	if timed {
		start = e.clock.Now()
	}

	frameCount = min(max(frameCount, 0), len(out)/outputChannels)
	block := out[:frameCount*outputChannels]
	clear(block)

	e.lastTimestamp.Store(int64(timestamp))
	if flags&OutputUnderflow != 0 {
		e.monitor.RecordUnderflow()
	}

	if s := e.session.Load(); s != nil && e.transport.State() == Playing {
		if s.render(block, frameCount, e.smoother) {
			e.transport.finish(s.generation)
		}
	}

	e.framesProcessed.Add(uint64(frameCount))

	if timed {
		e.monitor.Record(e.clock.Now().Sub(start))
	}

	return frameCount
}
