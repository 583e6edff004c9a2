// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"sync/atomic"

	"github.com/ik5/stemmix/audio"
)

// TrackBuffer is one decoded track plus its mix controls. Samples are
// immutable after load.
type TrackBuffer struct {
	name     string
	samples  []float32
	channels int
	frames   int

	target   gainValue
	smoothed gainValue
	muted    atomic.Bool
	soloed   atomic.Bool
}

func newTrackBuffer(name string, buf *audio.Buffer) *TrackBuffer {
	t := &TrackBuffer{
		name:     name,
		samples:  buf.Samples,
		channels: buf.Channels,
		frames:   buf.Frames(),
	}
	t.target.Store(1)
	t.smoothed.Store(1)

	return t
}

func (t *TrackBuffer) Name() string  { return t.name }
func (t *TrackBuffer) Frames() int   { return t.frames }
func (t *TrackBuffer) Channels() int { return t.channels }

// mixInto adds n frames starting at pos, scaled by gain, onto the stereo
// block out. Frames past the end of the track contribute nothing.
func (t *TrackBuffer) mixInto(out []float32, pos int64, n int, gain float32) {
	if gain == 0 || n <= 0 || pos < 0 || pos >= int64(t.frames) {
		return
	}

	start := int(pos)
	n = min(n, t.frames-start, len(out)/outputChannels)

	switch t.channels {
	case 1:
		src := t.samples[start : start+n]
		for i, v := range src {
			v *= gain
			out[2*i] += v
			out[2*i+1] += v
		}
	case 2:
		src := t.samples[start*2 : (start+n)*2]
		for i := range n {
			v := (src[2*i] + src[2*i+1]) * 0.5 * gain
			out[2*i] += v
			out[2*i+1] += v
		}
	default:
		c := t.channels
		if c <= 0 {
			return
		}
		for i := range n {
			off := (start + i) * c
			v := audio.AverageFrame(t.samples[off:off+c]) * gain
			out[2*i] += v
			out[2*i+1] += v
		}
	}
}

// TrackStatus is a point-in-time copy of a track's controls.
type TrackStatus struct {
	Index        int
	Name         string
	Gain         float32
	SmoothedGain float32
	Muted        bool
	Soloed       bool
	Audible      bool
	Frames       int
	Channels     int
}
