// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/stemmix/utils"
)

// Resampler streams from src to a target sample rate using Catmull-Rom
// interpolation over a four frame window. Channel count is preserved.
// When downsampling a one-pole low-pass runs ahead of the interpolator.
//
// The mixer never resamples; this type backs the offline corrective tool.
type Resampler struct {
	src      Source
	srcRate  float64
	dstRate  float64
	ratio    float64 // source frames per output frame
	channels int

	// window[0] = t-1, window[1] = t0, window[2] = t+1, window[3] = t+2
	window [4][]float32
	filled [4]bool

	pos    float64 // fractional position between window[1] and window[2]
	srcBuf []float32
	eof    bool

	lowPass     bool
	filterAlpha float32
	filterState []float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	ratio := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:         src,
		srcRate:     float64(src.SampleRate()),
		dstRate:     float64(dstRate),
		ratio:       ratio,
		channels:    channels,
		srcBuf:      make([]float32, max(channels, 1)),
		lowPass:     ratio > 1.0,
		filterAlpha: 0.5,
		filterState: make([]float32, channels),
	}
	for i := range r.window {
		r.window[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return int(r.dstRate) }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }
func (r *Resampler) Close() error {
	err := r.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// Frames estimates the output length from the source length.
func (r *Resampler) Frames() int64 {
	in := Frames(r.src)
	if in < 0 {
		return -1
	}

	return int64(float64(in) / r.ratio)
}

// readFrame pulls one source frame into slot, running the low-pass when
// downsampling. It reports whether a frame was read.
func (r *Resampler) readFrame(slot int) (bool, error) {
	n, err := r.src.ReadSamples(r.srcBuf[:r.channels])
	got := n > 0
	if got {
		copy(r.window[slot], r.srcBuf[:n])
		if r.lowPass {
			for c := range r.channels {
				v := r.filterAlpha*r.window[slot][c] + (1-r.filterAlpha)*r.filterState[c]
				r.window[slot][c] = v
				r.filterState[c] = v
			}
		}
	}

	if err == io.EOF {
		r.eof = true
		return got, nil
	}
	if err != nil {
		return got, fmt.Errorf("%w", err)
	}

	return got, nil
}

func (r *Resampler) prime() error {
	for i := range r.window {
		n, err := r.src.ReadSamples(r.srcBuf[:r.channels])
		if n > 0 {
			copy(r.window[i], r.srcBuf[:n])
			r.filled[i] = true
			if i == 0 && r.lowPass {
				// seed the filter to avoid a warm-up transient
				copy(r.filterState, r.srcBuf[:n])
			}
		}

		if err == io.EOF {
			r.eof = true
			if i == 0 && n == 0 {
				return io.EOF
			}
			last := i
			if n == 0 {
				last = i - 1
			}
			for j := last + 1; j < len(r.window); j++ {
				copy(r.window[j], r.window[last])
				r.filled[j] = true
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w", err)
		}
	}

	return nil
}

func (r *Resampler) advance() error {
	if r.eof {
		return io.EOF
	}

	copy(r.window[0], r.window[1])
	copy(r.window[1], r.window[2])
	copy(r.window[2], r.window[3])
	r.filled[0], r.filled[1], r.filled[2] = r.filled[1], r.filled[2], r.filled[3]

	got, err := r.readFrame(3)
	if err != nil {
		return err
	}
	r.filled[3] = got
	if r.eof && !got {
		return io.EOF
	}

	return nil
}

// ReadSamples produces samples at the target rate.
// len(dst) must be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if r.channels <= 0 || len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.filled[1] {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	written := 0
	framesNeeded := len(dst) / r.channels

	for written < framesNeeded {
		for r.pos >= 1.0 {
			r.pos -= 1.0
			if err := r.advance(); err != nil {
				if err == io.EOF {
					if written == 0 {
						return 0, io.EOF
					}
					return written * r.channels, io.EOF
				}
				return written * r.channels, err
			}
		}

		if !r.filled[1] || !r.filled[2] {
			if written == 0 {
				return 0, io.EOF
			}
			return written * r.channels, io.EOF
		}

		x := float32(r.pos)
		for c := range r.channels {
			y0 := r.window[1][c]
			if r.filled[0] {
				y0 = r.window[0][c]
			}
			y3 := r.window[2][c]
			if r.filled[3] {
				y3 = r.window[3][c]
			}
			dst[written*r.channels+c] = utils.CubicInterpolate(y0, r.window[1][c], r.window[2][c], y3, x)
		}

		written++
		r.pos += r.ratio
	}

	return written * r.channels, nil
}
