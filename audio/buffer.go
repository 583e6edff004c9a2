// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"slices"
)

// Buffer is a fully decoded, interleaved PCM stream held in memory.
type Buffer struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// Frames returns the number of whole frames in b.
func (b *Buffer) Frames() int {
	if b == nil || b.Channels <= 0 {
		return 0
	}

	return len(b.Samples) / b.Channels
}

// Bytes is the memory held by the sample data.
func (b *Buffer) Bytes() uint64 {
	if b == nil {
		return 0
	}

	return uint64(len(b.Samples)) * 4
}

// ReadAll drains src into a Buffer. When src reports its length through
// Lengther the buffer is allocated once at exactly that size and only grows
// if the source turns out to hold more; otherwise it grows by doubling.
// src is not closed.
func ReadAll(src Source) (*Buffer, error) {
	channels := src.Channels()
	if channels <= 0 {
		return nil, ErrInvalidChannels
	}

	chunk := src.BufSize()
	if chunk <= 0 {
		chunk = 4096
	}
	// keep reads frame aligned
	chunk -= chunk % channels
	if chunk == 0 {
		chunk = channels
	}

	var samples []float32
	frames := Frames(src)
	known := frames > 0
	if known {
		samples = make([]float32, 0, int(frames)*channels)
	} else {
		samples = make([]float32, 0, src.SampleRate()*channels*2)
	}

	// overflow holds reads past a reported length, so a full buffer is only
	// reallocated when the source really has more
	var overflow []float32

	for {
		start := len(samples)
		aside := false
		var dst []float32
		switch {
		case start < cap(samples):
			dst = samples[start:min(start+chunk, cap(samples))]
		case known:
			if overflow == nil {
				overflow = make([]float32, chunk)
			}
			dst, aside = overflow, true
		default:
			grown := make([]float32, start, start+max(chunk, cap(samples)))
			copy(grown, samples)
			samples = grown
			dst = samples[start : start+chunk]
		}

		n, err := src.ReadSamples(dst)
		if aside {
			samples = append(samples, overflow[:n]...)
		} else {
			samples = samples[:start+n]
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading samples: %w", err)
		}
		if n == 0 {
			// guard against sources that never report EOF
			break
		}
	}

	// drop a trailing partial frame
	samples = slices.Clip(samples[:len(samples)-len(samples)%channels])

	return &Buffer{
		Samples:    samples,
		SampleRate: src.SampleRate(),
		Channels:   channels,
	}, nil
}

// BufferSource replays a Buffer through the Source interface.
type BufferSource struct {
	buf *Buffer
	pos int
}

func NewBufferSource(b *Buffer) *BufferSource {
	return &BufferSource{buf: b}
}

func (s *BufferSource) SampleRate() int { return s.buf.SampleRate }
func (s *BufferSource) Channels() int   { return s.buf.Channels }
func (s *BufferSource) BufSize() int    { return 4096 }
func (s *BufferSource) Close() error    { return nil }
func (s *BufferSource) Frames() int64   { return int64(s.buf.Frames()) }

func (s *BufferSource) ReadSamples(dst []float32) (int, error) {
	if s.pos >= len(s.buf.Samples) {
		return 0, io.EOF
	}

	n := copy(dst, s.buf.Samples[s.pos:])
	s.pos += n
	if s.pos >= len(s.buf.Samples) {
		return n, io.EOF
	}

	return n, nil
}
