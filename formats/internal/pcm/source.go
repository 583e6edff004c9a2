// SPDX-License-Identifier: EPL-2.0

// Package pcm adapts go-audio integer PCM decoders to audio.Source.
package pcm

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"

	"github.com/ik5/stemmix/utils"
)

// Reader is the part of the go-audio wav and aiff decoders that Source
// needs.
type Reader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// Source scales integer PCM from a Reader into float32.
type Source struct {
	r        Reader
	format   *goaudio.Format
	channels int
	frames   int64
	scale    float32
	ints     *goaudio.IntBuffer
}

// NewSource wraps r. frames is the header length, -1 when unknown.
func NewSource(r Reader, format *goaudio.Format, bitDepth int, frames int64) *Source {
	return &Source{
		r:        r,
		format:   format,
		channels: format.NumChannels,
		frames:   frames,
		scale:    utils.PCMScale(bitDepth),
	}
}

func (s *Source) SampleRate() int { return s.format.SampleRate }
func (s *Source) Channels() int   { return s.channels }
func (s *Source) Close() error    { return nil }
func (s *Source) Frames() int64   { return s.frames }

func (s *Source) BufSize() int {
	if s.ints != nil {
		return cap(s.ints.Data)
	}

	return 4096
}

func (s *Source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if s.ints == nil || cap(s.ints.Data) < len(dst) {
		s.ints = &goaudio.IntBuffer{Data: make([]int, len(dst)), Format: s.format}
	}
	s.ints.Data = s.ints.Data[:len(dst)]

	n, err := s.r.PCMBuffer(s.ints)
	if n == 0 {
		if err != nil && err != io.EOF {
			return 0, fmt.Errorf("reading pcm: %w", err)
		}
		return 0, io.EOF
	}

	for i, v := range s.ints.Data[:n] {
		dst[i] = float32(v) / s.scale
	}

	// a short read without error means the sound data is exhausted
	if n < len(dst) && err == nil {
		err = io.EOF
	}

	return n, err
}
