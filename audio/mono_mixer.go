// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// MonoMixer folds every frame of src into a single channel by averaging.
// This is the same downmix the multitrack mixer applies per block.
type MonoMixer struct {
	src Source
	tmp []float32
}

func NewMonoMixer(src Source) *MonoMixer {
	return &MonoMixer{
		src: src,
		tmp: make([]float32, 4096),
	}
}

func (m *MonoMixer) SampleRate() int { return m.src.SampleRate() }
func (m *MonoMixer) Channels() int   { return 1 }
func (m *MonoMixer) BufSize() int    { return m.src.BufSize() }
func (m *MonoMixer) Close() error {
	err := m.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// Frames passes through the length of the underlying source.
func (m *MonoMixer) Frames() int64 { return Frames(m.src) }

// AverageFrame returns the mean of one interleaved frame.
func AverageFrame(frame []float32) float32 {
	switch len(frame) {
	case 0:
		return 0
	case 1:
		return frame[0]
	case 2:
		return (frame[0] + frame[1]) * 0.5
	}

	var sum float32
	for _, v := range frame {
		sum += v
	}

	return sum / float32(len(frame))
}

func (m *MonoMixer) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if m.src.Channels() == 1 {
		return m.src.ReadSamples(dst)
	}

	channels := m.src.Channels()
	samplesNeeded := len(dst) * channels

	// grow, never shrink
	if cap(m.tmp) < samplesNeeded {
		m.tmp = make([]float32, max(samplesNeeded, 8192))
	}
	m.tmp = m.tmp[:samplesNeeded]

	n, err := m.src.ReadSamples(m.tmp)
	if n == 0 {
		return 0, err
	}
	frames := n / channels

	switch channels {
	case 2:
		for f := range frames {
			idx := f << 1
			dst[f] = (m.tmp[idx] + m.tmp[idx+1]) * 0.5
		}
	default:
		for f := range frames {
			base := f * channels
			dst[f] = AverageFrame(m.tmp[base : base+channels])
		}
	}

	return frames, err
}
