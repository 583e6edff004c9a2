// SPDX-License-Identifier: EPL-2.0

package stemmix

import (
	"fmt"
	"io"

	"github.com/ik5/stemmix/audio"
	"github.com/ik5/stemmix/utils"
)

// Resample converts src to targetRate and collects it into a Buffer with
// the same channel count. A source already at targetRate is copied through
// unchanged. src is not closed.
func Resample(src audio.Source, targetRate int) (*audio.Buffer, error) {
	if targetRate <= 0 {
		return nil, fmt.Errorf("resample: invalid target rate %d", targetRate)
	}

	var pipeline audio.Source = src
	if src.SampleRate() != targetRate {
		pipeline = audio.NewResampler(src, targetRate)
	}

	buf, err := audio.ReadAll(pipeline)
	if err != nil {
		return nil, fmt.Errorf("resample to %d Hz: %w", targetRate, err)
	}

	return buf, nil
}

// ResampleToMono16 resamples src to targetRate, averages it down to mono
// and returns 16-bit PCM along with the output rate. bufferSize is the
// number of samples read per pass.
func ResampleToMono16(src audio.Source, targetRate int, bufferSize int) ([]int16, int, error) {
	if bufferSize <= 0 {
		bufferSize = 4096
	}

	mono := audio.NewMonoMixer(audio.NewResampler(src, targetRate))

	estimated := targetRate * 2
	if frames := audio.Frames(mono); frames > 0 {
		estimated = int(frames)
	}
	pcm16 := make([]int16, 0, estimated)
	buf := make([]float32, bufferSize)

	for {
		n, err := mono.ReadSamples(buf)
		for _, x := range buf[:n] {
			pcm16 = append(pcm16, utils.Float32ToInt16(x))
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, targetRate, fmt.Errorf("%w", err)
		}
		if n == 0 {
			break
		}
	}

	return pcm16, targetRate, nil
}
