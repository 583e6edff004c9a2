// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"testing"

	"github.com/ik5/stemmix/audio"
)

func constBuffer(rate, channels, frames int, value float32) *audio.Buffer {
	samples := make([]float32, frames*channels)
	for i := range samples {
		samples[i] = value
	}

	return &audio.Buffer{Samples: samples, SampleRate: rate, Channels: channels}
}

// loadedEngine returns an engine with one mono track per value.
func loadedEngine(t testing.TB, frames int, values ...float32) *Engine {
	t.Helper()

	bufs := make([]*audio.Buffer, len(values))
	for i, v := range values {
		bufs[i] = constBuffer(48000, 1, frames, v)
	}

	e := New()
	if err := e.LoadBuffers(bufs, LoadOptions{BlockSize: 64}); err != nil {
		t.Fatalf("LoadBuffers() error = %v", err)
	}
	t.Cleanup(func() { e.Close() })

	return e
}

func near(a, b float32) bool {
	d := a - b
	return d < 1e-5 && d > -1e-5
}
