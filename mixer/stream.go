// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"time"

	"github.com/ik5/stemmix/utils"
)

const bytesPerFrame = outputChannels * 4

// StreamReader adapts Render to io.Reader for pull-based devices. It
// yields float32 little-endian stereo frames and never returns an error:
// when nothing plays it yields silence.
type StreamReader struct {
	engine  *Engine
	scratch []float32
}

// NewStreamReader renders at most blockFrames frames per Render call.
func NewStreamReader(e *Engine, blockFrames int) *StreamReader {
	if blockFrames <= 0 {
		blockFrames = DefaultBlockSize
	}

	return &StreamReader{
		engine:  e,
		scratch: make([]float32, blockFrames*outputChannels),
	}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	frames := len(p) / bytesPerFrame
	maxBlock := len(r.scratch) / outputChannels

	for done := 0; done < frames; {
		n := min(frames-done, maxBlock)
		r.engine.Render(r.scratch, n, r.streamTime(), 0)
		utils.PutFloat32LE(p[done*bytesPerFrame:], r.scratch[:n*outputChannels])
		done += n
	}

	// oto asks in whole frames; anything else is padded with silence
	clear(p[frames*bytesPerFrame:])

	return len(p), nil
}

// streamTime is the stream position of the next block, derived from the
// frames rendered so far.
func (r *StreamReader) streamTime() time.Duration {
	rate := r.engine.SampleRate()
	if rate == 0 {
		return 0
	}

	return time.Duration(r.engine.FramesProcessed()) * time.Second / time.Duration(rate)
}
