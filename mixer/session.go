// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"sync/atomic"
)

const (
	outputChannels = 2

	DefaultBlockSize = 1024
)

// Session is the mix state of one loaded song. The track list, rate and
// length are fixed at load; controls and position change while it plays.
type Session struct {
	tracks      []*TrackBuffer
	sampleRate  int
	blockSize   int
	totalFrames int64
	// transport generation this session was installed under
	generation uint64

	master         gainValue
	masterSmoothed gainValue
	soloActive     atomic.Bool
	position       atomic.Int64
}

func newSession(tracks []*TrackBuffer, sampleRate, blockSize int, master float32) *Session {
	s := &Session{
		tracks:     tracks,
		sampleRate: sampleRate,
		blockSize:  blockSize,
	}
	for _, t := range tracks {
		s.totalFrames = max(s.totalFrames, int64(t.frames))
	}
	s.master.Store(master)
	s.masterSmoothed.Store(master)

	return s
}

// Audible applies mute/solo precedence: mute always wins, then solo.
func Audible(muted, soloed, soloActive bool) bool {
	if muted {
		return false
	}
	if soloActive {
		return soloed
	}

	return true
}

func (s *Session) recomputeSolo() {
	active := false
	for _, t := range s.tracks {
		if t.soloed.Load() {
			active = true
			break
		}
	}
	s.soloActive.Store(active)
}

func (s *Session) status(i int) TrackStatus {
	t := s.tracks[i]
	muted, soloed := t.muted.Load(), t.soloed.Load()

	return TrackStatus{
		Index:        i,
		Name:         t.name,
		Gain:         t.target.Load(),
		SmoothedGain: t.smoothed.Load(),
		Muted:        muted,
		Soloed:       soloed,
		Audible:      Audible(muted, soloed, s.soloActive.Load()),
		Frames:       t.frames,
		Channels:     t.channels,
	}
}

// render mixes one block into out, which must already be silent. It
// reports whether the block reached the end of the session.
func (s *Session) render(out []float32, frames int, sm Smoother) (finished bool) {
	loaded := s.position.Load()
	pos := min(max(loaded, 0), s.totalFrames)
	end := min(pos+int64(frames), s.totalFrames)
	available := int(end - pos)

	master := sm.Step(s.masterSmoothed.Load(), s.master.Load())
	s.masterSmoothed.Store(master)
	soloActive := s.soloActive.Load()

	for _, t := range s.tracks {
		g := sm.Step(t.smoothed.Load(), t.target.Load())
		t.smoothed.Store(g)

		if !Audible(t.muted.Load(), t.soloed.Load(), soloActive) {
			continue
		}
		t.mixInto(out, pos, available, g*master)
	}

	// a seek issued during this block wins over the advance
	if !s.position.CompareAndSwap(loaded, end) {
		return false
	}

	return end >= s.totalFrames
}
