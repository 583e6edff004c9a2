// SPDX-License-Identifier: EPL-2.0

package mixer

import "sync/atomic"

type TransportState int32

const (
	Stopped TransportState = iota
	Playing
	Paused
)

func (s TransportState) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// transport word layout: state in the low byte, the stop request in bit 8,
// the load generation above it.
const (
	stateMask     = 0xff
	stopRequested = 1 << 8
	genShift      = 9
)

func packTransport(gen uint64, s TransportState, requested bool) uint64 {
	w := gen<<genShift | uint64(uint8(s))
	if requested {
		w |= stopRequested
	}
	return w
}

func wordState(w uint64) TransportState { return TransportState(w & stateMask) }
func wordGen(w uint64) uint64           { return w >> genShift }

// Transport holds the play state, the one-shot stop request and the
// generation of the session they belong to, all in one atomic word. The
// render path only ever moves Playing to Stopped for its own generation and
// raises the request; everything else happens on the control plane.
type Transport struct {
	word atomic.Uint64
}

func (t *Transport) State() TransportState {
	return wordState(t.word.Load())
}

// Generation identifies the session the transport currently drives.
func (t *Transport) Generation() uint64 {
	return wordGen(t.word.Load())
}

// update applies fn until the swap lands and returns the previous word.
func (t *Transport) update(fn func(old uint64) uint64) uint64 {
	for {
		old := t.word.Load()
		if t.word.CompareAndSwap(old, fn(old)) {
			return old
		}
	}
}

// advance starts a new generation, Stopped with no request pending, and
// returns it. Blocks still rendering the previous session can no longer
// finish the transport.
func (t *Transport) advance() uint64 {
	old := t.update(func(old uint64) uint64 {
		return packTransport(wordGen(old)+1, Stopped, false)
	})
	return wordGen(old) + 1
}

// play enters Playing and clears a stale stop request. It reports whether
// the state changed.
func (t *Transport) play() bool {
	old := t.update(func(old uint64) uint64 {
		return packTransport(wordGen(old), Playing, false)
	})
	return wordState(old) != Playing
}

func (t *Transport) pause() bool {
	for {
		old := t.word.Load()
		if wordState(old) != Playing {
			return false
		}
		if t.word.CompareAndSwap(old, packTransport(wordGen(old), Paused, old&stopRequested != 0)) {
			return true
		}
	}
}

func (t *Transport) stop() TransportState {
	old := t.update(func(old uint64) uint64 {
		return packTransport(wordGen(old), Stopped, old&stopRequested != 0)
	})
	return wordState(old)
}

// finish is called by render at the end of the session of generation gen.
// It reports whether it stopped the transport.
func (t *Transport) finish(gen uint64) bool {
	for {
		old := t.word.Load()
		if wordGen(old) != gen || wordState(old) != Playing {
			return false
		}
		if t.word.CompareAndSwap(old, packTransport(gen, Stopped, true)) {
			return true
		}
	}
}

// TakeStopRequest reports whether render asked for the device to be
// stopped, and clears the request.
func (t *Transport) TakeStopRequest() bool {
	for {
		old := t.word.Load()
		if old&stopRequested == 0 {
			return false
		}
		if t.word.CompareAndSwap(old, old&^stopRequested) {
			return true
		}
	}
}
