// SPDX-License-Identifier: EPL-2.0

// Package mixer renders a session of pre-loaded tracks into a stereo
// output stream.
//
// The Engine has two sides. The control plane (UI, CLI, tests) loads
// sessions and changes gains, mute, solo and transport state. The render
// side is a single callback, Render, invoked by the audio device thread.
// Render takes no locks, makes no allocations, does no I/O and never logs;
// everything it reads is published through sync/atomic so that control
// changes show up at the next block.
//
// Gain changes are smoothed once per block with a one-pole filter so that
// steps in volume never click:
//
//	smoothed = smoothed*(1-alpha) + target*alpha
//
// A muted track is silent. Otherwise, when any track is soloed only soloed
// tracks play. Every track keeps smoothing whether or not it is audible, so
// unmuting continues from where the filter was.
//
// When playback runs past the longest track Render stops the transport and
// raises a one-shot stop request. Render cannot tear down the device it is
// called from, so a host polls TakeStopRequest from its own goroutine and
// stops the device there.
package mixer
