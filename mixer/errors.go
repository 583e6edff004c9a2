// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"errors"

	"github.com/ik5/stemmix/loader"
)

var (
	ErrNotLoaded        = errors.New("no session loaded")
	ErrTrackIndex       = errors.New("track index out of range")
	ErrSeekWhilePlaying = errors.New("cannot seek while playing")
	ErrClosed           = errors.New("engine is closed")
)

// Load failures are reported with the loader's errors so callers can match
// them without importing loader.
var (
	ErrNoTracks           = loader.ErrNoTracks
	ErrUnsupportedFormat  = loader.ErrUnsupportedFormat
	ErrSampleRateMismatch = loader.ErrSampleRateMismatch
	ErrEmptyTrack         = loader.ErrEmptyTrack
)

type (
	LoadError       = loader.LoadError
	SampleRateError = loader.SampleRateError
)
