// SPDX-License-Identifier: EPL-2.0

package loader

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	ErrNoTracks           = errors.New("no tracks to load")
	ErrUnsupportedFormat  = errors.New("unsupported audio format")
	ErrSampleRateMismatch = errors.New("sample rate mismatch")
	ErrEmptyTrack         = errors.New("track has no audio")
	ErrInvalidTrack       = errors.New("track buffer is malformed")
)

// LoadError ties a failure to the track that caused it.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// SampleRateError reports a track whose rate differs from the session rate
// and how to convert it.
type SampleRateError struct {
	Path     string
	Rate     int
	Expected int
	// Source names where Expected came from: a track path or "requested".
	Source string
}

func (e *SampleRateError) Error() string {
	return fmt.Sprintf("%v: %q is %d Hz but the session runs at %d Hz (%s); convert it first: %s",
		ErrSampleRateMismatch, e.Path, e.Rate, e.Expected, e.origin(), e.Suggestion())
}

func (e *SampleRateError) Unwrap() error { return ErrSampleRateMismatch }

func (e *SampleRateError) origin() string {
	if e.Source == "" || e.Source == sourceRequested {
		return "requested"
	}

	return "set by " + strconv.Quote(e.Source)
}

// Suggestion is the command that converts the offending track.
func (e *SampleRateError) Suggestion() string {
	ext := filepath.Ext(e.Path)
	out := fmt.Sprintf("%s-%d.wav", strings.TrimSuffix(e.Path, ext), e.Expected)

	return fmt.Sprintf("stemresample -rate %d %s %s", e.Expected, shellQuote(e.Path), shellQuote(out))
}

// shellQuote single-quotes p when a POSIX shell would split or expand it.
func shellQuote(p string) string {
	if p != "" && !strings.ContainsAny(p, " \t\n'\"\\$`&|;<>()*?[]{}!#~") {
		return p
	}

	return "'" + strings.ReplaceAll(p, "'", `'\''`) + "'"
}
