// SPDX-License-Identifier: EPL-2.0

package loader

// Header is what is known about a track before it is decoded.
type Header struct {
	Path       string
	SampleRate int
	Channels   int
	Frames     int64 // -1 when unknown
}

// ValidateHeaders checks that every track can be mixed into one session
// and returns the session sample rate. When want is zero the first track
// decides the rate.
func ValidateHeaders(headers []Header, want int) (int, error) {
	if len(headers) == 0 {
		return 0, ErrNoTracks
	}

	rate, source := want, sourceRequested
	if rate <= 0 {
		rate, source = headers[0].SampleRate, headers[0].Path
	}

	for _, h := range headers {
		if h.Channels <= 0 || h.SampleRate <= 0 {
			return 0, &LoadError{Path: h.Path, Err: ErrInvalidTrack}
		}
		if h.Frames == 0 {
			return 0, &LoadError{Path: h.Path, Err: ErrEmptyTrack}
		}
		if h.SampleRate != rate {
			return 0, &LoadError{Path: h.Path, Err: &SampleRateError{
				Path:     h.Path,
				Rate:     h.SampleRate,
				Expected: rate,
				Source:   source,
			}}
		}
	}

	return rate, nil
}

// ValidateTracks applies ValidateHeaders to decoded tracks and additionally
// checks that sample data holds whole frames.
func ValidateTracks(tracks []Track, want int) (int, error) {
	headers := make([]Header, len(tracks))
	for i, t := range tracks {
		if t.Buffer == nil {
			return 0, &LoadError{Path: t.Path, Err: ErrInvalidTrack}
		}
		if t.Buffer.Channels > 0 && len(t.Buffer.Samples)%t.Buffer.Channels != 0 {
			return 0, &LoadError{Path: t.Path, Err: ErrInvalidTrack}
		}

		headers[i] = Header{
			Path:       t.Path,
			SampleRate: t.Buffer.SampleRate,
			Channels:   t.Buffer.Channels,
			Frames:     int64(t.Buffer.Frames()),
		}
	}

	return ValidateHeaders(headers, want)
}

// RequiredBytes is the memory the decoded float32 samples will occupy.
// Tracks of unknown length count as zero.
func RequiredBytes(headers []Header) uint64 {
	var total uint64
	for _, h := range headers {
		if h.Frames > 0 {
			total += uint64(h.Frames) * uint64(h.Channels) * 4
		}
	}

	return total
}
