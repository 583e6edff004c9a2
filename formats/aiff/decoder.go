// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/aiff"

	"github.com/ik5/stemmix/audio"
	"github.com/ik5/stemmix/formats/internal/pcm"
)

type Decoder struct{}

// Decode reads the COMM chunk and returns a source positioned at the
// sound data. Input that cannot seek is buffered in memory first.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading aiff data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}
	dec.ReadInfo()

	if err := checkBitDepth(int(dec.BitDepth)); err != nil {
		return nil, err
	}

	format := dec.Format()
	if format == nil || format.NumChannels == 0 || format.SampleRate == 0 {
		return nil, ErrUnsupportedAiffLayout
	}

	return pcm.NewSource(dec, format, int(dec.BitDepth), int64(dec.NumSampleFrames)), nil
}

func checkBitDepth(depth int) error {
	switch depth {
	case 8, 16, 24, 32:
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, depth)
	}
}
