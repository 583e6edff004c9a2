// SPDX-License-Identifier: EPL-2.0

package pcm

import (
	"errors"
	"io"
	"testing"

	goaudio "github.com/go-audio/audio"
)

type fakeReader struct {
	data []int
	err  error
}

func (f *fakeReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	n := copy(buf.Data, f.data)
	f.data = f.data[n:]

	return n, f.err
}

var mono = &goaudio.Format{NumChannels: 1, SampleRate: 44100}

func TestSource_BitDepthScaling(t *testing.T) {
	t.Parallel()

	tests := []struct {
		bitDepth int
		raw      int
		want     float32
	}{
		{8, 64, 0.5},
		{16, -16384, -0.5},
		{24, 4194304, 0.5},
		{32, -1073741824, -0.5},
	}

	for _, tt := range tests {
		src := NewSource(&fakeReader{data: []int{tt.raw}}, mono, tt.bitDepth, 1)

		dst := make([]float32, 4)
		n, err := src.ReadSamples(dst)
		if n != 1 || err != io.EOF {
			t.Errorf("%d-bit ReadSamples() = %d, %v; want 1, io.EOF", tt.bitDepth, n, err)
		}
		if dst[0] != tt.want {
			t.Errorf("%d-bit sample = %v, want %v", tt.bitDepth, dst[0], tt.want)
		}
	}
}

func TestSource_Drained(t *testing.T) {
	t.Parallel()

	src := NewSource(&fakeReader{}, mono, 16, 0)
	if n, err := src.ReadSamples(make([]float32, 8)); n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() = %d, %v; want 0, io.EOF", n, err)
	}
}

func TestSource_ReaderError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	src := NewSource(&fakeReader{err: boom}, mono, 16, -1)
	if _, err := src.ReadSamples(make([]float32, 8)); !errors.Is(err, boom) {
		t.Errorf("ReadSamples() error = %v, want boom", err)
	}
}

func TestSource_Metadata(t *testing.T) {
	t.Parallel()

	src := NewSource(&fakeReader{}, &goaudio.Format{NumChannels: 2, SampleRate: 48000}, 24, 1234)
	if src.SampleRate() != 48000 || src.Channels() != 2 || src.Frames() != 1234 {
		t.Errorf("metadata = %d Hz x%d, %d frames", src.SampleRate(), src.Channels(), src.Frames())
	}
}
