// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
)

type fakeMP3 struct {
	sampleRate int
	samples    []int16
	offset     int
	length     int64
}

func (m *fakeMP3) SampleRate() int { return m.sampleRate }
func (m *fakeMP3) Length() int64   { return m.length }

func (m *fakeMP3) Read(buf []byte) (int, error) {
	if m.offset >= len(m.samples) {
		return 0, io.EOF
	}

	count := min(len(buf)/2, len(m.samples)-m.offset)
	for i := range count {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(m.samples[m.offset+i]))
	}
	m.offset += count

	if m.offset >= len(m.samples) {
		return count * 2, io.EOF
	}

	return count * 2, nil
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	pcm := []int16{0, 16384, -16384, 32767, -32768, 8192}
	src := &source{dec: &fakeMP3{sampleRate: 44100, samples: pcm}, sampleRate: 44100}

	dst := make([]float32, 4)
	n, err := src.ReadSamples(dst)
	if err != nil || n != 4 {
		t.Fatalf("ReadSamples() = %d, %v; want 4, nil", n, err)
	}
	want := []float32{0, 0.5, -0.5, 32767.0 / 32768.0}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}

	n, err = src.ReadSamples(dst)
	if n != 2 || err != io.EOF {
		t.Errorf("final ReadSamples() = %d, %v; want 2, io.EOF", n, err)
	}
	if dst[0] != -1 || dst[1] != 0.25 {
		t.Errorf("tail = %v, want [-1 0.25]", dst[:2])
	}
}

func TestSource_Frames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		length int64
		want   int64
	}{
		{"seekable", 44100 * 4, 44100},
		{"unknown", -1, -1},
		{"empty", 0, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := &source{dec: &fakeMP3{length: tt.length}}
			if got := src.Frames(); got != tt.want {
				t.Errorf("Frames() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSource_Metadata(t *testing.T) {
	t.Parallel()

	src := &source{dec: &fakeMP3{}, sampleRate: 48000, buf: make([]byte, 8192)}
	if src.Channels() != 2 || src.SampleRate() != 48000 || src.BufSize() != 4096 {
		t.Errorf("metadata = x%d %d Hz buf %d; want x2 48000 Hz buf 4096",
			src.Channels(), src.SampleRate(), src.BufSize())
	}
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	for _, data := range [][]byte{nil, []byte("This is not MP3 data")} {
		if _, err := (Decoder{}).Decode(bytes.NewReader(data)); err == nil {
			t.Errorf("Decode(%q) error = nil, want error", data)
		}
	}
}
