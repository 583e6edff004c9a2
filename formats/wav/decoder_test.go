// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/stemmix/audio"
	"github.com/ik5/stemmix/internal/audiotest"
)

func TestDecoder_Mono(t *testing.T) {
	t.Parallel()

	samples := []int16{0, 16384, -16384, 32767, -32768, 0}
	src, err := Decoder{}.Decode(bytes.NewReader(audiotest.PCM16WAV(8000, 1, samples)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if src.SampleRate() != 8000 || src.Channels() != 1 {
		t.Errorf("format = %d Hz x%d, want 8000 Hz x1", src.SampleRate(), src.Channels())
	}
	if got := audio.Frames(src); got != int64(len(samples)) {
		t.Errorf("Frames() = %d, want %d", got, len(samples))
	}

	buf, err := audio.ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(buf.Samples) != len(samples) {
		t.Fatalf("decoded %d samples, want %d", len(buf.Samples), len(samples))
	}
	for i, s := range samples {
		want := float32(s) / 32768.0
		if math.Abs(float64(buf.Samples[i]-want)) > 1e-6 {
			t.Errorf("sample %d = %v, want %v", i, buf.Samples[i], want)
		}
	}
}

func TestDecoder_StereoNonSeekable(t *testing.T) {
	t.Parallel()

	samples := []int16{100, -100, 200, -200}
	// bytes.Buffer is not a ReadSeeker, so the decoder buffers it
	src, err := Decoder{}.Decode(bytes.NewBuffer(audiotest.PCM16WAV(44100, 2, samples)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if src.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", src.Channels())
	}
	if got := audio.Frames(src); got != 2 {
		t.Errorf("Frames() = %d, want 2", got)
	}
}

func TestDecoder_NotWav(t *testing.T) {
	t.Parallel()

	inputs := map[string][]byte{
		"text":  []byte("this is certainly not a RIFF file, not even close"),
		"empty": {},
	}

	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := Decoder{}.Decode(bytes.NewReader(data))
			if !errors.Is(err, ErrNotWavFile) {
				t.Errorf("Decode() error = %v, want ErrNotWavFile", err)
			}
		})
	}
}

func TestWriteWAV16_RoundTrip(t *testing.T) {
	t.Parallel()

	samples := []int16{1, -2, 300, -400, 32767}
	out := new(bytes.Buffer)
	if err := WriteWAV16(out, 16000, samples); err != nil {
		t.Fatalf("WriteWAV16() error = %v", err)
	}
	if out.Len() != 44+len(samples)*2 {
		t.Errorf("wrote %d bytes, want %d", out.Len(), 44+len(samples)*2)
	}

	src, err := Decoder{}.Decode(bytes.NewReader(out.Bytes()))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if src.SampleRate() != 16000 || audio.Frames(src) != int64(len(samples)) {
		t.Errorf("decoded %d Hz, %d frames; want 16000 Hz, %d frames",
			src.SampleRate(), audio.Frames(src), len(samples))
	}
}

func TestWriteWAV_PreservesChannels(t *testing.T) {
	t.Parallel()

	in := &audio.Buffer{
		Samples:    []float32{0.5, -0.5, 0.25, -0.25, 0, 0},
		SampleRate: 48000,
		Channels:   2,
	}

	path := filepath.Join(t.TempDir(), "stereo.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteWAV(f, in); err != nil {
		t.Fatalf("WriteWAV() error = %v", err)
	}
	f.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	src, err := Decoder{}.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	got, err := audio.ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}

	if got.Channels != 2 || got.SampleRate != 48000 || got.Frames() != 3 {
		t.Fatalf("decoded %d Hz x%d, %d frames; want 48000 Hz x2, 3 frames",
			got.SampleRate, got.Channels, got.Frames())
	}
	for i := range in.Samples {
		if math.Abs(float64(got.Samples[i]-in.Samples[i])) > 1.0/16384 {
			t.Errorf("sample %d = %v, want ≈%v", i, got.Samples[i], in.Samples[i])
		}
	}
}

func BenchmarkDecoder_ReadAll(b *testing.B) {
	data := audiotest.PCM16WAV(44100, 2, make([]int16, 44100*2))

	b.ReportAllocs()

	for b.Loop() {
		src, err := Decoder{}.Decode(bytes.NewReader(data))
		if err != nil {
			b.Fatal(err)
		}
		if _, err := audio.ReadAll(src); err != nil {
			b.Fatal(err)
		}
	}
}
