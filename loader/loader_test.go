// SPDX-License-Identifier: EPL-2.0

package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ik5/stemmix/audio"
	"github.com/ik5/stemmix/internal/audiotest"
	"github.com/ik5/stemmix/resource"
)

func TestLoad_DecodesInOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	paths := []string{
		audiotest.WriteConstantWAV(t, dir, "drums.wav", 48000, 2, 480, 8192),
		audiotest.WriteConstantWAV(t, dir, "bass.wav", 48000, 1, 960, -8192),
		audiotest.WriteConstantWAV(t, dir, "Vocals.WAV", 48000, 1, 100, 0),
	}

	tracks, err := Load(context.Background(), paths, Options{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []struct {
		name     string
		frames   int
		channels int
	}{
		{"drums", 480, 2},
		{"bass", 960, 1},
		{"Vocals", 100, 1},
	}
	if len(tracks) != len(want) {
		t.Fatalf("Load() returned %d tracks, want %d", len(tracks), len(want))
	}
	for i, w := range want {
		tr := tracks[i]
		if tr.Name != w.name || tr.Buffer.Frames() != w.frames || tr.Buffer.Channels != w.channels {
			t.Errorf("tracks[%d] = %s %d frames x%d, want %s %d x%d",
				i, tr.Name, tr.Buffer.Frames(), tr.Buffer.Channels, w.name, w.frames, w.channels)
		}
		if tr.Buffer.SampleRate != 48000 {
			t.Errorf("tracks[%d] rate = %d, want 48000", i, tr.Buffer.SampleRate)
		}
	}

	if got := tracks[0].Buffer.Samples[0]; got != 0.25 {
		t.Errorf("drums sample = %f, want 0.25", got)
	}
	if got := tracks[1].Buffer.Samples[0]; got != -0.25 {
		t.Errorf("bass sample = %f, want -0.25", got)
	}
}

func TestLoad_SampleRateMismatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	paths := []string{
		audiotest.WriteConstantWAV(t, dir, "drums.wav", 44100, 1, 100, 0),
		audiotest.WriteConstantWAV(t, dir, "bass.wav", 48000, 1, 100, 0),
	}

	_, err := Load(context.Background(), paths, Options{})
	if !errors.Is(err, ErrSampleRateMismatch) {
		t.Fatalf("Load() error = %v, want ErrSampleRateMismatch", err)
	}

	var rateErr *SampleRateError
	if !errors.As(err, &rateErr) {
		t.Fatalf("Load() error = %T, want *SampleRateError in chain", err)
	}
	if rateErr.Rate != 48000 || rateErr.Expected != 44100 {
		t.Errorf("SampleRateError = %d/%d, want 48000/44100", rateErr.Rate, rateErr.Expected)
	}

	var loadErr *LoadError
	if !errors.As(err, &loadErr) || loadErr.Path != paths[1] {
		t.Errorf("LoadError path = %v, want %s", loadErr, paths[1])
	}

	msg := err.Error()
	for _, want := range []string{"44100", "48000", "stemresample -rate 44100"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not mention %q", msg, want)
		}
	}
}

func TestLoad_RequestedRate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	paths := []string{
		audiotest.WriteConstantWAV(t, dir, "a.wav", 48000, 1, 10, 0),
		audiotest.WriteConstantWAV(t, dir, "b.wav", 48000, 1, 10, 0),
	}

	if _, err := Load(context.Background(), paths, Options{SampleRate: 48000}); err != nil {
		t.Fatalf("Load(48000) error = %v", err)
	}

	_, err := Load(context.Background(), paths, Options{SampleRate: 44100})
	if !errors.Is(err, ErrSampleRateMismatch) {
		t.Fatalf("Load(44100) error = %v, want ErrSampleRateMismatch", err)
	}
	if !strings.Contains(err.Error(), "requested") {
		t.Errorf("error %q does not say the rate was requested", err)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := audiotest.WriteConstantWAV(t, dir, "good.wav", 48000, 1, 10, 0)
	garbage := filepath.Join(dir, "garbage.wav")
	if err := os.WriteFile(garbage, []byte("not audio at all"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		paths []string
		want  error
	}{
		{"no tracks", nil, ErrNoTracks},
		{"unknown extension", []string{good, filepath.Join(dir, "x.flac")}, ErrUnsupportedFormat},
		{"missing file", []string{filepath.Join(dir, "missing.wav")}, os.ErrNotExist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tracks, err := Load(context.Background(), tt.paths, Options{})
			if !errors.Is(err, tt.want) {
				t.Fatalf("Load() error = %v, want %v", err, tt.want)
			}
			if tracks != nil {
				t.Errorf("Load() returned tracks on error")
			}
		})
	}

	t.Run("undecodable", func(t *testing.T) {
		t.Parallel()

		_, err := Load(context.Background(), []string{good, garbage}, Options{})
		var loadErr *LoadError
		if !errors.As(err, &loadErr) || loadErr.Path != garbage {
			t.Fatalf("Load() error = %v, want LoadError for %s", err, garbage)
		}
	})
}

func TestLoad_CapacityCheck(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	paths := []string{
		audiotest.WriteConstantWAV(t, dir, "a.wav", 48000, 2, 1000, 0),
		audiotest.WriteConstantWAV(t, dir, "b.wav", 48000, 1, 1000, 0),
	}
	// 1000*2*4 + 1000*1*4
	const required = 12000

	tight := resource.NewPolicy(resource.GCDefault,
		resource.WithProber(resource.FixedMemory(required)),
		resource.WithThreshold(0.5))

	_, err := Load(context.Background(), paths, Options{Capacity: tight})
	if !errors.Is(err, resource.ErrInsufficientMemory) {
		t.Fatalf("Load() error = %v, want ErrInsufficientMemory", err)
	}

	var capErr *resource.CapacityError
	if !errors.As(err, &capErr) || capErr.Required != required {
		t.Errorf("CapacityError = %+v, want required %d", capErr, required)
	}

	roomy := resource.NewPolicy(resource.GCDefault,
		resource.WithProber(resource.FixedMemory(required*10)))
	if _, err := Load(context.Background(), paths, Options{Capacity: roomy}); err != nil {
		t.Fatalf("Load() with room error = %v", err)
	}
}

func TestLoad_Canceled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	paths := []string{audiotest.WriteConstantWAV(t, dir, "a.wav", 48000, 1, 10, 0)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Load(ctx, paths, Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Load() error = %v, want context.Canceled", err)
	}
}

func TestValidateTracks(t *testing.T) {
	t.Parallel()

	track := func(path string, rate, channels, frames int) Track {
		return Track{Path: path, Buffer: &audio.Buffer{
			Samples:    make([]float32, frames*channels),
			SampleRate: rate,
			Channels:   channels,
		}}
	}

	rate, err := ValidateTracks([]Track{
		track("a", 48000, 2, 10),
		track("b", 48000, 1, 20),
	}, 0)
	if err != nil || rate != 48000 {
		t.Fatalf("ValidateTracks() = %d, %v; want 48000, nil", rate, err)
	}

	ragged := track("r", 48000, 2, 10)
	ragged.Buffer.Samples = ragged.Buffer.Samples[:19]
	if _, err := ValidateTracks([]Track{ragged}, 0); !errors.Is(err, ErrInvalidTrack) {
		t.Errorf("ragged buffer error = %v, want ErrInvalidTrack", err)
	}

	if _, err := ValidateTracks([]Track{{Path: "nil"}}, 0); !errors.Is(err, ErrInvalidTrack) {
		t.Errorf("nil buffer error = %v, want ErrInvalidTrack", err)
	}
}

func TestValidateHeaders_EmptyTrack(t *testing.T) {
	t.Parallel()

	_, err := ValidateHeaders([]Header{
		{Path: "a", SampleRate: 48000, Channels: 1, Frames: 10},
		{Path: "b", SampleRate: 48000, Channels: 1, Frames: 0},
	}, 0)
	if !errors.Is(err, ErrEmptyTrack) {
		t.Fatalf("ValidateHeaders() error = %v, want ErrEmptyTrack", err)
	}

	// unknown lengths are decided after decoding
	if _, err := ValidateHeaders([]Header{{Path: "c", SampleRate: 48000, Channels: 2, Frames: -1}}, 0); err != nil {
		t.Errorf("ValidateHeaders(unknown length) error = %v", err)
	}
}

func TestRequiredBytes(t *testing.T) {
	t.Parallel()

	got := RequiredBytes([]Header{
		{Channels: 2, Frames: 100},
		{Channels: 1, Frames: -1},
		{Channels: 1, Frames: 50},
	})
	if want := uint64(100*2*4 + 50*4); got != want {
		t.Errorf("RequiredBytes() = %d, want %d", got, want)
	}
}

func TestLoad_DecodedBytesMatchRequiredBytes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	paths := []string{
		audiotest.WriteConstantWAV(t, dir, "pad.wav", 48000, 2, 10000, 0),
		audiotest.WriteConstantWAV(t, dir, "bass.wav", 48000, 1, 4097, 0),
	}

	tracks, err := Load(context.Background(), paths, Options{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	var held uint64
	for _, tr := range tracks {
		held += uint64(cap(tr.Buffer.Samples)) * 4
	}

	want := RequiredBytes([]Header{{Channels: 2, Frames: 10000}, {Channels: 1, Frames: 4097}})
	if held != want {
		t.Errorf("decoded tracks hold %d bytes, capacity check approved %d", held, want)
	}
}

func TestSampleRateError_Suggestion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{"stems/bass.mp3", "stemresample -rate 48000 stems/bass.mp3 stems/bass-48000.wav"},
		{"stems/Lead Vocals.wav", "stemresample -rate 48000 'stems/Lead Vocals.wav' 'stems/Lead Vocals-48000.wav'"},
		{"it's.ogg", `stemresample -rate 48000 'it'\''s.ogg' 'it'\''s-48000.wav'`},
	}

	for _, tt := range tests {
		e := &SampleRateError{Path: tt.path, Rate: 44100, Expected: 48000, Source: "stems/drums.wav"}
		if got := e.Suggestion(); got != tt.want {
			t.Errorf("Suggestion() for %q = %q, want %q", tt.path, got, tt.want)
		}
	}

	e := &SampleRateError{Path: "stems/bass.mp3", Rate: 44100, Expected: 48000, Source: "stems/drums.wav"}
	if !strings.Contains(e.Error(), `set by "stems/drums.wav"`) {
		t.Errorf("Error() = %q, want the source track named", e.Error())
	}
}

func TestDefaultRegistry(t *testing.T) {
	t.Parallel()

	reg := DefaultRegistry()
	for _, p := range []string{"a.wav", "a.MP3", "a.ogg", "a.aiff", "a.aif"} {
		if _, ok := reg.ForPath(p); !ok {
			t.Errorf("ForPath(%q) not found", p)
		}
	}
	if _, ok := reg.ForPath("a.flac"); ok {
		t.Error("ForPath(a.flac) found, want missing")
	}
}
