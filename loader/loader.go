// SPDX-License-Identifier: EPL-2.0

// Package loader turns track files into memory resident buffers.
//
// Loading runs in three phases so that cheap checks fail before expensive
// decoding starts:
//
//  1. open every file and read its header (rate, channels, length)
//  2. validate sample rates and run the capacity check
//  3. decode all tracks fully, in parallel
//
// Any failure closes every opened file and returns a *LoadError naming the
// track. Nothing is returned on failure, so a caller's previous state stays
// as it was.
package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/decred/slog"
	"golang.org/x/sync/errgroup"

	"github.com/ik5/stemmix/audio"
	"github.com/ik5/stemmix/formats/aiff"
	"github.com/ik5/stemmix/formats/mp3"
	"github.com/ik5/stemmix/formats/vorbis"
	"github.com/ik5/stemmix/formats/wav"
)

const sourceRequested = "requested"

// CapacityChecker vets the projected memory use of a load.
type CapacityChecker interface {
	CheckCapacity(required uint64) error
}

type Options struct {
	// SampleRate every track must have. Zero takes the rate of the first
	// track.
	SampleRate int
	// Registry maps extensions to decoders; nil uses DefaultRegistry.
	Registry *audio.Registry
	// Capacity is consulted before decoding; nil skips the check.
	Capacity CapacityChecker
	// Concurrency bounds parallel decoders; zero means GOMAXPROCS.
	Concurrency int
	Log         slog.Logger
}

// Track is one decoded track.
type Track struct {
	Name   string
	Path   string
	Buffer *audio.Buffer
}

// DefaultRegistry knows every format this module can decode.
func DefaultRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("wave", wav.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("oga", vorbis.Decoder{})
	reg.Register("aif", aiff.Decoder{})
	reg.Register("aiff", aiff.Decoder{})

	return reg
}

// TrackName derives a display name from a path: "stems/Bass.wav" -> "Bass".
func TrackName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

type probe struct {
	path   string
	file   *os.File
	src    audio.Source
	frames int64
}

func (p *probe) close() {
	if p.src != nil {
		p.src.Close()
	}
	if p.file != nil {
		p.file.Close()
	}
}

// Load decodes paths into tracks, in order.
func Load(ctx context.Context, paths []string, opts Options) ([]Track, error) {
	if len(paths) == 0 {
		return nil, ErrNoTracks
	}

	log := opts.Log
	if log == nil {
		log = slog.Disabled
	}
	reg := opts.Registry
	if reg == nil {
		reg = DefaultRegistry()
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	probes := make([]*probe, len(paths))
	defer func() {
		for _, p := range probes {
			if p != nil {
				p.close()
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			p, err := open(reg, path)
			probes[i] = p
			if err != nil {
				return &LoadError{Path: path, Err: err}
			}

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	headers := make([]Header, len(probes))
	for i, p := range probes {
		headers[i] = Header{
			Path:       p.path,
			SampleRate: p.src.SampleRate(),
			Channels:   p.src.Channels(),
			Frames:     p.frames,
		}
	}

	rate, err := ValidateHeaders(headers, opts.SampleRate)
	if err != nil {
		return nil, err
	}

	required := RequiredBytes(headers)
	for _, h := range headers {
		if h.Frames < 0 {
			log.Warnf("Length of %s is unknown; it is not counted in the memory check", h.Path)
		}
	}
	if opts.Capacity != nil {
		if err := opts.Capacity.CheckCapacity(required); err != nil {
			return nil, fmt.Errorf("load %d tracks: %w", len(paths), err)
		}
	}

	log.Debugf("Decoding %d tracks at %d Hz (%d bytes)", len(paths), rate, required)

	tracks := make([]Track, len(probes))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, p := range probes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			buf, err := audio.ReadAll(p.src)
			if err != nil {
				return &LoadError{Path: p.path, Err: err}
			}
			if buf.Frames() == 0 {
				return &LoadError{Path: p.path, Err: ErrEmptyTrack}
			}

			tracks[i] = Track{Name: TrackName(p.path), Path: p.path, Buffer: buf}
			log.Tracef("Decoded %s: %d frames x%d", p.path, buf.Frames(), buf.Channels)

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return tracks, nil
}

func open(reg *audio.Registry, path string) (*probe, error) {
	dec, ok := reg.ForPath(path)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	p := &probe{path: path, file: f}
	src, err := dec.Decode(f)
	if err != nil {
		return p, fmt.Errorf("decoding header: %w", err)
	}
	p.src = src
	p.frames = audio.Frames(src)

	return p, nil
}
