// SPDX-License-Identifier: EPL-2.0

// Command stemresample converts a track to the sample rate of the rest of
// a song, so that stemplay can load them together.
//
//	stemresample -rate 48000 bass.mp3 bass-48000.wav
//
// The channel layout is kept unless -mono is given, which writes mono
// 16-bit PCM.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/ik5/stemmix"
	"github.com/ik5/stemmix/audio"
	"github.com/ik5/stemmix/formats/wav"
	"github.com/ik5/stemmix/loader"
)

func main() {
	rate := flag.Int("rate", 48000, "target sample rate in Hz")
	mono := flag.Bool("mono", false, "average channels down to mono")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-rate hz] [-mono] <input.{wav|mp3|ogg|aiff}> <output.wav>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}

	if err := convert(flag.Arg(0), flag.Arg(1), *rate, *mono); err != nil {
		fmt.Fprintf(os.Stderr, "stemresample: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Wrote:", flag.Arg(1))
}

func convert(inPath, outPath string, rate int, mono bool) error {
	if rate <= 0 {
		return fmt.Errorf("invalid rate %d", rate)
	}

	dec, ok := loader.DefaultRegistry().ForPath(inPath)
	if !ok {
		return fmt.Errorf("%w: %s", loader.ErrUnsupportedFormat, inPath)
	}

	in, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	defer in.Close()

	src, err := dec.Decode(in)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", inPath, err)
	}
	defer src.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	if mono {
		var pcm16 []int16
		pcm16, _, err = stemmix.ResampleToMono16(src, rate, 4096)
		if err == nil {
			err = wav.WriteWAV16(out, rate, pcm16)
		}
	} else {
		var buf *audio.Buffer
		if buf, err = stemmix.Resample(src, rate); err == nil {
			err = wav.WriteWAV(out, buf)
		}
	}

	return errors.Join(err, out.Close())
}
