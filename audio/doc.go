// SPDX-License-Identifier: EPL-2.0

// Package audio provides the PCM primitives the rest of stemmix is built on.
//
//   - Source: a pull-based stream of interleaved float32 samples
//   - Lengther: optional length reporting used for pre-flight checks
//   - Registry: decoder lookup by format key or file extension
//   - Buffer and ReadAll: fully decoded, memory resident tracks
//   - MonoMixer and AverageFrame: channel averaging
//   - Resampler: offline sample rate conversion
//
// # Sample Format
//
// Samples are float32 in [-1.0, 1.0], interleaved by channel:
//
//	frame 0      frame 1
//	[L0, R0,     L1, R1, ...]
//
// # Loading a Track
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//
//	dec, ok := registry.ForPath("drums.wav")
//	src, err := dec.Decode(file)
//	buf, err := audio.ReadAll(src)
//
// ReadAll sizes its allocation from Lengther when the decoder can report a
// length, so a track is usually decoded with a single allocation.
//
// # Resampling
//
// The mixer requires every track of a song to share one sample rate and
// never converts at render time. Mismatched stems are converted ahead of
// time with the Resampler (see cmd/stemresample):
//
//	res := audio.NewResampler(src, 48000)
//
// # Error Handling
//
// ReadSamples returns io.EOF once the stream is finished, possibly together
// with the final samples:
//
//	for {
//	    n, err := source.ReadSamples(buf)
//	    process(buf[:n])
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	}
package audio
