// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and encodes WAV files.
//
// Decoding goes through github.com/go-audio/wav, which walks the RIFF chunk
// list, so files carrying LIST, bext or other chunks ahead of the data chunk
// decode fine. Integer PCM at 8, 16, 24 and 32 bits is supported, with any
// channel count and sample rate:
//
//	src, err := wav.Decoder{}.Decode(file)
//	frames := audio.Frames(src) // known from the data chunk size
//
// Non-seekable readers are buffered in memory first.
//
// # Writing
//
// WriteWAV16 writes mono 16-bit PCM to any io.Writer. WriteWAV writes a
// multi-channel audio.Buffer as 16-bit PCM and needs an io.WriteSeeker
// because the encoder patches chunk sizes when it is closed:
//
//	f, _ := os.Create("drums-48k.wav")
//	err := wav.WriteWAV(f, buf)
//
// # Errors
//
//   - ErrNotWavFile: input is not RIFF/WAVE
//   - ErrOnlyPCMSupported: compressed or floating point WAV
//   - ErrUnsupportedBitDepth: PCM depth other than 8/16/24/32
//   - ErrUnsupportedWavChunks: no data chunk
package wav
