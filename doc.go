// SPDX-License-Identifier: EPL-2.0

// Package stemmix plays a song as a set of stems (drums, bass, vocals, ...)
// mixed live, with per-stem gain, mute and solo.
//
// The module is layered so the real-time path stays small:
//
//   - audio and formats/* decode files into float32 PCM
//   - loader decodes all stems of a song in parallel and validates them
//   - mixer holds the loaded session and renders blocks for the device
//   - latency and resource keep an eye on block timing and memory
//   - output drives an oto/v3 device from the mixer
//
// Stems must share one sample rate. A song that mixes rates is rejected at
// load, and the error names the command that fixes it:
//
//	stemresample -rate 48000 bass.wav bass-48000.wav
//
// The helpers in this package back that tool.
//
// # Resampling
//
// Resample keeps the channel layout:
//
//	src, _ := wav.Decoder{}.Decode(f)
//	buf, err := stemmix.Resample(src, 48000)
//
// ResampleToMono16 produces mono 16-bit PCM for narrowband use:
//
//	pcm16, rate, err := stemmix.ResampleToMono16(src, 8000, 4096)
package stemmix
