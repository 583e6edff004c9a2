// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 through github.com/hajimehoshi/go-mp3.
//
// go-mp3 always yields interleaved stereo, so mono MP3s come out as two
// identical channels. When the input is seekable the decoded length is
// known up front and reported through audio.Lengther.
package mp3
