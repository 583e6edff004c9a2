// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis through github.com/jfreymuth/oggvorbis.
//
// Samples are decoded directly into the caller's buffer without an
// intermediate copy. The stream length is reported through audio.Lengther
// when the input is seekable.
package vorbis
