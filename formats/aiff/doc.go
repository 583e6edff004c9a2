// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files through github.com/go-audio/aiff.
//
// Integer PCM at 8, 16, 24 and 32 bits is supported. The frame count comes
// from the COMM chunk, so the length is always known before decoding.
// Non-seekable readers are buffered in memory first.
package aiff
