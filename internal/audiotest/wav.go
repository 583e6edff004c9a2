// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// PCM16WAV builds a canonical 44 byte header PCM 16-bit WAV file.
func PCM16WAV(sampleRate, channels int, samples []int16) []byte {
	buf := new(bytes.Buffer)

	byteRate := uint32(sampleRate * channels * 2)
	blockAlign := uint16(channels * 2)
	dataSize := uint32(len(samples) * 2)

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(buf, binary.LittleEndian, uint16(channels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, byteRate)
	binary.Write(buf, binary.LittleEndian, blockAlign)
	binary.Write(buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, dataSize)
	binary.Write(buf, binary.LittleEndian, samples)

	return buf.Bytes()
}

// WriteConstantWAV writes frames of a constant value to dir/name and returns
// the path.
func WriteConstantWAV(t testing.TB, dir, name string, sampleRate, channels, frames int, value int16) string {
	t.Helper()

	samples := make([]int16, frames*channels)
	for i := range samples {
		samples[i] = value
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, PCM16WAV(sampleRate, channels, samples), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}

	return path
}
