// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"encoding/binary"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/ik5/stemmix/audio"
	"github.com/ik5/stemmix/utils"
)

// WriteWAV16 writes a mono 16-bit PCM WAV at sampleRate to a plain writer.
// The canonical 44 byte header is written up front, so w need not seek.
func WriteWAV16(w io.Writer, sampleRate int, samples []int16) error {
	const (
		numChannels   = 1
		bitsPerSample = 16
	)

	dataSize := uint32(len(samples) * 2)

	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 36+dataSize)
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], wavFormatPCM)
	binary.LittleEndian.PutUint16(header[22:24], numChannels)
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate*numChannels*bitsPerSample/8))
	binary.LittleEndian.PutUint16(header[32:34], numChannels*bitsPerSample/8)
	binary.LittleEndian.PutUint16(header[34:36], bitsPerSample)

	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataSize)

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("%w", err)
	}

	const chunkSize = 8192
	buf := make([]byte, min(len(samples), chunkSize)*2)

	for i := 0; i < len(samples); i += chunkSize {
		chunk := samples[i:min(i+chunkSize, len(samples))]
		buf = buf[:len(chunk)*2]
		for j, s := range chunk {
			binary.LittleEndian.PutUint16(buf[j*2:], uint16(s))
		}

		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("%w", err)
		}
	}

	return nil
}

// WriteWAV encodes buf as 16-bit PCM with its own channel count and sample
// rate. The encoder patches chunk sizes on Close, hence the WriteSeeker.
func WriteWAV(ws io.WriteSeeker, buf *audio.Buffer) error {
	enc := gowav.NewEncoder(ws, buf.SampleRate, 16, buf.Channels, wavFormatPCM)

	const chunkFrames = 4096
	chunkSamples := chunkFrames * buf.Channels
	ib := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: buf.Channels,
			SampleRate:  buf.SampleRate,
		},
		Data:           make([]int, 0, chunkSamples),
		SourceBitDepth: 16,
	}

	for i := 0; i < len(buf.Samples); i += chunkSamples {
		chunk := buf.Samples[i:min(i+chunkSamples, len(buf.Samples))]
		ib.Data = ib.Data[:len(chunk)]
		for j, v := range chunk {
			ib.Data[j] = int(utils.Float32ToInt16(v))
		}

		if err := enc.Write(ib); err != nil {
			return fmt.Errorf("encoding wav: %w", err)
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav: %w", err)
	}

	return nil
}
