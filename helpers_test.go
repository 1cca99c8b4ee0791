package wave

import (
	"encoding/binary"
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

type testChunk struct {
	id   string
	size uint32
	data []byte
}

var (
	errFileTooSmall         = errors.New("file too small")
	errInvalidRiffWaveHdr   = errors.New("invalid riff/wave header")
	errChunkExceedsFileSize = errors.New("chunk exceeds file size")
)

// chunkOf builds a chunk whose declared size matches its payload.
func chunkOf(id string, data []byte) testChunk {
	return testChunk{id: id, size: uint32(len(data)), data: data}
}

func fmtPayload(format uint16, channels, sampleRate, bitDepth int) []byte {
	blockAlign := channels * bitDepth / 8
	out := make([]byte, 16)
	binary.LittleEndian.PutUint16(out[0:], format)
	binary.LittleEndian.PutUint16(out[2:], uint16(channels))
	binary.LittleEndian.PutUint32(out[4:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[8:], uint32(sampleRate*blockAlign))
	binary.LittleEndian.PutUint16(out[12:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[14:], uint16(bitDepth))

	return out
}

func extensibleFmtPayload(subFormat uint16, channels, sampleRate, bitDepth int) []byte {
	out := fmtPayload(formatExtensible, channels, sampleRate, bitDepth)
	ext := make([]byte, 24)
	binary.LittleEndian.PutUint16(ext[0:], 22)
	binary.LittleEndian.PutUint16(ext[2:], uint16(bitDepth))
	binary.LittleEndian.PutUint32(ext[4:], 0x3)
	binary.LittleEndian.PutUint16(ext[8:], subFormat)
	copy(ext[12:], []byte{0x00, 0x00, 0x10, 0x00, 0x80, 0x00, 0x00, 0xAA, 0x00, 0x38, 0x9B, 0x71})

	return append(out, ext...)
}

// buildWave lays out RIFF/WAVE followed by chunks, padding odd payloads.
func buildWave(chunks ...testChunk) []byte {
	body := []byte("WAVE")
	for _, ch := range chunks {
		body = append(body, ch.id...)
		body = binary.LittleEndian.AppendUint32(body, ch.size)
		body = append(body, ch.data...)

		if len(ch.data)%2 == 1 && uint32(len(ch.data)) == ch.size {
			body = append(body, 0)
		}
	}

	out := []byte("RIFF")
	out = binary.LittleEndian.AppendUint32(out, uint32(len(body)))

	return append(out, body...)
}

func pcm16(samples ...int16) []byte {
	out := make([]byte, 0, len(samples)*2)
	for _, s := range samples {
		out = binary.LittleEndian.AppendUint16(out, uint16(s))
	}

	return out
}

func stereo16Wave(samples ...int16) []byte {
	return buildWave(
		chunkOf("fmt ", fmtPayload(formatPCM, 2, 44100, 16)),
		chunkOf("data", pcm16(samples...)),
	)
}

func writeMemFile(t *testing.T, fs afero.Fs, path string, data []byte) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, data, 0o644))
}

// openMem writes data to an in-memory filesystem and opens it.
func openMem(t *testing.T, data []byte, opts ...Option) (*Container, afero.Fs) {
	t.Helper()

	fs := afero.NewMemMapFs()
	writeMemFile(t, fs, "/in.wav", data)

	c := New(append([]Option{WithFs(fs)}, opts...)...)
	require.NoError(t, c.Open("/in.wav"))

	return c, fs
}

func parseWavChunks(data []byte) ([]testChunk, error) {
	if len(data) < 12 {
		return nil, errFileTooSmall
	}

	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, errInvalidRiffWaveHdr
	}

	chunks := make([]testChunk, 0)

	offset := 12
	for offset+8 <= len(data) {
		id := string(data[offset : offset+4])
		size := binary.LittleEndian.Uint32(data[offset+4 : offset+8])
		offset += 8

		end := offset + int(size)
		if end > len(data) {
			return nil, fmt.Errorf("%w: %q", errChunkExceedsFileSize, id)
		}

		payload := append([]byte(nil), data[offset:end]...)
		chunks = append(chunks, testChunk{id: id, size: size, data: payload})

		offset = end
		if size%2 == 1 {
			offset++
		}
	}

	return chunks, nil
}

func findChunk(chunks []testChunk, id string) (*testChunk, int) {
	for i := range chunks {
		if chunks[i].id == id {
			return &chunks[i], i
		}
	}

	return nil, -1
}

// infoEntry encodes one LIST/INFO entry with a null terminated value.
func infoEntry(id, value string) []byte {
	out := []byte(id)
	text := append([]byte(value), 0)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(text)))
	out = append(out, text...)

	if len(text)%2 == 1 {
		out = append(out, 0)
	}

	return out
}
