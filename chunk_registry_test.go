package wave

import (
	"encoding/binary"
	"io"
	"testing"

	"github.com/go-audio/riff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCustomHandler struct {
	called  bool
	payload []byte
}

func (h *testCustomHandler) CanHandle(chunkID [4]byte, _ [4]byte) bool {
	return chunkID == [4]byte{'c', 'u', 'e', ' '}
}

func (h *testCustomHandler) Decode(_ *Metadata, ch *riff.Chunk) error {
	h.called = true

	payload, err := io.ReadAll(ch)
	h.payload = payload

	return err
}

// firstByteHandler reads one byte and keeps the chunk for inspection.
type firstByteHandler struct {
	id    [4]byte
	first byte
	chunk *riff.Chunk
}

func (h *firstByteHandler) CanHandle(chunkID [4]byte, _ [4]byte) bool {
	return chunkID == h.id
}

func (h *firstByteHandler) Decode(_ *Metadata, ch *riff.Chunk) error {
	h.chunk = ch

	var err error
	h.first, err = ch.ReadByte()

	return err
}

func TestChunkRegistryFactDecode(t *testing.T) {
	payload := binary.LittleEndian.AppendUint32(nil, 1234)
	chunk := &Chunk{ID: wordFromID(CIDFact), Size: 4, Words: []Word{mustNewWord(t, payload)}, Complete: true}

	var meta Metadata

	handled, err := NewChunkRegistry().Decode(&meta, chunk)
	if err != nil {
		t.Fatalf("decode fact chunk: %v", err)
	}

	if !handled {
		t.Fatal("expected fact chunk to be handled")
	}

	if meta.SampleCount != 1234 || !meta.HasFact {
		t.Fatalf("sample count=%d hasFact=%t, want 1234 true", meta.SampleCount, meta.HasFact)
	}
}

func TestChunkRegistryIgnoresUnknown(t *testing.T) {
	var meta Metadata

	chunk := &Chunk{ID: MustWord("junk"), Size: 4, Words: []Word{MustWord("abcd")}}

	handled, err := NewChunkRegistry().Decode(&meta, chunk)
	require.NoError(t, err)
	assert.False(t, handled)

	adtl := &Chunk{ID: wordFromID(CIDList), Size: 4, Words: []Word{MustWord("adtl")}}
	handled, err = NewChunkRegistry().Decode(&meta, adtl)
	require.NoError(t, err)
	assert.False(t, handled, "only INFO lists are decoded")
}

func TestDecodeInfoList(t *testing.T) {
	payload := append([]byte("INFO"), infoEntry("IART", "artist")...)
	payload = append(payload, infoEntry("INAM", "name")...)
	payload = append(payload, infoEntry("itrk", "7")...)
	payload = append(payload, infoEntry("ZZZZ", "ignored")...)

	var meta Metadata
	require.NoError(t, decodeInfoList(&meta, payload))
	assert.Equal(t, "artist", meta.Artist)
	assert.Equal(t, "name", meta.Title)
	assert.Equal(t, "7", meta.TrackNbr)

	truncated := append([]byte("INFO"), infoEntry("ICMT", "long comment")[:12]...)
	require.ErrorIs(t, decodeInfoList(&meta, truncated), ErrMissingData)
}

func TestContainerMetadata(t *testing.T) {
	info := append([]byte("INFO"), infoEntry("ICMT", "recorded live")...)
	info = append(info, infoEntry("ISFT", "wave")...)

	data := buildWave(
		chunkOf("fmt ", fmtPayload(formatPCM, 1, 8000, 16)),
		chunkOf("fact", binary.LittleEndian.AppendUint32(nil, 2)),
		chunkOf("LIST", info),
		chunkOf("data", pcm16(1, 2)),
		chunkOf("cue ", []byte{1, 2, 3}),
	)

	custom := &testCustomHandler{}
	c, _ := openMem(t, data, WithChunkHandler(custom))
	_, err := c.Parse()
	require.NoError(t, err)

	meta, err := c.Metadata()
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, "recorded live", meta.Comments)
	assert.Equal(t, "wave", meta.Software)
	assert.Equal(t, uint32(2), meta.SampleCount)

	assert.True(t, custom.called)
	assert.Equal(t, []byte{1, 2, 3}, custom.payload)

	meta.Comments = "changed"
	again, err := c.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "recorded live", again.Comments)
}

func TestContainerWithoutMetadata(t *testing.T) {
	c, _ := openMem(t, stereo16Wave(1, 2))
	_, err := c.Parse()
	require.NoError(t, err)

	meta, err := c.Metadata()
	require.NoError(t, err)
	assert.Nil(t, meta)
}

func mustNewWord(t *testing.T, b []byte) Word {
	t.Helper()

	w, err := NewWord(b)
	require.NoError(t, err)

	return w
}

func smplPayload(loops ...SampleLoop) []byte {
	out := []byte("ACME")
	out = append(out, "BOX1"...)

	for _, v := range []uint32{22676, 60, 0, 0, 0, uint32(len(loops)), 0} {
		out = binary.LittleEndian.AppendUint32(out, v)
	}

	for _, l := range loops {
		out = append(out, l.CuePointID[:]...)
		for _, v := range []uint32{l.Type, l.Start, l.End, l.Fraction, l.PlayCount} {
			out = binary.LittleEndian.AppendUint32(out, v)
		}
	}

	return out
}

func TestSmplChunkHandler(t *testing.T) {
	loop := SampleLoop{CuePointID: [4]byte{0, 0, 0, 1}, Type: 1, Start: 100, End: 900, PlayCount: 0}

	var meta Metadata
	require.NoError(t, (&smplChunkHandler{}).Decode(&meta, newRiffChunk(CIDSmpl, smplPayload(loop))))
	require.NotNil(t, meta.Sampler)
	assert.Equal(t, [4]byte{'A', 'C', 'M', 'E'}, meta.Sampler.Manufacturer)
	assert.Equal(t, uint32(22676), meta.Sampler.SamplePeriod)
	assert.Equal(t, uint32(60), meta.Sampler.MIDIUnityNote)
	assert.Equal(t, []SampleLoop{loop}, meta.Sampler.Loops)

	short := smplPayload(loop)
	require.ErrorIs(t, (&smplChunkHandler{}).Decode(&meta, newRiffChunk(CIDSmpl, short[:len(short)-4])), ErrMissingData)
	require.ErrorIs(t, (&smplChunkHandler{}).Decode(&meta, newRiffChunk(CIDSmpl, short[:20])), ErrMissingData)
}

func TestBextChunkHandler(t *testing.T) {
	payload := make([]byte, 602)
	copy(payload, "field recording")
	copy(payload[256:], "mic A   ")
	copy(payload[320:], "2024-05-01")
	copy(payload[330:], "12:30:00")
	binary.LittleEndian.PutUint32(payload[338:], 48000)
	binary.LittleEndian.PutUint32(payload[342:], 1)
	binary.LittleEndian.PutUint16(payload[346:], 2)
	payload = append(payload, "A=PCM,F=48000\r\n"...)

	var meta Metadata
	require.NoError(t, (&bextChunkHandler{}).Decode(&meta, newRiffChunk(CIDBext, payload)))

	b := meta.Broadcast
	require.NotNil(t, b)
	assert.Equal(t, "field recording", b.Description)
	assert.Equal(t, "mic A", b.Originator)
	assert.Equal(t, "2024-05-01", b.OriginationDate)
	assert.Equal(t, "12:30:00", b.OriginationTime)
	assert.Equal(t, uint64(1)<<32|48000, b.TimeReference)
	assert.Equal(t, uint16(2), b.Version)
	assert.Equal(t, "A=PCM,F=48000\r\n", b.CodingHistory)

	var partial Metadata
	require.NoError(t, (&bextChunkHandler{}).Decode(&partial, newRiffChunk(CIDBext, []byte("short"))))
	assert.Equal(t, "short", partial.Broadcast.Description)
	assert.Zero(t, partial.Broadcast.Version)
}

func TestContainerMetadataSampler(t *testing.T) {
	loop := SampleLoop{Start: 1, End: 2}

	c, _ := openMem(t, buildWave(
		chunkOf("fmt ", fmtPayload(formatPCM, 1, 8000, 16)),
		chunkOf("data", pcm16(1, 2)),
		chunkOf("smpl", smplPayload(loop)),
	))
	_, err := c.Parse()
	require.NoError(t, err)

	meta, err := c.Metadata()
	require.NoError(t, err)
	require.NotNil(t, meta.Sampler)

	meta.Sampler.Loops[0].Start = 99

	again, err := c.Metadata()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), again.Sampler.Loops[0].Start)
}

func TestChunkRegistryHandsOverRiffChunk(t *testing.T) {
	tests := []struct {
		name     string
		chunk    *Chunk
		wantSize int
		first    byte
	}{
		{
			name:     "complete chunk",
			chunk:    &Chunk{ID: MustWord("cue "), Size: 4, Words: []Word{MustWord("abcd")}, Complete: true},
			wantSize: 4,
			first:    'a',
		},
		{
			name:     "incomplete chunk carries only the captured bytes",
			chunk:    &Chunk{ID: MustWord("cue "), Size: 100, Words: []Word{MustWord("xyz")}},
			wantSize: 3,
			first:    'x',
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := &firstByteHandler{id: [4]byte{'c', 'u', 'e', ' '}}
			registry := &ChunkRegistry{}
			registry.Register(handler)

			var meta Metadata
			handled, err := registry.Decode(&meta, tt.chunk)
			require.NoError(t, err)
			assert.True(t, handled)

			require.NotNil(t, handler.chunk)
			assert.Equal(t, [4]byte{'c', 'u', 'e', ' '}, handler.chunk.ID)
			assert.Equal(t, tt.wantSize, handler.chunk.Size)
			assert.Equal(t, tt.first, handler.first)

			n, _ := handler.chunk.R.Read(make([]byte, 1))
			assert.Zero(t, n, "registry drains what the handler left")
		})
	}
}

func TestFactChunkHandlerShortChunk(t *testing.T) {
	var meta Metadata
	err := (&factChunkHandler{}).Decode(&meta, newRiffChunk(CIDFact, []byte{1, 2}))
	require.ErrorIs(t, err, ErrMissingData)
	assert.False(t, meta.HasFact)
}
