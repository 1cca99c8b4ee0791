package wave

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/go-audio/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAllBlocks(t *testing.T, c *Container) [][]int32 {
	t.Helper()

	var blocks [][]int32
	for !c.DataEnd() {
		block, err := c.NextBlock()
		require.NoError(t, err)

		blocks = append(blocks, block)
	}

	_, err := c.NextBlock()
	require.ErrorIs(t, err, io.EOF)

	return blocks
}

func TestStreamingMatchesBuffered(t *testing.T) {
	samples := []int16{0, -1, 32767, -32768, 300, -300, 12, 34, -5, 6}
	data := append(stereo16Wave(samples...), []byte("LIST")...)
	data = append(data, 4, 0, 0, 0, 'a', 'd', 't', 'l')

	c, _ := openMem(t, data)
	_, err := c.Parse()
	require.NoError(t, err)

	assert.True(t, c.DataEnd(), "file position is past the data after parsing")
	require.NoError(t, c.DataRewind())
	assert.False(t, c.DataEnd())

	streamed := readAllBlocks(t, c)
	require.Len(t, streamed, 5)

	require.NoError(t, c.DataLoad())
	assert.True(t, c.DataIsLoaded())

	buffered := readAllBlocks(t, c)
	assert.Equal(t, streamed, buffered)

	for i, block := range buffered {
		assert.Equal(t, []int32{int32(samples[2*i]), int32(samples[2*i+1])}, block)
	}

	require.NoError(t, c.DataRewind())
	first, err := c.NextBlock()
	require.NoError(t, err)
	assert.Equal(t, []int32{0, -1}, first)
}

func TestNextBlockUnsigned(t *testing.T) {
	c, _ := openMem(t, buildWave(
		chunkOf("fmt ", fmtPayload(formatPCM, 2, 8000, 8)),
		chunkOf("data", []byte{0x00, 0xFF, 0x80, 0x7F}),
	))

	_, err := c.Parse()
	require.NoError(t, err)
	require.NoError(t, c.DataRewind())

	block, err := c.NextBlockUnsigned()
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 255}, block)

	signed, err := c.NextBlock()
	require.NoError(t, err)
	assert.Equal(t, []int32{-128, 127}, signed)
}

func TestNextBlockShortBlock(t *testing.T) {
	data := buildWave(
		chunkOf("fmt ", fmtPayload(formatPCM, 2, 44100, 16)),
		chunkOf("data", pcm16(1, 2, 3)),
	)

	t.Run("streaming", func(t *testing.T) {
		c, _ := openMem(t, data)
		_, err := c.Parse()
		require.NoError(t, err)
		require.NoError(t, c.DataRewind())

		_, err = c.NextBlock()
		require.NoError(t, err)

		_, err = c.NextBlock()
		require.ErrorIs(t, err, ErrMissingData)
	})

	t.Run("buffered", func(t *testing.T) {
		c, _ := openMem(t, data)
		_, err := c.Parse()
		require.NoError(t, err)
		require.NoError(t, c.DataLoad())

		_, err = c.NextBlock()
		require.NoError(t, err)

		_, err = c.NextBlock()
		require.ErrorIs(t, err, ErrMissingData)
		assert.True(t, c.DataEnd())
	})

	t.Run("truncated file", func(t *testing.T) {
		truncated := buildWave(
			chunkOf("fmt ", fmtPayload(formatPCM, 2, 44100, 16)),
			testChunk{id: "data", size: 16, data: pcm16(1, 2, 3)},
		)

		c, _ := openMem(t, truncated)
		_, err := c.Parse()
		require.NoError(t, err)
		require.NoError(t, c.DataRewind())

		_, err = c.NextBlock()
		require.NoError(t, err)

		_, err = c.NextBlock()
		require.ErrorIs(t, err, ErrMissingData)
		assert.True(t, c.DataEnd(), "a short read ends streaming like it ends buffering")

		_, err = c.NextBlock()
		require.ErrorIs(t, err, io.EOF)
	})

	t.Run("truncated file loop ends", func(t *testing.T) {
		truncated := buildWave(
			chunkOf("fmt ", fmtPayload(formatPCM, 2, 44100, 16)),
			testChunk{id: "data", size: 16, data: pcm16(1, 2, 3)},
		)

		readAll := func(c *Container) (blocks int, shorts int) {
			for i := 0; !c.DataEnd() && i < 10; i++ {
				_, err := c.NextBlock()
				if errors.Is(err, ErrMissingData) {
					shorts++
					continue
				}
				require.NoError(t, err)
				blocks++
			}

			return blocks, shorts
		}

		streamed, _ := openMem(t, truncated)
		_, err := streamed.Parse()
		require.NoError(t, err)
		require.NoError(t, streamed.DataRewind())

		buffered, _ := openMem(t, truncated)
		_, err = buffered.Parse()
		require.NoError(t, err)
		require.NoError(t, buffered.DataLoad())

		sBlocks, sShorts := readAll(streamed)
		bBlocks, bShorts := readAll(buffered)
		assert.Equal(t, 1, sBlocks)
		assert.Equal(t, 1, sShorts)
		assert.Equal(t, bBlocks, sBlocks)
		assert.Equal(t, bShorts, sShorts)
	})
}

func TestNextBlockStateErrors(t *testing.T) {
	c := New()

	_, err := c.NextBlock()
	require.ErrorIs(t, err, ErrFileNotOpen)
	assert.True(t, c.DataEnd())

	opened, _ := openMem(t, stereo16Wave(1, 2))
	_, err = opened.NextBlock()
	require.ErrorIs(t, err, ErrMissingToken)

	require.ErrorIs(t, opened.DataLoad(), ErrMissingToken)
	require.ErrorIs(t, New().DataLoad(), ErrFileNotOpen)
	require.ErrorIs(t, New().DataRewind(), ErrFileNotOpen)
}

func TestDataUnload(t *testing.T) {
	c, _ := openMem(t, stereo16Wave(1, 2, 3, 4))
	_, err := c.Parse()
	require.NoError(t, err)

	require.NoError(t, c.DataLoad())
	require.NoError(t, c.DataUnload())
	assert.False(t, c.DataIsLoaded())

	mem, err := NewFromPCM(1, 8000, 16, pcm16(1))
	require.NoError(t, err)
	require.ErrorIs(t, mem.DataUnload(), ErrFileNotOpen)
	assert.True(t, mem.DataIsLoaded())
}

func TestDataLoadLimit(t *testing.T) {
	c, _ := openMem(t, stereo16Wave(1, 2, 3, 4), WithLoadLimit(4))
	_, err := c.Parse()
	require.NoError(t, err)

	require.ErrorIs(t, c.DataLoad(), ErrMemory)

	_, err = c.Get(0, 0)
	require.ErrorIs(t, err, ErrMemory)
}

func TestRandomAccessHugeInterval(t *testing.T) {
	c, err := NewFromPCM(2, 44100, 16, pcm16(1, 2, 3, 4))
	require.NoError(t, err)

	_, err = c.Get(math.MaxInt/2, 0)
	require.ErrorIs(t, err, ErrRange)
	require.ErrorIs(t, c.Edit(math.MaxInt/2, 1, 1), ErrRange)
	require.ErrorIs(t, c.EditInt(math.MaxInt/4, 0, 1), ErrRange)

	_, err = c.At(math.MaxInt, 1)
	require.ErrorIs(t, err, ErrRange)
}

func TestDataLoadBoundedByFileSize(t *testing.T) {
	data := buildWave(
		chunkOf("fmt ", fmtPayload(formatPCM, 1, 8000, 16)),
		testChunk{id: "data", size: 1 << 30, data: pcm16(7, 8)},
	)

	c, _ := openMem(t, data)
	_, err := c.Parse()
	require.NoError(t, err)
	assert.Equal(t, int64(1<<30), c.DataSize())

	v, err := c.Get(1, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(8), v)

	payload, err := c.Payload()
	require.NoError(t, err)
	assert.Len(t, payload, 4, "only the bytes present in the file are loaded")
}

func TestRandomAccess(t *testing.T) {
	c, _ := openMem(t, stereo16Wave(10, -20, 30, -40))
	_, err := c.Parse()
	require.NoError(t, err)

	v, err := c.Get(1, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(-40), v)
	assert.True(t, c.DataIsLoaded(), "random access loads the payload")

	u, err := c.GetUnsigned(0, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xFFEC), u)

	tests := []struct {
		name     string
		interval int
		dim      int
	}{
		{name: "channel past end", interval: 0, dim: 2},
		{name: "negative channel", interval: 0, dim: -1},
		{name: "block past end", interval: 2, dim: 0},
		{name: "negative block", interval: -1, dim: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Get(tt.interval, tt.dim)
			require.ErrorIs(t, err, ErrRange)
			require.ErrorIs(t, c.Edit(tt.interval, tt.dim, 1), ErrRange)
		})
	}

	b, err := c.ByteAt(0)
	require.NoError(t, err)
	assert.Equal(t, byte(10), b)

	_, err = c.ByteAt(8)
	require.ErrorIs(t, err, ErrRange)
}

func TestEdit(t *testing.T) {
	c, err := NewFromPCM(2, 8000, 16, make([]byte, 8))
	require.NoError(t, err)

	require.NoError(t, c.Edit(1, 0, 300))
	v, err := c.Get(1, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(300), v)

	require.ErrorIs(t, c.Edit(1, 0, 0x10000), ErrRange)

	require.NoError(t, c.Edit(1, 0, 0))
	b, err := c.ByteAt(5)
	require.NoError(t, err)
	assert.Zero(t, b, "the remainder of the sample is zero filled")

	require.NoError(t, c.EditInt(0, 1, -2))
	v, err = c.Get(0, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(-2), v)

	payload, err := c.Payload()
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0xFE, 0xFF, 0, 0, 0, 0}, payload)

	require.ErrorIs(t, c.EditInt(0, 1, 40000), ErrRange)
}

func TestDecode24BitBlocks(t *testing.T) {
	values := []int32{-8388608, -1, 0, 1234567, 8388607}

	var data []byte
	for _, v := range values {
		data = append(data, audio.Int32toInt24LEBytes(v)...)
	}

	c, err := NewFromPCM(1, 96000, 24, data)
	require.NoError(t, err)
	assert.Equal(t, 5, c.NumBlocks())

	for i, want := range values {
		block, err := c.NextBlock()
		require.NoError(t, err)
		assert.Equal(t, want, block[0], "block %d", i)
	}

	_, err = c.NextBlock()
	require.True(t, errors.Is(err, io.EOF))
}

func TestEmptyInMemoryContainer(t *testing.T) {
	c, err := NewFromPCM(1, 8000, 16, nil)
	require.NoError(t, err)

	assert.True(t, c.DataEnd())
	_, err = c.NextBlock()
	require.ErrorIs(t, err, io.EOF)

	_, err = c.Get(0, 0)
	require.ErrorIs(t, err, ErrRange)
}
