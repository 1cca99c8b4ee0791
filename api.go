package wave

import (
	"fmt"
	"math"

	"github.com/go-audio/audio"
)

// IntBuffer returns the whole payload as a go-audio buffer of signed
// samples, loading it first if needed. A trailing partial block is dropped.
func (c *Container) IntBuffer() (*audio.IntBuffer, error) {
	if !c.parsed {
		return nil, fmt.Errorf("int buffer of unparsed container: %w", ErrMissingToken)
	}

	if err := c.ensureLoaded(); err != nil {
		return nil, err
	}

	width := c.format.bytesPerSample()
	blocks := len(c.buf) / c.BlockSize()

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: c.Channels(),
			SampleRate:  c.SampleRate(),
		},
		Data:           make([]int, blocks*c.Channels()),
		SourceBitDepth: c.BitDepth(),
	}

	for i := range buf.Data {
		off := i * width
		buf.Data[i] = int(DecodeInt(c.buf[off:off+width], LittleEndian))
	}

	return buf, nil
}

// NewFromIntBuffer builds an in-memory container from a go-audio buffer.
// A zero SourceBitDepth means 16 bits. Samples that do not fit the bit
// depth fail with ErrRange.
func NewFromIntBuffer(buf *audio.IntBuffer, opts ...Option) (*Container, error) {
	if buf == nil || buf.Format == nil {
		return nil, fmt.Errorf("nil buffer or format: %w", ErrDataInvalid)
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = 16
	}

	f, err := newPCMFormat(buf.Format.NumChannels, buf.Format.SampleRate, bitDepth)
	if err != nil {
		return nil, err
	}

	width := f.bytesPerSample()
	data := make([]byte, 0, len(buf.Data)*width)

	for i, v := range buf.Data {
		if v < math.MinInt32 || v > math.MaxInt32 {
			return nil, fmt.Errorf("sample %d value %d: %w", i, v, ErrRange)
		}

		w, err := EncodeInt(int32(v), width, LittleEndian)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}

		data = append(data, w.Bytes()...)
	}

	return NewFromPCM(buf.Format.NumChannels, buf.Format.SampleRate, bitDepth, data, opts...)
}
