package wave

import (
	"errors"
	"fmt"
	"io"
	"math"
)

// DataIsLoaded reports whether the payload is held in memory. While it is
// not, block reads stream from the file.
func (c *Container) DataIsLoaded() bool {
	return len(c.buf) > 0
}

// DataLoad reads the data chunk into memory, replacing any earlier copy,
// and rewinds the block cursor. A file that ends early yields a shorter
// payload.
func (c *Container) DataLoad() error {
	if c.file == nil {
		return fmt.Errorf("load data: %w", ErrFileNotOpen)
	}

	if !c.parsed {
		return fmt.Errorf("load data of unparsed file: %w", ErrMissingToken)
	}

	declared := c.end - c.begin
	size := declared
	if avail, ok := c.bytesAfter(c.begin); ok && avail < size {
		size = avail
	}

	if size > c.loadLimit || size > math.MaxInt {
		return fmt.Errorf("load %d bytes with limit %d: %w", size, c.loadLimit, ErrMemory)
	}

	c.buf = nil
	c.cursor = 0

	if _, err := c.file.Seek(c.begin, io.SeekStart); err != nil {
		return fmt.Errorf("seek to data: %w", err)
	}

	buf := make([]byte, size)

	n, err := io.ReadFull(c.file, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("read data: %w", err)
	}

	if int64(n) < declared {
		c.logger.Warn("data chunk shorter than declared", "path", c.path, "declared", declared, "read", n)
	}

	c.buf = buf[:n]
	c.logger.Debug("loaded wave data", "path", c.path, "bytes", n)

	return nil
}

// bytesAfter returns how many bytes the file holds past pos.
func (c *Container) bytesAfter(pos int64) (int64, bool) {
	info, err := c.file.Stat()
	if err != nil {
		return 0, false
	}

	return max(info.Size()-pos, 0), true
}

// DataUnload drops the in-memory payload and returns to streaming. It needs
// an open file, since the payload could not be read again otherwise.
func (c *Container) DataUnload() error {
	if c.file == nil {
		return fmt.Errorf("unload data: %w", ErrFileNotOpen)
	}

	c.buf = nil
	c.cursor = 0

	return nil
}

// DataRewind moves block iteration back to the first block.
func (c *Container) DataRewind() error {
	if c.DataIsLoaded() {
		c.cursor = 0
		return nil
	}

	if c.file == nil {
		return fmt.Errorf("rewind: %w", ErrFileNotOpen)
	}

	if _, err := c.file.Seek(c.begin, io.SeekStart); err != nil {
		return fmt.Errorf("seek to data: %w", err)
	}

	return nil
}

// DataEnd reports whether block iteration is exhausted. When streaming it is
// true whenever the file position lies outside the data chunk, including
// right after Parse and when no file is open.
func (c *Container) DataEnd() bool {
	if c.DataIsLoaded() {
		return c.cursor >= len(c.buf)
	}

	if c.file == nil {
		return true
	}

	pos, err := c.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return true
	}

	return pos < c.begin || pos >= c.end
}

// NextBlock decodes the next frame as signed little endian samples, one per
// channel. It returns io.EOF once DataEnd is true and ErrMissingData when
// fewer than BlockSize bytes remain.
func (c *Container) NextBlock() ([]int32, error) {
	raw, err := c.nextRawBlock()
	if err != nil {
		return nil, err
	}

	width := c.format.bytesPerSample()

	out := make([]int32, c.format.NumChannels)
	for ch := range out {
		out[ch] = DecodeInt(raw[ch*width:(ch+1)*width], LittleEndian)
	}

	return out, nil
}

// NextBlockUnsigned is NextBlock without the sign, as used by 8 bit files.
func (c *Container) NextBlockUnsigned() ([]uint32, error) {
	raw, err := c.nextRawBlock()
	if err != nil {
		return nil, err
	}

	width := c.format.bytesPerSample()

	out := make([]uint32, c.format.NumChannels)
	for ch := range out {
		out[ch] = DecodeUint(raw[ch*width:(ch+1)*width], LittleEndian)
	}

	return out, nil
}

func (c *Container) nextRawBlock() ([]byte, error) {
	if !c.parsed {
		if c.file == nil {
			return nil, fmt.Errorf("next block: %w", ErrFileNotOpen)
		}

		return nil, fmt.Errorf("next block of unparsed file: %w", ErrMissingToken)
	}

	blockSize := c.BlockSize()

	if c.DataIsLoaded() {
		if c.cursor >= len(c.buf) {
			return nil, io.EOF
		}

		if len(c.buf)-c.cursor < blockSize {
			left := len(c.buf) - c.cursor
			c.cursor = len(c.buf)

			return nil, fmt.Errorf("block of %d bytes with %d left: %w", blockSize, left, ErrMissingData)
		}

		raw := c.buf[c.cursor : c.cursor+blockSize]
		c.cursor += blockSize

		return raw, nil
	}

	if c.file == nil {
		// in-memory container with an empty payload
		return nil, io.EOF
	}

	pos, err := c.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("locate block: %w", err)
	}

	if pos < c.begin || pos >= c.end {
		return nil, io.EOF
	}

	raw := make([]byte, blockSize)

	n, err := io.ReadFull(io.LimitReader(c.file, c.end-pos), raw)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			// park past the payload so DataEnd reports true, as in buffered mode
			if _, serr := c.file.Seek(c.end, io.SeekStart); serr != nil {
				return nil, fmt.Errorf("seek past data: %w", serr)
			}

			return nil, fmt.Errorf("block of %d bytes with %d left: %w", blockSize, n, ErrMissingData)
		}

		return nil, fmt.Errorf("read block: %w", err)
	}

	return raw, nil
}

// ensureLoaded switches to buffered mode, which random access needs.
func (c *Container) ensureLoaded() error {
	if c.DataIsLoaded() || (c.file == nil && c.parsed) {
		return nil
	}

	return c.DataLoad()
}

func (c *Container) sampleOffset(interval, dim int) (int, int, error) {
	if err := c.ensureLoaded(); err != nil {
		return 0, 0, err
	}

	width := c.format.bytesPerSample()
	if interval < 0 || dim < 0 || dim >= c.Channels() {
		return 0, 0, fmt.Errorf("sample (%d,%d) with %d channels: %w", interval, dim, c.Channels(), ErrRange)
	}

	// checked before multiplying so a huge interval cannot wrap around
	if blockSize := c.BlockSize(); blockSize == 0 || interval > len(c.buf)/blockSize {
		return 0, 0, fmt.Errorf("sample (%d,%d) past %d byte payload: %w", interval, dim, len(c.buf), ErrRange)
	}

	off := int64(interval)*int64(c.BlockSize()) + int64(dim*width)
	if off+int64(width) > int64(len(c.buf)) {
		return 0, 0, fmt.Errorf("sample (%d,%d) at byte %d of %d: %w", interval, dim, off, len(c.buf), ErrRange)
	}

	return int(off), width, nil
}

// Get returns the signed sample of channel dim in block interval, loading
// the payload first if needed.
func (c *Container) Get(interval, dim int) (int32, error) {
	off, width, err := c.sampleOffset(interval, dim)
	if err != nil {
		return 0, err
	}

	return DecodeInt(c.buf[off:off+width], LittleEndian), nil
}

// GetUnsigned is Get without the sign.
func (c *Container) GetUnsigned(interval, dim int) (uint32, error) {
	off, width, err := c.sampleOffset(interval, dim)
	if err != nil {
		return 0, err
	}

	return DecodeUint(c.buf[off:off+width], LittleEndian), nil
}

// Edit stores v as the sample of channel dim in block interval. It fails
// with ErrRange when v needs more bytes than a sample has.
func (c *Container) Edit(interval, dim int, v uint32) error {
	off, width, err := c.sampleOffset(interval, dim)
	if err != nil {
		return err
	}

	w := EncodeUint(v, LittleEndian)
	if w.Len() > width {
		return fmt.Errorf("value %d wider than %d byte sample: %w", v, width, ErrRange)
	}

	w.padTo(width, LittleEndian)
	copy(c.buf[off:off+width], w.Bytes())

	return nil
}

// EditInt stores v in two's complement. It fails with ErrRange when v is
// outside the signed range of the sample width.
func (c *Container) EditInt(interval, dim int, v int32) error {
	off, width, err := c.sampleOffset(interval, dim)
	if err != nil {
		return err
	}

	w, err := EncodeInt(v, width, LittleEndian)
	if err != nil {
		return err
	}

	copy(c.buf[off:off+width], w.Bytes())

	return nil
}

// ByteAt returns byte n of the payload, loading it first if needed.
func (c *Container) ByteAt(n int) (byte, error) {
	if err := c.ensureLoaded(); err != nil {
		return 0, err
	}

	if n < 0 || n >= len(c.buf) {
		return 0, fmt.Errorf("payload byte %d of %d: %w", n, len(c.buf), ErrRange)
	}

	return c.buf[n], nil
}

// Payload returns a copy of the loaded payload, loading it first if needed.
func (c *Container) Payload() ([]byte, error) {
	if err := c.ensureLoaded(); err != nil {
		return nil, err
	}

	return append([]byte(nil), c.buf...), nil
}

// Domain is always TimeDomain for a container.
func (c *Container) Domain() Domain { return TimeDomain }

// Dimensions returns the channel count.
func (c *Container) Dimensions() int { return c.Channels() }

// IntervalCount returns the number of blocks.
func (c *Container) IntervalCount() int { return c.NumBlocks() }

// SampleCount returns the number of samples over all channels.
func (c *Container) SampleCount() int { return c.NumSamples() }

// Interval returns the time between blocks in seconds.
func (c *Container) Interval() float64 {
	if c.format.SampleRate == 0 {
		return 0
	}

	return 1 / float64(c.format.SampleRate)
}

// At returns the signed sample at (interval, dim) as a real complex value.
func (c *Container) At(interval, dim int) (complex128, error) {
	v, err := c.Get(interval, dim)
	if err != nil {
		return 0, err
	}

	return complex(float64(v), 0), nil
}

// Set rounds the real part of v and stores it with EditInt. The imaginary
// part is dropped.
func (c *Container) Set(interval, dim int, v complex128) error {
	r := math.Round(real(v))
	if math.IsNaN(r) {
		return fmt.Errorf("sample (%d,%d) is NaN: %w", interval, dim, ErrDataInvalid)
	}

	if r < math.MinInt32 || r > math.MaxInt32 {
		return fmt.Errorf("sample %g: %w", r, ErrRange)
	}

	return c.EditInt(interval, dim, int32(r))
}
