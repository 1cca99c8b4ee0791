package wave

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/go-audio/riff"
	"github.com/spf13/afero"
)

var (
	tagRIFF = wordFromID(riff.RiffID)
	tagWAVE = wordFromID(riff.WavFormatID)
	tagFmt  = wordFromID(riff.FmtID)
	tagData = wordFromID(riff.DataFormatID)
)

// Container is a PCM wave file. It is either bound to a file, whose data
// chunk is streamed from disk until DataLoad pulls it into memory, or built
// in memory with NewFromPCM.
//
// A Container is not safe for concurrent use.
type Container struct {
	fs        afero.Fs
	logger    *slog.Logger
	loadLimit int64
	registry  *ChunkRegistry

	path string
	file afero.File

	parsed   bool
	riffSize uint32
	format   FmtChunk
	chunks   map[[4]byte]*Chunk
	metadata *Metadata

	// data chunk byte range within the file
	begin, end int64
	dataSize   int64
	last       bool

	buf    []byte
	cursor int
}

// New returns an empty, unopened container.
func New(opts ...Option) *Container {
	c := &Container{
		fs:        afero.NewOsFs(),
		logger:    slog.Default(),
		loadLimit: DefaultLoadLimit,
		registry:  NewChunkRegistry(),
		chunks:    make(map[[4]byte]*Chunk),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ParseFile opens and parses the file at path.
func ParseFile(path string, opts ...Option) (*Container, error) {
	c := New(opts...)
	if err := c.Open(path); err != nil {
		return nil, err
	}

	if _, err := c.Parse(); err != nil {
		c.Close()
		return nil, err
	}

	return c, nil
}

// Open binds the container to the file at path, closing any previously
// opened file and dropping everything parsed or loaded from it.
func (c *Container) Open(path string) error {
	if c.file != nil {
		if err := c.Close(); err != nil {
			c.logger.Warn("closing previous wave file", "path", c.path, "error", err)
		}
	}

	c.reset()
	c.path = ""

	f, err := c.fs.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w: %w", path, ErrFileCannotOpen, err)
	}

	c.file = f
	c.path = path
	c.logger.Debug("opened wave file", "path", path)

	return nil
}

// IsOpen reports whether the container holds a file handle.
func (c *Container) IsOpen() bool {
	return c.file != nil
}

// Path returns the path of the opened file.
func (c *Container) Path() string {
	return c.path
}

// Close releases the file handle and any loaded payload.
func (c *Container) Close() error {
	var err error
	if c.file != nil {
		err = c.file.Close()
		c.file = nil
	}

	c.reset()

	if err != nil {
		return fmt.Errorf("close %s: %w", c.path, err)
	}

	return nil
}

func (c *Container) reset() {
	c.parsed = false
	c.riffSize = 0
	c.format = FmtChunk{}
	clear(c.chunks)
	c.metadata = nil
	c.begin, c.end, c.dataSize = 0, 0, 0
	c.last = false
	c.buf = nil
	c.cursor = 0
}

// Parse scans the opened file and returns the number of subchunks found.
// Generic subchunks are kept as Chunk records, the fmt chunk is decoded and
// only the byte range of the data chunk is recorded. On failure the
// container is left unparsed.
func (c *Container) Parse() (int, error) {
	if c.file == nil {
		return 0, fmt.Errorf("parse: %w", ErrFileNotOpen)
	}

	count, err := c.parse()
	if err != nil {
		path := c.path
		c.reset()
		c.logger.Debug("wave parse failed", "path", path, "error", err)

		return 0, err
	}

	c.parsed = true
	c.logger.Debug("parsed wave file",
		"path", c.path,
		"subchunks", count,
		"channels", c.format.NumChannels,
		"sample_rate", c.format.SampleRate,
		"bit_depth", c.format.BitsPerSample,
		"data_bytes", c.dataSize,
		"extensible", c.format.Extensible)

	return count, nil
}

func (c *Container) parse() (int, error) {
	if _, err := c.file.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("seek to start: %w", err)
	}

	c.reset()

	tag, err := c.readWord()
	if err != nil {
		return 0, err
	}

	if !tag.Equal(tagRIFF) {
		return 0, formatErrorf(RiffMissing, "found %q", tag.String())
	}

	size, err := c.readWord()
	if err != nil {
		return 0, err
	}

	c.riffSize = size.Uint(LittleEndian)

	tag, err = c.readWord()
	if err != nil {
		return 0, err
	}

	if !tag.Equal(tagWAVE) {
		return 0, &FormatError{Reason: NotWave, Detail: fmt.Sprintf("found %q", tag.String()), Err: riff.ErrFmtNotSupported}
	}

	count, err := c.scanSubchunks()
	if err != nil {
		return count, err
	}

	fmtChunk, ok := c.chunks[tagFmt.Raw()]
	if !ok {
		return count, fmt.Errorf("fmt subchunk: %w", ErrMissingToken)
	}

	c.format, err = decodeFmtChunk(fmtChunk.Words)
	if err != nil {
		return count, err
	}

	return count, nil
}

func (c *Container) scanSubchunks() (int, error) {
	count := 0
	seenData := false

	for {
		id, err := c.readWord()
		if err != nil {
			return count, err
		}

		if id.Len() < WordSize {
			if !id.IsEmpty() {
				c.logger.Debug("ignoring trailing bytes", "path", c.path, "bytes", id.Len())
			}

			return count, nil
		}

		if id.IsAllNull() {
			continue
		}

		sizeWord, err := c.readWord()
		if err != nil {
			return count, err
		}

		if sizeWord.Len() < WordSize {
			c.logger.Debug("truncated subchunk header", "path", c.path, "id", id.String())
			return count, nil
		}

		size := sizeWord.Uint(LittleEndian)
		if size == 0 {
			continue
		}

		if id.Equal(tagData) {
			if err := c.scanData(size); err != nil {
				return count, err
			}

			seenData = true
		} else {
			chunk, err := c.readChunk(id, size)
			if err != nil {
				return count, err
			}

			chunk.Order = count + 1
			chunk.BeforeData = !seenData

			if !chunk.Complete {
				c.logger.Warn("incomplete subchunk", "path", c.path, "id", id.String(), "declared", size)
			}

			c.chunks[id.Raw()] = chunk
		}

		count++
	}
}

// scanData records the payload range and moves past it without reading.
func (c *Container) scanData(size uint32) error {
	pos, err := c.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("locate data chunk: %w", err)
	}

	c.begin = pos
	c.end = pos + int64(size)
	c.dataSize = int64(size)

	if _, err := c.file.Seek(int64(size), io.SeekCurrent); err != nil {
		return fmt.Errorf("skip data chunk: %w", err)
	}

	if size&1 == 1 {
		if err := c.skipPad(); err != nil {
			return err
		}
	}

	// Seeking past the end does not report it, so try reading one byte.
	c.last, err = c.atEOF()

	return err
}

func (c *Container) atEOF() (bool, error) {
	var next [1]byte

	n, err := c.file.Read(next[:])
	if n == 1 {
		if _, err := c.file.Seek(-1, io.SeekCurrent); err != nil {
			return false, fmt.Errorf("seek back after end check: %w", err)
		}

		return false, nil
	}

	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true, nil
	}

	return false, fmt.Errorf("check end of file: %w", err)
}

// readChunk reads size bytes as words; a short read marks the chunk
// incomplete.
func (c *Container) readChunk(id Word, size uint32) (*Chunk, error) {
	chunk := &Chunk{ID: id, Size: size, Complete: true}

	full := size / WordSize
	chunk.Words = make([]Word, 0, min(full+1, 1024))

	for range full {
		w, err := c.readWord()
		if err != nil {
			return nil, err
		}

		if !w.IsEmpty() {
			chunk.Words = append(chunk.Words, w)
		}

		if w.Len() < WordSize {
			chunk.Complete = false
			return chunk, nil
		}
	}

	if rem := int(size % WordSize); rem > 0 {
		w, err := c.readBytes(rem)
		if err != nil {
			return nil, err
		}

		if !w.IsEmpty() {
			chunk.Words = append(chunk.Words, w)
		}

		if w.Len() < rem {
			chunk.Complete = false
			return chunk, nil
		}
	}

	if size&1 == 1 {
		if err := c.skipPad(); err != nil {
			return nil, err
		}
	}

	return chunk, nil
}

// skipPad consumes the zero pad byte that follows an odd sized chunk. Some
// writers leave it out, so a non-zero byte is kept as the start of the next
// chunk header.
func (c *Container) skipPad() error {
	var pad [1]byte

	n, err := c.file.Read(pad[:])
	if n == 1 && pad[0] != 0 {
		if _, err := c.file.Seek(-1, io.SeekCurrent); err != nil {
			return fmt.Errorf("seek back over chunk header: %w", err)
		}

		return nil
	}

	if n == 0 && err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("read pad byte: %w", err)
	}

	return nil
}

func (c *Container) readWord() (Word, error) {
	return c.readBytes(WordSize)
}

// readBytes reads up to n bytes into a word. A word shorter than n means the
// file ended.
func (c *Container) readBytes(n int) (Word, error) {
	var b [WordSize]byte

	got, err := io.ReadFull(c.file, b[:n])
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return Word{}, fmt.Errorf("read %s: %w", c.path, err)
	}

	w, _ := NewWord(b[:got])

	return w, nil
}

// IsParsed reports whether the format of the container is known.
func (c *Container) IsParsed() bool {
	return c.parsed
}

// Format returns the decoded fmt chunk.
func (c *Container) Format() FmtChunk {
	return c.format
}

// Channels returns the number of interleaved channels.
func (c *Container) Channels() int { return int(c.format.NumChannels) }

// SampleRate returns the number of frames per second.
func (c *Container) SampleRate() int { return int(c.format.SampleRate) }

// ByteRate returns the declared average bytes per second.
func (c *Container) ByteRate() int { return int(c.format.ByteRate) }

// BlockSize returns the size of one frame in bytes, the fmt block align.
func (c *Container) BlockSize() int { return int(c.format.BlockAlign) }

// BitDepth returns the declared bits per sample.
func (c *Container) BitDepth() int { return int(c.format.BitsPerSample) }

// IsExtensible reports whether the fmt chunk uses WAVE_FORMAT_EXTENSIBLE.
func (c *Container) IsExtensible() bool { return c.format.Extensible }

// FormatCode returns the effective format code, PCM for every parsed file.
func (c *Container) FormatCode() uint16 {
	return c.format.EffectiveFormatTag()
}

// RiffSize returns the size declared in the RIFF header.
func (c *Container) RiffSize() uint32 {
	return c.riffSize
}

// DataSize returns the declared size of the data chunk in bytes.
func (c *Container) DataSize() int64 {
	return c.dataSize
}

// DataRange returns the [begin, end) byte offsets of the data payload.
func (c *Container) DataRange() (int64, int64) {
	return c.begin, c.end
}

// IsLastChunk reports whether the data chunk ends the file.
func (c *Container) IsLastChunk() bool {
	return c.last
}

// NumBlocks returns the number of whole frames in the data chunk.
func (c *Container) NumBlocks() int {
	if c.format.BlockAlign == 0 {
		return 0
	}

	return int(c.dataSize / int64(c.format.BlockAlign))
}

// NumSamples returns NumBlocks times the channel count.
func (c *Container) NumSamples() int {
	return c.NumBlocks() * c.Channels()
}

// Duration returns the play time of the data chunk.
func (c *Container) Duration() time.Duration {
	return blocksDuration(c.NumBlocks(), c.SampleRate())
}

// Chunk returns the generic subchunk captured under id, such as "LIST".
func (c *Container) Chunk(id string) (*Chunk, bool) {
	w, err := WordFromString(id)
	if err != nil {
		return nil, false
	}

	chunk, ok := c.chunks[w.Raw()]
	if !ok {
		return nil, false
	}

	return chunk.Clone(), true
}

// Chunks returns copies of all captured subchunks in file order. The data
// chunk is never among them.
func (c *Container) Chunks() []*Chunk {
	out := make([]*Chunk, 0, len(c.chunks))
	for _, chunk := range c.chunks {
		out = append(out, chunk.Clone())
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })

	return out
}
