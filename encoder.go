package wave

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// riffHeaderSize counts "WAVE", the fmt chunk and the data chunk header.
const riffHeaderSize = 4 + 8 + pcmFmtSize + 8

// NewFromPCM builds an in-memory container around a copy of data, which
// holds interleaved little endian samples of bitDepth bits.
func NewFromPCM(channels, sampleRate, bitDepth int, data []byte, opts ...Option) (*Container, error) {
	f, err := newPCMFormat(channels, sampleRate, bitDepth)
	if err != nil {
		return nil, err
	}

	c := New(opts...)
	c.format = f
	c.parsed = true
	c.buf = append([]byte(nil), data...)
	c.dataSize = int64(len(c.buf))
	c.end = c.dataSize
	c.last = true

	c.logger.Debug("created wave in memory",
		"channels", channels, "sample_rate", sampleRate, "bit_depth", bitDepth, "data_bytes", len(data))

	return c, nil
}

func paddedWord(v uint32) Word {
	w := EncodeUint(v, LittleEndian)
	w.Pad(LittleEndian)

	return w
}

// WriteTo writes the container as a canonical PCM wave: the RIFF header, a
// 16 byte fmt chunk and the data chunk. Extensible fields and generic
// subchunks are not written. The payload is loaded first if needed.
func (c *Container) WriteTo(w io.Writer) (int64, error) {
	if !c.parsed {
		return 0, fmt.Errorf("write unparsed container: %w", ErrMissingToken)
	}

	if err := c.ensureLoaded(); err != nil {
		return 0, err
	}

	f, err := newPCMFormat(c.Channels(), c.SampleRate(), c.BitDepth())
	if err != nil {
		return 0, err
	}

	pad := len(c.buf) & 1
	total := uint64(riffHeaderSize) + uint64(len(c.buf)) + uint64(pad)
	if total > math.MaxUint32 {
		return 0, fmt.Errorf("payload of %d bytes: %w", len(c.buf), ErrRange)
	}

	hdr := bytes.NewBuffer(make([]byte, 0, riffHeaderSize+8))
	words := []Word{tagRIFF, paddedWord(uint32(total)), tagWAVE, tagFmt, paddedWord(pcmFmtSize)}
	fmtWords := f.pcmWords()
	words = append(words, fmtWords[:]...)
	words = append(words, tagData, paddedWord(uint32(len(c.buf))))

	for _, word := range words {
		hdr.Write(word.Bytes())
	}

	var written int64

	n, err := w.Write(hdr.Bytes())
	written += int64(n)
	if err != nil {
		return written, fmt.Errorf("write header: %w", err)
	}

	n, err = w.Write(c.buf)
	written += int64(n)
	if err != nil {
		return written, fmt.Errorf("write data: %w", err)
	}

	if pad == 1 {
		n, err = w.Write([]byte{0})
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("write pad byte: %w", err)
		}
	}

	c.logger.Debug("wrote wave", "bytes", written)

	return written, nil
}

// WriteFileTo writes the container to path through a temporary file in the
// same directory, so a failed write leaves any existing file untouched.
func (c *Container) WriteFileTo(path string) error {
	if err := c.ensureLoaded(); err != nil {
		return err
	}

	tmp, err := afero.TempFile(c.fs, filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create %s: %w: %w", path, ErrFileCannotOpen, err)
	}

	_, err = c.WriteTo(tmp)
	if closeErr := tmp.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("close %s: %w", tmp.Name(), closeErr)
	}

	if err == nil {
		err = c.fs.Rename(tmp.Name(), path)
	}

	if err != nil {
		if rmErr := c.fs.Remove(tmp.Name()); rmErr != nil && !os.IsNotExist(rmErr) {
			c.logger.Warn("removing temporary file", "path", tmp.Name(), "error", rmErr)
		}

		return fmt.Errorf("write %s: %w", path, err)
	}

	c.logger.Debug("wrote wave file", "path", path)

	return nil
}

// WriteFile rewrites the opened file in place and parses it again. The
// loaded payload is kept; generic subchunks are gone afterwards since they
// are not written.
func (c *Container) WriteFile() error {
	if c.file == nil || c.path == "" {
		return fmt.Errorf("write file: %w", ErrFileNotOpen)
	}

	if err := c.ensureLoaded(); err != nil {
		return err
	}

	payload := c.buf
	path := c.path

	if err := c.WriteFileTo(path); err != nil {
		return err
	}

	if err := c.Open(path); err != nil {
		return err
	}

	if _, err := c.Parse(); err != nil {
		return err
	}

	c.buf = payload
	c.cursor = 0

	return nil
}
