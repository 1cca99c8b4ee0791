package wave

import (
	"fmt"
	"math"
)

// Endian selects the byte order used to read a Word as an integer.
type Endian int

const (
	// LittleEndian stores the least significant byte at index 0.
	LittleEndian Endian = iota
	// BigEndian stores the most significant byte at index 0.
	BigEndian
)

func (e Endian) String() string {
	if e == BigEndian {
		return "big"
	}

	return "little"
}

// WordSize is the physical capacity of a Word in bytes.
const WordSize = 4

// Word is a 4-byte buffer with a logical length of 0 to 4 bytes.
// Bytes past the logical length are always zero.
type Word struct {
	data [WordSize]byte
	size int
}

// NewWord copies b into a Word. It fails with ErrRange for more than 4 bytes.
func NewWord(b []byte) (Word, error) {
	var w Word
	if len(b) > WordSize {
		return w, fmt.Errorf("word of %d bytes: %w", len(b), ErrRange)
	}

	w.size = copy(w.data[:], b)

	return w, nil
}

// WordFromString builds a Word from a text literal such as a chunk tag.
func WordFromString(s string) (Word, error) {
	return NewWord([]byte(s))
}

// MustWord is like WordFromString but panics on error. It is meant for
// package level tag literals.
func MustWord(s string) Word {
	w, err := WordFromString(s)
	if err != nil {
		panic(err)
	}

	return w
}

func wordFromID(id [4]byte) Word {
	return Word{data: id, size: WordSize}
}

// Len returns the logical length.
func (w Word) Len() int {
	return w.size
}

// IsEmpty reports whether the logical length is zero.
func (w Word) IsEmpty() bool {
	return w.size == 0
}

// IsAllNull reports whether every logical byte is zero. An empty word is
// all null.
func (w Word) IsAllNull() bool {
	for i := range w.size {
		if w.data[i] != 0 {
			return false
		}
	}

	return true
}

// Byte returns the physical byte at i.
func (w Word) Byte(i int) (byte, error) {
	if i < 0 || i >= WordSize {
		return 0, fmt.Errorf("word byte %d: %w", i, ErrRange)
	}

	return w.data[i], nil
}

// SetByte stores v at index i. Writing past the logical length grows the
// word so that it covers index i.
func (w *Word) SetByte(i int, v byte) error {
	if i < 0 || i >= WordSize {
		return fmt.Errorf("word byte %d: %w", i, ErrRange)
	}

	w.data[i] = v
	if i >= w.size {
		w.size = i + 1
	}

	return nil
}

// Bytes returns a copy of the logical bytes.
func (w Word) Bytes() []byte {
	return append([]byte(nil), w.data[:w.size]...)
}

// Raw returns all four physical bytes. Two words with equal Raw values are
// Equal, so Raw is usable as a map key.
func (w Word) Raw() [4]byte {
	return w.data
}

func (w Word) String() string {
	return string(w.data[:w.size])
}

// Equal compares the four physical bytes, ignoring the logical length.
func (w Word) Equal(o Word) bool {
	return w.data == o.data
}

// Less orders words by the sum of their physical bytes.
func (w Word) Less(o Word) bool {
	return w.sum() < o.sum()
}

func (w Word) sum() int {
	total := 0
	for _, b := range w.data {
		total += int(b)
	}

	return total
}

// Pad grows the word to 4 bytes. Little endian words are zero filled at the
// tail; big endian words have their bytes moved to the tail and zero filled
// at the head.
func (w *Word) Pad(e Endian) {
	w.padTo(WordSize, e)
}

func (w *Word) padTo(width int, e Endian) {
	if w.size >= width {
		return
	}

	if e == BigEndian {
		var out [WordSize]byte
		copy(out[width-w.size:width], w.data[:w.size])
		w.data = out
	}

	w.size = width
}

// Uint decodes the logical bytes as an unsigned integer.
func (w Word) Uint(e Endian) uint32 {
	return DecodeUint(w.data[:w.size], e)
}

// Int decodes the logical bytes as a two's complement integer.
func (w Word) Int(e Endian) int32 {
	return DecodeInt(w.data[:w.size], e)
}

// leadingWord keeps the first four bytes of b: the most significant ones in
// big endian order and the least significant ones in little endian order.
func leadingWord(b []byte) []byte {
	if len(b) > WordSize {
		return b[:WordSize]
	}

	return b
}

// DecodeUint reads b as a base-256 number in the given byte order.
// Inputs longer than 4 bytes are truncated to their first 4 bytes.
func DecodeUint(b []byte, e Endian) uint32 {
	b = leadingWord(b)

	var v uint32
	if e == BigEndian {
		for _, x := range b {
			v = v<<8 | uint32(x)
		}

		return v
	}

	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint32(b[i])
	}

	return v
}

// DecodeInt reads b as a two's complement number in the given byte order.
// The sign bit of the most significant byte is cleared before accumulating
// and, when it was set, 2^(8*len-1) is subtracted from the result.
// Inputs longer than 4 bytes are truncated like DecodeUint.
func DecodeInt(b []byte, e Endian) int32 {
	b = leadingWord(b)
	if len(b) == 0 {
		return 0
	}

	var tmp [WordSize]byte
	copy(tmp[:], b)

	msb := 0
	if e == LittleEndian {
		msb = len(b) - 1
	}

	negative := tmp[msb]&0x80 != 0
	tmp[msb] &= 0x7F

	v := int64(DecodeUint(tmp[:len(b)], e))
	if negative {
		v -= int64(1) << (8*len(b) - 1)
	}

	return int32(v)
}

// EncodeUint returns the minimal number of bytes holding v, ordered for e.
// Zero encodes to an empty word.
func EncodeUint(v uint32, e Endian) Word {
	var w Word
	for v > 0 {
		w.data[w.size] = byte(v % 256)
		w.size++
		v /= 256
	}

	if e == BigEndian {
		for i, j := 0, w.size-1; i < j; i, j = i+1, j-1 {
			w.data[i], w.data[j] = w.data[j], w.data[i]
		}
	}

	return w
}

// EncodeInt returns v as a two's complement number exactly width bytes
// long. It fails with ErrRange when width is not 1 to 4 or v does not fit.
func EncodeInt(v int32, width int, e Endian) (Word, error) {
	lo, hi, err := signedBounds(width)
	if err != nil {
		return Word{}, err
	}

	if int64(v) < lo || int64(v) > hi {
		return Word{}, fmt.Errorf("value %d does not fit %d bytes: %w", v, width, ErrRange)
	}

	w := EncodeUint(uint32(v)&widthMask(width), e)
	w.padTo(width, e)

	return w, nil
}

func signedBounds(width int) (int64, int64, error) {
	if width < 1 || width > WordSize {
		return 0, 0, fmt.Errorf("sample width %d: %w", width, ErrRange)
	}

	half := int64(1) << (8*width - 1)

	return -half, half - 1, nil
}

func widthMask(width int) uint32 {
	if width >= WordSize {
		return math.MaxUint32
	}

	return uint32(1)<<(8*width) - 1
}
