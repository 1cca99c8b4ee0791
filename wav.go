package wave

import (
	"math"
	"strings"
	"time"
)

func nullTermStr(b []byte) string {
	return string(b[:clen(b)])
}

func clen(num []byte) int {
	for i := range num {
		if num[i] == 0 {
			return i
		}
	}

	return len(num)
}

func blocksDuration(blocks, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}

	return time.Duration(math.Round(float64(blocks) / float64(sampleRate) * float64(time.Second)))
}

// BlocksForDuration returns how many blocks play for at least dur.
func BlocksForDuration(dur time.Duration, sampleRate int) int {
	if dur <= 0 || sampleRate <= 0 {
		return 0
	}

	return int(math.Ceil(dur.Seconds() * float64(sampleRate)))
}

// fieldReader walks the fixed layout fields of a chunk payload. Reads past
// the end yield zero bytes.
type fieldReader struct {
	buf []byte
	off int
}

func (r *fieldReader) remaining() int {
	return max(len(r.buf)-r.off, 0)
}

func (r *fieldReader) take(n int) []byte {
	out := make([]byte, n)
	if r.off < len(r.buf) {
		copy(out, r.buf[r.off:])
	}

	r.off += n

	return out
}

func (r *fieldReader) uint32() uint32 {
	return DecodeUint(r.take(4), LittleEndian)
}

// text reads a NUL padded string field and trims trailing blanks.
func (r *fieldReader) text(n int) string {
	return strings.TrimRight(nullTermStr(r.take(n)), " ")
}
