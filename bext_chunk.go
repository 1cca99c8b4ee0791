package wave

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-audio/riff"
)

const (
	bextDescriptionLen         = 256
	bextOriginatorLen          = 32
	bextOriginatorReferenceLen = 32
	bextOriginationDateLen     = 10
	bextOriginationTimeLen     = 8
	bextUMIDLen                = 64
	bextReservedLen            = 190
)

// CIDBext is the chunk ID for the broadcast extension chunk.
var CIDBext = [4]byte{'b', 'e', 'x', 't'}

// BroadcastExtension is the content of a bext chunk (EBU Tech 3285).
type BroadcastExtension struct {
	Description         string
	Originator          string
	OriginatorReference string
	OriginationDate     string
	OriginationTime     string
	// TimeReference is the first sample count since midnight.
	TimeReference uint64
	Version       uint16
	UMID          [bextUMIDLen]byte
	CodingHistory string
}

type bextChunkHandler struct{}

func (h *bextChunkHandler) CanHandle(chunkID [4]byte, _ [4]byte) bool {
	return chunkID == CIDBext
}

// Decode reads the fixed fields of a bext chunk. A short chunk leaves the
// missing fields zero.
func (h *bextChunkHandler) Decode(m *Metadata, ch *riff.Chunk) error {
	payload, err := io.ReadAll(ch)
	if err != nil {
		return fmt.Errorf("read bext chunk: %w", err)
	}

	r := fieldReader{buf: payload}
	b := &BroadcastExtension{}

	b.Description = r.text(bextDescriptionLen)
	b.Originator = r.text(bextOriginatorLen)
	b.OriginatorReference = r.text(bextOriginatorReferenceLen)
	b.OriginationDate = r.text(bextOriginationDateLen)
	b.OriginationTime = r.text(bextOriginationTimeLen)

	low := r.uint32()
	high := r.uint32()
	b.TimeReference = uint64(high)<<32 | uint64(low)
	b.Version = uint16(DecodeUint(r.take(2), LittleEndian))

	copy(b.UMID[:], r.take(bextUMIDLen))
	r.take(bextReservedLen)

	if r.remaining() > 0 {
		b.CodingHistory = strings.TrimRight(string(r.take(r.remaining())), "\x00")
	}

	m.Broadcast = b

	return nil
}
