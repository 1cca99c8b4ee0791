package wave

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/riff"
)

var (
	// CIDList is the chunk ID for a LIST chunk.
	CIDList = [4]byte{'L', 'I', 'S', 'T'}
	// CIDInfo is the list type of an INFO list.
	CIDInfo = [4]byte{'I', 'N', 'F', 'O'}
	// CIDFact is the chunk ID for the fact chunk.
	CIDFact = [4]byte{'f', 'a', 'c', 't'}
)

// ChunkHandler interprets the payload of a captured subchunk. Decode reads
// from ch; whatever it leaves unread is drained by the registry.
type ChunkHandler interface {
	CanHandle(chunkID [4]byte, listType [4]byte) bool
	Decode(m *Metadata, ch *riff.Chunk) error
}

// ChunkRegistry resolves chunks to handlers.
type ChunkRegistry struct {
	handlers []ChunkHandler
}

// NewChunkRegistry returns a registry that knows LIST/INFO, fact, smpl and
// bext chunks.
func NewChunkRegistry() *ChunkRegistry {
	return &ChunkRegistry{
		handlers: []ChunkHandler{
			&factChunkHandler{},
			&listChunkHandler{},
			&smplChunkHandler{},
			&bextChunkHandler{},
		},
	}
}

// Register appends a handler to the registry.
func (r *ChunkRegistry) Register(handler ChunkHandler) {
	if r == nil || handler == nil {
		return
	}

	r.handlers = append(r.handlers, handler)
}

// Decode dispatches a chunk to the first matching handler.
func (r *ChunkRegistry) Decode(m *Metadata, chunk *Chunk) (bool, error) {
	if r == nil || chunk == nil || m == nil {
		return false, nil
	}

	id := chunk.ID.Raw()
	payload := chunk.Bytes()
	listType := sniffListType(id, payload)

	for _, handler := range r.handlers {
		if handler.CanHandle(id, listType) {
			ch := newRiffChunk(id, payload)
			err := handler.Decode(m, ch)
			ch.Done()

			if err != nil {
				return true, fmt.Errorf("decode %q chunk: %w", chunk.ID.String(), err)
			}

			return true, nil
		}
	}

	return false, nil
}

// newRiffChunk exposes a captured payload as a riff chunk. Size is the number
// of bytes actually captured, which is less than the declared size for an
// incomplete chunk.
func newRiffChunk(id [4]byte, payload []byte) *riff.Chunk {
	return &riff.Chunk{
		ID:   id,
		Size: len(payload),
		R:    bytes.NewReader(payload),
	}
}

func sniffListType(id [4]byte, payload []byte) [4]byte {
	var listType [4]byte
	if id != CIDList || len(payload) < 4 {
		return listType
	}

	copy(listType[:], payload[:4])

	return listType
}

type factChunkHandler struct{}

func (h *factChunkHandler) CanHandle(chunkID [4]byte, _ [4]byte) bool {
	return chunkID == CIDFact
}

func (h *factChunkHandler) Decode(m *Metadata, ch *riff.Chunk) error {
	if ch.Size < 4 {
		return fmt.Errorf("fact chunk of %d bytes: %w", ch.Size, ErrMissingData)
	}

	if err := ch.ReadLE(&m.SampleCount); err != nil {
		return fmt.Errorf("read fact sample count: %w", err)
	}

	m.HasFact = true

	return nil
}

type listChunkHandler struct{}

func (h *listChunkHandler) CanHandle(chunkID [4]byte, listType [4]byte) bool {
	return chunkID == CIDList && listType == CIDInfo
}

func (h *listChunkHandler) Decode(m *Metadata, ch *riff.Chunk) error {
	payload, err := io.ReadAll(ch)
	if err != nil {
		return fmt.Errorf("read LIST chunk: %w", err)
	}

	return decodeInfoList(m, payload)
}
