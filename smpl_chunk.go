package wave

import (
	"fmt"

	"github.com/go-audio/riff"
)

// smpl chunk is documented here:
// https://sites.google.com/site/musicgapi/technical-documents/wav-file-format#smpl

// CIDSmpl is the chunk ID for the sampler chunk.
var CIDSmpl = [4]byte{'s', 'm', 'p', 'l'}

const (
	smplHeaderSize = 36
	smplLoopSize   = 24
)

// SamplerInfo is the content of a smpl chunk.
type SamplerInfo struct {
	Manufacturer [4]byte
	Product      [4]byte
	// SamplePeriod is the duration of one sample in nanoseconds.
	SamplePeriod      uint32
	MIDIUnityNote     uint32
	MIDIPitchFraction uint32
	SMPTEFormat       uint32
	SMPTEOffset       uint32
	NumSampleLoops    uint32
	Loops             []SampleLoop
}

// SampleLoop is one loop of a smpl chunk. Start and End are sample offsets.
type SampleLoop struct {
	CuePointID [4]byte
	// Type is 0 for forward, 1 for ping-pong, 2 for backward loops.
	Type      uint32
	Start     uint32
	End       uint32
	Fraction  uint32
	PlayCount uint32
}

type smplChunkHandler struct{}

func (h *smplChunkHandler) CanHandle(chunkID [4]byte, _ [4]byte) bool {
	return chunkID == CIDSmpl
}

// smplHeader is the fixed part of a smpl chunk ahead of the loop table.
type smplHeader struct {
	Manufacturer      [4]byte
	Product           [4]byte
	SamplePeriod      uint32
	MIDIUnityNote     uint32
	MIDIPitchFraction uint32
	SMPTEFormat       uint32
	SMPTEOffset       uint32
	NumSampleLoops    uint32
	// size of the vendor data after the loops, skipped
	SamplerData uint32
}

func (h *smplChunkHandler) Decode(m *Metadata, ch *riff.Chunk) error {
	if ch.Size < smplHeaderSize {
		return fmt.Errorf("smpl chunk of %d bytes: %w", ch.Size, ErrMissingData)
	}

	var hdr smplHeader
	if err := ch.ReadLE(&hdr); err != nil {
		return fmt.Errorf("read smpl header: %w", err)
	}

	remaining := ch.Size - ch.Pos
	if want := uint64(hdr.NumSampleLoops) * smplLoopSize; uint64(remaining) < want {
		return fmt.Errorf("smpl chunk announces %d loops in %d bytes: %w",
			hdr.NumSampleLoops, remaining, ErrMissingData)
	}

	info := &SamplerInfo{
		Manufacturer:      hdr.Manufacturer,
		Product:           hdr.Product,
		SamplePeriod:      hdr.SamplePeriod,
		MIDIUnityNote:     hdr.MIDIUnityNote,
		MIDIPitchFraction: hdr.MIDIPitchFraction,
		SMPTEFormat:       hdr.SMPTEFormat,
		SMPTEOffset:       hdr.SMPTEOffset,
		NumSampleLoops:    hdr.NumSampleLoops,
		Loops:             make([]SampleLoop, hdr.NumSampleLoops),
	}

	if len(info.Loops) > 0 {
		if err := ch.ReadLE(info.Loops); err != nil {
			return fmt.Errorf("read smpl loops: %w", err)
		}
	}

	m.Sampler = info

	return nil
}
