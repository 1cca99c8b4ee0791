package wave

import "fmt"

const (
	formatPCM        uint16 = 0x0001
	formatExtensible uint16 = 0xFFFE

	// MaxSampleSize is the widest sample, in bits, a container accepts.
	MaxSampleSize = 32

	pcmFmtSize        = 16
	pcmFmtWords       = pcmFmtSize / WordSize
	extensibleFmtWord = 10
	subFormatWord     = 6
)

// FmtChunk stores the parsed fmt chunk.
type FmtChunk struct {
	// FormatTag is the code found at the start of the chunk.
	FormatTag     uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Extensible    bool
	// SubFormat is the format code read from the extensible sub format GUID.
	SubFormat uint16
}

// EffectiveFormatTag returns the sub format for extensible files and the
// plain format tag otherwise.
func (f FmtChunk) EffectiveFormatTag() uint16 {
	if f.Extensible {
		return f.SubFormat
	}

	return f.FormatTag
}

func (f FmtChunk) bytesPerSample() int {
	return int(f.BitsPerSample) / 8
}

func lowHalf(w Word) uint16 {
	raw := w.Raw()
	return uint16(DecodeUint(raw[0:2], LittleEndian))
}

func highHalf(w Word) uint16 {
	raw := w.Raw()
	return uint16(DecodeUint(raw[2:4], LittleEndian))
}

func decodeFmtChunk(words []Word) (FmtChunk, error) {
	var f FmtChunk
	if len(words) < pcmFmtWords {
		return f, fmt.Errorf("fmt chunk has %d words: %w", len(words), ErrMissingData)
	}

	f.FormatTag = lowHalf(words[0])
	switch f.FormatTag {
	case formatPCM:
	case formatExtensible:
		if len(words) != extensibleFmtWord {
			return f, fmt.Errorf("extensible fmt chunk has %d words: %w", len(words), ErrMissingData)
		}

		f.Extensible = true
	default:
		return f, formatErrorf(NotPCM, "format tag 0x%04X", f.FormatTag)
	}

	f.NumChannels = highHalf(words[0])
	f.SampleRate = words[1].Uint(LittleEndian)
	f.ByteRate = words[2].Uint(LittleEndian)
	f.BlockAlign = lowHalf(words[3])
	f.BitsPerSample = highHalf(words[3])

	if f.BitsPerSample > MaxSampleSize {
		return f, formatErrorf(BitrateHigh, "%d bits", f.BitsPerSample)
	}

	if f.Extensible {
		f.SubFormat = lowHalf(words[subFormatWord])
		if f.SubFormat != formatPCM {
			return f, formatErrorf(NotPCM, "sub format 0x%04X", f.SubFormat)
		}
	}

	if err := f.validate(); err != nil {
		return f, err
	}

	return f, nil
}

func (f FmtChunk) validate() error {
	if f.NumChannels == 0 {
		return &FormatError{Reason: NoChannels}
	}

	if f.BitsPerSample == 0 || f.BitsPerSample%8 != 0 {
		return formatErrorf(SampleSizeInvalid, "%d bits", f.BitsPerSample)
	}

	if f.BitsPerSample > MaxSampleSize {
		return formatErrorf(BitrateHigh, "%d bits", f.BitsPerSample)
	}

	if want := int(f.NumChannels) * f.bytesPerSample(); int(f.BlockAlign) != want {
		return formatErrorf(BlockAlignMismatch, "block align %d, want %d", f.BlockAlign, want)
	}

	return nil
}

// pcmWords encodes the 16 byte PCM fmt payload. Extensible fields are never
// written back.
func (f FmtChunk) pcmWords() [pcmFmtWords]Word {
	fields := [pcmFmtWords]uint32{
		uint32(formatPCM) | uint32(f.NumChannels)<<16,
		f.SampleRate,
		f.ByteRate,
		uint32(f.BlockAlign) | uint32(f.BitsPerSample)<<16,
	}

	var out [pcmFmtWords]Word
	for i, v := range fields {
		out[i] = EncodeUint(v, LittleEndian)
		out[i].Pad(LittleEndian)
	}

	return out
}

func newPCMFormat(channels, sampleRate, bitDepth int) (FmtChunk, error) {
	if channels <= 0 || channels > 0xFFFF {
		return FmtChunk{}, formatErrorf(NoChannels, "%d channels", channels)
	}

	if sampleRate <= 0 || int64(sampleRate) > 0xFFFFFFFF {
		return FmtChunk{}, fmt.Errorf("sample rate %d: %w", sampleRate, ErrDataInvalid)
	}

	if bitDepth <= 0 || bitDepth%8 != 0 {
		return FmtChunk{}, formatErrorf(SampleSizeInvalid, "%d bits", bitDepth)
	}

	if bitDepth > MaxSampleSize {
		return FmtChunk{}, formatErrorf(BitrateHigh, "%d bits", bitDepth)
	}

	blockAlign := channels * bitDepth / 8
	if blockAlign > 0xFFFF {
		return FmtChunk{}, formatErrorf(BlockAlignMismatch, "block align %d", blockAlign)
	}

	f := FmtChunk{
		FormatTag:     formatPCM,
		NumChannels:   uint16(channels),
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate * blockAlign),
		BlockAlign:    uint16(blockAlign),
		BitsPerSample: uint16(bitDepth),
	}

	return f, nil
}
