package wave

// Chunk is a generic subchunk captured while parsing. Its payload is kept as
// the sequence of words it was read in; a trailing partial word holds the
// remaining size%4 bytes.
type Chunk struct {
	ID Word
	// Size is the size declared in the chunk header.
	Size uint32
	Words []Word
	// Complete is false when the file ended before Size bytes were read.
	Complete bool
	// Order is the position of the chunk in the file, counting from 1.
	Order int
	// BeforeData indicates if this chunk appeared before the data chunk.
	BeforeData bool
}

// Bytes returns the payload bytes that were read, at most Size of them.
func (c *Chunk) Bytes() []byte {
	if c == nil {
		return nil
	}

	out := make([]byte, 0, len(c.Words)*WordSize)
	for _, w := range c.Words {
		out = append(out, w.Bytes()...)
	}

	if uint64(len(out)) > uint64(c.Size) {
		out = out[:c.Size]
	}

	return out
}

// Equal compares chunk identifiers.
func (c *Chunk) Equal(o *Chunk) bool {
	return c.ID.Equal(o.ID)
}

// Less orders chunks by identifier.
func (c *Chunk) Less(o *Chunk) bool {
	return c.ID.Less(o.ID)
}

// Clone returns a deep copy of the chunk and its words.
func (c *Chunk) Clone() *Chunk {
	if c == nil {
		return nil
	}

	out := *c
	out.Words = append([]Word(nil), c.Words...)

	return &out
}
