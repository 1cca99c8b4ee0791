package wave

// Metadata holds what was recognised in the generic subchunks of a file.
// See http://bwfmetaedit.sourceforge.net/listinfo.html
type Metadata struct {
	Artist       string
	Comments     string
	Copyright    string
	CreationDate string
	Engineer     string
	Technician   string
	Genre        string
	Keywords     string
	Medium       string
	Title        string
	Product      string
	Subject      string
	Software     string
	Source       string
	Location     string
	TrackNbr     string

	// SampleCount comes from the fact chunk.
	SampleCount uint32
	HasFact     bool

	Sampler   *SamplerInfo
	Broadcast *BroadcastExtension
}

// Metadata decodes the captured subchunks with the container's chunk
// registry. It returns nil when none of them was recognised.
func (c *Container) Metadata() (*Metadata, error) {
	if c.metadata != nil {
		return c.metadata.clone(), nil
	}

	var (
		meta    Metadata
		handled bool
	)

	for _, chunk := range c.Chunks() {
		ok, err := c.registry.Decode(&meta, chunk)
		if err != nil {
			return nil, err
		}

		handled = handled || ok
	}

	if !handled {
		return nil, nil
	}

	c.metadata = &meta

	return meta.clone(), nil
}

func (m *Metadata) clone() *Metadata {
	out := *m

	if m.Sampler != nil {
		s := *m.Sampler
		s.Loops = append([]SampleLoop(nil), m.Sampler.Loops...)
		out.Sampler = &s
	}

	if m.Broadcast != nil {
		b := *m.Broadcast
		out.Broadcast = &b
	}

	return &out
}
