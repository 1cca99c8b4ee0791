package wave

import (
	"log/slog"

	"github.com/spf13/afero"
)

// DefaultLoadLimit bounds the payload DataLoad reads into memory.
const DefaultLoadLimit int64 = 1 << 31

// Option configures a Container.
type Option func(*Container)

// WithFs sets the filesystem files are opened from and written to.
func WithFs(fs afero.Fs) Option {
	return func(c *Container) {
		if fs != nil {
			c.fs = fs
		}
	}
}

// WithLogger sets the logger used for parse, load and write events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Container) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLoadLimit sets the largest payload, in bytes, DataLoad accepts.
// Larger payloads fail with ErrMemory.
func WithLoadLimit(n int64) Option {
	return func(c *Container) {
		if n > 0 {
			c.loadLimit = n
		}
	}
}

// WithChunkHandler adds a handler consulted by Metadata after the built in
// LIST/INFO and fact handlers.
func WithChunkHandler(h ChunkHandler) Option {
	return func(c *Container) {
		c.registry.Register(h)
	}
}
