package wave

import (
	"fmt"
	"math"
)

// maxGridSamples caps how far a Grid grows on access.
const maxGridSamples = 1 << 28

// Grid is a growable interval by dimension store of complex samples kept in
// one flat slice at offset interval*dimensions+dim. Reads and writes past the
// end grow the slice with zeros, so its length is always a whole number of
// intervals.
type Grid struct {
	domain   Domain
	dims     int
	interval float64
	data     []complex128
}

// NewGrid returns an empty grid. dims must be at least 1 and interval
// positive, otherwise ErrDataInvalid is returned.
func NewGrid(domain Domain, dims int, interval float64) (*Grid, error) {
	if dims < 1 {
		return nil, fmt.Errorf("grid dimensions %d: %w", dims, ErrDataInvalid)
	}

	if !(interval > 0) {
		return nil, fmt.Errorf("grid interval %g: %w", interval, ErrDataInvalid)
	}

	return &Grid{domain: domain, dims: dims, interval: interval}, nil
}

// Domain returns the domain tag of the grid.
func (g *Grid) Domain() Domain { return g.domain }

// Dimensions returns the number of values per interval.
func (g *Grid) Dimensions() int { return g.dims }

// Interval returns the spacing between intervals.
func (g *Grid) Interval() float64 { return g.interval }

// SampleCount returns the length of the flat store.
func (g *Grid) SampleCount() int { return len(g.data) }

// IntervalCount returns the number of whole intervals stored.
func (g *Grid) IntervalCount() int { return len(g.data) / g.dims }

// SetDomain retags the grid without touching its samples.
func (g *Grid) SetDomain(d Domain) {
	g.domain = d
}

func (g *Grid) offset(interval, dim int) (int, error) {
	if interval < 0 || dim < 0 || dim >= g.dims {
		return 0, fmt.Errorf("grid index (%d,%d) with %d dimensions: %w", interval, dim, g.dims, ErrRange)
	}

	// bounds interval*dims below the growth cap, so it cannot overflow
	if interval >= maxGridSamples/g.dims {
		return 0, fmt.Errorf("grid interval %d with %d dimensions: %w", interval, g.dims, ErrMemory)
	}

	return interval*g.dims + dim, nil
}

func (g *Grid) growTo(n int) error {
	if n <= len(g.data) {
		return nil
	}

	if n > maxGridSamples {
		return fmt.Errorf("grid of %d samples: %w", n, ErrMemory)
	}

	g.data = append(g.data, make([]complex128, n-len(g.data))...)

	return nil
}

// At returns the sample at (interval, dim), growing the grid to cover the
// interval if needed.
func (g *Grid) At(interval, dim int) (complex128, error) {
	off, err := g.offset(interval, dim)
	if err != nil {
		return 0, err
	}

	if err := g.growTo((interval + 1) * g.dims); err != nil {
		return 0, err
	}

	return g.data[off], nil
}

// Set stores v at (interval, dim), growing the grid to cover the interval
// if needed.
func (g *Grid) Set(interval, dim int, v complex128) error {
	off, err := g.offset(interval, dim)
	if err != nil {
		return err
	}

	if err := g.growTo((interval + 1) * g.dims); err != nil {
		return err
	}

	g.data[off] = v

	return nil
}

// SetDimensions changes the dimension count and resizes the store to
// IntervalCount()*n samples.
//
// Existing samples are NOT moved to their new offsets: the flat store is
// reinterpreted with the new stride, so values stored before the change end
// up at different (interval, dim) positions. Only call it on an empty grid
// or when the old contents are about to be overwritten.
func (g *Grid) SetDimensions(n int) error {
	if n < 1 {
		return fmt.Errorf("grid dimensions %d: %w", n, ErrDataInvalid)
	}

	if n == g.dims {
		return nil
	}

	intervals := g.IntervalCount()
	if n > maxGridSamples || (intervals > 0 && n > maxGridSamples/intervals) {
		return fmt.Errorf("grid of %d intervals with %d dimensions: %w", intervals, n, ErrMemory)
	}

	g.dims = n

	return g.resize(intervals * n)
}

// SetIntervalCount trims or zero extends the grid to n intervals.
func (g *Grid) SetIntervalCount(n int) error {
	if n < 1 {
		return fmt.Errorf("grid interval count %d: %w", n, ErrDataInvalid)
	}

	if n > maxGridSamples/g.dims {
		return fmt.Errorf("grid of %d intervals: %w", n, ErrMemory)
	}

	return g.resize(n * g.dims)
}

// SetInterval sets the spacing between intervals.
func (g *Grid) SetInterval(x float64) error {
	if !(x > 0) || math.IsInf(x, 0) {
		return fmt.Errorf("grid interval %g: %w", x, ErrDataInvalid)
	}

	g.interval = x

	return nil
}

func (g *Grid) resize(n int) error {
	if n > maxGridSamples {
		return fmt.Errorf("grid of %d samples: %w", n, ErrMemory)
	}

	if n <= len(g.data) {
		clear(g.data[n:])
		g.data = g.data[:n]

		return nil
	}

	return g.growTo(n)
}

// Reset drops every sample, leaving the shape settings untouched.
func (g *Grid) Reset() {
	g.data = g.data[:0]
}

// Values returns a copy of the flat store.
func (g *Grid) Values() []complex128 {
	return append([]complex128(nil), g.data...)
}
