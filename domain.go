package wave

import (
	"fmt"
	"math"
)

// Domain tells whether sample data is indexed by time or by frequency.
type Domain int

const (
	TimeDomain Domain = iota
	FrequencyDomain
)

func (d Domain) String() string {
	switch d {
	case TimeDomain:
		return "time"
	case FrequencyDomain:
		return "frequency"
	default:
		return fmt.Sprintf("Domain(%d)", int(d))
	}
}

// DomainData is a two dimensional sample store addressed by interval and
// dimension. Container and Grid both implement it, so either can be the
// source or the sink of a transform.
type DomainData interface {
	Domain() Domain
	// Dimensions is the number of values per interval, the channel count
	// for audio.
	Dimensions() int
	IntervalCount() int
	SampleCount() int
	// Interval is the spacing between intervals: seconds per block in the
	// time domain, hertz per bin in the frequency domain.
	Interval() float64
	At(interval, dim int) (complex128, error)
	Set(interval, dim int, v complex128) error
}

// Resizable is implemented by DomainData stores whose shape can change.
type Resizable interface {
	DomainData
	SetDimensions(n int) error
	SetIntervalCount(n int) error
	SetInterval(x float64) error
}

// Copy writes every sample of src into dst. A Resizable dst is first
// reshaped to the shape of src; any other dst must already have the same
// dimension count and at least as many intervals. An empty src empties a
// Resizable dst that has a Reset method, such as Grid.
func Copy(dst, src DomainData) error {
	dims, intervals := src.Dimensions(), src.IntervalCount()

	if r, ok := dst.(Resizable); ok {
		if err := r.SetDimensions(dims); err != nil {
			return fmt.Errorf("copy: %w", err)
		}

		if intervals > 0 {
			if err := r.SetIntervalCount(intervals); err != nil {
				return fmt.Errorf("copy: %w", err)
			}
		} else if e, ok := dst.(interface{ Reset() }); ok {
			e.Reset()
		}

		if x := src.Interval(); x > 0 && !math.IsInf(x, 0) {
			if err := r.SetInterval(x); err != nil {
				return fmt.Errorf("copy: %w", err)
			}
		}
	} else if dst.Dimensions() != dims || dst.IntervalCount() < intervals {
		return fmt.Errorf("copy %dx%d into fixed %dx%d store: %w",
			intervals, dims, dst.IntervalCount(), dst.Dimensions(), ErrUnsupported)
	}

	for i := range intervals {
		for d := range dims {
			v, err := src.At(i, d)
			if err != nil {
				return fmt.Errorf("copy read (%d,%d): %w", i, d, err)
			}

			if err := dst.Set(i, d, v); err != nil {
				return fmt.Errorf("copy write (%d,%d): %w", i, d, err)
			}
		}
	}

	return nil
}
