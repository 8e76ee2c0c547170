package virtualscroll

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidViewport is returned when a viewport cannot be windowed
var ErrInvalidViewport = errors.New("invalid viewport")

// Viewport describes the geometry of a scrollable window into a list
type Viewport struct {
	ItemHeight      float64
	ContainerHeight float64
	Buffer          int
}

// Range is a half-open window [Start, End) of item indices
type Range struct {
	Start int
	End   int
}

// Len returns the number of indices in the range
func (r Range) Len() int {
	return r.End - r.Start
}

// Contains reports whether index falls inside the range
func (r Range) Contains(index int) bool {
	return index >= r.Start && index < r.End
}

// NewViewport validates and returns a viewport
func NewViewport(itemHeight, containerHeight float64, buffer int) (Viewport, error) {
	v := Viewport{
		ItemHeight:      itemHeight,
		ContainerHeight: containerHeight,
		Buffer:          buffer,
	}
	if err := v.Validate(); err != nil {
		return Viewport{}, err
	}
	return v, nil
}

// Validate checks the viewport invariants
func (v Viewport) Validate() error {
	if !(v.ItemHeight > 0) || math.IsInf(v.ItemHeight, 0) {
		return fmt.Errorf("%w: item height must be positive, got %v", ErrInvalidViewport, v.ItemHeight)
	}
	if v.Buffer < 0 {
		return fmt.Errorf("%w: buffer must not be negative, got %d", ErrInvalidViewport, v.Buffer)
	}
	if v.ContainerHeight < 0 || math.IsNaN(v.ContainerHeight) {
		return fmt.Errorf("%w: container height must not be negative, got %v", ErrInvalidViewport, v.ContainerHeight)
	}
	return nil
}

// VisibleCount is the number of items that fit in the container
func (v Viewport) VisibleCount() int {
	return int(math.Ceil(v.ContainerHeight / v.ItemHeight))
}

// ComputeVisibleRange returns the window of items to render for a scroll offset.
//
// start is the first visible item minus buffer; end is start + visibleCount +
// 2*buffer, measured from the clamped start. Near the top, where start clamps
// to 0, the whole 2*buffer lands below the visible area. Callers depend on
// this exact shape.
func (v Viewport) ComputeVisibleRange(scrollOffset float64, itemCount int) Range {
	if itemCount <= 0 {
		return Range{}
	}
	if scrollOffset < 0 || math.IsNaN(scrollOffset) {
		scrollOffset = 0
	}

	// Offsets far past the end would overflow the int conversion
	first := math.Min(math.Floor(scrollOffset/v.ItemHeight), float64(itemCount))
	rawStart := int(first) - v.Buffer
	start := max(0, rawStart)
	start = min(start, itemCount)

	end := min(itemCount, start+v.VisibleCount()+2*v.Buffer)
	return Range{Start: start, End: end}
}

// OffsetY is the pixel (or row) position of the first rendered item
func (v Viewport) OffsetY(start int) float64 {
	return float64(start) * v.ItemHeight
}

// TotalHeight is the scrollable extent of itemCount items
func (v Viewport) TotalHeight(itemCount int) float64 {
	return float64(itemCount) * v.ItemHeight
}

// IndexOffset is the scroll offset that puts index at the top of the container
func (v Viewport) IndexOffset(index int) float64 {
	return float64(index) * v.ItemHeight
}
