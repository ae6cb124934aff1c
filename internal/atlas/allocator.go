package atlas

import "fmt"

// Region is a rectangle of atlas texels.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

// IsValid returns true if the region has a positive area.
func (r Region) IsValid() bool {
	return r.Width > 0 && r.Height > 0
}

// Contains returns true if the texel (x, y) is inside the region.
func (r Region) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// String returns a string representation of the region.
func (r Region) String() string {
	return fmt.Sprintf("Region(%d,%d %dx%d)", r.X, r.Y, r.Width, r.Height)
}

// shelf is a horizontal band of the atlas.
type shelf struct {
	y      int // top edge
	height int // tallest item so far, padding included
	nextX  int // next free column
}

// Allocator packs rectangles into a fixed area with the shelf algorithm:
// a rectangle goes on the first shelf with room for it, or on a new shelf
// below the last one.
//
// Allocator is not safe for concurrent use.
type Allocator struct {
	width   int
	height  int
	padding int
	shelves []shelf

	allocs   int
	usedArea int
}

// NewAllocator returns an allocator for a width x height area with the
// given spacing between rectangles.
func NewAllocator(width, height, padding int) *Allocator {
	return &Allocator{
		width:   max(width, 1),
		height:  max(height, 1),
		padding: max(padding, 0),
		shelves: make([]shelf, 0, 16),
	}
}

// Allocate finds space for a rectangle. It returns an invalid region when
// the rectangle does not fit.
func (a *Allocator) Allocate(width, height int) Region {
	if width <= 0 || height <= 0 {
		return Region{}
	}
	pw, ph := width+a.padding, height+a.padding
	if pw > a.width || ph > a.height {
		return Region{}
	}

	for i := range a.shelves {
		s := &a.shelves[i]
		if s.nextX+pw > a.width || ph > s.height {
			continue
		}
		r := Region{X: s.nextX, Y: s.y, Width: width, Height: height}
		s.nextX += pw
		a.count(r)
		return r
	}

	y := 0
	if n := len(a.shelves); n > 0 {
		y = a.shelves[n-1].y + a.shelves[n-1].height
	}
	if y+ph > a.height {
		return Region{}
	}
	a.shelves = append(a.shelves, shelf{y: y, height: ph, nextX: pw})
	r := Region{Y: y, Width: width, Height: height}
	a.count(r)
	return r
}

func (a *Allocator) count(r Region) {
	a.allocs++
	a.usedArea += r.Width * r.Height
}

// Reset frees every allocation.
func (a *Allocator) Reset() {
	a.shelves = a.shelves[:0]
	a.allocs = 0
	a.usedArea = 0
}

// AllocCount returns the number of successful allocations since the last Reset.
func (a *Allocator) AllocCount() int { return a.allocs }

// Utilization returns the fraction of the area in use (0.0 to 1.0).
func (a *Allocator) Utilization() float64 {
	return float64(a.usedArea) / float64(a.width*a.height)
}
