package bitmap

// Point represents a 2D pixel position.
type Point struct {
	X, Y float64
}

// Pt is a convenience function to create a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns the sum of two points (vector addition).
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the difference of two points (vector subtraction).
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Size represents the dimensions of a rectangle in pixels.
type Size struct {
	Width, Height float64
}

// Sz is a convenience function to create a Size.
func Sz(width, height float64) Size {
	return Size{Width: width, Height: height}
}

// Rect is an axis-aligned rectangle with its top-left corner at (X, Y).
type Rect struct {
	X, Y, Width, Height float64
}

// RectAt creates a Rect from its top-left corner and size.
func RectAt(topLeft Point, size Size) Rect {
	return Rect{X: topLeft.X, Y: topLeft.Y, Width: size.Width, Height: size.Height}
}

// RectAround creates a Rect of the given size centered on center, so the
// top-left corner is center minus half the extents.
func RectAround(center Point, size Size) Rect {
	return Rect{
		X:      center.X - size.Width/2,
		Y:      center.Y - size.Height/2,
		Width:  size.Width,
		Height: size.Height,
	}
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}
