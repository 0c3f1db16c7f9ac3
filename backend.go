package bitmap

import (
	"image"

	"golang.org/x/image/font"
)

// Backend is the platform raster engine a Bitmap delegates all
// rasterization and codec work to. Implementations must be safe for use
// from multiple goroutines; the contexts and rasters they hand out are
// used by one goroutine at a time.
type Backend interface {
	// NewRaster allocates a blank, fully transparent raster.
	NewRaster(width, height int) (Raster, error)

	// FromImage allocates a raster holding a copy of img's pixels.
	FromImage(img image.Image) (Raster, error)

	// Begin opens a drawing surface of the given size. The caller must
	// Close the returned Context on every path.
	Begin(width, height int) (Context, error)

	// Encode compresses a raster with the chosen codec. quality is the
	// JPEG quality in [0, 100] and is ignored for PNG.
	Encode(r Raster, format Format, quality int) ([]byte, error)
}

// Raster is an immutable pixel snapshot owned by whoever holds the
// handle. Release returns the handle to the backend; using a raster
// after Release fails with ErrReleased.
type Raster interface {
	// Width returns the raster width in pixels.
	Width() int

	// Height returns the raster height in pixels.
	Height() int

	// NRGBA exposes the backing pixel buffer, non-premultiplied, 4 bytes
	// per pixel. Callers must treat the buffer as read-only; nil after
	// Release.
	NRGBA() *image.NRGBA

	// Release frees the raster. Release is idempotent.
	Release() error
}

// Context is an open drawing surface. Each method applies one drawing
// command; Snapshot captures the accumulated result as a new raster.
// A Context is single-use and confined to one goroutine.
type Context interface {
	// DrawRaster renders a raster into the surface with its top-left
	// corner at topLeft, compositing over what is already there.
	DrawRaster(r Raster, topLeft Point) error

	// StrokeLine strokes a line between two points.
	StrokeLine(start, end Point, col Color, width float64) error

	// FillOval fills the ellipse inscribed in r.
	FillOval(r Rect, col Color) error

	// StrokeOval strokes the ellipse inscribed in r.
	StrokeOval(r Rect, col Color, width float64) error

	// FillRect fills the rectangle r.
	FillRect(r Rect, col Color) error

	// StrokeRect strokes the rectangle r.
	StrokeRect(r Rect, col Color, width float64) error

	// SetPixel overwrites exactly the 1x1 pixel at (x, y), replacing the
	// previous value rather than compositing.
	SetPixel(x, y int, col Color) error

	// DrawText renders a single run of text with its top-left corner at
	// topLeft using the given face.
	DrawText(text string, topLeft Point, col Color, face font.Face) error

	// Snapshot captures the surface contents as a new raster owned by
	// the caller.
	Snapshot() (Raster, error)

	// Close releases the surface. Close is idempotent.
	Close() error
}
