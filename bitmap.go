package bitmap

import (
	"errors"
	"fmt"
	"image"
	"io"
	"sync"
)

// Bitmap is a mutable raster image. It owns exactly one backend raster
// at a time; every editing operation renders the current raster plus one
// drawing primitive into a fresh surface, captures the result, and swaps
// it in. The previous raster is released only after the new one is in
// place, so a failed operation leaves the image in its last valid state.
//
// A Bitmap is safe for concurrent use; each operation is a single atomic
// unit under an internal mutex. Bitmap implements io.Closer.
type Bitmap struct {
	mu      sync.Mutex
	backend Backend
	raster  Raster
	closed  bool
}

// Ensure Bitmap implements io.Closer
var _ io.Closer = (*Bitmap)(nil)

// New creates a Bitmap over a blank, fully transparent raster of the
// given size. It fails with ErrCreationFailed when the backend cannot
// allocate the raster.
func New(width, height int, opts ...Option) (*Bitmap, error) {
	options := applyOptions(opts)
	r, err := options.backend.NewRaster(width, height)
	if err != nil {
		return nil, err
	}
	Logger().Debug("bitmap: created", "width", width, "height", height)
	return &Bitmap{backend: options.backend, raster: r}, nil
}

// Wrap creates a Bitmap that takes ownership of an existing backend
// raster. The raster must not be nil; no other validation is performed.
func Wrap(r Raster, opts ...Option) (*Bitmap, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil raster", ErrCreationFailed)
	}
	options := applyOptions(opts)
	return &Bitmap{backend: options.backend, raster: r}, nil
}

// FromImage creates a Bitmap holding a copy of img's pixels.
func FromImage(img image.Image, opts ...Option) (*Bitmap, error) {
	options := applyOptions(opts)
	r, err := options.backend.FromImage(img)
	if err != nil {
		return nil, err
	}
	return &Bitmap{backend: options.backend, raster: r}, nil
}

// Width returns the current raster width in pixels.
func (b *Bitmap) Width() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0
	}
	return b.raster.Width()
}

// Height returns the current raster height in pixels.
func (b *Bitmap) Height() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0
	}
	return b.raster.Height()
}

// Closed reports whether Close has been called.
func (b *Bitmap) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// Native returns the currently owned backend raster for interop with the
// backend. Ownership is not transferred; the caller must not release it,
// and the handle is replaced by the next mutating operation.
func (b *Bitmap) Native() Raster {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	return b.raster
}

// Close releases the owned raster and marks the Bitmap terminal; every
// subsequent operation fails with ErrClosed. Close is idempotent -
// multiple calls are safe. Implements io.Closer.
func (b *Bitmap) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	old := b.raster
	b.raster = nil
	if err := old.Release(); err != nil {
		Logger().Warn("bitmap: release on close", "error", err)
		return err
	}
	return nil
}

// render runs one drawing step against a fresh surface of the given size
// and swaps the captured result in as the new owned raster. When replay
// is true the surface is primed with the current raster first. The old
// raster is released last, and only on success. Callers must hold b.mu
// and have checked b.closed.
func (b *Bitmap) render(width, height int, replay bool, step func(Context) error) error {
	ctx, err := b.backend.Begin(width, height)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := ctx.Close(); cerr != nil {
			Logger().Warn("bitmap: close drawing surface", "error", cerr)
		}
	}()

	if replay {
		if err := ctx.DrawRaster(b.raster, Pt(0, 0)); err != nil {
			return err
		}
	}
	if err := step(ctx); err != nil {
		return err
	}
	next, err := ctx.Snapshot()
	if err != nil {
		return err
	}
	b.swap(next)
	return nil
}

// swap installs next as the owned raster and releases the previous one.
// Callers must hold b.mu.
func (b *Bitmap) swap(next Raster) {
	old := b.raster
	b.raster = next
	if err := old.Release(); err != nil {
		Logger().Warn("bitmap: release replaced raster", "error", err)
	}
}

// Crop replaces the raster with the rectangle of the given size whose
// top-left corner is at topLeft. The rectangle must lie fully inside the
// current bounds, else Crop fails with ErrOutOfRange.
func (b *Bitmap) Crop(topLeft Point, size Size) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	w, h := int(size.Width), int(size.Height)
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: crop size %dx%d must be positive", ErrOutOfRange, w, h)
	}
	x, y := int(topLeft.X), int(topLeft.Y)
	if topLeft.X < 0 || topLeft.Y < 0 || x+w > b.raster.Width() || y+h > b.raster.Height() {
		return fmt.Errorf("%w: crop %dx%d at (%d, %d) exceeds %dx%d",
			ErrOutOfRange, w, h, x, y, b.raster.Width(), b.raster.Height())
	}
	Logger().Debug("bitmap: crop", "x", x, "y", y, "width", w, "height", h)
	return b.render(w, h, false, func(ctx Context) error {
		return ctx.DrawRaster(b.raster, Pt(-float64(x), -float64(y)))
	})
}

// DrawLine strokes a one-unit-wide line from start to end in col.
func (b *Bitmap) DrawLine(start, end Point, col Color) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	return b.render(b.raster.Width(), b.raster.Height(), true, func(ctx Context) error {
		return ctx.StrokeLine(start, end, col, 1)
	})
}

// DrawOval strokes the ellipse inscribed in the rectangle with top-left
// corner topLeft and the given size. When fill is non-nil the interior
// is filled first, so the stroke stays visible on top; a nil fill leaves
// the interior untouched.
func (b *Bitmap) DrawOval(topLeft Point, size Size, stroke Color, fill *Color) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	r := RectAt(topLeft, size)
	return b.render(b.raster.Width(), b.raster.Height(), true, func(ctx Context) error {
		if fill != nil {
			if err := ctx.FillOval(r, *fill); err != nil {
				return err
			}
		}
		return ctx.StrokeOval(r, stroke, 1)
	})
}

// DrawRect strokes an axis-aligned rectangle of the given size centered
// on center, deriving the top-left corner as center minus half the
// extents. Fill-before-stroke and nil-fill semantics match DrawOval.
func (b *Bitmap) DrawRect(center Point, size Size, stroke Color, fill *Color) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	r := RectAround(center, size)
	return b.render(b.raster.Width(), b.raster.Height(), true, func(ctx Context) error {
		if fill != nil {
			if err := ctx.FillRect(r, *fill); err != nil {
				return err
			}
		}
		return ctx.StrokeRect(r, stroke, 1)
	})
}

// DrawCircle strokes a circle of the given radius centered on center.
// Fill-before-stroke and nil-fill semantics match DrawOval.
func (b *Bitmap) DrawCircle(center Point, radius float64, stroke Color, fill *Color) error {
	return b.DrawOval(Pt(center.X-radius, center.Y-radius), Sz(2*radius, 2*radius), stroke, fill)
}

// GetPoint reads the pixel at p and returns it packed as ARGB, alpha in
// the most significant byte. Coordinates outside the raster fail with
// ErrOutOfRange.
func (b *Bitmap) GetPoint(p Point) (uint32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, ErrClosed
	}
	x, y, err := b.pixelAt(p)
	if err != nil {
		return 0, err
	}
	px := b.raster.NRGBA().NRGBAAt(x, y)
	return Color{R: px.R, G: px.G, B: px.B, A: px.A}.ARGB(), nil
}

// SetPoint overwrites exactly the 1x1 pixel at p with col. Coordinates
// outside the raster fail with ErrOutOfRange.
func (b *Bitmap) SetPoint(col Color, p Point) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	x, y, err := b.pixelAt(p)
	if err != nil {
		return err
	}
	return b.render(b.raster.Width(), b.raster.Height(), true, func(ctx Context) error {
		return ctx.SetPixel(x, y, col)
	})
}

// pixelAt validates p against the current bounds and returns it as
// integer pixel coordinates. Callers must hold b.mu.
func (b *Bitmap) pixelAt(p Point) (int, int, error) {
	x, y := int(p.X), int(p.Y)
	if p.X < 0 || p.Y < 0 || x >= b.raster.Width() || y >= b.raster.Height() {
		return 0, 0, fmt.Errorf("%w: pixel (%g, %g) outside %dx%d",
			ErrOutOfRange, p.X, p.Y, b.raster.Width(), b.raster.Height())
	}
	return x, y, nil
}

// Insert composites src over this bitmap with src's top-left corner at
// topLeft. Pixels outside the destination rectangle are untouched. src
// is read atomically and stays unmodified; inserting a bitmap into
// itself is allowed.
func (b *Bitmap) Insert(src *Bitmap, topLeft Point) error {
	if src == nil {
		return errors.New("bitmap: insert: nil source")
	}

	// Snapshot the source before taking our own lock so that inserting
	// a bitmap into itself cannot deadlock.
	var snap image.Image
	if src == b {
		b.mu.Lock()
		if b.closed {
			b.mu.Unlock()
			return ErrClosed
		}
		snap = cloneNRGBA(b.raster.NRGBA())
		b.mu.Unlock()
	} else {
		var err error
		snap, err = src.Image()
		if err != nil {
			return err
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	tmp, err := b.backend.FromImage(snap)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := tmp.Release(); rerr != nil {
			Logger().Warn("bitmap: release insert source", "error", rerr)
		}
	}()
	return b.render(b.raster.Width(), b.raster.Height(), true, func(ctx Context) error {
		return ctx.DrawRaster(tmp, topLeft)
	})
}

// Image returns an independent snapshot of the current pixels for
// interop with the standard image packages.
func (b *Bitmap) Image() (image.Image, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	return cloneNRGBA(b.raster.NRGBA()), nil
}

// Clone returns an independent copy of the bitmap backed by its own
// raster on the same backend.
func (b *Bitmap) Clone() (*Bitmap, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	r, err := b.backend.FromImage(b.raster.NRGBA())
	if err != nil {
		return nil, err
	}
	return &Bitmap{backend: b.backend, raster: r}, nil
}

// cloneNRGBA returns a deep copy of src.
func cloneNRGBA(src *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}
