package bitmap

import (
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/transform"
)

// Resize rescales the raster to the given size using bilinear sampling.
func (b *Bitmap) Resize(size Size) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.resizeLocked(int(size.Width), int(size.Height))
}

// ResizeWidth rescales the raster to the given width, deriving the
// height so the aspect ratio is preserved.
func (b *Bitmap) ResizeWidth(width float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	w := int(width)
	h := int(math.Round(width * float64(b.raster.Height()) / float64(b.raster.Width())))
	return b.resizeLocked(w, h)
}

// ResizeHeight rescales the raster to the given height, deriving the
// width so the aspect ratio is preserved.
func (b *Bitmap) ResizeHeight(height float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	h := int(height)
	w := int(math.Round(height * float64(b.raster.Width()) / float64(b.raster.Height())))
	return b.resizeLocked(w, h)
}

// ResizeMax rescales the raster so its longer side equals max, keeping
// the aspect ratio. A raster already no larger than max on both sides is
// still rescaled up.
func (b *Bitmap) ResizeMax(max float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	w, h := float64(b.raster.Width()), float64(b.raster.Height())
	scale := max / w
	if h > w {
		scale = max / h
	}
	return b.resizeLocked(int(math.Round(w*scale)), int(math.Round(h*scale)))
}

// resizeLocked rescales to w x h. Callers must hold b.mu.
func (b *Bitmap) resizeLocked(w, h int) error {
	if b.closed {
		return ErrClosed
	}
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: resize target %dx%d must be positive", ErrCreationFailed, w, h)
	}
	Logger().Debug("bitmap: resize", "width", w, "height", h)
	out := transform.Resize(b.raster.NRGBA(), w, h, transform.Linear)
	return b.swapImage(out)
}

// Rotate rotates the raster clockwise by the given angle in degrees.
// The bounds grow as needed to hold the rotated image; uncovered corners
// are transparent.
func (b *Bitmap) Rotate(degrees float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	Logger().Debug("bitmap: rotate", "degrees", degrees)
	out := transform.Rotate(b.raster.NRGBA(), degrees, &transform.RotationOptions{ResizeBounds: true})
	return b.swapImage(out)
}

// FlipHorizontal mirrors the raster around its vertical axis.
func (b *Bitmap) FlipHorizontal() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	return b.swapImage(transform.FlipH(b.raster.NRGBA()))
}

// FlipVertical mirrors the raster around its horizontal axis.
func (b *Bitmap) FlipVertical() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	return b.swapImage(transform.FlipV(b.raster.NRGBA()))
}

// swapImage imports img as a new raster and installs it, releasing the
// previous raster last. Callers must hold b.mu.
func (b *Bitmap) swapImage(img image.Image) error {
	next, err := b.backend.FromImage(img)
	if err != nil {
		return err
	}
	b.swap(next)
	return nil
}
