package bitmap

import (
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// DefaultTextSize is the point size used when TextOptions leaves Size
// unset.
const DefaultTextSize = 16

// TextOptions controls WriteText.
type TextOptions struct {
	// Color is the text color. The zero value draws opaque black.
	Color Color

	// Size is the point size for the built-in face. Ignored when Face is
	// set; defaults to DefaultTextSize.
	Size float64

	// Face overrides the built-in Go Regular face.
	Face font.Face
}

// parsedGoRegular parses the embedded Go Regular font once.
var parsedGoRegular = sync.OnceValues(func() (*truetype.Font, error) {
	return truetype.Parse(goregular.TTF)
})

// defaultFace builds a Go Regular face at the given point size.
func defaultFace(size float64) (font.Face, error) {
	f, err := parsedGoRegular()
	if err != nil {
		return nil, fmt.Errorf("bitmap: parse built-in font: %w", err)
	}
	return truetype.NewFace(f, &truetype.Options{Size: size}), nil
}

// WriteText renders a single run of text with its top-left corner at
// topLeft.
func (b *Bitmap) WriteText(text string, topLeft Point, opts TextOptions) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}

	col := opts.Color
	if col == (Color{}) {
		col = Black
	}
	face := opts.Face
	if face == nil {
		size := opts.Size
		if size <= 0 {
			size = DefaultTextSize
		}
		var err error
		face, err = defaultFace(size)
		if err != nil {
			return err
		}
	}

	return b.render(b.raster.Width(), b.raster.Height(), true, func(ctx Context) error {
		return ctx.DrawText(text, topLeft, col, face)
	})
}
