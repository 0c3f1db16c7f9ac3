package bitmap

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
)

// Raster dimension limits enforced by the canvas backend.
const (
	maxRasterSide   = 1 << 15
	maxRasterPixels = 1 << 26
)

// canvasBackend is the default Backend. It keeps pixels in
// non-premultiplied NRGBA buffers and delegates vector primitives to
// fogleman/gg: each primitive is drawn onto a transparent overlay and
// composited over the surface, so pixels the primitive does not touch
// survive bit-exactly.
type canvasBackend struct{}

// NewCanvasBackend returns the default fogleman/gg-backed Backend.
func NewCanvasBackend() Backend {
	return canvasBackend{}
}

func (canvasBackend) NewRaster(width, height int) (Raster, error) {
	if err := checkRasterSize(width, height); err != nil {
		return nil, err
	}
	return &canvasRaster{img: image.NewNRGBA(image.Rect(0, 0, width, height))}, nil
}

func (be canvasBackend) FromImage(img image.Image) (Raster, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrCreationFailed)
	}
	b := img.Bounds()
	r, err := be.NewRaster(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	cr := r.(*canvasRaster)
	// NRGBA sources are copied row by row; the generic draw path would
	// route every pixel through premultiplied color and corrupt channel
	// values at low alpha.
	if src, ok := img.(*image.NRGBA); ok {
		for y := 0; y < b.Dy(); y++ {
			srcRow := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			copy(cr.img.Pix[cr.img.PixOffset(0, y):cr.img.PixOffset(0, y)+4*b.Dx()], srcRow)
		}
		return cr, nil
	}
	draw.Draw(cr.img, cr.img.Bounds(), img, b.Min, draw.Src)
	return cr, nil
}

func (canvasBackend) Begin(width, height int) (Context, error) {
	if err := checkRasterSize(width, height); err != nil {
		return nil, err
	}
	return &canvasContext{
		width:  width,
		height: height,
		base:   image.NewNRGBA(image.Rect(0, 0, width, height)),
	}, nil
}

func (canvasBackend) Encode(r Raster, format Format, quality int) ([]byte, error) {
	src := r.NRGBA()
	if src == nil {
		return nil, ErrReleased
	}
	var buf bytes.Buffer
	switch format {
	case FormatPNG:
		if err := png.Encode(&buf, src); err != nil {
			return nil, fmt.Errorf("bitmap: png encode: %w", err)
		}
	case FormatJPEG:
		// The codec clamps quality into [1, 100]; range validation is
		// the caller's concern.
		if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("bitmap: jpeg encode: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
	return buf.Bytes(), nil
}

func checkRasterSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d must be positive", ErrCreationFailed, width, height)
	}
	if width > maxRasterSide || height > maxRasterSide || width*height > maxRasterPixels {
		return fmt.Errorf("%w: dimensions %dx%d exceed limits", ErrCreationFailed, width, height)
	}
	return nil
}

// canvasRaster is an NRGBA pixel snapshot handed out by canvasBackend.
type canvasRaster struct {
	img *image.NRGBA
}

func (r *canvasRaster) Width() int {
	if r.img == nil {
		return 0
	}
	return r.img.Rect.Dx()
}

func (r *canvasRaster) Height() int {
	if r.img == nil {
		return 0
	}
	return r.img.Rect.Dy()
}

func (r *canvasRaster) NRGBA() *image.NRGBA {
	return r.img
}

func (r *canvasRaster) Release() error {
	r.img = nil
	return nil
}

// canvasContext is an open drawing surface. The accumulated frame lives
// in base; each vector primitive runs on its own transparent fogleman/gg
// overlay that is composited over base on completion.
type canvasContext struct {
	width  int
	height int
	base   *image.NRGBA
}

func (c *canvasContext) overlay(fn func(dc *gg.Context)) error {
	if c.base == nil {
		return ErrReleased
	}
	dc := gg.NewContext(c.width, c.height)
	fn(dc)
	if rgba, ok := dc.Image().(*image.RGBA); ok {
		compositePremulOver(c.base, rgba)
		return nil
	}
	draw.Draw(c.base, c.base.Bounds(), dc.Image(), image.Point{}, draw.Over)
	return nil
}

func (c *canvasContext) DrawRaster(r Raster, topLeft Point) error {
	if c.base == nil {
		return ErrReleased
	}
	src := r.NRGBA()
	if src == nil {
		return ErrReleased
	}
	compositeNRGBAOver(c.base, src, image.Pt(int(topLeft.X), int(topLeft.Y)))
	return nil
}

// compositeNRGBAOver composites src over dst with src's top-left at
// offset, clipping to dst's bounds. Pixels where dst is fully
// transparent or src is fully opaque are copied verbatim, so replaying a
// raster into a fresh surface preserves every channel value bit-exactly.
func compositeNRGBAOver(dst, src *image.NRGBA, offset image.Point) {
	target := image.Rectangle{
		Min: offset,
		Max: offset.Add(src.Rect.Size()),
	}.Intersect(dst.Rect)
	for y := target.Min.Y; y < target.Max.Y; y++ {
		for x := target.Min.X; x < target.Max.X; x++ {
			si := src.PixOffset(src.Rect.Min.X+x-offset.X, src.Rect.Min.Y+y-offset.Y)
			di := dst.PixOffset(x, y)
			sa := src.Pix[si+3]
			switch {
			case sa == 0:
				// Source transparent, destination untouched.
			case sa == 255 || dst.Pix[di+3] == 0:
				copy(dst.Pix[di:di+4], src.Pix[si:si+4])
			default:
				sp := [3]uint8{
					premul(src.Pix[si+0], sa),
					premul(src.Pix[si+1], sa),
					premul(src.Pix[si+2], sa),
				}
				blendOver(dst.Pix[di:di+4], sp, sa)
			}
		}
	}
}

// compositePremulOver composites a premultiplied RGBA overlay of the
// same bounds over dst. Overlay pixels with zero alpha leave dst
// untouched.
func compositePremulOver(dst *image.NRGBA, src *image.RGBA) {
	b := dst.Rect.Intersect(src.Rect)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			si := src.PixOffset(x, y)
			di := dst.PixOffset(x, y)
			sa := src.Pix[si+3]
			switch {
			case sa == 0:
			case sa == 255:
				copy(dst.Pix[di:di+4], src.Pix[si:si+4])
			default:
				sp := [3]uint8{src.Pix[si+0], src.Pix[si+1], src.Pix[si+2]}
				blendOver(dst.Pix[di:di+4], sp, sa)
			}
		}
	}
}

// blendOver composites a premultiplied source pixel (sp, sa) over the
// straight-alpha destination pixel stored in dp.
func blendOver(dp []uint8, sp [3]uint8, sa uint8) {
	da := dp[3]
	outA := uint32(sa) + uint32(da)*(255-uint32(sa))/255
	if outA == 0 {
		dp[0], dp[1], dp[2], dp[3] = 0, 0, 0, 0
		return
	}
	for i := 0; i < 3; i++ {
		dpremul := uint32(premul(dp[i], da))
		out := uint32(sp[i]) + dpremul*(255-uint32(sa))/255
		dp[i] = uint8(min((out*255+outA/2)/outA, 255))
	}
	dp[3] = uint8(outA)
}

// premul converts one straight-alpha channel value to premultiplied.
func premul(v, a uint8) uint8 {
	return uint8((uint32(v)*uint32(a) + 127) / 255)
}

func (c *canvasContext) StrokeLine(start, end Point, col Color, width float64) error {
	return c.overlay(func(dc *gg.Context) {
		dc.SetColor(col.NRGBA())
		dc.SetLineWidth(width)
		dc.DrawLine(start.X, start.Y, end.X, end.Y)
		dc.Stroke()
	})
}

func (c *canvasContext) FillOval(r Rect, col Color) error {
	return c.overlay(func(dc *gg.Context) {
		dc.SetColor(col.NRGBA())
		dc.DrawEllipse(r.X+r.Width/2, r.Y+r.Height/2, r.Width/2, r.Height/2)
		dc.Fill()
	})
}

func (c *canvasContext) StrokeOval(r Rect, col Color, width float64) error {
	return c.overlay(func(dc *gg.Context) {
		dc.SetColor(col.NRGBA())
		dc.SetLineWidth(width)
		dc.DrawEllipse(r.X+r.Width/2, r.Y+r.Height/2, r.Width/2, r.Height/2)
		dc.Stroke()
	})
}

func (c *canvasContext) FillRect(r Rect, col Color) error {
	return c.overlay(func(dc *gg.Context) {
		dc.SetColor(col.NRGBA())
		dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
		dc.Fill()
	})
}

func (c *canvasContext) StrokeRect(r Rect, col Color, width float64) error {
	return c.overlay(func(dc *gg.Context) {
		dc.SetColor(col.NRGBA())
		dc.SetLineWidth(width)
		dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
		dc.Stroke()
	})
}

func (c *canvasContext) SetPixel(x, y int, col Color) error {
	if c.base == nil {
		return ErrReleased
	}
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return fmt.Errorf("%w: pixel (%d, %d) outside %dx%d", ErrOutOfRange, x, y, c.width, c.height)
	}
	c.base.SetNRGBA(x, y, col.NRGBA())
	return nil
}

func (c *canvasContext) DrawText(text string, topLeft Point, col Color, face font.Face) error {
	return c.overlay(func(dc *gg.Context) {
		dc.SetColor(col.NRGBA())
		dc.SetFontFace(face)
		dc.DrawStringAnchored(text, topLeft.X, topLeft.Y, 0, 1)
	})
}

func (c *canvasContext) Snapshot() (Raster, error) {
	if c.base == nil {
		return nil, ErrReleased
	}
	snap := image.NewNRGBA(c.base.Rect)
	copy(snap.Pix, c.base.Pix)
	return &canvasRaster{img: snap}, nil
}

func (c *canvasContext) Close() error {
	c.base = nil
	return nil
}
