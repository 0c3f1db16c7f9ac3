package bitmap

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestCanvasBackend_NewRaster(t *testing.T) {
	be := NewCanvasBackend()

	r, err := be.NewRaster(5, 9)
	if err != nil {
		t.Fatalf("NewRaster failed: %v", err)
	}
	if r.Width() != 5 || r.Height() != 9 {
		t.Errorf("dimensions = %dx%d, want 5x9", r.Width(), r.Height())
	}
	for i, v := range r.NRGBA().Pix {
		if v != 0 {
			t.Fatalf("fresh raster not transparent at byte %d", i)
		}
	}

	if _, err := be.NewRaster(0, 9); !errors.Is(err, ErrCreationFailed) {
		t.Errorf("NewRaster(0, 9) error = %v, want ErrCreationFailed", err)
	}
}

func TestCanvasRaster_Release(t *testing.T) {
	be := NewCanvasBackend()
	r, err := be.NewRaster(2, 2)
	if err != nil {
		t.Fatal(err)
	}

	if err := r.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if r.NRGBA() != nil {
		t.Error("NRGBA non-nil after Release")
	}
	// Release is idempotent.
	if err := r.Release(); err != nil {
		t.Errorf("second Release failed: %v", err)
	}

	// A released raster is rejected by the codec and by surfaces.
	if _, err := be.Encode(r, FormatPNG, 100); !errors.Is(err, ErrReleased) {
		t.Errorf("Encode on released raster error = %v, want ErrReleased", err)
	}
	ctx, err := be.Begin(2, 2)
	if err != nil {
		t.Fatal(err)
	}
	defer ctx.Close()
	if err := ctx.DrawRaster(r, Pt(0, 0)); !errors.Is(err, ErrReleased) {
		t.Errorf("DrawRaster of released raster error = %v, want ErrReleased", err)
	}
}

func TestCanvasContext_SnapshotIsIndependent(t *testing.T) {
	be := NewCanvasBackend()
	ctx, err := be.Begin(3, 3)
	if err != nil {
		t.Fatal(err)
	}
	defer ctx.Close()

	if err := ctx.SetPixel(1, 1, Red); err != nil {
		t.Fatal(err)
	}
	snap, err := ctx.Snapshot()
	if err != nil {
		t.Fatal(err)
	}

	// Drawing after the snapshot must not affect it.
	if err := ctx.SetPixel(1, 1, Blue); err != nil {
		t.Fatal(err)
	}
	if got := snap.NRGBA().NRGBAAt(1, 1); got != Red.NRGBA() {
		t.Errorf("snapshot pixel = %v, want %v", got, Red.NRGBA())
	}
}

func TestCanvasContext_UseAfterClose(t *testing.T) {
	be := NewCanvasBackend()
	ctx, err := be.Begin(2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := ctx.Close(); err != nil {
		t.Fatal(err)
	}
	// Close is idempotent.
	if err := ctx.Close(); err != nil {
		t.Fatal(err)
	}

	if err := ctx.SetPixel(0, 0, Red); !errors.Is(err, ErrReleased) {
		t.Errorf("SetPixel after Close error = %v, want ErrReleased", err)
	}
	if _, err := ctx.Snapshot(); !errors.Is(err, ErrReleased) {
		t.Errorf("Snapshot after Close error = %v, want ErrReleased", err)
	}
	if err := ctx.StrokeLine(Pt(0, 0), Pt(1, 1), Red, 1); !errors.Is(err, ErrReleased) {
		t.Errorf("StrokeLine after Close error = %v, want ErrReleased", err)
	}
}

func TestCanvasContext_SetPixelBounds(t *testing.T) {
	be := NewCanvasBackend()
	ctx, err := be.Begin(4, 4)
	if err != nil {
		t.Fatal(err)
	}
	defer ctx.Close()

	for _, p := range []struct{ x, y int }{{-1, 0}, {0, -1}, {4, 0}, {0, 4}} {
		if err := ctx.SetPixel(p.x, p.y, Red); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("SetPixel(%d, %d) error = %v, want ErrOutOfRange", p.x, p.y, err)
		}
	}
}

func TestCanvasBackend_FromImage_NonNRGBA(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	src.SetRGBA(1, 0, color.RGBA{R: 255, A: 255})

	be := NewCanvasBackend()
	r, err := be.FromImage(src)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	if got := r.NRGBA().NRGBAAt(1, 0); got != Red.NRGBA() {
		t.Errorf("converted pixel = %v, want %v", got, Red.NRGBA())
	}
}

func TestCanvasBackend_FromImage_OffsetBounds(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 20, 13, 22))
	src.SetNRGBA(11, 21, Green.NRGBA())

	be := NewCanvasBackend()
	r, err := be.FromImage(src)
	if err != nil {
		t.Fatalf("FromImage failed: %v", err)
	}
	if r.Width() != 3 || r.Height() != 2 {
		t.Errorf("dimensions = %dx%d, want 3x2", r.Width(), r.Height())
	}
	if got := r.NRGBA().NRGBAAt(1, 1); got != Green.NRGBA() {
		t.Errorf("pixel = %v, want %v", got, Green.NRGBA())
	}
}

func TestCompositeNRGBAOver_ExactForLowAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.SetNRGBA(0, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 4})
	src.SetNRGBA(1, 1, color.NRGBA{R: 250, G: 0, B: 250, A: 255})

	dst := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	compositeNRGBAOver(dst, src, image.Point{})

	if got := dst.NRGBAAt(0, 0); got != (color.NRGBA{R: 1, G: 2, B: 3, A: 4}) {
		t.Errorf("low-alpha pixel = %v, want exact copy", got)
	}
	if got := dst.NRGBAAt(1, 1); got != (color.NRGBA{R: 250, G: 0, B: 250, A: 255}) {
		t.Errorf("opaque pixel = %v, want exact copy", got)
	}
}

func TestCompositeNRGBAOver_ClipsNegativeOffset(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	compositeNRGBAOver(dst, src, image.Pt(-1, -1))

	// dst (0, 0) receives src (1, 1).
	if got := dst.NRGBAAt(0, 0); got != (color.NRGBA{R: 1, G: 1, A: 255}) {
		t.Errorf("clipped pixel = %v, want src (1,1)", got)
	}
}

func TestBlendOver_OpaqueDestinationStaysOpaque(t *testing.T) {
	dp := []uint8{0, 0, 255, 255} // opaque blue
	blendOver(dp, [3]uint8{128, 0, 0}, 128)

	if dp[3] != 255 {
		t.Errorf("alpha = %d, want 255", dp[3])
	}
	// Half red over blue lands in between.
	if dp[0] < 120 || dp[0] > 136 {
		t.Errorf("red = %d, want about 128", dp[0])
	}
	if dp[2] < 120 || dp[2] > 136 {
		t.Errorf("blue = %d, want about 127", dp[2])
	}
}
