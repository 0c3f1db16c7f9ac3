// Package bitmap provides a mutable raster image editing surface for Go.
//
// # Overview
//
// A Bitmap is an opaque handle over a fixed-size RGBA raster. Editing
// operations — crop, line/oval/rect drawing, pixel get/set, insert,
// resize, rotate, flip, text — mutate the handle in place while the
// underlying rasters stay immutable snapshots: each mutator renders the
// current raster plus exactly one drawing primitive into a fresh surface,
// captures the result, and swaps it in, releasing the previous raster as
// the final step. Rasterization, anti-aliasing, and PNG/JPEG encoding are
// delegated to a pluggable Backend; the default backend draws through
// fogleman/gg.
//
// # Quick Start
//
//	import bitmap "github.com/wattana/nativescript-bitmap-factory"
//
//	bmp, err := bitmap.New(640, 480)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer bmp.Close()
//
//	bmp.DrawLine(bitmap.Pt(0, 0), bitmap.Pt(639, 479), bitmap.Red)
//	bmp.DrawOval(bitmap.Pt(100, 100), bitmap.Sz(200, 120), bitmap.Black, &bitmap.White)
//
//	enc, err := bmp.Encode(bitmap.FormatPNG, 100)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(enc.Mime, len(enc.Base64))
//
// # Concurrency
//
// Every operation on a Bitmap is a single atomic unit guarded by a
// per-instance mutex; a Bitmap may be shared across goroutines, though
// interleaved edits are applied in an unspecified order.
//
// # Coordinate System
//
// Uses standard raster coordinates:
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
//   - Pixel (x, y) covers the unit square from (x, y) to (x+1, y+1)
package bitmap
