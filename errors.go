package bitmap

import "errors"

// Sentinel errors returned by Bitmap operations. All errors produced by
// this package wrap one of these, so callers can classify failures with
// errors.Is.
var (
	// ErrClosed is returned by any operation on a Bitmap after Close.
	ErrClosed = errors.New("bitmap: bitmap is closed")

	// ErrOutOfRange is returned when pixel coordinates or a crop
	// rectangle fall outside the current raster bounds.
	ErrOutOfRange = errors.New("bitmap: coordinates out of range")

	// ErrUnsupportedFormat is returned by Encode for an unknown format.
	ErrUnsupportedFormat = errors.New("bitmap: unsupported image format")

	// ErrInvalidQuality is returned by Encode when the JPEG quality is
	// outside [0, 100].
	ErrInvalidQuality = errors.New("bitmap: quality must be in [0, 100]")

	// ErrEncodingFailed is returned when the backend codec produces no
	// output.
	ErrEncodingFailed = errors.New("bitmap: encoder produced no data")

	// ErrCreationFailed is returned when the backend cannot allocate a
	// raster of the requested size.
	ErrCreationFailed = errors.New("bitmap: raster allocation failed")

	// ErrReleased is returned when a backend raster handle is used after
	// it has been released.
	ErrReleased = errors.New("bitmap: raster already released")
)
