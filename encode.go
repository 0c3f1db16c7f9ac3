package bitmap

import (
	"encoding/base64"
	"fmt"
)

// Format selects the codec used by Encode.
type Format int

// Supported encoding formats.
const (
	// FormatPNG is lossless; the quality argument is ignored.
	FormatPNG Format = iota + 1

	// FormatJPEG is lossy; quality must be in [0, 100].
	FormatJPEG
)

// Mime returns the MIME type of the format, or "" if unknown.
func (f Format) Mime() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatJPEG:
		return "image/jpeg"
	default:
		return ""
	}
}

// String implements fmt.Stringer.
func (f Format) String() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatJPEG:
		return "jpeg"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// EncodedImage is the immutable result of an Encode call. It is an
// independent value, not tied to the bitmap that produced it.
type EncodedImage struct {
	// Base64 holds the standard-encoded compressed bytes.
	Base64 string

	// Mime is the MIME type of the compressed data.
	Mime string
}

// Bytes returns the decoded compressed bytes.
func (e EncodedImage) Bytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(e.Base64)
}

// DataURL returns the image as an RFC 2397 data URL.
func (e EncodedImage) DataURL() string {
	return "data:" + e.Mime + ";base64," + e.Base64
}

// Encode compresses the current pixels with the chosen codec and returns
// the result base64-encoded. quality applies to JPEG only and must be in
// [0, 100]; it is ignored for PNG. Unknown formats fail with
// ErrUnsupportedFormat, and a codec that produces no bytes fails with
// ErrEncodingFailed.
func (b *Bitmap) Encode(format Format, quality int) (EncodedImage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return EncodedImage{}, ErrClosed
	}
	switch format {
	case FormatPNG, FormatJPEG:
	default:
		return EncodedImage{}, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}
	if format == FormatJPEG && (quality < 0 || quality > 100) {
		return EncodedImage{}, fmt.Errorf("%w: got %d", ErrInvalidQuality, quality)
	}

	data, err := b.backend.Encode(b.raster, format, quality)
	if err != nil {
		return EncodedImage{}, err
	}
	if len(data) == 0 {
		return EncodedImage{}, fmt.Errorf("%w: %v", ErrEncodingFailed, format)
	}
	Logger().Debug("bitmap: encoded", "format", format, "bytes", len(data))
	return EncodedImage{
		Base64: base64.StdEncoding.EncodeToString(data),
		Mime:   format.Mime(),
	}, nil
}
