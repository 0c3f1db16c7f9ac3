package bitmap

// Option configures a Bitmap during creation.
// Use functional options to customize Bitmap behavior.
//
// Example:
//
//	// Default fogleman/gg-backed rendering
//	bmp, err := bitmap.New(800, 600)
//
//	// Custom backend (dependency injection)
//	bmp, err := bitmap.New(800, 600, bitmap.WithBackend(myBackend))
type Option func(*bitmapOptions)

// bitmapOptions holds optional configuration for Bitmap creation.
type bitmapOptions struct {
	backend Backend
}

// applyOptions resolves the option list against the defaults.
func applyOptions(opts []Option) bitmapOptions {
	options := bitmapOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	if options.backend == nil {
		options.backend = NewCanvasBackend()
	}
	return options
}

// WithBackend sets a custom raster backend for the Bitmap.
// Use this for dependency injection of alternative rendering or codec
// engines.
//
// Example:
//
//	bmp, err := bitmap.New(800, 600, bitmap.WithBackend(myBackend))
func WithBackend(be Backend) Option {
	return func(o *bitmapOptions) {
		o.backend = be
	}
}
