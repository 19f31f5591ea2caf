package simplevault

import (
	"context"
)

// NoopThumbnailer is the default Thumbnailer. Resize passes bytes through
// unchanged (callers get the original image at every size); Rotate is not
// supported.
type NoopThumbnailer struct{}

// NewNoopThumbnailer creates a pass-through thumbnailer.
func NewNoopThumbnailer() *NoopThumbnailer { return &NoopThumbnailer{} }

func (NoopThumbnailer) Resize(_ context.Context, data []byte, _, _ int) ([]byte, error) {
	return data, nil
}

func (NoopThumbnailer) Rotate(context.Context, []byte, int) ([]byte, error) {
	return nil, ErrUnsupportedOperation
}

// NoopConverter is the default Converter. It only serves requests that ask
// for the source format back.
type NoopConverter struct{}

// NewNoopConverter creates a converter that rejects every real conversion.
func NewNoopConverter() *NoopConverter { return &NoopConverter{} }

func (NoopConverter) Convert(_ context.Context, data []byte, sourceMime string, opts ConvertOptions) ([]byte, string, error) {
	if opts.Format == "" || opts.Format == ExtensionForMime(sourceMime) {
		return data, sourceMime, nil
	}
	return nil, "", ErrUnsupportedOperation
}

// NoopGeocoder is the default Geocoder; it resolves nothing.
type NoopGeocoder struct{}

// NewNoopGeocoder creates a geocoder that reports the feature unavailable.
func NewNoopGeocoder() *NoopGeocoder { return &NoopGeocoder{} }

func (NoopGeocoder) ReverseGeocode(context.Context, float64, float64) (string, error) {
	return "", ErrUnsupportedOperation
}

// NoopExifExtractor is the default ExifExtractor; it extracts nothing.
type NoopExifExtractor struct{}

// NewNoopExifExtractor creates an extractor returning no tags.
func NewNoopExifExtractor() *NoopExifExtractor { return &NoopExifExtractor{} }

func (NoopExifExtractor) Extract(context.Context, []byte) (map[string]interface{}, error) {
	return map[string]interface{}{}, nil
}
