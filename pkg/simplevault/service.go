package simplevault

import (
	"fmt"
)

// service implements the Service interface
type service struct {
	backend     StorageBackend
	resourceIDs *ResourceIDManager
	contentIDs  *ContentIDManager
	locks       *userLocks

	capabilities map[ResourceType]TypeCapabilities
	thumbnailer  Thumbnailer
	converter    Converter
	geocoder     Geocoder
	exif         ExifExtractor
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithStorageBackend sets the storage backend for the service
func WithStorageBackend(backend StorageBackend) Option {
	return func(s *service) {
		s.backend = backend
	}
}

// WithThumbnailer sets the thumbnail generator
func WithThumbnailer(t Thumbnailer) Option {
	return func(s *service) {
		s.thumbnailer = t
	}
}

// WithConverter sets the content format converter
func WithConverter(c Converter) Option {
	return func(s *service) {
		s.converter = c
	}
}

// WithGeocoder sets the reverse geocoder
func WithGeocoder(g Geocoder) Option {
	return func(s *service) {
		s.geocoder = g
	}
}

// WithExifExtractor sets the EXIF extractor
func WithExifExtractor(e ExifExtractor) Option {
	return func(s *service) {
		s.exif = e
	}
}

// WithTypeCapabilities overrides the capability set of one resource type
func WithTypeCapabilities(resourceType ResourceType, caps TypeCapabilities) Option {
	return func(s *service) {
		s.capabilities[resourceType] = caps
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		capabilities: defaultCapabilities(),
		thumbnailer:  NewNoopThumbnailer(),
		converter:    NewNoopConverter(),
		geocoder:     NewNoopGeocoder(),
		exif:         NewNoopExifExtractor(),
	}

	for _, option := range options {
		option(s)
	}

	if s.backend == nil {
		return nil, fmt.Errorf("storage backend is required")
	}

	s.resourceIDs = NewResourceIDManager(s.backend)
	s.contentIDs = NewContentIDManager(s.backend)
	s.locks = newUserLocks()

	return s, nil
}

func (s *service) caps(resourceType ResourceType) TypeCapabilities {
	return s.capabilities[resourceType]
}
