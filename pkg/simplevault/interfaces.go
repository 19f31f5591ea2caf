package simplevault

import (
	"context"
)

// StorageBackend defines the persistence contract for resource metadata,
// content blobs, thumbnails and user profiles. Keys are always scoped by
// (user, resource type) and, where relevant, resource id and content id.
//
// Absence is not an error: every Load* method returns (nil, nil) when the
// requested record does not exist. I/O failures surface as *StorageError.
type StorageBackend interface {
	// Name returns the backend identifier used in error reporting.
	Name() string

	// ListResourceIDs enumerates every resource id with persisted metadata.
	// Safe to call concurrently with writes; callers treat the result as a
	// snapshot.
	ListResourceIDs(ctx context.Context, user string, resourceType ResourceType) ([]string, error)

	// Metadata operations.
	LoadMetadata(ctx context.Context, user string, resourceType ResourceType, resourceID string) (*ResourceMeta, error)
	SaveMetadata(ctx context.Context, user string, resourceType ResourceType, resourceID string, meta *ResourceMeta) error
	DeleteMetadata(ctx context.Context, user string, resourceType ResourceType, resourceID string) error

	// Content blob operations.
	LoadContent(ctx context.Context, user string, resourceType ResourceType, resourceID string, contentID int) ([]byte, error)
	SaveContent(ctx context.Context, user string, resourceType ResourceType, resourceID string, contentID int, data []byte) error
	DeleteContent(ctx context.Context, user string, resourceType ResourceType, resourceID string, contentID int) error

	// Thumbnail operations.
	LoadThumbnail(ctx context.Context, user string, resourceType ResourceType, resourceID string, size ThumbnailSize) ([]byte, error)
	SaveThumbnail(ctx context.Context, user string, resourceType ResourceType, resourceID string, size ThumbnailSize, data []byte) error
	ThumbnailExists(ctx context.Context, user string, resourceType ResourceType, resourceID string, size ThumbnailSize) (bool, error)

	// DeleteResource removes the entire resource tree (metadata, contents,
	// thumbnails) as a unit. It reports whether anything was removed.
	DeleteResource(ctx context.Context, user string, resourceType ResourceType, resourceID string) (bool, error)

	// User profile operations.
	LoadUserProfile(ctx context.Context, user string) (*UserProfile, error)
	SaveUserProfile(ctx context.Context, user string, profile *UserProfile) error
}

// Thumbnailer produces thumbnail pixel data from image bytes. Implementations
// wrap an image codec; the service never inspects pixels itself.
type Thumbnailer interface {
	// Resize scales data to fit within the given bounding box.
	Resize(ctx context.Context, data []byte, width, height int) ([]byte, error)

	// Rotate rotates data clockwise by the given angle in degrees.
	Rotate(ctx context.Context, data []byte, angle int) ([]byte, error)
}

// ConvertOptions carries the parameters of an on-the-fly content conversion.
type ConvertOptions struct {
	Format   string
	Width    int
	Height   int
	Quality  int
	Fit      string
	KeepExif bool
}

// Converter transforms content bytes between formats. It is a pure function
// over bytes; the service supplies source and target MIME types.
type Converter interface {
	Convert(ctx context.Context, data []byte, sourceMime string, opts ConvertOptions) ([]byte, string, error)
}

// Geocoder resolves GPS coordinates to a human-readable address.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (string, error)
}

// ExifExtractor reads EXIF tags from image bytes.
type ExifExtractor interface {
	Extract(ctx context.Context, data []byte) (map[string]interface{}, error)
}

// Service is the core orchestrator of the vault: resource lifecycle, content
// lifecycle, thumbnails and listings, all scoped to an authenticated user.
// Every operation serializes against the per-user lock.
type Service interface {
	// Resource lifecycle.
	CreateResource(ctx context.Context, user string, resourceType ResourceType, req CreateResourceRequest) (*CreateResourceResult, error)
	GetResourceMeta(ctx context.Context, user string, resourceType ResourceType, resourceID string) (*ResourceMeta, error)
	UpdateDetailMeta(ctx context.Context, user string, resourceType ResourceType, resourceID string, detail DetailMeta) error
	DeleteResource(ctx context.Context, user string, resourceType ResourceType, resourceID string) error

	// Content lifecycle.
	AddContent(ctx context.Context, user string, resourceType ResourceType, resourceID string, upload ContentUpload) (int, error)
	UpdateContent(ctx context.Context, user string, resourceType ResourceType, resourceID string, contentID int, upload ContentUpload) error
	GetContent(ctx context.Context, user string, resourceType ResourceType, resourceID string, contentID int, opts *ConvertOptions) (*ContentResult, error)
	DeleteContent(ctx context.Context, user string, resourceType ResourceType, resourceID string, contentID int) error
	ListContents(ctx context.Context, user string, resourceType ResourceType, resourceID string) ([]ContentMeta, error)
	UpdateContentExif(ctx context.Context, user string, resourceType ResourceType, resourceID string, contentID int, exif map[string]interface{}) error

	// Listings.
	ListResources(ctx context.Context, user string, resourceType ResourceType, req ListResourcesRequest) (*ListResourcesResult, error)
	Summary(ctx context.Context, user string, resourceType ResourceType) (*SummaryResult, error)
	ResourceIDs(ctx context.Context, user string, resourceType ResourceType) ([]string, error)

	// Thumbnails.
	GetThumbnail(ctx context.Context, user string, resourceType ResourceType, resourceID string, size ThumbnailSize) ([]byte, error)
	UpdateThumbnail(ctx context.Context, user string, resourceType ResourceType, resourceID string, data []byte, mimetype string) error
	RotateThumbnail(ctx context.Context, user string, resourceType ResourceType, resourceID string, angle int) error

	// ResourceAddress reverse-geocodes the resource's embedded GPS EXIF.
	ResourceAddress(ctx context.Context, user string, resourceType ResourceType, resourceID string) (string, error)
}
