package simplevault

import (
	"time"
)

// ResourceType is the domain type for the kinds of resources a user can store.
type ResourceType string

// Resource type constants (typed).
const (
	ResourceTypeBooks     ResourceType = "books"
	ResourceTypeVideos    ResourceType = "videos"
	ResourceTypeMusic     ResourceType = "music"
	ResourceTypeDocuments ResourceType = "documents"
	ResourceTypeImages    ResourceType = "images"
)

// ResourceTypes returns all known resource types.
func ResourceTypes() []ResourceType {
	return []ResourceType{
		ResourceTypeBooks,
		ResourceTypeVideos,
		ResourceTypeMusic,
		ResourceTypeDocuments,
		ResourceTypeImages,
	}
}

// IsValid reports whether t is a known resource type.
func (t ResourceType) IsValid() bool {
	switch t {
	case ResourceTypeBooks, ResourceTypeVideos, ResourceTypeMusic,
		ResourceTypeDocuments, ResourceTypeImages:
		return true
	}
	return false
}

// ThumbnailSize is the domain type for thumbnail variants.
type ThumbnailSize string

// Thumbnail size constants (typed).
const (
	ThumbnailOriginal ThumbnailSize = "original"
	ThumbnailSmall    ThumbnailSize = "small"
	ThumbnailMedium   ThumbnailSize = "medium"
	ThumbnailLarge    ThumbnailSize = "large"
)

// IsValid reports whether s is a known thumbnail size.
func (s ThumbnailSize) IsValid() bool {
	switch s {
	case ThumbnailOriginal, ThumbnailSmall, ThumbnailMedium, ThumbnailLarge:
		return true
	}
	return false
}

// thumbnailDimensions maps resized variants to their bounding box (width, height).
var thumbnailDimensions = map[ThumbnailSize][2]int{
	ThumbnailSmall:  {100, 100},
	ThumbnailMedium: {150, 150},
	ThumbnailLarge:  {300, 300},
}

// Dimensions returns the bounding box for a resized variant. The original
// variant has no bounding box and reports ok == false.
func (s ThumbnailSize) Dimensions() (width, height int, ok bool) {
	dims, ok := thumbnailDimensions[s]
	if !ok {
		return 0, 0, false
	}
	return dims[0], dims[1], true
}

// DetailMeta is the user-owned free-form metadata of a resource. Updates are
// merged shallowly, key by key.
type DetailMeta map[string]interface{}

// ContentMeta describes one uploaded binary variant within a resource.
type ContentMeta struct {
	ID        int                    `json:"id"`
	Filename  string                 `json:"filename"`
	Mimetype  string                 `json:"mimetype"`
	Hash      string                 `json:"hash"`
	Size      int64                  `json:"size"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
	ExtraInfo map[string]interface{} `json:"extra_info,omitempty"`
}

// BasicMeta is the system-owned metadata of a resource. It is never edited
// directly by users; every field is maintained by the service.
type BasicMeta struct {
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
	ContentIDs        []int                  `json:"content_ids"`
	Contents          []ContentMeta          `json:"contents"`
	ExtraInfo         map[string]interface{} `json:"extra_info,omitempty"`
	ChildResourceIDs  []string               `json:"child_resource_ids,omitempty"`
	ParentResourceIDs []string               `json:"parent_resource_ids,omitempty"`
}

// ResourceMeta is the durable record for one resource.
type ResourceMeta struct {
	BasicMeta  *BasicMeta `json:"basic_meta"`
	DetailMeta DetailMeta `json:"detail_meta,omitempty"`
}

// Content returns the content entry with the given id, or nil.
func (m *ResourceMeta) Content(contentID int) *ContentMeta {
	if m == nil || m.BasicMeta == nil {
		return nil
	}
	for i := range m.BasicMeta.Contents {
		if m.BasicMeta.Contents[i].ID == contentID {
			return &m.BasicMeta.Contents[i]
		}
	}
	return nil
}

// UserProfile is the per-user record kept alongside the user's resources. The
// Resources map tracks the last mutation time per resource type.
type UserProfile struct {
	Resources map[ResourceType]time.Time `json:"resources"`
	ExtraInfo map[string]interface{}     `json:"extra_info,omitempty"`
}

// Touch records a mutation of the given resource type at time now.
func (p *UserProfile) Touch(resourceType ResourceType, now time.Time) {
	if p.Resources == nil {
		p.Resources = make(map[ResourceType]time.Time)
	}
	p.Resources[resourceType] = now
}
