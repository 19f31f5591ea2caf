package simplevault

// TypeCapabilities declares what a resource type can do beyond plain
// upload/download. The per-type behavior of the vault is this capability set
// plus the collaborators configured on the service; there is no per-type
// subclassing.
type TypeCapabilities struct {
	// AutoThumbnail allows deriving a thumbnail from uploaded content.
	AutoThumbnail bool

	// AutoExif allows extracting EXIF tags from uploaded content into
	// basic_meta.extra_info.
	AutoExif bool

	// Convertible allows on-the-fly format conversion on content fetch.
	Convertible bool

	// Geocodable allows resolving an address from embedded GPS EXIF.
	Geocodable bool

	// ExifEditable allows patching EXIF tags on stored content.
	ExifEditable bool
}

// defaultCapabilities mirrors the behavior matrix of the five built-in
// resource types: only images carry the EXIF-driven features, while books,
// documents, music and videos are convertible containers.
func defaultCapabilities() map[ResourceType]TypeCapabilities {
	return map[ResourceType]TypeCapabilities{
		ResourceTypeBooks:     {Convertible: true},
		ResourceTypeDocuments: {Convertible: true},
		ResourceTypeMusic:     {Convertible: true},
		ResourceTypeVideos:    {Convertible: true},
		ResourceTypeImages: {
			AutoThumbnail: true,
			AutoExif:      true,
			Convertible:   true,
			Geocodable:    true,
			ExifEditable:  true,
		},
	}
}
