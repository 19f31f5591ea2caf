package simplevault

// ContentUpload carries the bytes and declared identity of one uploaded file.
type ContentUpload struct {
	Filename string
	Mimetype string
	Data     []byte
}

// CreateResourceRequest contains parameters for creating a resource. Detail
// metadata, content and thumbnail are all optional; a resource may be created
// from any combination of them.
type CreateResourceRequest struct {
	DetailMeta DetailMeta
	Content    *ContentUpload
	Thumbnail  []byte

	// AutoThumbnail asks the service to derive a thumbnail from the uploaded
	// content where the resource type supports it.
	AutoThumbnail bool

	// AutoExif asks the service to extract EXIF tags from the uploaded
	// content into basic_meta.extra_info where the resource type supports it.
	AutoExif bool
}

// CreateResourceResult reports the identifiers allocated for a new resource.
// ContentID is zero when the resource was created without content.
type CreateResourceResult struct {
	ResourceID string
	ContentID  int
}

// ContentResult carries fetched content bytes with their identity.
type ContentResult struct {
	Data     []byte
	Mimetype string
	Filename string
}

// Sort keys accepted by ListResources.
const (
	SortByID            = "id"
	SortByCreatedAt     = "created_at"
	SortByUpdatedAt     = "updated_at"
	SortByFilename      = "filename"
	SortBySize          = "size"
	SortBySortingString = "sorting_string"
	SortBySortingDate   = "sorting_date"
)

// Sort orders accepted by ListResources.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// ListResourcesRequest contains parameters for listing resources. Page and
// PerPage must be supplied together; when both are nil the full list is
// returned.
type ListResourcesRequest struct {
	Page    *int
	PerPage *int
	Order   string // "asc" or "desc"; default desc
	Sort    string // one of the SortBy* keys; default id
}

// ResourceListItem is one entry of a resource listing.
type ResourceListItem struct {
	ResourceID string     `json:"resource_id"`
	BasicMeta  *BasicMeta `json:"basic_meta"`
	DetailMeta DetailMeta `json:"detail_meta,omitempty"`
}

// ListResourcesResult is the outcome of a listing, echoing the effective
// pagination. Page and PerPage are zero when pagination was not requested.
type ListResourcesResult struct {
	Items   []ResourceListItem `json:"items"`
	Total   int                `json:"total"`
	Page    int                `json:"page,omitempty"`
	PerPage int                `json:"per_page,omitempty"`
}

// SummaryResult aggregates a user's holdings for one resource type.
type SummaryResult struct {
	ResourceCount int `json:"resource_count"`
	ContentCount  int `json:"content_count"`
}
