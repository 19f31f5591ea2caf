package simplevault

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

// Resource lifecycle

func (s *service) CreateResource(ctx context.Context, user string, resourceType ResourceType, req CreateResourceRequest) (*CreateResourceResult, error) {
	if err := validateScope(user, resourceType); err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(user)
	defer unlock()

	resourceID, err := s.resourceIDs.Generate(ctx, user, resourceType)
	if err != nil {
		return nil, err
	}

	caps := s.caps(resourceType)
	contentID := 0
	var contentMeta *ContentMeta
	var exifTags map[string]interface{}

	if req.Content != nil {
		mimetype := DetectMimetype(req.Content.Mimetype, req.Content.Filename, req.Content.Data)
		if !MimeAllowed(resourceType, mimetype) {
			s.releaseNewResource(ctx, user, resourceType, resourceID, 0)
			return nil, NewValidationError("content", fmt.Sprintf("mimetype %s is not allowed for %s", mimetype, resourceType))
		}

		contentID, err = s.contentIDs.Generate(ctx, user, resourceType, resourceID)
		if err != nil {
			s.releaseNewResource(ctx, user, resourceType, resourceID, 0)
			return nil, err
		}

		cm := NewContentMeta(contentID, SanitizeFilename(req.Content.Filename), mimetype,
			hashBytes(req.Content.Data), int64(len(req.Content.Data)), nil)
		contentMeta = &cm

		if caps.AutoExif && req.AutoExif && IsImageMime(mimetype) {
			tags, err := s.exif.Extract(ctx, req.Content.Data)
			if err != nil {
				slog.Warn("exif extraction failed", "resource_id", resourceID, "error", err)
			} else if len(tags) > 0 {
				exifTags = tags
			}
		}
	}

	meta := NewResourceMeta(req.DetailMeta, contentMeta)
	if exifTags != nil {
		meta.BasicMeta.ExtraInfo = map[string]interface{}{"exif": exifTags}
	}

	rollback := func() {
		s.releaseNewResource(ctx, user, resourceType, resourceID, contentID)
		if _, err := s.backend.DeleteResource(ctx, user, resourceType, resourceID); err != nil {
			slog.Warn("rollback cleanup failed", "resource_id", resourceID, "error", err)
		}
	}

	if req.Content != nil {
		if err := s.backend.SaveContent(ctx, user, resourceType, resourceID, contentID, req.Content.Data); err != nil {
			rollback()
			return nil, fmt.Errorf("save content: %w", err)
		}
	}

	if err := s.backend.SaveMetadata(ctx, user, resourceType, resourceID, meta); err != nil {
		rollback()
		return nil, fmt.Errorf("save metadata: %w", err)
	}

	thumbnail := req.Thumbnail
	if thumbnail == nil && req.AutoThumbnail && caps.AutoThumbnail &&
		contentMeta != nil && IsImageMime(contentMeta.Mimetype) {
		thumbnail = req.Content.Data
	}
	if thumbnail != nil {
		if !IsImageMime(DetectMimetype("", "", thumbnail)) {
			rollback()
			return nil, NewValidationError("thumbnail", "thumbnail must be an image")
		}
		if err := s.saveThumbnailVariants(ctx, user, resourceType, resourceID, thumbnail); err != nil {
			rollback()
			return nil, fmt.Errorf("save thumbnail: %w", err)
		}
	}

	s.touchProfile(ctx, user, resourceType)

	return &CreateResourceResult{ResourceID: resourceID, ContentID: contentID}, nil
}

func (s *service) GetResourceMeta(ctx context.Context, user string, resourceType ResourceType, resourceID string) (*ResourceMeta, error) {
	if err := validateScope(user, resourceType); err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(user)
	defer unlock()

	return s.loadMetaRequired(ctx, user, resourceType, resourceID)
}

func (s *service) UpdateDetailMeta(ctx context.Context, user string, resourceType ResourceType, resourceID string, detail DetailMeta) error {
	if err := validateScope(user, resourceType); err != nil {
		return err
	}
	if detail == nil {
		return NewValidationError("detail_meta", "detail metadata is required")
	}
	unlock := s.locks.Lock(user)
	defer unlock()

	meta, err := s.loadMetaRequired(ctx, user, resourceType, resourceID)
	if err != nil {
		return err
	}

	live, err := s.contentIDs.List(ctx, user, resourceType, resourceID)
	if err != nil {
		return err
	}
	updated, err := UpdateResourceMeta(meta, detail, 0, nil, live)
	if err != nil {
		return err
	}
	if err := s.backend.SaveMetadata(ctx, user, resourceType, resourceID, updated); err != nil {
		return fmt.Errorf("save metadata: %w", err)
	}

	s.touchProfile(ctx, user, resourceType)
	return nil
}

func (s *service) DeleteResource(ctx context.Context, user string, resourceType ResourceType, resourceID string) error {
	if err := validateScope(user, resourceType); err != nil {
		return err
	}
	unlock := s.locks.Lock(user)
	defer unlock()

	exists, err := s.resourceIDs.Exists(ctx, user, resourceType, resourceID)
	if err != nil {
		return err
	}
	if !exists {
		return &ResourceError{ResourceID: resourceID, Op: "delete", Err: ErrResourceNotFound}
	}

	removed, err := s.backend.DeleteResource(ctx, user, resourceType, resourceID)
	if err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}

	if err := s.resourceIDs.Release(ctx, user, resourceType, resourceID); err != nil {
		slog.Warn("releasing resource id failed", "resource_id", resourceID, "error", err)
	}
	s.contentIDs.Forget(user, resourceType, resourceID)
	s.touchProfile(ctx, user, resourceType)

	if !removed {
		return &ResourceError{ResourceID: resourceID, Op: "delete", Err: ErrResourceNotFound}
	}
	return nil
}

// Content lifecycle

func (s *service) AddContent(ctx context.Context, user string, resourceType ResourceType, resourceID string, upload ContentUpload) (int, error) {
	if err := validateScope(user, resourceType); err != nil {
		return 0, err
	}
	if len(upload.Data) == 0 {
		return 0, NewValidationError("content", "content data is required")
	}
	unlock := s.locks.Lock(user)
	defer unlock()

	meta, err := s.loadMetaRequired(ctx, user, resourceType, resourceID)
	if err != nil {
		return 0, err
	}

	mimetype := DetectMimetype(upload.Mimetype, upload.Filename, upload.Data)
	if !MimeAllowed(resourceType, mimetype) {
		return 0, NewValidationError("content", fmt.Sprintf("mimetype %s is not allowed for %s", mimetype, resourceType))
	}

	hash := hashBytes(upload.Data)
	if dup := findByHash(meta, hash, 0); dup != nil {
		return 0, &DuplicateContentError{ResourceID: resourceID, ContentID: dup.ID, Hash: hash}
	}

	contentID, err := s.contentIDs.Generate(ctx, user, resourceType, resourceID)
	if err != nil {
		return 0, err
	}

	cm := NewContentMeta(contentID, SanitizeFilename(upload.Filename), mimetype, hash, int64(len(upload.Data)), nil)

	if err := s.backend.SaveContent(ctx, user, resourceType, resourceID, contentID, upload.Data); err != nil {
		s.releaseContentID(ctx, user, resourceType, resourceID, contentID)
		return 0, fmt.Errorf("save content: %w", err)
	}

	if err := s.saveContentMeta(ctx, user, resourceType, resourceID, contentID, &cm, meta); err != nil {
		s.releaseContentID(ctx, user, resourceType, resourceID, contentID)
		if derr := s.backend.DeleteContent(ctx, user, resourceType, resourceID, contentID); derr != nil {
			slog.Warn("rollback blob cleanup failed", "resource_id", resourceID, "content_id", contentID, "error", derr)
		}
		return 0, err
	}

	s.touchProfile(ctx, user, resourceType)
	return contentID, nil
}

func (s *service) UpdateContent(ctx context.Context, user string, resourceType ResourceType, resourceID string, contentID int, upload ContentUpload) error {
	if err := validateScope(user, resourceType); err != nil {
		return err
	}
	if len(upload.Data) == 0 {
		return NewValidationError("content", "content data is required")
	}
	unlock := s.locks.Lock(user)
	defer unlock()

	meta, err := s.loadMetaRequired(ctx, user, resourceType, resourceID)
	if err != nil {
		return err
	}
	if meta.Content(contentID) == nil {
		return &ResourceError{ResourceID: resourceID, Op: "update content", Err: ErrContentNotFound}
	}

	mimetype := DetectMimetype(upload.Mimetype, upload.Filename, upload.Data)
	if !MimeAllowed(resourceType, mimetype) {
		return NewValidationError("content", fmt.Sprintf("mimetype %s is not allowed for %s", mimetype, resourceType))
	}

	hash := hashBytes(upload.Data)
	if dup := findByHash(meta, hash, contentID); dup != nil {
		return &DuplicateContentError{ResourceID: resourceID, ContentID: dup.ID, Hash: hash}
	}

	cm := NewContentMeta(contentID, SanitizeFilename(upload.Filename), mimetype, hash, int64(len(upload.Data)), nil)

	if err := s.backend.SaveContent(ctx, user, resourceType, resourceID, contentID, upload.Data); err != nil {
		return fmt.Errorf("save content: %w", err)
	}
	if err := s.saveContentMeta(ctx, user, resourceType, resourceID, contentID, &cm, meta); err != nil {
		return err
	}

	s.touchProfile(ctx, user, resourceType)
	return nil
}

func (s *service) GetContent(ctx context.Context, user string, resourceType ResourceType, resourceID string, contentID int, opts *ConvertOptions) (*ContentResult, error) {
	if err := validateScope(user, resourceType); err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(user)
	defer unlock()

	meta, err := s.loadMetaRequired(ctx, user, resourceType, resourceID)
	if err != nil {
		return nil, err
	}
	entry := meta.Content(contentID)
	if entry == nil {
		return nil, &ResourceError{ResourceID: resourceID, Op: "get content", Err: ErrContentNotFound}
	}

	data, err := s.backend.LoadContent(ctx, user, resourceType, resourceID, contentID)
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	if data == nil {
		return nil, &ResourceError{ResourceID: resourceID, Op: "get content", Err: ErrContentNotFound}
	}

	mimetype := entry.Mimetype
	if opts != nil && s.caps(resourceType).Convertible {
		converted, convertedMime, err := s.converter.Convert(ctx, data, entry.Mimetype, *opts)
		if err != nil {
			return nil, err
		}
		data, mimetype = converted, convertedMime
	}

	return &ContentResult{Data: data, Mimetype: mimetype, Filename: entry.Filename}, nil
}

func (s *service) DeleteContent(ctx context.Context, user string, resourceType ResourceType, resourceID string, contentID int) error {
	if err := validateScope(user, resourceType); err != nil {
		return err
	}
	unlock := s.locks.Lock(user)
	defer unlock()

	meta, err := s.loadMetaRequired(ctx, user, resourceType, resourceID)
	if err != nil {
		return err
	}
	if meta.Content(contentID) == nil {
		return &ResourceError{ResourceID: resourceID, Op: "delete content", Err: ErrContentNotFound}
	}

	if err := s.contentIDs.Release(ctx, user, resourceType, resourceID, contentID); err != nil {
		return err
	}

	if err := s.saveContentMeta(ctx, user, resourceType, resourceID, contentID, nil, meta); err != nil {
		if rerr := s.contentIDs.Reserve(ctx, user, resourceType, resourceID, contentID); rerr != nil {
			slog.Warn("restoring content id failed", "resource_id", resourceID, "content_id", contentID, "error", rerr)
		}
		return err
	}

	if err := s.backend.DeleteContent(ctx, user, resourceType, resourceID, contentID); err != nil {
		slog.Warn("deleting content blob failed", "resource_id", resourceID, "content_id", contentID, "error", err)
	}

	s.touchProfile(ctx, user, resourceType)
	return nil
}

func (s *service) ListContents(ctx context.Context, user string, resourceType ResourceType, resourceID string) ([]ContentMeta, error) {
	if err := validateScope(user, resourceType); err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(user)
	defer unlock()

	meta, err := s.loadMetaRequired(ctx, user, resourceType, resourceID)
	if err != nil {
		return nil, err
	}
	return append([]ContentMeta(nil), meta.BasicMeta.Contents...), nil
}

func (s *service) UpdateContentExif(ctx context.Context, user string, resourceType ResourceType, resourceID string, contentID int, exif map[string]interface{}) error {
	if err := validateScope(user, resourceType); err != nil {
		return err
	}
	if !s.caps(resourceType).ExifEditable {
		return ErrUnsupportedOperation
	}
	if len(exif) == 0 {
		return NewValidationError("exif", "exif tags are required")
	}
	unlock := s.locks.Lock(user)
	defer unlock()

	meta, err := s.loadMetaRequired(ctx, user, resourceType, resourceID)
	if err != nil {
		return err
	}
	entry := meta.Content(contentID)
	if entry == nil {
		return &ResourceError{ResourceID: resourceID, Op: "update exif", Err: ErrContentNotFound}
	}

	cm := *entry
	cm.UpdatedAt = time.Now().UTC()
	cm.ExtraInfo = mergeMaps(cm.ExtraInfo, map[string]interface{}{"exif": exif})

	if meta.BasicMeta.ExtraInfo == nil {
		meta.BasicMeta.ExtraInfo = map[string]interface{}{}
	}
	if existing, ok := meta.BasicMeta.ExtraInfo["exif"].(map[string]interface{}); ok {
		meta.BasicMeta.ExtraInfo["exif"] = mergeMaps(existing, exif)
	} else {
		meta.BasicMeta.ExtraInfo["exif"] = exif
	}

	return s.saveContentMeta(ctx, user, resourceType, resourceID, contentID, &cm, meta)
}

// Listings

func (s *service) ListResources(ctx context.Context, user string, resourceType ResourceType, req ListResourcesRequest) (*ListResourcesResult, error) {
	if err := validateScope(user, resourceType); err != nil {
		return nil, err
	}
	req, err := normalizeListRequest(req)
	if err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(user)
	defer unlock()

	ids, err := s.resourceIDs.List(ctx, user, resourceType)
	if err != nil {
		return nil, err
	}

	items := make([]ResourceListItem, 0, len(ids))
	for _, id := range ids {
		meta, err := s.backend.LoadMetadata(ctx, user, resourceType, id)
		if err != nil {
			return nil, fmt.Errorf("load metadata: %w", err)
		}
		if meta == nil {
			// listed by the id manager but missing from storage; skip
			slog.Warn("resource metadata missing", "user", user, "resource_id", id)
			continue
		}
		items = append(items, ResourceListItem{
			ResourceID: id,
			BasicMeta:  meta.BasicMeta,
			DetailMeta: meta.DetailMeta,
		})
	}

	sortResources(items, req.Sort, req.Order)
	total := len(items)

	items, err = paginate(items, req)
	if err != nil {
		return nil, err
	}

	result := &ListResourcesResult{Items: items, Total: total}
	if req.Page != nil {
		result.Page = *req.Page
		result.PerPage = *req.PerPage
	}
	return result, nil
}

func (s *service) Summary(ctx context.Context, user string, resourceType ResourceType) (*SummaryResult, error) {
	if err := validateScope(user, resourceType); err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(user)
	defer unlock()

	ids, err := s.resourceIDs.List(ctx, user, resourceType)
	if err != nil {
		return nil, err
	}

	contentCount := 0
	for _, id := range ids {
		meta, err := s.backend.LoadMetadata(ctx, user, resourceType, id)
		if err != nil {
			return nil, fmt.Errorf("load metadata: %w", err)
		}
		if meta != nil && meta.BasicMeta != nil {
			contentCount += len(meta.BasicMeta.ContentIDs)
		}
	}

	return &SummaryResult{ResourceCount: len(ids), ContentCount: contentCount}, nil
}

func (s *service) ResourceIDs(ctx context.Context, user string, resourceType ResourceType) ([]string, error) {
	if err := validateScope(user, resourceType); err != nil {
		return nil, err
	}
	unlock := s.locks.Lock(user)
	defer unlock()

	return s.resourceIDs.List(ctx, user, resourceType)
}

// Thumbnails

func (s *service) GetThumbnail(ctx context.Context, user string, resourceType ResourceType, resourceID string, size ThumbnailSize) ([]byte, error) {
	if err := validateScope(user, resourceType); err != nil {
		return nil, err
	}
	if !size.IsValid() {
		return nil, NewValidationError("size", fmt.Sprintf("unknown thumbnail size %q", size))
	}
	unlock := s.locks.Lock(user)
	defer unlock()

	if err := s.requireResource(ctx, user, resourceType, resourceID); err != nil {
		return nil, err
	}

	if size != ThumbnailOriginal {
		exists, err := s.backend.ThumbnailExists(ctx, user, resourceType, resourceID, size)
		if err != nil {
			return nil, fmt.Errorf("check thumbnail: %w", err)
		}
		if exists {
			data, err := s.backend.LoadThumbnail(ctx, user, resourceType, resourceID, size)
			if err != nil {
				return nil, fmt.Errorf("load thumbnail: %w", err)
			}
			if data != nil {
				return data, nil
			}
		}
	}

	original, err := s.backend.LoadThumbnail(ctx, user, resourceType, resourceID, ThumbnailOriginal)
	if err != nil {
		return nil, fmt.Errorf("load thumbnail: %w", err)
	}
	if original == nil {
		return nil, &ResourceError{ResourceID: resourceID, Op: "get thumbnail", Err: ErrThumbnailNotFound}
	}
	if size == ThumbnailOriginal {
		return original, nil
	}

	width, height, _ := size.Dimensions()
	resized, err := s.thumbnailer.Resize(ctx, original, width, height)
	if err != nil {
		return nil, err
	}
	if err := s.backend.SaveThumbnail(ctx, user, resourceType, resourceID, size, resized); err != nil {
		slog.Warn("caching resized thumbnail failed", "resource_id", resourceID, "size", size, "error", err)
	}
	return resized, nil
}

func (s *service) UpdateThumbnail(ctx context.Context, user string, resourceType ResourceType, resourceID string, data []byte, mimetype string) error {
	if err := validateScope(user, resourceType); err != nil {
		return err
	}
	if len(data) == 0 {
		return NewValidationError("thumbnail", "thumbnail data is required")
	}
	if !IsImageMime(DetectMimetype(mimetype, "", data)) {
		return NewValidationError("thumbnail", "thumbnail must be an image")
	}
	unlock := s.locks.Lock(user)
	defer unlock()

	if err := s.requireResource(ctx, user, resourceType, resourceID); err != nil {
		return err
	}
	if err := s.saveThumbnailVariants(ctx, user, resourceType, resourceID, data); err != nil {
		return fmt.Errorf("save thumbnail: %w", err)
	}

	s.touchProfile(ctx, user, resourceType)
	return nil
}

func (s *service) RotateThumbnail(ctx context.Context, user string, resourceType ResourceType, resourceID string, angle int) error {
	if err := validateScope(user, resourceType); err != nil {
		return err
	}
	unlock := s.locks.Lock(user)
	defer unlock()

	if err := s.requireResource(ctx, user, resourceType, resourceID); err != nil {
		return err
	}

	original, err := s.backend.LoadThumbnail(ctx, user, resourceType, resourceID, ThumbnailOriginal)
	if err != nil {
		return fmt.Errorf("load thumbnail: %w", err)
	}
	if original == nil {
		return &ResourceError{ResourceID: resourceID, Op: "rotate thumbnail", Err: ErrThumbnailNotFound}
	}

	rotated, err := s.thumbnailer.Rotate(ctx, original, angle)
	if err != nil {
		return err
	}
	if err := s.saveThumbnailVariants(ctx, user, resourceType, resourceID, rotated); err != nil {
		return fmt.Errorf("save thumbnail: %w", err)
	}

	s.touchProfile(ctx, user, resourceType)
	return nil
}

// ResourceAddress resolves the resource's GPS EXIF coordinates to an address.
func (s *service) ResourceAddress(ctx context.Context, user string, resourceType ResourceType, resourceID string) (string, error) {
	if err := validateScope(user, resourceType); err != nil {
		return "", err
	}
	if !s.caps(resourceType).Geocodable {
		return "", ErrUnsupportedOperation
	}
	unlock := s.locks.Lock(user)
	defer unlock()

	meta, err := s.loadMetaRequired(ctx, user, resourceType, resourceID)
	if err != nil {
		return "", err
	}

	exif, _ := meta.BasicMeta.ExtraInfo["exif"].(map[string]interface{})
	lat, latOK := toFloat(exif["GPSLatitude"])
	lon, lonOK := toFloat(exif["GPSLongitude"])
	if !latOK || !lonOK {
		return "", NewValidationError("exif", "resource has no GPS coordinates")
	}

	return s.geocoder.ReverseGeocode(ctx, lat, lon)
}

// Helpers

func validateScope(user string, resourceType ResourceType) error {
	if user == "" {
		return NewValidationError("user", "user id is required")
	}
	if !resourceType.IsValid() {
		return NewValidationError("resource_type", fmt.Sprintf("unknown resource type %q", resourceType))
	}
	return nil
}

// loadMetaRequired loads a resource's metadata, mapping absence (of the id or
// the record) to ErrResourceNotFound.
func (s *service) loadMetaRequired(ctx context.Context, user string, resourceType ResourceType, resourceID string) (*ResourceMeta, error) {
	exists, err := s.resourceIDs.Exists(ctx, user, resourceType, resourceID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &ResourceError{ResourceID: resourceID, Op: "load", Err: ErrResourceNotFound}
	}

	meta, err := s.backend.LoadMetadata(ctx, user, resourceType, resourceID)
	if err != nil {
		return nil, fmt.Errorf("load metadata: %w", err)
	}
	if meta == nil || meta.BasicMeta == nil {
		return nil, &ResourceError{ResourceID: resourceID, Op: "load", Err: ErrResourceNotFound}
	}
	return meta, nil
}

func (s *service) requireResource(ctx context.Context, user string, resourceType ResourceType, resourceID string) error {
	exists, err := s.resourceIDs.Exists(ctx, user, resourceType, resourceID)
	if err != nil {
		return err
	}
	if !exists {
		return &ResourceError{ResourceID: resourceID, Op: "load", Err: ErrResourceNotFound}
	}
	return nil
}

// saveContentMeta applies a content mutation (replace or remove) to the
// resource record and persists it.
func (s *service) saveContentMeta(ctx context.Context, user string, resourceType ResourceType, resourceID string, contentID int, cm *ContentMeta, meta *ResourceMeta) error {
	live, err := s.contentIDs.List(ctx, user, resourceType, resourceID)
	if err != nil {
		return err
	}
	updated, err := UpdateResourceMeta(meta, nil, contentID, cm, live)
	if err != nil {
		return err
	}
	if err := s.backend.SaveMetadata(ctx, user, resourceType, resourceID, updated); err != nil {
		return fmt.Errorf("save metadata: %w", err)
	}
	return nil
}

// saveThumbnailVariants stores the original thumbnail and refreshes every
// resized variant the thumbnailer can produce.
func (s *service) saveThumbnailVariants(ctx context.Context, user string, resourceType ResourceType, resourceID string, data []byte) error {
	if err := s.backend.SaveThumbnail(ctx, user, resourceType, resourceID, ThumbnailOriginal, data); err != nil {
		return err
	}
	for _, size := range []ThumbnailSize{ThumbnailSmall, ThumbnailMedium, ThumbnailLarge} {
		width, height, _ := size.Dimensions()
		resized, err := s.thumbnailer.Resize(ctx, data, width, height)
		if err != nil {
			slog.Warn("resizing thumbnail failed", "resource_id", resourceID, "size", size, "error", err)
			continue
		}
		if err := s.backend.SaveThumbnail(ctx, user, resourceType, resourceID, size, resized); err != nil {
			return err
		}
	}
	return nil
}

// releaseContentID rolls back a content id allocation after a failed save.
func (s *service) releaseContentID(ctx context.Context, user string, resourceType ResourceType, resourceID string, contentID int) {
	if err := s.contentIDs.Release(ctx, user, resourceType, resourceID, contentID); err != nil {
		slog.Warn("releasing content id failed", "resource_id", resourceID, "content_id", contentID, "error", err)
	}
}

// releaseNewResource rolls back the ids allocated by CreateResource. Only a
// resource id that was allocated in the failing operation may be released
// here; for mutations of an existing resource the resource id must stay
// visible, so those paths release the content id alone.
func (s *service) releaseNewResource(ctx context.Context, user string, resourceType ResourceType, resourceID string, contentID int) {
	if contentID > 0 {
		s.releaseContentID(ctx, user, resourceType, resourceID, contentID)
	}
	if err := s.resourceIDs.Release(ctx, user, resourceType, resourceID); err != nil {
		slog.Warn("releasing resource id failed", "resource_id", resourceID, "error", err)
	}
}

// touchProfile bumps the user's per-type mutation timestamp. The profile is
// advisory, so failures only log.
func (s *service) touchProfile(ctx context.Context, user string, resourceType ResourceType) {
	profile, err := s.backend.LoadUserProfile(ctx, user)
	if err != nil {
		slog.Warn("loading user profile failed", "user", user, "error", err)
		return
	}
	if profile == nil {
		profile = &UserProfile{}
	}
	profile.Touch(resourceType, time.Now().UTC())
	if err := s.backend.SaveUserProfile(ctx, user, profile); err != nil {
		slog.Warn("saving user profile failed", "user", user, "error", err)
	}
}

func findByHash(meta *ResourceMeta, hash string, excludeID int) *ContentMeta {
	if meta == nil || meta.BasicMeta == nil {
		return nil
	}
	for i := range meta.BasicMeta.Contents {
		c := &meta.BasicMeta.Contents[i]
		if c.ID != excludeID && c.Hash == hash {
			return c
		}
	}
	return nil
}

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func mergeMaps(dst, src map[string]interface{}) map[string]interface{} {
	if dst == nil {
		dst = make(map[string]interface{}, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}
