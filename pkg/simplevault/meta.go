package simplevault

import (
	"sort"
	"time"
)

// DefaultFilename is used for content uploaded without a filename.
const DefaultFilename = "Unknown"

// NewContentMeta builds the metadata entry for one uploaded content item.
// Both timestamps are set to now.
func NewContentMeta(id int, filename, mimetype, hash string, size int64, extra map[string]interface{}) ContentMeta {
	if filename == "" {
		filename = DefaultFilename
	}
	now := time.Now().UTC()
	return ContentMeta{
		ID:        id,
		Filename:  filename,
		Mimetype:  mimetype,
		Hash:      hash,
		Size:      size,
		CreatedAt: now,
		UpdatedAt: now,
		ExtraInfo: extra,
	}
}

// NewResourceMeta builds a fresh resource record with created_at == updated_at
// == now and empty relation lists. When contentMeta is non-nil it seeds the
// content list with that single entry.
func NewResourceMeta(detail DetailMeta, contentMeta *ContentMeta) *ResourceMeta {
	now := time.Now().UTC()
	basic := &BasicMeta{
		CreatedAt:  now,
		UpdatedAt:  now,
		ContentIDs: []int{},
		Contents:   []ContentMeta{},
	}
	if contentMeta != nil {
		basic.ContentIDs = []int{contentMeta.ID}
		basic.Contents = []ContentMeta{*contentMeta}
	}
	return &ResourceMeta{
		BasicMeta:  basic,
		DetailMeta: detail,
	}
}

// UpdateResourceMeta applies one mutation to an existing record and returns
// the updated copy. It fails with ErrResourceNotFound when the record has no
// basic_meta.
//
// When contentID > 0 the entry with that id is removed and, if contentMeta is
// non-nil, the new entry is appended (replace-or-remove semantics: a nil
// contentMeta deletes the entry). A non-nil detail is merged shallowly into
// the existing detail_meta. content_ids is recomputed from liveIDs, the
// authoritative allocation state, so metadata self-heals against drift.
// updated_at always advances to now.
func UpdateResourceMeta(existing *ResourceMeta, detail DetailMeta, contentID int, contentMeta *ContentMeta, liveIDs []int) (*ResourceMeta, error) {
	if existing == nil || existing.BasicMeta == nil {
		return nil, ErrResourceNotFound
	}

	updated := cloneResourceMeta(existing)
	basic := updated.BasicMeta

	if contentID > 0 {
		kept := basic.Contents[:0:0]
		for _, c := range basic.Contents {
			if c.ID != contentID {
				kept = append(kept, c)
			}
		}
		if contentMeta != nil {
			kept = append(kept, *contentMeta)
		}
		basic.Contents = kept
	}

	if detail != nil {
		if updated.DetailMeta == nil {
			updated.DetailMeta = DetailMeta{}
		}
		for k, v := range detail {
			updated.DetailMeta[k] = v
		}
	}

	ids := append([]int(nil), liveIDs...)
	sort.Ints(ids)
	if ids == nil {
		ids = []int{}
	}
	basic.ContentIDs = ids
	basic.UpdatedAt = time.Now().UTC()

	return updated, nil
}

func cloneResourceMeta(meta *ResourceMeta) *ResourceMeta {
	basic := *meta.BasicMeta
	basic.ContentIDs = append([]int(nil), meta.BasicMeta.ContentIDs...)
	basic.Contents = append([]ContentMeta(nil), meta.BasicMeta.Contents...)
	basic.ChildResourceIDs = append([]string(nil), meta.BasicMeta.ChildResourceIDs...)
	basic.ParentResourceIDs = append([]string(nil), meta.BasicMeta.ParentResourceIDs...)
	if meta.BasicMeta.ExtraInfo != nil {
		basic.ExtraInfo = make(map[string]interface{}, len(meta.BasicMeta.ExtraInfo))
		for k, v := range meta.BasicMeta.ExtraInfo {
			basic.ExtraInfo[k] = v
		}
	}

	detail := meta.DetailMeta
	if detail != nil {
		detail = make(DetailMeta, len(meta.DetailMeta))
		for k, v := range meta.DetailMeta {
			detail[k] = v
		}
	}

	return &ResourceMeta{BasicMeta: &basic, DetailMeta: detail}
}
