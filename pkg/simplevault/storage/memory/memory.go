// Package memory provides an in-memory storage backend for testing and
// development.
package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/tendant/simple-vault/pkg/simplevault"
)

const backendName = "memory"

type resourceKey struct {
	user         string
	resourceType simplevault.ResourceType
	resourceID   string
}

type contentKey struct {
	resourceKey
	contentID int
}

type thumbnailKey struct {
	resourceKey
	size simplevault.ThumbnailSize
}

// Backend is an in-memory implementation of simplevault.StorageBackend.
// Records are stored as serialized JSON so callers always get copies.
type Backend struct {
	mu         sync.RWMutex
	metadata   map[resourceKey][]byte
	contents   map[contentKey][]byte
	thumbnails map[thumbnailKey][]byte
	profiles   map[string][]byte
}

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{
		metadata:   make(map[resourceKey][]byte),
		contents:   make(map[contentKey][]byte),
		thumbnails: make(map[thumbnailKey][]byte),
		profiles:   make(map[string][]byte),
	}
}

func (b *Backend) Name() string { return backendName }

func (b *Backend) ListResourceIDs(ctx context.Context, user string, resourceType simplevault.ResourceType) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var ids []string
	for key := range b.metadata {
		if key.user == user && key.resourceType == resourceType {
			ids = append(ids, key.resourceID)
		}
	}
	return ids, nil
}

func (b *Backend) LoadMetadata(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string) (*simplevault.ResourceMeta, error) {
	b.mu.RLock()
	raw, ok := b.metadata[resourceKey{user, resourceType, resourceID}]
	b.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	var meta simplevault.ResourceMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, b.storageErr("load_metadata", resourceID, err)
	}
	return &meta, nil
}

func (b *Backend) SaveMetadata(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string, meta *simplevault.ResourceMeta) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return b.storageErr("save_metadata", resourceID, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.metadata[resourceKey{user, resourceType, resourceID}] = raw
	return nil
}

func (b *Backend) DeleteMetadata(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.metadata, resourceKey{user, resourceType, resourceID})
	return nil
}

func (b *Backend) LoadContent(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string, contentID int) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, ok := b.contents[contentKey{resourceKey{user, resourceType, resourceID}, contentID}]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), data...), nil
}

func (b *Backend) SaveContent(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string, contentID int, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.contents[contentKey{resourceKey{user, resourceType, resourceID}, contentID}] = append([]byte(nil), data...)
	return nil
}

func (b *Backend) DeleteContent(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string, contentID int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.contents, contentKey{resourceKey{user, resourceType, resourceID}, contentID})
	return nil
}

func (b *Backend) LoadThumbnail(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string, size simplevault.ThumbnailSize) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, ok := b.thumbnails[thumbnailKey{resourceKey{user, resourceType, resourceID}, size}]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), data...), nil
}

func (b *Backend) SaveThumbnail(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string, size simplevault.ThumbnailSize, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.thumbnails[thumbnailKey{resourceKey{user, resourceType, resourceID}, size}] = append([]byte(nil), data...)
	return nil
}

func (b *Backend) ThumbnailExists(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string, size simplevault.ThumbnailSize) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, ok := b.thumbnails[thumbnailKey{resourceKey{user, resourceType, resourceID}, size}]
	return ok, nil
}

func (b *Backend) DeleteResource(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string) (bool, error) {
	key := resourceKey{user, resourceType, resourceID}

	b.mu.Lock()
	defer b.mu.Unlock()

	removed := false
	if _, ok := b.metadata[key]; ok {
		delete(b.metadata, key)
		removed = true
	}
	for ck := range b.contents {
		if ck.resourceKey == key {
			delete(b.contents, ck)
			removed = true
		}
	}
	for tk := range b.thumbnails {
		if tk.resourceKey == key {
			delete(b.thumbnails, tk)
			removed = true
		}
	}
	return removed, nil
}

func (b *Backend) LoadUserProfile(ctx context.Context, user string) (*simplevault.UserProfile, error) {
	b.mu.RLock()
	raw, ok := b.profiles[user]
	b.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	var profile simplevault.UserProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, b.storageErr("load_user_profile", user, err)
	}
	return &profile, nil
}

func (b *Backend) SaveUserProfile(ctx context.Context, user string, profile *simplevault.UserProfile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return b.storageErr("save_user_profile", user, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.profiles[user] = raw
	return nil
}

func (b *Backend) storageErr(op, key string, err error) error {
	return &simplevault.StorageError{
		Backend: backendName,
		Key:     key,
		Op:      op,
		Err:     err,
	}
}
