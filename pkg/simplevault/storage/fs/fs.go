// Package fs provides a filesystem storage backend using a sharded per-user
// directory layout.
package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/tendant/simple-vault/pkg/simplevault"
)

const (
	backendName  = "fs"
	metadataFile = "metadata.json"
)

// Backend is a filesystem implementation of simplevault.StorageBackend.
//
// Layout under the base directory:
//
//	<user>/metadata.json                                  user profile
//	<user>/<type>/<shard>/<resource_id>/metadata.json     resource record
//	<user>/<type>/<shard>/<resource_id>/content_<id>      content blob
//	<user>/<type>/<shard>/<resource_id>/thumbnail_<size>.webp
//
// The shard directory is the last two characters of the resource id, keeping
// per-directory entry counts bounded.
type Backend struct {
	baseDir string
}

// Config options for the filesystem backend
type Config struct {
	BaseDir string // Base directory for storing files
}

// New creates a new filesystem storage backend
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}
	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &Backend{baseDir: config.BaseDir}, nil
}

func (b *Backend) Name() string { return backendName }

func shard(resourceID string) string {
	if len(resourceID) < 2 {
		return resourceID
	}
	return resourceID[len(resourceID)-2:]
}

func (b *Backend) resourceDir(user string, resourceType simplevault.ResourceType, resourceID string) string {
	return filepath.Join(b.baseDir, user, string(resourceType), shard(resourceID), resourceID)
}

func (b *Backend) ListResourceIDs(ctx context.Context, user string, resourceType simplevault.ResourceType) ([]string, error) {
	typeDir := filepath.Join(b.baseDir, user, string(resourceType))

	shards, err := os.ReadDir(typeDir)
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, b.storageErr("list_resource_ids", typeDir, err)
	}

	var ids []string
	for _, shardEntry := range shards {
		if !shardEntry.IsDir() {
			continue
		}
		shardDir := filepath.Join(typeDir, shardEntry.Name())
		resources, err := os.ReadDir(shardDir)
		if err != nil {
			return nil, b.storageErr("list_resource_ids", shardDir, err)
		}
		for _, res := range resources {
			if !res.IsDir() {
				continue
			}
			// only directories holding a metadata file count as resources
			if _, err := os.Stat(filepath.Join(shardDir, res.Name(), metadataFile)); err == nil {
				ids = append(ids, res.Name())
			}
		}
	}
	return ids, nil
}

func (b *Backend) LoadMetadata(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string) (*simplevault.ResourceMeta, error) {
	path := filepath.Join(b.resourceDir(user, resourceType, resourceID), metadataFile)

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, b.storageErr("load_metadata", path, err)
	}

	var meta simplevault.ResourceMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, b.storageErr("load_metadata", path, err)
	}
	return &meta, nil
}

func (b *Backend) SaveMetadata(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string, meta *simplevault.ResourceMeta) error {
	raw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return b.storageErr("save_metadata", resourceID, err)
	}
	path := filepath.Join(b.resourceDir(user, resourceType, resourceID), metadataFile)
	if err := b.writeFile(path, raw); err != nil {
		return b.storageErr("save_metadata", path, err)
	}
	return nil
}

func (b *Backend) DeleteMetadata(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string) error {
	path := filepath.Join(b.resourceDir(user, resourceType, resourceID), metadataFile)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return b.storageErr("delete_metadata", path, err)
	}
	return nil
}

func contentFile(contentID int) string {
	return fmt.Sprintf("content_%d", contentID)
}

func thumbnailFile(size simplevault.ThumbnailSize) string {
	return fmt.Sprintf("thumbnail_%s.webp", size)
}

func (b *Backend) LoadContent(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string, contentID int) ([]byte, error) {
	path := filepath.Join(b.resourceDir(user, resourceType, resourceID), contentFile(contentID))
	return b.readFile("load_content", path)
}

func (b *Backend) SaveContent(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string, contentID int, data []byte) error {
	path := filepath.Join(b.resourceDir(user, resourceType, resourceID), contentFile(contentID))
	if err := b.writeFile(path, data); err != nil {
		return b.storageErr("save_content", path, err)
	}
	return nil
}

func (b *Backend) DeleteContent(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string, contentID int) error {
	path := filepath.Join(b.resourceDir(user, resourceType, resourceID), contentFile(contentID))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return b.storageErr("delete_content", path, err)
	}
	return nil
}

func (b *Backend) LoadThumbnail(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string, size simplevault.ThumbnailSize) ([]byte, error) {
	path := filepath.Join(b.resourceDir(user, resourceType, resourceID), thumbnailFile(size))
	return b.readFile("load_thumbnail", path)
}

func (b *Backend) SaveThumbnail(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string, size simplevault.ThumbnailSize, data []byte) error {
	path := filepath.Join(b.resourceDir(user, resourceType, resourceID), thumbnailFile(size))
	if err := b.writeFile(path, data); err != nil {
		return b.storageErr("save_thumbnail", path, err)
	}
	return nil
}

func (b *Backend) ThumbnailExists(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string, size simplevault.ThumbnailSize) (bool, error) {
	path := filepath.Join(b.resourceDir(user, resourceType, resourceID), thumbnailFile(size))
	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	} else if err != nil {
		return false, b.storageErr("thumbnail_exists", path, err)
	}
	return true, nil
}

func (b *Backend) DeleteResource(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string) (bool, error) {
	dir := b.resourceDir(user, resourceType, resourceID)

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return false, nil
	} else if err != nil {
		return false, b.storageErr("delete_resource", dir, err)
	}

	if err := os.RemoveAll(dir); err != nil {
		return false, b.storageErr("delete_resource", dir, err)
	}
	b.cleanupEmptyDirectories(filepath.Dir(dir))
	return true, nil
}

func (b *Backend) LoadUserProfile(ctx context.Context, user string) (*simplevault.UserProfile, error) {
	path := filepath.Join(b.baseDir, user, metadataFile)

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, b.storageErr("load_user_profile", path, err)
	}

	var profile simplevault.UserProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, b.storageErr("load_user_profile", path, err)
	}
	return &profile, nil
}

func (b *Backend) SaveUserProfile(ctx context.Context, user string, profile *simplevault.UserProfile) error {
	raw, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return b.storageErr("save_user_profile", user, err)
	}
	path := filepath.Join(b.baseDir, user, metadataFile)
	if err := b.writeFile(path, raw); err != nil {
		return b.storageErr("save_user_profile", path, err)
	}
	return nil
}

// writeFile writes data atomically: a uuid-named temp file in the target
// directory followed by a rename, so readers never observe partial writes.
func (b *Backend) writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp := filepath.Join(dir, ".tmp-"+uuid.NewString())
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}

func (b *Backend) readFile(op, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	} else if err != nil {
		return nil, b.storageErr(op, path, err)
	}
	return data, nil
}

// cleanupEmptyDirectories recursively removes empty directories up to baseDir
func (b *Backend) cleanupEmptyDirectories(dir string) {
	if dir == b.baseDir {
		return
	}
	if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
		if os.Remove(dir) == nil {
			b.cleanupEmptyDirectories(filepath.Dir(dir))
		}
	}
}

func (b *Backend) storageErr(op, key string, err error) error {
	return &simplevault.StorageError{
		Backend: backendName,
		Key:     key,
		Op:      op,
		Err:     err,
	}
}
