// Package s3 provides an S3-compatible storage backend (AWS S3, MinIO).
package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/tendant/simple-vault/pkg/simplevault"
)

const backendName = "s3"

// Config options for the S3 backend
type Config struct {
	Region          string // AWS region
	Bucket          string // S3 bucket name
	AccessKeyID     string // AWS access key ID
	SecretAccessKey string // AWS secret access key
	Endpoint        string // Optional custom endpoint for S3-compatible services
	UsePathStyle    bool   // Use path-style addressing (default: false)

	// MinIO/S3-compatible service options
	CreateBucketIfNotExist bool // Create bucket if it doesn't exist
}

// Backend is an S3-compatible implementation of simplevault.StorageBackend.
// Object keys mirror the filesystem backend's layout.
type Backend struct {
	client *s3.Client
	bucket string
	config Config
}

// New creates a new S3-compatible storage backend
func New(config Config) (*Backend, error) {
	if config.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}
	if config.Region == "" {
		config.Region = "us-east-1"
	}

	var awsCfg aws.Config
	var err error

	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(config.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				config.AccessKeyID,
				config.SecretAccessKey,
				"",
			)),
		)
	} else {
		// Use default credential chain
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(config.Region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Options []func(*s3.Options)
	if config.Endpoint != "" {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(config.Endpoint)
			o.UsePathStyle = config.UsePathStyle
		})
	}

	backend := &Backend{
		client: s3.NewFromConfig(awsCfg, s3Options...),
		bucket: config.Bucket,
		config: config,
	}

	if config.CreateBucketIfNotExist {
		if err := backend.createBucketIfNotExists(context.Background()); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return backend, nil
}

func (b *Backend) Name() string { return backendName }

// createBucketIfNotExists creates the bucket if it doesn't exist
func (b *Backend) createBucketIfNotExists(ctx context.Context) error {
	_, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(b.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) &&
		!strings.Contains(err.Error(), "BadRequest") &&
		!strings.Contains(err.Error(), "NoSuchBucket") {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	createInput := &s3.CreateBucketInput{
		Bucket: aws.String(b.bucket),
	}
	if b.config.Region != "us-east-1" {
		createInput.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(b.config.Region),
		}
	}

	_, err = b.client.CreateBucket(ctx, createInput)
	if err != nil {
		if strings.Contains(err.Error(), "BucketAlreadyExists") ||
			strings.Contains(err.Error(), "BucketAlreadyOwnedByYou") {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

func shard(resourceID string) string {
	if len(resourceID) < 2 {
		return resourceID
	}
	return resourceID[len(resourceID)-2:]
}

func resourcePrefix(user string, resourceType simplevault.ResourceType, resourceID string) string {
	return fmt.Sprintf("%s/%s/%s/%s/", user, resourceType, shard(resourceID), resourceID)
}

func metadataKey(user string, resourceType simplevault.ResourceType, resourceID string) string {
	return resourcePrefix(user, resourceType, resourceID) + "metadata.json"
}

func contentKey(user string, resourceType simplevault.ResourceType, resourceID string, contentID int) string {
	return fmt.Sprintf("%scontent_%d", resourcePrefix(user, resourceType, resourceID), contentID)
}

func thumbnailKey(user string, resourceType simplevault.ResourceType, resourceID string, size simplevault.ThumbnailSize) string {
	return fmt.Sprintf("%sthumbnail_%s.webp", resourcePrefix(user, resourceType, resourceID), size)
}

func profileKey(user string) string {
	return user + "/metadata.json"
}

func (b *Backend) ListResourceIDs(ctx context.Context, user string, resourceType simplevault.ResourceType) ([]string, error) {
	prefix := fmt.Sprintf("%s/%s/", user, resourceType)

	var ids []string
	paginator := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, b.storageErr("list_resource_ids", prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, "/metadata.json") {
				continue
			}
			// <user>/<type>/<shard>/<resource_id>/metadata.json
			parts := strings.Split(key, "/")
			if len(parts) == 5 {
				ids = append(ids, parts[3])
			}
		}
	}
	return ids, nil
}

func (b *Backend) LoadMetadata(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string) (*simplevault.ResourceMeta, error) {
	raw, err := b.getObject(ctx, "load_metadata", metadataKey(user, resourceType, resourceID))
	if err != nil || raw == nil {
		return nil, err
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
	return b.putObject(ctx, "save_metadata", metadataKey(user, resourceType, resourceID), raw, "application/json")
}

func (b *Backend) DeleteMetadata(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string) error {
	return b.deleteObject(ctx, "delete_metadata", metadataKey(user, resourceType, resourceID))
}

func (b *Backend) LoadContent(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string, contentID int) ([]byte, error) {
	return b.getObject(ctx, "load_content", contentKey(user, resourceType, resourceID, contentID))
}

func (b *Backend) SaveContent(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string, contentID int, data []byte) error {
	return b.putObject(ctx, "save_content", contentKey(user, resourceType, resourceID, contentID), data, "")
}

func (b *Backend) DeleteContent(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string, contentID int) error {
	return b.deleteObject(ctx, "delete_content", contentKey(user, resourceType, resourceID, contentID))
}

func (b *Backend) LoadThumbnail(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string, size simplevault.ThumbnailSize) ([]byte, error) {
	return b.getObject(ctx, "load_thumbnail", thumbnailKey(user, resourceType, resourceID, size))
}

func (b *Backend) SaveThumbnail(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string, size simplevault.ThumbnailSize, data []byte) error {
	return b.putObject(ctx, "save_thumbnail", thumbnailKey(user, resourceType, resourceID, size), data, "image/webp")
}

func (b *Backend) ThumbnailExists(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string, size simplevault.ThumbnailSize) (bool, error) {
	key := thumbnailKey(user, resourceType, resourceID, size)
	_, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, b.storageErr("thumbnail_exists", key, err)
	}
	return true, nil
}

func (b *Backend) DeleteResource(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string) (bool, error) {
	prefix := resourcePrefix(user, resourceType, resourceID)

	var objects []types.ObjectIdentifier
	paginator := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return false, b.storageErr("delete_resource", prefix, err)
		}
		for _, obj := range page.Contents {
			objects = append(objects, types.ObjectIdentifier{Key: obj.Key})
		}
	}
	if len(objects) == 0 {
		return false, nil
	}

	_, err := b.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(b.bucket),
		Delete: &types.Delete{Objects: objects, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return false, b.storageErr("delete_resource", prefix, err)
	}
	return true, nil
}

func (b *Backend) LoadUserProfile(ctx context.Context, user string) (*simplevault.UserProfile, error) {
	raw, err := b.getObject(ctx, "load_user_profile", profileKey(user))
	if err != nil || raw == nil {
		return nil, err
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
	return b.putObject(ctx, "save_user_profile", profileKey(user), raw, "application/json")
}

func (b *Backend) getObject(ctx context.Context, op, key string) ([]byte, error) {
	result, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, b.storageErr(op, key, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, b.storageErr(op, key, err)
	}
	return data, nil
}

func (b *Backend) putObject(ctx context.Context, op, key string, data []byte, contentType string) error {
	uploader := manager.NewUploader(b.client)

	input := &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := uploader.Upload(ctx, input); err != nil {
		return b.storageErr(op, key, err)
	}
	return nil
}

func (b *Backend) deleteObject(ctx context.Context, op, key string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return b.storageErr(op, key, err)
	}
	return nil
}

// isNotFound matches the not-found shapes S3-compatible services return
// (NoSuchKey, NotFound, bare 404s from MinIO).
func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NoSuchKey" || code == "NotFound"
	}
	return false
}

func (b *Backend) storageErr(op, key string, err error) error {
	return &simplevault.StorageError{
		Backend: backendName,
		Key:     key,
		Op:      op,
		Err:     err,
	}
}
