package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"github.com/tendant/simple-vault/pkg/simplevault"
)

func TestPostgresBackend_Metadata(t *testing.T) {
	RunTest(t, func(t *testing.T, db *TestDB) {
		backend := NewWithPool(db.Pool)
		ctx := context.Background()

		// Absent metadata loads as (nil, nil)
		meta, err := backend.LoadMetadata(ctx, "alice", simplevault.ResourceTypeBooks, "01ARZ3NDEKTSV4RRFFQ69G5FAV")
		require.NoError(t, err)
		assert.Nil(t, meta)

		saved := simplevault.NewResourceMeta(simplevault.DetailMeta{"title": "Dune"}, nil)
		err = backend.SaveMetadata(ctx, "alice", simplevault.ResourceTypeBooks, "01ARZ3NDEKTSV4RRFFQ69G5FAV", saved)
		require.NoError(t, err)

		meta, err = backend.LoadMetadata(ctx, "alice", simplevault.ResourceTypeBooks, "01ARZ3NDEKTSV4RRFFQ69G5FAV")
		require.NoError(t, err)
		require.NotNil(t, meta)
		assert.Equal(t, "Dune", meta.DetailMeta["title"])

		ids, err := backend.ListResourceIDs(ctx, "alice", simplevault.ResourceTypeBooks)
		require.NoError(t, err)
		assert.Equal(t, []string{"01ARZ3NDEKTSV4RRFFQ69G5FAV"}, ids)

		// Upsert replaces the stored document
		saved.DetailMeta["title"] = "Dune Messiah"
		err = backend.SaveMetadata(ctx, "alice", simplevault.ResourceTypeBooks, "01ARZ3NDEKTSV4RRFFQ69G5FAV", saved)
		require.NoError(t, err)

		meta, err = backend.LoadMetadata(ctx, "alice", simplevault.ResourceTypeBooks, "01ARZ3NDEKTSV4RRFFQ69G5FAV")
		require.NoError(t, err)
		assert.Equal(t, "Dune Messiah", meta.DetailMeta["title"])
	})
}

func TestPostgresBackend_ContentAndThumbnails(t *testing.T) {
	RunTest(t, func(t *testing.T, db *TestDB) {
		backend := NewWithPool(db.Pool)
		ctx := context.Background()

		data, err := backend.LoadContent(ctx, "alice", simplevault.ResourceTypeImages, "01ARZ3NDEKTSV4RRFFQ69G5FAV", 1)
		require.NoError(t, err)
		assert.Nil(t, data)

		err = backend.SaveContent(ctx, "alice", simplevault.ResourceTypeImages, "01ARZ3NDEKTSV4RRFFQ69G5FAV", 1, []byte("jpeg bytes"))
		require.NoError(t, err)

		data, err = backend.LoadContent(ctx, "alice", simplevault.ResourceTypeImages, "01ARZ3NDEKTSV4RRFFQ69G5FAV", 1)
		require.NoError(t, err)
		assert.Equal(t, []byte("jpeg bytes"), data)

		exists, err := backend.ThumbnailExists(ctx, "alice", simplevault.ResourceTypeImages, "01ARZ3NDEKTSV4RRFFQ69G5FAV", simplevault.ThumbnailSmall)
		require.NoError(t, err)
		assert.False(t, exists)

		err = backend.SaveThumbnail(ctx, "alice", simplevault.ResourceTypeImages, "01ARZ3NDEKTSV4RRFFQ69G5FAV", simplevault.ThumbnailSmall, []byte("webp bytes"))
		require.NoError(t, err)

		exists, err = backend.ThumbnailExists(ctx, "alice", simplevault.ResourceTypeImages, "01ARZ3NDEKTSV4RRFFQ69G5FAV", simplevault.ThumbnailSmall)
		require.NoError(t, err)
		assert.True(t, exists)

		thumb, err := backend.LoadThumbnail(ctx, "alice", simplevault.ResourceTypeImages, "01ARZ3NDEKTSV4RRFFQ69G5FAV", simplevault.ThumbnailSmall)
		require.NoError(t, err)
		assert.Equal(t, []byte("webp bytes"), thumb)
	})
}

func TestPostgresBackend_DeleteResource(t *testing.T) {
	RunTest(t, func(t *testing.T, db *TestDB) {
		backend := NewWithPool(db.Pool)
		ctx := context.Background()

		removed, err := backend.DeleteResource(ctx, "alice", simplevault.ResourceTypeBooks, "01ARZ3NDEKTSV4RRFFQ69G5FAV")
		require.NoError(t, err)
		assert.False(t, removed)

		meta := simplevault.NewResourceMeta(nil, nil)
		require.NoError(t, backend.SaveMetadata(ctx, "alice", simplevault.ResourceTypeBooks, "01ARZ3NDEKTSV4RRFFQ69G5FAV", meta))
		require.NoError(t, backend.SaveContent(ctx, "alice", simplevault.ResourceTypeBooks, "01ARZ3NDEKTSV4RRFFQ69G5FAV", 1, []byte("epub bytes")))
		require.NoError(t, backend.SaveThumbnail(ctx, "alice", simplevault.ResourceTypeBooks, "01ARZ3NDEKTSV4RRFFQ69G5FAV", simplevault.ThumbnailOriginal, []byte("cover")))

		removed, err = backend.DeleteResource(ctx, "alice", simplevault.ResourceTypeBooks, "01ARZ3NDEKTSV4RRFFQ69G5FAV")
		require.NoError(t, err)
		assert.True(t, removed)
		slog.Info("deleted resource tree", "resource_id", "01ARZ3NDEKTSV4RRFFQ69G5FAV")

		loaded, err := backend.LoadMetadata(ctx, "alice", simplevault.ResourceTypeBooks, "01ARZ3NDEKTSV4RRFFQ69G5FAV")
		require.NoError(t, err)
		assert.Nil(t, loaded)

		data, err := backend.LoadContent(ctx, "alice", simplevault.ResourceTypeBooks, "01ARZ3NDEKTSV4RRFFQ69G5FAV", 1)
		require.NoError(t, err)
		assert.Nil(t, data)
	})
}

func TestPostgresBackend_UserProfile(t *testing.T) {
	RunTest(t, func(t *testing.T, db *TestDB) {
		backend := NewWithPool(db.Pool)
		ctx := context.Background()

		profile, err := backend.LoadUserProfile(ctx, "alice")
		require.NoError(t, err)
		assert.Nil(t, profile)

		touched := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		saved := &simplevault.UserProfile{Resources: map[simplevault.ResourceType]time.Time{
			simplevault.ResourceTypeBooks: touched,
		}}
		require.NoError(t, backend.SaveUserProfile(ctx, "alice", saved))

		profile, err = backend.LoadUserProfile(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, profile)
		assert.True(t, profile.Resources[simplevault.ResourceTypeBooks].Equal(touched))
	})
}
