package simplevault_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-vault/pkg/simplevault"
	memorystorage "github.com/tendant/simple-vault/pkg/simplevault/storage/memory"
)

func TestResourceIDManager_Generate(t *testing.T) {
	backend := memorystorage.New()
	mgr := simplevault.NewResourceIDManager(backend)
	ctx := context.Background()

	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		id, err := mgr.Generate(ctx, "alice", simplevault.ResourceTypeBooks)
		require.NoError(t, err)
		assert.Len(t, id, 26)

		_, dup := seen[id]
		assert.False(t, dup, "generated a duplicate id: %s", id)
		seen[id] = struct{}{}

		exists, err := mgr.Exists(ctx, "alice", simplevault.ResourceTypeBooks, id)
		require.NoError(t, err)
		assert.True(t, exists)
	}

	count, err := mgr.Count(ctx, "alice", simplevault.ResourceTypeBooks)
	require.NoError(t, err)
	assert.Equal(t, 50, count)
}

func TestResourceIDManager_HydratesFromBackend(t *testing.T) {
	backend := memorystorage.New()
	ctx := context.Background()

	// Persisted metadata is visible to a fresh manager
	meta := simplevault.NewResourceMeta(simplevault.DetailMeta{"title": "x"}, nil)
	require.NoError(t, backend.SaveMetadata(ctx, "alice", simplevault.ResourceTypeBooks, "01ARZ3NDEKTSV4RRFFQ69G5FAV", meta))

	mgr := simplevault.NewResourceIDManager(backend)
	exists, err := mgr.Exists(ctx, "alice", simplevault.ResourceTypeBooks, "01ARZ3NDEKTSV4RRFFQ69G5FAV")
	require.NoError(t, err)
	assert.True(t, exists)

	ids, err := mgr.List(ctx, "alice", simplevault.ResourceTypeBooks)
	require.NoError(t, err)
	assert.Equal(t, []string{"01ARZ3NDEKTSV4RRFFQ69G5FAV"}, ids)
}

func TestResourceIDManager_Release(t *testing.T) {
	mgr := simplevault.NewResourceIDManager(memorystorage.New())
	ctx := context.Background()

	id, err := mgr.Generate(ctx, "alice", simplevault.ResourceTypeBooks)
	require.NoError(t, err)

	require.NoError(t, mgr.Release(ctx, "alice", simplevault.ResourceTypeBooks, id))

	exists, err := mgr.Exists(ctx, "alice", simplevault.ResourceTypeBooks, id)
	require.NoError(t, err)
	assert.False(t, exists)

	// Releasing an unknown id is a no-op
	require.NoError(t, mgr.Release(ctx, "alice", simplevault.ResourceTypeBooks, id))
}

func TestResourceIDManager_ScopeIsolation(t *testing.T) {
	mgr := simplevault.NewResourceIDManager(memorystorage.New())
	ctx := context.Background()

	id, err := mgr.Generate(ctx, "alice", simplevault.ResourceTypeBooks)
	require.NoError(t, err)

	exists, err := mgr.Exists(ctx, "bob", simplevault.ResourceTypeBooks, id)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = mgr.Exists(ctx, "alice", simplevault.ResourceTypeMusic, id)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestContentIDManager_MexAllocation(t *testing.T) {
	mgr := simplevault.NewContentIDManager(memorystorage.New())
	ctx := context.Background()

	const rid = "01ARZ3NDEKTSV4RRFFQ69G5FAV"

	// Fresh resources count up from 1
	for want := 1; want <= 9; want++ {
		id, err := mgr.Generate(ctx, "alice", simplevault.ResourceTypeBooks, rid)
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}

	// Holes are filled smallest-first
	require.NoError(t, mgr.Release(ctx, "alice", simplevault.ResourceTypeBooks, rid, 3))
	require.NoError(t, mgr.Release(ctx, "alice", simplevault.ResourceTypeBooks, rid, 7))

	id, err := mgr.Generate(ctx, "alice", simplevault.ResourceTypeBooks, rid)
	require.NoError(t, err)
	assert.Equal(t, 3, id)

	id, err = mgr.Generate(ctx, "alice", simplevault.ResourceTypeBooks, rid)
	require.NoError(t, err)
	assert.Equal(t, 7, id)

	// With 1..9 taken, allocation spills into the extended range
	id, err = mgr.Generate(ctx, "alice", simplevault.ResourceTypeBooks, rid)
	require.NoError(t, err)
	assert.Equal(t, 10, id)
}

func TestContentIDManager_Capacity(t *testing.T) {
	mgr := simplevault.NewContentIDManager(memorystorage.New())
	ctx := context.Background()

	const rid = "01ARZ3NDEKTSV4RRFFQ69G5FAV"
	for i := 1; i <= 99; i++ {
		_, err := mgr.Generate(ctx, "alice", simplevault.ResourceTypeBooks, rid)
		require.NoError(t, err)
	}

	_, err := mgr.Generate(ctx, "alice", simplevault.ResourceTypeBooks, rid)
	var validationErr *simplevault.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestContentIDManager_HydratesFromMetadata(t *testing.T) {
	backend := memorystorage.New()
	ctx := context.Background()

	const rid = "01ARZ3NDEKTSV4RRFFQ69G5FAV"
	cm := simplevault.NewContentMeta(1, "a.txt", "text/plain", "deadbeef", 1, nil)
	meta := simplevault.NewResourceMeta(nil, &cm)
	cm2 := simplevault.NewContentMeta(2, "b.txt", "text/plain", "cafef00d", 1, nil)
	updated, err := simplevault.UpdateResourceMeta(meta, nil, 2, &cm2, []int{1, 2})
	require.NoError(t, err)
	require.NoError(t, backend.SaveMetadata(ctx, "alice", simplevault.ResourceTypeBooks, rid, updated))

	mgr := simplevault.NewContentIDManager(backend)
	ids, err := mgr.List(ctx, "alice", simplevault.ResourceTypeBooks, rid)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ids)

	id, err := mgr.Generate(ctx, "alice", simplevault.ResourceTypeBooks, rid)
	require.NoError(t, err)
	assert.Equal(t, 3, id)
}

func TestContentIDManager_Reserve(t *testing.T) {
	mgr := simplevault.NewContentIDManager(memorystorage.New())
	ctx := context.Background()

	const rid = "01ARZ3NDEKTSV4RRFFQ69G5FAV"
	require.NoError(t, mgr.Reserve(ctx, "alice", simplevault.ResourceTypeBooks, rid, 5))

	exists, err := mgr.Exists(ctx, "alice", simplevault.ResourceTypeBooks, rid, 5)
	require.NoError(t, err)
	assert.True(t, exists)

	id, err := mgr.Generate(ctx, "alice", simplevault.ResourceTypeBooks, rid)
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	var validationErr *simplevault.ValidationError
	assert.ErrorAs(t, mgr.Reserve(ctx, "alice", simplevault.ResourceTypeBooks, rid, 0), &validationErr)
	assert.ErrorAs(t, mgr.Reserve(ctx, "alice", simplevault.ResourceTypeBooks, rid, 100), &validationErr)
}

func TestContentIDManager_Forget(t *testing.T) {
	backend := memorystorage.New()
	mgr := simplevault.NewContentIDManager(backend)
	ctx := context.Background()

	const rid = "01ARZ3NDEKTSV4RRFFQ69G5FAV"
	for i := 0; i < 3; i++ {
		_, err := mgr.Generate(ctx, "alice", simplevault.ResourceTypeBooks, rid)
		require.NoError(t, err)
	}

	// After Forget the manager rebuilds from persisted metadata, which is
	// empty here, so allocation starts over.
	mgr.Forget("alice", simplevault.ResourceTypeBooks, rid)

	id, err := mgr.Generate(ctx, "alice", simplevault.ResourceTypeBooks, rid)
	require.NoError(t, err)
	assert.Equal(t, 1, id)
}

func TestContentIDManager_ResourceIsolation(t *testing.T) {
	mgr := simplevault.NewContentIDManager(memorystorage.New())
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		rid := fmt.Sprintf("01ARZ3NDEKTSV4RRFFQ69G5FA%d", i)
		id, err := mgr.Generate(ctx, "alice", simplevault.ResourceTypeBooks, rid)
		require.NoError(t, err)
		assert.Equal(t, 1, id)
	}
}
