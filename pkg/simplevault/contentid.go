package simplevault

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Content id bounds: allocation prefers 1..9 to keep filesystem paths short,
// then widens to 1..99. A resource holding 99 live content items is full.
const (
	contentIDPreferredMax = 9
	contentIDMax          = 99
)

type contentScope struct {
	user         string
	resourceType ResourceType
	resourceID   string
}

// ContentIDManager allocates and tracks the small-integer content ids of a
// single resource. Allocation is minimum-excludant: the smallest unused
// integer in [1,9], then the smallest unused in [1,99]. Sets are hydrated
// lazily from the resource's persisted content_ids.
type ContentIDManager struct {
	backend StorageBackend

	mu   sync.Mutex
	used map[contentScope]map[int]struct{}
}

// NewContentIDManager creates a manager hydrating from the given backend.
func NewContentIDManager(backend StorageBackend) *ContentIDManager {
	return &ContentIDManager{
		backend: backend,
		used:    make(map[contentScope]map[int]struct{}),
	}
}

// hydrate loads the persisted id set once per scope. A missing resource or
// metadata record hydrates to an empty set. Callers hold m.mu.
func (m *ContentIDManager) hydrate(ctx context.Context, scope contentScope) (map[int]struct{}, error) {
	if ids, ok := m.used[scope]; ok {
		return ids, nil
	}
	meta, err := m.backend.LoadMetadata(ctx, scope.user, scope.resourceType, scope.resourceID)
	if err != nil {
		return nil, fmt.Errorf("hydrating content ids: %w", err)
	}
	ids := make(map[int]struct{})
	if meta != nil && meta.BasicMeta != nil {
		for _, id := range meta.BasicMeta.ContentIDs {
			ids[id] = struct{}{}
		}
	}
	m.used[scope] = ids
	return ids, nil
}

// Generate allocates the smallest unused content id for the resource.
func (m *ContentIDManager) Generate(ctx context.Context, user string, resourceType ResourceType, resourceID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids, err := m.hydrate(ctx, contentScope{user, resourceType, resourceID})
	if err != nil {
		return 0, err
	}

	for id := 1; id <= contentIDPreferredMax; id++ {
		if _, taken := ids[id]; !taken {
			ids[id] = struct{}{}
			return id, nil
		}
	}
	for id := contentIDPreferredMax + 1; id <= contentIDMax; id++ {
		if _, taken := ids[id]; !taken {
			ids[id] = struct{}{}
			return id, nil
		}
	}
	return 0, NewValidationError("content_id", fmt.Sprintf("resource %s already holds %d content items", resourceID, contentIDMax))
}

// Release frees a content id. Releasing an unknown id is a no-op.
func (m *ContentIDManager) Release(ctx context.Context, user string, resourceType ResourceType, resourceID string, contentID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids, err := m.hydrate(ctx, contentScope{user, resourceType, resourceID})
	if err != nil {
		return err
	}
	delete(ids, contentID)
	return nil
}

// Reserve marks a specific content id as in use. It exists for rollback:
// when a release was applied but the matching metadata save failed, the
// caller restores the allocation.
func (m *ContentIDManager) Reserve(ctx context.Context, user string, resourceType ResourceType, resourceID string, contentID int) error {
	if contentID < 1 || contentID > contentIDMax {
		return NewValidationError("content_id", fmt.Sprintf("content id %d is out of range", contentID))
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	ids, err := m.hydrate(ctx, contentScope{user, resourceType, resourceID})
	if err != nil {
		return err
	}
	ids[contentID] = struct{}{}
	return nil
}

// Exists reports whether the content id is live for the resource.
func (m *ContentIDManager) Exists(ctx context.Context, user string, resourceType ResourceType, resourceID string, contentID int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids, err := m.hydrate(ctx, contentScope{user, resourceType, resourceID})
	if err != nil {
		return false, err
	}
	_, ok := ids[contentID]
	return ok, nil
}

// List returns the live content ids for the resource in ascending order.
func (m *ContentIDManager) List(ctx context.Context, user string, resourceType ResourceType, resourceID string) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids, err := m.hydrate(ctx, contentScope{user, resourceType, resourceID})
	if err != nil {
		return nil, err
	}
	out := make([]int, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	sort.Ints(out)
	return out, nil
}

// Forget drops the cached set for a resource, typically after the resource
// itself is deleted.
func (m *ContentIDManager) Forget(user string, resourceType ResourceType, resourceID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.used, contentScope{user, resourceType, resourceID})
}
