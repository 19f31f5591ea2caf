package simplevault

import (
	"context"
	"crypto/rand"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type resourceScope struct {
	user         string
	resourceType ResourceType
}

// ResourceIDManager allocates and tracks resource ids per (user, type). IDs
// are ULIDs: 26-character, lexicographically sortable by creation time. The
// per-scope sets are hydrated lazily from the backend's listing and act as a
// uniqueness layer only; storage stays authoritative.
type ResourceIDManager struct {
	backend StorageBackend

	mu      sync.Mutex
	known   map[resourceScope]map[string]struct{}
	entropy *ulid.MonotonicEntropy
}

// NewResourceIDManager creates a manager hydrating from the given backend.
func NewResourceIDManager(backend StorageBackend) *ResourceIDManager {
	return &ResourceIDManager{
		backend: backend,
		known:   make(map[resourceScope]map[string]struct{}),
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// hydrate loads the persisted id set once per scope. Callers hold m.mu.
func (m *ResourceIDManager) hydrate(ctx context.Context, scope resourceScope) (map[string]struct{}, error) {
	if ids, ok := m.known[scope]; ok {
		return ids, nil
	}
	listed, err := m.backend.ListResourceIDs(ctx, scope.user, scope.resourceType)
	if err != nil {
		return nil, fmt.Errorf("hydrating resource ids: %w", err)
	}
	ids := make(map[string]struct{}, len(listed))
	for _, id := range listed {
		ids[id] = struct{}{}
	}
	m.known[scope] = ids
	return ids, nil
}

// Generate allocates a new resource id, records it, and returns it. The
// generated id never collides with any id the scope has seen.
func (m *ResourceIDManager) Generate(ctx context.Context, user string, resourceType ResourceType) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids, err := m.hydrate(ctx, resourceScope{user, resourceType})
	if err != nil {
		return "", err
	}

	for {
		id, err := ulid.New(ulid.Timestamp(time.Now().UTC()), m.entropy)
		if err != nil {
			return "", fmt.Errorf("generating resource id: %w", err)
		}
		s := id.String()
		if _, taken := ids[s]; !taken {
			ids[s] = struct{}{}
			return s, nil
		}
	}
}

// Release forgets a resource id. Releasing an unknown id is a no-op.
func (m *ResourceIDManager) Release(ctx context.Context, user string, resourceType ResourceType, resourceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids, err := m.hydrate(ctx, resourceScope{user, resourceType})
	if err != nil {
		return err
	}
	delete(ids, resourceID)
	return nil
}

// Exists reports whether the id is known for the scope.
func (m *ResourceIDManager) Exists(ctx context.Context, user string, resourceType ResourceType, resourceID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids, err := m.hydrate(ctx, resourceScope{user, resourceType})
	if err != nil {
		return false, err
	}
	_, ok := ids[resourceID]
	return ok, nil
}

// List returns the known ids for the scope, sorted (ULIDs sort by creation
// time).
func (m *ResourceIDManager) List(ctx context.Context, user string, resourceType ResourceType) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids, err := m.hydrate(ctx, resourceScope{user, resourceType})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// Count returns the number of known ids for the scope.
func (m *ResourceIDManager) Count(ctx context.Context, user string, resourceType ResourceType) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids, err := m.hydrate(ctx, resourceScope{user, resourceType})
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}
