package host

import (
	"context"
	"strings"
	"sync"

	"github.com/retrodesk/desktopd/internal/domain/wallpaper"
	"github.com/retrodesk/desktopd/internal/shared/id"
)

// MemoryStore is an in-memory StateStore. It backs headless deployments
// that opt out of persistence and doubles as the test store.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	s.data[key] = stored
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *MemoryStore) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// MemoryWallpaperAssets keeps imported wallpapers in memory on top of the
// builtin catalog.
type MemoryWallpaperAssets struct {
	mu          sync.RWMutex
	imported    map[string]wallpaper.Asset
	collections map[string]wallpaper.Collection
	memberships map[string][]string
}

// NewMemoryWallpaperAssets creates an asset service seeded with only the
// builtin catalog.
func NewMemoryWallpaperAssets() *MemoryWallpaperAssets {
	return &MemoryWallpaperAssets{
		imported:    make(map[string]wallpaper.Asset),
		collections: make(map[string]wallpaper.Collection),
		memberships: make(map[string][]string),
	}
}

func (m *MemoryWallpaperAssets) Library(_ context.Context) (wallpaper.Library, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	imported := make([]wallpaper.Asset, 0, len(m.imported))
	for _, asset := range m.imported {
		imported = append(imported, asset)
	}
	collections := make([]wallpaper.Collection, 0, len(m.collections))
	for _, c := range m.collections {
		c.AssetIDs = append([]string(nil), m.memberships[c.ID]...)
		collections = append(collections, c)
	}
	return wallpaper.Merge(imported, collections), nil
}

func (m *MemoryWallpaperAssets) Import(_ context.Context, req wallpaper.ImportRequest) (wallpaper.Asset, error) {
	kind, err := wallpaper.ValidateImport(req)
	if err != nil {
		return wallpaper.Asset{}, err
	}
	asset := wallpaper.Asset{
		ID:          id.Asset(),
		DisplayName: req.DisplayName,
		MediaKind:   kind,
		PrimaryPath: "imported/" + req.FileName,
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.imported[asset.ID] = asset
	return asset, nil
}

func (m *MemoryWallpaperAssets) UpdateMetadata(_ context.Context, assetID string, patch wallpaper.MetadataPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	asset, ok := m.imported[assetID]
	if !ok {
		return wallpaper.ErrAssetNotFound
	}
	m.imported[assetID] = patch.Apply(asset)
	if patch.CollectionIDs != nil {
		for collectionID := range m.collections {
			m.removeMember(collectionID, assetID)
		}
		for _, collectionID := range *patch.CollectionIDs {
			if _, ok := m.collections[collectionID]; ok {
				m.memberships[collectionID] = append(m.memberships[collectionID], assetID)
			}
		}
	}
	return nil
}

func (m *MemoryWallpaperAssets) DeleteAsset(_ context.Context, assetID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.imported[assetID]; !ok {
		return wallpaper.ErrAssetNotFound
	}
	delete(m.imported, assetID)
	for collectionID := range m.collections {
		m.removeMember(collectionID, assetID)
	}
	return nil
}

func (m *MemoryWallpaperAssets) CreateCollection(_ context.Context, displayName string) (wallpaper.Collection, error) {
	collection := wallpaper.Collection{ID: id.Default().NewPrefixed("coll"), Name: displayName}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[collection.ID] = collection
	return collection, nil
}

func (m *MemoryWallpaperAssets) RenameCollection(_ context.Context, collectionID, displayName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	collection, ok := m.collections[collectionID]
	if !ok {
		return wallpaper.ErrAssetNotFound
	}
	collection.Name = displayName
	m.collections[collectionID] = collection
	return nil
}

func (m *MemoryWallpaperAssets) DeleteCollection(_ context.Context, collectionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.collections, collectionID)
	delete(m.memberships, collectionID)
	return nil
}

// removeMember must be called with the write lock held.
func (m *MemoryWallpaperAssets) removeMember(collectionID, assetID string) {
	members := m.memberships[collectionID]
	for i, member := range members {
		if member == assetID {
			m.memberships[collectionID] = append(members[:i], members[i+1:]...)
			return
		}
	}
}
