package store

import (
	"context"
	"sort"
	"sync"

	"github.com/rushteam/tripkit/core"
	"github.com/rushteam/tripkit/pkg/geo"
)

// MemoryCatalog 是内存实现的地点目录，用于测试和小规模数据集。
// 生产环境可替换为数据库/搜索服务实现的 core.Catalog。
type MemoryCatalog struct {
	mu     sync.RWMutex
	places map[string]*core.Place
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{places: make(map[string]*core.Place)}
}

var _ core.Catalog = (*MemoryCatalog)(nil)

// AddPlace 添加或覆盖地点。
func (c *MemoryCatalog) AddPlace(p *core.Place) {
	if p == nil || p.ID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.places[p.ID] = p
}

func (c *MemoryCatalog) GetPlace(ctx context.Context, placeID string) (*core.Place, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.places[placeID]
	if !ok {
		return nil, core.ErrPlaceNotFound
	}
	return p, nil
}

// ListPlaces 按过滤条件列出地点，结果按 ID 升序保证遍历顺序确定。
func (c *MemoryCatalog) ListPlaces(ctx context.Context, filter *core.PlaceFilter) ([]*core.Place, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]*core.Place, 0, len(c.places))
	for _, p := range c.places {
		if matchPlace(p, filter) {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	if filter != nil && filter.MaxResults > 0 && len(result) > filter.MaxResults {
		result = result[:filter.MaxResults]
	}
	return result, nil
}

func matchPlace(p *core.Place, filter *core.PlaceFilter) bool {
	if filter == nil {
		return true
	}

	if filter.Category != "" || len(filter.Categories) > 0 {
		if !matchCategory(p.Category, filter.Category, filter.Categories) {
			return false
		}
	}

	if len(filter.Tags) > 0 && !hasAnyTag(p.Tags, filter.Tags) {
		return false
	}

	if len(filter.Accessibility) > 0 && !p.HasAccessibility(filter.Accessibility) {
		return false
	}

	if filter.Center != nil && filter.RadiusKm > 0 {
		dist, err := geo.Haversine(*filter.Center, p.Location)
		if err != nil || dist > filter.RadiusKm {
			return false
		}
	}

	return true
}

func matchCategory(category, single string, multi []string) bool {
	if single != "" && category == single {
		return true
	}
	for _, c := range multi {
		if category == c {
			return true
		}
	}
	return false
}

func hasAnyTag(tags, wanted []string) bool {
	for _, w := range wanted {
		for _, t := range tags {
			if t == w {
				return true
			}
		}
	}
	return false
}

// MemoryProfileStore 是内存实现的用户画像存储。
type MemoryProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]*core.UserProfile
}

func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{profiles: make(map[string]*core.UserProfile)}
}

var _ core.ProfileStore = (*MemoryProfileStore)(nil)

// PutProfile 添加或覆盖用户画像。
func (s *MemoryProfileStore) PutProfile(p *core.UserProfile) {
	if p == nil || p.UserID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.UserID] = p
}

func (s *MemoryProfileStore) GetUserProfile(ctx context.Context, userID string) (*core.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	return p, nil
}
