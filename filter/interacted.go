package filter

import (
	"context"
	"sync"

	"github.com/rushteam/tripkit/core"
	"github.com/rushteam/tripkit/interaction"
)

// InteractedFilter 过滤掉用户已经交互过的地点（浏览/点赞/收藏/评论），
// 以及画像收藏集合中的地点。推荐已去过的地方没有价值。
type InteractedFilter struct {
	// Index 用于读取用户的交互向量
	Index *interaction.Index

	// IncludeSaved 是否把画像 SavedPlaces 也当作已交互处理
	IncludeSaved bool

	// 每个请求对同一用户只取一次交互向量
	mu   sync.Mutex
	memo map[string]core.InteractionVector
}

func NewInteractedFilter(idx *interaction.Index) *InteractedFilter {
	return &InteractedFilter{
		Index:        idx,
		IncludeSaved: true,
		memo:         make(map[string]core.InteractionVector),
	}
}

var _ Filter = (*InteractedFilter)(nil)

func (f *InteractedFilter) Name() string {
	return "filter.interacted"
}

func (f *InteractedFilter) vector(ctx context.Context, userID string) (core.InteractionVector, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.memo == nil {
		f.memo = make(map[string]core.InteractionVector)
	}
	if vec, ok := f.memo[userID]; ok {
		return vec, nil
	}

	vec, err := f.Index.Vector(ctx, userID)
	if err != nil {
		return nil, err
	}
	f.memo[userID] = vec
	return vec, nil
}

func (f *InteractedFilter) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	c *core.Candidate,
) (bool, error) {
	if c == nil || c.Place == nil || rctx == nil || rctx.UserID == "" {
		return false, nil
	}

	if f.Index != nil {
		vec, err := f.vector(ctx, rctx.UserID)
		if err != nil {
			return false, err
		}
		if _, ok := vec[c.Place.ID]; ok {
			return true, nil
		}
	}

	if f.IncludeSaved && rctx.User != nil && rctx.User.HasSaved(c.Place.ID) {
		return true, nil
	}

	return false, nil
}
