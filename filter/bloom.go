package filter

import (
	"context"

	"github.com/rushteam/tripkit/core"
)

// VisitedChecker 是长周期到访历史的布隆过滤器检查接口。
// 交互日志覆盖近期行为；历史到访数据量大、周期长，用布隆过滤器
// 换取常数空间。返回 true 表示可能到访过（存在误判），false 表示一定没有。
type VisitedChecker interface {
	// CheckVisited 检查用户是否可能到访过该地点
	CheckVisited(ctx context.Context, userID, placeID string) (bool, error)
}

// VisitedFilter 过滤掉用户可能到访过的地点（长周期历史，布隆过滤器实现）。
// 误判的代价只是少推一个候选，可接受；漏判不会发生。
type VisitedFilter struct {
	Checker VisitedChecker
}

func NewVisitedFilter(checker VisitedChecker) *VisitedFilter {
	return &VisitedFilter{Checker: checker}
}

var _ Filter = (*VisitedFilter)(nil)

func (f *VisitedFilter) Name() string {
	return "filter.visited"
}

func (f *VisitedFilter) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	c *core.Candidate,
) (bool, error) {
	if f.Checker == nil || c == nil || c.Place == nil || rctx == nil || rctx.UserID == "" {
		return false, nil
	}
	return f.Checker.CheckVisited(ctx, rctx.UserID, c.Place.ID)
}
