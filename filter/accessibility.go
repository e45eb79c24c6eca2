package filter

import (
	"context"

	"github.com/rushteam/tripkit/core"
)

// AccessibilityFilter 过滤掉不满足用户无障碍硬需求的地点。
// 无障碍是硬约束：缺任何一项所需属性就剔除，不做降权妥协。
type AccessibilityFilter struct{}

var _ Filter = (*AccessibilityFilter)(nil)

func (f *AccessibilityFilter) Name() string {
	return "filter.accessibility"
}

func (f *AccessibilityFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	c *core.Candidate,
) (bool, error) {
	if c == nil || c.Place == nil || rctx == nil || rctx.User == nil {
		return false, nil
	}
	needs := rctx.User.AccessibilityNeeds
	if len(needs) == 0 {
		return false, nil
	}
	return !c.Place.HasAccessibility(needs), nil
}
