package filter

import (
	"context"

	"github.com/rushteam/tripkit/core"
	"github.com/rushteam/tripkit/pkg/dsl"
)

// RuleFilter 是基于 CEL 表达式的规则过滤器，用于运营侧的临时下线/圈选规则。
// 表达式命中（求值为 true）的候选会被过滤掉。
//
// 示例：
//   - `place.budget_level > 3` → 过滤掉高预算地点
//   - `place.category == "nightlife" && rctx.scene == "family"` → 家庭场景不推夜生活
type RuleFilter struct {
	// Expr 是 CEL 过滤表达式；为空时不过滤任何候选
	Expr string
}

func NewRuleFilter(expr string) *RuleFilter {
	return &RuleFilter{Expr: expr}
}

var _ Filter = (*RuleFilter)(nil)

func (f *RuleFilter) Name() string {
	return "filter.rule"
}

func (f *RuleFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	c *core.Candidate,
) (bool, error) {
	if f.Expr == "" || c == nil || c.Place == nil {
		return false, nil
	}
	return dsl.NewEval(c, rctx).Evaluate(f.Expr)
}
