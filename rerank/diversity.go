package rerank

import (
	"context"

	"github.com/rushteam/tripkit/core"
	"github.com/rushteam/tripkit/pipeline"
)

// Diversity 是一个简单的多样性 ReRank 节点：按类别去重（保留每个类别
// 中排名最高的地点）。一屏全是博物馆的推荐列表体验很差。
type Diversity struct {
	// MaxPerCategory 每个类别最多保留的地点数；<= 0 用默认 1
	MaxPerCategory int
}

var _ pipeline.Node = (*Diversity)(nil)

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	if len(candidates) == 0 {
		return candidates, nil
	}

	limit := n.MaxPerCategory
	if limit <= 0 {
		limit = 1
	}

	seen := make(map[string]int, 16)
	out := make([]*core.Candidate, 0, len(candidates))

	for _, c := range candidates {
		if c == nil || c.Place == nil {
			continue
		}

		cate := c.Place.Category
		if cate == "" {
			out = append(out, c)
			continue
		}
		if seen[cate] >= limit {
			continue
		}
		seen[cate]++
		out = append(out, c)
	}

	return out, nil
}
