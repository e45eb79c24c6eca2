package rerank

import (
	"context"

	"github.com/rushteam/tripkit/core"
	"github.com/rushteam/tripkit/pipeline"
	"github.com/rushteam/tripkit/pkg/conv"
)

// TopNNode 是一个 Top-N 截断节点，用于在排序后截取前 N 个地点。
// 通常在排序（Rank）节点之后使用，用于限制返回结果数量。
//
// 示例：
//
//	pipeline := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &rank.FusionNode{...},    // 融合排序
//	        &rerank.TopNNode{N: 20},  // 截取 Top 20
//	    },
//	}
type TopNNode struct {
	// N 要保留的地点数量（Top N）
	// 如果 N <= 0，则返回所有地点（不截断）
	// 如果 N > len(candidates)，则返回所有地点
	N int
}

var _ pipeline.Node = (*TopNNode)(nil)

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	limit := n.N
	// 请求级 count 参数优先于节点配置
	if rctx != nil {
		if c := conv.ConfigGetInt(rctx.Params, "count", 0); c > 0 {
			limit = c
		}
	}

	if limit <= 0 || len(candidates) <= limit {
		return candidates, nil
	}
	return candidates[:limit], nil
}
