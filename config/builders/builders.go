// Package builders 注册内置 Node 的配置构建器。
// import _ 本包即可启用配置驱动的 Pipeline 组装。
package builders

import (
	"fmt"

	"github.com/rushteam/tripkit/config"
	"github.com/rushteam/tripkit/filter"
	"github.com/rushteam/tripkit/pipeline"
	"github.com/rushteam/tripkit/pkg/conv"
	"github.com/rushteam/tripkit/rank"
	"github.com/rushteam/tripkit/rerank"
)

func init() {
	config.Register("recall.candidates", BuildCandidatesNode)
	config.Register("filter", BuildFilterNode)
	config.Register("rank.fusion", BuildFusionNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("rerank.diversity", BuildDiversityNode)
}

// BuildCandidatesNode 需要 Catalog/ProfileStore 等运行时依赖，
// 无法仅从配置构建；配置驱动场景请通过 Engine 注入后使用。
func BuildCandidatesNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return nil, fmt.Errorf("recall.candidates requires a catalog, wire it through tripkit.Engine (supported from config: %v)",
		config.SupportedTypes())
}

// BuildFilterNode 从配置构建组合过滤 Node。
// 仅支持无运行时依赖的过滤器（rule、accessibility）；
// interacted/visited 需要交互索引等依赖，通过 Engine 注入。
func BuildFilterNode(cfg map[string]interface{}) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}
	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]interface{})
		if !ok {
			continue
		}
		filterType := conv.ConfigGet(filterMap, "type", "")
		switch filterType {
		case "rule":
			expr := conv.ConfigGet(filterMap, "expr", "")
			if expr == "" {
				return nil, fmt.Errorf("rule filter requires expr")
			}
			filters = append(filters, filter.NewRuleFilter(expr))
		case "accessibility":
			filters = append(filters, &filter.AccessibilityFilter{})
		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}
	return &filter.FilterNode{Filters: filters}, nil
}

// BuildFusionNode 从配置构建融合排序 Node（信号权重与相似用户参数）。
// 交互索引/Embedding 客户端等依赖通过 Engine 注入。
func BuildFusionNode(cfg map[string]interface{}) (pipeline.Node, error) {
	node := &rank.FusionNode{
		TopKSimilarUsers: conv.ConfigGetInt(cfg, "top_k_similar_users", 0),
		MinSimilarity:    conv.ConfigGetFloat(cfg, "min_similarity", 0),
	}
	if weightsMap, ok := cfg["weights"].(map[string]interface{}); ok {
		weights := conv.MapToFloat64(weightsMap)
		node.Weights = rank.Weights{
			Collaborative: weights["collaborative"],
			Content:       weights["content"],
			Semantic:      weights["semantic"],
		}
	}
	return node, nil
}

func BuildTopNNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &rerank.TopNNode{N: conv.ConfigGetInt(cfg, "n", 0)}, nil
}

func BuildDiversityNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &rerank.Diversity{
		MaxPerCategory: conv.ConfigGetInt(cfg, "max_per_category", 0),
	}, nil
}
