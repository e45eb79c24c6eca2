package interaction

import (
	"context"
	"sort"

	"github.com/rushteam/tripkit/core"
	"github.com/rushteam/tripkit/pkg/vector"
)

// Log 是交互日志的存储接口，用于获取用户-地点交互数据。
type Log interface {
	// GetUserInteractions 获取用户的全部交互记录（只追加的日志）
	GetUserInteractions(ctx context.Context, userID string) ([]*core.Interaction, error)

	// GetAllUsers 获取所有出现过交互的用户 ID 列表
	GetAllUsers(ctx context.Context) ([]string, error)
}

// Index 是交互索引：维护用户的交互向量并支持跨用户的近邻查询。
//
// 协同过滤的近邻质量直接取决于这里；为了可扩展，交互向量只存非零项
// （稀疏 map），相似度在稀疏向量上计算，而不是按全量地点展开成稠密数组。
type Index struct {
	Log Log

	// TypeWeights 各交互类型的隐式权重；为空时使用 core.DefaultTypeWeights
	TypeWeights map[core.InteractionType]float64
}

// NewIndex 创建交互索引。
func NewIndex(log Log) *Index {
	return &Index{
		Log:         log,
		TypeWeights: core.DefaultTypeWeights(),
	}
}

func (idx *Index) typeWeight(t core.InteractionType) float64 {
	weights := idx.TypeWeights
	if weights == nil {
		weights = core.DefaultTypeWeights()
	}
	return weights[t]
}

// Vector 从交互日志构建用户的交互向量（按地点累积权重）。
// 交互记录带显式权重时用显式值，否则按类型权重表取值。
// 无交互用户得到空向量，不是错误。
func (idx *Index) Vector(ctx context.Context, userID string) (core.InteractionVector, error) {
	if idx.Log == nil || userID == "" {
		return core.InteractionVector{}, nil
	}

	records, err := idx.Log.GetUserInteractions(ctx, userID)
	if err != nil {
		return nil, err
	}

	vec := make(core.InteractionVector, len(records))
	for _, rec := range records {
		if rec == nil || rec.PlaceID == "" {
			continue
		}
		w := rec.Weight
		if w == 0 {
			w = idx.typeWeight(rec.Type)
		}
		if w == 0 {
			continue
		}
		vec[rec.PlaceID] += w
	}
	return vec, nil
}

// SimilarUsers 查找与目标用户最相似的用户。
//
// 约定：
//   - 结果按相似度降序；相似度相同时按用户 ID 升序（保证确定性）
//   - 不包含目标用户自己
//   - minSimilarity 是硬下限：低于它的结果被丢弃，即使返回数不足 maxResults
//   - maxResults 限制返回数量；<= 0 不限制
func (idx *Index) SimilarUsers(
	ctx context.Context,
	userID string,
	minSimilarity float64,
	maxResults int,
) ([]core.SimilarityResult, error) {
	if idx.Log == nil || userID == "" {
		return nil, nil
	}

	target, err := idx.Vector(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(target) == 0 {
		// 无交互的冷启动用户：没有协同信号，不是错误
		return nil, nil
	}

	allUsers, err := idx.Log.GetAllUsers(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]core.SimilarityResult, 0, len(allUsers))
	for _, otherID := range allUsers {
		if otherID == userID {
			continue // 跳过自己
		}

		other, err := idx.Vector(ctx, otherID)
		if err != nil || len(other) == 0 {
			continue
		}

		sim := vector.Cosine(map[string]float64(target), map[string]float64(other))
		if sim < minSimilarity || sim <= 0 {
			continue
		}
		results = append(results, core.SimilarityResult{UserID: otherID, Score: sim})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].UserID < results[j].UserID
	})

	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}
	for i := range results {
		results[i].Rank = i + 1
	}
	return results, nil
}
