// Package rank 提供多信号融合排序 Node。
package rank

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/tripkit/core"
	"github.com/rushteam/tripkit/interaction"
	"github.com/rushteam/tripkit/pipeline"
	"github.com/rushteam/tripkit/pkg/vector"
)

// Weights 是三路信号的融合权重。
type Weights struct {
	Collaborative float64
	Content       float64
	Semantic      float64
}

// DefaultWeights 返回默认融合权重。
func DefaultWeights() Weights {
	return Weights{Collaborative: 0.5, Content: 0.3, Semantic: 0.2}
}

// FusionNode 是多信号融合排序 Node：协同过滤、内容匹配、语义匹配三路
// 信号加权融合为最终得分。
//
// 信号缺失的处理是这里的关键语义：缺失（冷启动没有相似用户、请求没有
// query）不等于得分为 0。缺失信号的权重按比例再分配到可用信号上，
// 保证冷启动用户不会因为协同信号缺位被系统性压分。
//
// 打分是纯函数式的：只写入 Candidate 的得分字段，不修改画像/交互日志。
type FusionNode struct {
	// Index 提供相似用户与交互向量；为 nil 时协同信号整体缺失
	Index *interaction.Index

	// Embedder 提供 query 文本向量化；为 nil 或请求无 query 时语义信号缺失
	Embedder core.Embedder

	// TopKSimilarUsers 协同信号考虑的相似用户数；<= 0 用默认
	TopKSimilarUsers int

	// MinSimilarity 相似用户的相似度硬下限；<= 0 用默认
	MinSimilarity float64

	// Weights 三路信号权重；零值用 DefaultWeights
	Weights Weights

	// Config 提供默认参数；为 nil 用 core.DefaultRecommendConfig
	Config core.RecommendConfig
}

var _ pipeline.Node = (*FusionNode)(nil)

func (n *FusionNode) Name() string        { return "rank.fusion" }
func (n *FusionNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *FusionNode) config() core.RecommendConfig {
	if n.Config != nil {
		return n.Config
	}
	return &core.DefaultRecommendConfig{}
}

func (n *FusionNode) topK() int {
	if n.TopKSimilarUsers > 0 {
		return n.TopKSimilarUsers
	}
	return n.config().DefaultTopKSimilarUsers()
}

func (n *FusionNode) minSimilarity() float64 {
	if n.MinSimilarity > 0 {
		return n.MinSimilarity
	}
	return n.config().DefaultMinSimilarity()
}

func (n *FusionNode) weights() Weights {
	if n.Weights == (Weights{}) {
		return DefaultWeights()
	}
	return n.Weights
}

// Process 为候选打三路信号分并融合排序。
func (n *FusionNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	candidates []*core.Candidate,
) ([]*core.Candidate, error) {
	if len(candidates) == 0 {
		return candidates, nil
	}

	var (
		neighbors []core.SimilarityResult
		queryEmb  []float64
	)

	// 相似用户查询与 query 向量化相互独立，并发执行。
	// 交互存储是核心基础设施，出错即失败；Embedding 是外部服务，
	// 出错降级为无语义信号的部分结果。
	g, gctx := errgroup.WithContext(ctx)
	if n.Index != nil && rctx.UserID != "" {
		g.Go(func() error {
			results, err := n.Index.SimilarUsers(gctx, rctx.UserID, n.minSimilarity(), n.topK())
			if err != nil {
				return err
			}
			neighbors = results
			return nil
		})
	}
	if n.Embedder != nil && rctx.Query != "" {
		g.Go(func() error {
			emb, err := n.Embedder.Embed(gctx, rctx.Query)
			if err != nil {
				// 降级：语义信号缺失
				return nil
			}
			queryEmb = emb
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	n.scoreCollaborative(ctx, candidates, neighbors)
	n.scoreContent(rctx, candidates)
	n.scoreSemantic(candidates, queryEmb)
	n.fuse(candidates)

	// 确定性排序：融合分降序 -> 评分降序 -> ID 升序
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		if candidates[i].Place.Rating != candidates[j].Place.Rating {
			return candidates[i].Place.Rating > candidates[j].Place.Rating
		}
		return candidates[i].Place.ID < candidates[j].Place.ID
	})
	for i, c := range candidates {
		c.Rank = i + 1
	}
	return candidates, nil
}

// scoreCollaborative 计算协同信号：相似用户对候选地点的加权平均兴趣，
// 再按候选集内的最大值归一化到 [0, 1]。没有相似用户时信号整体缺失。
func (n *FusionNode) scoreCollaborative(
	ctx context.Context,
	candidates []*core.Candidate,
	neighbors []core.SimilarityResult,
) {
	if n.Index == nil || len(neighbors) == 0 {
		return
	}

	// 每个相似用户的交互向量只取一次
	vectors := make(map[string]core.InteractionVector, len(neighbors))
	var simSum float64
	for _, nb := range neighbors {
		vec, err := n.Index.Vector(ctx, nb.UserID)
		if err != nil {
			continue
		}
		vectors[nb.UserID] = vec
		simSum += nb.Score
	}
	if simSum == 0 {
		return
	}

	var maxScore float64
	raw := make([]float64, len(candidates))
	for i, c := range candidates {
		var weighted float64
		for _, nb := range neighbors {
			if vec, ok := vectors[nb.UserID]; ok {
				weighted += nb.Score * vec[c.Place.ID]
			}
		}
		raw[i] = weighted / simSum
		if raw[i] > maxScore {
			maxScore = raw[i]
		}
	}
	if maxScore == 0 {
		// 相似用户没有触达任何候选：信号存在但全为 0
		for _, c := range candidates {
			c.Collaborative = 0
			c.CollaborativeOK = true
		}
		return
	}

	for i, c := range candidates {
		c.Collaborative = raw[i] / maxScore
		c.CollaborativeOK = true
	}
}

// scoreContent 计算内容信号：画像偏好向量与地点特征向量的余弦相似度。
// 画像缺失或无显式偏好时信号缺失。
func (n *FusionNode) scoreContent(rctx *core.RecommendContext, candidates []*core.Candidate) {
	if rctx.User == nil || len(rctx.User.Preferences) == 0 {
		return
	}
	pref := rctx.User.PreferenceVector()
	for _, c := range candidates {
		sim := vector.Cosine(pref, c.Place.FeatureVector())
		if sim < 0 {
			sim = 0
		}
		c.Content = sim
		c.ContentOK = true
	}
}

// scoreSemantic 计算语义信号：query 向量与地点描述向量的余弦相似度，
// 负值截断为 0。query 缺失/Embedding 失败/地点无向量时信号缺失。
func (n *FusionNode) scoreSemantic(candidates []*core.Candidate, queryEmb []float64) {
	if len(queryEmb) == 0 {
		return
	}
	for _, c := range candidates {
		if len(c.Place.Embedding) == 0 {
			continue
		}
		sim := vector.CosineDense(queryEmb, c.Place.Embedding)
		if sim < 0 {
			sim = 0
		}
		c.Semantic = sim
		c.SemanticOK = true
	}
}

// fuse 按可用信号做权重再分配后加权求和。
func (n *FusionNode) fuse(candidates []*core.Candidate) {
	w := n.weights()
	for _, c := range candidates {
		var total, score float64
		if c.CollaborativeOK {
			total += w.Collaborative
		}
		if c.ContentOK {
			total += w.Content
		}
		if c.SemanticOK {
			total += w.Semantic
		}
		if total == 0 {
			c.Score = 0
			continue
		}
		if c.CollaborativeOK {
			score += w.Collaborative / total * c.Collaborative
		}
		if c.ContentOK {
			score += w.Content / total * c.Content
		}
		if c.SemanticOK {
			score += w.Semantic / total * c.Semantic
		}
		c.Score = score
	}
}
