package core

import "github.com/rushteam/tripkit/pkg/utils"

// Candidate 是推荐链路中的统一承载结构：地点、分项得分、融合得分、标签。
//
// 每路信号用 (score, available) 成对表示：信号缺失（冷启动用户没有相似用户、
// 请求没有 query 文本）与信号得分为 0 是两回事，融合时按可用信号做权重再分配，
// 避免系统性惩罚冷启动用户。
type Candidate struct {
	Place *Place

	// 分项得分与可用标记
	Collaborative   float64
	CollaborativeOK bool
	Content         float64
	ContentOK       bool
	Semantic        float64
	SemanticOK      bool

	// Score 是融合后的最终得分，Rank 是排序后的名次（从 1 开始）
	Score float64
	Rank  int

	Labels map[string]utils.Label
}

// NewCandidate 以地点为载体创建候选。
func NewCandidate(p *Place) *Candidate {
	return &Candidate{
		Place:  p,
		Labels: make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (c *Candidate) PutLabel(key string, lbl utils.Label) {
	if c.Labels == nil {
		c.Labels = make(map[string]utils.Label)
	}
	if old, ok := c.Labels[key]; ok {
		c.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	c.Labels[key] = lbl
}

// Scored 将候选压缩为可缓存/可返回的形式。
func (c *Candidate) Scored() ScoredPlace {
	return ScoredPlace{
		PlaceID:       c.Place.ID,
		Collaborative: c.Collaborative,
		Content:       c.Content,
		Semantic:      c.Semantic,
		Score:         c.Score,
		Rank:          c.Rank,
	}
}

// ScoredPlace 是融合排序的输出形式，也是缓存条目中持久化的形式。
type ScoredPlace struct {
	PlaceID       string  `json:"place_id"`
	Collaborative float64 `json:"collaborative,omitempty"`
	Content       float64 `json:"content,omitempty"`
	Semantic      float64 `json:"semantic,omitempty"`
	Score         float64 `json:"score"`
	Rank          int     `json:"rank"`
}

// SimilarityResult 是近邻用户查询的单条结果，只在请求内存活，不持久化。
type SimilarityResult struct {
	UserID string  // 相似用户
	Score  float64 // 相似度，余弦值域 [-1, 1]
	Rank   int     // 名次（从 1 开始）
}
