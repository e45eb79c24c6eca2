package tripkit

import (
	"context"

	"github.com/rushteam/tripkit/cache"
	"github.com/rushteam/tripkit/core"
	"github.com/rushteam/tripkit/filter"
	"github.com/rushteam/tripkit/interaction"
	"github.com/rushteam/tripkit/pipeline"
	"github.com/rushteam/tripkit/rank"
	"github.com/rushteam/tripkit/recall"
	"github.com/rushteam/tripkit/rerank"
	"github.com/rushteam/tripkit/roadmap"
)

// Recorder 是交互写入接口，由 interaction.StoreLog 等实现。
type Recorder interface {
	Record(ctx context.Context, rec *core.Interaction) error
}

// Engine 是推荐引擎 facade：把召回/过滤/融合排序/缓存/行程规划组装成
// 开箱即用的入口。需要精细控制时直接用 pipeline 组装各 Node。
type Engine struct {
	// Catalog 地点目录（必须）
	Catalog core.Catalog

	// Profiles 用户画像存储（可选；缺失时内容信号不可用）
	Profiles core.ProfileStore

	// Interactions 交互索引（可选；缺失时协同信号不可用）
	Interactions *interaction.Index

	// Recorder 交互写入（可选；RecordInteraction 需要）
	Recorder Recorder

	// Embedder 文本向量化服务（可选；缺失时语义信号不可用）
	Embedder core.Embedder

	// Cache 缓存协调器（可选；缺失时每次请求都重新计算）
	Cache *cache.Coordinator

	// ExtraFilters 追加在内置过滤器之后的自定义过滤器
	ExtraFilters []filter.Filter

	// Weights 融合权重；零值用 rank.DefaultWeights
	Weights rank.Weights

	// Config 默认参数；为 nil 用 core.DefaultRecommendConfig
	Config core.RecommendConfig

	// Roadmaps 行程规划器；为 nil 时按需创建
	Roadmaps *roadmap.Builder
}

func (e *Engine) config() core.RecommendConfig {
	if e.Config != nil {
		return e.Config
	}
	return &core.DefaultRecommendConfig{}
}

func (e *Engine) roadmaps() *roadmap.Builder {
	if e.Roadmaps != nil {
		return e.Roadmaps
	}
	return roadmap.NewBuilder(e.Catalog)
}

// buildPipeline 组装一次请求的推荐链路。
// InteractedFilter 带请求内 memo，必须每个请求新建。
func (e *Engine) buildPipeline() *pipeline.Pipeline {
	filters := make([]filter.Filter, 0, 2+len(e.ExtraFilters))
	if e.Interactions != nil {
		filters = append(filters, filter.NewInteractedFilter(e.Interactions))
	}
	filters = append(filters, &filter.AccessibilityFilter{})
	filters = append(filters, e.ExtraFilters...)

	return &pipeline.Pipeline{
		Nodes: []pipeline.Node{
			&recall.CandidateSelector{
				Catalog:         e.Catalog,
				Profiles:        e.Profiles,
				DesiredCount:    e.config().DefaultCandidateCount(),
				OverfetchFactor: e.config().DefaultOverfetchFactor(),
			},
			&filter.FilterNode{Filters: filters},
			&rank.FusionNode{
				Index:    e.Interactions,
				Embedder: e.Embedder,
				Weights:  e.Weights,
				Config:   e.Config,
			},
			&rerank.TopNNode{N: e.config().DefaultCandidateCount()},
		},
	}
}

func (e *Engine) compute(ctx context.Context, rctx *core.RecommendContext) ([]core.ScoredPlace, error) {
	candidates, err := e.buildPipeline().Run(ctx, rctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]core.ScoredPlace, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.Scored())
	}
	return out, nil
}

// GetRecommendations 返回用户的 Top-N 推荐结果。
//
// query 为空的请求走缓存协调（每个用户一个缓存条目）；带 query 的请求
// 结果依赖查询文本，绕过缓存直接计算。
// count <= 0 使用默认候选数。
func (e *Engine) GetRecommendations(
	ctx context.Context,
	userID string,
	count int,
	query string,
) ([]core.ScoredPlace, error) {
	if userID == "" {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput,
			"recommend: user id is required")
	}
	if count <= 0 {
		count = e.config().DefaultCandidateCount()
	}

	rctx := &core.RecommendContext{
		UserID: userID,
		Query:  query,
		Params: map[string]any{"count": count},
	}

	if query == "" && e.Cache != nil {
		return e.Cache.Get(ctx, userID, func(ctx context.Context) ([]core.ScoredPlace, error) {
			return e.compute(ctx, rctx)
		})
	}
	return e.compute(ctx, rctx)
}

// GetRoadmap 基于推荐结果规划行程。
// constraints.PlaceIDs 非空时直接用指定地点，否则用 Top 推荐地点。
func (e *Engine) GetRoadmap(
	ctx context.Context,
	userID string,
	constraints *core.RoadmapConstraints,
) (*core.Roadmap, error) {
	if userID == "" {
		return nil, core.NewDomainError(core.ModuleRoadmap, core.ErrorCodeInvalidInput,
			"roadmap: user id is required")
	}

	var profile *core.UserProfile
	if e.Profiles != nil {
		p, err := e.Profiles.GetUserProfile(ctx, userID)
		if err != nil && !core.IsNotFound(err) {
			return nil, err
		}
		profile = p
	}
	if profile == nil {
		profile = &core.UserProfile{UserID: userID}
	}

	var places []*core.Place
	if constraints == nil || len(constraints.PlaceIDs) == 0 {
		scored, err := e.GetRecommendations(ctx, userID, 0, "")
		if err != nil {
			return nil, err
		}
		places = make([]*core.Place, 0, len(scored))
		for _, sp := range scored {
			p, err := e.Catalog.GetPlace(ctx, sp.PlaceID)
			if err != nil {
				if core.IsNotFound(err) {
					continue
				}
				return nil, err
			}
			places = append(places, p)
		}
	}

	return e.roadmaps().Build(ctx, profile, places, constraints)
}

// RecordInteraction 记录一条交互并失效该用户的缓存条目。
func (e *Engine) RecordInteraction(ctx context.Context, rec *core.Interaction) error {
	if e.Recorder == nil {
		return core.NewDomainError(core.ModuleInteraction, core.ErrorCodeUnavailable,
			"interaction: recorder is not configured")
	}
	if err := e.Recorder.Record(ctx, rec); err != nil {
		return err
	}
	if e.Cache != nil && rec != nil {
		return e.Cache.Invalidate(ctx, rec.UserID)
	}
	return nil
}
