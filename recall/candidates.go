// Package recall 提供候选地点的召回 Node。
package recall

import (
	"context"
	"sort"

	"github.com/rushteam/tripkit/core"
	"github.com/rushteam/tripkit/pipeline"
	"github.com/rushteam/tripkit/pkg/conv"
	"github.com/rushteam/tripkit/pkg/geo"
	"github.com/rushteam/tripkit/pkg/utils"
	"github.com/rushteam/tripkit/pkg/vector"
)

const (
	defaultDesiredCount    = 20
	defaultOverfetchFactor = 3
)

// CandidateSelector 从地点目录召回候选集。
//
// 召回原则：宽进严出。画像偏好只作软信号（用于召回内排序），不做硬过滤——
// 硬约束（无障碍、已交互）留给下游 filter 阶段；候选量按 DesiredCount 的
// OverfetchFactor 倍超采，给下游过滤留出余量。
type CandidateSelector struct {
	Catalog  core.Catalog
	Profiles core.ProfileStore

	// DesiredCount 最终期望候选数；<= 0 用默认 20
	DesiredCount int

	// OverfetchFactor 超采倍数；<= 0 用默认 3
	OverfetchFactor int
}

var _ pipeline.Node = (*CandidateSelector)(nil)

func (s *CandidateSelector) Name() string        { return "recall.candidates" }
func (s *CandidateSelector) Kind() pipeline.Kind { return pipeline.KindRecall }

func (s *CandidateSelector) desiredCount(rctx *core.RecommendContext) int {
	if n := conv.ConfigGetInt(rctx.Params, "count", 0); n > 0 {
		return n
	}
	if s.DesiredCount > 0 {
		return s.DesiredCount
	}
	return defaultDesiredCount
}

func (s *CandidateSelector) overfetch() int {
	if s.OverfetchFactor > 0 {
		return s.OverfetchFactor
	}
	return defaultOverfetchFactor
}

// Process 召回候选。输入 candidates 被忽略（recall 是链路起点）。
func (s *CandidateSelector) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Candidate,
) ([]*core.Candidate, error) {
	if s.Catalog == nil {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeUnavailable,
			"recall: catalog is not configured")
	}

	profile := rctx.User
	if profile == nil && s.Profiles != nil && rctx.UserID != "" {
		p, err := s.Profiles.GetUserProfile(ctx, rctx.UserID)
		if err != nil && !core.IsNotFound(err) {
			return nil, err
		}
		profile = p
		rctx.User = p
	}

	filter := s.buildFilter(rctx)
	places, err := s.Catalog.ListPlaces(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(places) == 0 {
		// 目录无匹配：空候选集，不是错误
		return []*core.Candidate{}, nil
	}

	candidates := make([]*core.Candidate, 0, len(places))
	for _, p := range places {
		c := core.NewCandidate(p)
		c.PutLabel("recall_source", utils.Label{Value: "catalog", Source: s.Name()})
		candidates = append(candidates, c)
	}

	// 画像偏好作为软信号对召回集排序，保证超采截断时偏好对齐的地点优先保留
	if profile != nil && len(profile.Preferences) > 0 {
		pref := profile.PreferenceVector()
		align := make(map[string]float64, len(candidates))
		for _, c := range candidates {
			align[c.Place.ID] = vector.Cosine(pref, c.Place.FeatureVector())
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			ai, aj := align[candidates[i].Place.ID], align[candidates[j].Place.ID]
			if ai != aj {
				return ai > aj
			}
			return candidates[i].Place.ID < candidates[j].Place.ID
		})
	}

	limit := s.desiredCount(rctx) * s.overfetch()
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// buildFilter 把请求参数转成目录过滤条件。
// 只下推粗过滤（类别、地理半径）；无障碍等硬约束由 filter 阶段处理。
func (s *CandidateSelector) buildFilter(rctx *core.RecommendContext) *core.PlaceFilter {
	filter := &core.PlaceFilter{}

	if cat := conv.ConfigGet(rctx.Params, "category", ""); cat != "" {
		filter.Category = cat
	}

	lat, latOK := conv.ToFloat64(paramsGet(rctx, "latitude"))
	lng, lngOK := conv.ToFloat64(paramsGet(rctx, "longitude"))
	radius := conv.ConfigGetFloat(rctx.Params, "radius_km", 0)
	if latOK && lngOK && radius > 0 {
		center := geo.Coordinate{Lat: lat, Lng: lng}
		filter.Center = &center
		filter.RadiusKm = radius
	}

	return filter
}

func paramsGet(rctx *core.RecommendContext, key string) any {
	if rctx == nil || rctx.Params == nil {
		return nil
	}
	return rctx.Params[key]
}
