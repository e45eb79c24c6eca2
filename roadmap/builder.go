// Package roadmap 提供基于推荐结果的行程规划：约束筛选 + 贪心就近成路。
package roadmap

import (
	"context"
	"sort"

	"github.com/rushteam/tripkit/core"
	"github.com/rushteam/tripkit/pkg/geo"
)

const (
	// defaultMaxBudgetSpread 预算档位的最大跨度（1-4 档，跨度 3）
	defaultMaxBudgetSpread = 3

	defaultMaxPlaces = 8
)

// BudgetCompatibility 计算地点预算档位与用户预算档位的兼容度，值域 [0, 1]。
// 档位完全一致为 1，相差 maxSpread 档及以上为 0，线性衰减。
// 用户档位未设置（0）时视为完全兼容。
func BudgetCompatibility(placeLevel, userLevel, maxSpread int) float64 {
	if userLevel <= 0 || placeLevel <= 0 {
		return 1
	}
	if maxSpread <= 0 {
		maxSpread = defaultMaxBudgetSpread
	}

	diff := placeLevel - userLevel
	if diff < 0 {
		diff = -diff
	}
	compat := 1 - float64(diff)/float64(maxSpread)
	if compat < 0 {
		return 0
	}
	return compat
}

// Builder 是行程规划器：对已排序的推荐地点做约束筛选，再用贪心就近
// 策略串成一条路线。
//
// 路线策略：从排名最高的地点出发，每步选择离当前位置最近的未访问
// 地点。不是最优旅行商解，但对 10 个以内的地点足够好且完全确定。
type Builder struct {
	// Catalog 用于解析 constraints.PlaceIDs；仅传入地点列表时可为 nil
	Catalog core.Catalog

	// MaxBudgetSpread 预算兼容度的最大档位跨度；<= 0 用默认 3
	MaxBudgetSpread int

	// MaxPlaces 行程默认最大地点数；<= 0 用默认 8
	MaxPlaces int
}

func NewBuilder(catalog core.Catalog) *Builder {
	return &Builder{Catalog: catalog}
}

func (b *Builder) maxSpread() int {
	if b.MaxBudgetSpread > 0 {
		return b.MaxBudgetSpread
	}
	return defaultMaxBudgetSpread
}

// Build 规划行程。places 是按推荐排名有序的地点列表；constraints 可为 nil。
// 约束筛选后没有幸存地点时返回空行程，不是错误。
func (b *Builder) Build(
	ctx context.Context,
	user *core.UserProfile,
	places []*core.Place,
	constraints *core.RoadmapConstraints,
) (*core.Roadmap, error) {
	if constraints == nil {
		constraints = &core.RoadmapConstraints{}
	}

	userID := ""
	if user != nil {
		userID = user.UserID
	}

	// 显式指定的地点集合优先于推荐列表
	if len(constraints.PlaceIDs) > 0 && b.Catalog != nil {
		resolved, err := b.resolvePlaces(ctx, constraints.PlaceIDs)
		if err != nil {
			return nil, err
		}
		places = resolved
	}

	survivors := b.applyConstraints(user, places, constraints)

	maxPlaces := constraints.MaxPlaces
	if maxPlaces <= 0 {
		maxPlaces = b.MaxPlaces
	}
	if maxPlaces <= 0 {
		maxPlaces = defaultMaxPlaces
	}
	if len(survivors) > maxPlaces {
		survivors = survivors[:maxPlaces]
	}

	if len(survivors) == 0 {
		return &core.Roadmap{UserID: userID, Places: []*core.Place{}}, nil
	}

	return b.route(userID, survivors)
}

func (b *Builder) resolvePlaces(ctx context.Context, ids []string) ([]*core.Place, error) {
	out := make([]*core.Place, 0, len(ids))
	for _, id := range ids {
		p, err := b.Catalog.GetPlace(ctx, id)
		if err != nil {
			if core.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// applyConstraints 做约束筛选，保持输入的排名顺序。
// 非强制约束以调序的方式生效：满足无障碍需求的排前面，预算兼容度高的
// 排前面，其余保持原排名（稳定排序）。
func (b *Builder) applyConstraints(
	user *core.UserProfile,
	places []*core.Place,
	constraints *core.RoadmapConstraints,
) []*core.Place {
	budgetLevel := constraints.BudgetLevel
	if budgetLevel <= 0 && user != nil {
		budgetLevel = user.BudgetLevel
	}

	needs := constraints.AccessibilityNeeds
	if len(needs) == 0 && user != nil {
		needs = user.AccessibilityNeeds
	}

	out := make([]*core.Place, 0, len(places))
	for _, p := range places {
		if p == nil {
			continue
		}
		if constraints.AccessibilityMandatory && !p.HasAccessibility(needs) {
			continue
		}
		if constraints.BudgetMandatory &&
			BudgetCompatibility(p.BudgetLevel, budgetLevel, b.maxSpread()) == 0 {
			continue
		}
		out = append(out, p)
	}

	softAccess := !constraints.AccessibilityMandatory && len(needs) > 0
	softBudget := !constraints.BudgetMandatory && budgetLevel > 0
	if softAccess || softBudget {
		sort.SliceStable(out, func(i, j int) bool {
			if softAccess {
				ai, aj := out[i].HasAccessibility(needs), out[j].HasAccessibility(needs)
				if ai != aj {
					return ai
				}
			}
			if softBudget {
				ci := BudgetCompatibility(out[i].BudgetLevel, budgetLevel, b.maxSpread())
				cj := BudgetCompatibility(out[j].BudgetLevel, budgetLevel, b.maxSpread())
				return ci > cj
			}
			return false
		})
	}

	return out
}

// route 贪心就近成路：从列表首位（排名最高）出发，每步选最近的未访问
// 地点；距离并列时选列表中靠前（排名更高）的，保证结果确定。
func (b *Builder) route(userID string, places []*core.Place) (*core.Roadmap, error) {
	visited := make([]bool, len(places))
	order := make([]*core.Place, 0, len(places))

	current := 0
	visited[0] = true
	order = append(order, places[0])

	segments := make([]core.RouteSegment, 0, len(places)-1)
	var totalKm float64

	for len(order) < len(places) {
		next := -1
		var nextDist float64

		for i, p := range places {
			if visited[i] {
				continue
			}
			dist, err := geo.Haversine(places[current].Location, p.Location)
			if err != nil {
				return nil, err
			}
			if next == -1 || dist < nextDist {
				next = i
				nextDist = dist
			}
		}

		segments = append(segments, core.RouteSegment{
			FromID:     places[current].ID,
			ToID:       places[next].ID,
			DistanceKm: nextDist,
			Seq:        len(segments),
		})
		totalKm += nextDist

		visited[next] = true
		order = append(order, places[next])
		current = next
	}

	return &core.Roadmap{
		UserID:   userID,
		Places:   order,
		Segments: segments,
		TotalKm:  totalKm,
	}, nil
}
