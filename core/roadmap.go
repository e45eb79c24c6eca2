package core

// RouteSegment 是行程中的一段：从一个地点到下一个地点。
type RouteSegment struct {
	FromID     string  `json:"from_id"`
	ToID       string  `json:"to_id"`
	DistanceKm float64 `json:"distance_km"`
	Seq        int     `json:"seq"` // 段序号，从 0 开始
}

// Roadmap 是规划好的行程：有序地点 + 相邻段距离。
// 不变式：TotalKm == 各 Segment.DistanceKm 之和。
type Roadmap struct {
	UserID   string         `json:"user_id"`
	Places   []*Place       `json:"places"` // 访问顺序
	Segments []RouteSegment `json:"segments"`
	TotalKm  float64        `json:"total_km"`
}

// RoadmapConstraints 是行程规划的约束条件。
type RoadmapConstraints struct {
	// BudgetLevel 预算档位；0 表示沿用用户画像
	BudgetLevel int

	// BudgetMandatory 为 true 时，预算兼容度为 0 的地点直接剔除；
	// 否则兼容度折算进排序分
	BudgetMandatory bool

	// AccessibilityNeeds 无障碍需求；为空时沿用用户画像
	AccessibilityNeeds []string

	// AccessibilityMandatory 为 true 时不兼容地点直接剔除
	AccessibilityMandatory bool

	// PlaceIDs 显式指定候选地点集合；为空时走候选筛选
	PlaceIDs []string

	// MaxPlaces 行程包含的最大地点数；<= 0 使用默认值
	MaxPlaces int
}
