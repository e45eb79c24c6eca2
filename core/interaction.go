package core

import "time"

// InteractionType 是交互行为类型。
type InteractionType string

const (
	InteractionView   InteractionType = "view"
	InteractionLike   InteractionType = "like"
	InteractionSave   InteractionType = "save"
	InteractionReview InteractionType = "review"
)

// DefaultTypeWeights 是各交互类型的默认隐式权重。
// 强度排序 save > review > like > view；具体数值是显式约定的常量，
// 可在 interaction.Index 上按业务覆盖。
func DefaultTypeWeights() map[InteractionType]float64 {
	return map[InteractionType]float64{
		InteractionView:   1,
		InteractionLike:   3,
		InteractionReview: 4,
		InteractionSave:   5,
	}
}

// Interaction 是一条用户-地点交互记录。只追加，不修改不删除。
type Interaction struct {
	UserID    string          `json:"user_id"`
	PlaceID   string          `json:"place_id"`
	Type      InteractionType `json:"type"`
	Timestamp time.Time       `json:"timestamp"`

	// Weight 是显式权重覆盖；为 0 时按类型权重表取值
	Weight float64 `json:"weight,omitempty"`
}

// InteractionVector 是按地点累积的交互权重向量（派生数据，稀疏存储）。
// key 为地点 ID，value 为累积权重；只存非零项。
type InteractionVector map[string]float64
