package core

import (
	"fmt"

	"github.com/rushteam/tripkit/pkg/geo"
)

// maxBudgetLevel 是预算档位上限（1-4 档），用于特征空间的归一化。
const maxBudgetLevel = 4

// Place 是目的地地点的核心实体。
// 除评分与描述会被评论摄入更新外，其余字段视为不可变。
type Place struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Category    string         `json:"category"`
	Tags        []string       `json:"tags"`
	Rating      float64        `json:"rating"`       // 平均评分，0-5
	BudgetLevel int            `json:"budget_level"` // 预算档位，1-4
	Location    geo.Coordinate `json:"location"`
	Accessibility []string     `json:"accessibility"` // 无障碍属性集合
	Description string         `json:"description,omitempty"`

	// Embedding 是描述文本的预计算向量，由外部 Embedding 服务产出，这里视为不透明的定长向量。
	Embedding []float64 `json:"embedding,omitempty"`
}

// FeatureVector 将地点编码为用户/地点共享的特征空间。
//
// 特征键词表（版本化约定，与 UserProfile.PreferenceVector 对齐）：
//   - "category:<name>" = 1
//   - "tag:<name>"      = 1
//   - "budget"          = 档位/4，缩放到 (0, 1]
func (p *Place) FeatureVector() map[string]float64 {
	features := make(map[string]float64, len(p.Tags)+2)
	if p.Category != "" {
		features["category:"+p.Category] = 1
	}
	for _, tag := range p.Tags {
		if tag != "" {
			features["tag:"+tag] = 1
		}
	}
	if p.BudgetLevel > 0 {
		features["budget"] = float64(p.BudgetLevel) / maxBudgetLevel
	}
	return features
}

// HasAccessibility 检查地点是否具备全部所需的无障碍属性。
func (p *Place) HasAccessibility(needs []string) bool {
	if len(needs) == 0 {
		return true
	}
	have := make(map[string]struct{}, len(p.Accessibility))
	for _, a := range p.Accessibility {
		have[a] = struct{}{}
	}
	for _, need := range needs {
		if _, ok := have[need]; !ok {
			return false
		}
	}
	return true
}

func (p *Place) String() string {
	return fmt.Sprintf("Place(%s, %s)", p.ID, p.Name)
}
