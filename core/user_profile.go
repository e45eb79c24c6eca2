package core

import "time"

// UserProfile 是用户画像：显式偏好 + 预算/无障碍约束 + 收藏集合。
//
// 偏好向量的键使用与 Place.FeatureVector 相同的版本化词表
// （"category:<name>" / "tag:<name>" / "budget"），内容匹配才是良定义的。
type UserProfile struct {
	UserID string

	// Preferences 是显式偏好权重，key 为特征词表键，value 为权重 (0-1]
	Preferences map[string]float64

	// BudgetLevel 预算档位，1-4；0 表示未设置
	BudgetLevel int

	// AccessibilityNeeds 无障碍硬需求集合
	AccessibilityNeeds []string

	// SavedPlaces 收藏的地点 ID 集合
	SavedPlaces []string

	// UpdateTime 最后更新时间
	UpdateTime time.Time
}

// NewUserProfile 创建一个新的用户画像。
func NewUserProfile(userID string) *UserProfile {
	return &UserProfile{
		UserID:      userID,
		Preferences: make(map[string]float64),
		UpdateTime:  time.Now(),
	}
}

// PreferenceVector 输出用于相似度计算的偏好向量。
// 在显式偏好之上补充 "budget" 维度（与 Place.FeatureVector 的缩放一致）。
func (p *UserProfile) PreferenceVector() map[string]float64 {
	out := make(map[string]float64, len(p.Preferences)+1)
	for k, v := range p.Preferences {
		out[k] = v
	}
	if p.BudgetLevel > 0 {
		out["budget"] = float64(p.BudgetLevel) / maxBudgetLevel
	}
	return out
}

// SetPreference 更新一项偏好权重。
func (p *UserProfile) SetPreference(key string, weight float64) {
	if p.Preferences == nil {
		p.Preferences = make(map[string]float64)
	}
	p.Preferences[key] = weight
	p.UpdateTime = time.Now()
}

// HasSaved 检查地点是否已被收藏。
func (p *UserProfile) HasSaved(placeID string) bool {
	for _, id := range p.SavedPlaces {
		if id == placeID {
			return true
		}
	}
	return false
}

// PreferredCategories 返回偏好中出现过的类别名（去掉 "category:" 前缀）。
func (p *UserProfile) PreferredCategories() []string {
	const prefix = "category:"
	out := make([]string, 0, 4)
	for k := range p.Preferences {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			out = append(out, k[len(prefix):])
		}
	}
	return out
}
