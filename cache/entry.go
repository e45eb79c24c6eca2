// Package cache 提供推荐结果的缓存协调：新鲜度判定、单写者重算、过期回退。
package cache

import (
	"encoding/json"
	"time"

	"github.com/rushteam/tripkit/core"
)

// Entry 是单个用户的缓存条目：一份已排序的推荐结果及其计算时间。
// 每个用户最多一个条目，重算覆盖写，不追加历史。
type Entry struct {
	UserID     string             `json:"user_id"`
	Places     []core.ScoredPlace `json:"places"`
	ComputedAt time.Time          `json:"computed_at"`
}

// Fresh 判断条目在给定新鲜窗口内是否仍然新鲜。
func (e *Entry) Fresh(now time.Time, window time.Duration) bool {
	if e == nil {
		return false
	}
	return now.Sub(e.ComputedAt) < window
}

// Marshal 序列化条目（存储形式为 JSON）。
func (e *Entry) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalEntry 反序列化条目。
func UnmarshalEntry(data []byte) (*Entry, error) {
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
