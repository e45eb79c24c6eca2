// Package feature 提供用户/地点特征的获取与画像适配。
package feature

import (
	"context"
	"encoding/json"

	"github.com/rushteam/tripkit/core"
)

// Provider 是特征提供者接口：按实体 ID 取数值特征。
// 实现可以是特征平台（Feast）、存储适配（StoreProvider）或测试桩。
type Provider interface {
	// Name 返回提供者名称（用于日志/观测）
	Name() string

	// GetUserFeatures 获取用户特征
	GetUserFeatures(ctx context.Context, userID string) (map[string]float64, error)

	// GetPlaceFeatures 获取地点特征
	GetPlaceFeatures(ctx context.Context, placeID string) (map[string]float64, error)
}

// StoreProvider 是基于 core.Store 的特征提供者，特征以 JSON 存储。
//
// 存储布局：
//   - 用户特征：{UserPrefix}{userID} -> JSON(map[string]float64)
//   - 地点特征：{PlacePrefix}{placeID} -> JSON(map[string]float64)
type StoreProvider struct {
	Store core.Store

	// UserPrefix 用户特征 key 前缀；为空用 "user:features:"
	UserPrefix string

	// PlacePrefix 地点特征 key 前缀；为空用 "place:features:"
	PlacePrefix string
}

func NewStoreProvider(s core.Store) *StoreProvider {
	return &StoreProvider{
		Store:       s,
		UserPrefix:  "user:features:",
		PlacePrefix: "place:features:",
	}
}

var _ Provider = (*StoreProvider)(nil)

func (p *StoreProvider) Name() string { return "store" }

func (p *StoreProvider) get(ctx context.Context, key string) (map[string]float64, error) {
	data, err := p.Store.Get(ctx, key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return map[string]float64{}, nil
		}
		return nil, err
	}
	var features map[string]float64
	if err := json.Unmarshal(data, &features); err != nil {
		return nil, err
	}
	return features, nil
}

func (p *StoreProvider) GetUserFeatures(ctx context.Context, userID string) (map[string]float64, error) {
	return p.get(ctx, p.UserPrefix+userID)
}

func (p *StoreProvider) GetPlaceFeatures(ctx context.Context, placeID string) (map[string]float64, error) {
	return p.get(ctx, p.PlacePrefix+placeID)
}

// PutUserFeatures 写入用户特征（用于离线特征同步任务）。
func (p *StoreProvider) PutUserFeatures(ctx context.Context, userID string, features map[string]float64) error {
	data, err := json.Marshal(features)
	if err != nil {
		return err
	}
	return p.Store.Set(ctx, p.UserPrefix+userID, data)
}

// ProfileAdapter 把特征提供者适配为 core.ProfileStore：
// 用特征平台里的偏好特征动态拼出用户画像。特征名可通过 KeyMapping
// 映射到画像偏好词表（"category:<name>" / "tag:<name>" / "budget"）。
type ProfileAdapter struct {
	Provider Provider

	// KeyMapping 特征名 -> 偏好词表键；未出现的特征名保持原样
	KeyMapping map[string]string
}

var _ core.ProfileStore = (*ProfileAdapter)(nil)

func (a *ProfileAdapter) GetUserProfile(ctx context.Context, userID string) (*core.UserProfile, error) {
	features, err := a.Provider.GetUserFeatures(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(features) == 0 {
		return nil, core.ErrUserNotFound
	}

	profile := core.NewUserProfile(userID)
	for name, value := range features {
		key := name
		if mapped, ok := a.KeyMapping[name]; ok {
			key = mapped
		}
		if key == "budget" {
			profile.BudgetLevel = int(value)
			continue
		}
		profile.Preferences[key] = value
	}
	return profile, nil
}
