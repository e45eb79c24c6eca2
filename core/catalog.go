package core

import (
	"context"

	"github.com/rushteam/tripkit/pkg/geo"
)

// PlaceFilter 是目录查询的粗粒度过滤条件，全部为可选项。
type PlaceFilter struct {
	// Category 限定类别；为空不限定
	Category string

	// Categories 限定多个类别（与 Category 任一命中即可）
	Categories []string

	// Tags 要求与地点标签有交集；为空不限定
	Tags []string

	// Center + RadiusKm 限定地理半径；Center 为 nil 不限定
	Center   *geo.Coordinate
	RadiusKm float64

	// Accessibility 要求地点具备全部列出的无障碍属性
	Accessibility []string

	// MaxResults 限制返回数量；<= 0 不限制
	MaxResults int
}

// Catalog 是地点目录的领域接口，由外部目录服务/存储实现。
type Catalog interface {
	// ListPlaces 按过滤条件列出地点。无匹配时返回空列表，不是错误。
	ListPlaces(ctx context.Context, filter *PlaceFilter) ([]*Place, error)

	// GetPlace 按 ID 获取地点；不存在时返回 NOT_FOUND
	GetPlace(ctx context.Context, placeID string) (*Place, error)
}

// ProfileStore 是用户画像存储的领域接口。
type ProfileStore interface {
	// GetUserProfile 获取用户画像；不存在时返回 NOT_FOUND
	GetUserProfile(ctx context.Context, userID string) (*UserProfile, error)
}

// Catalog / Profile 错误定义
var (
	ErrPlaceNotFound = NewDomainError(ModuleCatalog, ErrorCodeNotFound, "catalog: place not found")
	ErrUserNotFound  = NewDomainError(ModuleCatalog, ErrorCodeNotFound, "catalog: user not found")
)
