package feature

import (
	"context"

	feast "github.com/feast-dev/feast/sdk/go"
	"github.com/feast-dev/feast/sdk/go/protos/feast/types"

	"github.com/rushteam/tripkit/core"
)

// FeastProvider 是基于 Feast 特征平台的特征提供者。
// 偏好/统计类特征由离线链路写入 Feast，在线侧只读。
//
// 使用方式：
//
//	provider, err := feature.NewFeastProvider("localhost", 6566, "travel", feature.FeastRefs{
//	    UserFeatures:  []string{"user_stats:pref_culture", "user_stats:pref_nature"},
//	    PlaceFeatures: []string{"place_stats:popularity"},
//	})
type FeastProvider struct {
	client  *feast.GrpcClient
	project string
	refs    FeastRefs
}

// FeastRefs 是要拉取的特征引用集合（"feature_table:feature" 形式）。
type FeastRefs struct {
	UserFeatures  []string
	PlaceFeatures []string

	// UserEntityKey / PlaceEntityKey 实体键名；为空用 "user_id" / "place_id"
	UserEntityKey  string
	PlaceEntityKey string
}

// NewFeastProvider 创建 Feast 特征提供者（gRPC 连接 online serving）。
func NewFeastProvider(host string, port int, project string, refs FeastRefs) (*FeastProvider, error) {
	client, err := feast.NewGrpcClient(host, port)
	if err != nil {
		return nil, err
	}
	if refs.UserEntityKey == "" {
		refs.UserEntityKey = "user_id"
	}
	if refs.PlaceEntityKey == "" {
		refs.PlaceEntityKey = "place_id"
	}
	return &FeastProvider{
		client:  client,
		project: project,
		refs:    refs,
	}, nil
}

var _ Provider = (*FeastProvider)(nil)

func (p *FeastProvider) Name() string { return "feast" }

func (p *FeastProvider) GetUserFeatures(ctx context.Context, userID string) (map[string]float64, error) {
	return p.getOnline(ctx, p.refs.UserFeatures, p.refs.UserEntityKey, userID)
}

func (p *FeastProvider) GetPlaceFeatures(ctx context.Context, placeID string) (map[string]float64, error) {
	return p.getOnline(ctx, p.refs.PlaceFeatures, p.refs.PlaceEntityKey, placeID)
}

func (p *FeastProvider) getOnline(
	ctx context.Context,
	refs []string,
	entityKey, entityID string,
) (map[string]float64, error) {
	if len(refs) == 0 {
		return map[string]float64{}, nil
	}

	req := feast.OnlineFeaturesRequest{
		Features: refs,
		Entities: []feast.Row{{entityKey: feast.StrVal(entityID)}},
		Project:  p.project,
	}
	resp, err := p.client.GetOnlineFeatures(ctx, &req)
	if err != nil {
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeUnavailable,
			"feast: get online features failed: "+err.Error())
	}

	rows := resp.Rows()
	if len(rows) == 0 {
		return map[string]float64{}, nil
	}

	features := make(map[string]float64, len(rows[0]))
	for name, value := range rows[0] {
		if name == entityKey {
			continue
		}
		if fv, ok := valueToFloat64(value); ok {
			features[name] = fv
		}
	}
	return features, nil
}

// Close 关闭 gRPC 连接。
func (p *FeastProvider) Close() error {
	return p.client.Close()
}

// valueToFloat64 将 Feast 的 proto Value 转为 float64，非数值类型被跳过。
func valueToFloat64(v *types.Value) (float64, bool) {
	if v == nil {
		return 0, false
	}
	switch val := v.Val.(type) {
	case *types.Value_DoubleVal:
		return val.DoubleVal, true
	case *types.Value_FloatVal:
		return float64(val.FloatVal), true
	case *types.Value_Int64Val:
		return float64(val.Int64Val), true
	case *types.Value_Int32Val:
		return float64(val.Int32Val), true
	default:
		return 0, false
	}
}
