package core

import "github.com/rushteam/tripkit/pkg/utils"

// RecommendContext 承载一次推荐请求的用户/场景信息，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	UserID string
	Scene  string

	// Query 是自由文本查询，已经过上游翻译/语言检测归一化；为空表示无语义信号
	Query string

	// User 是强类型用户画像；为空时由各 Node 自行从 ProfileStore 取
	User *UserProfile

	// Labels 是请求级标签，可驱动链路行为
	Labels map[string]utils.Label

	// Params 请求级上下文参数：latitude / longitude / radius_km / count 等
	Params map[string]any
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
