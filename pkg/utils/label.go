// Package utils 提供链路通用的小工具。
package utils

// Label 是候选地点在链路中携带的解释性标记：哪个阶段、因为什么。
// Value 与 Source 的语义由业务自定义，tripkit 只提供标准化的合并规则。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // recall / filter / rank / rerank / cache ...
}

// MergeLabel 合并同名 Label，保留历史以便追踪。
// Value 以 '|' 累积，Source 以 ',' 累积。
func MergeLabel(existing Label, incoming Label) Label {
	if existing.Value == "" {
		return incoming
	}
	if incoming.Value == "" {
		return existing
	}

	merged := existing
	merged.Value = existing.Value + "|" + incoming.Value
	switch {
	case existing.Source == "":
		merged.Source = incoming.Source
	case incoming.Source == "":
		merged.Source = existing.Source
	default:
		merged.Source = existing.Source + "," + incoming.Source
	}
	return merged
}
