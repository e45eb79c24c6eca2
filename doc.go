// Package tripkit 是一个旅行目的地推荐工具包（Trip Kit）。
//
// 设计要点：
// - Pipeline-first: 推荐逻辑通过 Node 串联（Recall → Filter → Rank → ReRank）
// - 多信号融合: 协同过滤 / 内容匹配 / 语义匹配按可用性做权重再分配
// - 存储可见的缓存协调: 单写者重算 + TTL 锁 + 过期回退
// - 行程规划: 约束筛选 + 贪心就近成路
package tripkit

import "github.com/rushteam/tripkit/pipeline"

// 轻量 facade：便于用户直接 import "tripkit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
