package core

import "context"

// Embedder 是文本向量化服务的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（service）实现
//   - 对相同输入返回确定的定长向量，其余语义不透明
//   - 输入文本已经过上游归一化（翻译/语言检测不在本层）
//
// 实现：
//   - service.HTTPEmbeddingClient 实现此接口
type Embedder interface {
	// Embed 将文本转为定长向量
	Embed(ctx context.Context, text string) ([]float64, error)

	// Close 关闭连接/释放资源
	Close() error
}

// ErrEmbedUnavailable 表示 Embedding 服务不可达（可重试；
// 排序链路会降级为无语义信号的部分结果，而不是整体失败）。
var ErrEmbedUnavailable = NewDomainError(ModuleEmbed, ErrorCodeUnavailable, "embed: service unavailable")
