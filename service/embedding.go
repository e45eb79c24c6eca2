// Package service 提供外部服务客户端：Embedding 等在线依赖的 HTTP 实现。
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rushteam/tripkit/core"
)

// HTTPEmbeddingClient 是文本向量化服务的 HTTP 客户端实现。
//
// 协议约定（与主流 embedding serving 服务一致）：
//
//	POST {Endpoint}/v1/embeddings
//	请求: {"model": "...", "input": "text"}
//	响应: {"data": [{"embedding": [0.1, 0.2, ...]}]}
//
// 服务不可达/超时返回 core.ErrEmbedUnavailable，排序链路据此降级为
// 无语义信号的部分结果。
type HTTPEmbeddingClient struct {
	// Endpoint 服务端点，例如 "http://localhost:8080"
	Endpoint string

	// Model 模型名称，透传给服务端
	Model string

	// Timeout 超时时间
	Timeout time.Duration

	httpClient *http.Client
}

// NewHTTPEmbeddingClient 创建一个新的 Embedding 服务客户端。
func NewHTTPEmbeddingClient(endpoint string, opts ...EmbeddingOption) *HTTPEmbeddingClient {
	client := &HTTPEmbeddingClient{
		Endpoint: endpoint,
		Timeout:  10 * time.Second,
	}

	for _, opt := range opts {
		opt(client)
	}

	client.httpClient = &http.Client{
		Timeout: client.Timeout,
	}

	return client
}

// EmbeddingOption Embedding 客户端配置选项
type EmbeddingOption func(*HTTPEmbeddingClient)

// WithEmbeddingModel 设置模型名称
func WithEmbeddingModel(model string) EmbeddingOption {
	return func(c *HTTPEmbeddingClient) {
		c.Model = model
	}
}

// WithEmbeddingTimeout 设置超时时间
func WithEmbeddingTimeout(timeout time.Duration) EmbeddingOption {
	return func(c *HTTPEmbeddingClient) {
		c.Timeout = timeout
	}
}

var _ core.Embedder = (*HTTPEmbeddingClient)(nil)

type embeddingRequest struct {
	Model string `json:"model,omitempty"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed 将文本转为定长向量。
func (c *HTTPEmbeddingClient) Embed(ctx context.Context, text string) ([]float64, error) {
	if text == "" {
		return nil, core.NewDomainError(core.ModuleEmbed, core.ErrorCodeInvalidInput,
			"embed: text is required")
	}

	jsonData, err := json.Marshal(embeddingRequest{Model: c.Model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := c.Endpoint
	if len(url) > 0 && url[len(url)-1] != '/' {
		url += "/"
	}
	url += "v1/embeddings"

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, core.ErrEmbedUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		if resp.StatusCode >= 500 {
			return nil, core.ErrEmbedUnavailable
		}
		return nil, fmt.Errorf("embedding service returned %d: %s", resp.StatusCode, body)
	}

	var result embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(result.Data) == 0 || len(result.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("embedding service returned empty vector")
	}

	return result.Data[0].Embedding, nil
}

// Close 释放空闲连接。
func (c *HTTPEmbeddingClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
