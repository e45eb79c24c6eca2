// Package vector 提供推荐链路中通用的向量相似度计算。
// 稀疏向量用 map[string]float64 表示（只存非零项），稠密向量用 []float64 表示。
package vector

import "math"

// Cosine 计算两个稀疏向量的余弦相似度，返回值域 [-1, 1]。
//
// 约定：
//   - 键域为两个向量键的并集，缺失的键按 0 处理
//   - 任一向量模长为 0 时返回 0（零交互用户/物品是常态，不是异常路径）
//   - 满足交换律：Cosine(a, b) == Cosine(b, a)
func Cosine(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	// 只需遍历 a 的键计算点积：b 中 a 没有的键对点积贡献为 0
	var dot, normA, normB float64
	for k, va := range a {
		dot += va * b[k]
		normA += va * va
	}
	for _, vb := range b {
		normB += vb * vb
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// CosineDense 计算两个稠密向量的余弦相似度（用于 embedding 比较）。
// 长度不一致时按较短的长度对齐计算，模长为 0 时返回 0。
func CosineDense(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	for _, v := range a {
		normA += v * v
	}
	for _, v := range b {
		normB += v * v
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Norm 计算稀疏向量的 L2 模长。
func Norm(v map[string]float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
