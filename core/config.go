package core

import "time"

// RecommendConfig 提供推荐链路各环节的默认参数。
type RecommendConfig interface {
	// DefaultTopKSimilarUsers 协同信号考虑的 TopK 相似用户数
	DefaultTopKSimilarUsers() int

	// DefaultMinSimilarity 相似用户的相似度硬下限
	DefaultMinSimilarity() float64

	// DefaultCandidateCount 候选集目标数量
	DefaultCandidateCount() int

	// DefaultOverfetchFactor 候选超取倍数（为后续过滤留余量）
	DefaultOverfetchFactor() int

	// DefaultFreshness 缓存条目的新鲜窗口
	DefaultFreshness() time.Duration

	// DefaultLockTTL 缓存重算锁的过期时间（持有者崩溃后的恢复上限）
	DefaultLockTTL() time.Duration

	// DefaultLockWait 等待他人重算结果的时间上限
	DefaultLockWait() time.Duration
}

// DefaultRecommendConfig 是默认配置实现。
type DefaultRecommendConfig struct{}

func (c *DefaultRecommendConfig) DefaultTopKSimilarUsers() int { return 20 }

func (c *DefaultRecommendConfig) DefaultMinSimilarity() float64 { return 0.1 }

func (c *DefaultRecommendConfig) DefaultCandidateCount() int { return 20 }

func (c *DefaultRecommendConfig) DefaultOverfetchFactor() int { return 3 }

func (c *DefaultRecommendConfig) DefaultFreshness() time.Duration { return 5 * time.Minute }

func (c *DefaultRecommendConfig) DefaultLockTTL() time.Duration { return 30 * time.Second }

func (c *DefaultRecommendConfig) DefaultLockWait() time.Duration { return 2 * time.Second }
