// Package redis 提供基于 Redis 的扩展组件：到访历史布隆过滤器等。
package redis

import (
	"bytes"
	"context"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	goredis "github.com/redis/go-redis/v9"

	"github.com/rushteam/tripkit/filter"
)

// VisitedBloomChecker 是基于 Redis + bits-and-blooms/bloom 的到访历史
// 检查器，实现 filter.VisitedChecker 接口。
//
// 每个用户一个布隆过滤器，离线任务把历史到访地点写入后序列化存到
// Redis；在线侧读出反序列化后本地判断。返回 true 表示可能到访过
// （误判率由构造参数控制），false 表示一定没有。
//
// 使用方式：
//
//	checker := redis.NewVisitedBloomChecker(client, "visited", 100000, 0.01)
//	visitedFilter := filter.NewVisitedFilter(checker)
type VisitedBloomChecker struct {
	client *goredis.Client

	// KeyPrefix 布隆过滤器的 key 前缀，实际 key 为 {KeyPrefix}:bloom:{userID}
	KeyPrefix string

	// capacity 预期容量（地点数量）
	capacity uint
	// falsePositiveRate 期望误判率，例如 0.01 表示 1%
	falsePositiveRate float64

	// 本地缓存，避免每次判断都从 Redis 读取和反序列化
	mu    sync.RWMutex
	cache map[string]*bloom.BloomFilter
}

var _ filter.VisitedChecker = (*VisitedBloomChecker)(nil)

// NewVisitedBloomChecker 创建到访历史布隆过滤器检查器。
func NewVisitedBloomChecker(client *goredis.Client, keyPrefix string, capacity uint, falsePositiveRate float64) *VisitedBloomChecker {
	if keyPrefix == "" {
		keyPrefix = "visited"
	}
	return &VisitedBloomChecker{
		client:            client,
		KeyPrefix:         keyPrefix,
		capacity:          capacity,
		falsePositiveRate: falsePositiveRate,
		cache:             make(map[string]*bloom.BloomFilter),
	}
}

func (c *VisitedBloomChecker) key(userID string) string {
	return c.KeyPrefix + ":bloom:" + userID
}

// CheckVisited 检查用户是否可能到访过该地点。
// 布隆过滤器缺失（新用户/数据未同步）视为未到访。
func (c *VisitedBloomChecker) CheckVisited(ctx context.Context, userID, placeID string) (bool, error) {
	bf, err := c.load(ctx, userID)
	if err != nil {
		return false, err
	}
	if bf == nil {
		return false, nil
	}
	return bf.TestString(placeID), nil
}

// MarkVisited 把地点写入用户的布隆过滤器并回写 Redis。
// 布隆过滤器只增不删：删除需要离线重建。
func (c *VisitedBloomChecker) MarkVisited(ctx context.Context, userID, placeID string) error {
	bf, err := c.load(ctx, userID)
	if err != nil {
		return err
	}
	if bf == nil {
		bf = bloom.NewWithEstimates(c.capacity, c.falsePositiveRate)
	}
	bf.AddString(placeID)

	var buf bytes.Buffer
	if _, err := bf.WriteTo(&buf); err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.key(userID), buf.Bytes(), 0).Err(); err != nil {
		return err
	}

	c.mu.Lock()
	c.cache[userID] = bf
	c.mu.Unlock()
	return nil
}

func (c *VisitedBloomChecker) load(ctx context.Context, userID string) (*bloom.BloomFilter, error) {
	c.mu.RLock()
	if bf, ok := c.cache[userID]; ok {
		c.mu.RUnlock()
		return bf, nil
	}
	c.mu.RUnlock()

	data, err := c.client.Get(ctx, c.key(userID)).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	bf := &bloom.BloomFilter{}
	if _, err := bf.ReadFrom(bytes.NewReader(data)); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cache[userID] = bf
	c.mu.Unlock()
	return bf, nil
}
