package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rushteam/tripkit/core"
)

// ComputeFunc 是一次完整推荐计算（召回->过滤->排序）。由调用方注入，
// 缓存层不关心计算细节。
type ComputeFunc func(ctx context.Context) ([]core.ScoredPlace, error)

// Coordinator 是推荐结果的缓存协调器。
//
// 并发语义（核心约束）：同一用户的缓存过期后，多个并发请求只允许
// 一个执行重算。重算权通过存储级锁（MutexStore.SetNX + TTL）裁决：
//   - 锁是存储可见的，进程重启后依然存在；TTL 保证持有者崩溃后自动恢复
//   - 未抢到锁的请求优先返回已有的过期条目（过期结果好于等待）；条目
//     缺失时在有限窗口内轮询等待新结果，超时则退化为本地计算，结果
//     直接返回但不回写（回写权只属于锁持有者）
//   - 释放锁用持有者 token 做比较删除，锁被抢占后不会误删他人的锁
//
// 回退语义：重算失败时，过期的旧结果好于无结果，返回 stale 条目。
type Coordinator struct {
	Store core.Store
	Mutex core.MutexStore

	// KeyPrefix 存储 key 前缀；为空用 "rec"
	KeyPrefix string

	// Freshness 新鲜窗口；<= 0 用默认
	Freshness time.Duration

	// LockTTL 重算锁的过期时间；<= 0 用默认
	LockTTL time.Duration

	// LockWait 等待他人重算结果的时间上限；<= 0 用默认
	LockWait time.Duration

	// PollInterval 等待期间的轮询间隔；<= 0 用 20ms
	PollInterval time.Duration

	// Config 提供默认参数；为 nil 用 core.DefaultRecommendConfig
	Config core.RecommendConfig

	recomputations atomic.Int64
}

func NewCoordinator(store core.Store, mutex core.MutexStore) *Coordinator {
	return &Coordinator{
		Store: store,
		Mutex: mutex,
	}
}

func (c *Coordinator) config() core.RecommendConfig {
	if c.Config != nil {
		return c.Config
	}
	return &core.DefaultRecommendConfig{}
}

func (c *Coordinator) keyPrefix() string {
	if c.KeyPrefix != "" {
		return c.KeyPrefix
	}
	return "rec"
}

func (c *Coordinator) entryKey(userID string) string {
	return c.keyPrefix() + ":user:" + userID
}

func (c *Coordinator) lockKey(userID string) string {
	return c.keyPrefix() + ":lock:" + userID
}

func (c *Coordinator) freshness() time.Duration {
	if c.Freshness > 0 {
		return c.Freshness
	}
	return c.config().DefaultFreshness()
}

func (c *Coordinator) lockTTL() time.Duration {
	if c.LockTTL > 0 {
		return c.LockTTL
	}
	return c.config().DefaultLockTTL()
}

func (c *Coordinator) lockWait() time.Duration {
	if c.LockWait > 0 {
		return c.LockWait
	}
	return c.config().DefaultLockWait()
}

func (c *Coordinator) pollInterval() time.Duration {
	if c.PollInterval > 0 {
		return c.PollInterval
	}
	return 20 * time.Millisecond
}

// Recomputations 返回累计执行的持锁重算次数（用于观测/测试）。
func (c *Coordinator) Recomputations() int64 {
	return c.recomputations.Load()
}

// Get 返回用户的推荐结果：新鲜缓存直接命中，否则协调一次单写者重算。
func (c *Coordinator) Get(
	ctx context.Context,
	userID string,
	compute ComputeFunc,
) ([]core.ScoredPlace, error) {
	if c.Store == nil || c.Mutex == nil {
		// 未配置缓存：直接计算
		return compute(ctx)
	}

	stale, err := c.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if stale.Fresh(time.Now(), c.freshness()) {
		return stale.Places, nil
	}

	// 过期或缺失：竞争重算权
	token := []byte(uuid.NewString())
	acquired, err := c.Mutex.SetNX(ctx, c.lockKey(userID), token, int(c.lockTTL().Seconds()))
	if err != nil {
		return nil, err
	}

	if acquired {
		// 双重检查：抢到锁之前可能有别的写者刚完成重算
		if entry, err := c.load(ctx, userID); err == nil && entry.Fresh(time.Now(), c.freshness()) {
			_, _ = c.Mutex.DeleteIfEquals(ctx, c.lockKey(userID), token)
			return entry.Places, nil
		}
		return c.recompute(ctx, userID, token, stale, compute)
	}
	return c.awaitOrCompute(ctx, userID, stale, compute)
}

// Invalidate 删除用户的缓存条目（画像/交互变更后由调用方触发）。
func (c *Coordinator) Invalidate(ctx context.Context, userID string) error {
	if c.Store == nil {
		return nil
	}
	return c.Store.Delete(ctx, c.entryKey(userID))
}

func (c *Coordinator) load(ctx context.Context, userID string) (*Entry, error) {
	data, err := c.Store.Get(ctx, c.entryKey(userID))
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	entry, err := UnmarshalEntry(data)
	if err != nil {
		// 损坏的条目当作缺失处理，重算会覆盖它
		return nil, nil
	}
	return entry, nil
}

// recompute 持锁重算：计算、覆盖写条目、释放锁。
func (c *Coordinator) recompute(
	ctx context.Context,
	userID string,
	token []byte,
	stale *Entry,
	compute ComputeFunc,
) ([]core.ScoredPlace, error) {
	defer func() {
		// 比较删除：只释放自己持有的锁。失败说明锁已过期被抢占，忽略。
		_, _ = c.Mutex.DeleteIfEquals(context.WithoutCancel(ctx), c.lockKey(userID), token)
	}()

	c.recomputations.Add(1)

	places, err := compute(ctx)
	if err != nil {
		// 重算失败：过期结果好于无结果
		if stale != nil {
			return stale.Places, nil
		}
		return nil, err
	}

	entry := &Entry{UserID: userID, Places: places, ComputedAt: time.Now()}
	data, err := entry.Marshal()
	if err != nil {
		return places, nil
	}
	_ = c.Store.Set(ctx, c.entryKey(userID), data)

	return places, nil
}

// awaitOrCompute 未抢到锁：已有过期条目时立即返回它，不等待——持有者
// 很快会写入新结果，让读者拿着旧结果先走。条目缺失时才有限等待他人
// 写入新结果，超时退化为本地计算。本地计算的结果直接返回但不回写，
// 回写权只属于锁持有者。
func (c *Coordinator) awaitOrCompute(
	ctx context.Context,
	userID string,
	stale *Entry,
	compute ComputeFunc,
) ([]core.ScoredPlace, error) {
	if stale != nil {
		return stale.Places, nil
	}

	deadline := time.Now().Add(c.lockWait())
	ticker := time.NewTicker(c.pollInterval())
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			// 调用方超时：放弃等锁，退化为本地计算而不是直接失败
			return compute(ctx)
		case <-ticker.C:
		}

		entry, err := c.load(ctx, userID)
		if err != nil {
			return nil, err
		}
		if entry.Fresh(time.Now(), c.freshness()) {
			return entry.Places, nil
		}
	}

	return compute(ctx)
}
