// Package cohort 维护“营养目标 → 同目标用户集合”的缓存。
//
// 集合按目标类型分 key 缓存，每个 key 独立过期：某个目标的 miss 不影响其他目标。
// 构建过程（completed-profile 匹配 ∪ 进行中目标持有者）只有一份实现，
// 请求路径的按需重建与后台定时刷新共用它，避免两条路径语义漂移。
package cohort

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/rushteam/nutrikit/core"
)

const (
	// DefaultRequestTTL 是请求路径按需重建后的缓存时长。
	DefaultRequestTTL = time.Hour

	// DefaultRefreshTTL 是后台刷新写入的缓存时长，略长于刷新间隔，
	// 保证两次刷新之间条目不降温。
	DefaultRefreshTTL = 7 * time.Hour
)

// entry 是单个目标类型的缓存条目。
// 重建时整体替换，读者永远不会看到半成品集合。
type entry struct {
	ids       map[int64]struct{}
	expiresAt time.Time
}

// Cache 是目标人群缓存。
// 多个请求并发读、后台任务与按需重建并发写，内部用读写锁保护；
// 写入以“整个集合替换”为原子单位。
type Cache struct {
	users core.UserStore
	clock core.Clock
	log   zerolog.Logger

	// snapshots 可选的 KV 快照层（如 Redis），多进程部署时共享重建结果。
	snapshots core.Store

	// limiter 限制按需重建的频率，防止条目过期瞬间的缓存踩踏。
	// 限流命中且存在过期旧集合时，直接返回旧集合。
	limiter *rate.Limiter

	requestTTL time.Duration
	refreshTTL time.Duration

	mu      sync.RWMutex
	entries map[core.GoalType]*entry
}

// Option 配置 Cache。
type Option func(*Cache)

// WithClock 注入时钟（测试用）。
func WithClock(clock core.Clock) Option {
	return func(c *Cache) { c.clock = clock }
}

// WithLogger 注入日志。
func WithLogger(log zerolog.Logger) Option {
	return func(c *Cache) { c.log = log }
}

// WithSnapshotStore 启用 KV 快照层。
func WithSnapshotStore(s core.Store) Option {
	return func(c *Cache) { c.snapshots = s }
}

// WithTTL 覆盖请求路径/后台刷新的缓存时长。
func WithTTL(request, refresh time.Duration) Option {
	return func(c *Cache) {
		c.requestTTL = request
		c.refreshTTL = refresh
	}
}

// New 创建目标人群缓存。
func New(users core.UserStore, opts ...Option) *Cache {
	c := &Cache{
		users:      users,
		clock:      core.SystemClock,
		log:        zerolog.Nop(),
		limiter:    rate.NewLimiter(rate.Every(time.Second), 3),
		requestTTL: DefaultRequestTTL,
		refreshTTL: DefaultRefreshTTL,
		entries:    make(map[core.GoalType]*entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UserIDs 返回与 goal 同目标的用户 ID 集合。
// 缓存命中直接返回；过期或缺失时按需重建（TTL 为 requestTTL）。
// 返回的集合整体替换、从不原地修改，调用方只读即可安全共享。
func (c *Cache) UserIDs(ctx context.Context, goal core.GoalType) (map[int64]struct{}, error) {
	now := c.clock()

	c.mu.RLock()
	e := c.entries[goal]
	c.mu.RUnlock()

	if e != nil && now.Before(e.expiresAt) {
		return e.ids, nil
	}

	// 过期但仍有旧集合时，限流保护重建：限流命中时直接返回旧集合
	if e != nil && !c.limiter.Allow() {
		return e.ids, nil
	}

	// 尝试快照层（其他进程可能刚刚重建过）
	if ids, ok := c.loadSnapshot(ctx, goal); ok {
		c.store(goal, ids, c.requestTTL)
		return ids, nil
	}

	ids, err := c.buildSet(ctx, goal)
	if err != nil {
		return nil, err
	}
	c.store(goal, ids, c.requestTTL)
	c.saveSnapshot(ctx, goal, ids)
	return ids, nil
}

// RefreshAll 重建所有目标类型的集合（后台任务入口），TTL 为 refreshTTL。
// 各目标并发重建，任一失败则整体返回错误（由调用方退避重试）。
func (c *Cache) RefreshAll(ctx context.Context) error {
	goals := core.AllGoalTypes()
	results := make([]map[int64]struct{}, len(goals))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, goal := range goals {
		i, goal := i, goal
		eg.Go(func() error {
			ids, err := c.buildSet(egCtx, goal)
			if err != nil {
				return fmt.Errorf("refresh cohort %s: %w", goal, err)
			}
			results[i] = ids
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for i, goal := range goals {
		c.store(goal, results[i], c.refreshTTL)
		c.saveSnapshot(ctx, goal, results[i])
	}
	return nil
}

// Invalidate 清空全部缓存条目（运维/测试用）。
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[core.GoalType]*entry)
}

// buildSet 是唯一的集合构建实现：
// (a) 已完成健康画像且画像目标等于 goal 的用户
// (b) 持有进行中 goal 类型目标实例的用户
// 两者取并集（map 天然去重，同时满足两个条件的用户只出现一次）。
func (c *Cache) buildSet(ctx context.Context, goal core.GoalType) (map[int64]struct{}, error) {
	profiles, err := c.users.ListUsersWithCompletedProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("list completed profiles: %w", err)
	}
	inProgress, err := c.users.ListUsersWithGoalInProgress(ctx, goal)
	if err != nil {
		return nil, fmt.Errorf("list in-progress goals: %w", err)
	}

	ids := make(map[int64]struct{}, len(inProgress))
	for userID, profileGoal := range profiles {
		if profileGoal == goal {
			ids[userID] = struct{}{}
		}
	}
	for _, userID := range inProgress {
		ids[userID] = struct{}{}
	}
	return ids, nil
}

func (c *Cache) store(goal core.GoalType, ids map[int64]struct{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[goal] = &entry{ids: ids, expiresAt: c.clock().Add(ttl)}
}

func snapshotKey(goal core.GoalType) string {
	return "cohort:" + goal.String()
}

// saveSnapshot 把集合写入快照层；失败只记日志，不影响主流程。
func (c *Cache) saveSnapshot(ctx context.Context, goal core.GoalType, ids map[int64]struct{}) {
	if c.snapshots == nil {
		return
	}
	list := make([]int64, 0, len(ids))
	for id := range ids {
		list = append(list, id)
	}
	data, err := json.Marshal(list)
	if err != nil {
		return
	}
	ttl := int(c.refreshTTL / time.Second)
	if err := c.snapshots.Set(ctx, snapshotKey(goal), data, ttl); err != nil {
		c.log.Warn().Err(err).Str("goal", goal.String()).Msg("cohort snapshot write failed")
	}
}

// loadSnapshot 从快照层读取集合；任何失败都视为 miss。
func (c *Cache) loadSnapshot(ctx context.Context, goal core.GoalType) (map[int64]struct{}, bool) {
	if c.snapshots == nil {
		return nil, false
	}
	data, err := c.snapshots.Get(ctx, snapshotKey(goal))
	if err != nil {
		if !core.IsStoreNotFound(err) {
			c.log.Warn().Err(err).Str("goal", goal.String()).Msg("cohort snapshot read failed")
		}
		return nil, false
	}
	var list []int64
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, false
	}
	ids := make(map[int64]struct{}, len(list))
	for _, id := range list {
		ids[id] = struct{}{}
	}
	return ids, true
}
