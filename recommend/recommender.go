// Package recommend 是排序链路的编排层：
// 加载用户与生效目标，准备 cohort 流行度等上下文，执行 Pipeline，
// 排序、分页、生成解释并旁路上报曝光。
package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/nutrikit/cohort"
	"github.com/rushteam/nutrikit/core"
	"github.com/rushteam/nutrikit/metrics"
	"github.com/rushteam/nutrikit/pipeline"
	"github.com/rushteam/nutrikit/rerank"
)

const (
	// defaultPageSize 是 pageSize 非法时的兜底页大小。
	defaultPageSize = 20

	// shownTopN 是每轮排序写入多样性状态的条数。
	// 按完整排序的头部记录，与调用方实际请求的是哪一页无关，
	// 多样性状态反映的是“排序让哪些食材曝光在前”，而不是某一页露出了什么。
	shownTopN = 50

	// recentWindow 是“最近吃过”解释信号的回看窗口。
	recentWindow = 30 * 24 * time.Hour
)

// Recommender 对外暴露引擎的唯一入口 GetRecommended。
// 同一实例可被任意多请求并发调用。
type Recommender struct {
	users    core.UserStore
	mealLogs core.MealLogStore
	cohorts  *cohort.Cache
	pipe     *pipeline.Pipeline
	tracker  *rerank.Tracker
	sink     metrics.Sink
	clock    core.Clock
	log      zerolog.Logger
}

// Option 配置 Recommender。
type Option func(*Recommender)

// WithSink 注入曝光上报实现；默认丢弃。
func WithSink(s metrics.Sink) Option {
	return func(r *Recommender) {
		if s != nil {
			r.sink = s
		}
	}
}

// WithClock 注入时钟（测试用）。
func WithClock(clock core.Clock) Option {
	return func(r *Recommender) { r.clock = clock }
}

// WithLogger 注入日志。
func WithLogger(log zerolog.Logger) Option {
	return func(r *Recommender) { r.log = log }
}

// New 创建 Recommender。
// pipe 通常包含 recall → filter → rank → rerank 节点；
// tracker 须与 pipe 中 DiversityNode 共享同一实例，否则惩罚与记录脱节。
func New(
	users core.UserStore,
	mealLogs core.MealLogStore,
	cohorts *cohort.Cache,
	pipe *pipeline.Pipeline,
	tracker *rerank.Tracker,
	opts ...Option,
) *Recommender {
	r := &Recommender{
		users:    users,
		mealLogs: mealLogs,
		cohorts:  cohorts,
		pipe:     pipe,
		tracker:  tracker,
		sink:     metrics.NopSink{},
		clock:    core.SystemClock,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetRecommended 为用户返回一页排序后的食材推荐。
//
// page < 1 按 1 处理，pageSize < 1 按 20 处理。
// 未知用户与空候选池都返回空页（total=0），不是错误；
// 存储/缓存的瞬时故障原样上抛，调用方可安全重试（操作幂等）。
func (r *Recommender) GetRecommended(ctx context.Context, userID int64, page, pageSize int) (*core.PagedResult, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	user, err := r.users.GetUser(ctx, userID)
	if err != nil {
		if core.IsUserNotFound(err) {
			r.log.Debug().Int64("user_id", userID).Msg("unknown user, empty page")
			return core.EmptyPage(page, pageSize), nil
		}
		return nil, fmt.Errorf("load user %d: %w", userID, err)
	}

	// 进行中的目标实例优先，否则取画像级目标
	goal := user.Goal
	if g, ok, err := r.users.CurrentGoal(ctx, userID); err != nil {
		return nil, fmt.Errorf("load current goal: %w", err)
	} else if ok {
		goal = g
	}

	now := r.clock()
	rctx := &core.RecommendContext{
		UserID: userID,
		User:   user,
		Goal:   goal,
		Now:    now,
	}

	// cohort → 流行度是串行依赖，和“最近吃过”并行取
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		members, err := r.cohorts.UserIDs(egCtx, rctx.EffectiveGoal())
		if err != nil {
			return fmt.Errorf("resolve cohort: %w", err)
		}
		ids := make([]int64, 0, len(members))
		for id := range members {
			ids = append(ids, id)
		}
		pop, err := r.mealLogs.CountConsumptionByItem(egCtx, ids)
		if err != nil {
			return fmt.Errorf("count cohort consumption: %w", err)
		}
		rctx.Popularity = pop
		return nil
	})
	eg.Go(func() error {
		recent, err := r.mealLogs.RecentlyConsumedItemIDs(egCtx, userID, now.Add(-recentWindow))
		if err != nil {
			return fmt.Errorf("load recent items: %w", err)
		}
		rctx.RecentItemIDs = recent
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	ranked, err := r.pipe.Run(ctx, rctx, nil)
	if err != nil {
		return nil, fmt.Errorf("run pipeline: %w", err)
	}
	if len(ranked) == 0 {
		return core.EmptyPage(page, pageSize), nil
	}

	sortRanked(ranked)

	if r.tracker != nil {
		n := shownTopN
		if len(ranked) < n {
			n = len(ranked)
		}
		for _, it := range ranked[:n] {
			r.tracker.RecordShown(it.ID(), it.Grocery.Category)
		}
	}

	total := len(ranked)
	start := (page - 1) * pageSize
	if start >= total {
		out := core.EmptyPage(page, pageSize)
		out.Total = total
		return out, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	pageItems := ranked[start:end]
	out := &core.PagedResult{
		Items:    make([]core.RankedItem, 0, len(pageItems)),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
	positions := make([]int, 0, len(pageItems))
	for i, it := range pageItems {
		out.Items = append(out.Items, core.RankedItem{
			Grocery:     it.Grocery,
			Score:       it.Score,
			Explanation: Explain(it, rctx),
		})
		positions = append(positions, start+i+1) // 完整排序里的 1-based 位置
	}

	// 曝光上报是旁路：实现内部缓冲，不回传失败
	r.sink.RecordShown(ctx, rctx, pageItems, positions)

	return out, nil
}

// sortRanked 按分数降序排序，同分按名称升序。
// 相同输入必须产出完全一致的顺序，否则翻页会错位。
func sortRanked(items []*core.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].Grocery.Name < items[j].Grocery.Name
	})
}
