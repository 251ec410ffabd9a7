package cohort

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultRefreshInterval 是后台全量刷新的周期。
	DefaultRefreshInterval = 6 * time.Hour

	// DefaultRetryBackoff 是单轮刷新失败后的重试间隔。
	DefaultRetryBackoff = 5 * time.Minute
)

// Refresher 是长驻的后台刷新任务：按固定周期全量重建所有目标类型的人群集合，
// 让交互请求几乎不用支付完整重建的代价。
//
// 单轮失败只记日志并在短退避后重试，刷新循环自身永不因一次失败退出。
type Refresher struct {
	Cache *Cache

	// Interval 刷新周期；0 时取默认 6 小时。
	Interval time.Duration

	// Backoff 失败重试间隔；0 时取默认 5 分钟。
	Backoff time.Duration

	// Log 日志；零值时静默。
	Log zerolog.Logger
}

// Run 阻塞运行刷新循环直到 ctx 结束。启动时立即尽力执行一轮。
// 通常以 `go refresher.Run(ctx)` 方式启动。
func (r *Refresher) Run(ctx context.Context) {
	interval := r.Interval
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	backoff := r.Backoff
	if backoff <= 0 {
		backoff = DefaultRetryBackoff
	}

	timer := time.NewTimer(0) // 启动即触发第一轮
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		start := time.Now()
		if err := r.Cache.RefreshAll(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			r.Log.Error().Err(err).Dur("elapsed", time.Since(start)).
				Msg("cohort refresh failed, will retry")
			timer.Reset(backoff)
			continue
		}

		r.Log.Info().Dur("elapsed", time.Since(start)).Msg("cohort refresh completed")
		timer.Reset(interval)
	}
}
