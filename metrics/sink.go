// Package metrics 收集推荐链路的曝光反馈。
//
// 上报是 fire-and-forget 的：排序主链路只负责把事件塞进缓冲，
// 上报失败、缓冲满都不会影响推荐结果，最多丢事件并记一条日志。
package metrics

import (
	"context"
	"time"

	"github.com/rushteam/nutrikit/core"
)

// EventType 反馈事件类型
type EventType string

const (
	EventTypeShown     EventType = "shown"     // 曝光（出现在返回页中）
	EventTypeClick     EventType = "click"     // 点击
	EventTypeConsumed  EventType = "consumed"  // 转化（加入餐食记录）
	EventTypeDismissed EventType = "dismissed" // 用户明确划走
)

// Event 单条反馈事件（轻量级，只包含必要信息）
type Event struct {
	UserID    int64     `json:"user_id"`
	ItemID    int64     `json:"item_id"`
	Goal      string    `json:"goal"`
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"` // Unix 时间戳（秒）
	Position  int       `json:"position"`  // 物品在完整排序里的位置（从 1 开始）
	Score     float64   `json:"score"`     // 排序分数
}

// Sink 反馈收集器接口（异步非阻塞）。
// 所有方法都不返回 error：上报属于旁路，失败由实现内部消化。
type Sink interface {
	// RecordShown 记录一批曝光。positions 与 items 对齐，为完整排序中的 1-based 位置。
	RecordShown(ctx context.Context, rctx *core.RecommendContext, items []*core.Item, positions []int)

	// RecordClick 记录点击。
	RecordClick(ctx context.Context, rctx *core.RecommendContext, itemID int64, position int)

	// RecordConsumed 记录转化。
	RecordConsumed(ctx context.Context, rctx *core.RecommendContext, itemID int64)

	// Close 优雅关闭（等待缓冲数据落地）。
	Close() error
}

// NopSink 丢弃所有事件，未配置上报时的默认实现。
type NopSink struct{}

func (NopSink) RecordShown(ctx context.Context, rctx *core.RecommendContext, items []*core.Item, positions []int) {
}
func (NopSink) RecordClick(ctx context.Context, rctx *core.RecommendContext, itemID int64, position int) {
}
func (NopSink) RecordConsumed(ctx context.Context, rctx *core.RecommendContext, itemID int64) {}
func (NopSink) Close() error                                                                  { return nil }

func newEvent(rctx *core.RecommendContext, typ EventType, itemID int64, position int, score float64) Event {
	e := Event{
		ItemID:    itemID,
		Type:      typ,
		Timestamp: time.Now().Unix(),
		Position:  position,
		Score:     score,
	}
	if rctx != nil {
		e.UserID = rctx.UserID
		e.Goal = rctx.EffectiveGoal().String()
	}
	return e
}
