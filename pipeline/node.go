package pipeline

import (
	"context"

	"github.com/rushteam/nutrikit/core"
)

// Kind 用于标记 Node 类型，方便观测/治理/编排（例如按阶段打点）。
type Kind string

const (
	KindRecall      Kind = "recall"      // 召回阶段：生成候选食材池
	KindFilter      Kind = "filter"      // 过滤阶段：剔除不可见/不合规的候选
	KindRank        Kind = "rank"        // 排序阶段：按目标感知公式或模型打分
	KindReRank      Kind = "rerank"      // 重排阶段：新颖度/冷启动加权与多样性惩罚
	KindPostProcess Kind = "postprocess" // 后处理阶段：解释生成、指标上报等
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用“输入 items -> 输出 items”的形态，方便 Recall 生成、Filter 截断、ReRank 重排等操作。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		items []*core.Item,
	) ([]*core.Item, error)
}
