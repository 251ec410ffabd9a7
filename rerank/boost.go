package rerank

import (
	"context"

	"github.com/rushteam/nutrikit/core"
	"github.com/rushteam/nutrikit/pipeline"
	"github.com/rushteam/nutrikit/pkg/utils"
)

// BoostNode 应用两个乘性调整：
//   - 新颖度：cohort 内食用次数低于阈值的冷门食材 ×1.3，鼓励探索
//   - 冷启动：画像未完成的用户看到大众热门（次数 > 10）时 ×1.2，
//     在缺少个性化依据时偏向稳妥选择
//
// 命中时分别写入 labels：novelty / cold_start。
type BoostNode struct {
	// NoveltyThreshold 新颖度阈值，低于它记为冷门；0 时取默认 5。
	NoveltyThreshold int64

	// ColdStartThreshold 冷启动热门阈值，高于它记为大众热门；0 时取默认 10。
	ColdStartThreshold int64
}

const (
	defaultNoveltyThreshold   = 5
	defaultColdStartThreshold = 10

	noveltyBoost   = 1.3
	coldStartBoost = 1.2
)

func (n *BoostNode) Name() string        { return "rerank.boost" }
func (n *BoostNode) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *BoostNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	noveltyTh := n.NoveltyThreshold
	if noveltyTh <= 0 {
		noveltyTh = defaultNoveltyThreshold
	}
	coldTh := n.ColdStartThreshold
	if coldTh <= 0 {
		coldTh = defaultColdStartThreshold
	}

	coldStartUser := rctx != nil && rctx.User != nil && !rctx.User.ProfileCompleted

	for _, it := range items {
		if it == nil || it.Grocery == nil {
			continue
		}
		pop := it.Popularity
		if pop < noveltyTh {
			it.Score *= noveltyBoost
			it.PutLabel("novelty", utils.Label{Value: "new", Source: "rerank"})
		}
		if coldStartUser && pop > coldTh {
			it.Score *= coldStartBoost
			it.PutLabel("cold_start", utils.Label{Value: "popular", Source: "rerank"})
		}
	}
	return items, nil
}
