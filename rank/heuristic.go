package rank

import (
	"context"
	"math"
	"sort"

	"github.com/rushteam/nutrikit/core"
	"github.com/rushteam/nutrikit/feature"
	"github.com/rushteam/nutrikit/pipeline"
	"github.com/rushteam/nutrikit/pkg/utils"
)

// HeuristicScore 是目标感知的闭式打分公式，永远可用、无状态。
//
// 按目标类型选择宏量营养素加权：
//   - 减重：2.0*protein − 0.02*calories − 0.5*fat − 0.2*carbs
//   - 增重：0.02*calories + 0.6*carbs + 0.8*fat + 0.8*protein
//   - 维持（默认）：1.0*protein + 0.3*carbs + 0.3*fat − 0.01*|calories−200|
//
// 再叠加 1.5*popularity_score（即 1.5*log10(1+食用次数)）、
// 0.5*seasonality_score 与 1.0*category_score。
func HeuristicScore(v feature.Vector) float64 {
	var base float64
	switch core.GoalType(int(v.GoalType)) {
	case core.GoalLoseWeight:
		base = 2.0*v.ProteinPer100 - 0.02*v.CaloriesPer100 - 0.5*v.FatPer100 - 0.2*v.CarbsPer100
	case core.GoalGainWeight:
		base = 0.02*v.CaloriesPer100 + 0.6*v.CarbsPer100 + 0.8*v.FatPer100 + 0.8*v.ProteinPer100
	default:
		base = 1.0*v.ProteinPer100 + 0.3*v.CarbsPer100 + 0.3*v.FatPer100 - 0.01*math.Abs(v.CaloriesPer100-200)
	}
	return base + 1.5*v.PopularityScore + 0.5*v.SeasonalityScore + 1.0*v.CategoryScore
}

// HeuristicNode 是启发式排序 Node。
// - 为每个候选构建定形特征向量并写入 item.Features
// - 写入 labels：rank_model
// - 更新 item.Score 并按分数降序排序
type HeuristicNode struct {
	Extractor *feature.Extractor
}

func (n *HeuristicNode) Name() string        { return "rank.heuristic" }
func (n *HeuristicNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *HeuristicNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	ex := n.Extractor
	if ex == nil {
		ex = &feature.Extractor{}
	}

	for _, it := range items {
		if it == nil || it.Grocery == nil {
			continue
		}
		v := ex.Extract(ctx, it.Grocery, rctx)
		it.Features = v.Map()
		it.Popularity = rctx.PopularityOf(it.Grocery.ID)
		it.Score = HeuristicScore(v)
		it.PutLabel("rank_model", utils.Label{Value: "heuristic", Source: "rank"})
	}

	sortByScore(items)
	return items, nil
}

// sortByScore 按分数降序排序，nil 项沉底。
func sortByScore(items []*core.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i] == nil {
			return false
		}
		if items[j] == nil {
			return true
		}
		return items[i].Score > items[j].Score
	})
}
