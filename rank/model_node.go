package rank

import (
	"context"

	"github.com/rushteam/nutrikit/core"
	"github.com/rushteam/nutrikit/feature"
	"github.com/rushteam/nutrikit/model"
	"github.com/rushteam/nutrikit/pipeline"
	"github.com/rushteam/nutrikit/pkg/utils"
)

// ModelNode 是使用 RankModel 的排序 Node。
//
// 模型未训练（model.ErrNotTrained）时静默回落到 HeuristicScore——
// 这是定义好的降级路径，不是错误：大多数部署从不训练模型。
// 其他预测错误照常向上传播。
//
// 特征向量的维度与顺序和启发式策略完全一致，两者可以互换。
type ModelNode struct {
	Model     model.RankModel
	Extractor *feature.Extractor
}

func (n *ModelNode) Name() string        { return "rank.model" }
func (n *ModelNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *ModelNode) Process(
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

		if n.Model == nil {
			it.Score = HeuristicScore(v)
			it.PutLabel("rank_model", utils.Label{Value: "heuristic", Source: "rank"})
			continue
		}

		score, err := n.Model.Predict(it.Features)
		switch {
		case err == nil:
			it.Score = score
			it.PutLabel("rank_model", utils.Label{Value: n.Model.Name(), Source: "rank"})
		case err == model.ErrNotTrained:
			it.Score = HeuristicScore(v)
			it.PutLabel("rank_model", utils.Label{Value: "heuristic", Source: "rank"})
		default:
			return nil, err
		}
	}

	sortByScore(items)
	return items, nil
}
