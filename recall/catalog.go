package recall

import (
	"context"
	"fmt"

	"github.com/rushteam/nutrikit/core"
	"github.com/rushteam/nutrikit/pipeline"
	"github.com/rushteam/nutrikit/pkg/utils"
)

// defaultPoolCap 是候选池的默认上限。
// 打分是逐候选的纯 CPU 工作，上限保证单次排序的开销有界。
const defaultPoolCap = 500

// Catalog 是食材目录召回源：从 CatalogStore 拉取对请求者可见的候选池
// （已审核或本人创建、未删除），一页拉满为止。
// Catalog 同时实现了 Source 和 Node 接口，可以直接在 Pipeline 中使用。
type Catalog struct {
	Store core.CatalogStore

	// PoolCap 候选池上限；0 时取默认 500。
	PoolCap int
}

func (r *Catalog) Name() string        { return "recall.catalog" }
func (r *Catalog) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall。
func (r *Catalog) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口。
func (r *Catalog) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Store == nil {
		return nil, nil
	}

	poolCap := r.PoolCap
	if poolCap <= 0 {
		poolCap = defaultPoolCap
	}

	groceries, err := r.Store.PageItems(ctx, rctx.UserID, 1, poolCap)
	if err != nil {
		return nil, fmt.Errorf("recall catalog: %w", err)
	}

	items := make([]*core.Item, 0, len(groceries))
	for _, g := range groceries {
		if g == nil {
			continue
		}
		it := core.NewItem(g)
		it.PutLabel("recall_source", utils.Label{Value: r.Name(), Source: "recall"})
		items = append(items, it)
	}
	return items, nil
}
