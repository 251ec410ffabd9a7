package filter

import (
	"context"

	"github.com/rushteam/nutrikit/core"
)

// VisibilityFilter 按可见性规则过滤候选：
// 已删除的一律移除；未审核的只有作者本人可见。
//
// CatalogStore 的实现通常已在查询层做过同样的过滤，
// 这里是排序链路自己的兜底，保证换用宽松的存储实现时语义不变。
type VisibilityFilter struct{}

func (f *VisibilityFilter) Name() string { return "filter.visibility" }

func (f *VisibilityFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil || item.Grocery == nil {
		return true, nil
	}
	return !item.Grocery.VisibleTo(rctx.UserID), nil
}
