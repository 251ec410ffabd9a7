package filter

import (
	"context"

	"github.com/rushteam/nutrikit/core"
	"github.com/rushteam/nutrikit/pkg/dsl"
)

// RuleFilter 是 CEL 表达式驱动的规则过滤器：表达式为真时过滤该候选。
//
// 典型用法是把业务排除规则放进 Pipeline 配置而不是代码：
//
//	- type: filter
//	  config:
//	    rules:
//	      - 'rctx.goal == "lose_weight" && item.category == "snack"'
//	      - 'item.features.calories_per_100 > 600.0'
type RuleFilter struct {
	// Expr CEL 表达式；空表达式不过滤任何候选。
	Expr string
}

func (f *RuleFilter) Name() string { return "filter.rule" }

func (f *RuleFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if f.Expr == "" || item == nil {
		return false, nil
	}
	return dsl.NewEval(item, rctx).Evaluate(f.Expr)
}
