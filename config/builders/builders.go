// Package builders 在 init 中注册不依赖外部实例的内置 Node。
// 配置驱动的入口处匿名导入本包即可：import _ "github.com/rushteam/nutrikit/config/builders"
package builders

import (
	"github.com/rushteam/nutrikit/config"
	"github.com/rushteam/nutrikit/filter"
	"github.com/rushteam/nutrikit/pipeline"
	"github.com/rushteam/nutrikit/pkg/conv"
	"github.com/rushteam/nutrikit/rank"
	"github.com/rushteam/nutrikit/rerank"
)

func init() {
	config.Register("rank.heuristic", BuildHeuristicNode)
	config.Register("rerank.boost", BuildBoostNode)
	config.Register("filter", BuildFilterNode)
}

// BuildHeuristicNode 构建启发式排序 Node（默认特征抽取，不接在线特征源）。
func BuildHeuristicNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &rank.HeuristicNode{}, nil
}

// BuildBoostNode 构建新颖度/冷启动加权 Node，阈值可配。
func BuildBoostNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &rerank.BoostNode{
		NoveltyThreshold:   conv.ConfigGetInt64(cfg, "novelty_threshold", 0),
		ColdStartThreshold: conv.ConfigGetInt64(cfg, "cold_start_threshold", 0),
	}, nil
}

// BuildFilterNode 构建过滤 Node：可见性兜底过滤 + 可选的 CEL 规则。
//
//	filter:
//	  visibility: true
//	  rules:
//	    - item.category == "snack"
func BuildFilterNode(cfg map[string]interface{}) (pipeline.Node, error) {
	var filters []filter.Filter
	if conv.ConfigGet(cfg, "visibility", true) {
		filters = append(filters, &filter.VisibilityFilter{})
	}
	if rules, ok := cfg["rules"].([]interface{}); ok {
		for _, r := range rules {
			if expr, ok := conv.ToString(r); ok && expr != "" {
				filters = append(filters, &filter.RuleFilter{Expr: expr})
			}
		}
	}
	return &filter.FilterNode{Filters: filters}, nil
}
