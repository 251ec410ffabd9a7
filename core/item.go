package core

import "github.com/rushteam/nutrikit/pkg/utils"

// Item 是推荐链路中的统一承载结构：食材快照、特征、分数、标签。
// Labels 用于推荐解释与策略驱动；Score 用于排序决策。
type Item struct {
	Grocery    *Grocery
	Score      float64
	Popularity int64 // 当前 cohort 内的历史食用次数
	Features   map[string]float64
	Labels     map[string]utils.Label
}

func NewItem(g *Grocery) *Item {
	return &Item{
		Grocery:  g,
		Score:    0,
		Features: make(map[string]float64),
		Labels:   make(map[string]utils.Label),
	}
}

// ID 返回底层食材 ID；Grocery 为空时返回 0。
func (it *Item) ID() int64 {
	if it.Grocery == nil {
		return 0
	}
	return it.Grocery.ID
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}
