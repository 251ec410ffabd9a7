// Package season 提供食材类别的季节性乘数查询。
// 纯函数、无副作用、完全确定：只有蔬菜与水果携带非中性的季节曲线，
// 其余类别一律返回中性乘数 1.0。
package season

import (
	"time"

	"github.com/rushteam/nutrikit/core"
)

// Neutral 是非时令类别的中性乘数。
const Neutral = 1.0

// Score 返回 (类别, 月份) 对应的季节性乘数。
// month 取 time.Month（1-12），闭区间按自然月划分：
//   - 蔬菜：春 3-5 → 1.2，夏 6-8 → 1.3，秋 9-11 → 1.1，冬 12-2 → 0.9
//   - 水果：夏 6-8 → 1.3，初秋 9-10 → 1.1，春 3-5 → 1.0，冬 11-2 → 0.8
func Score(category core.FoodCategory, month time.Month) float64 {
	switch category {
	case core.CategoryVegetable:
		switch {
		case month >= time.March && month <= time.May:
			return 1.2
		case month >= time.June && month <= time.August:
			return 1.3
		case month >= time.September && month <= time.November:
			return 1.1
		default:
			return 0.9
		}
	case core.CategoryFruit:
		switch {
		case month >= time.June && month <= time.August:
			return 1.3
		case month == time.September || month == time.October:
			return 1.1
		case month >= time.March && month <= time.May:
			return 1.0
		default:
			return 0.8
		}
	default:
		return Neutral
	}
}

// ScoreAt 以时间戳为入参的便捷形式，排序链路用 RecommendContext.Now 调用。
func ScoreAt(category core.FoodCategory, at time.Time) float64 {
	return Score(category, at.Month())
}
